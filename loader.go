package jsonforms

import (
	"context"
	"fmt"

	"github.com/goliatone/go-jsonforms/internal/loader"
	"github.com/goliatone/go-jsonforms/pkg/jsonschema"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

// NewLoader constructs a document loader while keeping the concrete type
// hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(options...)
}

// LoadSchema loads the data schema behind src and expands its $ref pointers.
// Relative external refs are read through the same loader.
func LoadSchema(ctx context.Context, src schema.Source, options ...schema.LoaderOption) (*schema.Schema, error) {
	l := loader.New(options...)
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	opts := schema.NewLoaderOptions(options...)
	resolver := jsonschema.NewResolver(l, jsonschema.ResolveOptions{
		AllowHTTPRefs: opts.HTTPClient != nil || opts.AllowHTTPFallback,
	})
	resolved, err := resolver.Resolve(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("jsonforms: %s: %w", doc.Location(), err)
	}
	return resolved, nil
}

// LoadUISchema loads and validates the UI schema behind src.
func LoadUISchema(ctx context.Context, src schema.Source, options ...schema.LoaderOption) (*uischema.Element, error) {
	doc, err := loader.New(options...).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	ui, err := uischema.Parse(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("jsonforms: %s: %w", doc.Location(), err)
	}
	return ui, nil
}
