package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-jsonforms"
	"github.com/goliatone/go-jsonforms/pkg/openapi"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

// parseSource maps a flag value to a source. "-" reads stdin.
func (a *app) parseSource(raw string) schema.Source {
	path := strings.TrimSpace(raw)
	switch path {
	case "":
		return nil
	case "-":
		return schema.SourceFromReader("stdin", a.stdin)
	}
	if isURL(path) {
		return schema.SourceFromURL(path)
	}
	return schema.SourceFromFile(path)
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func (a *app) loaderOptions() []schema.LoaderOption {
	if !a.cfg.AllowHTTP {
		return nil
	}
	return []schema.LoaderOption{schema.WithHTTPFallback(a.cfg.Timeout)}
}

func (a *app) loadSchema(ctx context.Context) (*schema.Schema, error) {
	src := a.parseSource(a.cfg.Schema)
	if src == nil {
		return nil, errors.New("cli: --schema is required")
	}
	if a.cfg.Operation == "" && a.cfg.Component == "" {
		return jsonforms.LoadSchema(ctx, src, a.loaderOptions()...)
	}

	spec, err := a.loadOpenAPI(ctx, src)
	if err != nil {
		return nil, err
	}
	if a.cfg.Operation != "" {
		return spec.RequestBodySchema(a.cfg.Operation)
	}
	return spec.ComponentSchema(a.cfg.Component)
}

func (a *app) loadOpenAPI(ctx context.Context, src schema.Source) (*openapi.Spec, error) {
	doc, err := jsonforms.NewLoader(a.loaderOptions()...).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return openapi.Load(ctx, doc)
}

// loadUISchema returns nil when no UI schema is configured.
func (a *app) loadUISchema(ctx context.Context) (*uischema.Element, error) {
	if a.cfg.UIDir != "" {
		return a.loadNamedUISchema()
	}
	src := a.parseSource(a.cfg.UISchema)
	if src == nil {
		return nil, nil
	}
	return jsonforms.LoadUISchema(ctx, src, a.loaderOptions()...)
}

func (a *app) loadNamedUISchema() (*uischema.Element, error) {
	store, err := uischema.LoadFS(os.DirFS(a.cfg.UIDir))
	if err != nil {
		return nil, err
	}
	ui, ok := store.Form(a.cfg.Form)
	if !ok {
		return nil, fmt.Errorf("cli: form %q not found in %s (available: %s)", a.cfg.Form, a.cfg.UIDir, strings.Join(store.IDs(), ", "))
	}
	a.logger.Debug("cli: ui schema selected", "form", a.cfg.Form, "forms", len(store.IDs()))
	return ui, nil
}

// loadData returns the configured instance as JSON, or nil when none is set.
func (a *app) loadData(ctx context.Context) ([]byte, error) {
	src := a.parseSource(a.cfg.Data)
	if src == nil {
		return nil, nil
	}
	doc, err := jsonforms.NewLoader(a.loaderOptions()...).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return doc.JSON()
}

func (a *app) newForm(ctx context.Context) (*jsonforms.Form, error) {
	dataSchema, err := a.loadSchema(ctx)
	if err != nil {
		return nil, err
	}
	ui, err := a.loadUISchema(ctx)
	if err != nil {
		return nil, err
	}
	opts := []jsonforms.Option{jsonforms.WithLogger(a.logger)}
	if ui != nil {
		opts = append(opts, jsonforms.WithUISchema(ui))
	}
	return jsonforms.NewForm(dataSchema, opts...)
}

// localPaths lists the configured documents that live on disk.
func (a *app) localPaths() []string {
	var out []string
	for _, path := range []string{a.cfg.Schema, a.cfg.UISchema, a.cfg.Data} {
		path = strings.TrimSpace(path)
		if path != "" && path != "-" && !isURL(path) {
			out = append(out, path)
		}
	}
	return out
}
