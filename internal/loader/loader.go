// Package loader reads data schemas, UI schemas and instances from files,
// fs.FS trees or HTTP endpoints.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-jsonforms/pkg/schema"
)

// Loader implements schema.Loader by dispatching on the source kind.
type Loader struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
}

var _ schema.Loader = (*Loader)(nil)

// New builds a Loader. HTTP stays disabled unless a client or the fallback
// flag is supplied.
func New(options ...schema.LoaderOption) *Loader {
	opts := schema.NewLoaderOptions(options...)
	timeout := opts.RequestTimeout

	var client *http.Client
	switch {
	case opts.HTTPClient != nil:
		clone := *opts.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case opts.AllowHTTPFallback:
		client = &http.Client{Timeout: timeout}
	}

	return &Loader{files: opts.FileSystem, client: client, timeout: timeout}
}

// Load fetches the payload behind src.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = readFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = readFS(ctx, l.files, src.Location())
	case schema.SourceKindReader:
		data, err = readSource(ctx, src)
	case schema.SourceKindURL:
		if l.client == nil {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = fetch(ctx, l.client, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}
	return schema.NewDocument(src, data)
}

// LoadSchema loads and parses a data schema.
func (l *Loader) LoadSchema(ctx context.Context, src schema.Source) (*schema.Schema, error) {
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	raw, err := doc.JSON()
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", doc.Location(), err)
	}
	return schema.ParseJSON(raw)
}
