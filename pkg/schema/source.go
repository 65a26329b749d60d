package schema

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
)

// Source names the origin of a document: a data schema, a UI schema or a data
// instance. Loaders dispatch on Kind and never see concrete source types.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindURL    SourceKind = "url"
	SourceKindReader SourceKind = "reader"
)

type location struct {
	kind SourceKind
	name string
}

func (l location) Kind() SourceKind { return l.kind }

func (l location) Location() string { return l.name }

// SourceFromFile points at a path on disk.
func SourceFromFile(path string) Source {
	return location{kind: SourceKindFile, name: filepath.Clean(path)}
}

// SourceFromFS names an entry of the loader's fs.FS.
func SourceFromFS(name string) Source {
	return location{kind: SourceKindFS, name: name}
}

// SourceFromURL panics on an empty or malformed URL so configuration
// mistakes surface at startup.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return location{kind: SourceKindURL, name: raw}
}

// ReaderSource is a one-shot source backed by an io.Reader, such as stdin.
type ReaderSource struct {
	location
	r io.Reader
}

// SourceFromReader wraps r. name is only used in errors and logs.
func SourceFromReader(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{location: location{kind: SourceKindReader, name: name}, r: r}
}

// Reader returns the wrapped reader.
func (s *ReaderSource) Reader() io.Reader { return s.r }
