// Package testsupport holds fixture and golden-file helpers shared by tests.
package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jsonforms/pkg/schema"
)

// LoadDocument reads a fixture into a schema.Document using a file source.
func LoadDocument(t *testing.T, path string) schema.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (schema.Document, error) {
	if path == "" {
		return schema.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), data)
	if err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// MustLoadSchema reads and parses a data schema fixture (JSON or YAML).
func MustLoadSchema(t *testing.T, path string) *schema.Schema {
	t.Helper()

	doc := LoadDocument(t, path)
	parsed, err := schema.Parse(doc.Raw())
	if err != nil {
		t.Fatalf("parse schema %s: %v", path, err)
	}
	return parsed
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	payload = append(payload, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// AssertJSONGolden compares the JSON encoding of got with the golden file at
// path. Both sides are decoded before comparison so formatting and key order
// do not matter. With UPDATE_GOLDENS set the golden is rewritten instead.
func AssertJSONGolden(t *testing.T, path string, got any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") != "" {
		WriteGolden(t, path, got)
		return
	}
	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var gotValue, wantValue any
	if err := json.Unmarshal(encoded, &gotValue); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if err := json.Unmarshal(MustReadGolden(t, path), &wantValue); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	if diff := CompareGolden(wantValue, gotValue); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
