package validation

import (
	"errors"
	"testing"

	"github.com/goliatone/go-jsonforms/pkg/schema"
)

func mustParse(t *testing.T, raw string) *schema.Schema {
	t.Helper()
	parsed, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return parsed
}

func TestJSONSchemaValidator(t *testing.T) {
	v := NewJSONSchemaValidator()
	age := mustParse(t, `{"type":"integer","minimum":0,"maximum":150}`)

	cases := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{name: "valid float", value: 30.0},
		{name: "valid int", value: 30},
		{name: "absent", value: nil},
		{name: "too large", value: 200, wantErr: true},
		{name: "wrong type", value: "thirty", wantErr: true},
		{name: "fraction", value: 1.5, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(age, tc.value)
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && Message(err) == "" {
				t.Fatalf("expected a message")
			}
		})
	}
}

func TestJSONSchemaValidator_LegacyKeywords(t *testing.T) {
	v := NewJSONSchemaValidator()
	sub := mustParse(t, `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "properties": {
    "id": "urn:example",
    "pair": {"type": "array", "items": [{"type": "string"}, {"type": "number"}]}
  }
}`)
	if err := v.Validate(sub, map[string]any{"pair": []any{"a", 1.0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(sub, map[string]any{"pair": []any{1.0, "a"}}); err == nil {
		t.Fatalf("expected tuple mismatch")
	}
}

func TestResult(t *testing.T) {
	result := NewResult()
	result.Add("#/properties/a", nil)
	if !result.Valid {
		t.Fatalf("nil error must keep the result valid")
	}
	result.Add("#/properties/a", errors.New("validation: too short"))
	if result.Valid || len(result.Issues) != 1 {
		t.Fatalf("expected one issue, got %#v", result)
	}
	if result.Issues[0].Message != "too short" {
		t.Fatalf("unexpected message %q", result.Issues[0].Message)
	}
	if got := result.Issues[0].Error(); got != "#/properties/a: too short" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestJSONSchemaValidator_CacheSharesEqualSchemas(t *testing.T) {
	v := NewJSONSchemaValidator()
	for pass := 0; pass < 5; pass++ {
		// a fresh node per pass, like the synthetic schemas built for tuple fan-out
		fresh := &schema.Schema{Type: schema.TypeArray, TupleItems: []*schema.Schema{
			schema.Of(schema.TypeString),
			{Type: schema.TypeInteger, Keywords: map[string]any{"minimum": 1}},
		}}
		if err := v.Validate(fresh, []any{"a", 2}); err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		if err := v.Validate(fresh, []any{"a", 0}); err == nil {
			t.Fatalf("pass %d: expected minimum violation", pass)
		}
	}
	if err := v.Validate(schema.Of(schema.TypeBoolean), true); err != nil {
		t.Fatalf("boolean: %v", err)
	}

	entries := 0
	v.cache.Range(func(any, any) bool {
		entries++
		return true
	})
	if entries != 2 {
		t.Fatalf("expected 2 cached schemas, got %d", entries)
	}
}
