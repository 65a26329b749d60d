// Package validation checks data values against data schema fragments. The
// render service calls it through control descriptions; message formatting
// stays with the caller.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/goliatone/go-jsonforms/pkg/schema"
)

// Validator checks value against sub. A nil error means the value is valid.
type Validator interface {
	Validate(sub *schema.Schema, value any) error
}

// Issue describes one failed check.
type Issue struct {
	Pointer string `json:"pointer,omitempty"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	if i.Pointer == "" {
		return i.Message
	}
	return i.Pointer + ": " + i.Message
}

// Result captures the outcome of a batch of checks.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Add records err against pointer when err is non-nil.
func (r *Result) Add(pointer string, err error) {
	if err == nil {
		return
	}
	r.Valid = false
	r.Issues = append(r.Issues, Issue{Pointer: pointer, Message: Message(err)})
}

// NewResult returns an empty, valid result.
func NewResult() Result {
	return Result{Valid: true}
}

// JSONSchemaValidator validates with google/jsonschema-go. Compiled schemas
// are cached by their encoded form, so structurally equal subschemas share
// one entry.
type JSONSchemaValidator struct {
	cache sync.Map
}

var _ Validator = (*JSONSchemaValidator)(nil)

// NewJSONSchemaValidator constructs a validator with an empty cache.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// Validate implements Validator. Absent (nil) values are always valid.
func (v *JSONSchemaValidator) Validate(sub *schema.Schema, value any) error {
	if sub == nil || value == nil {
		return nil
	}
	resolved, err := v.compile(sub)
	if err != nil {
		return err
	}
	instance, err := normalizeInstance(value)
	if err != nil {
		return err
	}
	return resolved.Validate(instance)
}

func (v *JSONSchemaValidator) compile(sub *schema.Schema) (*jsonschema.Resolved, error) {
	raw, err := draft2020(sub)
	if err != nil {
		return nil, err
	}
	key := string(raw)
	if cached, ok := v.cache.Load(key); ok {
		return cached.(*jsonschema.Resolved), nil
	}

	var compiled jsonschema.Schema
	if err := json.Unmarshal(raw, &compiled); err != nil {
		return nil, fmt.Errorf("validation: load schema: %w", err)
	}
	resolved, err := compiled.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("validation: resolve schema: %w", err)
	}
	v.cache.Store(key, resolved)
	return resolved, nil
}

// draft2020 encodes sub as a draft 2020-12 document. Map keys come out
// sorted, so equal schemas encode to equal bytes.
func draft2020(sub *schema.Schema) ([]byte, error) {
	raw, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("validation: decode schema: %w", err)
	}
	raw, err = json.Marshal(toDraft2020(generic))
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}
	return raw, nil
}

// toDraft2020 rewrites the keywords older drafts spell differently: tuple
// "items" arrays become "prefixItems", "definitions" become "$defs", and the
// legacy "id" and "$schema" declarations are dropped.
func toDraft2020(node any) any {
	switch typed := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			switch key {
			case "$schema", "id":
				continue
			case "definitions":
				out["$defs"] = toDraft2020(value)
			case "items":
				if list, ok := value.([]any); ok {
					out["prefixItems"] = toDraft2020(list)
					continue
				}
				out[key] = toDraft2020(value)
			case "properties", "$defs", "patternProperties":
				members, ok := value.(map[string]any)
				if !ok {
					out[key] = value
					continue
				}
				converted := make(map[string]any, len(members))
				for name, member := range members {
					if _, isSchema := member.(map[string]any); !isSchema {
						if _, isBool := member.(bool); !isBool {
							continue
						}
					}
					converted[name] = toDraft2020(member)
				}
				out[key] = converted
			case "enum", "const", "default", "examples":
				out[key] = value
			default:
				out[key] = toDraft2020(value)
			}
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, value := range typed {
			out[idx] = toDraft2020(value)
		}
		return out
	default:
		return node
	}
}

// normalizeInstance converts Go values into the JSON value space
// (map[string]any, []any, float64, string, bool).
func normalizeInstance(value any) (any, error) {
	switch value.(type) {
	case string, bool, float64:
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("validation: encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("validation: decode value: %w", err)
	}
	return out, nil
}

// Message extracts a short, user facing message from a validation error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var issue Issue
	if errors.As(err, &issue) {
		return issue.Message
	}
	msg := strings.TrimSpace(err.Error())
	if idx := strings.LastIndex(msg, ": "); idx >= 0 && strings.HasPrefix(msg, "validating ") {
		msg = msg[idx+2:]
	}
	msg = strings.TrimPrefix(msg, "validation: ")
	return msg
}
