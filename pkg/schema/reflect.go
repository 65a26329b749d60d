package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

// FromType reflects a Go value (usually a zero struct) into a data schema.
// Struct fields keep their declaration order, so generated forms follow the
// struct layout.
func FromType(v any) (*Schema, error) {
	if v == nil {
		return nil, errors.New("schema: cannot reflect a nil value")
	}
	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	reflected := reflector.Reflect(v)
	raw, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("schema: encode reflected schema: %w", err)
	}
	return ParseJSON(raw)
}

// MustFromType panics when v cannot be reflected. Useful for package-level
// form declarations.
func MustFromType(v any) *Schema {
	out, err := FromType(v)
	if err != nil {
		panic(err)
	}
	return out
}
