package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// OrderedObject is the generic, order-preserving representation of a JSON object
// produced by DecodeOrdered.
type OrderedObject = orderedmap.OrderedMap[string, any]

// DecodeOrdered decodes a JSON or YAML payload into generic values where
// objects are *OrderedObject (key order kept), arrays are []any and numbers from
// JSON are json.Number.
func DecodeOrdered(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("schema: document is empty")
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("schema: parse yaml: %w", err)
		}
		return yamlValue(&node)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	value, err := decodeToken(dec)
	if err != nil {
		return nil, fmt.Errorf("schema: parse json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("schema: parse json: trailing data after document")
	}
	return value, nil
}

func decodeToken(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		out := orderedmap.New[string, any]()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			value, err := decodeToken(dec)
			if err != nil {
				return nil, err
			}
			out.Set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return out, nil
	case '[':
		out := make([]any, 0)
		for dec.More() {
			value, err := decodeToken(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// FromOrdered re-encodes an ordered value and parses it as a data schema.
func FromOrdered(value any) (*Schema, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("schema: encode ordered value: %w", err)
	}
	return ParseJSON(raw)
}

// NewOrderedObject returns an empty order-preserving object.
func NewOrderedObject() *OrderedObject {
	return orderedmap.New[string, any]()
}
