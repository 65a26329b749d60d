package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Parse decodes a JSON or YAML data schema. JSON is detected by a leading
// '{'; anything else goes through the YAML decoder.
func Parse(raw []byte) (*Schema, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("schema: document is empty")
	}
	if trimmed[0] == '{' {
		return ParseJSON(trimmed)
	}
	return ParseYAML(trimmed)
}

// ParseJSON decodes a JSON data schema.
func ParseJSON(raw []byte) (*Schema, error) {
	out := &Schema{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("schema: parse json: %w", err)
	}
	if out.IsLiteral() {
		return nil, errors.New("schema: root must be an object")
	}
	return out, nil
}

// ParseYAML decodes a YAML data schema, keeping mapping order.
func ParseYAML(raw []byte) (*Schema, error) {
	converted, err := YAMLToJSON(raw)
	if err != nil {
		return nil, err
	}
	return ParseJSON(converted)
}

// UnmarshalJSON decodes a schema node. Values that are not JSON objects
// become literal nodes.
func (s *Schema) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("schema: empty node")
	}
	if trimmed[0] != '{' {
		var value any
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return fmt.Errorf("schema: decode literal: %w", err)
		}
		*s = Schema{literal: true, literalValue: value}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("schema: decode node: %w", err)
	}

	out := Schema{}
	for key, raw := range fields {
		handled, err := out.decodeField(key, raw)
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("schema: decode %q: %w", key, err)
		}
		if out.Keywords == nil {
			out.Keywords = make(map[string]any)
		}
		out.Keywords[key] = value
	}
	*s = out
	return nil
}

func (s *Schema) decodeField(key string, raw json.RawMessage) (bool, error) {
	switch key {
	case "id":
		return decodeString(raw, &s.ID), nil
	case "$ref":
		return decodeString(raw, &s.Ref), nil
	case "title":
		return decodeString(raw, &s.Title), nil
	case "description":
		return decodeString(raw, &s.Description), nil
	case "format":
		return decodeString(raw, &s.Format), nil
	case "type":
		if decodeString(raw, &s.Type) {
			return true, nil
		}
		var types []string
		if err := json.Unmarshal(raw, &types); err != nil {
			return false, fmt.Errorf("schema: type must be a string or list of strings: %w", err)
		}
		s.Types = types
		return true, nil
	case "properties":
		props := orderedmap.New[string, *Schema]()
		if err := json.Unmarshal(raw, props); err != nil {
			return false, fmt.Errorf("schema: decode properties: %w", err)
		}
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value == nil {
				pair.Value = NewLiteral(nil)
			}
		}
		s.Properties = props
		return true, nil
	case "additionalProperties":
		var flag bool
		if err := json.Unmarshal(raw, &flag); err == nil {
			if !flag {
				// false keeps its validation meaning without marking the node
				// as an object container
				return false, nil
			}
			s.AdditionalProperties = &Schema{}
			return true, nil
		}
		child := &Schema{}
		if err := json.Unmarshal(raw, child); err != nil {
			return false, fmt.Errorf("schema: decode additionalProperties: %w", err)
		}
		s.AdditionalProperties = child
		return true, nil
	case "items":
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var tuple []*Schema
			if err := json.Unmarshal(trimmed, &tuple); err != nil {
				return false, fmt.Errorf("schema: decode tuple items: %w", err)
			}
			if tuple == nil {
				tuple = []*Schema{}
			}
			for idx, item := range tuple {
				if item == nil {
					tuple[idx] = NewLiteral(nil)
				}
			}
			s.TupleItems = tuple
			return true, nil
		}
		child := &Schema{}
		if err := json.Unmarshal(trimmed, child); err != nil {
			return false, fmt.Errorf("schema: decode items: %w", err)
		}
		s.Items = child
		return true, nil
	}
	return false, nil
}

func decodeString(raw json.RawMessage, target *string) bool {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	*target = value
	return true
}

// MarshalJSON encodes the node with structural keywords first and the
// remaining keywords sorted by name.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s.literal {
		return json.Marshal(s.literalValue)
	}
	out := orderedmap.New[string, any]()
	if s.ID != "" {
		out.Set("id", s.ID)
	}
	if s.Ref != "" {
		out.Set("$ref", s.Ref)
	}
	switch {
	case s.Type != "":
		out.Set("type", s.Type)
	case len(s.Types) > 0:
		out.Set("type", s.Types)
	}
	if s.Title != "" {
		out.Set("title", s.Title)
	}
	if s.Description != "" {
		out.Set("description", s.Description)
	}
	if s.Format != "" {
		out.Set("format", s.Format)
	}
	if s.Properties != nil {
		out.Set("properties", s.Properties)
	}
	if s.AdditionalProperties != nil {
		out.Set("additionalProperties", s.AdditionalProperties)
	}
	switch {
	case s.TupleItems != nil:
		out.Set("items", s.TupleItems)
	case s.Items != nil:
		out.Set("items", s.Items)
	}
	keys := make([]string, 0, len(s.Keywords))
	for key := range s.Keywords {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out.Set(key, s.Keywords[key])
	}
	return json.Marshal(out)
}

// UnmarshalYAML lets schemas be embedded in YAML documents.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	value, err := yamlValue(node)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("schema: convert yaml: %w", err)
	}
	return s.UnmarshalJSON(raw)
}

// MarshalYAML emits the same ordered structure as MarshalJSON in block style.
func (s Schema) MarshalYAML() (any, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("schema: encode yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	blockStyle(node.Content[0])
	return node.Content[0], nil
}

// JSONToYAML converts a JSON document to block style YAML keeping key order.
func JSONToYAML(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("schema: parse json: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, errors.New("schema: json document is empty")
	}
	blockStyle(node.Content[0])
	out, err := yaml.Marshal(node.Content[0])
	if err != nil {
		return nil, fmt.Errorf("schema: encode yaml: %w", err)
	}
	return out, nil
}

// YAMLToJSON converts a YAML document to JSON keeping mapping key order.
func YAMLToJSON(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	if node.Kind == 0 {
		return nil, errors.New("schema: yaml document is empty")
	}
	value, err := yamlValue(&node)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("schema: convert yaml: %w", err)
	}
	return out, nil
}

func yamlValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return yamlValue(node.Content[0])
	case yaml.MappingNode:
		out := orderedmap.New[string, any]()
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			value, err := yamlValue(node.Content[idx+1])
			if err != nil {
				return nil, err
			}
			out.Set(node.Content[idx].Value, value)
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("schema: dangling yaml alias at line %d", node.Line)
		}
		return yamlValue(node.Alias)
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("schema: decode yaml scalar at line %d: %w", node.Line, err)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("schema: unsupported yaml node kind %d", node.Kind)
	}
}

func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
