// Package openapi extracts data schemas embedded in OpenAPI 3 documents so
// request bodies and components can be rendered as forms.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-jsonforms/pkg/jsonschema"
	"github.com/goliatone/go-jsonforms/pkg/schema"
)

const componentSchemasPrefix = "#/components/schemas/"

// preferred media types when an operation declares several request bodies.
var mediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Operation summarises an OpenAPI operation that carries a request body.
type Operation struct {
	ID          string `json:"id"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Summary     string `json:"summary,omitempty"`
	MediaType   string `json:"mediaType,omitempty"`
	SchemaRef   string `json:"schemaRef,omitempty"`
	HasSchema   bool   `json:"hasSchema"`
	Description string `json:"description,omitempty"`
}

// Spec is a loaded OpenAPI document. kin-openapi validates and indexes the
// operations; schemas are read from the ordered payload so property order
// survives extraction.
type Spec struct {
	doc     *openapi3.T
	ordered *schema.OrderedObject
	ops     map[string]Operation
}

// Load parses an OpenAPI 3 document in JSON or YAML.
func Load(ctx context.Context, doc schema.Document) (*Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	parsed, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", doc.Location(), err)
	}

	decoded, err := schema.DecodeOrdered(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("openapi: %s: %w", doc.Location(), err)
	}
	ordered, ok := decoded.(*schema.OrderedObject)
	if !ok {
		return nil, errors.New("openapi: document root must be an object")
	}

	spec := &Spec{doc: parsed, ordered: ordered, ops: make(map[string]Operation)}
	spec.indexOperations()
	return spec, nil
}

func (s *Spec) indexOperations() {
	if s.doc.Paths == nil {
		return
	}
	for path, item := range s.doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			if operation == nil {
				continue
			}
			id := operation.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			op := Operation{
				ID:          id,
				Method:      method,
				Path:        path,
				Summary:     operation.Summary,
				Description: operation.Description,
			}
			if body := operation.RequestBody; body != nil && body.Value != nil {
				if mediaType, mt := pickMediaType(body.Value.Content); mt != nil && mt.Schema != nil {
					op.MediaType = mediaType
					op.SchemaRef = mt.Schema.Ref
					op.HasSchema = true
				}
			}
			s.ops[id] = op
		}
	}
}

func pickMediaType(content openapi3.Content) (string, *openapi3.MediaType) {
	for _, name := range mediaTypes {
		if mt, ok := content[name]; ok {
			return name, mt
		}
	}
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "", nil
	}
	return names[0], content[names[0]]
}

// Operations lists the indexed operations sorted by id.
func (s *Spec) Operations() []Operation {
	out := make([]Operation, 0, len(s.ops))
	for _, op := range s.ops {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ComponentNames lists component schema names in document order.
func (s *Spec) ComponentNames() []string {
	components, ok := walk(s.ordered, "components", "schemas").(*schema.OrderedObject)
	if !ok {
		return nil
	}
	names := make([]string, 0, components.Len())
	for pair := components.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// ComponentSchema returns components.schemas[name] with its refs expanded.
func (s *Spec) ComponentSchema(name string) (*schema.Schema, error) {
	node := walk(s.ordered, "components", "schemas", name)
	if node == nil {
		return nil, fmt.Errorf("openapi: component schema %q not found", name)
	}
	return s.expand(node)
}

// RequestBodySchema returns the request body schema of an operation.
func (s *Spec) RequestBodySchema(operationID string) (*schema.Schema, error) {
	op, ok := s.ops[operationID]
	if !ok {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}
	if !op.HasSchema {
		return nil, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}
	if strings.HasPrefix(op.SchemaRef, componentSchemasPrefix) {
		return s.ComponentSchema(strings.TrimPrefix(op.SchemaRef, componentSchemasPrefix))
	}

	body := walk(s.ordered, "paths", op.Path, strings.ToLower(op.Method), "requestBody")
	if obj, ok := body.(*schema.OrderedObject); ok {
		if ref, ok := obj.Get("$ref"); ok {
			if refString, ok := ref.(string); ok {
				body = walk(s.ordered, pointerKeys(refString)...)
			}
		}
	}
	node := walk(body, "content", op.MediaType, "schema")
	if node == nil {
		return nil, fmt.Errorf("openapi: operation %q request body schema not found", operationID)
	}
	return s.expand(node)
}

// expand resolves the refs of node against the whole document.
func (s *Spec) expand(node any) (*schema.Schema, error) {
	if _, ok := node.(*schema.OrderedObject); !ok {
		return nil, errors.New("openapi: schema is not an object")
	}
	resolved, err := jsonschema.DereferenceNode(s.ordered, node)
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return resolved, nil
}

func pointerKeys(ref string) []string {
	ref = strings.TrimPrefix(ref, "#/")
	parts := strings.Split(ref, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return parts
}

func walk(node any, keys ...string) any {
	current := node
	for _, key := range keys {
		obj, ok := current.(*schema.OrderedObject)
		if !ok {
			return nil
		}
		next, ok := obj.Get(key)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}
