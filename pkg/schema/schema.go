package schema

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Type names recognised by the form core.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// Properties keeps object members in declaration order.
type Properties = orderedmap.OrderedMap[string, *Schema]

// Schema is a node of a data schema. Object nodes own Properties (in document
// order) and optionally AdditionalProperties; array nodes own either a single
// Items schema or a TupleItems sequence. Every other node is a leaf.
//
// Keywords the form core does not interpret (enum, minimum, format details,
// $schema, ...) are kept in Keywords so validators still see the complete
// subschema after a round trip.
type Schema struct {
	ID                   string
	Ref                  string
	Type                 string
	Types                []string
	Title                string
	Description          string
	Format               string
	Properties           *Properties
	AdditionalProperties *Schema
	Items                *Schema
	TupleItems           []*Schema
	Keywords             map[string]any

	literal      bool
	literalValue any
}

// NewLiteral wraps a non-schema value found where a schema was expected, such
// as a metadata string inside a properties table.
func NewLiteral(value any) *Schema {
	return &Schema{literal: true, literalValue: value}
}

// IsLiteral reports whether the node holds a plain value instead of a schema.
func (s *Schema) IsLiteral() bool {
	return s != nil && s.literal
}

// Literal returns the wrapped value of a literal node.
func (s *Schema) Literal() any {
	if s == nil {
		return nil
	}
	return s.literalValue
}

// DeriveType returns the explicit type, "object" for nodes that declare
// properties or additionalProperties, and "null" otherwise.
func (s *Schema) DeriveType() string {
	if s == nil || s.literal {
		return TypeNull
	}
	if s.Type != "" {
		return s.Type
	}
	if len(s.Types) > 0 {
		// a type union has no single rendering; callers see the joined form
		return strings.Join(s.Types, ",")
	}
	if s.Properties != nil || s.AdditionalProperties != nil {
		return TypeObject
	}
	return TypeNull
}

// IsArray reports whether the node is an array container.
func (s *Schema) IsArray() bool {
	return s.DeriveType() == TypeArray
}

// IsTuple reports whether items is declared as an ordered sequence.
func (s *Schema) IsTuple() bool {
	return s != nil && s.TupleItems != nil
}

// Property returns the named member of an object node.
func (s *Schema) Property(name string) (*Schema, bool) {
	if s == nil || s.Properties == nil {
		return nil, false
	}
	return s.Properties.Get(name)
}

// SetProperty appends or replaces a member, keeping first-insertion order.
func (s *Schema) SetProperty(name string, child *Schema) {
	if s.Properties == nil {
		s.Properties = orderedmap.New[string, *Schema]()
	}
	s.Properties.Set(name, child)
}

// PropertyNames lists the members in declaration order.
func (s *Schema) PropertyNames() []string {
	if s == nil || s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Keyword returns an uninterpreted keyword value.
func (s *Schema) Keyword(name string) (any, bool) {
	if s == nil || s.Keywords == nil {
		return nil, false
	}
	value, ok := s.Keywords[name]
	return value, ok
}

// Object builds an object schema from members, keeping their order. Handy for
// tests and programmatic construction.
func Object(members ...Member) *Schema {
	out := &Schema{Type: TypeObject}
	for _, member := range members {
		out.SetProperty(member.Name, member.Schema)
	}
	return out
}

// Member pairs a property name with its schema for Object.
type Member struct {
	Name   string
	Schema *Schema
}

// Prop is shorthand for Member{name, schema}.
func Prop(name string, schema *Schema) Member {
	return Member{Name: name, Schema: schema}
}

// Of returns a leaf schema with the given type.
func Of(typ string) *Schema {
	return &Schema{Type: typ}
}

// ArrayOf returns an array schema with a shared items schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// TupleOf returns an array schema with positional items.
func TupleOf(items ...*Schema) *Schema {
	return &Schema{Type: TypeArray, TupleItems: append([]*Schema{}, items...)}
}
