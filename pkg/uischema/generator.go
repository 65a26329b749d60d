package uischema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-jsonforms/pkg/pathutil"
	"github.com/goliatone/go-jsonforms/pkg/schema"
)

// ErrUnsupportedSchemaType reports a schema node whose type the generator
// cannot classify.
var ErrUnsupportedSchemaType = errors.New("uischema: unsupported schema type")

// Registrar records UiPath -> schema pointer mappings. *reference.Resolver
// satisfies it.
type Registrar interface {
	Register(uiPath, pointer string)
}

// Generator derives a default UI schema from a data schema.
type Generator struct {
	refs Registrar
}

// GeneratorOption customises a Generator.
type GeneratorOption func(*Generator)

// WithReferences registers every generated control's UiPath with refs.
func WithReferences(refs Registrar) GeneratorOption {
	return func(g *Generator) {
		g.refs = refs
	}
}

// NewGenerator constructs a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate is shorthand for NewGenerator().Generate(root).
func Generate(root *schema.Schema) (*Element, error) {
	return NewGenerator().Generate(root)
}

// ChildPath returns the UiPath of the idx-th child of the element at uiPath.
func ChildPath(uiPath string, idx int) string {
	return uiPath + "/elements/" + strconv.Itoa(idx)
}

// Generate walks root and returns the UI tree for pointer "#". A root that
// produces nothing yields an empty VerticalLayout.
func (g *Generator) Generate(root *schema.Schema) (*Element, error) {
	if root == nil {
		return nil, errors.New("uischema: data schema is nil")
	}
	element, err := g.generate(root, pathutil.Root, "")
	if err != nil {
		return nil, err
	}
	if element == nil {
		element = NewLayout(TypeVerticalLayout)
	}
	if g.refs != nil {
		RegisterReferences(element, g.refs)
	}
	return element, nil
}

// RegisterReferences records the UiPath and scope pointer of every Control
// below root, with root at "#".
func RegisterReferences(root *Element, refs Registrar) {
	root.Walk(pathutil.Root, func(uiPath string, el *Element) bool {
		if ref, ok := el.ScopeRef(); ok && el.Type == TypeControl {
			refs.Register(uiPath, ref)
		}
		return true
	})
}

func (g *Generator) generate(node *schema.Schema, pointer, name string) (*Element, error) {
	switch typ := node.DeriveType(); typ {
	case schema.TypeObject:
		layout := NewLayout(TypeVerticalLayout)
		if name != "" {
			layout.Elements = append(layout.Elements, NewLabel(pathutil.Beautify(name)))
		}
		if node.Properties == nil {
			return layout, nil
		}
		for pair := node.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if isIgnoredProperty(pair.Key, pair.Value) {
				continue
			}
			child, err := g.generate(pair.Value, pathutil.Join(pointer, "properties", pair.Key), pair.Key)
			if err != nil {
				return nil, err
			}
			if child != nil {
				layout.Elements = append(layout.Elements, child)
			}
		}
		return layout, nil

	case schema.TypeArray:
		var children []*Element
		switch {
		case node.IsTuple():
			for idx, item := range node.TupleItems {
				child, err := g.generate(item, pathutil.Join(pointer, pathutil.TupleItem(idx)), "")
				if err != nil {
					return nil, err
				}
				if child != nil {
					children = append(children, child)
				}
			}
		case node.Items != nil:
			child, err := g.generate(node.Items, pathutil.Join(pointer, "items"), "")
			if err != nil {
				return nil, err
			}
			if child != nil {
				children = append(children, child)
			}
		default:
			return nil, nil
		}
		return NewLayout(TypeHorizontalLayout, children...), nil

	case schema.TypeString, schema.TypeNumber, schema.TypeInteger, schema.TypeBoolean:
		return NewControl(pathutil.Beautify(name), pointer), nil

	case schema.TypeNull:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %q at %s", ErrUnsupportedSchemaType, typ, pointer)
	}
}

// isIgnoredProperty skips an "id" entry holding a plain string, which is
// schema metadata rather than a data field.
func isIgnoredProperty(name string, value *schema.Schema) bool {
	if name != "id" || !value.IsLiteral() {
		return false
	}
	_, isString := value.Literal().(string)
	return isString
}
