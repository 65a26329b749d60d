// Package reference maps UI element paths to schema pointers and resolves
// pointers against data schemas and data instances.
package reference

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/goliatone/go-jsonforms/pkg/pathutil"
	"github.com/goliatone/go-jsonforms/pkg/schema"
)

var (
	// ErrUnresolvableSchemaPath reports a pointer fragment missing from the
	// data schema.
	ErrUnresolvableSchemaPath = errors.New("reference: unresolvable schema path")
	// ErrUnresolvableInstancePath reports a traversal into a scalar value.
	ErrUnresolvableInstancePath = errors.New("reference: unresolvable instance path")
)

// Resolver owns the reference map (UiPath -> schema pointer). Mappings are
// written during setup and read during render passes.
type Resolver struct {
	mu       sync.RWMutex
	mappings map[string]string
}

// NewResolver constructs an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{mappings: make(map[string]string)}
}

// Register upserts the pointer bound to uiPath.
func (r *Resolver) Register(uiPath, pointer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[uiPath] = pointer
}

// AddMappings registers every entry of mappings.
func (r *Resolver) AddMappings(mappings map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.mappings, mappings)
}

// Lookup returns the pointer registered for uiPath.
func (r *Resolver) Lookup(uiPath string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pointer, ok := r.mappings[uiPath]
	return pointer, ok
}

// Mappings returns a copy of the reference map.
func (r *Resolver) Mappings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.mappings)
}

// SchemaPointerFor returns the pointer registered for uiPath. The root path
// maps to itself, and unmapped paths are assumed to already be pointers.
// The render service calls it for elements without an inline scope once a
// mapping exists.
func (r *Resolver) SchemaPointerFor(uiPath string) string {
	if uiPath == pathutil.Root {
		return pathutil.Root
	}
	if pointer, ok := r.Lookup(uiPath); ok {
		return pointer
	}
	return uiPath
}

// ResolveUI resolves the instance value bound to uiPath.
func (r *Resolver) ResolveUI(instance any, uiPath string) (any, error) {
	return ResolveInstance(instance, r.SchemaPointerFor(uiPath))
}

// ResolveSchema walks pointer from root. Arrays fan out: a fragment that
// does not address the array itself is applied to its items, and tuple items
// are collected into a synthetic tuple schema.
func ResolveSchema(root *schema.Schema, pointer string) (*schema.Schema, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrUnresolvableSchemaPath)
	}
	return resolveSchema(root, pathutil.ToFragments(pointer), pointer)
}

func resolveSchema(node *schema.Schema, fragments []string, pointer string) (*schema.Schema, error) {
	for i := 0; i < len(fragments); i++ {
		fragment := fragments[i]
		if fragment == pathutil.Root {
			continue
		}
		if node == nil || node.IsLiteral() {
			return nil, unresolvable(pointer, fragment)
		}
		idx, isTupleIndex := pathutil.TupleIndex(fragment)
		for fragment != "items" && !isTupleIndex && node.DeriveType() == schema.TypeArray {
			switch {
			case node.Items != nil:
				node = node.Items
			case node.IsTuple():
				return fanOutTuple(node, fragments[i:], pointer)
			default:
				return nil, unresolvable(pointer, fragment)
			}
		}

		switch {
		case fragment == "properties":
			if i+1 >= len(fragments) {
				return nil, unresolvable(pointer, fragment)
			}
			i++
			child, ok := node.Property(fragments[i])
			if !ok {
				return nil, unresolvable(pointer, fragments[i])
			}
			node = child
		case fragment == "items":
			switch {
			case node.Items != nil:
				node = node.Items
			case node.IsTuple():
				return fanOutTuple(node, fragments[i+1:], pointer)
			default:
				return nil, unresolvable(pointer, fragment)
			}
		case fragment == "additionalProperties":
			if node.AdditionalProperties == nil {
				return nil, unresolvable(pointer, fragment)
			}
			node = node.AdditionalProperties
		case isTupleIndex:
			if idx >= len(node.TupleItems) {
				return nil, unresolvable(pointer, fragment)
			}
			node = node.TupleItems[idx]
		default:
			return nil, unresolvable(pointer, fragment)
		}
	}
	return node, nil
}

func fanOutTuple(node *schema.Schema, rest []string, pointer string) (*schema.Schema, error) {
	out := make([]*schema.Schema, 0, len(node.TupleItems))
	for _, entry := range node.TupleItems {
		resolved, err := resolveSchema(entry, rest, pointer)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return &schema.Schema{Type: schema.TypeArray, TupleItems: out}, nil
}

func unresolvable(pointer, fragment string) error {
	return fmt.Errorf("%w: %q has no fragment %q", ErrUnresolvableSchemaPath, pointer, fragment)
}

// ResolveInstance walks the normalized form of pointer through instance.
// Missing keys and nil values yield nil; slices fan out and collect one
// result per element, with nil for elements that cannot be resolved.
func ResolveInstance(instance any, pointer string) (any, error) {
	return resolveInstance(instance, pathutil.ToFragments(pathutil.Normalize(pointer)), pointer)
}

func resolveInstance(value any, fragments []string, pointer string) (any, error) {
	for i, fragment := range fragments {
		switch typed := value.(type) {
		case nil:
			return nil, nil
		case map[string]any:
			value = typed[fragment]
		case []any:
			if idx, ok := pathutil.TupleIndex(fragment); ok {
				if idx >= len(typed) {
					return nil, nil
				}
				value = typed[idx]
				continue
			}
			out := make([]any, len(typed))
			for j, element := range typed {
				resolved, err := resolveInstance(element, fragments[i:], pointer)
				if err != nil {
					continue
				}
				out[j] = resolved
			}
			return out, nil
		default:
			return nil, fmt.Errorf("%w: %q cannot index %T with %q", ErrUnresolvableInstancePath, pointer, value, fragment)
		}
	}
	return value, nil
}
