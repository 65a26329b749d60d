// Package instance reads and writes values inside raw JSON data instances
// addressed by schema pointers.
package instance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/goliatone/go-jsonforms/pkg/pathutil"
	"github.com/goliatone/go-jsonforms/pkg/reference"
)

// Get returns the value addressed by pointer inside raw. It follows the same
// rules as reference.ResolveInstance: missing values are nil and arrays fan
// out.
func Get(raw []byte, pointer string) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("instance: invalid json document")
	}
	fragments := pathutil.ToFragments(pathutil.Normalize(pointer))
	return walk(gjson.ParseBytes(raw), fragments, pointer)
}

func walk(current gjson.Result, fragments []string, pointer string) (any, error) {
	for i, fragment := range fragments {
		switch {
		case !current.Exists() || current.Type == gjson.Null:
			return nil, nil
		case current.IsObject():
			current = current.Get(escape(fragment))
		case current.IsArray():
			if idx, ok := pathutil.TupleIndex(fragment); ok {
				current = current.Get(strconv.Itoa(idx))
				continue
			}
			var out []any
			current.ForEach(func(_, element gjson.Result) bool {
				value, err := walk(element, fragments[i:], pointer)
				if err != nil {
					value = nil
				}
				out = append(out, value)
				return true
			})
			if out == nil {
				out = []any{}
			}
			return out, nil
		default:
			return nil, fmt.Errorf("%w: %q cannot index %s with %q", reference.ErrUnresolvableInstancePath, pointer, current.Type, fragment)
		}
	}
	if !current.Exists() {
		return nil, nil
	}
	return current.Value(), nil
}

// Set writes value at pointer, creating intermediate objects. Pointers that
// would fan out over an array are rejected; address tuple entries with
// items[<i>] instead.
func Set(raw []byte, pointer string, value any) ([]byte, error) {
	if len(raw) == 0 {
		raw = []byte(`{}`)
	}
	fragments := pathutil.ToFragments(pathutil.Normalize(pointer))
	if len(fragments) == 0 {
		return nil, fmt.Errorf("instance: cannot replace the document root")
	}

	segments := make([]string, 0, len(fragments))
	doc := gjson.ParseBytes(raw)
	current := doc
	for _, fragment := range fragments {
		if current.IsArray() {
			idx, ok := pathutil.TupleIndex(fragment)
			if !ok {
				return nil, fmt.Errorf("%w: %q fans out over an array", reference.ErrUnresolvableInstancePath, pointer)
			}
			segment := strconv.Itoa(idx)
			segments = append(segments, segment)
			current = current.Get(segment)
			continue
		}
		if current.Exists() && current.Type != gjson.Null && !current.IsObject() {
			return nil, fmt.Errorf("%w: %q cannot index %s with %q", reference.ErrUnresolvableInstancePath, pointer, current.Type, fragment)
		}
		segment := escape(fragment)
		segments = append(segments, segment)
		current = current.Get(segment)
	}

	out, err := sjson.SetBytes(raw, strings.Join(segments, "."), value)
	if err != nil {
		return nil, fmt.Errorf("instance: set %q: %w", pointer, err)
	}
	return out, nil
}

// escape quotes the characters gjson and sjson treat as path syntax.
func escape(fragment string) string {
	var b strings.Builder
	b.Grow(len(fragment))
	for _, r := range fragment {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
