// Package tester implements ranked renderer selection: testers score a UI
// element against its resolved subschema and the highest rank wins.
package tester

import (
	"strings"

	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

// NotApplicable is the rank reported by a tester that does not match.
const NotApplicable = -1

// Tester ranks how well a renderer fits element and its resolved subschema.
// Applicable ranks are >= 0. sub is nil for elements without a scope.
type Tester func(element *uischema.Element, sub *schema.Schema) int

// Predicate is a boolean test over an element and its subschema.
type Predicate func(element *uischema.Element, sub *schema.Schema) bool

// RankWith returns a tester reporting rank when predicate holds.
func RankWith(rank int, predicate Predicate) Tester {
	if rank < 0 {
		rank = 0
	}
	return func(element *uischema.Element, sub *schema.Schema) int {
		if predicate == nil || !predicate(element, sub) {
			return NotApplicable
		}
		return rank
	}
}

// And combines testers. The result is NotApplicable when any component is,
// otherwise the sum of the component ranks, so adding conditions never lowers
// a rank.
func And(testers ...Tester) Tester {
	return func(element *uischema.Element, sub *schema.Schema) int {
		total := 0
		for _, t := range testers {
			if t == nil {
				return NotApplicable
			}
			rank := t(element, sub)
			if rank < 0 {
				return NotApplicable
			}
			total += rank
		}
		return total
	}
}

// UITypeIs matches elements of the given type.
func UITypeIs(typ string) Predicate {
	return func(element *uischema.Element, _ *schema.Schema) bool {
		return element != nil && element.Type == typ
	}
}

// SchemaTypeIs matches subschemas deriving to typ.
func SchemaTypeIs(typ string) Predicate {
	return func(_ *uischema.Element, sub *schema.Schema) bool {
		return sub != nil && sub.DeriveType() == typ
	}
}

// SchemaFormatIs matches subschemas declaring format.
func SchemaFormatIs(format string) Predicate {
	return func(_ *uischema.Element, sub *schema.Schema) bool {
		return sub != nil && sub.Format == format
	}
}

// ScopeEndsWith matches elements whose scope pointer ends with suffix.
func ScopeEndsWith(suffix string) Predicate {
	return func(element *uischema.Element, _ *schema.Schema) bool {
		ref, ok := element.ScopeRef()
		return ok && strings.HasSuffix(ref, suffix)
	}
}

// OptionIs matches elements whose option name equals value.
func OptionIs(name string, value any) Predicate {
	return func(element *uischema.Element, _ *schema.Schema) bool {
		got, ok := element.Option(name)
		return ok && got == value
	}
}

// AllOf holds when every predicate holds.
func AllOf(predicates ...Predicate) Predicate {
	return func(element *uischema.Element, sub *schema.Schema) bool {
		for _, p := range predicates {
			if p == nil || !p(element, sub) {
				return false
			}
		}
		return true
	}
}

// AnyOf holds when at least one predicate holds.
func AnyOf(predicates ...Predicate) Predicate {
	return func(element *uischema.Element, sub *schema.Schema) bool {
		for _, p := range predicates {
			if p != nil && p(element, sub) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(element *uischema.Element, sub *schema.Schema) bool {
		return p == nil || !p(element, sub)
	}
}
