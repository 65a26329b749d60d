package tester

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

var (
	integerControl = uischema.NewControl("Age", "#/properties/age")
	integerSchema  = schema.Of(schema.TypeInteger)
)

func TestRankWith(t *testing.T) {
	tst := RankWith(3, UITypeIs(uischema.TypeControl))
	if got := tst(integerControl, integerSchema); got != 3 {
		t.Fatalf("expected rank 3, got %d", got)
	}
	if got := tst(uischema.NewLayout(uischema.TypeVerticalLayout), nil); got != NotApplicable {
		t.Fatalf("expected NotApplicable, got %d", got)
	}
}

func TestAnd(t *testing.T) {
	control := RankWith(1, UITypeIs(uischema.TypeControl))
	integer := RankWith(2, SchemaTypeIs(schema.TypeInteger))
	combined := And(control, integer)

	if got := combined(integerControl, integerSchema); got != 3 {
		t.Fatalf("expected summed rank 3, got %d", got)
	}
	if got := combined(integerControl, schema.Of(schema.TypeString)); got != NotApplicable {
		t.Fatalf("expected NotApplicable, got %d", got)
	}
	if got := combined(integerControl, integerSchema); got < control(integerControl, integerSchema) {
		t.Fatalf("combined rank %d must not be below its components", got)
	}
}

func TestPredicates(t *testing.T) {
	element := &uischema.Element{
		Type:    uischema.TypeControl,
		Scope:   &uischema.Scope{Ref: "#/properties/email"},
		Options: map[string]any{"multi": true},
	}
	sub := &schema.Schema{Type: schema.TypeString, Format: "email"}

	cases := []struct {
		name string
		p    Predicate
		want bool
	}{
		{name: "format", p: SchemaFormatIs("email"), want: true},
		{name: "format miss", p: SchemaFormatIs("date"), want: false},
		{name: "scope suffix", p: ScopeEndsWith("/email"), want: true},
		{name: "option", p: OptionIs("multi", true), want: true},
		{name: "option miss", p: OptionIs("readonly", true), want: false},
		{name: "all of", p: AllOf(UITypeIs(uischema.TypeControl), SchemaTypeIs(schema.TypeString)), want: true},
		{name: "any of", p: AnyOf(SchemaTypeIs(schema.TypeNumber), SchemaFormatIs("email")), want: true},
		{name: "not", p: Not(SchemaTypeIs(schema.TypeString)), want: false},
		{name: "schema type", p: SchemaTypeIs(schema.TypeString), want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.p(element, sub); got != tc.want {
				t.Fatalf("want %v got %v", tc.want, got)
			}
		})
	}
	if SchemaTypeIs(schema.TypeString)(element, nil) {
		t.Fatalf("nil subschema must not match a type")
	}
}

func TestFindBestMatch_HighestRankWins(t *testing.T) {
	reg := NewRegistry[string]()
	reg.Register("generic", RankWith(1, UITypeIs(uischema.TypeControl)), "generic")
	reg.Register("integer", And(RankWith(1, UITypeIs(uischema.TypeControl)), RankWith(1, SchemaTypeIs(schema.TypeInteger))), "integer")
	reg.Register("layout", RankWith(5, UITypeIs(uischema.TypeVerticalLayout)), "layout")

	entry, rank, ok := reg.FindBestMatch(integerControl, integerSchema)
	if !ok {
		t.Fatalf("expected a match")
	}
	if entry.Renderer != "integer" || rank != 2 {
		t.Fatalf("expected integer renderer at rank 2, got %q at %d", entry.Renderer, rank)
	}
}

func TestFindBestMatch_TieGoesToLastRegistration(t *testing.T) {
	reg := NewRegistry[string]()
	reg.Register("builtin", RankWith(2, UITypeIs(uischema.TypeControl)), "builtin")
	reg.Register("override", RankWith(2, UITypeIs(uischema.TypeControl)), "override")

	entry, _, ok := reg.FindBestMatch(integerControl, integerSchema)
	if !ok || entry.Renderer != "override" {
		t.Fatalf("expected override to win the tie, got %q", entry.Renderer)
	}
}

func TestFindBestMatch_NeverReturnsNotApplicable(t *testing.T) {
	reg := NewRegistry[string]()
	reg.Register("never", func(*uischema.Element, *schema.Schema) int { return NotApplicable }, "never")
	reg.Register("zero", RankWith(0, SchemaTypeIs(schema.TypeBoolean)), "zero")

	if _, _, ok := reg.FindBestMatch(integerControl, integerSchema); ok {
		t.Fatalf("expected no match")
	}
	entry, rank, ok := reg.FindBestMatch(integerControl, schema.Of(schema.TypeBoolean))
	if !ok || entry.Renderer != "zero" || rank != 0 {
		t.Fatalf("expected rank 0 match, got %q/%d/%v", entry.Renderer, rank, ok)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	reg := NewRegistry[string]()
	reg.Register("a", RankWith(1, UITypeIs(uischema.TypeControl)), "a")
	snap := reg.Snapshot()
	reg.Register("b", RankWith(1, UITypeIs(uischema.TypeControl)), "b")

	var names []string
	for _, entry := range snap.Entries() {
		names = append(names, entry.Name)
	}
	if diff := cmp.Diff([]string{"a"}, names); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", reg.Len())
	}
}

func TestRegistry_ConcurrentRegisterAndMatch(t *testing.T) {
	reg := NewRegistry[int]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			reg.Register("r", RankWith(i, UITypeIs(uischema.TypeControl)), i)
		}(i)
		go func() {
			defer wg.Done()
			reg.FindBestMatch(integerControl, integerSchema)
		}()
	}
	wg.Wait()
	entry, rank, ok := reg.FindBestMatch(integerControl, integerSchema)
	if !ok || rank != 15 || entry.Renderer != 15 {
		t.Fatalf("expected rank 15 renderer, got %d/%d", entry.Renderer, rank)
	}
}
