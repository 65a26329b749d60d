package basic

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jsonforms/pkg/render"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
	"github.com/goliatone/go-jsonforms/pkg/validation"
)

func personSchema() *schema.Schema {
	return schema.Object(
		schema.Prop("name", schema.Of(schema.TypeString)),
		schema.Prop("age", &schema.Schema{Type: schema.TypeInteger, Keywords: map[string]any{"minimum": 0}}),
		schema.Prop("height", schema.Of(schema.TypeNumber)),
		schema.Prop("vegetarian", schema.Of(schema.TypeBoolean)),
		schema.Prop("nickname", &schema.Schema{Types: []string{schema.TypeString, schema.TypeNull}}),
	)
}

func newService() *render.Service {
	svc := render.NewService()
	Register(svc, render.NewFactory(validation.NewJSONSchemaValidator()))
	return svc
}

func TestRegister_PicksTypedControls(t *testing.T) {
	svc := newService()
	cases := []struct {
		pointer string
		typ     string
		input   string
		step    string
	}{
		{pointer: "#/properties/name", typ: "string", input: "text"},
		{pointer: "#/properties/age", typ: "integer", input: "number", step: "1"},
		{pointer: "#/properties/height", typ: "number", input: "number", step: "0.01"},
		{pointer: "#/properties/vegetarian", typ: "boolean", input: "checkbox"},
		{pointer: "#/properties/nickname", typ: "generic", input: "text"},
	}
	for _, tc := range cases {
		t.Run(tc.typ, func(t *testing.T) {
			desc, err := svc.Render(uischema.NewControl("", tc.pointer), personSchema(), map[string]any{}, "#/elements/0")
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			control, ok := desc.(*render.Control)
			if !ok {
				t.Fatalf("expected control, got %T", desc)
			}
			got := []string{control.Type, control.Input, control.Step}
			if diff := cmp.Diff([]string{tc.typ, tc.input, tc.step}, got); diff != "" {
				t.Fatalf("control mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegister_LayoutsAndLabels(t *testing.T) {
	svc := newService()
	ui := uischema.NewLayout(uischema.TypeVerticalLayout,
		uischema.NewLabel("Personal"),
		uischema.NewLayout(uischema.TypeHorizontalLayout,
			uischema.NewControl("Full name", "#/properties/name"),
			uischema.NewControl("", "#/properties/age"),
		),
		&uischema.Element{Type: uischema.TypeGroup, Label: "Diet", Elements: []*uischema.Element{
			uischema.NewControl("", "#/properties/vegetarian"),
		}},
	)
	got, err := svc.RenderAll(personSchema(), ui, map[string]any{"name": "Ada", "age": 36.0, "vegetarian": true})
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 descriptions, got %d", len(got))
	}
	if label, ok := got[0].(*render.Label); !ok || label.Text != "Personal" {
		t.Fatalf("unexpected label %#v", got[0])
	}
	row, ok := got[1].(*render.Layout)
	if !ok || row.Type != uischema.TypeHorizontalLayout || len(row.Elements) != 2 {
		t.Fatalf("unexpected row %#v", got[1])
	}
	group, ok := got[2].(*render.Layout)
	if !ok || group.Type != uischema.TypeGroup || group.Label != "Diet" {
		t.Fatalf("unexpected group %#v", got[2])
	}

	var labels []string
	for _, control := range render.Controls(got...) {
		labels = append(labels, control.Label)
	}
	if diff := cmp.Diff([]string{"Full name", "Age", "Vegetarian"}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertValue(t *testing.T) {
	cases := []struct {
		name    string
		control Control
		in      any
		want    any
	}{
		{name: "string passthrough", control: StringControl{}, in: "x", want: "x"},
		{name: "string from number", control: StringControl{}, in: 2.5, want: "2.5"},
		{name: "string nil", control: StringControl{}, in: nil, want: nil},
		{name: "number", control: NumberControl{}, in: " 1.25 ", want: 1.25},
		{name: "number invalid", control: NumberControl{}, in: "abc", want: "abc"},
		{name: "integer", control: IntegerControl{}, in: "42", want: int64(42)},
		{name: "integer whole float", control: IntegerControl{}, in: 3.0, want: int64(3)},
		{name: "integer fraction", control: IntegerControl{}, in: 3.5, want: 3.5},
		{name: "boolean", control: BooleanControl{}, in: "true", want: true},
		{name: "boolean invalid", control: BooleanControl{}, in: "maybe", want: "maybe"},
		{name: "generic", control: GenericControl{}, in: []any{1.0}, want: []any{1.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.control.ConvertValue(tc.in)); diff != "" {
				t.Fatalf("convert mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestControlFor(t *testing.T) {
	for _, name := range []string{"string", "number", "integer", "boolean", "generic"} {
		control, ok := ControlFor(name)
		if !ok || control.Name() != name {
			t.Fatalf("expected control %q, got %v", name, control)
		}
	}
	if _, ok := ControlFor("date"); ok {
		t.Fatalf("unexpected control for unknown name")
	}
}
