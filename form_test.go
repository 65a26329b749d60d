package jsonforms

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jsonforms/pkg/render"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/testsupport"
	"github.com/goliatone/go-jsonforms/pkg/tester"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

func personSchema() *schema.Schema {
	return schema.Object(
		schema.Prop("id", schema.Of(schema.TypeString)),
		schema.Prop("age", &schema.Schema{Type: schema.TypeInteger, Keywords: map[string]any{"minimum": 0}}),
	)
}

func TestForm_RenderGeneratedUISchema(t *testing.T) {
	form, err := NewForm(personSchema())
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if form.ID() == "" {
		t.Fatalf("expected a form id")
	}

	got, err := form.Render(map[string]any{"id": "x1", "age": 30.0})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	controls := render.Controls(got...)
	if len(controls) != 2 {
		t.Fatalf("expected 2 controls, got %d", len(controls))
	}
	if controls[0].Label != "Id" || controls[1].Label != "Age" {
		t.Fatalf("unexpected labels %q, %q", controls[0].Label, controls[1].Label)
	}
	if controls[1].Value != 30.0 {
		t.Fatalf("expected age 30, got %v", controls[1].Value)
	}

	want := map[string]string{
		"#/elements/0": "#/properties/id",
		"#/elements/1": "#/properties/age",
	}
	if diff := cmp.Diff(want, form.References().Mappings()); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}

	testsupport.AssertJSONGolden(t, "testdata/golden/person.render.json", got)
}

func TestForm_LoadedSchemaAndUISchema(t *testing.T) {
	ctx := testsupport.Context()
	dataSchema, err := LoadSchema(ctx, schema.SourceFromFile("testdata/person.schema.json"))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	ui, err := LoadUISchema(ctx, schema.SourceFromFile("testdata/person.ui.yaml"))
	if err != nil {
		t.Fatalf("load ui schema: %v", err)
	}

	form, err := NewForm(dataSchema, WithUISchema(ui))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	got, err := form.RenderJSON([]byte(`{"age": -1}`))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected label and row, got %d descriptions", len(got))
	}
	if label, ok := got[0].(*render.Label); !ok || label.Text != "Person" {
		t.Fatalf("unexpected first description %#v", got[0])
	}
	controls := render.Controls(got...)
	if len(controls) != 1 || controls[0].Label != "Years" || controls[0].Type != "integer" {
		t.Fatalf("unexpected controls %+v", controls)
	}
	if len(controls[0].Alerts) != 1 {
		t.Fatalf("expected minimum violation alert, got %+v", controls[0].Alerts)
	}
	want := map[string]string{"#/elements/1/elements/0": "#/properties/age"}
	if diff := cmp.Diff(want, form.References().Mappings()); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
	age, err := form.Resolve(map[string]any{"age": 4.0}, "#/elements/1/elements/0")
	if err != nil || age != 4.0 {
		t.Fatalf("expected age 4 through the ui path, got %v (%v)", age, err)
	}
}

func TestForm_Validate(t *testing.T) {
	form, err := NewForm(personSchema())
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	result, err := form.Validate(map[string]any{"id": 4.0, "age": 3.0})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid || len(result.Issues) != 1 || result.Issues[0].Pointer != "#/properties/id" {
		t.Fatalf("unexpected result %+v", result)
	}

	result, err = form.Validate(map[string]any{"id": "a"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid result, got %+v", result)
	}
}

func TestForm_WithRendererOverridesDefaults(t *testing.T) {
	custom := render.RenderFunc(func(element *uischema.Element, _ *schema.Schema, pointer string, _ any) (render.Description, error) {
		return &render.Label{Text: "custom " + pointer}, nil
	})
	integerControl := tester.RankWith(2, tester.AllOf(tester.UITypeIs(uischema.TypeControl), tester.SchemaTypeIs(schema.TypeInteger)))

	form, err := NewForm(personSchema(), WithRenderer("custom-integer", integerControl, custom))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	got, err := form.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if label, ok := got[1].(*render.Label); !ok || label.Text != "custom #/properties/age" {
		t.Fatalf("expected custom renderer to win the tie, got %#v", got[1])
	}
}

func TestForm_WithoutDefaultRenderersSkipsEverything(t *testing.T) {
	form, err := NewForm(personSchema(), WithoutDefaultRenderers(), WithValidator(nil))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	got, err := form.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no descriptions, got %#v", got)
	}
}

func TestForm_UnsupportedSchemaType(t *testing.T) {
	root := schema.Object(schema.Prop("either", &schema.Schema{Types: []string{schema.TypeString, schema.TypeInteger}}))
	if _, err := NewForm(root); !errors.Is(err, uischema.ErrUnsupportedSchemaType) {
		t.Fatalf("expected ErrUnsupportedSchemaType, got %v", err)
	}
}
