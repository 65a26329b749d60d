package render

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jsonforms/pkg/reference"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/tester"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
	"github.com/goliatone/go-jsonforms/pkg/validation"
)

func personSchema() *schema.Schema {
	return schema.Object(
		schema.Prop("id", schema.Of(schema.TypeString)),
		schema.Prop("age", &schema.Schema{Type: schema.TypeInteger, Keywords: map[string]any{"minimum": 0}}),
		schema.Prop("rows", schema.ArrayOf(schema.Object(schema.Prop("x", schema.Of(schema.TypeInteger))))),
	)
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc := NewService(opts...)
	factory := NewFactory(validation.NewJSONSchemaValidator())
	svc.Register("control", tester.RankWith(1, tester.UITypeIs(uischema.TypeControl)),
		RenderFunc(func(element *uischema.Element, sub *schema.Schema, pointer string, instance any) (Description, error) {
			return factory.Control(sub.DeriveType(), element, sub, pointer, instance)
		}))
	svc.Register("vertical", tester.RankWith(1, tester.UITypeIs(uischema.TypeVerticalLayout)),
		RenderFunc(func(element *uischema.Element, _ *schema.Schema, _ string, _ any) (Description, error) {
			return &Layout{Type: element.Type, Label: element.Label}, nil
		}))
	return svc
}

func TestRender_ControlResolvesValue(t *testing.T) {
	svc := newService(t)
	element := uischema.NewControl("", "#/properties/age")

	desc, err := svc.Render(element, personSchema(), map[string]any{"id": "x1", "age": 30.0}, "#/elements/1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	control, ok := desc.(*Control)
	if !ok {
		t.Fatalf("expected control, got %T", desc)
	}
	if control.Value != 30.0 || control.Label != "Age" || control.Path != "age" {
		t.Fatalf("unexpected control %+v", control)
	}
	if len(control.Alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", control.Alerts)
	}
}

func TestRender_ValidationPopulatesAlerts(t *testing.T) {
	svc := newService(t)
	desc, err := svc.Render(uischema.NewControl("Age", "#/properties/age"), personSchema(), map[string]any{"age": -4.0}, "#/elements/0")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	control := desc.(*Control)
	if len(control.Alerts) != 1 || control.Alerts[0].Type != AlertDanger || control.Alerts[0].Message == "" {
		t.Fatalf("expected one danger alert, got %+v", control.Alerts)
	}
}

func TestRender_AbsentValueIsValid(t *testing.T) {
	svc := newService(t)
	desc, err := svc.Render(uischema.NewControl("", "#/properties/age"), personSchema(), map[string]any{}, "#/elements/0")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	control := desc.(*Control)
	if control.Value != nil || len(control.Alerts) != 0 {
		t.Fatalf("expected absent valid value, got %+v", control)
	}
}

func TestRender_UnresolvablePointerFails(t *testing.T) {
	svc := newService(t)
	desc, err := svc.Render(uischema.NewControl("", "#/properties/missing"), personSchema(), nil, "#/elements/0")
	if !errors.Is(err, reference.ErrUnresolvableSchemaPath) {
		t.Fatalf("expected ErrUnresolvableSchemaPath, got %v", err)
	}
	if desc != nil {
		t.Fatalf("expected no partial description, got %#v", desc)
	}
}

func TestRender_NoApplicableRendererIsFatal(t *testing.T) {
	svc := newService(t)
	_, err := svc.Render(uischema.NewLabel("hello"), personSchema(), nil, "#/elements/0")
	if !errors.Is(err, ErrNoApplicableRenderer) {
		t.Fatalf("expected ErrNoApplicableRenderer, got %v", err)
	}
}

func TestRenderAll_SkipsUnmatchedElements(t *testing.T) {
	svc := newService(t)
	ui := uischema.NewLayout(uischema.TypeVerticalLayout,
		uischema.NewLabel("ignored"),
		uischema.NewControl("", "#/properties/id"),
		uischema.NewLayout(uischema.TypeVerticalLayout,
			uischema.NewLabel("nested label"),
			uischema.NewControl("", "#/properties/age"),
		),
	)
	got, err := svc.RenderAll(personSchema(), ui, map[string]any{"id": "x1", "age": 30.0})
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 descriptions, got %d", len(got))
	}
	layout, ok := got[1].(*Layout)
	if !ok || len(layout.Elements) != 1 {
		t.Fatalf("expected nested layout with one child, got %#v", got[1])
	}

	var values []any
	for _, control := range Controls(got...) {
		values = append(values, control.Value)
	}
	if diff := cmp.Diff([]any{"x1", 30.0}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderAll_ChildErrorsPropagate(t *testing.T) {
	svc := newService(t)
	ui := uischema.NewLayout(uischema.TypeVerticalLayout, uischema.NewControl("", "#/properties/nope"))
	if _, err := svc.RenderAll(personSchema(), ui, nil); !errors.Is(err, reference.ErrUnresolvableSchemaPath) {
		t.Fatalf("expected schema path error, got %v", err)
	}
}

func TestRenderAll_UsesRegisteredReferences(t *testing.T) {
	refs := reference.NewResolver()
	refs.Register("#/elements/0", "#/properties/age")
	svc := newService(t, WithReferences(refs))

	ui := uischema.NewLayout(uischema.TypeVerticalLayout, &uischema.Element{Type: uischema.TypeControl})
	got, err := svc.RenderAll(personSchema(), ui, map[string]any{"age": 7.0})
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	if control := got[0].(*Control); control.Value != 7.0 || control.Pointer != "#/properties/age" {
		t.Fatalf("unexpected control %+v", control)
	}
}

func TestRenderAll_NonLayoutRoot(t *testing.T) {
	svc := newService(t)
	got, err := svc.RenderAll(personSchema(), uischema.NewControl("", "#/properties/id"), map[string]any{"id": "a"})
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	if len(got) != 1 || got[0].(*Control).Value != "a" {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestRender_FanOutControl(t *testing.T) {
	svc := newService(t)
	desc, err := svc.Render(uischema.NewControl("", "#/properties/rows/items/properties/x"), personSchema(),
		map[string]any{"rows": []any{map[string]any{"x": 1.0}, map[string]any{"x": 2.0}}}, "#/elements/2")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	control := desc.(*Control)
	if diff := cmp.Diff([]any{1.0, 2.0}, control.Value); diff != "" {
		t.Fatalf("fan-out mismatch (-want +got):\n%s", diff)
	}
	if !control.FanOut() {
		t.Fatalf("expected fan-out control")
	}
	if len(control.Alerts) != 0 {
		t.Fatalf("expected elements to validate individually, got %+v", control.Alerts)
	}
}

func TestRender_LastRegistrationOverrides(t *testing.T) {
	svc := newService(t)
	svc.Register("override", tester.RankWith(1, tester.UITypeIs(uischema.TypeControl)),
		RenderFunc(func(*uischema.Element, *schema.Schema, string, any) (Description, error) {
			return &Label{Text: "override"}, nil
		}))
	desc, err := svc.Render(uischema.NewControl("", "#/properties/id"), personSchema(), nil, "#")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if label, ok := desc.(*Label); !ok || label.Text != "override" {
		t.Fatalf("expected override renderer, got %#v", desc)
	}
	if diff := cmp.Diff([]string{"control", "vertical", "override"}, svc.Renderers()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderAll_Rules(t *testing.T) {
	svc := newService(t)
	ageControl := uischema.NewControl("", "#/properties/age")
	ageControl.Rule = &uischema.Rule{
		Effect:    uischema.EffectHide,
		Condition: &uischema.Condition{Scope: &uischema.Scope{Ref: "#/properties/id"}, ExpectedValue: "anonymous"},
	}
	nested := uischema.NewLayout(uischema.TypeVerticalLayout, uischema.NewControl("", "#/properties/id"))
	nested.Rule = &uischema.Rule{Effect: uischema.EffectDisable, Condition: &uischema.Condition{Expression: "age >= 65"}}
	ui := uischema.NewLayout(uischema.TypeVerticalLayout, ageControl, nested)

	got, err := svc.RenderAll(personSchema(), ui, map[string]any{"id": "anonymous", "age": 70.0})
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	controls := Controls(got...)
	if len(controls) != 1 || controls[0].Pointer != "#/properties/id" {
		t.Fatalf("expected only the id control, got %+v", controls)
	}
	if !controls[0].Disabled {
		t.Fatalf("expected control disabled through its layout")
	}

	got, err = svc.RenderAll(personSchema(), ui, map[string]any{"id": "x1", "age": 30.0})
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	controls = Controls(got...)
	if len(controls) != 2 || controls[1].Disabled {
		t.Fatalf("expected both controls enabled, got %+v", controls)
	}

	if _, err := svc.Render(ageControl, personSchema(), map[string]any{"id": "anonymous"}, "#/elements/0"); !errors.Is(err, ErrHidden) {
		t.Fatalf("expected ErrHidden, got %v", err)
	}
}

func TestRenderAll_RuleThroughScalarKeepsRendering(t *testing.T) {
	svc := newService(t)
	ageControl := uischema.NewControl("", "#/properties/age")
	ageControl.Rule = &uischema.Rule{
		Effect:    uischema.EffectShow,
		Condition: &uischema.Condition{Scope: &uischema.Scope{Ref: "#/properties/id/properties/sub"}, ExpectedValue: "x"},
	}
	idControl := uischema.NewControl("", "#/properties/id")
	idControl.Rule = &uischema.Rule{Effect: uischema.EffectDisable, Condition: &uischema.Condition{Expression: "id.sub == null"}}
	ui := uischema.NewLayout(uischema.TypeVerticalLayout, ageControl, idControl)

	got, err := svc.RenderAll(personSchema(), ui, map[string]any{"id": "x1", "age": 30.0})
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	controls := Controls(got...)
	if len(controls) != 1 || controls[0].Pointer != "#/properties/id" {
		t.Fatalf("expected only the id control, got %+v", controls)
	}
	if !controls[0].Disabled {
		t.Fatalf("expected id control disabled")
	}
}
