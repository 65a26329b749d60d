package basic

import (
	"github.com/goliatone/go-jsonforms/pkg/render"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/tester"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

// Ranks of the built-in renderers. Typed controls outrank the generic
// fallback; custom renderers registered at the same rank replace them.
const (
	RankFallback = 1
	RankTyped    = 2
)

// ControlRenderer renders controls of one variant through a Factory.
type ControlRenderer struct {
	factory *render.Factory
	control Control
}

// NewControlRenderer binds control to factory.
func NewControlRenderer(factory *render.Factory, control Control) *ControlRenderer {
	if factory == nil {
		factory = render.NewFactory(nil)
	}
	return &ControlRenderer{factory: factory, control: control}
}

// Render implements render.Renderer.
func (r *ControlRenderer) Render(element *uischema.Element, sub *schema.Schema, pointer string, instance any) (render.Description, error) {
	desc, err := r.factory.Control(r.control.Name(), element, sub, pointer, instance)
	if err != nil {
		return nil, err
	}
	desc.Input = r.control.InputType()
	desc.Step = r.control.Step()
	return desc, nil
}

// LayoutRenderer returns an empty layout of the element's type. The service
// renders the children.
func LayoutRenderer() render.Renderer {
	return render.RenderFunc(func(element *uischema.Element, _ *schema.Schema, _ string, _ any) (render.Description, error) {
		return &render.Layout{Type: element.Type, Label: element.Label}, nil
	})
}

// LabelRenderer renders a Label element's text.
func LabelRenderer() render.Renderer {
	return render.RenderFunc(func(element *uischema.Element, _ *schema.Schema, _ string, _ any) (render.Description, error) {
		return &render.Label{Text: element.Text}, nil
	})
}

// Registrar is the subset of render.Service used by Register.
type Registrar interface {
	Register(name string, t tester.Tester, renderer render.Renderer)
}

// Register installs the built-in renderers on service, controls first and
// then layouts and labels.
func Register(service Registrar, factory *render.Factory) {
	if service == nil {
		return
	}
	isControl := tester.UITypeIs(uischema.TypeControl)

	service.Register("control", tester.RankWith(RankFallback, isControl), NewControlRenderer(factory, GenericControl{}))
	for _, control := range []Control{StringControl{}, NumberControl{}, IntegerControl{}, BooleanControl{}} {
		t := tester.RankWith(RankTyped, tester.AllOf(isControl, tester.SchemaTypeIs(control.Name())))
		service.Register(control.Name()+"-control", t, NewControlRenderer(factory, control))
	}

	for _, typ := range []string{uischema.TypeVerticalLayout, uischema.TypeHorizontalLayout, uischema.TypeGroup} {
		service.Register(typ, tester.RankWith(RankFallback, tester.UITypeIs(typ)), LayoutRenderer())
	}
	service.Register(uischema.TypeLabel, tester.RankWith(RankFallback, tester.UITypeIs(uischema.TypeLabel)), LabelRenderer())
}
