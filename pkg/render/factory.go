package render

import (
	"errors"

	"github.com/goliatone/go-jsonforms/pkg/pathutil"
	"github.com/goliatone/go-jsonforms/pkg/reference"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
	"github.com/goliatone/go-jsonforms/pkg/validation"
)

// Factory builds control descriptions with the shared validator.
type Factory struct {
	validator validation.Validator
}

// NewFactory constructs a Factory. A nil validator disables validation.
func NewFactory(validator validation.Validator) *Factory {
	return &Factory{validator: validator}
}

// Control builds the description of a control bound to pointer. The label is
// the element label or, when empty, the beautified last pointer fragment.
// Values that cannot be resolved are treated as absent.
func (f *Factory) Control(typ string, element *uischema.Element, sub *schema.Schema, pointer string, instance any) (*Control, error) {
	value, err := reference.ResolveInstance(instance, pointer)
	if err != nil {
		if !errors.Is(err, reference.ErrUnresolvableInstancePath) {
			return nil, err
		}
		value = nil
	}

	label := ""
	var options map[string]any
	if element != nil {
		label = element.Label
		options = element.Options
	}
	if label == "" {
		label = pathutil.BeautifiedLastFragment(pointer)
	}

	control := &Control{
		Type:     typ,
		Label:    label,
		Pointer:  pointer,
		Path:     pathutil.Normalize(pointer),
		Value:    value,
		Options:  options,
		Alerts:   []Alert{},
		Schema:   sub,
		Instance: instance,
	}
	if f != nil {
		control.validator = f.validator
	}
	return control, nil
}
