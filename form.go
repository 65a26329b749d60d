// Package jsonforms renders JSON Schema backed forms into description trees.
//
// A Form is built once from a data schema (and optionally a UI schema) and
// can then render any number of data instances:
//
//	form, err := jsonforms.NewForm(dataSchema)
//	descriptions, err := form.Render(map[string]any{"age": 30})
package jsonforms

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goliatone/go-jsonforms/pkg/instance"
	"github.com/goliatone/go-jsonforms/pkg/reference"
	"github.com/goliatone/go-jsonforms/pkg/render"
	"github.com/goliatone/go-jsonforms/pkg/renderers/basic"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/tester"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
	"github.com/goliatone/go-jsonforms/pkg/validation"
)

// Option customises form setup.
type Option func(*config)

type customRenderer struct {
	name     string
	tester   tester.Tester
	renderer render.Renderer
}

type config struct {
	ui           *uischema.Element
	renderers    []customRenderer
	validator    validation.Validator
	validatorSet bool
	logger       *slog.Logger
	defaults     bool
}

// WithUISchema renders ui instead of a generated UI schema.
func WithUISchema(ui *uischema.Element) Option {
	return func(c *config) {
		c.ui = ui
	}
}

// WithRenderer registers a renderer after the built-in ones, so it wins ties
// against them.
func WithRenderer(name string, t tester.Tester, renderer render.Renderer) Option {
	return func(c *config) {
		if t == nil || renderer == nil {
			return
		}
		c.renderers = append(c.renderers, customRenderer{name: name, tester: t, renderer: renderer})
	}
}

// WithValidator replaces the JSON Schema validator. Pass nil to disable
// validation.
func WithValidator(v validation.Validator) Option {
	return func(c *config) {
		c.validator = v
		c.validatorSet = true
	}
}

// WithLogger sets the logger shared by the render service.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithoutDefaultRenderers skips the built-in controls, layouts and labels.
func WithoutDefaultRenderers() Option {
	return func(c *config) {
		c.defaults = false
	}
}

// Form binds a data schema and UI schema to a configured render service.
type Form struct {
	id      string
	schema  *schema.Schema
	ui      *uischema.Element
	refs    *reference.Resolver
	factory *render.Factory
	service *render.Service
	logger  *slog.Logger
}

// NewForm runs the setup phase: it wires the reference resolver, renderers
// and validator, then generates the UI schema unless one was supplied.
// Every control of the final UI schema registers its UiPath with the
// reference resolver.
func NewForm(dataSchema *schema.Schema, opts ...Option) (*Form, error) {
	if dataSchema == nil {
		return nil, errors.New("jsonforms: data schema is nil")
	}
	cfg := config{
		logger:   slog.New(slog.DiscardHandler),
		defaults: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if !cfg.validatorSet {
		cfg.validator = validation.NewJSONSchemaValidator()
	}

	id := uuid.NewString()
	logger := cfg.logger.With("form_id", id)
	refs := reference.NewResolver()
	factory := render.NewFactory(cfg.validator)
	service := render.NewService(render.WithReferences(refs), render.WithLogger(logger))
	if cfg.defaults {
		basic.Register(service, factory)
	}
	for _, custom := range cfg.renderers {
		service.Register(custom.name, custom.tester, custom.renderer)
	}

	ui := cfg.ui
	if ui != nil {
		uischema.RegisterReferences(ui, refs)
	} else {
		generated, err := uischema.NewGenerator(uischema.WithReferences(refs)).Generate(dataSchema)
		if err != nil {
			return nil, fmt.Errorf("jsonforms: generate ui schema: %w", err)
		}
		ui = generated
		logger.Debug("jsonforms: ui schema generated", "controls", len(refs.Mappings()))
	}

	return &Form{
		id:      id,
		schema:  dataSchema,
		ui:      ui,
		refs:    refs,
		factory: factory,
		service: service,
		logger:  logger,
	}, nil
}

// ID returns the form identifier used in log attributes.
func (f *Form) ID() string { return f.id }

// Schema returns the data schema.
func (f *Form) Schema() *schema.Schema { return f.schema }

// UISchema returns the supplied or generated UI schema.
func (f *Form) UISchema() *uischema.Element { return f.ui }

// References returns the UiPath -> schema pointer mappings registered during
// setup.
func (f *Form) References() *reference.Resolver { return f.refs }

// Service exposes the render service for additional registrations.
func (f *Form) Service() *render.Service { return f.service }

// Factory returns the control factory sharing the form's validator.
func (f *Form) Factory() *render.Factory { return f.factory }

// Render renders the UI schema against a decoded data instance.
func (f *Form) Render(data any) ([]render.Description, error) {
	return f.service.RenderAll(f.schema, f.ui, data)
}

// RenderJSON renders against a raw JSON instance. Empty input renders an
// absent instance.
func (f *Form) RenderJSON(raw []byte) ([]render.Description, error) {
	data, err := instance.Get(raw, "#")
	if err != nil {
		return nil, fmt.Errorf("jsonforms: %w", err)
	}
	return f.Render(data)
}

// Resolve returns the data value bound to the UI element at uiPath, for
// example "#/elements/1".
func (f *Form) Resolve(data any, uiPath string) (any, error) {
	return f.refs.ResolveUI(data, uiPath)
}

// Validate renders data and collects the alerts of every control.
func (f *Form) Validate(data any) (validation.Result, error) {
	descriptions, err := f.Render(data)
	if err != nil {
		return validation.Result{}, err
	}
	result := validation.NewResult()
	for _, control := range render.Controls(descriptions...) {
		for _, alert := range control.Alerts {
			result.Add(control.Pointer, errors.New(alert.Message))
		}
	}
	return result, nil
}
