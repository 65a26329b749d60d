package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-jsonforms/pkg/pathutil"
	"github.com/goliatone/go-jsonforms/pkg/reference"
	"github.com/goliatone/go-jsonforms/pkg/rule"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/tester"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

// ErrNoApplicableRenderer reports that no registered tester matched an
// element.
var ErrNoApplicableRenderer = errors.New("render: no applicable renderer")

// ErrHidden reports that an element's rule hides it for the current data.
// Layouts and RenderAll drop hidden elements.
var ErrHidden = errors.New("render: element hidden by rule")

// Renderer turns a UI element bound to sub into a description. Layout
// renderers may return a *Layout without elements; the service fills in the
// rendered children.
type Renderer interface {
	Render(element *uischema.Element, sub *schema.Schema, pointer string, instance any) (Description, error)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(element *uischema.Element, sub *schema.Schema, pointer string, instance any) (Description, error)

// Render implements Renderer.
func (f RenderFunc) Render(element *uischema.Element, sub *schema.Schema, pointer string, instance any) (Description, error) {
	return f(element, sub, pointer, instance)
}

// Service renders UI schema trees. The registry and reference map are read
// through a snapshot per pass, so registration during a pass does not affect
// it.
type Service struct {
	refs     *reference.Resolver
	registry *tester.Registry[Renderer]
	rules    *rule.Evaluator
	logger   *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithReferences shares a reference resolver, typically the one the UI
// schema generator registered into.
func WithReferences(refs *reference.Resolver) Option {
	return func(s *Service) {
		if refs != nil {
			s.refs = refs
		}
	}
}

// WithLogger sets the logger used for skipped elements.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a Service with an empty renderer registry.
func NewService(opts ...Option) *Service {
	s := &Service{
		refs:     reference.NewResolver(),
		registry: tester.NewRegistry[Renderer](),
		rules:    rule.NewEvaluator(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// References returns the resolver used for UiPath lookups.
func (s *Service) References() *reference.Resolver {
	return s.refs
}

// Register adds a renderer. Equal ranks favour later registrations.
func (s *Service) Register(name string, t tester.Tester, renderer Renderer) {
	if renderer == nil {
		return
	}
	s.registry.Register(name, t, renderer)
}

// Renderers lists registered renderer names in registration order.
func (s *Service) Renderers() []string {
	entries := s.registry.Entries()
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

// Render renders element located at uiPath. Any failure, including a
// missing renderer anywhere but among layout children, is returned.
func (s *Service) Render(element *uischema.Element, root *schema.Schema, instance any, uiPath string) (Description, error) {
	return s.render(s.registry.Snapshot(), element, root, instance, uiPath, false)
}

// RenderAll renders the top-level elements of ui. Elements without an
// applicable renderer are skipped; other failures abort the pass. A root that
// is not a layout is rendered on its own at "#".
func (s *Service) RenderAll(root *schema.Schema, ui *uischema.Element, instance any) ([]Description, error) {
	if ui == nil {
		return nil, errors.New("render: ui schema is nil")
	}
	pass := s.registry.Snapshot()

	if !ui.IsLayout() {
		desc, err := s.render(pass, ui, root, instance, pathutil.Root, false)
		if errors.Is(err, ErrNoApplicableRenderer) || errors.Is(err, ErrHidden) {
			s.skipped(ui, pathutil.Root, err)
			return []Description{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []Description{desc}, nil
	}

	out := make([]Description, 0, len(ui.Elements))
	for idx, element := range ui.Elements {
		uiPath := uischema.ChildPath(pathutil.Root, idx)
		desc, err := s.render(pass, element, root, instance, uiPath, false)
		if errors.Is(err, ErrNoApplicableRenderer) || errors.Is(err, ErrHidden) {
			s.skipped(element, uiPath, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

func (s *Service) render(pass *tester.Registry[Renderer], element *uischema.Element, root *schema.Schema, instance any, uiPath string, disabled bool) (Description, error) {
	if element == nil {
		return nil, fmt.Errorf("render: %s: element is nil", uiPath)
	}

	outcome, err := s.rules.Evaluate(element.Rule, instance)
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", uiPath, err)
	}
	if outcome.Hidden {
		return nil, fmt.Errorf("%w: %s", ErrHidden, uiPath)
	}
	disabled = disabled || outcome.Disabled

	pointer := s.pointerFor(element, uiPath)
	var sub *schema.Schema
	if pointer != "" {
		resolved, err := reference.ResolveSchema(root, pointer)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", uiPath, err)
		}
		sub = resolved
	}

	entry, _, ok := pass.FindBestMatch(element, sub)
	if !ok {
		return nil, fmt.Errorf("%w for %s element at %s", ErrNoApplicableRenderer, element.Type, uiPath)
	}

	desc, err := entry.Renderer.Render(element, sub, pointer, instance)
	if err != nil {
		return nil, fmt.Errorf("render: %s: renderer %q: %w", uiPath, entry.Name, err)
	}
	if desc == nil {
		return nil, fmt.Errorf("render: %s: renderer %q returned no description", uiPath, entry.Name)
	}

	if layout, ok := desc.(*Layout); ok && layout.Elements == nil {
		children := make([]Description, 0, len(element.Elements))
		for idx, child := range element.Elements {
			childPath := uischema.ChildPath(uiPath, idx)
			rendered, err := s.render(pass, child, root, instance, childPath, disabled)
			if errors.Is(err, ErrNoApplicableRenderer) || errors.Is(err, ErrHidden) {
				s.skipped(child, childPath, err)
				continue
			}
			if err != nil {
				return nil, err
			}
			children = append(children, rendered)
		}
		layout.Elements = children
	}

	if control, ok := desc.(*Control); ok && disabled {
		control.Disabled = true
	}
	if v, ok := desc.(Validatable); ok {
		v.Validate()
	}
	return desc, nil
}

// pointerFor prefers the element's inline scope, then the registered
// mapping. Elements with neither are unbound.
func (s *Service) pointerFor(element *uischema.Element, uiPath string) string {
	if ref, ok := element.ScopeRef(); ok {
		return ref
	}
	if uiPath == pathutil.Root {
		return ""
	}
	if _, ok := s.refs.Lookup(uiPath); !ok {
		return ""
	}
	return s.refs.SchemaPointerFor(uiPath)
}

func (s *Service) skipped(element *uischema.Element, uiPath string, err error) {
	typ := ""
	if element != nil {
		typ = element.Type
	}
	s.logger.Debug("render: element skipped", "ui_path", uiPath, "type", typ, "error", err)
}
