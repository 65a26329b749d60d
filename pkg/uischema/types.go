package uischema

// Element type tags understood by the built-in renderers.
const (
	TypeControl          = "Control"
	TypeVerticalLayout   = "VerticalLayout"
	TypeHorizontalLayout = "HorizontalLayout"
	TypeGroup            = "Group"
	TypeLabel            = "Label"
)

var layoutTypes = map[string]struct{}{
	TypeVerticalLayout:   {},
	TypeHorizontalLayout: {},
	TypeGroup:            {},
}

// Element is a node of a UI schema. Layouts own Elements, controls bind to a
// data schema pointer through Scope, labels carry Text.
type Element struct {
	Type     string         `json:"type" yaml:"type"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Scope    *Scope         `json:"scope,omitempty" yaml:"scope,omitempty"`
	Elements []*Element     `json:"elements,omitempty" yaml:"elements,omitempty"`
	Options  map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
	Rule     *Rule          `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// Rule effects.
const (
	EffectShow    = "SHOW"
	EffectHide    = "HIDE"
	EffectEnable  = "ENABLE"
	EffectDisable = "DISABLE"
)

// Rule applies Effect to an element while Condition holds.
type Rule struct {
	Effect    string     `json:"effect" yaml:"effect"`
	Condition *Condition `json:"condition" yaml:"condition"`
}

// Condition is either a scope/expected value pair or a boolean expression
// over data paths, e.g. `age >= 18 && country == "NL"`.
type Condition struct {
	Scope         *Scope `json:"scope,omitempty" yaml:"scope,omitempty"`
	ExpectedValue any    `json:"expectedValue,omitempty" yaml:"expectedValue,omitempty"`
	Expression    string `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// Scope holds the schema pointer a control binds to.
type Scope struct {
	Ref string `json:"$ref" yaml:"$ref"`
}

// NewControl builds a Control bound to pointer.
func NewControl(label, pointer string) *Element {
	return &Element{Type: TypeControl, Label: label, Scope: &Scope{Ref: pointer}}
}

// NewLabel builds a Label element.
func NewLabel(text string) *Element {
	return &Element{Type: TypeLabel, Text: text}
}

// NewLayout builds a layout of the given type. Elements is never nil so the
// serialised form always carries the list.
func NewLayout(typ string, elements ...*Element) *Element {
	if elements == nil {
		elements = []*Element{}
	}
	return &Element{Type: typ, Elements: elements}
}

// IsLayout reports whether the element is a container type. Unknown types
// that declare child elements count as layouts too.
func (e *Element) IsLayout() bool {
	if e == nil {
		return false
	}
	if _, ok := layoutTypes[e.Type]; ok {
		return true
	}
	return e.Elements != nil && e.Scope == nil
}

// ScopeRef returns the element's inline pointer, if any.
func (e *Element) ScopeRef() (string, bool) {
	if e == nil || e.Scope == nil || e.Scope.Ref == "" {
		return "", false
	}
	return e.Scope.Ref, true
}

// Option returns the named option value.
func (e *Element) Option(name string) (any, bool) {
	if e == nil || e.Options == nil {
		return nil, false
	}
	value, ok := e.Options[name]
	return value, ok
}

// Walk visits e and its descendants depth-first together with their UiPath.
// Returning false from fn stops descent into that element's children.
func (e *Element) Walk(uiPath string, fn func(uiPath string, element *Element) bool) {
	if e == nil {
		return
	}
	if !fn(uiPath, e) {
		return
	}
	for idx, child := range e.Elements {
		child.Walk(ChildPath(uiPath, idx), fn)
	}
}
