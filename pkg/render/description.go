// Package render dispatches UI schema elements to ranked renderers and
// assembles the resulting description tree.
package render

import (
	"encoding/json"

	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/validation"
)

// Description kinds.
const (
	KindControl = "control"
	KindLayout  = "layout"
	KindLabel   = "label"
)

// AlertDanger marks a failed validation.
const AlertDanger = "danger"

// Description is a node of the render output tree.
type Description interface {
	Kind() string
}

// Validatable is implemented by descriptions that check their own value.
// Validate reports whether the value is valid and refreshes the alerts.
type Validatable interface {
	Validate() bool
}

// Alert is a message attached to a control.
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"msg"`
}

// Control describes a single bound input.
type Control struct {
	// Type is the control variant picked by the renderer (string, integer...).
	Type    string         `json:"type"`
	Label   string         `json:"label"`
	Pointer string         `json:"pointer"`
	Path    string         `json:"path"`
	Value   any            `json:"value"`
	Input   string         `json:"input,omitempty"`
	Step    string         `json:"step,omitempty"`
	Options map[string]any `json:"options,omitempty"`
	Alerts  []Alert        `json:"alerts"`
	// Disabled is set when a rule disables the control or an ancestor layout.
	Disabled bool `json:"disabled,omitempty"`

	Schema   *schema.Schema `json:"-"`
	Instance any            `json:"-"`

	validator validation.Validator
}

// Kind implements Description.
func (c *Control) Kind() string { return KindControl }

// Validate checks Value against Schema with the configured validator. The
// first failure becomes a danger alert; a valid value clears the alerts.
// Fan-out values are checked element by element.
func (c *Control) Validate() bool {
	c.Alerts = []Alert{}
	if c.validator == nil {
		return true
	}
	values := []any{c.Value}
	if c.FanOut() {
		values = c.Value.([]any)
	}
	var err error
	for _, value := range values {
		if err = c.validator.Validate(c.Schema, value); err != nil {
			break
		}
	}
	if err == nil {
		return true
	}
	c.Alerts = append(c.Alerts, Alert{Type: AlertDanger, Message: validation.Message(err)})
	return false
}

// FanOut reports whether the control is bound to a value collected across
// array elements.
func (c *Control) FanOut() bool {
	_, ok := c.Value.([]any)
	return ok && c.Schema != nil && c.Schema.DeriveType() != schema.TypeArray
}

// MarshalJSON adds the description kind.
func (c *Control) MarshalJSON() ([]byte, error) {
	type alias Control
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{Kind: KindControl, alias: (*alias)(c)})
}

// Layout groups child descriptions.
type Layout struct {
	Type     string        `json:"type"`
	Label    string        `json:"label,omitempty"`
	Elements []Description `json:"elements"`
}

// Kind implements Description.
func (l *Layout) Kind() string { return KindLayout }

// MarshalJSON adds the description kind.
func (l *Layout) MarshalJSON() ([]byte, error) {
	type alias Layout
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{Kind: KindLayout, alias: (*alias)(l)})
}

// Label is static text.
type Label struct {
	Text string `json:"text"`
}

// Kind implements Description.
func (l *Label) Kind() string { return KindLabel }

// MarshalJSON adds the description kind.
func (l *Label) MarshalJSON() ([]byte, error) {
	type alias Label
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{Kind: KindLabel, alias: (*alias)(l)})
}

// Walk visits d and, for layouts, every descendant depth-first.
func Walk(d Description, fn func(Description)) {
	if d == nil {
		return
	}
	fn(d)
	if layout, ok := d.(*Layout); ok {
		for _, child := range layout.Elements {
			Walk(child, fn)
		}
	}
}

// Controls collects the controls of a description tree in order.
func Controls(descriptions ...Description) []*Control {
	var out []*Control
	for _, d := range descriptions {
		Walk(d, func(node Description) {
			if control, ok := node.(*Control); ok {
				out = append(out, control)
			}
		})
	}
	return out
}
