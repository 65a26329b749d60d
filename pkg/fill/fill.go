// Package fill edits a data instance interactively, prompting once per
// rendered control and writing the answers back with instance.Set.
package fill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-jsonforms/pkg/instance"
	"github.com/goliatone/go-jsonforms/pkg/render"
	"github.com/goliatone/go-jsonforms/pkg/renderers/basic"
)

// Filler prompts for control values.
type Filler struct {
	driver PromptDriver
	logger *slog.Logger
}

// Option customises a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithLogger sets the logger used for skipped controls.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New constructs a Filler using survey unless another driver is supplied.
func New(opts ...Option) *Filler {
	f := &Filler{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver()
	}
	return f
}

// Fill prompts for every control in descriptions, in render order, and
// returns raw with the answers applied. Empty text answers keep the current
// value. Disabled controls and controls bound across array elements are
// skipped.
func (f *Filler) Fill(ctx context.Context, descriptions []render.Description, raw []byte) ([]byte, error) {
	out := append([]byte(nil), raw...)
	for _, control := range render.Controls(descriptions...) {
		if control.Pointer == "" || control.Disabled || control.FanOut() {
			f.logger.Debug("fill: control skipped", "pointer", control.Pointer, "label", control.Label)
			continue
		}
		value, changed, err := f.prompt(ctx, control)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}
		out, err = instance.Set(out, control.Pointer, value)
		if err != nil {
			return nil, fmt.Errorf("fill: %s: %w", control.Label, err)
		}
	}
	return out, nil
}

func (f *Filler) prompt(ctx context.Context, control *render.Control) (any, bool, error) {
	kind, ok := basic.ControlFor(control.Type)
	if !ok {
		kind = basic.GenericControl{}
	}

	if kind.Name() == (basic.BooleanControl{}).Name() {
		current, _ := control.Value.(bool)
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: control.Label,
			Default: current,
			Help:    control.Pointer,
		})
		if err != nil {
			return nil, false, err
		}
		return answer, true, nil
	}

	defaultValue := ""
	if control.Value != nil {
		defaultValue = fmt.Sprint(control.Value)
	}
	answer, err := f.driver.Input(ctx, InputConfig{
		Message: control.Label,
		Default: defaultValue,
		Help:    control.Pointer,
		Validator: func(text string) error {
			if strings.TrimSpace(text) == "" {
				return nil
			}
			return check(control, kind.ConvertValue(text))
		},
	})
	if err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(answer) == "" {
		return nil, false, nil
	}

	value := kind.ConvertValue(answer)
	if err := check(control, value); err != nil {
		if infoErr := f.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", control.Label, err)); infoErr != nil {
			return nil, false, infoErr
		}
		return nil, false, nil
	}
	return value, true, nil
}

// check validates a candidate value the same way the rendered control does.
func check(control *render.Control, value any) error {
	candidate := *control
	candidate.Value = value
	if candidate.Validate() {
		return nil
	}
	if len(candidate.Alerts) == 0 {
		return errors.New("invalid value")
	}
	return errors.New(candidate.Alerts[0].Message)
}
