// Package rule evaluates UI schema rules: conditional effects that hide,
// show, disable or enable an element depending on the data instance.
package rule

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/goliatone/go-jsonforms/pkg/reference"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

// Outcome is the effect of a rule on one element.
type Outcome struct {
	Hidden   bool
	Disabled bool
}

// Evaluator evaluates rules, caching compiled expressions.
type Evaluator struct {
	compiled sync.Map // expression string -> node
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns the outcome of r against data. A nil rule has no effect.
func (e *Evaluator) Evaluate(r *uischema.Rule, data any) (Outcome, error) {
	if r == nil {
		return Outcome{}, nil
	}
	holds, err := e.Holds(r.Condition, data)
	if err != nil {
		return Outcome{}, err
	}
	switch r.Effect {
	case uischema.EffectHide:
		return Outcome{Hidden: holds}, nil
	case uischema.EffectShow:
		return Outcome{Hidden: !holds}, nil
	case uischema.EffectDisable:
		return Outcome{Disabled: holds}, nil
	case uischema.EffectEnable:
		return Outcome{Disabled: !holds}, nil
	default:
		return Outcome{}, fmt.Errorf("rule: unknown effect %q", r.Effect)
	}
}

// Holds reports whether cond is satisfied by data. Scope conditions compare
// the resolved value with ExpectedValue; otherwise Expression is evaluated.
func (e *Evaluator) Holds(cond *uischema.Condition, data any) (bool, error) {
	if cond == nil {
		return false, errors.New("rule: condition is nil")
	}
	if ref, ok := scopeRef(cond); ok {
		value, err := resolve(data, ref)
		if err != nil {
			return false, err
		}
		return equal(value, cond.ExpectedValue), nil
	}
	node, err := e.compile(cond.Expression)
	if err != nil {
		return false, err
	}
	return node.eval(data)
}

func (e *Evaluator) compile(expression string) (node, error) {
	if cached, ok := e.compiled.Load(expression); ok {
		return cached.(node), nil
	}
	n, err := parse(expression)
	if err != nil {
		return nil, err
	}
	e.compiled.Store(expression, n)
	return n, nil
}

// resolve reads pointer from data. A path that runs through a scalar counts
// as an absent value.
func resolve(data any, pointer string) (any, error) {
	value, err := reference.ResolveInstance(data, pointer)
	if errors.Is(err, reference.ErrUnresolvableInstancePath) {
		return nil, nil
	}
	return value, err
}

func scopeRef(cond *uischema.Condition) (string, bool) {
	if cond.Scope == nil || cond.Scope.Ref == "" {
		return "", false
	}
	return cond.Scope.Ref, true
}

// equal compares decoded JSON values, treating all numeric kinds alike.
func equal(got, want any) bool {
	if a, ok := toFloat(got); ok {
		b, ok := toFloat(want)
		return ok && a == b
	}
	return reflect.DeepEqual(got, want)
}
