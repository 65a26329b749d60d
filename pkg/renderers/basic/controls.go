// Package basic provides the default renderers: typed controls, layouts and
// labels.
package basic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Control describes how a control variant edits its value.
type Control interface {
	Name() string
	InputType() string
	Step() string
	ConvertValue(value any) any
}

// StringControl edits free text.
type StringControl struct{}

func (StringControl) Name() string      { return "string" }
func (StringControl) InputType() string { return "text" }
func (StringControl) Step() string      { return "" }

// ConvertValue returns strings as-is and formats anything else.
func (StringControl) ConvertValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		return typed
	default:
		return toString(typed)
	}
}

// NumberControl edits decimal numbers.
type NumberControl struct{}

func (NumberControl) Name() string      { return "number" }
func (NumberControl) InputType() string { return "number" }
func (NumberControl) Step() string      { return "0.01" }

// ConvertValue parses strings into float64. Unparseable input is returned
// unchanged so validation reports it.
func (NumberControl) ConvertValue(value any) any {
	switch typed := value.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return typed
		}
		return parsed
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		return value
	}
}

// IntegerControl edits whole numbers.
type IntegerControl struct{}

func (IntegerControl) Name() string      { return "integer" }
func (IntegerControl) InputType() string { return "number" }
func (IntegerControl) Step() string      { return "1" }

// ConvertValue parses strings and whole floats into int64.
func (IntegerControl) ConvertValue(value any) any {
	switch typed := value.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return typed
		}
		return parsed
	case float64:
		if typed == math.Trunc(typed) {
			return int64(typed)
		}
		return typed
	case int:
		return int64(typed)
	default:
		return value
	}
}

// BooleanControl edits a flag.
type BooleanControl struct{}

func (BooleanControl) Name() string      { return "boolean" }
func (BooleanControl) InputType() string { return "checkbox" }
func (BooleanControl) Step() string      { return "" }

// ConvertValue parses strings with strconv.ParseBool.
func (BooleanControl) ConvertValue(value any) any {
	if typed, ok := value.(string); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return typed
		}
		return parsed
	}
	return value
}

// GenericControl is the fallback for controls no typed renderer claims.
type GenericControl struct{}

func (GenericControl) Name() string      { return "generic" }
func (GenericControl) InputType() string { return "text" }
func (GenericControl) Step() string      { return "" }

// ConvertValue returns value unchanged.
func (GenericControl) ConvertValue(value any) any { return value }

var controls = map[string]Control{
	StringControl{}.Name():  StringControl{},
	NumberControl{}.Name():  NumberControl{},
	IntegerControl{}.Name(): IntegerControl{},
	BooleanControl{}.Name(): BooleanControl{},
	GenericControl{}.Name(): GenericControl{},
}

// ControlFor returns the control variant registered under name, as stored in
// render.Control.Type.
func ControlFor(name string) (Control, bool) {
	control, ok := controls[name]
	return control, ok
}

func toString(value any) string {
	switch typed := value.(type) {
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return fmt.Sprint(typed)
	}
}
