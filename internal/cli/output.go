package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ddddddO/gtree"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-jsonforms/pkg/render"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

// writeOutput encodes value in the configured format. tree builds the tree
// view; a nil tree means the value has no tree form.
func writeOutput(w io.Writer, format string, value any, tree func() *gtree.Node) error {
	switch format {
	case OutputTree:
		if tree == nil {
			return fmt.Errorf("cli: tree output is not available here")
		}
		return gtree.OutputFromRoot(w, tree())
	case OutputYAML:
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("cli: encode output: %w", err)
		}
		out, err := schema.JSONToYAML(raw)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("cli: encode output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
}

// siblings deduplicates node labels; gtree merges siblings with equal text.
type siblings map[string]int

func (s siblings) add(parent *gtree.Node, text string) *gtree.Node {
	s[text]++
	if n := s[text]; n > 1 {
		text += strings.Repeat("\u200B", n-1)
	}
	return parent.Add(text)
}

func descriptionTree(title string, descriptions []render.Description) func() *gtree.Node {
	return func() *gtree.Node {
		root := gtree.NewRoot(title)
		addDescriptions(root, descriptions)
		return root
	}
}

func addDescriptions(parent *gtree.Node, descriptions []render.Description) {
	seen := siblings{}
	alert := color.New(color.FgRed).SprintFunc()
	for _, desc := range descriptions {
		switch typed := desc.(type) {
		case *render.Layout:
			text := typed.Type
			if typed.Label != "" {
				text += " " + typed.Label
			}
			addDescriptions(seen.add(parent, text), typed.Elements)
		case *render.Label:
			seen.add(parent, "Label: "+typed.Text)
		case *render.Control:
			node := seen.add(parent, fmt.Sprintf("%s (%s) = %s", typed.Label, typed.Type, formatValue(typed.Value)))
			alerts := siblings{}
			for _, a := range typed.Alerts {
				alerts.add(node, alert("! "+a.Message))
			}
		}
	}
}

func uiTree(ui *uischema.Element) func() *gtree.Node {
	return func() *gtree.Node {
		root := gtree.NewRoot(elementText(ui))
		addElements(root, ui.Elements)
		return root
	}
}

func addElements(parent *gtree.Node, elements []*uischema.Element) {
	seen := siblings{}
	for _, element := range elements {
		addElements(seen.add(parent, elementText(element)), element.Elements)
	}
}

func elementText(element *uischema.Element) string {
	switch {
	case element.Type == uischema.TypeLabel:
		return "Label: " + element.Text
	case element.Label != "" && element.Type == uischema.TypeControl:
		ref, _ := element.ScopeRef()
		return fmt.Sprintf("Control %s -> %s", element.Label, ref)
	case element.Type == uischema.TypeControl:
		ref, _ := element.ScopeRef()
		return "Control -> " + ref
	case element.Label != "":
		return element.Type + " " + element.Label
	default:
		return element.Type
	}
}

func formatValue(value any) string {
	if value == nil {
		return "<unset>"
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(raw)
}
