// Package formrender turns a section tree plus submitted values into a
// render-node tree a client can lay out without knowing any field kind.
// The same function serves live entry against the current template and
// historical view against a frozen snapshot, so it must stay total: every
// field produces a node, including fields of kinds this build does not know.
package formrender

import (
	"fmt"

	"github.com/carebridge/carebridge/internal/domain/fieldtype"
	"github.com/carebridge/carebridge/internal/domain/template"
)

type Mode string

const (
	ModeEdit Mode = "edit"
	ModeView Mode = "view"
)

// WidgetUnsupported marks a field whose kind has no registry entry. The
// client shows a read-only placeholder with the raw value instead of an
// input control.
const WidgetUnsupported = "unsupported"

type FieldNode struct {
	FieldID     string   `json:"field_id"`
	Label       string   `json:"label"`
	Description *string  `json:"description,omitempty"`
	Widget      string   `json:"widget"`
	Required    bool     `json:"required"`
	Value       any      `json:"value,omitempty"`
	Display     string   `json:"display,omitempty"`
	Options     []string `json:"options,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type SectionNode struct {
	SectionID string      `json:"section_id"`
	Title     string      `json:"title"`
	Fields    []FieldNode `json:"fields"`
}

// Render walks the sections in document order and emits one node per field.
// data holds the submitted values keyed by field id; errs holds per-field
// validation messages to surface inline (both may be nil). Unknown kinds
// never fail the render: they come out as unsupported placeholder nodes.
func Render(sections []template.Section, data map[string]any, errs map[string]string, mode Mode) []SectionNode {
	out := make([]SectionNode, 0, len(sections))
	for _, sec := range sections {
		node := SectionNode{
			SectionID: sec.ID,
			Title:     sec.Title,
			Fields:    make([]FieldNode, 0, len(sec.Fields)),
		}
		for _, f := range sec.Fields {
			node.Fields = append(node.Fields, renderField(f, data[f.ID], errs[f.ID], mode))
		}
		out = append(out, node)
	}
	return out
}

func renderField(f template.Field, value any, errMsg string, mode Mode) FieldNode {
	n := FieldNode{
		FieldID:     f.ID,
		Label:       f.Label,
		Description: f.Description,
		Required:    f.Required,
		Value:       value,
		Options:     f.Config.Options,
		Min:         f.Config.Min,
		Max:         f.Config.Max,
		Placeholder: f.Config.Placeholder,
		Error:       errMsg,
	}

	spec, ok := fieldtype.Lookup(f.Type)
	if !ok {
		n.Widget = WidgetUnsupported
		if value != nil {
			n.Display = fmt.Sprintf("%v", value)
		}
		return n
	}

	switch mode {
	case ModeView:
		n.Widget = spec.ViewWidget
		if !fieldtype.IsEmpty(value) {
			n.Display = spec.Format(f.Config, value)
		}
	default:
		n.Widget = spec.EditWidget
	}
	return n
}
