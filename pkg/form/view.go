package form

import (
	"slices"

	"github.com/goliatone/go-paramform/pkg/widget"
)

// View is the render-ready description of a form. Field tags are the keys
// templates use.
type View struct {
	Controls []Control `json:"controls"`
}

// Control is one rendered widget.
type Control struct {
	Name           string         `json:"name"`
	Label          string         `json:"label"`
	Kind           string         `json:"kind"`
	TriggerRefresh bool           `json:"trigger_refresh"`
	Value          string         `json:"value,omitempty"`
	Readout        string         `json:"readout,omitempty"`
	Min            string         `json:"min,omitempty"`
	Max            string         `json:"max,omitempty"`
	Step           string         `json:"step,omitempty"`
	Multiple       bool           `json:"multiple,omitempty"`
	IncludeAll     bool           `json:"include_all,omitempty"`
	Options        []OptionChoice `json:"options,omitempty"`
}

// OptionChoice is a select option with its selection state resolved.
type OptionChoice struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// View snapshots the controls in store order.
func (f *Form) View() View {
	entries := f.store.Entries()
	view := View{Controls: make([]Control, 0, len(entries))}
	for _, entry := range entries {
		control := Control{
			Name:           entry.Spec.Name,
			Label:          entry.Spec.Label,
			Kind:           entry.Spec.Kind.String(),
			TriggerRefresh: entry.Spec.TriggerRefresh,
		}
		switch entry.Spec.Kind {
		case widget.KindDate:
			control.Value = entry.Value.Text
		case widget.KindNumber:
			control.Value = entry.Value.Text
			control.Readout = f.readouts[entry.Spec.Name]
			if n := entry.Spec.Number; n != nil {
				control.Min, control.Max, control.Step = n.Min, n.Max, n.Step
			}
		case widget.KindSingleSelect:
			control.Options = choices(entry.Spec.Options(), []string{entry.Value.Text})
		case widget.KindMultiSelect:
			control.Multiple = true
			control.IncludeAll = entry.Spec.Select != nil && entry.Spec.Select.IncludeAll
			control.Options = choices(entry.Spec.Options(), entry.Value.IDs)
		default:
			continue
		}
		view.Controls = append(view.Controls, control)
	}
	return view
}

func choices(options []widget.Option, selected []string) []OptionChoice {
	out := make([]OptionChoice, 0, len(options))
	for _, opt := range options {
		out = append(out, OptionChoice{
			ID:       opt.ID,
			Label:    opt.Label,
			Selected: opt.ID != "" && slices.Contains(selected, opt.ID),
		})
	}
	return out
}

// Control returns the control named name.
func (v View) Control(name string) (Control, bool) {
	for _, control := range v.Controls {
		if control.Name == name {
			return control, true
		}
	}
	return Control{}, false
}
