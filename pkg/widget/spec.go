package widget

import "slices"

// Option is one selectable entry of a select widget.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DateSpec carries the initial value of a date widget.
type DateSpec struct {
	Selected string
}

// NumberSpec bounds a slider. Numbers stay in their textual form so values
// such as "2.50" are echoed back to the backend untouched.
type NumberSpec struct {
	Min      string
	Max      string
	Step     string
	Selected string
}

// SelectSpec backs both single and multi select widgets.
type SelectSpec struct {
	Options     []Option
	SelectedID  string
	SelectedIDs []string
	// IncludeAll is reported by the backend for multi selects: an empty
	// selection means "every option" on the server side.
	IncludeAll bool
}

// RangeSpec is decoded so the payload round-trips, but nothing renders it.
type RangeSpec struct {
	Min           string
	Max           string
	Step          string
	SelectedLower string
	SelectedUpper string
}

// Spec is the immutable description of one form field received from the
// backend. Exactly one of the kind-specific pointers is set, matching Kind.
type Spec struct {
	Name           string
	Label          string
	Kind           Kind
	TriggerRefresh bool

	Date   *DateSpec
	Number *NumberSpec
	Select *SelectSpec
	Range  *RangeSpec
}

// Renderable reports whether the widget produces a control and a stored
// value. Select widgets without options and Range widgets are skipped.
func (s Spec) Renderable() bool {
	switch s.Kind {
	case KindDate:
		return true
	case KindNumber:
		return s.Number != nil
	case KindSingleSelect, KindMultiSelect:
		return s.Select != nil && len(s.Select.Options) > 0
	case KindRange:
		return false
	default:
		return false
	}
}

// Options returns a copy of the select options, or nil for other kinds.
func (s Spec) Options() []Option {
	if s.Select == nil {
		return nil
	}
	return slices.Clone(s.Select.Options)
}

// HasOption reports whether id is one of the select options.
func (s Spec) HasOption(id string) bool {
	if s.Select == nil {
		return false
	}
	for _, option := range s.Select.Options {
		if option.ID == id {
			return true
		}
	}
	return false
}

// InitialValue builds the live value seeded from the spec's selection.
func (s Spec) InitialValue() Value {
	value := Value{Kind: s.Kind}
	switch s.Kind {
	case KindDate:
		if s.Date != nil {
			value.Text = s.Date.Selected
		}
	case KindNumber:
		if s.Number != nil {
			value.Text = s.Number.Selected
		}
	case KindSingleSelect:
		// A select control always shows an option; fall back to the first one
		// so the stored value matches what the user sees.
		if s.Select != nil && len(s.Select.Options) > 0 {
			value.Text = s.Select.Options[0].ID
			if s.HasOption(s.Select.SelectedID) {
				value.Text = s.Select.SelectedID
			}
		}
	case KindMultiSelect:
		if s.Select != nil {
			value.IDs = s.keepOptions(s.Select.SelectedIDs)
		}
	}
	return value
}

// Clone returns a deep copy so callers cannot mutate shared metadata.
func (s Spec) Clone() Spec {
	out := s
	if s.Date != nil {
		date := *s.Date
		out.Date = &date
	}
	if s.Number != nil {
		number := *s.Number
		out.Number = &number
	}
	if s.Select != nil {
		sel := *s.Select
		sel.Options = slices.Clone(s.Select.Options)
		sel.SelectedIDs = slices.Clone(s.Select.SelectedIDs)
		out.Select = &sel
	}
	if s.Range != nil {
		rng := *s.Range
		out.Range = &rng
	}
	return out
}

// keepOptions filters ids down to known options, preserving the given order
// and dropping duplicates.
func (s Spec) keepOptions(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if !s.HasOption(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
