package widget

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only date format a date widget accepts and sends.
const DateLayout = "2006-01-02"

// Value is the live, user-editable state paired with a Spec. Text holds the
// single value of date, number and single select widgets; IDs holds the
// multi select selection in selection order.
type Value struct {
	Kind Kind
	Text string
	IDs  []string
}

// Empty reports whether the value carries nothing worth sending.
func (v Value) Empty() bool {
	switch v.Kind {
	case KindMultiSelect:
		return len(v.IDs) == 0
	default:
		return v.Text == ""
	}
}

// Clone returns a copy that does not share the IDs backing array.
func (v Value) Clone() Value {
	v.IDs = slices.Clone(v.IDs)
	return v
}

// Input is the raw reading of a control when a change is committed: a single
// string for date, slider and single select controls, or the selected option
// values of a multi select in the order the control reports them.
type Input struct {
	Values []string
}

// Single builds the Input reported by single-valued controls.
func Single(value string) Input {
	return Input{Values: []string{value}}
}

// Multi builds the Input reported by a multi select control.
func Multi(ids ...string) Input {
	return Input{Values: slices.Clone(ids)}
}

func (in Input) first() string {
	if len(in.Values) == 0 {
		return ""
	}
	return in.Values[0]
}

// Apply folds a committed control reading into current and returns the new
// value. ok is false when the input is not something this widget could have
// produced (malformed date, unknown option, out-of-bounds slider, range
// widgets), in which case current is returned untouched.
func (s Spec) Apply(current Value, in Input) (Value, bool) {
	switch s.Kind {
	case KindDate:
		raw := strings.TrimSpace(in.first())
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return current, false
		}
		return Value{Kind: KindDate, Text: raw}, true
	case KindNumber:
		raw := strings.TrimSpace(in.first())
		if !s.numberInBounds(raw) {
			return current, false
		}
		return Value{Kind: KindNumber, Text: raw}, true
	case KindSingleSelect:
		id := in.first()
		if !s.HasOption(id) {
			return current, false
		}
		return Value{Kind: KindSingleSelect, Text: id}, true
	case KindMultiSelect:
		return Value{Kind: KindMultiSelect, IDs: s.keepOptions(in.Values)}, true
	case KindRange:
		return current, false
	default:
		return current, false
	}
}

func (s Spec) numberInBounds(raw string) bool {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	if s.Number == nil {
		return true
	}
	if lower, err := strconv.ParseFloat(s.Number.Min, 64); err == nil && value < lower {
		return false
	}
	if upper, err := strconv.ParseFloat(s.Number.Max, 64); err == nil && value > upper {
		return false
	}
	return true
}
