package widget

import "strings"

// Kind tags a widget specification and its live value. Every operation that
// behaves differently per widget (render, update, serialize) switches on Kind
// in exactly one place.
type Kind int

const (
	KindUnknown Kind = iota
	KindDate
	KindNumber
	KindSingleSelect
	KindMultiSelect
	// KindRange is accepted from the backend but has no control and no
	// stored value yet.
	KindRange
)

// Wire identifiers used by the backend's widget_type field.
const (
	WireDate         = "DateField"
	WireNumber       = "NumberField"
	WireRange        = "RangeField"
	WireSingleSelect = "SingleSelect"
	WireMultiSelect  = "MultiSelect"
)

// ParseKind maps a widget_type string to a Kind. Unrecognised values return
// KindUnknown.
func ParseKind(widgetType string) Kind {
	switch strings.TrimSpace(widgetType) {
	case WireDate:
		return KindDate
	case WireNumber:
		return KindNumber
	case WireSingleSelect:
		return KindSingleSelect
	case WireMultiSelect:
		return KindMultiSelect
	case WireRange:
		return KindRange
	default:
		return KindUnknown
	}
}

// WireName returns the widget_type string for k.
func (k Kind) WireName() string {
	switch k {
	case KindDate:
		return WireDate
	case KindNumber:
		return WireNumber
	case KindSingleSelect:
		return WireSingleSelect
	case KindMultiSelect:
		return WireMultiSelect
	case KindRange:
		return WireRange
	default:
		return ""
	}
}

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	case KindSingleSelect:
		return "single-select"
	case KindMultiSelect:
		return "multi-select"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}
