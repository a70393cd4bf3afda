package widget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// text accepts JSON strings, numbers and null, keeping numbers in their
// literal form. The backend serialises decimals as strings but nothing stops
// a different implementation from sending bare numbers.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("widget: expected string or number, got %s", data)
	}
	*t = text(n.String())
	return nil
}

type wireOption struct {
	ID    text `json:"id"`
	Label text `json:"label"`
}

type wireSpec struct {
	WidgetType     string       `json:"widget_type"`
	Name           string       `json:"name"`
	Label          string       `json:"label"`
	TriggerRefresh bool         `json:"trigger_refresh"`
	SelectedDate   text         `json:"selected_date"`
	MinValue       text         `json:"min_value"`
	MaxValue       text         `json:"max_value"`
	Increment      text         `json:"increment"`
	SelectedValue  text         `json:"selected_value"`
	SelectedLower  text         `json:"selected_lower_value"`
	SelectedUpper  text         `json:"selected_upper_value"`
	Options        []wireOption `json:"options"`
	SelectedID     text         `json:"selected_id"`
	SelectedIDs    []text       `json:"selected_ids"`
	IncludeAll     bool         `json:"include_all"`
}

type parametersPayload struct {
	Parameters []json.RawMessage `json:"parameters"`
}

// DecodeParameters parses a `{"parameters": [...]}` response. Entries with an
// unknown widget_type are dropped without error; a payload that is not an
// object with a parameters array is rejected.
func DecodeParameters(data []byte) ([]Spec, error) {
	var payload parametersPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("widget: decode parameters: %w", err)
	}
	if payload.Parameters == nil {
		return nil, fmt.Errorf("widget: decode parameters: missing parameters array")
	}

	specs := make([]Spec, 0, len(payload.Parameters))
	for idx, raw := range payload.Parameters {
		spec, ok, err := DecodeSpec(raw)
		if err != nil {
			return nil, fmt.Errorf("widget: decode parameter %d: %w", idx, err)
		}
		if !ok {
			continue
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// DecodeSpec parses a single widget description. ok is false for widget
// types this package does not know.
func DecodeSpec(data []byte) (Spec, bool, error) {
	var wire wireSpec
	if err := json.Unmarshal(data, &wire); err != nil {
		return Spec{}, false, err
	}
	kind := ParseKind(wire.WidgetType)
	if kind == KindUnknown {
		return Spec{}, false, nil
	}
	name := strings.TrimSpace(wire.Name)
	if name == "" {
		return Spec{}, false, fmt.Errorf("widget: %s parameter without a name", wire.WidgetType)
	}

	spec := Spec{
		Name:           name,
		Label:          wire.Label,
		Kind:           kind,
		TriggerRefresh: wire.TriggerRefresh,
	}

	switch kind {
	case KindDate:
		spec.Date = &DateSpec{Selected: string(wire.SelectedDate)}
	case KindNumber:
		spec.Number = &NumberSpec{
			Min:      string(wire.MinValue),
			Max:      string(wire.MaxValue),
			Step:     string(wire.Increment),
			Selected: string(wire.SelectedValue),
		}
	case KindSingleSelect, KindMultiSelect:
		sel := &SelectSpec{
			Options:    make([]Option, 0, len(wire.Options)),
			SelectedID: string(wire.SelectedID),
			IncludeAll: wire.IncludeAll,
		}
		for _, option := range wire.Options {
			sel.Options = append(sel.Options, Option{ID: string(option.ID), Label: string(option.Label)})
		}
		for _, id := range wire.SelectedIDs {
			sel.SelectedIDs = append(sel.SelectedIDs, string(id))
		}
		spec.Select = sel
	case KindRange:
		spec.Range = &RangeSpec{
			Min:           string(wire.MinValue),
			Max:           string(wire.MaxValue),
			Step:          string(wire.Increment),
			SelectedLower: string(wire.SelectedLower),
			SelectedUpper: string(wire.SelectedUpper),
		}
	}

	return spec, true, nil
}
