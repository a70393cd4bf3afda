package widget

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const parametersFixture = `{
  "parameters": [
    {"widget_type": "DateField", "name": "as_of", "label": "As Of", "selected_date": "2023-01-31", "trigger_refresh": true},
    {"widget_type": "NumberField", "name": "upper", "label": "Upper Bound", "min_value": "0", "max_value": "10", "increment": "0.5", "selected_value": "2.50"},
    {"widget_type": "RangeField", "name": "band", "label": "Band", "min_value": 0, "max_value": 100, "increment": 5, "selected_lower_value": 10, "selected_upper_value": 90},
    {"widget_type": "SingleSelect", "name": "period", "label": "Period", "options": [{"id": "m", "label": "Monthly"}, {"id": "q", "label": "Quarterly"}], "selected_id": "q", "trigger_refresh": true},
    {"widget_type": "MultiSelect", "name": "tickers", "label": "Tickers", "options": [{"id": 1, "label": "AAPL"}, {"id": 2, "label": "MSFT"}], "selected_ids": ["2"], "include_all": true},
    {"widget_type": "ColourPicker", "name": "colour", "label": "Colour"}
  ]
}`

func TestDecodeParameters(t *testing.T) {
	specs, err := DecodeParameters([]byte(parametersFixture))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []Spec{
		{Name: "as_of", Label: "As Of", Kind: KindDate, TriggerRefresh: true, Date: &DateSpec{Selected: "2023-01-31"}},
		{Name: "upper", Label: "Upper Bound", Kind: KindNumber, Number: &NumberSpec{Min: "0", Max: "10", Step: "0.5", Selected: "2.50"}},
		{Name: "band", Label: "Band", Kind: KindRange, Range: &RangeSpec{Min: "0", Max: "100", Step: "5", SelectedLower: "10", SelectedUpper: "90"}},
		{Name: "period", Label: "Period", Kind: KindSingleSelect, TriggerRefresh: true, Select: &SelectSpec{
			Options:    []Option{{ID: "m", Label: "Monthly"}, {ID: "q", Label: "Quarterly"}},
			SelectedID: "q",
		}},
		{Name: "tickers", Label: "Tickers", Kind: KindMultiSelect, Select: &SelectSpec{
			Options:     []Option{{ID: "1", Label: "AAPL"}, {ID: "2", Label: "MSFT"}},
			SelectedIDs: []string{"2"},
			IncludeAll:  true,
		}},
	}

	if diff := cmp.Diff(want, specs); diff != "" {
		t.Fatalf("specs mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeParametersRejectsMalformedPayload(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"parameters": [`,
		"missing array":   `{"params": []}`,
		"unnamed":         `{"parameters": [{"widget_type": "DateField"}]}`,
		"bad number type": `{"parameters": [{"widget_type": "NumberField", "name": "x", "min_value": true}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeParameters([]byte(payload)); err == nil {
				t.Fatalf("expected error for %s", payload)
			}
		})
	}
}

func TestDecodeSpecNullSelection(t *testing.T) {
	spec, ok, err := DecodeSpec([]byte(`{"widget_type": "SingleSelect", "name": "s", "label": "S", "options": [], "selected_id": null}`))
	if err != nil || !ok {
		t.Fatalf("decode: ok=%v err=%v", ok, err)
	}
	if spec.Select.SelectedID != "" {
		t.Fatalf("expected empty selection, got %q", spec.Select.SelectedID)
	}
	if spec.Renderable() {
		t.Fatalf("select without options must not render")
	}
}

func TestWireNameMatchesParseKind(t *testing.T) {
	for _, kind := range []Kind{KindDate, KindNumber, KindSingleSelect, KindMultiSelect, KindRange} {
		if got := ParseKind(kind.WireName()); got != kind {
			t.Fatalf("%s: ParseKind(%q) = %s", kind, kind.WireName(), got)
		}
	}
	if KindUnknown.WireName() != "" {
		t.Fatalf("unknown kind should have no wire name")
	}
}
