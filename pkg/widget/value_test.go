package widget

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func selectSpec(kind Kind, ids ...string) Spec {
	options := make([]Option, 0, len(ids))
	for _, id := range ids {
		options = append(options, Option{ID: id, Label: "Option " + id})
	}
	return Spec{Name: "s", Kind: kind, Select: &SelectSpec{Options: options}}
}

func TestInitialValue(t *testing.T) {
	single := selectSpec(KindSingleSelect, "a", "b")
	single.Select.SelectedID = "b"

	fallback := selectSpec(KindSingleSelect, "a", "b")
	fallback.Select.SelectedID = "zz"

	multi := selectSpec(KindMultiSelect, "a", "b", "c")
	multi.Select.SelectedIDs = []string{"c", "a", "c", "missing"}

	cases := []struct {
		name string
		spec Spec
		want Value
	}{
		{"date", Spec{Kind: KindDate, Date: &DateSpec{Selected: "2024-02-29"}}, Value{Kind: KindDate, Text: "2024-02-29"}},
		{"number", Spec{Kind: KindNumber, Number: &NumberSpec{Selected: "3"}}, Value{Kind: KindNumber, Text: "3"}},
		{"single", single, Value{Kind: KindSingleSelect, Text: "b"}},
		{"single fallback", fallback, Value{Kind: KindSingleSelect, Text: "a"}},
		{"multi", multi, Value{Kind: KindMultiSelect, IDs: []string{"c", "a"}}},
		{"range", Spec{Kind: KindRange, Range: &RangeSpec{}}, Value{Kind: KindRange}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.spec.InitialValue()); diff != "" {
				t.Fatalf("initial value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply(t *testing.T) {
	number := Spec{Kind: KindNumber, Number: &NumberSpec{Min: "0", Max: "10", Step: "1", Selected: "5"}}
	current := number.InitialValue()

	if got, ok := number.Apply(current, Single("7")); !ok || got.Text != "7" {
		t.Fatalf("expected committed slider value 7, got %+v ok=%v", got, ok)
	}
	if got, ok := number.Apply(current, Single("11")); ok || got.Text != "5" {
		t.Fatalf("expected out of bounds value to be rejected, got %+v ok=%v", got, ok)
	}
	for _, raw := range []string{"abc", "NaN", "nan", "Inf", "-Inf"} {
		if got, ok := number.Apply(current, Single(raw)); ok || got.Text != "5" {
			t.Fatalf("expected %q to be rejected, got %+v ok=%v", raw, got, ok)
		}
	}
	unbounded := Spec{Kind: KindNumber, Number: &NumberSpec{Selected: "1"}}
	if _, ok := unbounded.Apply(unbounded.InitialValue(), Single("NaN")); ok {
		t.Fatalf("expected NaN to be rejected without bounds")
	}

	date := Spec{Kind: KindDate, Date: &DateSpec{Selected: "2024-01-31"}}
	if got, ok := date.Apply(date.InitialValue(), Single(" 2024-02-29 ")); !ok || got.Text != "2024-02-29" {
		t.Fatalf("expected committed date, got %+v ok=%v", got, ok)
	}
	for _, raw := range []string{"", "2023-02-29", "31/01/2024", "tomorrow"} {
		if got, ok := date.Apply(date.InitialValue(), Single(raw)); ok || got.Text != "2024-01-31" {
			t.Fatalf("expected date %q to be rejected, got %+v ok=%v", raw, got, ok)
		}
	}

	single := selectSpec(KindSingleSelect, "a", "b")
	if got, ok := single.Apply(single.InitialValue(), Single("b")); !ok || got.Text != "b" {
		t.Fatalf("expected select to take b, got %+v", got)
	}
	if _, ok := single.Apply(single.InitialValue(), Single("nope")); ok {
		t.Fatalf("expected unknown option to be rejected")
	}

	multi := selectSpec(KindMultiSelect, "a", "b", "c")
	got, ok := multi.Apply(multi.InitialValue(), Multi("c", "a", "c"))
	if !ok {
		t.Fatalf("multi select apply failed")
	}
	if diff := cmp.Diff([]string{"c", "a"}, got.IDs); diff != "" {
		t.Fatalf("multi selection mismatch (-want +got):\n%s", diff)
	}
	if got, _ := multi.Apply(got, Multi()); !got.Empty() {
		t.Fatalf("expected empty selection, got %+v", got)
	}

	rng := Spec{Kind: KindRange, Range: &RangeSpec{}}
	if _, ok := rng.Apply(rng.InitialValue(), Single("1,2")); ok {
		t.Fatalf("range updates must be ignored")
	}
}

func TestCloneDoesNotShareOptions(t *testing.T) {
	spec := selectSpec(KindMultiSelect, "a")
	clone := spec.Clone()
	clone.Select.Options[0].Label = "changed"
	if spec.Select.Options[0].Label == "changed" {
		t.Fatalf("clone shares option storage")
	}
}
