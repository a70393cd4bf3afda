package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-paramform/pkg/testsupport"
)

type stubClipboard struct {
	text string
	err  error
}

func (s *stubClipboard) WriteAll(text string) error {
	if s.err != nil {
		return s.err
	}
	s.text = text
	return nil
}

type ack struct {
	ok      bool
	message string
}

func TestBuildFillsMissingCells(t *testing.T) {
	table := FromResultSet(testsupport.ResultFixture())

	want := Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "2"}, {"3", ""}},
	}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatCell(t *testing.T) {
	cases := map[string]struct {
		in   any
		want string
	}{
		"nil":     {nil, ""},
		"literal": {json.Number("2.50"), "2.50"},
		"float":   {float64(0.1), "0.1"},
		"bool":    {true, "true"},
		"object":  {map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := FormatCell(tc.in); got != tc.want {
				t.Fatalf("FormatCell(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestHTMLEscapesCells(t *testing.T) {
	markup := Build([]string{"<x>"}, []map[string]any{{"<x>": "a & b"}}).HTML()
	want := `<table class="paramform-results"><thead><tr><th>&lt;x&gt;</th></tr></thead><tbody><tr><td>a &amp; b</td></tr></tbody></table>`
	if markup != want {
		t.Fatalf("markup mismatch:\n got %s\nwant %s", markup, want)
	}
}

func TestTSVIncludesHeaderAndTerminatesRows(t *testing.T) {
	r := NewRenderer()
	r.Render([]string{"c1", "c2"}, []map[string]any{{"c1": "c3", "c2": "c4"}})

	got, err := r.TSV()
	if err != nil {
		t.Fatalf("tsv: %v", err)
	}
	if got != "c1\tc2\nc3\tc4\n" {
		t.Fatalf("unexpected tsv %q", got)
	}
}

func TestTSVUnescapesMarkup(t *testing.T) {
	r := NewRenderer()
	r.Render([]string{"name"}, []map[string]any{{"name": "AT&T <inc>"}})

	got, err := r.TSV()
	if err != nil {
		t.Fatalf("tsv: %v", err)
	}
	if got != "name\nAT&T <inc>\n" {
		t.Fatalf("unexpected tsv %q", got)
	}
}

func TestRenderReplacesPreviousTable(t *testing.T) {
	r := NewRenderer()
	r.RenderSet(testsupport.ResultFixture())
	r.Render([]string{"z"}, nil)

	got, _ := r.TSV()
	if got != "z\n" {
		t.Fatalf("expected previous rows to be cleared, got %q", got)
	}
}

func TestEmptyRendererProducesEmptyTSV(t *testing.T) {
	got, err := NewRenderer().TSV()
	if err != nil || got != "" {
		t.Fatalf("expected empty tsv, got %q err=%v", got, err)
	}
}

func TestExportToClipboardAcknowledges(t *testing.T) {
	r := NewRenderer()
	r.RenderSet(testsupport.ResultFixture())

	var got []ack
	notifier := NotifierFunc(func(ok bool, message string) {
		got = append(got, ack{ok, message})
	})

	cb := &stubClipboard{}
	if err := r.ExportToClipboard(cb, notifier); err != nil {
		t.Fatalf("export: %v", err)
	}
	if cb.text != "a\tb\n1\t2\n3\t\n" {
		t.Fatalf("clipboard text %q", cb.text)
	}

	failing := &stubClipboard{err: errors.New("no display")}
	if err := r.ExportToClipboard(failing, notifier); err == nil {
		t.Fatalf("expected clipboard failure")
	}

	want := []ack{{true, MessageCopied}, {false, MessageCopyFailed}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(ack{})); diff != "" {
		t.Fatalf("acknowledgements mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteXLSX(t *testing.T) {
	r := NewRenderer()
	r.RenderSet(testsupport.ResultFixture())

	var buf bytes.Buffer
	if err := r.WriteXLSX(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := [][]string{{"a", "b"}, {"1", "2"}, {"3"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("workbook mismatch (-want +got):\n%s", diff)
	}
}
