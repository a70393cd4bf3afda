package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/widget"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// StockPriceResources mirrors the catalog of the sample stock price project.
func StockPriceResources() []backend.Resource {
	return []backend.Resource{
		{
			Dataset:        "stock_price_history",
			Label:          "Stock Price History",
			ParametersPath: "/squirrels0/stock-price-history/parameters",
			ResultPath:     "/squirrels0/stock-price-history",
		},
		{
			Dataset:        "ticker_overview",
			Label:          "Ticker Overview",
			ParametersPath: "/squirrels0/ticker-overview/parameters",
			ResultPath:     "/squirrels0/ticker-overview",
		},
	}
}

// StockPriceSpecs returns one widget of every kind. "reference_date" and
// "time_period" trigger refreshes; "ticker" has no options and renders
// nothing.
func StockPriceSpecs() []widget.Spec {
	return []widget.Spec{
		{
			Name:           "reference_date",
			Label:          "Reference Date",
			Kind:           widget.KindDate,
			TriggerRefresh: true,
			Date:           &widget.DateSpec{Selected: "2023-01-31"},
		},
		{
			Name:           "time_period",
			Label:          "Time Period",
			Kind:           widget.KindSingleSelect,
			TriggerRefresh: true,
			Select: &widget.SelectSpec{
				Options: []widget.Option{
					{ID: "0", Label: "Daily"},
					{ID: "1", Label: "Weekly"},
					{ID: "2", Label: "Monthly"},
				},
				SelectedID: "0",
			},
		},
		{
			Name:  "ticker",
			Label: "Ticker",
			Kind:  widget.KindSingleSelect,
			Select: &widget.SelectSpec{
				Options: nil,
			},
		},
		{
			Name:  "tickers",
			Label: "Tickers",
			Kind:  widget.KindMultiSelect,
			Select: &widget.SelectSpec{
				Options: []widget.Option{
					{ID: "AAPL", Label: "Apple"},
					{ID: "MSFT", Label: "Microsoft"},
					{ID: "NVDA", Label: "Nvidia"},
				},
				SelectedIDs: []string{"MSFT"},
				IncludeAll:  true,
			},
		},
		{
			Name:  "upper_bound",
			Label: "Upper Bound",
			Kind:  widget.KindNumber,
			Number: &widget.NumberSpec{
				Min:      "0",
				Max:      "500",
				Step:     "10",
				Selected: "200",
			},
		},
		{
			Name:  "price_band",
			Label: "Price Band",
			Kind:  widget.KindRange,
			Range: &widget.RangeSpec{Min: "0", Max: "500", Step: "10", SelectedLower: "100", SelectedUpper: "300"},
		},
	}
}

// ResultFixture is a two-column result set with a missing cell.
func ResultFixture() backend.ResultSet {
	return backend.ResultSet{
		Fields: []backend.Field{{Name: "a"}, {Name: "b"}},
		Rows: []map[string]any{
			{"a": 1, "b": 2},
			{"a": 3},
		},
	}
}
