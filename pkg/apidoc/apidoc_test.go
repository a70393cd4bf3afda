package apidoc_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramform/pkg/apidoc"
	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/testsupport"
	"github.com/goliatone/go-paramform/pkg/widget"
)

func stockEntry() catalog.Entry {
	return catalog.Entry{
		ID:             "stock_price_history",
		Label:          "Stock <b>Price</b> History",
		ParametersPath: "/squirrels0/stock-price-history/parameters",
		ResultPath:     "/squirrels0/stock-price-history",
	}
}

func TestParametersSkipWidgetsWithoutQueryValue(t *testing.T) {
	params := apidoc.Parameters(testsupport.StockPriceSpecs())

	var names []string
	for _, ref := range params {
		names = append(names, ref.Value.Name)
		if ref.Value.In != openapi3.ParameterInQuery {
			t.Fatalf("%s should be a query parameter, got %q", ref.Value.Name, ref.Value.In)
		}
	}
	if diff := cmp.Diff([]string{"reference_date", "time_period", "tickers", "upper_bound"}, names); diff != "" {
		t.Fatalf("parameter names mismatch (-want +got):\n%s", diff)
	}
	if params[0].Value.Extensions["x-trigger-refresh"] != true {
		t.Fatalf("reference_date should be flagged as refreshing")
	}
	if _, ok := params[2].Value.Extensions["x-trigger-refresh"]; ok {
		t.Fatalf("tickers should not be flagged as refreshing")
	}
}

func TestSchemaPerKind(t *testing.T) {
	specs := testsupport.StockPriceSpecs()

	date := apidoc.Schema(specs[0])
	if !date.Type.Is(openapi3.TypeString) || date.Format != "date" || date.Default != "2023-01-31" {
		t.Fatalf("unexpected date schema %+v", date)
	}

	period := apidoc.Schema(specs[1])
	if diff := cmp.Diff([]any{"0", "1", "2"}, period.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	if period.Default != "0" {
		t.Fatalf("unexpected single select default %v", period.Default)
	}

	tickers := apidoc.Schema(specs[3])
	if !tickers.Type.Is(openapi3.TypeString) || tickers.Default != "MSFT" {
		t.Fatalf("unexpected multi select schema %+v", tickers)
	}
	if !strings.Contains(tickers.Description, "AAPL, MSFT, NVDA") {
		t.Fatalf("multi select description should list ids, got %q", tickers.Description)
	}

	bound := apidoc.Schema(specs[4])
	if !bound.Type.Is(openapi3.TypeNumber) || *bound.Min != 0 || *bound.Max != 500 || *bound.MultipleOf != 10 {
		t.Fatalf("unexpected number schema %+v", bound)
	}
	if bound.Default != float64(200) {
		t.Fatalf("unexpected number default %v", bound.Default)
	}

	if apidoc.Schema(specs[2]) != nil || apidoc.Schema(specs[5]) != nil {
		t.Fatalf("optionless select and range should have no schema")
	}
}

func TestBuildDescribesBothEndpoints(t *testing.T) {
	doc := apidoc.Build([]apidoc.Dataset{{Entry: stockEntry(), Specs: testsupport.StockPriceSpecs()}},
		apidoc.WithTitle("Stocks"),
		apidoc.WithServer("http://localhost:8000"),
	)

	if doc.Info.Title != "Stocks" || doc.Servers[0].URL != "http://localhost:8000" {
		t.Fatalf("unexpected info/servers: %+v %+v", doc.Info, doc.Servers)
	}

	results := doc.Paths.Value("/squirrels0/stock-price-history")
	if results == nil || results.Get == nil {
		t.Fatalf("missing result operation")
	}
	if results.Get.OperationID != "stock_price_history" || results.Get.Summary != "Stock Price History" {
		t.Fatalf("unexpected operation %q / %q", results.Get.OperationID, results.Get.Summary)
	}
	if len(results.Get.Parameters) != 4 {
		t.Fatalf("expected 4 query parameters, got %d", len(results.Get.Parameters))
	}

	parameters := doc.Paths.Value("/squirrels0/stock-price-history/parameters")
	if parameters == nil || parameters.Get == nil || parameters.Get.OperationID != "stock_price_history_parameters" {
		t.Fatalf("missing parameters operation")
	}
	if parameters.Get.Responses.Value("200") == nil {
		t.Fatalf("parameters operation should document a 200 response")
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("document is not valid json: %v", err)
	}
	if decoded["openapi"] != "3.0.3" {
		t.Fatalf("unexpected openapi version %v", decoded["openapi"])
	}
}

func TestCollectKeepsFailingDatasets(t *testing.T) {
	fake := testsupport.NewFakeBackend()
	fake.ParametersHook = func(_ context.Context, path string, _ query.Params) ([]widget.Spec, error) {
		if strings.Contains(path, "ticker-overview") {
			return nil, errors.New("boom")
		}
		return testsupport.StockPriceSpecs(), nil
	}

	entries := []catalog.Entry{
		stockEntry(),
		{ID: "ticker_overview", ParametersPath: "/squirrels0/ticker-overview/parameters", ResultPath: "/squirrels0/ticker-overview"},
	}
	datasets, err := apidoc.Collect(testsupport.Context(), fake, entries)
	if err == nil || !strings.Contains(err.Error(), "ticker_overview") {
		t.Fatalf("expected joined error naming the failing dataset, got %v", err)
	}
	if len(datasets) != 2 || len(datasets[0].Specs) != len(testsupport.StockPriceSpecs()) || datasets[1].Specs != nil {
		t.Fatalf("unexpected datasets %+v", datasets)
	}

	doc := apidoc.Build(datasets)
	if got := doc.Paths.Value("/squirrels0/ticker-overview").Get.Parameters; len(got) != 0 {
		t.Fatalf("failing dataset should have no parameters, got %d", len(got))
	}
}
