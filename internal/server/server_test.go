package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/config"
	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/session"
	"github.com/goliatone/go-paramform/pkg/testsupport"
)

type harness struct {
	fake   *testsupport.FakeBackend
	server *Server
	http   *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fake := testsupport.NewFakeBackend()
	c := catalog.New(fake)
	if err := c.Load(testsupport.Context()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	srv, err := New(config.ServerConfig{SessionSecret: "test-secret-test-secret-test-sec"}, fake, c)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &harness{fake: fake, server: srv, http: ts, client: &http.Client{Jar: jar}}
}

func (h *harness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.Get(h.http.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (h *harness) post(t *testing.T, path string, values ...string) (*http.Response, string) {
	t.Helper()
	form := url.Values{}
	for _, value := range values {
		form.Add("value", value)
	}
	resp, err := h.client.PostForm(h.http.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func TestIndexSelectsFirstDatasetOnce(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get(t, "/")
	expectStatus(t, resp, http.StatusOK)
	for _, want := range []string{
		`<option value="stock_price_history" selected>`,
		`data-param="reference_date"`,
		`data-param="upper_bound"`,
		`href="/assets/paramform.css"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q:\n%s", want, body)
		}
	}

	resp, _ = h.get(t, "/")
	expectStatus(t, resp, http.StatusOK)

	calls := h.fake.ParameterCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one parameter fetch for one browser session, got %d", len(calls))
	}
	if calls[0].Params.Encode() != "" {
		t.Fatalf("initial fetch should use an empty query, got %q", calls[0].Params.Encode())
	}
	if h.server.sessions.Len() != 1 {
		t.Fatalf("expected one session, got %d", h.server.sessions.Len())
	}
}

func TestChangeWithoutRefreshAnswersNoContent(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	resp, _ := h.post(t, "/params/tickers", "NVDA", "AAPL")
	expectStatus(t, resp, http.StatusNoContent)
	if len(h.fake.ParameterCalls()) != 1 {
		t.Fatalf("non-refreshing change must not re-fetch parameters")
	}

	resp, _ = h.get(t, "/results")
	expectStatus(t, resp, http.StatusOK)
	calls := h.fake.ResultCalls()
	if got := calls[len(calls)-1].Params.Encode(); got != "reference_date=2023-01-31&time_period=0&tickers=NVDA%2CAAPL&upper_bound=200" {
		t.Fatalf("unexpected result query %q", got)
	}
}

func TestChangeWithRefreshReturnsForm(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	resp, body := h.post(t, "/params/time_period", "2")
	expectStatus(t, resp, http.StatusOK)
	if resp.Header.Get(headerRefreshed) != "true" {
		t.Fatalf("expected %s header", headerRefreshed)
	}
	if !strings.Contains(body, `data-param="time_period"`) || strings.Contains(body, "<html") {
		t.Fatalf("expected a form fragment, got:\n%s", body)
	}

	calls := h.fake.ParameterCalls()
	if len(calls) != 2 {
		t.Fatalf("expected exactly one refresh, got %d parameter calls", len(calls))
	}
	if got, _ := calls[1].Params.Get("time_period"); got != "2" {
		t.Fatalf("refresh should carry the new selection, got %q", got)
	}
}

func TestRejectedChangeRendersFormWithError(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	resp, body := h.post(t, "/params/time_period", "9")
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	for _, want := range []string{
		`data-param="time_period"`,
		`<ul class="paramform-errors" role="alert"><li>value not accepted</li></ul>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("rejected change response missing %q:\n%s", want, body)
		}
	}
	if strings.Count(body, "paramform-errors") != 1 {
		t.Fatalf("error should be attached to the rejected control only:\n%s", body)
	}

	resp, _ = h.post(t, "/params/upper_bound", "NaN")
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if len(h.fake.ParameterCalls()) != 1 {
		t.Fatalf("rejected readings must not re-fetch parameters")
	}

	h.get(t, "/results")
	calls := h.fake.ResultCalls()
	last := calls[len(calls)-1].Params
	if got, _ := last.Get("time_period"); got != "0" {
		t.Fatalf("rejected selection must keep time_period=0, got %q", got)
	}
	if got, _ := last.Get("upper_bound"); got != "200" {
		t.Fatalf("rejected number must keep upper_bound=200, got %q", got)
	}
}

func TestSlideKeepsCommittedValue(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	resp, _ := h.post(t, "/slide/upper_bound", "350")
	expectStatus(t, resp, http.StatusNoContent)
	resp, _ = h.post(t, "/slide/time_period", "1")
	expectStatus(t, resp, http.StatusNotFound)

	h.get(t, "/results")
	calls := h.fake.ResultCalls()
	if got, _ := calls[0].Params.Get("upper_bound"); got != "200" {
		t.Fatalf("sliding must not commit, got upper_bound=%q", got)
	}
}

func TestDatasetSelection(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	resp, body := h.post(t, "/datasets/ticker_overview")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "paramform-form") {
		t.Fatalf("expected the new form, got:\n%s", body)
	}
	calls := h.fake.ParameterCalls()
	if last := calls[len(calls)-1]; last.Path != "/squirrels0/ticker-overview/parameters" || last.Params.Encode() != "" {
		t.Fatalf("unexpected parameter call %+v", last)
	}

	resp, _ = h.post(t, "/datasets/missing")
	expectStatus(t, resp, http.StatusNotFound)
	resp, _ = h.post(t, "/params/missing", "x")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestResultExports(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	resp, body := h.get(t, "/results")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "<td>1</td><td>2</td>") {
		t.Fatalf("unexpected table:\n%s", body)
	}

	resp, body = h.get(t, "/results.tsv")
	expectStatus(t, resp, http.StatusOK)
	if diff := cmp.Diff("a\tb\n1\t2\n3\t\n", body); diff != "" {
		t.Fatalf("tsv mismatch (-want +got):\n%s", diff)
	}

	resp, body = h.get(t, "/results.xlsx")
	expectStatus(t, resp, http.StatusOK)
	if resp.Header.Get("Content-Type") != contentTypeXLSX || !strings.HasPrefix(body, "PK") {
		t.Fatalf("expected a workbook, got %q", resp.Header.Get("Content-Type"))
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "stock_price_history.xlsx") {
		t.Fatalf("unexpected disposition %q", got)
	}
}

func TestResultFetchFailureIsBadGateway(t *testing.T) {
	h := newHarness(t)
	h.fake.ResultsHook = func(context.Context, string, query.Params) (backend.ResultSet, error) {
		return backend.ResultSet{}, errors.New("backend down")
	}
	h.get(t, "/")

	resp, _ := h.get(t, "/results")
	expectStatus(t, resp, http.StatusBadGateway)
}

func TestOpenAPIAndAssets(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get(t, "/openapi.json")
	expectStatus(t, resp, http.StatusOK)
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decode openapi: %v", err)
	}
	for _, path := range []string{"/squirrels0/stock-price-history", "/squirrels0/ticker-overview/parameters"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("openapi document missing %s", path)
		}
	}

	resp, body = h.get(t, "/assets/paramform.js")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, headerRefreshed) {
		t.Fatalf("runtime script should read the refresh header")
	}
	resp, _ = h.get(t, "/assets/missing.js")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("wrap: %w", catalog.ErrUnknownDataset), http.StatusNotFound},
		{session.ErrStale, http.StatusConflict},
		{session.ErrNoDataset, http.StatusPreconditionFailed},
		{fmt.Errorf("session: change %q: %w", "x", session.ErrRejected), http.StatusUnprocessableEntity},
		{StatusError{Code: http.StatusTeapot}, http.StatusTeapot},
		{errors.New("dial tcp: refused"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMountPath(t *testing.T) {
	cases := map[[2]string]string{
		{"", "/results"}:         "/results",
		{"/", "results"}:         "/results",
		{"explore", "/results"}:  "/explore/results",
		{"/explore/", "/assets"}: "/explore/assets",
	}
	for in, want := range cases {
		if got := mountPath(in[0], in[1]); got != want {
			t.Fatalf("mountPath(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}

	endpoints := endpointsFor("/explore")
	if endpoints.Params != "/explore/params" || endpoints.XLSX != "/explore/results.xlsx" {
		t.Fatalf("unexpected endpoints %+v", endpoints)
	}
}
