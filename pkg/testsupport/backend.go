package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/widget"
)

// Call records one request made against a FakeBackend.
type Call struct {
	Path   string
	Params query.Params
}

// FakeBackend is a scriptable backend.Backend. Hooks replace the static
// responses when set; tests use them to block, fail or inspect requests.
type FakeBackend struct {
	Resources  []backend.Resource
	CatalogErr error
	Specs      []widget.Spec
	Result     backend.ResultSet

	ParametersHook func(ctx context.Context, path string, params query.Params) ([]widget.Spec, error)
	ResultsHook    func(ctx context.Context, path string, params query.Params) (backend.ResultSet, error)

	mu             sync.Mutex
	catalogCalls   int
	parameterCalls []Call
	resultCalls    []Call
}

var _ backend.Backend = (*FakeBackend)(nil)

// NewFakeBackend returns a backend serving the stock price fixtures.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Resources: StockPriceResources(),
		Specs:     StockPriceSpecs(),
		Result:    ResultFixture(),
	}
}

func (f *FakeBackend) Catalog(context.Context) ([]backend.Resource, error) {
	f.mu.Lock()
	f.catalogCalls++
	f.mu.Unlock()
	if f.CatalogErr != nil {
		return nil, f.CatalogErr
	}
	return append([]backend.Resource(nil), f.Resources...), nil
}

func (f *FakeBackend) Parameters(ctx context.Context, path string, params query.Params) ([]widget.Spec, error) {
	f.mu.Lock()
	f.parameterCalls = append(f.parameterCalls, Call{Path: path, Params: append(query.Params(nil), params...)})
	hook := f.ParametersHook
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, path, params)
	}
	out := make([]widget.Spec, 0, len(f.Specs))
	for _, spec := range f.Specs {
		out = append(out, spec.Clone())
	}
	return out, nil
}

func (f *FakeBackend) Results(ctx context.Context, path string, params query.Params) (backend.ResultSet, error) {
	f.mu.Lock()
	f.resultCalls = append(f.resultCalls, Call{Path: path, Params: append(query.Params(nil), params...)})
	hook := f.ResultsHook
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, path, params)
	}
	return f.Result, nil
}

// CatalogCalls reports how many times Catalog was called.
func (f *FakeBackend) CatalogCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalogCalls
}

// ParameterCalls returns the recorded parameter requests.
func (f *FakeBackend) ParameterCalls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.parameterCalls...)
}

// ResultCalls returns the recorded result requests.
func (f *FakeBackend) ResultCalls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.resultCalls...)
}
