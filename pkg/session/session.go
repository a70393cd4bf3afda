// Package session ties a dataset catalog, a parameter form and a result table
// together for one user. Network fetches run without holding the session
// lock; each fetch category carries a monotonically increasing request token
// and a response is applied only when its token is still the latest one.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/results"
	"github.com/goliatone/go-paramform/pkg/widget"
)

var (
	// ErrStale is returned when a response arrived after a newer request of
	// the same category was issued. The response is discarded.
	ErrStale = errors.New("session: stale response discarded")
	// ErrNoDataset is returned when an operation needs a selected dataset.
	ErrNoDataset = errors.New("session: no dataset selected")
	// ErrRejected is returned by Change when the reading was not accepted by
	// its control. The current selections are kept.
	ErrRejected = form.ErrRejected
)

// Option configures a Session.
type Option func(*Session)

// WithLogger routes fetch failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is safe for concurrent use.
type Session struct {
	backend backend.Backend
	catalog *catalog.Catalog
	logger  *zap.Logger

	params  sequence
	results sequence

	mu      sync.Mutex
	dataset catalog.Entry
	form    *form.Form
	table   *results.Renderer
}

// New constructs a session over a loaded catalog.
func New(b backend.Backend, c *catalog.Catalog, options ...Option) *Session {
	s := &Session{
		backend: b,
		catalog: c,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.form = form.New(form.WithLogger(s.logger))
	s.table = results.NewRenderer(results.WithLogger(s.logger))
	return s
}

// Catalog returns the catalog the session selects from.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Dataset returns the selected dataset.
func (s *Session) Dataset() (catalog.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset, s.dataset.ID != ""
}

// Start selects the catalog's first dataset, if any.
func (s *Session) Start(ctx context.Context) error {
	entry, ok := s.catalog.Default()
	if !ok {
		return nil
	}
	return s.SelectDataset(ctx, entry.ID)
}

// SelectDataset fetches the parameters of id with an empty query and, when
// the response is still current, swaps the dataset and rebuilds the form.
// Pending parameter and result requests of the previous dataset become stale.
func (s *Session) SelectDataset(ctx context.Context, id string) error {
	entry, err := s.catalog.Lookup(id)
	if err != nil {
		return err
	}

	paramToken := s.params.next()
	s.results.next()

	specs, err := s.backend.Parameters(ctx, entry.ParametersPath, nil)
	if err != nil {
		s.logger.Error("parameter fetch failed", zap.String("dataset", id), zap.Error(err))
		return fmt.Errorf("session: select dataset %q: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.params.latest(paramToken) {
		s.logger.Debug("stale parameter response", zap.String("dataset", id))
		return ErrStale
	}
	s.dataset = entry
	s.form.Rebuild(specs)
	s.table.Render(nil, nil)
	return nil
}

// Change commits a control reading. When the widget triggers a refresh the
// parameter list is re-fetched once with the updated query. A reading the
// control rejects returns ErrRejected.
func (s *Session) Change(ctx context.Context, name string, in widget.Input) error {
	s.mu.Lock()
	if s.dataset.ID == "" {
		s.mu.Unlock()
		return ErrNoDataset
	}
	refresh, ok := s.form.Commit(name, in)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("control reading rejected", zap.String("parameter", name))
		return fmt.Errorf("session: change %q: %w", name, ErrRejected)
	}
	if !refresh {
		s.mu.Unlock()
		return nil
	}
	entry := s.dataset
	q := s.form.Query()
	token := s.params.next()
	s.mu.Unlock()

	specs, err := s.backend.Parameters(ctx, entry.ParametersPath, q)
	if err != nil {
		s.logger.Error("parameter refresh failed", zap.String("dataset", entry.ID), zap.String("parameter", name), zap.Error(err))
		return fmt.Errorf("session: refresh parameters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.params.latest(token) {
		s.logger.Debug("stale parameter response", zap.String("dataset", entry.ID))
		return ErrStale
	}
	s.form.Rebuild(specs)
	return nil
}

// Slide moves the readout of a number control without committing it.
func (s *Session) Slide(name, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Slide(name, value)
}

// Query serialises the current selections.
func (s *Session) Query() query.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Query()
}

// Form returns a snapshot of the rendered controls.
func (s *Session) Form() form.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.View()
}

// FetchResults loads the result set for the current selections and renders
// it. Older result requests still in flight become stale.
func (s *Session) FetchResults(ctx context.Context) (results.Table, error) {
	s.mu.Lock()
	if s.dataset.ID == "" {
		s.mu.Unlock()
		return results.Table{}, ErrNoDataset
	}
	entry := s.dataset
	q := s.form.Query()
	token := s.results.next()
	s.mu.Unlock()

	set, err := s.backend.Results(ctx, entry.ResultPath, q)
	if err != nil {
		s.logger.Error("result fetch failed", zap.String("dataset", entry.ID), zap.Error(err))
		return results.Table{}, fmt.Errorf("session: fetch results: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.results.latest(token) {
		s.logger.Debug("stale result response", zap.String("dataset", entry.ID))
		return results.Table{}, ErrStale
	}
	s.table.RenderSet(set)
	return s.table.Table(), nil
}

// Results returns the renderer holding the current result table.
func (s *Session) Results() *results.Renderer {
	return s.table
}
