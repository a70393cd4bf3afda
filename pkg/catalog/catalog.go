// Package catalog keeps the datasets advertised by the backend and the
// endpoints used to fetch their parameters and results.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/backend"
)

// ErrUnknownDataset is returned when an id is not in the catalog.
var ErrUnknownDataset = errors.New("catalog: unknown dataset")

// Entry describes one dataset.
type Entry struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	ParametersPath string `json:"parameters_path"`
	ResultPath     string `json:"result_path"`
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger routes load failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Catalog maps dataset ids to entries. It is populated once by Load and read
// concurrently afterwards.
type Catalog struct {
	backend backend.Backend
	logger  *zap.Logger

	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

// New constructs an empty catalog backed by b.
func New(b backend.Backend, options ...Option) *Catalog {
	c := &Catalog{
		backend: b,
		logger:  zap.NewNop(),
		entries: make(map[string]Entry),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Load fetches the catalog and replaces the current entries. When the fetch
// fails the error is logged, the catalog is left empty and the error is
// returned for callers that want to react to it.
func (c *Catalog) Load(ctx context.Context) error {
	if c.backend == nil {
		return errors.New("catalog: backend is nil")
	}

	resources, err := c.backend.Catalog(ctx)
	if err != nil {
		c.reset()
		c.logger.Error("catalog load failed", zap.Error(err))
		return fmt.Errorf("catalog: load: %w", err)
	}

	order := make([]string, 0, len(resources))
	entries := make(map[string]Entry, len(resources))
	for _, resource := range resources {
		if _, dup := entries[resource.Dataset]; dup {
			c.logger.Warn("catalog lists dataset twice", zap.String("dataset", resource.Dataset))
			continue
		}
		order = append(order, resource.Dataset)
		entries[resource.Dataset] = Entry{
			ID:             resource.Dataset,
			Label:          resource.Label,
			ParametersPath: resource.ParametersPath,
			ResultPath:     resource.ResultPath,
		}
	}

	c.mu.Lock()
	c.order = order
	c.entries = entries
	c.mu.Unlock()

	c.logger.Info("catalog loaded", zap.Int("datasets", len(order)))
	return nil
}

func (c *Catalog) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.entries = make(map[string]Entry)
}

// Get returns the entry for id.
func (c *Catalog) Get(id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	return entry, ok
}

// Lookup is Get returning ErrUnknownDataset for missing ids.
func (c *Catalog) Lookup(id string) (Entry, error) {
	entry, ok := c.Get(id)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	return entry, nil
}

// Entries lists datasets in catalog order.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// Default returns the first dataset, which is preselected on startup.
func (c *Catalog) Default() (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.order) == 0 {
		return Entry{}, false
	}
	return c.entries[c.order[0]], true
}

// Len reports the number of datasets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
