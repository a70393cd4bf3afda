// Package form turns a list of widget specs into live controls. It owns the
// parameter store of one form, applies committed control readings and
// re-fetches the parameter list when a refresh-triggering widget changes.
package form

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/params"
	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/widget"
)

var (
	// ErrNoFetcher is returned by Refresh when the form was built without a
	// fetcher.
	ErrNoFetcher = errors.New("form: fetcher not configured")
	// ErrRejected is returned by Change when the reading names no control or
	// is not a value the control could have produced. The store is untouched.
	ErrRejected = errors.New("form: value not accepted")
)

// Fetcher loads the widget specs for the current selections.
type Fetcher func(ctx context.Context, q query.Params) ([]widget.Spec, error)

// Option configures a Form.
type Option func(*Form)

// WithFetcher sets the function used to re-fetch parameters.
func WithFetcher(fetch Fetcher) Option {
	return func(f *Form) {
		f.fetch = fetch
	}
}

// WithLogger routes refresh failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Form is the controller behind a rendered parameter form. It is not safe for
// concurrent use.
type Form struct {
	store    *params.Store
	readouts map[string]string
	fetch    Fetcher
	logger   *zap.Logger
}

// New constructs an empty form.
func New(options ...Option) *Form {
	f := &Form{
		store:    params.New(),
		readouts: make(map[string]string),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Store exposes the parameter store backing the form.
func (f *Form) Store() *params.Store {
	return f.store
}

// Query serialises the current selections.
func (f *Form) Query() query.Params {
	return query.FromStore(f.store)
}

// Rebuild discards every control and builds new ones from specs. Widgets that
// render nothing do not reach the store.
func (f *Form) Rebuild(specs []widget.Spec) {
	f.store.Replace(specs)
	f.readouts = make(map[string]string)
	for _, entry := range f.store.Entries() {
		if entry.Spec.Kind == widget.KindNumber {
			f.readouts[entry.Spec.Name] = entry.Value.Text
		}
	}
}

// Commit applies a committed control reading. refresh reports whether the
// widget asks for the parameter list to be re-fetched; it is false whenever
// the reading was rejected.
func (f *Form) Commit(name string, in widget.Input) (refresh bool, ok bool) {
	spec, applied := f.store.Update(name, in)
	if !applied {
		return false, false
	}
	if spec.Kind == widget.KindNumber {
		if value, found := f.store.Get(name); found {
			f.readouts[name] = value.Text
		}
	}
	return spec.TriggerRefresh, true
}

// Change commits a reading and, for refresh-triggering widgets, re-fetches
// the parameter list once with the updated query. A failed re-fetch keeps
// the committed selection and the current controls.
func (f *Form) Change(ctx context.Context, name string, in widget.Input) error {
	refresh, ok := f.Commit(name, in)
	if !ok {
		return fmt.Errorf("form: change %q: %w", name, ErrRejected)
	}
	if !refresh {
		return nil
	}
	return f.Refresh(ctx)
}

// Refresh re-fetches the parameter list with the current query and rebuilds
// the form from the response.
func (f *Form) Refresh(ctx context.Context) error {
	if f.fetch == nil {
		return ErrNoFetcher
	}
	specs, err := f.fetch(ctx, f.Query())
	if err != nil {
		f.logger.Error("parameter refresh failed", zap.Error(err))
		return fmt.Errorf("form: refresh: %w", err)
	}
	f.Rebuild(specs)
	return nil
}

// Slide moves the visible readout of a number control without committing
// the value. It reports false for names that are not number controls.
func (f *Form) Slide(name, value string) bool {
	spec, ok := f.store.Spec(name)
	if !ok || spec.Kind != widget.KindNumber {
		return false
	}
	f.readouts[name] = value
	return true
}

// Readout returns the text shown next to a number control.
func (f *Form) Readout(name string) (string, bool) {
	value, ok := f.readouts[name]
	return value, ok
}
