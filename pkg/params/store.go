// Package params holds the live parameter state of a rendered form: one
// widget spec and value per parameter name, kept in the order the backend
// listed them.
package params

import (
	"fmt"

	"github.com/goliatone/go-paramform/pkg/widget"
)

// Entry pairs a widget spec with its live value.
type Entry struct {
	Spec  widget.Spec
	Value widget.Value
}

// Store maps parameter names to their spec and value. It is the single
// source of truth read by the query serializer. A Store is not safe for
// concurrent use; owners serialise access.
type Store struct {
	order   []string
	entries map[string]*Entry
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Set registers name with its spec and initial value. Registering a name
// again within the same render cycle must keep its kind; Clear or Replace
// start a new cycle.
func (s *Store) Set(spec widget.Spec, value widget.Value) error {
	if spec.Name == "" {
		return fmt.Errorf("params: parameter name is required")
	}
	if value.Kind != spec.Kind {
		return fmt.Errorf("params: value kind %s does not match %q kind %s", value.Kind, spec.Name, spec.Kind)
	}
	if existing, ok := s.entries[spec.Name]; ok {
		if existing.Spec.Kind != spec.Kind {
			return fmt.Errorf("params: parameter %q cannot change kind from %s to %s", spec.Name, existing.Spec.Kind, spec.Kind)
		}
		existing.Spec = spec.Clone()
		existing.Value = value.Clone()
		return nil
	}
	s.order = append(s.order, spec.Name)
	s.entries[spec.Name] = &Entry{Spec: spec.Clone(), Value: value.Clone()}
	return nil
}

// Get returns the live value for name.
func (s *Store) Get(name string) (widget.Value, bool) {
	entry, ok := s.entries[name]
	if !ok {
		return widget.Value{}, false
	}
	return entry.Value.Clone(), true
}

// Spec returns the widget spec registered for name.
func (s *Store) Spec(name string) (widget.Spec, bool) {
	entry, ok := s.entries[name]
	if !ok {
		return widget.Spec{}, false
	}
	return entry.Spec.Clone(), true
}

// Update applies a committed control reading to name. Unknown names and
// inputs the widget rejects are silent no-ops reported through ok.
func (s *Store) Update(name string, in widget.Input) (spec widget.Spec, ok bool) {
	entry, exists := s.entries[name]
	if !exists {
		return widget.Spec{}, false
	}
	next, applied := entry.Spec.Apply(entry.Value, in)
	if !applied {
		return entry.Spec.Clone(), false
	}
	entry.Value = next
	return entry.Spec.Clone(), true
}

// Clear drops every parameter.
func (s *Store) Clear() {
	s.order = nil
	s.entries = make(map[string]*Entry)
}

// Replace clears the store and registers every renderable spec with its
// initial value. Specs that produce no control (select widgets without
// options, range widgets) are not stored. Duplicate names keep the first
// occurrence.
func (s *Store) Replace(specs []widget.Spec) {
	s.Clear()
	for _, spec := range specs {
		if !spec.Renderable() {
			continue
		}
		if _, dup := s.entries[spec.Name]; dup {
			continue
		}
		_ = s.Set(spec, spec.InitialValue())
	}
}

// Len reports how many parameters are stored.
func (s *Store) Len() int {
	return len(s.order)
}

// Names returns parameter names in insertion order.
func (s *Store) Names() []string {
	return append([]string(nil), s.order...)
}

// Entries returns copies of every entry in insertion order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, name := range s.order {
		entry := s.entries[name]
		out = append(out, Entry{Spec: entry.Spec.Clone(), Value: entry.Value.Clone()})
	}
	return out
}
