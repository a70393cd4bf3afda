package tui

import (
	"strings"

	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/widget"
)

// State tracks collected answers in prompt order and server-provided errors
// keyed by parameter name.
type State struct {
	order  []string
	values map[string]collected
	errors map[string][]string
}

type collected struct {
	multi bool
	input widget.Input
}

// NewState seeds the state with server errors.
func NewState(errs map[string][]string) *State {
	return &State{
		values: make(map[string]collected),
		errors: cloneErrors(errs),
	}
}

// Set records the answer for name.
func (s *State) Set(name string, multi bool, in widget.Input) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = collected{multi: multi, input: widget.Input{Values: append([]string(nil), in.Values...)}}
}

// Get returns the answer recorded for name.
func (s *State) Get(name string) (widget.Input, bool) {
	value, ok := s.values[name]
	return value.input, ok
}

// ErrorsFor returns the errors attached to name.
func (s *State) ErrorsFor(name string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[name]
}

// Values returns answers as a JSON-friendly map: multi selects become string
// slices, everything else a string.
func (s *State) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for name, value := range s.values {
		if value.multi {
			out[name] = append([]string{}, value.input.Values...)
			continue
		}
		out[name] = first(value.input)
	}
	return out
}

// Params returns answers in prompt order using the backend query rules:
// multi selects are comma-joined and empty answers are omitted.
func (s *State) Params() query.Params {
	out := make(query.Params, 0, len(s.order))
	for _, name := range s.order {
		value := s.values[name]
		var text string
		if value.multi {
			text = strings.Join(value.input.Values, ",")
		} else {
			text = first(value.input)
		}
		if text == "" {
			continue
		}
		out = append(out, query.Pair{Name: name, Value: text})
	}
	return out
}

func first(in widget.Input) string {
	if len(in.Values) == 0 {
		return ""
	}
	return in.Values[0]
}

func cloneErrors(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return make(map[string][]string)
	}
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}
