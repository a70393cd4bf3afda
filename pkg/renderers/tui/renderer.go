package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/render"
	"github.com/goliatone/go-paramform/pkg/widget"
)

// plainText strips markup from labels before they reach the terminal.
var plainText = bluemonday.StrictPolicy()

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(nil, nil, nil)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatQuery:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts once for every control and serializes the answers. It does
// not re-fetch parameters; use Drive for refresh-aware sessions.
func (r *Renderer) Render(ctx context.Context, view form.View, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	state := NewState(opts.Errors)
	for _, control := range view.Controls {
		for _, msg := range state.ErrorsFor(control.Name) {
			_ = r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
		}
		in, err := r.promptControl(ctx, control)
		if err != nil {
			return nil, err
		}
		state.Set(control.Name, control.Multiple, in)
	}

	return r.serialize(state)
}

// Drive walks the controls of f, committing every answer. When a committed
// answer asks for a refresh the form is re-fetched and prompting resumes
// after the control that triggered it.
func (r *Renderer) Drive(ctx context.Context, f *form.Form) error {
	if f == nil {
		return errors.New("tui: form is nil")
	}
	if r.driver == nil {
		return ErrNoDriver
	}

	view := f.View()
	for i := 0; i < len(view.Controls); i++ {
		control := view.Controls[i]
		in, err := r.promptControl(ctx, control)
		if err != nil {
			return err
		}

		refresh, ok := f.Commit(control.Name, in)
		if !ok {
			_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("Ignored value for %s", displayLabel(control)))
			continue
		}
		if !refresh {
			continue
		}

		if err := f.Refresh(ctx); err != nil {
			_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("Could not refresh parameters: %v", err))
			continue
		}
		view = f.View()
		if idx := controlIndex(view, control.Name); idx >= 0 {
			i = idx
		} else {
			i--
		}
	}
	return nil
}

// Choose asks for one of options and returns its index.
func (r *Renderer) Choose(ctx context.Context, message string, options []string, def int) (int, error) {
	labels := make([]string, 0, len(options))
	for _, option := range options {
		labels = append(labels, plain(option))
	}
	for {
		idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: def})
		if err != nil {
			return -1, err
		}
		if idx >= 0 && idx < len(labels) {
			return idx, nil
		}
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+"Invalid selection")
	}
}

// Confirm asks a yes/no question.
func (r *Renderer) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})
}

// Notify prints msg with the theme's info or error prefix. It satisfies the
// results.Notifier contract.
func (r *Renderer) Notify(ok bool, msg string) {
	prefix := r.theme.InfoPrefix
	if !ok {
		prefix = r.theme.ErrorPrefix
	}
	_ = r.driver.Info(context.Background(), prefix+msg)
}

func (r *Renderer) promptControl(ctx context.Context, control form.Control) (widget.Input, error) {
	switch control.Kind {
	case widget.KindDate.String():
		return r.promptDate(ctx, control)
	case widget.KindNumber.String():
		return r.promptNumber(ctx, control)
	case widget.KindSingleSelect.String():
		return r.promptSelect(ctx, control)
	case widget.KindMultiSelect.String():
		return r.promptMultiSelect(ctx, control)
	default:
		return widget.Input{}, fmt.Errorf("%w: %q", ErrUnsupportedControl, control.Kind)
	}
}

func (r *Renderer) promptDate(ctx context.Context, control form.Control) (widget.Input, error) {
	label := displayLabel(control)
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: control.Value,
			Help:    "YYYY-MM-DD",
		})
		if err != nil {
			return widget.Input{}, err
		}
		response = strings.TrimSpace(response)
		if _, err := time.Parse(widget.DateLayout, response); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: expected a date like 2006-01-02", control.Name))
			continue
		}
		return widget.Single(response), nil
	}
}

func (r *Renderer) promptNumber(ctx context.Context, control form.Control) (widget.Input, error) {
	label := displayLabel(control)
	if control.Min != "" || control.Max != "" {
		label = fmt.Sprintf("%s [%s..%s]", label, control.Min, control.Max)
	}
	help := ""
	if control.Step != "" {
		help = "step " + control.Step
	}

	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: control.Value,
			Help:    help,
		})
		if err != nil {
			return widget.Input{}, err
		}
		response = strings.TrimSpace(response)
		if err := validateNumber(response, control.Min, control.Max); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", control.Name, err))
			continue
		}
		return widget.Single(response), nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, control form.Control) (widget.Input, error) {
	options, defaults := optionLabels(control)
	defaultIdx := -1
	if len(defaults) > 0 {
		defaultIdx = defaults[0]
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(control),
			Options:      options,
			DefaultIndex: defaultIdx,
		})
		if err != nil {
			return widget.Input{}, err
		}
		if idx < 0 || idx >= len(options) {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", control.Name))
			continue
		}
		return widget.Single(control.Options[idx].ID), nil
	}
}

func (r *Renderer) promptMultiSelect(ctx context.Context, control form.Control) (widget.Input, error) {
	options, defaults := optionLabels(control)
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  displayLabel(control),
		Options:  options,
		Defaults: defaults,
	})
	if err != nil {
		return widget.Input{}, err
	}
	ids := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(control.Options) {
			ids = append(ids, control.Options[idx].ID)
		}
	}
	return widget.Multi(ids...), nil
}

func (r *Renderer) serialize(state *State) ([]byte, error) {
	if r.outputFormat == OutputFormatQuery {
		return []byte(state.Params().Encode()), nil
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	switch r.outputFormat {
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return data, nil
	}
}

func validateNumber(raw, lower, upper string) error {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if bound, err := strconv.ParseFloat(lower, 64); err == nil && value < bound {
		return fmt.Errorf("must be at least %s", lower)
	}
	if bound, err := strconv.ParseFloat(upper, 64); err == nil && value > bound {
		return fmt.Errorf("must be at most %s", upper)
	}
	return nil
}

func optionLabels(control form.Control) (labels []string, selected []int) {
	labels = make([]string, 0, len(control.Options))
	for i, option := range control.Options {
		label := plain(option.Label)
		if label == "" {
			label = option.ID
		}
		labels = append(labels, label)
		if option.Selected {
			selected = append(selected, i)
		}
	}
	return labels, selected
}

func displayLabel(control form.Control) string {
	if label := plain(control.Label); label != "" {
		return label
	}
	return control.Name
}

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

func controlIndex(view form.View, name string) int {
	for i, control := range view.Controls {
		if control.Name == name {
			return i
		}
	}
	return -1
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		switch v := values[key].(type) {
		case []string:
			b.WriteString(strings.Join(v, ", "))
		default:
			b.WriteString(fmt.Sprint(v))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
