package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
)

// OutputFormat selects how Render serializes the collected answers.
type OutputFormat string

const (
	OutputFormatJSON       OutputFormat = "json"
	OutputFormatQuery      OutputFormat = "query"
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat accepts json, query or pretty in any case.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(raw))); format {
	case OutputFormatJSON, OutputFormatQuery, OutputFormatPrettyText:
		return format, nil
	default:
		return "", fmt.Errorf("tui: unknown output format %q", raw)
	}
}

// Theme holds the prefixes put in front of notices.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer rewrites the answers before JSON or pretty output.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the renderer.
type Option func(*Renderer)

// WithPromptDriver replaces the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithStdio prompts through survey on the given streams.
func WithStdio(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) Option {
	return WithPromptDriver(NewSurveyDriver(in, out, errOut))
}

func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
