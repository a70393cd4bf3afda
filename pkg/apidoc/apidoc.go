// Package apidoc describes the datasets of a catalog as an OpenAPI 3
// document: one GET operation per parameters and result endpoint, with the
// query parameters typed from the dataset's widgets.
package apidoc

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/widget"
)

var plainText = bluemonday.StrictPolicy()

// Dataset pairs a catalog entry with the widgets its parameters endpoint
// returns for an empty query.
type Dataset struct {
	Entry catalog.Entry
	Specs []widget.Spec
}

// Option customises the generated document.
type Option func(*builder)

type builder struct {
	title   string
	version string
	servers []string
}

// WithTitle sets info.title.
func WithTitle(title string) Option {
	return func(b *builder) {
		if strings.TrimSpace(title) != "" {
			b.title = title
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(b *builder) {
		if strings.TrimSpace(version) != "" {
			b.version = version
		}
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(b *builder) {
		if strings.TrimSpace(url) != "" {
			b.servers = append(b.servers, url)
		}
	}
}

// Collect fetches the parameters of every entry with an empty query. A
// failing dataset is still listed without parameters; the failures are
// returned joined.
func Collect(ctx context.Context, b backend.Backend, entries []catalog.Entry) ([]Dataset, error) {
	if b == nil {
		return nil, errors.New("apidoc: backend is nil")
	}
	out := make([]Dataset, 0, len(entries))
	var errs []error
	for _, entry := range entries {
		specs, err := b.Parameters(ctx, entry.ParametersPath, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("apidoc: parameters of %s: %w", entry.ID, err))
		}
		out = append(out, Dataset{Entry: entry, Specs: specs})
	}
	return out, errors.Join(errs...)
}

// Build generates the document.
func Build(datasets []Dataset, options ...Option) *openapi3.T {
	cfg := builder{title: "Datasets", version: "1.0.0"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   cfg.title,
			Version: cfg.version,
		},
		Paths: openapi3.NewPaths(),
	}
	for _, server := range cfg.servers {
		doc.Servers = append(doc.Servers, &openapi3.Server{URL: server})
	}

	for _, dataset := range datasets {
		entry := dataset.Entry
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: entry.ID, Description: plain(entry.Label)})
		queryParams := Parameters(dataset.Specs)

		if entry.ParametersPath != "" {
			op := newOperation(entry, entry.ID+"_parameters", "Parameters of "+labelOrID(entry), queryParams)
			op.Responses = openapi3.NewResponses(openapi3.WithName("200",
				openapi3.NewResponse().
					WithDescription("Widget specifications").
					WithJSONSchema(parametersSchema())))
			addOperation(doc.Paths, entry.ParametersPath, op)
		}
		if entry.ResultPath != "" {
			op := newOperation(entry, entry.ID, labelOrID(entry), queryParams)
			op.Responses = openapi3.NewResponses(openapi3.WithName("200",
				openapi3.NewResponse().
					WithDescription("Result set").
					WithJSONSchema(resultSchema())))
			addOperation(doc.Paths, entry.ResultPath, op)
		}
	}
	return doc
}

// Parameters maps widgets to query parameters. Widgets that never reach the
// query string (ranges, selects without options) are skipped.
func Parameters(specs []widget.Spec) openapi3.Parameters {
	out := make(openapi3.Parameters, 0, len(specs))
	for _, spec := range specs {
		schema := Schema(spec)
		if schema == nil {
			continue
		}
		param := openapi3.NewQueryParameter(spec.Name).
			WithDescription(plain(spec.Label)).
			WithSchema(schema)
		if spec.TriggerRefresh {
			param.Extensions = map[string]any{"x-trigger-refresh": true}
		}
		out = append(out, &openapi3.ParameterRef{Value: param})
	}
	return out
}

// Schema returns the query value schema for spec, or nil when the widget
// has no query representation.
func Schema(spec widget.Spec) *openapi3.Schema {
	if !spec.Renderable() {
		return nil
	}
	initial := spec.InitialValue()

	switch spec.Kind {
	case widget.KindDate:
		schema := openapi3.NewStringSchema().WithFormat("date")
		if initial.Text != "" {
			schema.WithDefault(initial.Text)
		}
		return schema
	case widget.KindNumber:
		schema := openapi3.NewFloat64Schema()
		if v, err := strconv.ParseFloat(spec.Number.Min, 64); err == nil {
			schema.WithMin(v)
		}
		if v, err := strconv.ParseFloat(spec.Number.Max, 64); err == nil {
			schema.WithMax(v)
		}
		if v, err := strconv.ParseFloat(spec.Number.Step, 64); err == nil && v > 0 {
			schema.MultipleOf = &v
		}
		if v, err := strconv.ParseFloat(initial.Text, 64); err == nil {
			schema.WithDefault(v)
		}
		return schema
	case widget.KindSingleSelect:
		ids := optionIDs(spec)
		schema := openapi3.NewStringSchema().WithEnum(ids...)
		if initial.Text != "" {
			schema.WithDefault(initial.Text)
		}
		return schema
	case widget.KindMultiSelect:
		ids := optionIDs(spec)
		schema := openapi3.NewStringSchema()
		schema.Description = "Comma-separated list of: " + joinAny(ids)
		if len(initial.IDs) > 0 {
			schema.WithDefault(strings.Join(initial.IDs, ","))
		}
		return schema
	default:
		return nil
	}
}

func newOperation(entry catalog.Entry, id, summary string, params openapi3.Parameters) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Tags = []string{entry.ID}
	op.Parameters = params
	return op
}

func addOperation(paths *openapi3.Paths, path string, op *openapi3.Operation) {
	item := paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		paths.Set(path, item)
	}
	item.SetOperation(http.MethodGet, op)
}

func parametersSchema() *openapi3.Schema {
	var widgetTypes []any
	for _, kind := range []widget.Kind{widget.KindDate, widget.KindNumber, widget.KindRange, widget.KindSingleSelect, widget.KindMultiSelect} {
		widgetTypes = append(widgetTypes, kind.WireName())
	}
	widgetSchema := openapi3.NewObjectSchema().
		WithProperty("widget_type", openapi3.NewStringSchema().WithEnum(widgetTypes...)).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("trigger_refresh", openapi3.NewBoolSchema()).
		WithAnyAdditionalProperties()
	return openapi3.NewObjectSchema().
		WithProperty("parameters", openapi3.NewArraySchema().WithItems(widgetSchema)).
		WithRequired([]string{"parameters"})
}

func resultSchema() *openapi3.Schema {
	field := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithRequired([]string{"name"})
	return openapi3.NewObjectSchema().
		WithProperty("schema", openapi3.NewObjectSchema().
			WithProperty("fields", openapi3.NewArraySchema().WithItems(field))).
		WithProperty("data", openapi3.NewArraySchema().
			WithItems(openapi3.NewObjectSchema().WithAnyAdditionalProperties())).
		WithRequired([]string{"schema", "data"})
}

func optionIDs(spec widget.Spec) []any {
	options := spec.Options()
	ids := make([]any, 0, len(options))
	for _, option := range options {
		ids = append(ids, option.ID)
	}
	return ids
}

func joinAny(values []any) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprint(value))
	}
	return strings.Join(parts, ", ")
}

func labelOrID(entry catalog.Entry) string {
	if label := plain(entry.Label); label != "" {
		return label
	}
	return entry.ID
}

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}
