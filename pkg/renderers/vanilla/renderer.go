package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/render"
	rendertemplate "github.com/goliatone/go-paramform/pkg/render/template"
	gotemplate "github.com/goliatone/go-paramform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-paramform/pkg/renderers/vanilla/components"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	overrideDir      string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	assetBase        string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir layers a directory on disk over the template bundle. A
// template found in path wins; anything missing falls back to the bundle.
// The directory mirrors the bundle layout, starting with "templates/".
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.overrideDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithAssetBase sets the URL prefix runtime assets are served from.
func WithAssetBase(prefix string) Option {
	return func(cfg *config) {
		cfg.assetBase = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	assetBase string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), assetBase: "/assets"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithDir(cfg.overrideDir),
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithFilters(map[string]pongo2.FilterFunction{
				"sanitize_label": filterSanitizeLabel,
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, registry: cfg.registry, assetBase: cfg.assetBase}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form fragment for view.
func (r *Renderer) Render(_ context.Context, view form.View, options render.RenderOptions) ([]byte, error) {
	markup, _, _, err := r.renderForm(view, options)
	if err != nil {
		return nil, err
	}
	return []byte(markup), nil
}

func (r *Renderer) renderForm(view form.View, options render.RenderOptions) (string, []string, []components.Script, error) {
	if r.templates == nil {
		return "", nil, nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	controls := newComponentRenderer(r.templates, r.registry, options.Errors)
	var body strings.Builder
	for _, control := range view.Controls {
		markup, err := controls.render(control)
		if err != nil {
			return "", nil, nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		body.WriteString(markup)
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"form": map[string]any{
			"class":           string(ClassForm),
			"change_endpoint": options.ChangeEndpoint,
			"slide_endpoint":  options.SlideEndpoint,
			"controls":        body.String(),
			"empty":           len(view.Controls) == 0,
		},
	})
	if err != nil {
		return "", nil, nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}

	stylesheets, scripts := controls.assets()
	return result, stylesheets, scripts, nil
}

// Page describes the full browser shell around a form.
type Page struct {
	Title           string
	Datasets        []catalog.Entry
	SelectedDataset string
	Form            form.View
	Table           string
	DatasetEndpoint string
	ResultsEndpoint string
	TSVEndpoint     string
	XLSXEndpoint    string
}

// RenderPage produces the complete HTML document: dataset selector, form,
// result table and the runtime assets the rendered components need.
func (r *Renderer) RenderPage(_ context.Context, page Page, options render.RenderOptions) ([]byte, error) {
	formMarkup, stylesheets, scripts, err := r.renderForm(page.Form, options)
	if err != nil {
		return nil, err
	}
	if len(stylesheets) == 0 {
		stylesheets = []string{StylesheetName}
	}
	if len(scripts) == 0 {
		scripts = []components.Script{{Src: RuntimeScriptName, Defer: true}}
	}

	hrefs := make([]string, 0, len(stylesheets))
	for _, href := range stylesheets {
		hrefs = append(hrefs, r.assetURL(href))
	}
	scriptData := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		scriptData = append(scriptData, map[string]any{
			"src":    r.assetURL(script.Src),
			"defer":  script.Defer,
			"async":  script.Async,
			"module": script.Module,
		})
	}

	datasets := make([]map[string]any, 0, len(page.Datasets))
	for _, entry := range page.Datasets {
		datasets = append(datasets, map[string]any{
			"id":       entry.ID,
			"label":    entry.Label,
			"selected": entry.ID == page.SelectedDataset,
		})
	}

	title := page.Title
	if strings.TrimSpace(title) == "" {
		title = "Datasets"
	}

	result, err := r.templates.RenderTemplate("templates/page.tmpl", map[string]any{
		"title":       title,
		"stylesheets": hrefs,
		"scripts":     scriptData,
		"datasets":    datasets,
		"classes": map[string]any{
			"page":     string(ClassPage),
			"datasets": string(ClassDatasets),
			"actions":  string(ClassActions),
		},
		"endpoints": map[string]any{
			"dataset": page.DatasetEndpoint,
			"results": page.ResultsEndpoint,
			"tsv":     page.TSVEndpoint,
			"xlsx":    page.XLSXEndpoint,
		},
		"form":  formMarkup,
		"table": page.Table,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) assetURL(name string) string {
	if strings.Contains(name, "://") || strings.HasPrefix(name, "/") {
		return name
	}
	return r.assetBase + "/" + name
}
