package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-paramform/pkg/render/template"
)

// Option configures the pongo2 engine before construction.
type Option func(*options)

type options struct {
	files     []fs.FS
	extension string
	filters   map[string]pongo2.FilterFunction
	globals   pongo2.Context
}

// WithFS adds a template source. Sources are searched in the order given.
func WithFS(files fs.FS) Option {
	return func(o *options) {
		if files != nil {
			o.files = append(o.files, files)
		}
	}
}

// WithDir adds a directory on disk as a template source.
func WithDir(dir string) Option {
	return func(o *options) {
		if dir = strings.TrimSpace(dir); dir != "" {
			o.files = append(o.files, os.DirFS(dir))
		}
	}
}

// WithExtension sets the suffix appended to template names that lack one.
func WithExtension(ext string) Option {
	return func(o *options) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.extension = ext
	}
}

// WithFilters registers pongo2 filters. Filters are process wide in pongo2;
// a name that is already registered keeps its first implementation.
func WithFilters(filters map[string]pongo2.FilterFunction) Option {
	return func(o *options) {
		for name, fn := range filters {
			if name = strings.TrimSpace(name); name != "" && fn != nil {
				o.filters[name] = fn
			}
		}
	}
}

// WithGlobals exposes values to every template executed by the engine.
func WithGlobals(values map[string]any) Option {
	return func(o *options) {
		for key, value := range values {
			if key = strings.TrimSpace(key); key != "" {
				o.globals[key] = value
			}
		}
	}
}

// Engine executes pongo2 templates and caches parsed files.
type Engine struct {
	set       *pongo2.TemplateSet
	extension string

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine over the configured template sources.
func New(opts ...Option) (*Engine, error) {
	o := options{
		extension: ".tmpl",
		filters:   map[string]pongo2.FilterFunction{"trim": filterTrim},
		globals:   pongo2.Context{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	if len(o.files) == 0 {
		return nil, errors.New("gotemplate: no template source configured")
	}

	loaders := make([]pongo2.TemplateLoader, 0, len(o.files))
	for _, files := range o.files {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}

	for name, fn := range o.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register filter %q: %w", name, err)
		}
	}

	globals, err := toContext(map[string]any(o.globals))
	if err != nil {
		return nil, fmt.Errorf("gotemplate: globals: %w", err)
	}
	set := pongo2.NewSet("paramform", loaders...)
	set.Globals.Update(globals)

	return &Engine{
		set:       set,
		extension: o.extension,
		cache:     make(map[string]*pongo2.Template),
	}, nil
}

// Render executes name as a template file, or as inline template source
// when it contains pongo2 tags.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the named template file. The result is returned
// and also written to every writer in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if !strings.HasSuffix(name, e.extension) {
		name += e.extension
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return execute(tmpl, name, data, out)
}

// RenderString parses and executes inline template source.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return execute(tmpl, "inline", data, out)
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", name, err)
	}
	e.cache[name] = tmpl
	return tmpl, nil
}

func execute(tmpl *pongo2.Template, name string, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %s: convert data: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}
	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// toContext turns template data into a pongo2 context. Structs are exposed
// through their JSON field names so templates and JSON payloads share keys.
func toContext(data any) (pongo2.Context, error) {
	var root map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		root = v
	case map[string]any:
		root = v
	default:
		converted, err := viaJSON(v)
		if err != nil {
			return nil, err
		}
		m, ok := converted.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("template data must be an object, got %T", data)
		}
		root = m
	}

	ctx := make(pongo2.Context, len(root))
	for key, value := range root {
		if key = strings.TrimSpace(key); key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		ctx[key] = converted
	}
	return ctx, nil
}

func convertValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64, pongo2.FilterFunction:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}
	if reflect.ValueOf(value).Kind() == reflect.Func {
		return value, nil
	}
	converted, err := viaJSON(value)
	if err != nil {
		return nil, err
	}
	return convertValue(converted)
}

func viaJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
