package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/render/template"
	"github.com/goliatone/go-paramform/pkg/renderers/vanilla/components"
)

const chromeLabelTemplate = "templates/components/chrome/label.tmpl"

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	errors    map[string][]string

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, errors map[string][]string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		errors:         errors,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(control form.Control) (string, error) {
	componentName := control.Kind
	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for parameter %q", componentName, control.Name)
	}

	data := components.ComponentData{
		Template:  r.templates,
		ControlID: componentControlID(control.Name),
	}

	var markup bytes.Buffer
	if err := descriptor.Renderer(&markup, control, data); err != nil {
		return "", fmt.Errorf("render component %q for parameter %q: %w", componentName, control.Name, err)
	}

	r.usedComponents[componentName] = struct{}{}

	return buildFieldMarkup(r.templates, control, componentName, markup.String(), r.errors[control.Name]), nil
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []components.Script) {
	if r.registry == nil || len(r.usedComponents) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

func buildFieldMarkup(templates template.TemplateRenderer, control form.Control, componentName, markup string, errs []string) string {
	var builder strings.Builder
	builder.Grow(len(markup) + 256)

	builder.WriteString(`<div class="`)
	builder.WriteString(string(ClassField))
	builder.WriteString(`" data-param="`)
	builder.WriteString(html.EscapeString(control.Name))
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`"`)
	if control.TriggerRefresh {
		builder.WriteString(` data-trigger-refresh="true"`)
	}
	builder.WriteString(">\n")

	if strings.TrimSpace(control.Label) != "" {
		builder.WriteString("    ")
		builder.WriteString(renderLabel(templates, control))
		builder.WriteByte('\n')
	}

	for _, line := range strings.Split(markup, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if len(errs) > 0 {
		builder.WriteString(`    <ul class="`)
		builder.WriteString(string(ClassErrors))
		builder.WriteString(`" role="alert">`)
		for _, msg := range errs {
			builder.WriteString("<li>")
			builder.WriteString(html.EscapeString(msg))
			builder.WriteString("</li>")
		}
		builder.WriteString("</ul>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

// renderLabel uses the label partial and falls back to inline markup when
// the partial is missing or fails.
func renderLabel(templates template.TemplateRenderer, control form.Control) string {
	if templates != nil {
		out, err := templates.RenderTemplate(chromeLabelTemplate, map[string]any{
			"id":      componentLabelID(control.Name),
			"for":     componentControlID(control.Name),
			"label":   control.Label,
			"classes": string(ClassLabel),
		})
		if err == nil && strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		}
	}

	var builder strings.Builder
	builder.WriteString(`<label id="`)
	builder.WriteString(html.EscapeString(componentLabelID(control.Name)))
	builder.WriteString(`" for="`)
	builder.WriteString(html.EscapeString(componentControlID(control.Name)))
	builder.WriteString(`" class="`)
	builder.WriteString(string(ClassLabel))
	builder.WriteString(`">`)
	builder.WriteString(sanitizeLabel(control.Label))
	builder.WriteString(`</label>`)
	return builder.String()
}
