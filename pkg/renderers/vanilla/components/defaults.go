package components

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-paramform/pkg/form"
)

const (
	templatePrefix = "templates/components/"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	registry := New()
	runtime := []Script{{Src: RuntimeScript, Defer: true}}
	styles := []string{Stylesheet}

	registry.MustRegister(NameDate, Descriptor{
		Renderer:    templateComponentRenderer(templatePrefix + "date.tmpl"),
		Stylesheets: styles,
		Scripts:     runtime,
	})
	registry.MustRegister(NameNumber, Descriptor{
		Renderer:    templateComponentRenderer(templatePrefix + "number.tmpl"),
		Stylesheets: styles,
		Scripts:     runtime,
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer:    templateComponentRenderer(templatePrefix + "select.tmpl"),
		Stylesheets: styles,
		Scripts:     runtime,
	})
	registry.MustRegister(NameMultiSelect, Descriptor{
		Renderer:    templateComponentRenderer(templatePrefix + "select.tmpl"),
		Stylesheets: styles,
		Scripts:     runtime,
	})

	return registry
}

func templateComponentRenderer(templateName string) Renderer {
	return func(buf *bytes.Buffer, control form.Control, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		payload := map[string]any{
			"id":      data.ControlID,
			"control": control,
			"config":  data.Config,
		}
		rendered, err := data.Template.RenderTemplate(templateName, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
