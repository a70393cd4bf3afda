package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-paramform/pkg/form"
	rendertemplate "github.com/goliatone/go-paramform/pkg/render/template"
)

// Renderer writes the markup of one control into buf.
type Renderer func(buf *bytes.Buffer, control form.Control, data ComponentData) error

// ComponentData carries what a component renderer needs besides the control.
type ComponentData struct {
	Template  rendertemplate.TemplateRenderer
	ControlID string
	Config    map[string]any
}

// Script is a runtime script a page must load once.
type Script struct {
	Src    string
	Async  bool
	Defer  bool
	Module bool
}

// Descriptor pairs a component renderer with the assets its markup needs.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

func (d Descriptor) clone() Descriptor {
	d.Stylesheets = slices.Clone(d.Stylesheets)
	d.Scripts = slices.Clone(d.Scripts)
	return d
}

// Registry maps control kinds to components. Registering a kind twice
// replaces the earlier component.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{components: make(map[string]Descriptor)}
}

// Register installs descriptor for the control kind name.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}
	descriptor.Name = name

	r.mu.Lock()
	r.components[name] = descriptor.clone()
	r.mu.Unlock()
	return nil
}

// MustRegister is Register for default wiring; it panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor returns a copy of the component registered for name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	descriptor, ok := r.components[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !ok {
		return Descriptor{}, false
	}
	return descriptor.clone(), true
}

// Names lists the registered kinds in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Assets collects the stylesheets and scripts of the named components,
// keeping the first occurrence of each.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, name := range names {
		descriptor, ok := r.components[name]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if firstSighting(seen, "css:"+href) && href != "" {
				stylesheets = append(stylesheets, href)
			}
		}
		for _, script := range descriptor.Scripts {
			if firstSighting(seen, "js:"+script.Src) && script.Src != "" {
				scripts = append(scripts, script)
			}
		}
	}
	return stylesheets, scripts
}

func firstSighting(seen map[string]struct{}, key string) bool {
	if _, ok := seen[key]; ok {
		return false
	}
	seen[key] = struct{}{}
	return true
}
