package render

import (
	"context"

	"github.com/goliatone/go-paramform/pkg/form"
)

// Renderer converts a form view into a byte representation (HTML, a query
// string collected from a terminal session, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view form.View, options RenderOptions) ([]byte, error)
}
