package template

import (
	"io"
)

// TemplateRenderer executes named or inline templates. Output is returned and
// copied to every writer passed in out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(source string, data any, out ...io.Writer) (string, error)
}
