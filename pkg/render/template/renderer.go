package template

import (
	"io"
)

// TemplateRenderer is the engine contract renderers depend on. Render accepts
// either a template name or inline template content.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// Lookup is implemented by engines that can report whether a named template
// exists without rendering it.
type Lookup interface {
	HasTemplate(name string) bool
}
