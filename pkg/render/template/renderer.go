package template

import (
	"errors"
	"io"
)

// ErrFilterExists reports a filter name that is already registered. Filters
// are process wide, so renderers built more than once see it on every build
// after the first.
var ErrFilterExists = errors.New("template: filter already registered")

// TemplateRenderer renders the named page templates of an HTML renderer.
type TemplateRenderer interface {
	// RenderTemplate executes name with data, appending the engine's
	// extension when missing, and copies the output to every out writer.
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	// RegisterFilter exposes fn to templates as {{ value|name:param }}.
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	// GlobalContext merges data into the values every render sees. Keys in
	// the per-render data win.
	GlobalContext(data any) error
}
