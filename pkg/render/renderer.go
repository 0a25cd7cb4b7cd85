// Package render defines the renderer contract shared by the HTML, JSON and
// terminal front ends, plus a name-keyed registry and error mapping helpers.
package render

import (
	"context"

	"github.com/goliatone/go-carprice/pkg/model"
)

// Renderer converts a FormModel into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}
