package render

import (
	"context"

	"github.com/goliatone/go-tablegen/pkg/table"
)

// Renderer converts a table model into a byte representation (HTML, text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, model table.Model, options RenderOptions) ([]byte, error)
}
