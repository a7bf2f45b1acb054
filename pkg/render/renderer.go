package render

import (
	"context"

	"github.com/goliatone/go-dynaform/pkg/model"
)

// Renderer turns a form and its current session state into an output
// representation (an HTML page, a terminal session transcript, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}
