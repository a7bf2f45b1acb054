// Package dynaform renders declarative forms and validates their fields.
//
// The root package re-exports the most common entry points; the pkg/
// sub-packages hold the full API.
package dynaform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-dynaform/pkg/form"
	"github.com/goliatone/go-dynaform/pkg/formconfig"
	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/orchestrator"
	"github.com/goliatone/go-dynaform/pkg/render"
	"github.com/goliatone/go-dynaform/pkg/renderers/html"
	"github.com/goliatone/go-dynaform/pkg/validation"
)

// FormModel aliases the form definition type.
type FormModel = model.FormModel

// Field aliases a single field descriptor.
type Field = model.Field

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface validation errors.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// LoadForm reads and normalises a YAML or JSON form configuration.
func LoadForm(path string) (FormModel, error) {
	return formconfig.LoadFile(path)
}

// NewSession starts an interactive session for f.
func NewSession(f FormModel, options ...form.Option) *form.Session {
	return form.New(f, options...)
}

// Validate checks value against field and returns the first failing rule's
// message, or "" when the value is valid.
func Validate(field Field, value string) string {
	return validation.Validate(field, value)
}

// GenerateHTML loads the form from source and renders it as a standalone
// HTML page. A nil source renders the embedded default form.
func GenerateHTML(ctx context.Context, source orchestrator.Source, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Source:   source,
		Renderer: html.Name,
	})
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the stylesheet and live-validation script so Go
// applications can serve them next to rendered pages.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(dynaform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
