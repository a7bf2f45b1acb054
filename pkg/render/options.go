package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-dynaform/pkg/form"
)

// RenderOptions carry per-request state renderers use to prefill values and
// surface feedback without touching the form definition.
type RenderOptions struct {
	// Action is the submission endpoint. Empty keeps the browser default.
	Action string
	// Values pre-populates controls keyed by field name.
	Values map[string]string
	// Errors holds the messages that are visible under the active timing
	// strategy. Renderers print every entry, so callers filter first.
	Errors map[string]string
	// Timing tells interactive renderers when to validate.
	Timing form.Timing
	// Notice is an optional toast shown above the form.
	Notice *form.Notice
	// Submitting renders the submit control in its busy state.
	Submitting bool
	// Theme supplies design tokens resolved from a go-theme selection.
	Theme *theme.RendererConfig
}

// Value returns the prefilled value for name.
func (o RenderOptions) Value(name string) string {
	if o.Values == nil {
		return ""
	}
	return o.Values[name]
}

// Error returns the visible error for name.
func (o RenderOptions) Error(name string) string {
	if o.Errors == nil {
		return ""
	}
	return o.Errors[name]
}
