package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-dynaform/pkg/formconfig"
	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/openapi"
	"github.com/goliatone/go-dynaform/pkg/render"
	"github.com/goliatone/go-dynaform/pkg/renderers/html"
	"github.com/goliatone/go-dynaform/pkg/renderers/tui"
)

const (
	defaultRendererName = html.Name
	maxDocumentBytes    = 8 << 20
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithThemeCatalog replaces the built-in theme catalog. Pass nil to render
// without theme tokens.
func WithThemeCatalog(catalog *render.ThemeCatalog) Option {
	return func(o *Orchestrator) {
		o.themes = catalog
		o.themesSpecified = true
	}
}

// WithHTMLOptions configures the HTML renderer registered by default.
func WithHTMLOptions(options ...html.Option) Option {
	return func(o *Orchestrator) {
		o.htmlOptions = append(o.htmlOptions, options...)
	}
}

// WithTUIOptions configures the terminal renderer registered by default.
func WithTUIOptions(options ...tui.Option) Option {
	return func(o *Orchestrator) {
		o.tuiOptions = append(o.tuiOptions, options...)
	}
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithReferenceResolution allows external $ref targets in OpenAPI sources
// and validates those documents before conversion.
func WithReferenceResolution(enabled bool) Option {
	return func(o *Orchestrator) {
		o.importOptions.ResolveReferences = enabled
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from form source to rendered output.
// It applies sensible defaults (html and tui renderers, the built-in theme)
// while remaining open to dependency injection.
type Orchestrator struct {
	registry        *render.Registry
	defaultRenderer string
	themes          *render.ThemeCatalog
	themesSpecified bool
	htmlOptions     []html.Option
	tuiOptions      []tui.Option
	httpClient      *http.Client
	importOptions   openapi.ImportOptions
	logger          *slog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if !o.themesSpecified {
		o.themes = render.DefaultThemes()
	}
	if o.registry == nil {
		registry := render.NewRegistry()
		renderer, err := html.New(o.htmlOptions...)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: configure html renderer: %w", err)
			return
		}
		registry.MustRegister(renderer)
		registry.MustRegister(tui.New(o.tuiOptions...))
		o.registry = registry
	}
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Request describes the inputs required to render a form.
type Request struct {
	// Source identifies where the form definition lives. Nil selects the
	// embedded default form.
	Source Source

	// Form bypasses loading when the caller already holds a form.
	Form *model.FormModel

	// OperationID selects the OpenAPI operation for OpenAPI and URL sources.
	// Empty picks the document's only operation with a request body.
	OperationID string

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// Theme and Variant select a theme from the catalog. Empty values use the
	// catalog defaults. Ignored when RenderOptions.Theme is already set.
	Theme   string
	Variant string

	// RenderOptions carries per-request state such as prefilled values,
	// visible errors or the timing strategy.
	RenderOptions render.RenderOptions
}

// Generate loads the form, resolves the theme and renders the output.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	form, err := o.resolveForm(ctx, req)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil && o.themes != nil {
		cfg, err := o.themes.Resolve(req.Theme, req.Variant)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: resolve theme: %w", err)
		}
		opts.Theme = cfg
	}

	name := req.Renderer
	if name == "" {
		name = o.defaultRenderer
	}
	output, err := o.registry.Render(ctx, name, form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

func (o *Orchestrator) resolveForm(ctx context.Context, req Request) (model.FormModel, error) {
	if req.Form != nil {
		form, err := formconfig.Normalize(*req.Form)
		if err != nil {
			return model.FormModel{}, fmt.Errorf("orchestrator: %w", err)
		}
		return form, nil
	}
	return o.Load(ctx, req.Source, req.OperationID)
}

// Load resolves source into a normalised form. operationID only applies to
// OpenAPI and URL sources.
func (o *Orchestrator) Load(ctx context.Context, source Source, operationID string) (model.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if source == nil {
		source = DefaultSource()
	}
	o.logger.DebugContext(ctx, "loading form", "kind", source.Kind(), "location", source.Location())

	var (
		form model.FormModel
		err  error
	)
	switch src := source.(type) {
	case defaultSource:
		form, err = formconfig.Default()
	case fileSource:
		form, err = formconfig.LoadFile(src.path)
	case fsSource:
		form, err = formconfig.LoadFS(src.fsys, src.name)
	case openAPISource:
		form, err = openapi.ImportFile(ctx, src.path, operationID, o.importOptions)
	case urlSource:
		var raw []byte
		raw, err = o.fetch(ctx, src.raw)
		if err == nil {
			form, err = openapi.ImportOperation(ctx, raw, operationID, o.importOptions)
		}
	default:
		return model.FormModel{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, source.Kind())
	}
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: load %s %s: %w", source.Kind(), source.Location(), err)
	}
	return form, nil
}

func (o *Orchestrator) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, rawURL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}
	return data, nil
}
