package html

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-dynaform/pkg/form"
	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/render"
	rendertemplate "github.com/goliatone/go-dynaform/pkg/render/template"
	"github.com/goliatone/go-dynaform/pkg/render/template/gotemplate"
)

// Name is the registry key of the HTML renderer.
const Name = "html"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	validateURL      string
	assetsURL        string
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk first and falls
// back to the embedded bundle for anything missing there.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithValidateURL enables live validation by pointing the embedded script at
// a validation endpoint.
func WithValidateURL(url string) Option {
	return func(cfg *config) {
		cfg.validateURL = strings.TrimSpace(url)
	}
}

// WithAssetsURL links the stylesheet and script from a URL prefix instead of
// inlining them.
func WithAssetsURL(prefix string) Option {
	return func(cfg *config) {
		cfg.assetsURL = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// Renderer produces a complete HTML page for a form.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	validateURL string
	assetsURL   string
	stylesheet  string
	script      string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engineOpts := []gotemplate.Option{
			gotemplate.WithName("dynaform-html"),
			gotemplate.WithFS(cfg.templateFS),
		}
		if cfg.templatesDir != "" {
			engineOpts = append(engineOpts, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:   templates,
		validateURL: cfg.validateURL,
		assetsURL:   cfg.assetsURL,
		stylesheet:  readAsset(StylesheetName),
		script:      readAsset(ScriptName),
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the page. Only the errors present in opts.Errors are shown, so
// callers pass the visible set for the active timing strategy.
func (r *Renderer) Render(ctx context.Context, f model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	result, err := r.templates.RenderTemplate("page", r.viewData(f, opts))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) viewData(f model.FormModel, opts render.RenderOptions) map[string]any {
	title := f.Title
	if title == "" {
		title = model.DefaultLabeler(f.ID)
	}
	submitLabel := f.SubmitLabel
	if submitLabel == "" {
		submitLabel = "Submit"
	}
	timing := opts.Timing
	if timing == "" {
		timing = form.OnChange
	}

	fields := make([]any, 0, len(f.Fields))
	for _, field := range f.Fields {
		fields = append(fields, fieldView(f.ID, field, opts))
	}

	data := map[string]any{
		"form_id":      "form-" + f.ID,
		"title":        title,
		"description":  f.Description,
		"submit_label": submitLabel,
		"action":       opts.Action,
		"timing":       timing.String(),
		"submitting":   opts.Submitting,
		"fields":       fields,
		"validate_url": r.validateURL,
	}

	if r.assetsURL != "" {
		data["stylesheet_url"] = r.assetsURL + "/" + StylesheetName
		if r.validateURL != "" {
			data["script_url"] = r.assetsURL + "/" + ScriptName
		}
	} else {
		data["stylesheet"] = r.stylesheet
		if r.validateURL != "" {
			data["script"] = r.script
		}
	}

	if opts.Notice != nil {
		data["notice"] = map[string]any{
			"level": string(opts.Notice.Level),
			"title": opts.Notice.Title,
			"text":  opts.Notice.Text,
		}
	}
	if opts.Theme != nil {
		data["theme_name"] = opts.Theme.Theme
		data["theme_variant"] = opts.Theme.Variant
		data["css_vars"] = cssVars(opts.Theme.CSSVars)
		if opts.Theme.AssetURL != nil {
			if href := opts.Theme.AssetURL("stylesheet"); href != "" {
				data["stylesheet_url"] = href
			}
		}
	}
	return data
}

func fieldView(formID string, field model.Field, opts render.RenderOptions) map[string]any {
	value := opts.Value(field.Name)
	view := map[string]any{
		"id":          formID + "-" + field.Name,
		"name":        field.Name,
		"label":       field.DisplayLabel(),
		"required":    field.Required,
		"value":       value,
		"error":       opts.Error(field.Name),
		"placeholder": field.Placeholder,
		"description": sanitizeDescription(field.Description),
	}

	switch field.Type {
	case model.FieldTypeTextarea:
		view["control"] = "textarea"
	case model.FieldTypeSelect:
		view["control"] = "select"
		options := make([]any, 0, len(field.Options))
		for _, option := range field.Options {
			options = append(options, map[string]any{
				"value":    option,
				"selected": option == value,
			})
		}
		view["options"] = options
	default:
		view["control"] = "input"
		view["input_type"], view["input_mode"] = inputType(field.Type)
	}
	return view
}

// inputType maps field types to HTML input types. Numbers stay text inputs so
// the browser never discards a non-numeric entry before it can be reported.
func inputType(t model.FieldType) (string, string) {
	switch t {
	case model.FieldTypeEmail:
		return "email", ""
	case model.FieldTypeTel:
		return "tel", "tel"
	case model.FieldTypeURL:
		return "url", ""
	case model.FieldTypeNumber:
		return "text", "decimal"
	case model.FieldTypePassword:
		return "password", ""
	case model.FieldTypeDate:
		return "date", ""
	default:
		return "text", ""
	}
}

func cssVars(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		name := cssValue(key)
		value := cssValue(vars[key])
		if name == "" || value == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}
