package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynaform/pkg/model"
)

// ExportOptions tunes the generated document.
type ExportOptions struct {
	// Path is the submission endpoint. Defaults to "/api/submit".
	Path string
	// Version populates info.version. Defaults to "1.0.0".
	Version string
	// ServerURL adds a servers entry when set.
	ServerURL string
}

func (o ExportOptions) withDefaults() ExportOptions {
	if strings.TrimSpace(o.Path) == "" {
		o.Path = "/api/submit"
	}
	if strings.TrimSpace(o.Version) == "" {
		o.Version = "1.0.0"
	}
	return o
}

// OperationID returns the operationId Export assigns to form.
func OperationID(form model.FormModel) string {
	return "submit-" + form.ID
}

// Export describes form as a POST operation whose JSON request body carries
// one property per field. The document is validated before it is returned.
func Export(ctx context.Context, form model.FormModel, opts ExportOptions) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(form.Fields) == 0 {
		return nil, fmt.Errorf("openapi: form %q has no fields", form.ID)
	}
	opts = opts.withDefaults()

	title := form.Title
	if title == "" {
		title = form.ID
	}

	op := &openapi3.Operation{
		OperationID: OperationID(form),
		Summary:     "Submit " + title,
		Description: form.Description,
		Extensions:  map[string]any{extFormID: form.ID},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchema(RequestSchema(form)),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Submission accepted").
					WithJSONSchema(okSchema()),
			}),
			openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Validation failed").
					WithJSONSchema(errorsSchema()),
			}),
		),
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       title,
			Description: form.Description,
			Version:     opts.Version,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(opts.Path, &openapi3.PathItem{Post: op})),
	}
	if opts.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: opts.ServerURL}}
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate exported document: %w", err)
	}
	return doc, nil
}

// ExportJSON renders Export's document as indented JSON.
func ExportJSON(ctx context.Context, form model.FormModel, opts ExportOptions) ([]byte, error) {
	doc, err := Export(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal document: %w", err)
	}
	return raw, nil
}

// RequestSchema returns the object schema describing a submission of form.
func RequestSchema(form model.FormModel) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	for idx, field := range form.Fields {
		schema.WithProperty(field.Name, fieldSchema(field, idx))
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	return schema
}

func fieldSchema(field model.Field, order int) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Type {
	case model.FieldTypeNumber:
		schema = openapi3.NewFloat64Schema()
		schema.Min = copyFloat(field.Min)
		schema.Max = copyFloat(field.Max)
	case model.FieldTypeSelect:
		schema = openapi3.NewStringSchema()
		for _, option := range field.Options {
			schema.Enum = append(schema.Enum, option)
		}
	default:
		schema = openapi3.NewStringSchema()
		switch field.Type {
		case model.FieldTypeEmail:
			schema.Format = "email"
		case model.FieldTypeURL:
			schema.Format = "uri"
		case model.FieldTypeDate:
			schema.Format = "date"
		case model.FieldTypePassword:
			schema.Format = "password"
		case model.FieldTypeTel:
			schema.Pattern = telPattern
		}
	}

	if schema.Type.Is(openapi3.TypeString) {
		if field.MinLength != nil && *field.MinLength > 0 {
			schema.MinLength = uint64(*field.MinLength)
		}
		if field.MaxLength != nil && *field.MaxLength > 0 {
			max := uint64(*field.MaxLength)
			schema.MaxLength = &max
		}
		if field.Pattern != "" {
			schema.Pattern = field.Pattern
		}
	}

	schema.Title = field.DisplayLabel()
	schema.Description = field.Description
	schema.Extensions = fieldExtensions(field, order)
	return schema
}

func okSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.WithProperty("ok", openapi3.NewBoolSchema())
	schema.Required = []string{"ok"}
	return schema
}

func errorsSchema() *openapi3.Schema {
	messages := openapi3.NewObjectSchema()
	messages.AdditionalProperties = openapi3.AdditionalProperties{
		Schema: openapi3.NewSchemaRef("", openapi3.NewStringSchema()),
	}
	schema := openapi3.NewObjectSchema()
	schema.WithProperty("errors", messages)
	schema.Required = []string{"errors"}
	return schema
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
