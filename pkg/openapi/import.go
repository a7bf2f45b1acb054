package openapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynaform/pkg/formconfig"
	"github.com/goliatone/go-dynaform/pkg/model"
)

// ImportOptions tunes ImportOperation.
type ImportOptions struct {
	// ResolveReferences allows external $ref targets and validates the
	// document before conversion.
	ResolveReferences bool
}

// ImportFile reads an OpenAPI document from disk and converts one operation.
func ImportFile(ctx context.Context, path, operationID string, opts ImportOptions) (model.FormModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return ImportOperation(ctx, raw, operationID, opts)
}

// ImportOperation builds a form from the request body of operationID. An empty
// operationID selects the document's only operation with a request body.
func ImportOperation(ctx context.Context, raw []byte, operationID string, opts ImportOptions) (model.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if len(raw) == 0 {
		return model.FormModel{}, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("openapi: load document: %w", err)
	}
	if opts.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return model.FormModel{}, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	op, err := findOperation(spec, operationID)
	if err != nil {
		return model.FormModel{}, err
	}
	body := requestSchema(op.RequestBody)
	if body == nil || !body.Type.Is(openapi3.TypeObject) || len(body.Properties) == 0 {
		return model.FormModel{}, fmt.Errorf("%w: %s", ErrNoRequestBody, op.OperationID)
	}

	form := model.FormModel{
		ID:          op.OperationID,
		Title:       op.Summary,
		Description: op.Description,
	}
	if id := extString(op.Extensions, extFormID); id != "" {
		form.ID = id
		if spec.Info != nil {
			form.Title = spec.Info.Title
		}
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	fields := make([]orderedField, 0, len(body.Properties))
	for name, ref := range body.Properties {
		if ref == nil || ref.Value == nil {
			return model.FormModel{}, fmt.Errorf("%w: %s has no schema", ErrUnsupportedProperty, name)
		}
		field, err := convertProperty(name, ref.Value)
		if err != nil {
			return model.FormModel{}, err
		}
		field.Required = required[name]
		order, ok := extInt(ref.Value.Extensions, extOrder)
		fields = append(fields, orderedField{field: field, order: order, hasOrder: ok})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].less(fields[j]) })
	for _, entry := range fields {
		form.Fields = append(form.Fields, entry.field)
	}

	return formconfig.Normalize(form)
}

type orderedField struct {
	field    model.Field
	order    int
	hasOrder bool
}

// less keeps declared x-dynaform-order values first, then sorts by name.
func (f orderedField) less(other orderedField) bool {
	switch {
	case f.hasOrder && other.hasOrder:
		if f.order != other.order {
			return f.order < other.order
		}
	case f.hasOrder:
		return true
	case other.hasOrder:
		return false
	}
	return f.field.Name < other.field.Name
}

func findOperation(spec *openapi3.T, operationID string) (*openapi3.Operation, error) {
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	var candidates []*openapi3.Operation
	paths := make([]string, 0, spec.Paths.Len())
	for path := range spec.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := spec.Paths.Value(path)
		if item == nil {
			continue
		}
		methods := item.Operations()
		keys := make([]string, 0, len(methods))
		for method := range methods {
			keys = append(keys, method)
		}
		sort.Strings(keys)
		for _, method := range keys {
			op := methods[method]
			if op == nil {
				continue
			}
			if op.OperationID == "" {
				op.OperationID = strings.ToLower(method) + ":" + path
			}
			if operationID != "" {
				if op.OperationID == operationID {
					return op, nil
				}
				continue
			}
			if op.RequestBody != nil {
				candidates = append(candidates, op)
			}
		}
	}

	if operationID != "" {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
	}
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: no operation declares a request body", ErrOperationNotFound)
	case 1:
		return candidates[0], nil
	default:
		return nil, fmt.Errorf("openapi: %d operations declare request bodies; pass an operation id", len(candidates))
	}
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt := body.Value.Content.Get(mediaType); mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func convertProperty(name string, src *openapi3.Schema) (model.Field, error) {
	field := model.Field{
		Name:         name,
		Label:        extString(src.Extensions, extLabel),
		ErrorMessage: extString(src.Extensions, extErrorMessage),
		Placeholder:  extString(src.Extensions, extPlaceholder),
		Description:  src.Description,
		Pattern:      src.Pattern,
	}
	if field.Label == "" {
		field.Label = src.Title
	}

	switch {
	case src.Type.Is(openapi3.TypeNumber), src.Type.Is(openapi3.TypeInteger):
		field.Type = model.FieldTypeNumber
		field.Min = copyFloat(src.Min)
		field.Max = copyFloat(src.Max)
	case src.Type.Is(openapi3.TypeBoolean):
		field.Type = model.FieldTypeSelect
		field.Options = []string{"true", "false"}
	case src.Type.Is(openapi3.TypeString):
		field.Type = stringFieldType(src)
		if field.Type == model.FieldTypeSelect {
			for _, value := range src.Enum {
				field.Options = append(field.Options, fmt.Sprint(value))
			}
		}
		if src.MinLength > 0 {
			field.MinLength = model.Int(int(src.MinLength))
		}
		if src.MaxLength != nil {
			field.MaxLength = model.Int(int(*src.MaxLength))
		}
	default:
		return model.Field{}, fmt.Errorf("%w: %s has type %q", ErrUnsupportedProperty, name, strings.Join(src.Type.Slice(), ","))
	}

	if declared := model.FieldType(extString(src.Extensions, extType)); declared.Known() && compatible(field.Type, declared) {
		field.Type = declared
	}
	if field.Type == model.FieldTypeTel && field.Pattern == telPattern {
		field.Pattern = ""
	}
	return field, nil
}

func stringFieldType(src *openapi3.Schema) model.FieldType {
	if len(src.Enum) > 0 {
		return model.FieldTypeSelect
	}
	switch src.Format {
	case "email", "idn-email":
		return model.FieldTypeEmail
	case "uri", "url", "iri":
		return model.FieldTypeURL
	case "date":
		return model.FieldTypeDate
	case "password":
		return model.FieldTypePassword
	}
	if src.Pattern == telPattern {
		return model.FieldTypeTel
	}
	return model.FieldTypeText
}

// compatible reports whether a declared x-dynaform-type can replace the type
// inferred from the schema without changing the value domain.
func compatible(inferred, declared model.FieldType) bool {
	switch declared {
	case model.FieldTypeNumber:
		return inferred == model.FieldTypeNumber
	case model.FieldTypeSelect:
		return inferred == model.FieldTypeSelect
	default:
		return inferred != model.FieldTypeNumber && inferred != model.FieldTypeSelect
	}
}
