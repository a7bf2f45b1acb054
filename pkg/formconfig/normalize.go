package formconfig

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/validation"
)

func normalise(form model.FormModel) (model.FormModel, []Issue) {
	var issues []Issue

	out := model.FormModel{
		ID:          strings.TrimSpace(form.ID),
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		SubmitLabel: strings.TrimSpace(form.SubmitLabel),
		Fields:      make([]model.Field, 0, len(form.Fields)),
	}
	if out.ID == "" {
		issues = append(issues, Issue{Path: "/id", Message: "form id is required"})
	}
	if out.SubmitLabel == "" {
		out.SubmitLabel = "Submit"
	}
	if len(form.Fields) == 0 {
		issues = append(issues, Issue{Path: "/fields", Message: "at least one field is required"})
	}

	seen := make(map[string]int, len(form.Fields))
	for idx, field := range form.Fields {
		path := fmt.Sprintf("/fields/%d", idx)
		field, fieldIssues := normaliseField(field, path)
		issues = append(issues, fieldIssues...)

		if field.Name != "" {
			if first, dup := seen[field.Name]; dup {
				issues = append(issues, Issue{
					Path:    path + "/name",
					Message: fmt.Sprintf("duplicate field name %q (first declared at /fields/%d)", field.Name, first),
				})
			} else {
				seen[field.Name] = idx
			}
		}
		out.Fields = append(out.Fields, field)
	}

	return out, issues
}

func normaliseField(field model.Field, path string) (model.Field, []Issue) {
	var issues []Issue

	field.Name = strings.TrimSpace(field.Name)
	field.Label = strings.TrimSpace(field.Label)
	if field.Name == "" {
		issues = append(issues, Issue{Path: path + "/name", Message: "field name is required"})
	}
	if field.Label == "" {
		field.Label = model.DefaultLabeler(field.Name)
	}

	if field.Type == "" {
		field.Type = model.FieldTypeText
	}
	if !field.Type.Known() {
		issues = append(issues, Issue{Path: path + "/type", Message: fmt.Sprintf("unknown field type %q", field.Type)})
	}

	if field.Pattern != "" {
		if err := validation.CompilePattern(field.Pattern); err != nil {
			issues = append(issues, Issue{Path: path + "/pattern", Message: fmt.Sprintf("invalid pattern: %v", err)})
		}
	}

	switch {
	case field.Type == model.FieldTypeSelect && len(field.Options) == 0:
		issues = append(issues, Issue{Path: path + "/options", Message: "select fields require options"})
	case field.Type != model.FieldTypeSelect && len(field.Options) > 0:
		issues = append(issues, Issue{Path: path + "/options", Message: "options are only valid for select fields"})
	}

	if field.MinLength != nil && field.MaxLength != nil && *field.MaxLength > 0 && *field.MinLength > *field.MaxLength {
		issues = append(issues, Issue{Path: path + "/minLength", Message: "minLength exceeds maxLength"})
	}
	if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
		issues = append(issues, Issue{Path: path + "/min", Message: "min exceeds max"})
	}
	if (field.Min != nil || field.Max != nil) && field.Type != model.FieldTypeNumber {
		issues = append(issues, Issue{Path: path + "/type", Message: "min/max only apply to number fields"})
	}

	return field, issues
}
