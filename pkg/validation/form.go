package validation

import "github.com/goliatone/go-dynaform/pkg/model"

// Errors maps field names to the message of their first failing rule. Valid
// fields have no entry.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Has reports whether name failed validation.
func (e Errors) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// FieldError pairs a field name with its message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Ordered returns the errors following the form's field order. Entries for
// names the form does not declare are dropped.
func (e Errors) Ordered(form model.FormModel) []FieldError {
	if len(e) == 0 {
		return nil
	}
	out := make([]FieldError, 0, len(e))
	for _, field := range form.Fields {
		if msg, ok := e[field.Name]; ok {
			out = append(out, FieldError{Field: field.Name, Message: msg})
		}
	}
	return out
}

// ValidateForm validates every field of form using the default Validator.
func ValidateForm(form model.FormModel, values map[string]string) Errors {
	return defaultValidator.ValidateForm(form, values)
}

// ValidateForm validates every declared field; names missing from values are
// validated as empty strings and names the form does not declare are ignored.
func (v *Validator) ValidateForm(form model.FormModel, values map[string]string) Errors {
	errs := make(Errors)
	for _, field := range form.Fields {
		if msg := v.Validate(field, values[field.Name]); msg != "" {
			errs[field.Name] = msg
		}
	}
	return errs
}
