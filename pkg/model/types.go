package model

// FieldType enumerates the input kinds a form field can declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeURL      FieldType = "url"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypePassword FieldType = "password"
	FieldTypeDate     FieldType = "date"
)

// FieldTypes lists every known field type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeEmail,
		FieldTypeTel,
		FieldTypeURL,
		FieldTypeNumber,
		FieldTypeTextarea,
		FieldTypeSelect,
		FieldTypePassword,
		FieldTypeDate,
	}
}

// Known reports whether t is one of the declared field types.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes() {
		if candidate == t {
			return true
		}
	}
	return false
}

// Field describes a single form input and its declarative constraints.
type Field struct {
	Name         string            `json:"name" yaml:"name" jsonschema:"minLength=1"`
	Label        string            `json:"label,omitempty" yaml:"label,omitempty"`
	Type         FieldType         `json:"type" yaml:"type" jsonschema:"enum=text,enum=email,enum=tel,enum=url,enum=number,enum=textarea,enum=select,enum=password,enum=date"`
	Required     bool              `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength    *int              `json:"minLength,omitempty" yaml:"minLength,omitempty" jsonschema:"minimum=0"`
	MaxLength    *int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty" jsonschema:"minimum=0"`
	Min          *float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64          `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern      string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Options      []string          `json:"options,omitempty" yaml:"options,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Placeholder  string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// DisplayLabel returns the configured label or one derived from the name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return DefaultLabeler(f.Name)
}

// HasOption reports whether value is one of the field's select options.
func (f Field) HasOption(value string) bool {
	for _, option := range f.Options {
		if option == value {
			return true
		}
	}
	return false
}

// FormModel is the configuration document a form is built from.
type FormModel struct {
	ID          string  `json:"id" yaml:"id" jsonschema:"minLength=1"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	SubmitLabel string  `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields" jsonschema:"minItems=1"`
}

// Field looks up a field by name.
func (m FormModel) Field(name string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Names returns the field names in declaration order.
func (m FormModel) Names() []string {
	names := make([]string, 0, len(m.Fields))
	for _, field := range m.Fields {
		names = append(names, field.Name)
	}
	return names
}

// EmptyValues returns a value map holding an empty string for every field.
func (m FormModel) EmptyValues() map[string]string {
	values := make(map[string]string, len(m.Fields))
	for _, field := range m.Fields {
		values[field.Name] = ""
	}
	return values
}

// Int returns a pointer to v, handy when declaring length bounds inline.
func Int(v int) *int {
	return &v
}

// Float returns a pointer to v, handy when declaring numeric bounds inline.
func Float(v float64) *float64 {
	return &v
}
