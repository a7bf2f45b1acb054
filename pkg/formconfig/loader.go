package formconfig

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynaform/pkg/model"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// DefaultPath names the embedded configuration inside DefaultsFS.
const DefaultPath = "defaults/evil_manager.yaml"

// DefaultsFS exposes the embedded configuration bundle.
func DefaultsFS() fs.FS {
	return defaultsFS
}

// Default loads the embedded configuration.
func Default() (model.FormModel, error) {
	return LoadFS(defaultsFS, DefaultPath)
}

// MustDefault panics when the embedded configuration does not load.
func MustDefault() model.FormModel {
	form, err := Default()
	if err != nil {
		panic(err)
	}
	return form
}

// LoadFile reads and parses a configuration document from disk.
func LoadFile(path string) (model.FormModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("formconfig: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads and parses a configuration document from fsys.
func LoadFS(fsys fs.FS, path string) (model.FormModel, error) {
	if fsys == nil {
		return model.FormModel{}, fmt.Errorf("formconfig: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("formconfig: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a JSON or YAML document, checks it against Schema and
// normalises the result. source is only used in error messages.
func Parse(data []byte, source string) (model.FormModel, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.FormModel{}, fmt.Errorf("%w: %s", ErrEmptyDocument, source)
	}

	payload, err := toJSON(data, source)
	if err != nil {
		return model.FormModel{}, err
	}

	var generic any
	if err := json.Unmarshal(payload, &generic); err != nil {
		return model.FormModel{}, fmt.Errorf("formconfig: decode %s: %w", source, err)
	}
	issues, err := checkSchema(generic)
	if err != nil {
		return model.FormModel{}, err
	}
	if len(issues) > 0 {
		return model.FormModel{}, &DocumentError{Source: source, Issues: issues}
	}

	var form model.FormModel
	if err := json.Unmarshal(payload, &form); err != nil {
		return model.FormModel{}, fmt.Errorf("formconfig: decode %s: %w", source, err)
	}

	normalised, issues := normalise(form)
	if len(issues) > 0 {
		return model.FormModel{}, &DocumentError{Source: source, Issues: issues}
	}
	return normalised, nil
}

// Normalize applies the same checks Parse runs after schema validation. Use it
// for forms assembled in code or imported from other formats.
func Normalize(form model.FormModel) (model.FormModel, error) {
	normalised, issues := normalise(form)
	if len(issues) > 0 {
		source := form.ID
		if source == "" {
			source = "form"
		}
		return model.FormModel{}, &DocumentError{Source: source, Issues: issues}
	}
	return normalised, nil
}

// toJSON returns JSON input unchanged and converts YAML to JSON.
func toJSON(data []byte, source string) ([]byte, error) {
	if json.Valid(data) || isJSONFile(source) {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("formconfig: parse %s: invalid JSON or YAML: %w", source, err)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("formconfig: parse %s: unsupported YAML structure: %w", source, err)
	}
	return payload, nil
}

func isJSONFile(path string) bool {
	return filepath.Ext(path) == ".json"
}
