package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynaform/pkg/model"
)

// Violation reports a misused dynaform extension.
type Violation struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

var schemaExtensionKeys = []string{
	strings.TrimPrefix(extErrorMessage, extensionNamespace+"-"),
	strings.TrimPrefix(extLabel, extensionNamespace+"-"),
	strings.TrimPrefix(extOrder, extensionNamespace+"-"),
	strings.TrimPrefix(extPlaceholder, extensionNamespace+"-"),
	strings.TrimPrefix(extType, extensionNamespace+"-"),
}

// Lint checks every x-dynaform extension in the document. Violations are
// sorted by location; a non-nil error means the document could not be loaded.
func Lint(ctx context.Context, raw []byte) ([]Violation, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil {
		return nil, nil
	}

	var result []Violation
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			base := []string{strings.ToUpper(method) + " " + path}
			result = append(result, lintOperation(base, op.Extensions)...)
			if op.RequestBody == nil || op.RequestBody.Value == nil {
				continue
			}
			for mediaType, content := range op.RequestBody.Value.Content {
				if content == nil || content.Schema == nil {
					continue
				}
				result = append(result, lintSchema(appendPath(base, "requestBody", mediaType), content.Schema.Value, 0)...)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Location == result[j].Location {
			return result[i].Message < result[j].Message
		}
		return result[i].Location < result[j].Location
	})
	return result, nil
}

func lintOperation(path []string, extensions map[string]any) []Violation {
	var result []Violation
	for _, key := range sortedKeys(extensions) {
		switch {
		case key == extFormID:
			if s, ok := extensions[key].(string); !ok || strings.TrimSpace(s) == "" {
				result = append(result, violationAt(path, "%s must be a non-empty string", key))
			}
		case key == extensionNamespace || strings.HasPrefix(key, extensionNamespace+"-"):
			result = append(result, violationAt(path, "%s is not valid on operations (supported: %s)", key, extFormID))
		}
	}
	return result
}

// maxSchemaDepth stops runaway recursion through self-referencing schemas.
const maxSchemaDepth = 16

func lintSchema(path []string, schema *openapi3.Schema, depth int) []Violation {
	if schema == nil || depth > maxSchemaDepth {
		return nil
	}
	result := lintSchemaExtensions(path, schema.Extensions)

	for _, name := range sortedKeys(schema.Properties) {
		ref := schema.Properties[name]
		if ref == nil {
			continue
		}
		result = append(result, lintSchema(appendPath(path, "properties."+name), ref.Value, depth+1)...)
	}
	if schema.Items != nil {
		result = append(result, lintSchema(appendPath(path, "items"), schema.Items.Value, depth+1)...)
	}
	return result
}

func lintSchemaExtensions(path []string, extensions map[string]any) []Violation {
	var result []Violation
	for _, key := range sortedKeys(extensions) {
		if key == extensionNamespace {
			result = append(result, violationAt(path, "%s must be split into %s-<key> extensions", key, extensionNamespace))
			continue
		}
		if !strings.HasPrefix(key, extensionNamespace+"-") {
			continue
		}
		value := extensions[key]
		switch key {
		case extLabel, extErrorMessage, extPlaceholder:
			if _, ok := value.(string); !ok {
				result = append(result, violationAt(path, "%s must be a string (got %T)", key, value))
			}
		case extType:
			s, _ := value.(string)
			if !model.FieldType(s).Known() {
				result = append(result, violationAt(path, "%s has unknown field type %v", key, value))
			}
		case extOrder:
			if !isInteger(value) {
				result = append(result, violationAt(path, "%s must be an integer (got %v)", key, value))
			}
		case extFormID:
			result = append(result, violationAt(path, "%s is only valid on operations", key))
		default:
			result = append(result, violationAt(path, "unsupported extension %q (supported: %s)",
				key, strings.Join(schemaExtensionKeys, ", ")))
		}
	}
	return result
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int64:
		return true
	case float64:
		return v == math.Trunc(v) && !math.IsInf(v, 0)
	default:
		return false
	}
}

func violationAt(path []string, format string, args ...any) Violation {
	return Violation{Location: strings.Join(path, " > "), Message: fmt.Sprintf(format, args...)}
}

func appendPath(path []string, segments ...string) []string {
	next := append([]string(nil), path...)
	return append(next, segments...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
