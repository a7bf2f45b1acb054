package openapi

import (
	"strconv"

	"github.com/goliatone/go-dynaform/pkg/model"
)

const (
	extensionNamespace = "x-dynaform"
	extLabel           = extensionNamespace + "-label"
	extType            = extensionNamespace + "-type"
	extOrder           = extensionNamespace + "-order"
	extErrorMessage    = extensionNamespace + "-error-message"
	extPlaceholder     = extensionNamespace + "-placeholder"
	extFormID          = extensionNamespace + "-form"
)

// telPattern mirrors the validator's phone check so exported schemas accept
// exactly what the form accepts.
const telPattern = `^\+?[0-9]{10,15}$`

func fieldExtensions(field model.Field, order int) map[string]any {
	ext := map[string]any{
		extType:  string(field.Type),
		extOrder: order,
	}
	if field.Label != "" {
		ext[extLabel] = field.Label
	}
	if field.ErrorMessage != "" {
		ext[extErrorMessage] = field.ErrorMessage
	}
	if field.Placeholder != "" {
		ext[extPlaceholder] = field.Placeholder
	}
	return ext
}

func extString(ext map[string]any, key string) string {
	if raw, ok := ext[key].(string); ok {
		return raw
	}
	return ""
}

func extInt(ext map[string]any, key string) (int, bool) {
	switch v := ext[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
