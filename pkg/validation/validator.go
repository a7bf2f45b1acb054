package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-dynaform/pkg/model"
)

// Whitespace and line terminators as browsers define them for \s and ".".
const (
	nonSpace      = `[^\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]`
	nonTerminator = `[^\n\r\x{2028}\x{2029}]`
)

// isSpace matches the characters a browser's String.prototype.trim removes.
// U+0085 is not among them.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

var (
	emailPattern = regexp.MustCompile(`^` + nonSpace + `+@` + nonSpace + `+\.` + nonSpace + `+$`)
	telPattern   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	urlPattern   = regexp.MustCompile(`^https?://` + nonTerminator + `+`)
)

// DefaultPatternCacheSize bounds the number of compiled descriptor patterns a
// Validator keeps around.
const DefaultPatternCacheSize = 256

// Result is the verdict for a single field. The zero value is valid.
type Result struct {
	Message string `json:"message,omitempty"`
}

// Valid reports whether no rule failed.
func (r Result) Valid() bool {
	return r.Message == ""
}

// Validator evaluates field descriptors against candidate values. It is safe
// for concurrent use; the only state it carries is configuration and a cache
// of compiled patterns, neither of which affects the verdict.
type Validator struct {
	patternMessages map[string]string
	strictOptions   bool
	cacheSize       int
	patterns        *patternCache
}

// Option configures a Validator.
type Option func(*Validator)

// WithPatternMessages replaces the name-keyed pattern message table. Passing
// an empty map disables name-keyed messages so only errorMessage overrides and
// the generic message apply.
func WithPatternMessages(messages map[string]string) Option {
	return func(v *Validator) {
		table := make(map[string]string, len(messages))
		for name, message := range messages {
			if name = strings.TrimSpace(name); name != "" {
				table[name] = message
			}
		}
		v.patternMessages = table
	}
}

// WithStrictOptions rejects select values that are not among the field's
// options. Off by default; enable it where values arrive from untrusted
// clients rather than from a rendered control.
func WithStrictOptions() Option {
	return func(v *Validator) {
		v.strictOptions = true
	}
}

// WithPatternCacheSize sizes the compiled pattern cache. Non-positive values
// keep the default.
func WithPatternCacheSize(size int) Option {
	return func(v *Validator) {
		if size > 0 {
			v.cacheSize = size
		}
	}
}

// New constructs a Validator with the default message table.
func New(options ...Option) *Validator {
	v := &Validator{
		patternMessages: DefaultPatternMessages(),
		cacheSize:       DefaultPatternCacheSize,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	v.patterns = newPatternCache(v.cacheSize)
	return v
}

var defaultValidator = New()

// Validate checks value against field using the default Validator and returns
// an empty string when the value is acceptable.
func Validate(field model.Field, value string) string {
	return defaultValidator.Validate(field, value)
}

// Check is Validate wrapped in a Result.
func Check(field model.Field, value string) Result {
	return Result{Message: defaultValidator.Validate(field, value)}
}

// Validate returns the first failing rule's message, or "" when valid.
func (v *Validator) Validate(field model.Field, value string) string {
	label := field.DisplayLabel()

	if field.Required && trimSpace(value) == "" {
		return requiredMessage(label)
	}
	if value == "" {
		return ""
	}

	length := utf8.RuneCountInString(value)
	if field.MinLength != nil && *field.MinLength > 0 && length < *field.MinLength {
		return minLengthMessage(label, *field.MinLength)
	}
	if field.MaxLength != nil && *field.MaxLength > 0 && length > *field.MaxLength {
		return maxLengthMessage(label, *field.MaxLength)
	}

	if msg := checkFormat(field, label, value); msg != "" {
		return msg
	}

	if v.strictOptions && field.Type == model.FieldTypeSelect && len(field.Options) > 0 && !field.HasOption(value) {
		return optionMessage(label)
	}

	if field.Pattern != "" {
		re := v.patterns.get(field.Pattern)
		if re != nil && !re.MatchString(value) {
			return v.patternFailure(field, label)
		}
	}

	return ""
}

// Check is Validate wrapped in a Result.
func (v *Validator) Check(field model.Field, value string) Result {
	return Result{Message: v.Validate(field, value)}
}

func checkFormat(field model.Field, label, value string) string {
	switch field.Type {
	case model.FieldTypeEmail:
		if !emailPattern.MatchString(value) {
			return msgEmail
		}
	case model.FieldTypeTel:
		if !telPattern.MatchString(value) {
			return msgPhone
		}
	case model.FieldTypeURL:
		if !urlPattern.MatchString(value) {
			return msgURL
		}
	case model.FieldTypeNumber:
		num, ok := parseNumber(value)
		if !ok {
			return notNumberMessage(label)
		}
		if field.Min != nil && num < *field.Min {
			return minMessage(label, *field.Min)
		}
		if field.Max != nil && num > *field.Max {
			return maxMessage(label, *field.Max)
		}
	}
	return ""
}

func (v *Validator) patternFailure(field model.Field, label string) string {
	if field.ErrorMessage != "" {
		return field.ErrorMessage
	}
	if msg, ok := v.patternMessages[field.Name]; ok && msg != "" {
		return msg
	}
	return patternMessage(label)
}
