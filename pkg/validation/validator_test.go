package validation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynaform/pkg/model"
)

func TestValidate_Required(t *testing.T) {
	field := model.Field{Name: "fullName", Label: "Full Name", Type: model.FieldTypeText, Required: true}

	for _, value := range []string{"", "   ", "\t\n", "\u00a0", "\ufeff", " \u3000\u2028 "} {
		if got := Validate(field, value); got != "Full Name is required." {
			t.Errorf("Validate(%q) = %q", value, got)
		}
	}
	for _, value := range []string{"Ada", "\u0085"} {
		if got := Validate(field, value); got != "" {
			t.Errorf("Validate(%q): expected valid, got %q", value, got)
		}
	}
}

func TestValidate_OptionalEmptyAlwaysPasses(t *testing.T) {
	fields := []model.Field{
		{Name: "email", Type: model.FieldTypeEmail, MinLength: model.Int(5)},
		{Name: "phone", Type: model.FieldTypeTel},
		{Name: "website", Type: model.FieldTypeURL},
		{Name: "age", Type: model.FieldTypeNumber, Min: model.Float(18), Max: model.Float(99)},
		{Name: "zipCode", Type: model.FieldTypeText, Pattern: `^\d{5}$`},
		{Name: "department", Type: model.FieldTypeSelect, Options: []string{"Sales"}},
		{Name: "mystery", Type: model.FieldType("color")},
	}
	for _, field := range fields {
		if got := Validate(field, ""); got != "" {
			t.Errorf("%s: expected empty optional value to pass, got %q", field.Name, got)
		}
	}
}

func TestValidate_Rules(t *testing.T) {
	age := model.Field{Name: "age", Label: "Age", Type: model.FieldTypeNumber, Min: model.Float(1), Max: model.Float(10)}
	zip := model.Field{Name: "zipCode", Type: model.FieldTypeText, Pattern: `^\d{5}(-\d{4})?$`}

	tests := []struct {
		name  string
		field model.Field
		value string
		want  string
	}{
		{"email valid", model.Field{Name: "email", Type: model.FieldTypeEmail}, "a@b.com", ""},
		{"email invalid", model.Field{Name: "email", Type: model.FieldTypeEmail}, "not-an-email", msgEmail},
		{"email with space", model.Field{Name: "email", Type: model.FieldTypeEmail}, "a b@c.com", msgEmail},
		{"tel valid", model.Field{Name: "phone", Type: model.FieldTypeTel}, "+12345678901", ""},
		{"tel without plus", model.Field{Name: "phone", Type: model.FieldTypeTel}, "1234567890", ""},
		{"tel too short", model.Field{Name: "phone", Type: model.FieldTypeTel}, "123", msgPhone},
		{"tel too long", model.Field{Name: "phone", Type: model.FieldTypeTel}, "1234567890123456", msgPhone},
		{"tel letters", model.Field{Name: "phone", Type: model.FieldTypeTel}, "+1234567890a", msgPhone},
		{"url valid", model.Field{Name: "website", Type: model.FieldTypeURL}, "https://example.com", ""},
		{"url http", model.Field{Name: "website", Type: model.FieldTypeURL}, "http://x", ""},
		{"url missing scheme", model.Field{Name: "website", Type: model.FieldTypeURL}, "example.com", msgURL},
		{"url scheme only", model.Field{Name: "website", Type: model.FieldTypeURL}, "https://", msgURL},
		{"number in range", age, "5", ""},
		{"number above max", age, "15", "Age must be at most 10."},
		{"number below min", age, "0", "Age must be at least 1."},
		{"number not numeric", age, "abc", "Age must be a number."},
		{"number padded", age, " 7 ", ""},
		{"number exponent", age, "1e1", ""},
		{"number hex", age, "0x5", ""},
		{"number nan", age, "NaN", "Age must be a number."},
		{"number infinity", age, "Infinity", "Age must be at most 10."},
		{"number blank counts as zero", age, "  ", "Age must be at least 1."},
		{"number nbsp padded", age, "\u00a05\u00a0", ""},
		{"number bom prefix", age, "\ufeff5", ""},
		{"number trailing nel", age, "5\u0085", "Age must be a number."},
		{"fractional bound", model.Field{Name: "ratio", Type: model.FieldTypeNumber, Max: model.Float(2.5)}, "3", "Ratio must be at most 2.5."},
		{"min length", model.Field{Name: "name", Type: model.FieldTypeText, MinLength: model.Int(3)}, "ab", "Name must be at least 3 characters."},
		{"max length", model.Field{Name: "name", Type: model.FieldTypeText, MaxLength: model.Int(5)}, "abcdef", "Name must be at most 5 characters."},
		{"max length counts runes", model.Field{Name: "name", Type: model.FieldTypeText, MaxLength: model.Int(5)}, "héllo", ""},
		{"zero min length ignored", model.Field{Name: "name", Type: model.FieldTypeText, MinLength: model.Int(0)}, "a", ""},
		{"zip legacy message", zip, "1234", msgZip},
		{"zip plus four", zip, "12345-6789", ""},
		{"generic pattern message", model.Field{Name: "code", Label: "Code", Pattern: `^[A-Z]{3}$`}, "ab", "Invalid format for Code."},
		{"phone name keyed", model.Field{Name: "emergencyContact", Pattern: `^\d+$`}, "call me", msgPhone},
		{"website name keyed", model.Field{Name: "website", Pattern: `^https://`}, "http://x", msgURL},
		{"override wins", model.Field{Name: "zipCode", Pattern: `^\d{5}$`, ErrorMessage: "Five digits please."}, "12", "Five digits please."},
		{"invalid pattern skipped", model.Field{Name: "code", Pattern: `(`}, "anything", ""},
		{"unknown type falls through", model.Field{Name: "shade", Type: model.FieldType("color")}, "#fff", ""},
		{"select member", model.Field{Name: "department", Type: model.FieldTypeSelect, Options: []string{"Sales", "Ops"}}, "Ops", ""},
		{"select non member passes", model.Field{Name: "department", Type: model.FieldTypeSelect, Options: []string{"Sales", "Ops"}}, "HR", ""},
		{"length before format", model.Field{Name: "email", Type: model.FieldTypeEmail, MinLength: model.Int(10)}, "a@b", "Email must be at least 10 characters."},
		{"format before pattern", model.Field{Name: "email", Type: model.FieldTypeEmail, Pattern: `@corp\.com$`}, "bad", msgEmail},
		{"pattern after format", model.Field{Name: "email", Type: model.FieldTypeEmail, Pattern: `@corp\.com$`}, "a@b.com", msgEmail},
		{"required before length", model.Field{Name: "name", Required: true, MinLength: model.Int(3)}, " ", "Name is required."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Validate(tc.field, tc.value); got != tc.want {
				t.Fatalf("Validate(%q) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	field := model.Field{Name: "zipCode", Required: true, Pattern: `^\d{5}$`}
	for _, value := range []string{"", "123", "12345"} {
		first := Validate(field, value)
		second := Validate(field, value)
		if first != second {
			t.Fatalf("Validate(%q) not idempotent: %q vs %q", value, first, second)
		}
	}
}

func TestValidator_WithPatternMessages(t *testing.T) {
	field := model.Field{Name: "zipCode", Pattern: `^\d{5}$`}

	plain := New(WithPatternMessages(nil))
	if got := plain.Validate(field, "12"); got != "Invalid format for Zip Code." {
		t.Fatalf("expected generic message without table, got %q", got)
	}

	custom := New(WithPatternMessages(map[string]string{"zipCode": "ZIP!", " ": "ignored"}))
	if got := custom.Validate(field, "12"); got != "ZIP!" {
		t.Fatalf("expected custom table message, got %q", got)
	}

	if res := custom.Check(field, "12345"); !res.Valid() {
		t.Fatalf("expected valid result, got %+v", res)
	}
}

func TestValidator_WithStrictOptions(t *testing.T) {
	dept := model.Field{Name: "department", Type: model.FieldTypeSelect, Options: []string{"Sales", "Ops"}}

	strict := New(WithStrictOptions())
	if got := strict.Validate(dept, "HR"); got != "Please select a valid Department." {
		t.Fatalf("expected option message, got %q", got)
	}
	if got := strict.Validate(dept, "Ops"); got != "" {
		t.Fatalf("expected member to pass, got %q", got)
	}
	if got := strict.Validate(dept, ""); got != "" {
		t.Fatalf("expected empty optional value to pass, got %q", got)
	}

	withPattern := dept
	withPattern.Pattern = `^S`
	if got := strict.Validate(withPattern, "HR"); got != "Please select a valid Department." {
		t.Fatalf("expected option check before pattern, got %q", got)
	}
	if got := New().Validate(withPattern, "HR"); got != "Invalid format for Department." {
		t.Fatalf("expected pattern message without strict options, got %q", got)
	}
}

func TestValidator_PatternCacheReuse(t *testing.T) {
	v := New(WithPatternCacheSize(1))
	a := model.Field{Name: "a", Pattern: `^a+$`}
	b := model.Field{Name: "b", Pattern: `^b+$`}

	for i := 0; i < 3; i++ {
		if got := v.Validate(a, "aaa"); got != "" {
			t.Fatalf("a: %q", got)
		}
		if got := v.Validate(b, "x"); got != "Invalid format for B." {
			t.Fatalf("b: %q", got)
		}
	}
	if v.patterns.cache.Len() != 1 {
		t.Fatalf("cache should be bounded to 1 entry, got %d", v.patterns.cache.Len())
	}
}

func TestDefaultPatternMessagesIsCopy(t *testing.T) {
	table := DefaultPatternMessages()
	table["zipCode"] = "mutated"
	if got := Validate(model.Field{Name: "zipCode", Pattern: `^\d$`}, "x"); got != msgZip {
		t.Fatalf("default table mutated through copy: %q", got)
	}
}

func TestValidateForm(t *testing.T) {
	form := model.FormModel{
		ID: "signup",
		Fields: []model.Field{
			{Name: "fullName", Label: "Full Name", Required: true},
			{Name: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
			{Name: "age", Label: "Age", Type: model.FieldTypeNumber, Min: model.Float(18)},
			{Name: "bio", Label: "Bio", Type: model.FieldTypeTextarea},
		},
	}

	errs := ValidateForm(form, map[string]string{
		"email":   "nope",
		"age":     "12",
		"unknown": "ignored",
	})

	want := Errors{
		"fullName": "Full Name is required.",
		"email":    msgEmail,
		"age":      "Age must be at least 18.",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if errs.Valid() || !errs.Has("age") || errs.Has("bio") {
		t.Fatalf("unexpected helper results: %v", errs)
	}

	ordered := errs.Ordered(form)
	wantOrdered := []FieldError{
		{Field: "fullName", Message: "Full Name is required."},
		{Field: "email", Message: msgEmail},
		{Field: "age", Message: "Age must be at least 18."},
	}
	if diff := cmp.Diff(wantOrdered, ordered); diff != "" {
		t.Fatalf("ordered mismatch (-want +got):\n%s", diff)
	}

	clean := ValidateForm(form, map[string]string{"fullName": "Ada", "email": "ada@example.com"})
	if !clean.Valid() {
		t.Fatalf("expected valid form, got %v", clean)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"-3.5", -3.5, true},
		{".5", 0.5, true},
		{"", 0, true},
		{"0b101", 5, true},
		{"0o17", 15, true},
		{"0XfF", 255, true},
		{"-0x10", 0, false},
		{"0x", 0, false},
		{"0x1p-2", 0, false},
		{"1_000", 0, false},
		{"inf", 0, false},
		{"nan", 0, false},
		{"12abc", 0, false},
		{"1e400", math.Inf(1), true},
		{"-Infinity", math.Inf(-1), true},
		{"\u00a0 7 \ufeff", 7, true},
		{"\u20009\u200a", 9, true},
		{"\u00857", 0, false},
	}
	for _, tc := range tests {
		got, ok := parseNumber(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseNumber(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
