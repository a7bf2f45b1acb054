// Package validation implements the field validator: a pure function from a
// field descriptor and a candidate value to an empty string (valid) or a
// single user-facing message. Rules run in a fixed order and the first failing
// rule wins: required, minimum length, maximum length, type-specific format
// (email, tel, url, number bounds, select membership) and finally the
// descriptor's pattern. Optional fields are only format-checked when the value
// is non-empty.
//
// The package-level Validate and ValidateForm helpers use a shared default
// Validator. Construct one with New to swap the pattern message table or size
// the compiled-pattern cache.
package validation
