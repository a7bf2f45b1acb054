package validation

import (
	"fmt"
	"strconv"
)

const (
	msgEmail = "Please enter a valid email address."
	msgPhone = "Please enter a valid phone number (10-15 digits, optional +)."
	msgURL   = "Please enter a valid URL (starting with http:// or https://)."
	msgZip   = "Zip Code must be 12345 or 12345-6789."
)

var defaultPatternMessages = map[string]string{
	"zipCode":          msgZip,
	"email":            msgEmail,
	"phone":            msgPhone,
	"emergencyContact": msgPhone,
	"website":          msgURL,
}

// DefaultPatternMessages returns a copy of the name-keyed messages used when a
// field's pattern fails and the descriptor carries no errorMessage override.
func DefaultPatternMessages() map[string]string {
	out := make(map[string]string, len(defaultPatternMessages))
	for name, message := range defaultPatternMessages {
		out[name] = message
	}
	return out
}

func requiredMessage(label string) string {
	return fmt.Sprintf("%s is required.", label)
}

func minLengthMessage(label string, n int) string {
	return fmt.Sprintf("%s must be at least %d characters.", label, n)
}

func maxLengthMessage(label string, n int) string {
	return fmt.Sprintf("%s must be at most %d characters.", label, n)
}

func notNumberMessage(label string) string {
	return fmt.Sprintf("%s must be a number.", label)
}

func minMessage(label string, bound float64) string {
	return fmt.Sprintf("%s must be at least %s.", label, formatNumber(bound))
}

func maxMessage(label string, bound float64) string {
	return fmt.Sprintf("%s must be at most %s.", label, formatNumber(bound))
}

func optionMessage(label string) string {
	return fmt.Sprintf("Please select a valid %s.", label)
}

func patternMessage(label string) string {
	return fmt.Sprintf("Invalid format for %s.", label)
}

// formatNumber prints bounds without trailing zeros (1, 2.5, 1000000).
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
