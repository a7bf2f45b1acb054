package validation

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// parseNumber accepts the same textual numbers a browser number coercion does:
// surrounding whitespace is ignored, a blank value is zero, unsigned 0x/0o/0b
// literals are integers and Infinity is allowed. NaN never parses.
func parseNumber(raw string) (float64, bool) {
	s := trimSpace(raw)
	if s == "" {
		return 0, true
	}

	if base, digits, ok := splitRadixPrefix(s); ok {
		return parseRadix(digits, base)
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	// strconv also understands inf/nan spellings and hex floats; reject them.
	if strings.ContainsAny(s, "iInNxXpP_") {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func splitRadixPrefix(s string) (int, string, bool) {
	if len(s) < 2 || s[0] != '0' {
		return 0, "", false
	}
	switch s[1] {
	case 'x', 'X':
		return 16, s[2:], true
	case 'o', 'O':
		return 8, s[2:], true
	case 'b', 'B':
		return 2, s[2:], true
	}
	return 0, "", false
}

func parseRadix(digits string, base int) (float64, bool) {
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return 0, false
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, false
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f, true
}
