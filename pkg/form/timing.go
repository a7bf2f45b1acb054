package form

import (
	"fmt"
	"strings"
)

// Timing selects when validation feedback is shown.
type Timing string

const (
	// OnChange validates and shows feedback on every change.
	OnChange Timing = "change"
	// OnBlur shows feedback once a field has been blurred, then on every
	// subsequent change.
	OnBlur Timing = "blur"
)

// ParseTiming converts a textual timing name. Empty input selects OnChange.
func ParseTiming(raw string) (Timing, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "change", "onchange", "immediate":
		return OnChange, nil
	case "blur", "onblur", "touched":
		return OnBlur, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTiming, raw)
	}
}

// String implements fmt.Stringer.
func (t Timing) String() string {
	return string(t)
}

// Shows reports whether feedback for a field with the given touched state is
// visible under this timing.
func (t Timing) Shows(touched bool) bool {
	return t != OnBlur || touched
}

// Event identifies a UI interaction with a field.
type Event string

const (
	EventChange Event = "change"
	EventBlur   Event = "blur"
)

// ParseEvent converts a textual event name. Empty input selects EventChange.
func ParseEvent(raw string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "change", "input":
		return EventChange, nil
	case "blur", "focusout":
		return EventBlur, nil
	default:
		return "", fmt.Errorf("form: invalid event %q", raw)
	}
}

// Apply returns the touched state after ev and whether the field should be
// validated at all. A blur always touches and validates; a change validates
// only when the result could be visible.
func (t Timing) Apply(ev Event, touched bool) (validate bool, touchedAfter bool) {
	if ev == EventBlur {
		return true, true
	}
	return t.Shows(touched), touched
}
