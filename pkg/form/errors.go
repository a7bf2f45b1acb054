package form

import "errors"

var (
	// ErrUnknownField is returned when an event names a field the form does
	// not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrInvalid is returned by Submit when at least one field fails
	// validation. The Outcome carries the messages.
	ErrInvalid = errors.New("form: validation failed")
	// ErrSubmitInProgress is returned when Submit is called while a previous
	// submission has not completed.
	ErrSubmitInProgress = errors.New("form: submission in progress")
	// ErrInvalidTiming is returned when a timing name cannot be parsed.
	ErrInvalidTiming = errors.New("form: invalid timing")
	// ErrInvalidValues is returned when a values payload holds something other
	// than scalars.
	ErrInvalidValues = errors.New("form: invalid values")
)
