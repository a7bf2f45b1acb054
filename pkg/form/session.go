package form

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/validation"
)

// Feedback describes the validation state of one field after an event.
type Feedback struct {
	Field   string `json:"field"`
	Error   string `json:"error,omitempty"`
	Visible bool   `json:"visible"`
	Touched bool   `json:"touched"`
}

// Outcome reports the result of Submit.
type Outcome struct {
	Submitted bool              `json:"submitted"`
	Values    map[string]string `json:"values,omitempty"`
	Errors    validation.Errors `json:"errors,omitempty"`
}

// Option configures a Session.
type Option func(*Session)

// WithTiming selects the feedback timing strategy.
func WithTiming(t Timing) Option {
	return func(s *Session) {
		if t != "" {
			s.timing = t
		}
	}
}

// WithValidator overrides the validator used for every check.
func WithValidator(v *validation.Validator) Option {
	return func(s *Session) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithSubmitter overrides the simulated submitter.
func WithSubmitter(sub Submitter) Option {
	return func(s *Session) {
		if sub != nil {
			s.submitter = sub
		}
	}
}

// WithNotifier installs a notice sink. Without one notices are dropped.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger used for session diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithValues pre-populates field values. Names the form does not declare are
// ignored.
func WithValues(values map[string]string) Option {
	return func(s *Session) {
		for name, value := range values {
			if _, ok := s.values[name]; ok {
				s.values[name] = value
			}
		}
	}
}

// Session is the mutable state of one form instance. It is safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	form      model.FormModel
	timing    Timing
	validator *validation.Validator
	submitter Submitter
	notifier  Notifier
	logger    *slog.Logger

	values     map[string]string
	errors     map[string]string
	touched    map[string]bool
	submitting bool
}

// New creates a Session for form with every value empty.
func New(form model.FormModel, options ...Option) *Session {
	s := &Session{
		form:      form,
		timing:    OnChange,
		validator: validation.New(),
		notifier:  nopNotifier{},
		values:    form.EmptyValues(),
		errors:    make(map[string]string),
		touched:   make(map[string]bool),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.submitter == nil {
		s.submitter = SimulatedSubmitter{Delay: DefaultSubmitDelay, Logger: s.logger}
	}
	return s
}

// Form returns the form the session was built from.
func (s *Session) Form() model.FormModel {
	return s.form
}

// Timing returns the configured timing strategy.
func (s *Session) Timing() Timing {
	return s.timing
}

// Change records a new value for name and revalidates it when the timing
// strategy calls for it.
func (s *Session) Change(ctx context.Context, name, value string) (Feedback, error) {
	return s.handle(ctx, EventChange, name, value, true)
}

// Blur marks name as touched and validates its current value.
func (s *Session) Blur(ctx context.Context, name string) (Feedback, error) {
	return s.handle(ctx, EventBlur, name, "", false)
}

func (s *Session) handle(ctx context.Context, ev Event, name, value string, setValue bool) (Feedback, error) {
	field, ok := s.form.Field(name)
	if !ok {
		return Feedback{Field: name}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	s.mu.Lock()
	if setValue {
		s.values[name] = value
	}
	validate, touched := s.timing.Apply(ev, s.touched[name])
	s.touched[name] = touched

	msg := ""
	if validate {
		msg = s.validator.Validate(field, s.values[name])
	}
	if msg == "" {
		delete(s.errors, name)
	} else {
		s.errors[name] = msg
	}
	fb := Feedback{
		Field:   name,
		Error:   msg,
		Visible: msg != "" && s.timing.Shows(touched),
		Touched: touched,
	}
	s.mu.Unlock()

	if fb.Visible && ev == EventChange {
		s.notifier.Notify(ctx, Notice{
			Level: NoticeError,
			Title: TitleValidationError,
			Text:  msg,
			Field: name,
		})
	}
	return fb, nil
}

// Value returns the current value of name.
func (s *Session) Value(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name]
}

// Values returns a copy of every current value.
func (s *Session) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyValues(s.values)
}

// Errors returns the messages that are currently visible.
func (s *Session) Errors() validation.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(validation.Errors, len(s.errors))
	for name, msg := range s.errors {
		if s.timing.Shows(s.touched[name]) {
			out[name] = msg
		}
	}
	return out
}

// Error returns the visible message for name, if any.
func (s *Session) Error(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timing.Shows(s.touched[name]) {
		return ""
	}
	return s.errors[name]
}

// Touched reports whether name has been blurred or submitted.
func (s *Session) Touched(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched[name]
}

// Submitting reports whether a submission is in flight.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Reset clears values, messages and touched flags.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.values = s.form.EmptyValues()
	s.errors = make(map[string]string)
	s.touched = make(map[string]bool)
}

// Submit validates every field and, when the form is clean, passes a snapshot
// of the values to the Submitter. A successful submission resets the session.
// Validation failures return ErrInvalid together with the messages; a
// Submitter error is wrapped and leaves the values in place.
func (s *Session) Submit(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return Outcome{}, ErrSubmitInProgress
	}

	errs := s.validator.ValidateForm(s.form, s.values)
	for _, field := range s.form.Fields {
		s.touched[field.Name] = true
	}
	s.errors = make(map[string]string, len(errs))
	for name, msg := range errs {
		s.errors[name] = msg
	}

	if !errs.Valid() {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "form submission rejected", "form", s.form.ID, "errors", len(errs))
		s.notifier.Notify(ctx, Notice{Level: NoticeError, Title: TitleError, Text: TextFixErrors})
		return Outcome{Errors: errs}, ErrInvalid
	}

	s.submitting = true
	snapshot := copyValues(s.values)
	s.mu.Unlock()

	err := s.submitter.Submit(ctx, s.form, snapshot)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "form submission failed", "form", s.form.ID, "error", err)
		s.notifier.Notify(ctx, Notice{Level: NoticeError, Title: TitleError, Text: err.Error()})
		return Outcome{}, fmt.Errorf("form: submit: %w", err)
	}
	s.resetLocked()
	s.mu.Unlock()

	s.notifier.Notify(ctx, Notice{Level: NoticeSuccess, Title: TitleSuccess, Text: TextSubmitted})
	return Outcome{Submitted: true, Values: snapshot}, nil
}

func copyValues(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
