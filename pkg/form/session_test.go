package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/validation"
)

func sampleForm() model.FormModel {
	return model.FormModel{
		ID: "contact",
		Fields: []model.Field{
			{Name: "fullName", Label: "Full Name", Type: model.FieldTypeText, Required: true},
			{Name: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
			{Name: "age", Label: "Age", Type: model.FieldTypeNumber, Min: model.Float(18)},
		},
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func instantSubmitter(calls *[]map[string]string) Submitter {
	return SubmitterFunc(func(_ context.Context, _ model.FormModel, values map[string]string) error {
		*calls = append(*calls, values)
		return nil
	})
}

func TestSession_OnChangeShowsErrorsImmediately(t *testing.T) {
	notes := &recordingNotifier{}
	s := New(sampleForm(), WithTiming(OnChange), WithNotifier(notes))
	ctx := context.Background()

	fb, err := s.Change(ctx, "email", "nope")
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	want := Feedback{Field: "email", Error: "Please enter a valid email address.", Visible: true}
	if diff := cmp.Diff(want, fb); diff != "" {
		t.Fatalf("feedback mismatch (-want +got):\n%s", diff)
	}
	if got := s.Error("email"); got != want.Error {
		t.Fatalf("visible error = %q", got)
	}

	gotNotices := notes.all()
	if len(gotNotices) != 1 || gotNotices[0].Title != TitleValidationError || gotNotices[0].Field != "email" {
		t.Fatalf("unexpected notices: %+v", gotNotices)
	}

	fb, _ = s.Change(ctx, "email", "ada@example.com")
	if fb.Error != "" || fb.Visible {
		t.Fatalf("expected cleared feedback, got %+v", fb)
	}
	if len(s.Errors()) != 0 {
		t.Fatalf("expected no visible errors, got %v", s.Errors())
	}
}

func TestSession_OnBlurWaitsForTouch(t *testing.T) {
	notes := &recordingNotifier{}
	s := New(sampleForm(), WithTiming(OnBlur), WithNotifier(notes))
	ctx := context.Background()

	fb, _ := s.Change(ctx, "email", "nope")
	if fb.Visible || fb.Error != "" || fb.Touched {
		t.Fatalf("untouched change must stay silent: %+v", fb)
	}
	if len(notes.all()) != 0 {
		t.Fatalf("no notices expected before blur")
	}

	fb, _ = s.Blur(ctx, "email")
	if !fb.Visible || !fb.Touched || fb.Error == "" {
		t.Fatalf("blur should reveal the error: %+v", fb)
	}
	if len(notes.all()) != 0 {
		t.Fatalf("blur does not raise change notices")
	}

	fb, _ = s.Change(ctx, "email", "ada@example.com")
	if fb.Error != "" || fb.Visible {
		t.Fatalf("touched change should revalidate to clean: %+v", fb)
	}

	fb, _ = s.Change(ctx, "email", "still bad")
	if !fb.Visible {
		t.Fatalf("touched change should show new error: %+v", fb)
	}
	if !s.Touched("email") || s.Touched("fullName") {
		t.Fatalf("touched flags wrong")
	}
}

func TestSession_UnknownField(t *testing.T) {
	s := New(sampleForm())
	if _, err := s.Change(context.Background(), "nope", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := s.Blur(context.Background(), "nope"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSession_SubmitInvalid(t *testing.T) {
	var calls []map[string]string
	notes := &recordingNotifier{}
	s := New(sampleForm(), WithTiming(OnBlur), WithSubmitter(instantSubmitter(&calls)), WithNotifier(notes))
	ctx := context.Background()

	_, _ = s.Change(ctx, "age", "12")

	out, err := s.Submit(ctx)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	want := validation.Errors{
		"fullName": "Full Name is required.",
		"email":    "Email is required.",
		"age":      "Age must be at least 18.",
	}
	if diff := cmp.Diff(want, out.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, s.Errors()); diff != "" {
		t.Fatalf("submit must reveal every error under blur timing (-want +got):\n%s", diff)
	}
	if len(calls) != 0 {
		t.Fatalf("submitter must not run for invalid forms")
	}
	if s.Value("age") != "12" {
		t.Fatalf("values must survive a rejected submit")
	}
	notices := notes.all()
	if len(notices) != 1 || notices[0].Text != TextFixErrors {
		t.Fatalf("unexpected notices: %+v", notices)
	}
}

func TestSession_SubmitSuccessResets(t *testing.T) {
	var calls []map[string]string
	notes := &recordingNotifier{}
	s := New(sampleForm(),
		WithSubmitter(instantSubmitter(&calls)),
		WithNotifier(notes),
		WithValues(map[string]string{"fullName": "Ada", "email": "ada@example.com", "ghost": "x"}),
	)

	out, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !out.Submitted {
		t.Fatalf("expected submitted outcome")
	}
	wantValues := map[string]string{"fullName": "Ada", "email": "ada@example.com", "age": ""}
	if diff := cmp.Diff(wantValues, out.Values); diff != "" {
		t.Fatalf("submitted values (-want +got):\n%s", diff)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one submitter call, got %d", len(calls))
	}
	if diff := cmp.Diff(map[string]string{"fullName": "", "email": "", "age": ""}, s.Values()); diff != "" {
		t.Fatalf("values not reset (-want +got):\n%s", diff)
	}
	if s.Touched("email") || s.Submitting() {
		t.Fatalf("session flags not reset")
	}
	notices := notes.all()
	if len(notices) != 1 || notices[0].Level != NoticeSuccess {
		t.Fatalf("expected success notice, got %+v", notices)
	}
}

func TestSession_SubmitterErrorKeepsValues(t *testing.T) {
	boom := errors.New("boom")
	s := New(sampleForm(),
		WithValues(map[string]string{"fullName": "Ada", "email": "ada@example.com"}),
		WithSubmitter(SubmitterFunc(func(context.Context, model.FormModel, map[string]string) error { return boom })),
	)

	_, err := s.Submit(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped submitter error, got %v", err)
	}
	if s.Value("fullName") != "Ada" {
		t.Fatalf("values must survive a failed submit")
	}
	if s.Submitting() {
		t.Fatalf("submitting flag must clear after failure")
	}
}

func TestSession_SubmitInProgress(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := New(sampleForm(),
		WithValues(map[string]string{"fullName": "Ada", "email": "ada@example.com"}),
		WithSubmitter(SubmitterFunc(func(context.Context, model.FormModel, map[string]string) error {
			close(started)
			<-release
			return nil
		})),
	)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	<-started
	if !s.Submitting() {
		t.Fatalf("expected submitting flag during submission")
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrSubmitInProgress) {
		t.Fatalf("expected ErrSubmitInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestSimulatedSubmitter(t *testing.T) {
	form := sampleForm()

	if err := (SimulatedSubmitter{Delay: time.Millisecond}).Submit(context.Background(), form, nil); err != nil {
		t.Fatalf("simulated submit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (SimulatedSubmitter{Delay: time.Hour}).Submit(ctx, form, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSession_Reset(t *testing.T) {
	s := New(sampleForm())
	ctx := context.Background()
	_, _ = s.Change(ctx, "email", "bad")
	_, _ = s.Blur(ctx, "email")

	s.Reset()
	if s.Value("email") != "" || s.Touched("email") || len(s.Errors()) != 0 {
		t.Fatalf("reset left state behind")
	}
}
