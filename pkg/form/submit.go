package form

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-dynaform/pkg/model"
)

// DefaultSubmitDelay is the simulated wait used by sessions that are not
// given a Submitter.
const DefaultSubmitDelay = 2 * time.Second

// Submitter receives validated values.
type Submitter interface {
	Submit(ctx context.Context, form model.FormModel, values map[string]string) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, form model.FormModel, values map[string]string) error

// Submit implements Submitter.
func (fn SubmitterFunc) Submit(ctx context.Context, form model.FormModel, values map[string]string) error {
	return fn(ctx, form, values)
}

// SimulatedSubmitter stands in for a backend: it waits Delay and succeeds.
// Cancelling ctx aborts the wait with the context error.
type SimulatedSubmitter struct {
	Delay  time.Duration
	Logger *slog.Logger
}

// Submit implements Submitter.
func (s SimulatedSubmitter) Submit(ctx context.Context, form model.FormModel, values map[string]string) error {
	delay := s.Delay
	if delay < 0 {
		delay = 0
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "simulated submit started", "form", form.ID, "fields", len(values), "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	logger.InfoContext(ctx, "simulated submit completed", "form", form.ID)
	return nil
}
