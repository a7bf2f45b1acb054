package form

import (
	"context"
	"log/slog"
)

// NoticeLevel classifies a Notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient, user-facing message such as a toast or alert.
type Notice struct {
	Level NoticeLevel `json:"level"`
	Title string      `json:"title"`
	Text  string      `json:"text"`
	Field string      `json:"field,omitempty"`
}

// Notifier presents notices. Implementations must not block for long; the
// session calls them while handling events.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice Notice)

// Notify implements Notifier.
func (fn NotifierFunc) Notify(ctx context.Context, notice Notice) {
	if fn != nil {
		fn(ctx, notice)
	}
}

// SlogNotifier writes notices to a structured logger.
type SlogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n SlogNotifier) Notify(ctx context.Context, notice Notice) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if notice.Level == NoticeError {
		level = slog.LevelWarn
	}
	attrs := []any{"title", notice.Title, "text", notice.Text}
	if notice.Field != "" {
		attrs = append(attrs, "field", notice.Field)
	}
	logger.Log(ctx, level, "form notice", attrs...)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notice) {}

// Notice texts shared by every front end.
const (
	TitleValidationError = "Validation Error"
	TitleError           = "Error!"
	TitleSuccess         = "Success!"
	TextFixErrors        = "Please fix the errors in the form"
	TextSubmitted        = "Form submitted successfully! 🎉"
)
