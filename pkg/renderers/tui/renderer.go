package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-dynaform/pkg/form"
	"github.com/goliatone/go-dynaform/pkg/model"
	"github.com/goliatone/go-dynaform/pkg/render"
)

// Name is the registry key of the terminal renderer.
const Name = "tui"

const noneOption = "(none)"

// Renderer drives a form.Session through terminal prompts. Rendering blocks
// until the user submits, aborts, or ctx is cancelled, and returns the
// submitted values serialized in the configured format.
type Renderer struct {
	driver         PromptDriver
	outputFormat   OutputFormat
	theme          Theme
	sessionOptions []form.Option
	confirm        bool
	maxAttempts    int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a terminal renderer. Without WithPromptDriver it prompts on
// the process terminal through survey.
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name implements render.Renderer.
func (r *Renderer) Name() string {
	return Name
}

// ContentType implements render.Renderer.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render implements render.Renderer. Values and Timing from options seed the
// session; the remaining options only apply to markup renderers.
func (r *Renderer) Render(ctx context.Context, f model.FormModel, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := &run{renderer: r, form: f}
	sessionOptions := []form.Option{
		form.WithNotifier(form.NotifierFunc(run.notify)),
		form.WithTiming(options.Timing),
		form.WithValues(options.Values),
	}
	run.session = form.New(f, append(sessionOptions, r.sessionOptions...)...)

	outcome, err := run.fill(ctx)
	if err != nil {
		return nil, err
	}
	return r.encode(f, outcome.Values)
}

type run struct {
	renderer *Renderer
	form     model.FormModel
	session  *form.Session

	// Per-field notices are reported next to the prompt instead.
	mu      sync.Mutex
	noticed []form.Notice
}

func (rn *run) notify(_ context.Context, notice form.Notice) {
	if notice.Field != "" {
		return
	}
	rn.mu.Lock()
	rn.noticed = append(rn.noticed, notice)
	rn.mu.Unlock()
}

func (rn *run) flushNotices(ctx context.Context) error {
	rn.mu.Lock()
	pending := rn.noticed
	rn.noticed = nil
	rn.mu.Unlock()

	theme := rn.renderer.theme
	for _, notice := range pending {
		prefix := theme.InfoPrefix
		switch notice.Level {
		case form.NoticeError:
			prefix = theme.ErrorPrefix
		case form.NoticeSuccess:
			prefix = theme.SuccessPrefix
		}
		if err := rn.renderer.driver.Info(ctx, prefix+notice.Title+" "+notice.Text); err != nil {
			return err
		}
	}
	return nil
}

func (rn *run) fill(ctx context.Context) (form.Outcome, error) {
	r := rn.renderer
	if rn.form.Title != "" {
		if err := r.driver.Info(ctx, rn.form.Title); err != nil {
			return form.Outcome{}, err
		}
	}

	for _, field := range rn.form.Fields {
		if err := rn.askUntilValid(ctx, field); err != nil {
			return form.Outcome{}, err
		}
	}

	for attempt := 1; ; attempt++ {
		if r.confirm {
			ok, err := r.driver.Confirm(ctx, "Submit?")
			if err != nil {
				return form.Outcome{}, err
			}
			if !ok {
				return form.Outcome{}, ErrCancelled
			}
		}

		if err := r.driver.Info(ctx, r.theme.InfoPrefix+"Submitting..."); err != nil {
			return form.Outcome{}, err
		}
		outcome, err := rn.session.Submit(ctx)
		if flushErr := rn.flushNotices(ctx); flushErr != nil {
			return form.Outcome{}, flushErr
		}
		if err == nil {
			return outcome, nil
		}
		if !errors.Is(err, form.ErrInvalid) {
			return form.Outcome{}, err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return form.Outcome{}, fmt.Errorf("%w: %d submission attempts", ErrTooManyAttempts, attempt)
		}

		for _, fe := range outcome.Errors.Ordered(rn.form) {
			field, _ := rn.form.Field(fe.Field)
			if err := rn.askUntilValid(ctx, field); err != nil {
				return form.Outcome{}, err
			}
		}
	}
}

// askUntilValid prompts for field, records the answer as a change followed by
// a blur, and repeats while the session reports a visible error.
func (rn *run) askUntilValid(ctx context.Context, field model.Field) error {
	r := rn.renderer
	for attempt := 1; ; attempt++ {
		answer, err := rn.ask(ctx, field)
		if err != nil {
			return err
		}
		if _, err := rn.session.Change(ctx, field.Name, answer); err != nil {
			return err
		}
		fb, err := rn.session.Blur(ctx, field.Name)
		if err != nil {
			return err
		}
		if !fb.Visible {
			return nil
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+fb.Error); err != nil {
			return err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: field %q", ErrTooManyAttempts, field.Name)
		}
	}
}

func (rn *run) ask(ctx context.Context, field model.Field) (string, error) {
	driver := rn.renderer.driver
	message := promptMessage(field)
	help := plainText(field.Description)
	current := rn.session.Value(field.Name)

	if field.Type == model.FieldTypeSelect {
		answer, err := driver.Choose(ctx, ChoicePrompt{
			Message: message,
			Options: selectOptions(field),
			Current: current,
			Help:    help,
		})
		if err != nil || answer == noneOption {
			return "", err
		}
		return answer, nil
	}

	prompt := TextPrompt{
		Kind:    TextLine,
		Message: message,
		Default: current,
		Help:    joinHelp(help, field.Placeholder),
		Check:   rn.inlineValidator(ctx, field),
	}
	switch field.Type {
	case model.FieldTypeTextarea:
		prompt.Kind = TextMultiline
	case model.FieldTypePassword:
		prompt.Kind = TextSecret
		prompt.Default = ""
	}
	return driver.Text(ctx, prompt)
}

// joinHelp appends a placeholder hint to the field's help text.
func joinHelp(help, placeholder string) string {
	switch {
	case placeholder == "":
		return help
	case help == "":
		return "e.g. " + placeholder
	default:
		return help + " (e.g. " + placeholder + ")"
	}
}

// inlineValidator feeds every keystroke-level answer to the session as a
// change event. Only the change timing shows feedback that early.
func (rn *run) inlineValidator(ctx context.Context, field model.Field) func(string) error {
	if rn.session.Timing() != form.OnChange {
		return nil
	}
	return func(answer string) error {
		fb, err := rn.session.Change(ctx, field.Name, answer)
		if err != nil {
			return err
		}
		if fb.Visible {
			return errors.New(fb.Error)
		}
		return nil
	}
}

func promptMessage(field model.Field) string {
	label := field.DisplayLabel()
	if field.Required {
		return label + " *"
	}
	return label
}

func selectOptions(field model.Field) []string {
	options := make([]string, 0, len(field.Options)+1)
	if !field.Required {
		options = append(options, noneOption)
	}
	return append(options, field.Options...)
}

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// plainText strips markup from a description so it reads well in a terminal.
func plainText(description string) string {
	if description == "" {
		return ""
	}
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(description)))
}

func (r *Renderer) encode(f model.FormModel, values map[string]string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		encoded := url.Values{}
		for _, field := range f.Fields {
			encoded.Set(field.Name, values[field.Name])
		}
		return []byte(encoded.Encode()), nil
	case OutputFormatPrettyText:
		var buf bytes.Buffer
		for _, field := range f.Fields {
			fmt.Fprintf(&buf, "%s: %s\n", field.DisplayLabel(), values[field.Name])
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return data, nil
	}
}
