package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// TextKind selects how a free-text answer is collected.
type TextKind int

const (
	TextLine TextKind = iota
	TextSecret
	TextMultiline
)

// TextPrompt asks for a free-text answer.
type TextPrompt struct {
	Kind    TextKind
	Message string
	// Default prefills the answer. Secret prompts ignore it.
	Default string
	Help    string
	// Check runs on each submitted answer; an error keeps the prompt open.
	Check func(string) error
}

// ChoicePrompt asks for one of Options. Current is preselected when it is
// one of them.
type ChoicePrompt struct {
	Message string
	Options []string
	Current string
	Help    string
}

// PromptDriver is the terminal seen by the renderer. Tests substitute a
// scripted implementation.
type PromptDriver interface {
	Text(ctx context.Context, p TextPrompt) (string, error)
	Choose(ctx context.Context, p ChoicePrompt) (string, error)
	// Confirm asks a yes/no question that defaults to yes.
	Confirm(ctx context.Context, message string) (bool, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyDriver returns the survey-backed driver. Info lines go to out
// (stdout when nil); when out is a terminal file the prompts are drawn there
// too, keeping stdout free for the submitted values.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	d := &surveyDriver{out: out}
	if fw, ok := out.(terminal.FileWriter); ok {
		d.opts = append(d.opts, survey.WithStdio(os.Stdin, fw, fw))
	}
	return d
}

func (d *surveyDriver) Text(ctx context.Context, p TextPrompt) (string, error) {
	var prompt survey.Prompt
	switch p.Kind {
	case TextSecret:
		prompt = &survey.Password{Message: p.Message, Help: p.Help}
	case TextMultiline:
		prompt = &survey.Multiline{Message: p.Message, Help: p.Help, Default: p.Default}
	default:
		prompt = &survey.Input{Message: p.Message, Help: p.Help, Default: p.Default}
	}

	var answer string
	if err := d.ask(ctx, prompt, &answer, p.Check); err != nil {
		return "", err
	}
	return answer, nil
}

func (d *surveyDriver) Choose(ctx context.Context, p ChoicePrompt) (string, error) {
	prompt := &survey.Select{Message: p.Message, Options: p.Options, Help: p.Help}
	if slices.Contains(p.Options, p.Current) {
		prompt.Default = p.Current
	}

	var answer string
	if err := d.ask(ctx, prompt, &answer, nil); err != nil {
		return "", err
	}
	return answer, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, message string) (bool, error) {
	var answer bool
	if err := d.ask(ctx, &survey.Confirm{Message: message, Default: true}, &answer, nil); err != nil {
		return false, err
	}
	return answer, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, answer any, check func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := d.opts
	if check != nil {
		opts = append(slices.Clip(opts), survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return check(s)
		}))
	}
	err := survey.AskOne(prompt, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
