// Package prompt asks for generator settings on a terminal.
package prompt

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user aborted input (e.g., Ctrl+C).
var ErrAborted = errors.New("prompt: aborted")

// Question is a free text prompt.
type Question struct {
	Message  string
	Help     string
	Default  string
	Required bool
}

// Driver abstracts the terminal so flows can be tested with scripted answers.
type Driver interface {
	Ask(ctx context.Context, q Question) (string, error)
	Confirm(ctx context.Context, message string, fallback bool) (bool, error)
	// Choose returns the index of the picked option, or -1 when the answer
	// matches none of them.
	Choose(ctx context.Context, message string, options []string, current int) (int, error)
}

// NewSurveyDriver returns a Driver backed by survey prompts on stdin/stdout.
func NewSurveyDriver() Driver {
	return surveyDriver{}
}

type surveyDriver struct{}

func (surveyDriver) Ask(ctx context.Context, q Question) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if q.Required {
		opts = append(opts, survey.WithValidator(notBlank))
	}
	err := ask(ctx, &survey.Input{Message: q.Message, Help: q.Help, Default: q.Default}, &answer, opts...)
	return answer, err
}

func (surveyDriver) Confirm(ctx context.Context, message string, fallback bool) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{Message: message, Default: fallback}, &answer)
	return answer, err
}

func (surveyDriver) Choose(ctx context.Context, message string, options []string, current int) (int, error) {
	sel := &survey.Select{Message: message, Options: options}
	if current >= 0 && current < len(options) {
		sel.Default = options[current]
	}
	var answer string
	if err := ask(ctx, sel, &answer); err != nil {
		return -1, err
	}
	return slices.Index(options, answer), nil
}

func ask(ctx context.Context, p survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return interrupted(survey.AskOne(p, answer, opts...))
}

// interrupted maps survey's Ctrl+C error onto ErrAborted.
func interrupted(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func notBlank(ans any) error {
	if text, _ := ans.(string); strings.TrimSpace(text) == "" {
		return errors.New("a value is required")
	}
	return nil
}
