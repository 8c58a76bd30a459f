package cli

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("cli: aborted")

// Prompter abstracts the terminal so the registration flow can be tested
// without a TTY and the survey implementation can be swapped.
type Prompter interface {
	Input(ctx context.Context, message, def string) (string, error)
	Select(ctx context.Context, message string, options []string, def string) (string, error)
	MultiSelect(ctx context.Context, message string, options, defs []string) ([]string, error)
	Confirm(ctx context.Context, message string, def bool) (bool, error)
}

type surveyPrompter struct {
	pageSize int
}

// NewSurveyPrompter returns the interactive Prompter.
func NewSurveyPrompter() Prompter { return &surveyPrompter{pageSize: 12} }

func (p *surveyPrompter) Input(ctx context.Context, message, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out)
	return out, mapErr(err)
}

func (p *surveyPrompter) Select(ctx context.Context, message string, options []string, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := &survey.Select{Message: message, Options: options, PageSize: p.pageSize}
	if def != "" {
		prompt.Default = def
	}
	var out string
	err := survey.AskOne(prompt, &out)
	return out, mapErr(err)
}

func (p *surveyPrompter) MultiSelect(ctx context.Context, message string, options, defs []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompt := &survey.MultiSelect{Message: message, Options: options, PageSize: p.pageSize}
	if len(defs) > 0 {
		prompt.Default = defs
	}
	var out []string
	err := survey.AskOne(prompt, &out)
	return out, mapErr(err)
}

func (p *surveyPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	out := def
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out)
	return out, mapErr(err)
}

func mapErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
