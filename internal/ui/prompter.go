package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/compozy/flowctl/internal/domain"
)

// Option is one selectable choice.
type Option struct {
	Label string
	Value string
}

// Prompter gathers interactive input. Implementations return
// domain.ErrCancelled when the user backs out; callers treat that as a
// normal control path, never as a failure.
type Prompter interface {
	Select(title string, options []Option) (string, error)
	Input(title, placeholder string, validate func(string) error) (string, error)
	Confirm(title string, defaultYes bool) (bool, error)
}

// huhPrompter renders prompts as terminal forms.
type huhPrompter struct{}

// NewPrompter creates the interactive terminal prompter.
func NewPrompter() Prompter {
	return &huhPrompter{}
}

func (p *huhPrompter) Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("nothing to select from")
	}
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.Label, o.Value))
	}
	var value string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Options(opts...).
			Value(&value),
	))
	if err := form.Run(); err != nil {
		return "", cancelOr(err)
	}
	return value, nil
}

func (p *huhPrompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}
	form := huh.NewForm(huh.NewGroup(input))
	if err := form.Run(); err != nil {
		return "", cancelOr(err)
	}
	return value, nil
}

func (p *huhPrompter) Confirm(title string, defaultYes bool) (bool, error) {
	value := defaultYes
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&value),
	))
	if err := form.Run(); err != nil {
		return false, cancelOr(err)
	}
	return value, nil
}

// cancelOr maps a user abort (Esc, ctrl-c) to the cancellation sentinel and
// passes every other form failure through.
func cancelOr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return domain.ErrCancelled
	}
	return fmt.Errorf("prompt failed: %w", err)
}

// nonInteractivePrompter rejects prompts so scripted invocations fail fast
// instead of hanging on a form nobody will answer.
type nonInteractivePrompter struct {
	assumeYes bool
}

// NewNonInteractivePrompter creates a Prompter for scripted runs. Selection
// and input prompts fail with a remedy; confirmations resolve to assumeYes.
func NewNonInteractivePrompter(assumeYes bool) Prompter {
	return &nonInteractivePrompter{assumeYes: assumeYes}
}

func (p *nonInteractivePrompter) Select(title string, _ []Option) (string, error) {
	return "", p.required(title)
}

func (p *nonInteractivePrompter) Input(title, _ string, _ func(string) error) (string, error) {
	return "", p.required(title)
}

func (p *nonInteractivePrompter) Confirm(_ string, _ bool) (bool, error) {
	return p.assumeYes, nil
}

func (p *nonInteractivePrompter) required(title string) error {
	return domain.NewPreconditionFailed("interactive input required: %s", title).
		WithRemedy("pass the value as an argument or drop --non-interactive")
}

// autoConfirmPrompter answers every confirmation with yes while keeping
// selection and input interactive.
type autoConfirmPrompter struct {
	inner Prompter
}

// WithAutoConfirm wraps a Prompter so confirmations are accepted without
// asking, for --yes runs.
func WithAutoConfirm(inner Prompter) Prompter {
	return &autoConfirmPrompter{inner: inner}
}

func (p *autoConfirmPrompter) Select(title string, options []Option) (string, error) {
	return p.inner.Select(title, options)
}

func (p *autoConfirmPrompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	return p.inner.Input(title, placeholder, validate)
}

func (p *autoConfirmPrompter) Confirm(_ string, _ bool) (bool, error) {
	return true, nil
}
