package prompt

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// Terminal asks questions with huh forms.
type Terminal struct {
	Theme *huh.Theme
}

// NewTerminal returns a Terminal using the Dracula theme.
func NewTerminal() *Terminal {
	return &Terminal{Theme: huh.ThemeDracula()}
}

func (t *Terminal) Input(ctx context.Context, in Input) (string, error) {
	value := in.Default
	field := huh.NewInput().
		Title(in.Title).
		EchoMode(echoMode(in)).
		Value(&value)
	if in.Validate != nil {
		field = field.Validate(func(s string) error {
			return in.Validate(strings.TrimSpace(s))
		})
	}
	if err := t.run(ctx, field); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func echoMode(in Input) huh.EchoMode {
	if in.Secret {
		return huh.EchoModePassword
	}
	return huh.EchoModeNormal
}

func (t *Terminal) Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if err := t.run(ctx, field); err != nil {
		return false, err
	}
	return ok, nil
}

func (t *Terminal) Select(ctx context.Context, title string, options []Option, defaultIndex int) (int, error) {
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, i)
	}
	choice := defaultIndex
	field := huh.NewSelect[int]().
		Title(title).
		Options(opts...).
		Value(&choice)
	if err := t.run(ctx, field); err != nil {
		return 0, err
	}
	return choice, nil
}

func (t *Terminal) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field))
	if t.Theme != nil {
		form = form.WithTheme(t.Theme)
	}
	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
