// Package prompt abstracts interactive questions so the deployment flow runs
// identically with or without a terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// Input describes a free-text question.
type Input struct {
	Title    string
	Default  string
	Validate func(string) error
	// Secret hides the answer while it is typed.
	Secret bool
}

// Option is one entry of a selection.
type Option struct {
	Label string
	Value string
}

// Prompter asks the user questions.
type Prompter interface {
	Input(ctx context.Context, in Input) (string, error)
	Confirm(ctx context.Context, title string) (bool, error)
	Select(ctx context.Context, title string, options []Option, defaultIndex int) (int, error)
}

// Defaults answers every question with its default and never blocks. It is
// the prompter used in forced (non-interactive) mode.
type Defaults struct{}

func (Defaults) Input(_ context.Context, in Input) (string, error) {
	if in.Validate != nil {
		if err := in.Validate(in.Default); err != nil {
			return "", fmt.Errorf("%s: %w", in.Title, err)
		}
	}
	return in.Default, nil
}

func (Defaults) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

func (Defaults) Select(_ context.Context, title string, options []Option, defaultIndex int) (int, error) {
	if defaultIndex < 0 || defaultIndex >= len(options) {
		return 0, fmt.Errorf("%s: no default among %d options", title, len(options))
	}
	return defaultIndex, nil
}
