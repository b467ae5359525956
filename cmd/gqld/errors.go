package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// exitError ends a command with a status after its outcome has already been
// reported to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var errReported = &exitError{code: 1}

// hintError is an error with an actionable suggestion.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }

func (e *hintError) Unwrap() error { return e.err }

func withHint(err error, hint string) error {
	return &hintError{err: err, hint: hint}
}

// exitCode reports err on w and maps it to a process exit status.
func exitCode(err error, w io.Writer, jsonOutput bool) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var he *hintError
	hasHint := errors.As(err, &he)

	if jsonOutput {
		obj := map[string]string{"error": err.Error()}
		if hasHint {
			obj["hint"] = he.hint
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(obj) // Best effort: stderr is the last resort
		return 1
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	if hasHint {
		fmt.Fprintf(w, "Hint: %s\n", he.hint)
	}
	return 1
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
