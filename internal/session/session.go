// Package session stores and retrieves the gqld access token.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "gqld"
	keyringUser    = "access-token"
)

// ErrNotAuthenticated is returned when no token is available.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session resolves the access token. An explicit token (flag, environment
// or config) takes precedence over the OS keyring.
type Session struct {
	Explicit string
	// Out receives the login hint; defaults to stderr.
	Out io.Writer
}

// Token returns the current token or "" when there is none.
func (s *Session) Token() (string, error) {
	if t := strings.TrimSpace(s.Explicit); t != "" {
		return t, nil
	}
	t, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return t, nil
}

// Authenticate ensures a token is available. It prints its own hint when
// the user has to log in.
func (s *Session) Authenticate(_ context.Context) error {
	t, err := s.Token()
	if err != nil {
		return err
	}
	if t == "" {
		out := s.Out
		if out == nil {
			out = os.Stderr
		}
		fmt.Fprintln(out, "You are not logged in. Run 'gqld login --token <token>' or set GQLD_TOKEN.")
		return ErrNotAuthenticated
	}
	return nil
}

// Login stores token in the OS keyring.
func Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// Logout removes the stored token. Logging out twice is not an error.
func Logout() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}
