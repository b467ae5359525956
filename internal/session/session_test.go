package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestAuthenticateWithoutToken(t *testing.T) {
	keyring.MockInit()
	var out bytes.Buffer
	s := &Session{Out: &out}

	err := s.Authenticate(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if !strings.Contains(out.String(), "gqld login") {
		t.Errorf("expected login hint, got %q", out.String())
	}
}

func TestLoginLogout(t *testing.T) {
	keyring.MockInit()
	s := &Session{}

	if err := Login("  tok-123 "); err != nil {
		t.Fatal(err)
	}
	tok, err := s.Token()
	if err != nil || tok != "tok-123" {
		t.Fatalf("Token() = %q, %v", tok, err)
	}
	if err := s.Authenticate(context.Background()); err != nil {
		t.Errorf("Authenticate after login: %v", err)
	}

	if err := Logout(); err != nil {
		t.Fatal(err)
	}
	if err := Logout(); err != nil {
		t.Errorf("second logout should be a no-op: %v", err)
	}
	if tok, _ := s.Token(); tok != "" {
		t.Errorf("token after logout = %q", tok)
	}
}

func TestExplicitTokenWins(t *testing.T) {
	keyring.MockInit()
	if err := Login("stored"); err != nil {
		t.Fatal(err)
	}
	s := &Session{Explicit: "from-env"}
	if tok, _ := s.Token(); tok != "from-env" {
		t.Errorf("Token() = %q, want from-env", tok)
	}
}

func TestLoginRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	if err := Login("  "); err == nil {
		t.Error("expected error for empty token")
	}
}
