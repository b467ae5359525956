package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
)

func TestDefaultsInput(t *testing.T) {
	var p Defaults
	got, err := p.Input(context.Background(), Input{Title: "Name", Default: "Blog"})
	if err != nil || got != "Blog" {
		t.Fatalf("Input = %q, %v", got, err)
	}

	tooShort := errors.New("too short")
	_, err = p.Input(context.Background(), Input{
		Title:    "Name",
		Default:  "",
		Validate: func(s string) error { return tooShort },
	})
	if !errors.Is(err, tooShort) {
		t.Errorf("expected validation error to surface, got %v", err)
	}
}

func TestDefaultsConfirm(t *testing.T) {
	ok, err := Defaults{}.Confirm(context.Background(), "Deploy?")
	if err != nil || !ok {
		t.Errorf("Confirm = %v, %v", ok, err)
	}
}

func TestDefaultsSelect(t *testing.T) {
	opts := []Option{{Label: "a", Value: "a"}, {Label: "b", Value: "b"}}
	idx, err := Defaults{}.Select(context.Background(), "Cluster", opts, 1)
	if err != nil || idx != 1 {
		t.Errorf("Select = %d, %v", idx, err)
	}
	if _, err := (Defaults{}).Select(context.Background(), "Cluster", nil, 0); err == nil {
		t.Error("expected error selecting from no options")
	}
}

func TestEchoMode(t *testing.T) {
	if got := echoMode(Input{Title: "Access token", Secret: true}); got != huh.EchoModePassword {
		t.Errorf("secret input echo mode = %v, want password", got)
	}
	if got := echoMode(Input{Title: "Name"}); got != huh.EchoModeNormal {
		t.Errorf("plain input echo mode = %v, want normal", got)
	}
}
