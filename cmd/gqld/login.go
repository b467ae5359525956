package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gqld/internal/debug"
	"github.com/steveyegge/gqld/internal/prompt"
	"github.com/steveyegge/gqld/internal/session"
	"github.com/steveyegge/gqld/internal/ui"
)

func newLoginCmd(g *globals) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token in the OS keyring",
		Long: `Store an access token in the OS keyring.

Without --token the token is read from the terminal, or from the first line
of stdin when stdin is not a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				t, err := readToken(cmd, g)
				if err != nil {
					return err
				}
				token = t
			}
			if err := session.Login(token); err != nil {
				return err
			}
			if !debug.IsQuiet() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in\n", ui.StatusPass.Icon())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Access token to store")
	return cmd
}

func readToken(cmd *cobra.Command, g *globals) (string, error) {
	if g.interactive {
		t, err := prompt.NewTerminal().Input(cmd.Context(), tokenInput())
		if errors.Is(err, prompt.ErrAborted) {
			return "", errReported
		}
		return t, err
	}
	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return "", withHint(fmt.Errorf("reading token from stdin: %w", err), "pass --token")
	}
	return line, nil
}

func tokenInput() prompt.Input {
	return prompt.Input{
		Title:  "Access token",
		Secret: true,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("token is required")
			}
			return nil
		},
	}
}

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Logout(); err != nil {
				return err
			}
			if os.Getenv("GQLD_TOKEN") != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Note: GQLD_TOKEN is still set in the environment")
			}
			if !debug.IsQuiet() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Logged out\n", ui.StatusPass.Icon())
			}
			return nil
		},
	}
}
