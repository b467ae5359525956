package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gqld/internal/envstore"
	"github.com/steveyegge/gqld/internal/ui"
)

func newEnvCmd(g *globals) *cobra.Command {
	var dir string
	listEnvironments := func(cmd *cobra.Command, args []string) error {
		abs, err := resolveDir(dir)
		if err != nil {
			return err
		}
		recs, err := envstore.Open(abs).List()
		if err != nil {
			return err
		}
		if g.jsonOutput {
			return outputJSON(cmd.OutOrStdout(), recs)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderEnvironments(recs))
		return nil
	}

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Inspect the environments of a project",
		Args:  cobra.NoArgs,
		RunE:  listEnvironments,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Project directory (default: current directory)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List environments",
		Args:  cobra.NoArgs,
		RunE:  listEnvironments,
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the connection details of an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := resolveDir(dir)
			if err != nil {
				return err
			}
			rec, ok, err := envstore.Open(abs).Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return withHint(fmt.Errorf("environment %q does not exist", args[0]), "run 'gqld env list' to see the known environments")
			}
			if g.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderEnvironment(*rec))
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
