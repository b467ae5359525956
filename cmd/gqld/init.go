package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gqld/internal/debug"
	"github.com/steveyegge/gqld/internal/project"
	"github.com/steveyegge/gqld/internal/ui"
)

func newInitCmd(g *globals) *cobra.Command {
	f := &deployFlags{}
	var skipDeploy bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gqld project and deploy it",
		Long: `Create gqld.yml with the default modules in a directory that is not yet a
gqld project, then deploy it to a new environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd)
			if err != nil {
				return err
			}
			if !skipDeploy {
				// Fail before touching the directory if we could not prompt later.
				if _, err := newPrompter(g, opts.Force); err != nil {
					return err
				}
			}
			cfg, err := project.WriteSkeleton(opts.Dir)
			if err != nil {
				return withHint(err, "run 'gqld deploy' to deploy the existing project")
			}

			if !debug.IsQuiet() {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s Created %s\n", ui.StatusPass.Icon(), project.ConfigPath(opts.Dir))
				names := make([]string, 0, len(cfg.Dependencies))
				for name := range cfg.Dependencies {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "%s%s %s\n", ui.TreeIndentation, name, ui.RenderMuted(cfg.Dependencies[name]))
				}
			}
			if skipDeploy {
				if g.jsonOutput {
					return outputJSON(cmd.OutOrStdout(), map[string]interface{}{
						"path":         project.ConfigPath(opts.Dir),
						"dependencies": cfg.Dependencies,
					})
				}
				return nil
			}
			return runDeploy(cmd.Context(), g, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&skipDeploy, "no-deploy", false, "Only write the project file")
	return cmd
}
