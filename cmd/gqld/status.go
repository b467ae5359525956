package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gqld/internal/changeset"
	"github.com/steveyegge/gqld/internal/envstore"
	"github.com/steveyegge/gqld/internal/project"
	"github.com/steveyegge/gqld/internal/types"
	"github.com/steveyegge/gqld/internal/ui"
	"github.com/steveyegge/gqld/internal/validation"
)

func newStatusCmd(g *globals) *cobra.Command {
	var (
		dir     string
		env     string
		noPager bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the changes a deploy would apply",
		Long: `Show the changes a deploy would apply to an existing environment.
Nothing is changed, remotely or locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := resolveDir(dir)
			if err != nil {
				return err
			}
			cfg, err := project.Load(abs)
			if err != nil {
				return withHint(err, "run 'gqld init' to create a project")
			}
			if problems := validation.ValidateProject(cfg); len(problems) > 0 {
				fmt.Fprint(cmd.ErrOrStderr(), ui.RenderProblems(problems))
				return errReported
			}

			rec, ok, err := envstore.Open(abs).Get(env)
			if err != nil {
				return err
			}
			if !ok {
				return withHint(fmt.Errorf("environment %q does not exist", env), "run 'gqld deploy --env "+env+"' to create it")
			}

			sess := newSession(cmd.ErrOrStderr())
			if err := sess.Authenticate(cmd.Context()); err != nil {
				return errReported
			}
			client, err := newClient(sess)
			if err != nil {
				return err
			}
			cs, err := newEvaluator(client).Evaluate(cmd.Context(), cfg, rec)
			if err != nil {
				return err
			}

			if g.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]interface{}{
					"environment": rec,
					"summary":     cs.Summary,
					"changes":     cs.Changes,
				})
			}
			return ui.ToPager(renderStatus(rec, cs), ui.PagerOptions{NoPager: noPager, Out: cmd.OutOrStdout()})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Project directory (default: current directory)")
	cmd.Flags().StringVarP(&env, "env", "e", types.DefaultEnvironment, "Environment to compare against")
	cmd.Flags().BoolVar(&noPager, "no-pager", false, "Do not pipe output through a pager")
	return cmd
}

func renderStatus(rec *types.EnvironmentRecord, cs *changeset.ChangeSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Environment %s %s\n", ui.RenderAccent(rec.Env), ui.RenderMuted("("+rec.Version+")"))
	if cs.Summary.Total() == 0 {
		fmt.Fprintf(&b, "%s Up to date\n", ui.StatusPass.Icon())
		return b.String()
	}
	fmt.Fprintf(&b, "%s\n", changeset.FormatSummary(cs.Summary))
	b.WriteString(ui.RenderChanges(cs.Changes))
	return b.String()
}
