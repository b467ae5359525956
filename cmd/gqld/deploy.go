package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gqld/internal/changeset"
	"github.com/steveyegge/gqld/internal/debug"
	"github.com/steveyegge/gqld/internal/deploy"
	"github.com/steveyegge/gqld/internal/telemetry"
	"github.com/steveyegge/gqld/internal/types"
	"github.com/steveyegge/gqld/internal/ui"
)

type deployFlags struct {
	dir     string
	env     string
	force   bool
	account string
	name    string
	alias   string
}

func newDeployCmd(g *globals) *cobra.Command {
	f := &deployFlags{}
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the local project to an environment",
		Long: `Deploy the local project to an environment, creating the remote project
the first time an environment is used.

The pending changes are shown and confirmed before anything is applied.
After a successful deployment the local files generated by the server are
refreshed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd)
			if err != nil {
				return err
			}
			return runDeploy(cmd.Context(), g, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	f.register(cmd)
	return cmd
}

func (f *deployFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "dir", "", "Project directory (default: current directory)")
	cmd.Flags().StringVarP(&f.env, "env", "e", types.DefaultEnvironment, "Target environment")
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Do not prompt; use suggested or supplied values")
	cmd.Flags().StringVar(&f.account, "account", "", "Account for a new project")
	cmd.Flags().StringVar(&f.name, "name", "", "Name for a new project")
	cmd.Flags().StringVar(&f.alias, "alias", "", "Alias for a new project")
}

// options records which values the user actually supplied so suggestions
// only fill in the rest.
func (f *deployFlags) options(cmd *cobra.Command) (deploy.Options, error) {
	dir, err := resolveDir(f.dir)
	if err != nil {
		return deploy.Options{}, err
	}
	setting := func(flag, v string) types.Setting[string] {
		if cmd.Flags().Changed(flag) {
			return types.Explicit(v)
		}
		return types.Default(v)
	}
	return deploy.Options{
		Dir:     dir,
		Env:     setting("env", f.env),
		Force:   f.force,
		Name:    setting("name", f.name),
		Alias:   setting("alias", f.alias),
		Account: setting("account", f.account),
	}, nil
}

// deployReport is the --json rendering of a run.
type deployReport struct {
	Outcome     string                   `json:"outcome"`
	Reason      string                   `json:"reason,omitempty"`
	Error       string                   `json:"error,omitempty"`
	Environment *types.EnvironmentRecord `json:"environment,omitempty"`
	Version     string                   `json:"version,omitempty"`
	Summary     *types.ChangeSummary     `json:"summary,omitempty"`
	Changes     []types.ChangeRecord     `json:"changes,omitempty"`
	Problems    []string                 `json:"problems,omitempty"`
	Migrated    bool                     `json:"migrated"`
}

func newDeployReport(res *deploy.Result, err error) deployReport {
	r := deployReport{
		Outcome:     res.Outcome.String(),
		Environment: res.Environment,
		Version:     res.Version,
		Migrated:    res.Migrated,
	}
	if res.Reason != deploy.NotAborted {
		r.Reason = res.Reason.String()
	}
	if err != nil {
		r.Error = err.Error()
	}
	if res.Changes != nil {
		r.Summary = &res.Changes.Summary
		r.Changes = res.Changes.Changes
	}
	for _, p := range res.Problems {
		r.Problems = append(r.Problems, p.Error())
	}
	return r
}

func runDeploy(ctx context.Context, g *globals, out, errOut io.Writer, opts deploy.Options) error {
	p, err := newPrompter(g, opts.Force)
	if err != nil {
		return err
	}
	sess := newSession(errOut)
	client, err := newClient(sess)
	if err != nil {
		return err
	}

	o := newOrchestrator(client, sess, p, opts.Dir, opts.Force)
	if !debug.IsQuiet() {
		presenter := &ui.Presenter{Out: out, Verbose: g.verbose}
		o.Subscribe(presenter.Handle)
	}
	if telemetry.Enabled() {
		o.Subscribe(telemetry.NewDeployRecorder(ctx).Handle)
	}

	res, runErr := o.Run(ctx, opts)
	if g.jsonOutput {
		if err := outputJSON(out, newDeployReport(res, runErr)); err != nil {
			return err
		}
		if runErr != nil || (res.Outcome == deploy.OutcomeAborted && !res.Reason.Informational()) {
			return errReported
		}
		return nil
	}
	if runErr != nil {
		return runErr
	}
	return reportDeploy(out, errOut, res)
}

func reportDeploy(out, errOut io.Writer, res *deploy.Result) error {
	switch res.Outcome {
	case deploy.OutcomeSucceeded:
		fmt.Fprintf(out, "\n%s Deployed %s to %s\n", ui.StatusPass.Icon(),
			changeset.Plural(res.Changes.Summary.Total(), "change", "changes"), ui.RenderAccent(res.Environment.Env))
		fmt.Fprint(out, ui.RenderEnvironment(*res.Environment))
		return nil
	case deploy.OutcomeAborted:
	default:
		return errReported
	}

	switch res.Reason {
	case deploy.AbortNoChanges:
		fmt.Fprintf(out, "%s Environment %s is up to date\n", ui.StatusInfo.Icon(), res.Environment.Env)
		return nil
	case deploy.AbortNotInitialized:
		return withHint(fmt.Errorf("no gqld project found"), "run 'gqld init' to create one")
	case deploy.AbortInvalidProject:
		fmt.Fprint(errOut, ui.RenderProblems(res.Problems))
		return errReported
	case deploy.AbortOutdated:
		return withHint(
			fmt.Errorf("gqld %s is no longer supported (minimum %s)", res.Update.Current, res.Update.Minimum),
			fmt.Sprintf("upgrade to gqld %s", res.Update.Latest))
	case deploy.AbortUnauthenticated:
		// The session already told the user how to log in.
		return errReported
	case deploy.AbortDeclined:
		fmt.Fprintln(errOut, deploy.AbortDeclined.String())
		return errReported
	}
	return errReported
}
