// Command gqld provisions and deploys managed GraphQL projects.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gqld/internal/config"
	"github.com/steveyegge/gqld/internal/debug"
	"github.com/steveyegge/gqld/internal/telemetry"
	"github.com/steveyegge/gqld/internal/ui"
)

var (
	// Version is the current version of gqld (overridden by ldflags at build time)
	Version = "0.3.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
	// Commit is the git revision the binary was built from (optional ldflag)
	Commit = ""
)

// globals holds the persistent flags shared by every command.
type globals struct {
	jsonOutput  bool
	verbose     bool
	quiet       bool
	token       string
	interactive bool
}

func newRootCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:           "gqld",
		Short:         "gqld - deploy managed GraphQL projects",
		Long:          `Provision remote GraphQL projects and keep them in sync with a local project directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Initialize(); err != nil {
				return err
			}
			if cmd.Flags().Changed("token") {
				config.Set(config.KeyToken, g.token)
			}
			if cmd.Flags().Changed("json") {
				config.Set(config.KeyJSON, g.jsonOutput)
			}
			g.jsonOutput = config.GetBool(config.KeyJSON)
			debug.SetVerbose(g.verbose)
			debug.SetQuiet(g.quiet || g.jsonOutput)
			ui.ApplyColorMode(g.jsonOutput)

			if err := telemetry.Init(cmd.Context(), "gqld", Version); err != nil {
				debug.Logf("telemetry disabled: %v\n", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			telemetry.Shutdown(ctx)
		},
	}

	root.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose/debug output")
	root.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "Suppress non-essential output (errors only)")
	root.PersistentFlags().StringVar(&g.token, "token", "", "Access token (default: $GQLD_TOKEN or the stored login)")

	root.AddCommand(
		newDeployCmd(g),
		newInitCmd(g),
		newStatusCmd(g),
		newEnvCmd(g),
		newClustersCmd(g),
		newLoginCmd(g),
		newLogoutCmd(g),
		newVersionCmd(g),
	)
	return root
}

// run executes the CLI and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, interactive bool) int {
	g := &globals{interactive: interactive}
	root := newRootCmd(g)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return exitCode(root.ExecuteContext(ctx), stderr, g.jsonOutput)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout))
	stop()
	os.Exit(code)
}
