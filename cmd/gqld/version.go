package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commit := resolveCommitHash()
			if g.jsonOutput {
				result := map[string]string{
					"version": Version,
					"build":   Build,
				}
				if commit != "" {
					result["commit"] = commit
				}
				return outputJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "gqld version %s\n", fullVersionString(commit))
			return nil
		},
	}
}

func resolveCommitHash() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// fullVersionString formats "0.3.0 (dev: 280fbcf9a253)" or "0.3.0 (release)".
func fullVersionString(commit string) string {
	if commit != "" {
		return fmt.Sprintf("%s (%s: %s)", Version, Build, shortCommit(commit))
	}
	return fmt.Sprintf("%s (%s)", Version, Build)
}
