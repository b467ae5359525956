package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gqld/internal/cluster"
	"github.com/steveyegge/gqld/internal/latency"
	"github.com/steveyegge/gqld/internal/types"
	"github.com/steveyegge/gqld/internal/ui"
)

func newClustersCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "List available clusters by measured latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := newSession(cmd.ErrOrStderr())
			client, err := newClient(sess)
			if err != nil {
				return err
			}
			list, err := client.ListClusters(cmd.Context())
			if err != nil {
				return &types.ClusterListError{Err: err}
			}
			if len(list.Errors) > 0 {
				return &types.ClusterListError{Messages: list.Errors}
			}
			if len(list.Clusters) == 0 {
				return cluster.ErrNoCluster
			}

			timings := newProber().Probe(cmd.Context(), list.Clusters)
			latency.Rank(timings)

			if g.jsonOutput {
				type row struct {
					types.ClusterCandidate
					LatencyMS int64 `json:"latencyMs,omitempty"`
					Reachable bool  `json:"reachable"`
				}
				rows := make([]row, 0, len(timings))
				for _, tm := range timings {
					rows = append(rows, row{ClusterCandidate: tm.Cluster, LatencyMS: tm.Latency.Milliseconds(), Reachable: tm.Reachable})
				}
				return outputJSON(cmd.OutOrStdout(), rows)
			}

			var b strings.Builder
			for i, tm := range timings {
				icon := ui.StatusPass.Icon()
				if !tm.Reachable {
					icon = ui.StatusFail.Icon()
				}
				line := cluster.Label(tm)
				if i == 0 && tm.Reachable {
					line += " " + ui.RenderMuted("(suggested)")
				}
				fmt.Fprintf(&b, "%s %s\n", icon, line)
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
}
