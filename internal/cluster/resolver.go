// Package cluster picks the backend cluster that will host a new project.
package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/steveyegge/gqld/internal/api"
	"github.com/steveyegge/gqld/internal/latency"
	"github.com/steveyegge/gqld/internal/prompt"
	"github.com/steveyegge/gqld/internal/types"
)

// ErrNoCluster is returned when the backend offers no cluster at all. The
// caller decides whether that is fatal.
var ErrNoCluster = errors.New("no cluster available")

// Lister fetches the candidate clusters.
type Lister interface {
	ListClusters(ctx context.Context) (*api.ClusterList, error)
}

// Prober measures candidate latencies.
type Prober interface {
	Probe(ctx context.Context, candidates []types.ClusterCandidate) []types.ClusterTiming
}

// Resolver selects a cluster.
type Resolver struct {
	Lister   Lister
	Prober   Prober
	Prompter prompt.Prompter
	// Force selects the lowest-latency cluster without asking.
	Force bool
}

// Resolve lists the clusters and picks one. A single candidate is taken
// without probing; otherwise candidates are ranked by latency and the
// fastest one is chosen or offered as the default.
func (r *Resolver) Resolve(ctx context.Context) (*types.ClusterCandidate, error) {
	list, err := r.Lister.ListClusters(ctx)
	if err != nil {
		return nil, &types.ClusterListError{Err: err}
	}
	if list == nil {
		return nil, &types.ClusterListError{Err: errors.New("empty response")}
	}
	if len(list.Errors) > 0 {
		return nil, &types.ClusterListError{Messages: list.Errors}
	}

	switch len(list.Clusters) {
	case 0:
		return nil, ErrNoCluster
	case 1:
		c := list.Clusters[0]
		return &c, nil
	}

	timings := r.Prober.Probe(ctx, list.Clusters)
	latency.Rank(timings)

	if r.Force || r.Prompter == nil {
		c := timings[0].Cluster
		return &c, nil
	}

	options := make([]prompt.Option, len(timings))
	for i, tm := range timings {
		options[i] = prompt.Option{Label: Label(tm), Value: tm.Cluster.ID}
	}
	idx, err := r.Prompter.Select(ctx, "Select the cluster for your project", options, 0)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(timings) {
		return nil, fmt.Errorf("cluster selection %d out of range", idx)
	}
	c := timings[idx].Cluster
	return &c, nil
}

// Label renders a timing for display, e.g. "US East (us-east) 42ms".
func Label(tm types.ClusterTiming) string {
	if !tm.Reachable {
		return fmt.Sprintf("%s (%s) unreachable", tm.Cluster.Name, tm.Cluster.Alias)
	}
	return fmt.Sprintf("%s (%s) %dms", tm.Cluster.Name, tm.Cluster.Alias, tm.Latency.Milliseconds())
}
