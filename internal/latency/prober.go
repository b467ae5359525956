// Package latency measures round-trip times to candidate clusters.
package latency

import (
	"context"
	"net/http"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/gqld/internal/debug"
	"github.com/steveyegge/gqld/internal/types"
)

// DefaultTimeout bounds a single probe when the caller supplies no client.
const DefaultTimeout = 5 * time.Second

// Pinger performs one round-trip to a URL.
type Pinger interface {
	Ping(ctx context.Context, url string) error
}

// HTTPPinger pings with a GET request. Any response counts as a round-trip,
// whatever its status code.
type HTTPPinger struct {
	Client *http.Client
}

func (p HTTPPinger) Ping(ctx context.Context, url string) error {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Prober probes candidates concurrently.
type Prober struct {
	Pinger Pinger
	// now is swapped in tests.
	now func() time.Time
}

// NewProber returns a Prober using p for each probe.
func NewProber(p Pinger) *Prober {
	return &Prober{Pinger: p, now: time.Now}
}

// Probe issues one probe per candidate and waits for all of them to settle.
// A failed probe yields an unreachable timing; it never fails the batch.
func (p *Prober) Probe(ctx context.Context, candidates []types.ClusterCandidate) []types.ClusterTiming {
	now := p.now
	if now == nil {
		now = time.Now
	}
	timings := make([]types.ClusterTiming, len(candidates))

	// The group context is not used: probes report failure through their
	// slot, so no goroutine returns an error that would cancel the others.
	var g errgroup.Group
	for i, c := range candidates {
		g.Go(func() error {
			start := now()
			err := p.Pinger.Ping(ctx, c.PingURL)
			if err != nil {
				debug.Logf("probe %s (%s) unreachable: %v\n", c.Alias, c.PingURL, err)
				timings[i] = types.ClusterTiming{Cluster: c}
				return nil
			}
			timings[i] = types.ClusterTiming{Cluster: c, Latency: now().Sub(start), Reachable: true}
			return nil
		})
	}
	_ = g.Wait()
	return timings
}

// Rank sorts timings in place: reachable ascending by latency, unreachable
// last. Ties keep their relative order.
func Rank(timings []types.ClusterTiming) {
	slices.SortStableFunc(timings, compareTimings)
}

func compareTimings(a, b types.ClusterTiming) int {
	switch {
	case a.Reachable && !b.Reachable:
		return -1
	case !a.Reachable && b.Reachable:
		return 1
	case !a.Reachable && !b.Reachable:
		return 0
	}
	switch {
	case a.Latency < b.Latency:
		return -1
	case a.Latency > b.Latency:
		return 1
	}
	return 0
}
