// Package update checks whether the running client is still supported.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// DefaultURL serves the release manifest.
const DefaultURL = "https://releases.gqld.dev/cli/manifest.json"

const envNoUpdateCheck = "GQLD_NO_UPDATE_CHECK"

// Manifest is the release manifest document.
type Manifest struct {
	Latest  string `json:"latest"`
	Minimum string `json:"minimum"`
}

// Status is the outcome of a check.
type Status struct {
	Current string
	Latest  string
	Minimum string
	// Outdated means the backend no longer accepts this client.
	Outdated bool
	// Available means a newer release exists.
	Available bool
}

// Checker compares the running version against the manifest.
type Checker struct {
	URL     string
	Current string
	Client  *http.Client
}

// NewChecker returns a Checker with a short timeout so a slow manifest host
// never meaningfully delays a command.
func NewChecker(url, current string) *Checker {
	if url == "" {
		url = DefaultURL
	}
	return &Checker{URL: url, Current: current, Client: &http.Client{Timeout: 3 * time.Second}}
}

// Skipped reports whether checks are disabled for this build or environment.
func (c *Checker) Skipped() bool {
	return os.Getenv(envNoUpdateCheck) != "" || !semver.IsValid(canonical(c.Current))
}

// Check fetches the manifest. A skipped check returns a zero Status.
func (c *Checker) Check(ctx context.Context) (*Status, error) {
	st := &Status{Current: c.Current}
	if c.Skipped() {
		return st, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release manifest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch release manifest: status %d", resp.StatusCode)
	}
	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode release manifest: %w", err)
	}
	return Evaluate(c.Current, m), nil
}

// Evaluate compares current against a manifest. Invalid manifest versions
// are ignored.
func Evaluate(current string, m Manifest) *Status {
	st := &Status{Current: current, Latest: m.Latest, Minimum: m.Minimum}
	cur := canonical(current)
	if !semver.IsValid(cur) {
		return st
	}
	if minimum := canonical(m.Minimum); semver.IsValid(minimum) && semver.Compare(cur, minimum) < 0 {
		st.Outdated = true
	}
	if latest := canonical(m.Latest); semver.IsValid(latest) && semver.Compare(cur, latest) < 0 {
		st.Available = true
	}
	return st
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
