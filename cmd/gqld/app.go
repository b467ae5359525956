package main

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/steveyegge/gqld/internal/api"
	"github.com/steveyegge/gqld/internal/bundle"
	"github.com/steveyegge/gqld/internal/changeset"
	"github.com/steveyegge/gqld/internal/cluster"
	"github.com/steveyegge/gqld/internal/config"
	"github.com/steveyegge/gqld/internal/deploy"
	"github.com/steveyegge/gqld/internal/environment"
	"github.com/steveyegge/gqld/internal/envstore"
	"github.com/steveyegge/gqld/internal/latency"
	"github.com/steveyegge/gqld/internal/project"
	"github.com/steveyegge/gqld/internal/prompt"
	"github.com/steveyegge/gqld/internal/session"
	"github.com/steveyegge/gqld/internal/update"
	"github.com/steveyegge/gqld/internal/validation"
)

var errNoTerminal = errors.New("cannot prompt without a terminal")

func httpClient(timeoutKey string) *http.Client {
	return &http.Client{
		Timeout:   config.GetDuration(timeoutKey),
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// newSession resolves the token from flag, environment or config before
// falling back to the keyring. Login hints go to w.
func newSession(w io.Writer) *session.Session {
	return &session.Session{Explicit: config.GetString(config.KeyToken), Out: w}
}

// newClient builds an API client carrying the current token, if any.
func newClient(sess *session.Session) (*api.Client, error) {
	token, err := sess.Token()
	if err != nil {
		return nil, err
	}
	return api.New(config.GetString(config.KeyAPIEndpoint),
		api.WithToken(token),
		api.WithHTTPClient(httpClient(config.KeyHTTPTimeout)),
	)
}

func newProber() *latency.Prober {
	return latency.NewProber(latency.HTTPPinger{Client: httpClient(config.KeyProbeTimeout)})
}

// newPrompter returns the prompt provider for a command. Forced runs never
// prompt; interactive runs need a terminal.
func newPrompter(g *globals, force bool) (prompt.Prompter, error) {
	if force {
		return prompt.Defaults{}, nil
	}
	if !g.interactive || g.jsonOutput {
		return nil, withHint(errNoTerminal, "pass --force to use suggested values without prompting")
	}
	return prompt.NewTerminal(), nil
}

func newUpdateChecker() deploy.UpdateChecker {
	if config.GetBool(config.KeyNoUpdateCheck) {
		return nil
	}
	c := update.NewChecker(config.GetString(config.KeyUpdateURL), Version)
	if c.Skipped() {
		return nil
	}
	return c
}

// resolveDir returns an absolute project directory.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

func newEvaluator(client *api.Client) *changeset.Evaluator {
	return &changeset.Evaluator{Source: client, Modules: project.ModuleInputs}
}

// newOrchestrator wires every deployment collaborator for dir.
func newOrchestrator(client *api.Client, sess *session.Session, p prompt.Prompter, dir string, force bool) *deploy.Orchestrator {
	store := envstore.Open(dir)
	clusters := &cluster.Resolver{
		Lister:   client,
		Prober:   newProber(),
		Prompter: p,
		Force:    force,
	}
	o := &deploy.Orchestrator{
		Projects: project.Files{},
		Validate: validation.ValidateProject,
		Auth:     sess,
		Environments: &environment.Resolver{
			Store:      store,
			Clusters:   clusters,
			Creator:    client,
			Prompter:   p,
			ProjectDir: dir,
		},
		Status:    newEvaluator(client),
		Modules:   project.ModuleInputs,
		Migrator:  client,
		Versions:  store,
		Refresher: bundle.NewFetcher(nil),
		Prompter:  p,
		Updates:   newUpdateChecker(),
	}
	return o
}
