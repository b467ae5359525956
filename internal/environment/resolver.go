// Package environment resolves a named environment to its remote project,
// provisioning the project on first use.
package environment

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/steveyegge/gqld/internal/api"
	"github.com/steveyegge/gqld/internal/cluster"
	"github.com/steveyegge/gqld/internal/debug"
	"github.com/steveyegge/gqld/internal/prompt"
	"github.com/steveyegge/gqld/internal/types"
	"github.com/steveyegge/gqld/internal/validation"
)

// Store is the subset of the environment store the resolver needs.
type Store interface {
	Get(name string) (*types.EnvironmentRecord, bool, error)
	Put(name string, rec types.EnvironmentRecord) error
	Path() string
}

// ClusterResolver picks a cluster for a new project.
type ClusterResolver interface {
	Resolve(ctx context.Context) (*types.ClusterCandidate, error)
}

// Creator provisions remote projects.
type Creator interface {
	CreateProject(ctx context.Context, in api.CreateProjectInput) (*api.ProjectPayload, error)
}

// Options carries the caller's overrides for a new project.
type Options struct {
	// Force suppresses all prompts.
	Force   bool
	Name    types.Setting[string]
	Alias   types.Setting[string]
	Account types.Setting[string]
}

// Resolver returns existing environments or creates new ones.
type Resolver struct {
	Store    Store
	Clusters ClusterResolver
	Creator  Creator
	Prompter prompt.Prompter
	// ProjectDir seeds the suggested name when there is nothing better.
	ProjectDir string
}

// Resolve returns the record stored under name. When there is none it
// provisions a new remote project and stores its record. Nothing is written
// unless provisioning succeeds.
func (r *Resolver) Resolve(ctx context.Context, name string, opts Options) (*types.EnvironmentRecord, error) {
	rec, ok, err := r.Store.Get(name)
	if err != nil {
		return nil, err
	}
	if ok {
		debug.Logf("environment %q found: %s\n", name, rec.Endpoint)
		return rec, nil
	}

	suggestedName, suggestedAlias, err := r.suggest(name)
	if err != nil {
		return nil, err
	}
	projectName, alias, err := r.ask(ctx, opts, suggestedName, suggestedAlias)
	if err != nil {
		return nil, err
	}

	c, err := r.Clusters.Resolve(ctx)
	if errors.Is(err, cluster.ErrNoCluster) {
		return nil, &types.NoCapacityError{Environment: name}
	}
	if err != nil {
		return nil, err
	}
	debug.Logf("creating project %q on cluster %s\n", projectName, c.Alias)

	payload, err := r.Creator.CreateProject(ctx, api.CreateProjectInput{
		Name:    projectName,
		Alias:   alias,
		Cluster: c.ID,
		Account: opts.Account.Value,
	})
	if err != nil {
		return nil, &types.ProjectCreationError{Name: projectName, Alias: alias, Err: err}
	}
	if payload == nil || payload.Node == nil {
		perr := &types.ProjectCreationError{Name: projectName, Alias: alias}
		if payload != nil {
			perr.Messages = payload.Errors
		}
		return nil, perr
	}

	node := payload.Node
	created := types.EnvironmentRecord{
		Endpoint:      node.Endpoint,
		ID:            node.ID,
		Alias:         node.Alias,
		Name:          node.Name,
		ConsoleURL:    node.ConsoleURL,
		PlaygroundURL: node.PlaygroundURL,
	}
	if node.Version != nil {
		created.Version = node.Version.ID
	}
	if err := r.Store.Put(name, created); err != nil {
		return nil, &types.IoRefreshError{Op: "save environment " + name, Path: r.Store.Path(), Err: err}
	}
	created.Env = name
	return &created, nil
}

// suggest derives a name and alias from the default environment. When there
// is no default environment the name falls back to the directory name and
// no alias is suggested.
func (r *Resolver) suggest(name string) (string, string, error) {
	def, ok, err := r.Store.Get(types.DefaultEnvironment)
	if err != nil {
		return "", "", err
	}
	if ok && name != types.DefaultEnvironment {
		return fmt.Sprintf("%s (%s)", def.Name, name), fmt.Sprintf("%s-%s", def.Alias, name), nil
	}
	if r.ProjectDir == "" {
		return "", "", nil
	}
	base := filepath.Base(filepath.Clean(r.ProjectDir))
	if base == "." || base == string(filepath.Separator) {
		return "", "", nil
	}
	return base, "", nil
}

func (r *Resolver) ask(ctx context.Context, opts Options, suggestedName, suggestedAlias string) (string, string, error) {
	name, alias := suggestedName, suggestedAlias
	if opts.Name.Set {
		name = strings.TrimSpace(opts.Name.Value)
	}
	if opts.Alias.Set {
		alias = strings.TrimSpace(opts.Alias.Value)
	}
	if opts.Force || r.Prompter == nil {
		return name, alias, nil
	}

	var err error
	if !opts.Name.Set {
		name, err = r.Prompter.Input(ctx, prompt.Input{
			Title:    "Name of the project",
			Default:  name,
			Validate: validation.ValidateName,
		})
		if err != nil {
			return "", "", err
		}
	}
	if !opts.Alias.Set {
		alias, err = r.Prompter.Input(ctx, prompt.Input{
			Title:    "Alias (used in the endpoint URL)",
			Default:  alias,
			Validate: validation.ValidateAlias,
		})
		if err != nil {
			return "", "", err
		}
	}
	return name, alias, nil
}
