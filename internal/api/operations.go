package api

import (
	"context"

	"github.com/steveyegge/gqld/internal/types"
)

const listClusterQuery = `query ListCluster {
  listCluster(first: 100) {
    edges { node { id alias name pingUrl } }
  }
}`

const createProjectMutation = `mutation CreateProject($input: createProjectInput!) {
  createProject(input: $input) {
    node {
      id alias name endpoint consoleUrl playgroundUrl
      version { id bundle }
    }
  }
}`

const migrateProjectMutation = `mutation MigrateProject($input: migrateProjectInput!) {
  migrateProject(input: $input) {
    node { id endpoint name version { id bundle } }
    changes { type description }
    errors { message }
  }
}`

// ClusterList is the result of listCluster.
type ClusterList struct {
	Clusters []types.ClusterCandidate
	Errors   []string
}

// ListClusters returns the clusters a new project can be placed on.
func (c *Client) ListClusters(ctx context.Context) (*ClusterList, error) {
	var data struct {
		ListCluster *struct {
			Edges []struct {
				Node types.ClusterCandidate `json:"node"`
			} `json:"edges"`
		} `json:"listCluster"`
	}
	messages, err := c.do(ctx, listClusterQuery, nil, &data)
	if err != nil {
		return nil, err
	}
	out := &ClusterList{Errors: messages}
	if data.ListCluster != nil {
		for _, e := range data.ListCluster.Edges {
			out.Clusters = append(out.Clusters, e.Node)
		}
	}
	return out, nil
}

// Version is a deployed project version.
type Version struct {
	ID     string `json:"id"`
	Bundle string `json:"bundle"`
}

// Project is a remote project node.
type Project struct {
	ID            string   `json:"id"`
	Alias         string   `json:"alias"`
	Name          string   `json:"name"`
	Endpoint      string   `json:"endpoint"`
	ConsoleURL    string   `json:"consoleUrl"`
	PlaygroundURL string   `json:"playgroundUrl"`
	Version       *Version `json:"version"`
}

// CreateProjectInput holds the createProject arguments. Empty Alias and
// Account are sent as null.
type CreateProjectInput struct {
	Name    string
	Alias   string
	Cluster string
	Account string
}

// ProjectPayload is the result of createProject.
type ProjectPayload struct {
	Node   *Project
	Errors []string
}

// CreateProject provisions a new remote project.
func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*ProjectPayload, error) {
	input := map[string]any{
		"name":    in.Name,
		"alias":   nullable(in.Alias),
		"cluster": in.Cluster,
		"account": nullable(in.Account),
	}
	var data struct {
		CreateProject *struct {
			Node *Project `json:"node"`
		} `json:"createProject"`
	}
	messages, err := c.do(ctx, createProjectMutation, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}
	out := &ProjectPayload{Errors: messages}
	if data.CreateProject != nil {
		out.Node = data.CreateProject.Node
	}
	return out, nil
}

// ModuleInput declares one module of the local project.
type ModuleInput struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Schema  string `json:"schema,omitempty"`
}

// MigrateInput holds the migrateProject arguments.
type MigrateInput struct {
	Environment string
	Modules     []ModuleInput
	DryRun      bool
}

// Change is a pending modification as reported by the server.
type Change struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// MigratePayload is the result of migrateProject. Errors merges envelope
// errors with the payload's own error list.
type MigratePayload struct {
	Node    *Project
	Changes []Change
	Errors  []string
}

// MigrateProject applies (or, with DryRun, previews) the local module state.
// It returns a nil payload when the server returned no migrateProject field.
func (c *Client) MigrateProject(ctx context.Context, in MigrateInput) (*MigratePayload, error) {
	modules := in.Modules
	if modules == nil {
		modules = []ModuleInput{}
	}
	input := map[string]any{
		"environment": in.Environment,
		"modules":     modules,
		"dryRun":      in.DryRun,
	}
	var data struct {
		MigrateProject *struct {
			Node    *Project   `json:"node"`
			Changes []Change   `json:"changes"`
			Errors  []gqlError `json:"errors"`
		} `json:"migrateProject"`
	}
	messages, err := c.do(ctx, migrateProjectMutation, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}
	if data.MigrateProject == nil {
		if len(messages) > 0 {
			return &MigratePayload{Errors: messages}, nil
		}
		return nil, nil
	}
	out := &MigratePayload{
		Node:    data.MigrateProject.Node,
		Changes: data.MigrateProject.Changes,
		Errors:  messages,
	}
	for _, e := range data.MigrateProject.Errors {
		out.Errors = append(out.Errors, e.Message)
	}
	return out, nil
}

// ProjectStatus previews the changes a migration would apply.
func (c *Client) ProjectStatus(ctx context.Context, environment string, modules []ModuleInput) (*MigratePayload, error) {
	return c.MigrateProject(ctx, MigrateInput{Environment: environment, Modules: modules, DryRun: true})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
