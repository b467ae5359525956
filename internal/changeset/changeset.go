// Package changeset loads and classifies the pending changes between the
// local project and a remote environment.
package changeset

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/gqld/internal/api"
	"github.com/steveyegge/gqld/internal/types"
)

// StatusSource previews a migration without applying it.
type StatusSource interface {
	ProjectStatus(ctx context.Context, environment string, modules []api.ModuleInput) (*api.MigratePayload, error)
}

// ModuleLoader turns the project configuration into migration input.
type ModuleLoader func(cfg *types.ProjectConfig) ([]api.ModuleInput, error)

// ChangeSet is the classified result of one status call.
type ChangeSet struct {
	Changes []types.ChangeRecord
	Summary types.ChangeSummary
}

// Evaluator computes change sets.
type Evaluator struct {
	Source  StatusSource
	Modules ModuleLoader
}

// Evaluate requests the remote status for env and classifies it. Any doubt
// about the response yields an InvalidStatusError; callers must not deploy
// on an unknown change set.
func (e *Evaluator) Evaluate(ctx context.Context, cfg *types.ProjectConfig, env *types.EnvironmentRecord) (*ChangeSet, error) {
	invalid := func(err error, messages ...string) error {
		return &types.InvalidStatusError{Environment: env.Env, Messages: messages, Err: err}
	}

	modules, err := e.Modules(cfg)
	if err != nil {
		return nil, invalid(err)
	}
	payload, err := e.Source.ProjectStatus(ctx, env.ID, modules)
	if err != nil {
		return nil, invalid(err)
	}
	if payload == nil {
		return nil, invalid(fmt.Errorf("empty status response"))
	}
	if len(payload.Errors) > 0 {
		return nil, invalid(nil, payload.Errors...)
	}

	changes := make([]types.ChangeRecord, 0, len(payload.Changes))
	for _, c := range payload.Changes {
		t, err := types.ParseChangeType(c.Type)
		if err != nil {
			return nil, invalid(err)
		}
		changes = append(changes, types.ChangeRecord{Type: t, Description: c.Description})
	}
	return &ChangeSet{Changes: changes, Summary: Summarize(changes)}, nil
}

// Summarize counts changes by type.
func Summarize(changes []types.ChangeRecord) types.ChangeSummary {
	var s types.ChangeSummary
	for _, c := range changes {
		switch c.Type {
		case types.ChangeAdd:
			s.Add++
		case types.ChangeUpdate:
			s.Update++
		case types.ChangeRemove:
			s.Remove++
		}
	}
	return s
}

// FormatSummary renders counts as "1 addition, 0 updates, 2 removals".
func FormatSummary(s types.ChangeSummary) string {
	return strings.Join([]string{
		Plural(s.Add, "addition", "additions"),
		Plural(s.Update, "update", "updates"),
		Plural(s.Remove, "removal", "removals"),
	}, ", ")
}

// Plural formats n with the singular or plural noun.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
