// Package deploy drives a deployment from local validation to the refreshed
// local project files.
//
// A run is a linear sequence of stages. Expected stops (invalid project,
// outdated client, missing login, nothing to deploy, declined confirmation)
// end the run with OutcomeAborted and a nil error. Failures end it with
// OutcomeFailed and one of the typed errors from package types. The
// orchestrator never prints; it reports through Listeners and the Result.
package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/steveyegge/gqld/internal/api"
	"github.com/steveyegge/gqld/internal/changeset"
	"github.com/steveyegge/gqld/internal/debug"
	"github.com/steveyegge/gqld/internal/environment"
	"github.com/steveyegge/gqld/internal/prompt"
	"github.com/steveyegge/gqld/internal/types"
	"github.com/steveyegge/gqld/internal/update"
)

// ProjectSource reads the local project.
type ProjectSource interface {
	IsInitialized(dir string) bool
	Load(dir string) (*types.ProjectConfig, error)
}

// Validator runs the static project rules.
type Validator func(cfg *types.ProjectConfig) types.ValidationErrors

// UpdateChecker reports whether this client may still deploy.
type UpdateChecker interface {
	Check(ctx context.Context) (*update.Status, error)
}

// Authenticator makes sure a session exists. It prints its own messages.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// EnvironmentResolver returns or provisions the target environment.
type EnvironmentResolver interface {
	Resolve(ctx context.Context, name string, opts environment.Options) (*types.EnvironmentRecord, error)
}

// Evaluator computes the pending change set.
type Evaluator interface {
	Evaluate(ctx context.Context, cfg *types.ProjectConfig, env *types.EnvironmentRecord) (*changeset.ChangeSet, error)
}

// Migrator applies a migration.
type Migrator interface {
	MigrateProject(ctx context.Context, in api.MigrateInput) (*api.MigratePayload, error)
}

// VersionRecorder stores the deployed version of an environment.
type VersionRecorder interface {
	SetVersion(env, version string) error
	// Path names the file the versions are written to.
	Path() string
}

// Refresher writes a deployed bundle into the project directory.
type Refresher interface {
	Apply(ctx context.Context, bundleURL, dir string) error
}

// Options configures one run.
type Options struct {
	Dir     string
	Env     types.Setting[string]
	Force   bool
	Name    types.Setting[string]
	Alias   types.Setting[string]
	Account types.Setting[string]
}

// Orchestrator wires the collaborators of a run.
type Orchestrator struct {
	Projects     ProjectSource
	Validate     Validator
	Updates      UpdateChecker
	Auth         Authenticator
	Environments EnvironmentResolver
	Status       Evaluator
	Modules      changeset.ModuleLoader
	Migrator     Migrator
	Versions     VersionRecorder
	Refresher    Refresher
	// Prompter asks for confirmation. Nil behaves like forced mode.
	Prompter prompt.Prompter

	listeners []Listener
}

// Subscribe registers l for all subsequent events.
func (o *Orchestrator) Subscribe(l Listener) {
	o.listeners = append(o.listeners, l)
}

func (o *Orchestrator) emit(e Event) {
	for _, l := range o.listeners {
		l(e)
	}
}

func (o *Orchestrator) start(s Stage) {
	o.emit(Event{Stage: s, Kind: EventStarted})
}

func (o *Orchestrator) finish(s Stage, detail string) {
	o.emit(Event{Stage: s, Kind: EventFinished, Detail: detail})
}

func (o *Orchestrator) fail(s Stage, err error) {
	o.emit(Event{Stage: s, Kind: EventFailed, Err: err})
}

func envName(opts Options) string {
	if opts.Env.Value == "" {
		return types.DefaultEnvironment
	}
	return opts.Env.Value
}

// Run executes the deployment. The returned error is non-nil exactly when
// the outcome is OutcomeFailed.
//
// Once the migration is verified, the bundle refresh is attempted even if
// the new version could not be recorded locally. Both failures are then
// reported together.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}
	abort := func(s Stage, reason AbortReason) (*Result, error) {
		if reason.Informational() {
			o.finish(s, reason.String())
		} else {
			o.fail(s, errors.New(reason.String()))
		}
		res.Outcome, res.Reason = OutcomeAborted, reason
		return res, nil
	}
	failed := func(s Stage, err error) (*Result, error) {
		o.fail(s, err)
		res.Outcome = OutcomeFailed
		return res, err
	}

	// 1. Validate: no network before the project is known to be sound.
	o.start(StageValidate)
	if !o.Projects.IsInitialized(opts.Dir) {
		return abort(StageValidate, AbortNotInitialized)
	}
	cfg, err := o.Projects.Load(opts.Dir)
	if err != nil {
		return failed(StageValidate, err)
	}
	if problems := o.Validate(cfg); len(problems) > 0 {
		res.Problems = problems
		return abort(StageValidate, AbortInvalidProject)
	}
	o.finish(StageValidate, "")

	// 2. Update check. Failing to reach the manifest never blocks a deploy.
	if o.Updates != nil {
		o.start(StageUpdateCheck)
		st, err := o.Updates.Check(ctx)
		switch {
		case err != nil:
			debug.Logf("update check failed: %v\n", err)
			o.finish(StageUpdateCheck, "skipped")
		case st.Outdated:
			res.Update = st
			return abort(StageUpdateCheck, AbortOutdated)
		default:
			res.Update = st
			detail := ""
			if st.Available {
				detail = fmt.Sprintf("version %s is available", st.Latest)
			}
			o.finish(StageUpdateCheck, detail)
		}
	}

	// 3. Authenticate.
	o.start(StageAuth)
	if err := o.Auth.Authenticate(ctx); err != nil {
		debug.Logf("authentication: %v\n", err)
		return abort(StageAuth, AbortUnauthenticated)
	}
	o.finish(StageAuth, "")

	// 4. Environment.
	name := envName(opts)
	o.start(StageEnvironment)
	env, err := o.Environments.Resolve(ctx, name, environment.Options{
		Force:   opts.Force,
		Name:    opts.Name,
		Alias:   opts.Alias,
		Account: opts.Account,
	})
	if err != nil {
		return failed(StageEnvironment, err)
	}
	res.Environment = env
	o.finish(StageEnvironment, env.Endpoint)

	// 5. Status.
	o.start(StageStatus)
	cs, err := o.Status.Evaluate(ctx, cfg, env)
	if err != nil {
		return failed(StageStatus, err)
	}
	res.Changes = cs
	if cs.Summary.Total() == 0 {
		return abort(StageStatus, AbortNoChanges)
	}
	o.emit(Event{Stage: StageStatus, Kind: EventFinished, Detail: changeset.FormatSummary(cs.Summary), Changes: cs.Changes})

	// 6. Confirm.
	if !opts.Force && o.Prompter != nil {
		o.start(StageConfirm)
		ok, err := o.Prompter.Confirm(ctx, fmt.Sprintf("Deploy %s to environment %q?",
			changeset.Plural(cs.Summary.Total(), "change", "changes"), name))
		if errors.Is(err, prompt.ErrAborted) {
			ok, err = false, nil
		}
		if err != nil {
			return failed(StageConfirm, err)
		}
		if !ok {
			return abort(StageConfirm, AbortDeclined)
		}
		o.finish(StageConfirm, "")
	}

	// 7. Migrate. A response carrying errors is never partially applied.
	o.start(StageMigrate)
	modules, err := o.Modules(cfg)
	if err != nil {
		return failed(StageMigrate, &types.MigrationError{Environment: name, Err: err})
	}
	payload, err := o.Migrator.MigrateProject(ctx, api.MigrateInput{
		Environment: env.ID,
		Modules:     modules,
		DryRun:      false,
	})
	if err != nil {
		return failed(StageMigrate, &types.MigrationError{Environment: name, Err: err})
	}
	if payload != nil && len(payload.Errors) > 0 {
		return failed(StageMigrate, &types.MigrationError{Environment: name, Messages: payload.Errors})
	}
	o.finish(StageMigrate, "")

	// 8. Verify.
	o.start(StageVerify)
	if payload == nil || payload.Node == nil || payload.Node.Version == nil || payload.Node.Version.Bundle == "" {
		return failed(StageVerify, &types.MigrationError{Environment: name, NotDeployed: true})
	}
	version := payload.Node.Version
	res.Migrated = true
	res.Version = version.ID
	var recordErr error
	if err := o.Versions.SetVersion(name, version.ID); err != nil {
		recordErr = &types.IoRefreshError{Op: "record version", Path: o.Versions.Path(), Err: err}
		o.fail(StageVerify, recordErr)
	} else {
		env.Version = version.ID
		o.finish(StageVerify, version.ID)
	}

	// 9. Refresh. The remote side has changed; a local failure is reported
	// but not rolled back.
	o.start(StageRefresh)
	if err := o.Refresher.Apply(ctx, version.Bundle, opts.Dir); err != nil {
		refreshErr := &types.IoRefreshError{Op: "refresh", Path: opts.Dir, Err: err}
		if recordErr != nil {
			return failed(StageRefresh, errors.Join(recordErr, refreshErr))
		}
		return failed(StageRefresh, refreshErr)
	}
	o.finish(StageRefresh, "")
	if recordErr != nil {
		res.Outcome = OutcomeFailed
		return res, recordErr
	}

	res.Outcome = OutcomeSucceeded
	return res, nil
}
