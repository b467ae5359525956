package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/steveyegge/gqld/internal/api"
	"github.com/steveyegge/gqld/internal/changeset"
	"github.com/steveyegge/gqld/internal/environment"
	"github.com/steveyegge/gqld/internal/prompt"
	"github.com/steveyegge/gqld/internal/types"
	"github.com/steveyegge/gqld/internal/update"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjects struct {
	initialized bool
	cfg         *types.ProjectConfig
	err         error
}

func (f *fakeProjects) IsInitialized(string) bool { return f.initialized }

func (f *fakeProjects) Load(string) (*types.ProjectConfig, error) { return f.cfg, f.err }

type fakeUpdates struct {
	st  *update.Status
	err error
}

func (f *fakeUpdates) Check(context.Context) (*update.Status, error) { return f.st, f.err }

type fakeAuth struct{ err error }

func (f *fakeAuth) Authenticate(context.Context) error { return f.err }

type fakeEnvs struct {
	rec  *types.EnvironmentRecord
	err  error
	name string
	opts environment.Options
}

func (f *fakeEnvs) Resolve(_ context.Context, name string, opts environment.Options) (*types.EnvironmentRecord, error) {
	f.name, f.opts = name, opts
	if f.err != nil {
		return nil, f.err
	}
	rec := *f.rec
	return &rec, nil
}

type fakeStatus struct {
	cs  *changeset.ChangeSet
	err error
}

func (f *fakeStatus) Evaluate(context.Context, *types.ProjectConfig, *types.EnvironmentRecord) (*changeset.ChangeSet, error) {
	return f.cs, f.err
}

type fakeMigrator struct {
	payload *api.MigratePayload
	err     error
	calls   int
	last    api.MigrateInput
}

func (f *fakeMigrator) MigrateProject(_ context.Context, in api.MigrateInput) (*api.MigratePayload, error) {
	f.calls++
	f.last = in
	return f.payload, f.err
}

type fakeVersions struct {
	env, version string
	err          error
}

func (f *fakeVersions) SetVersion(env, version string) error {
	f.env, f.version = env, version
	return f.err
}

func (f *fakeVersions) Path() string { return "/work/blog/.gqldrc" }

type fakeRefresher struct {
	url, dir string
	calls    int
	err      error
}

func (f *fakeRefresher) Apply(_ context.Context, url, dir string) error {
	f.calls++
	f.url, f.dir = url, dir
	return f.err
}

type confirmer struct {
	prompt.Defaults
	answer bool
	err    error
	asked  int
}

func (c *confirmer) Confirm(context.Context, string) (bool, error) {
	c.asked++
	return c.answer, c.err
}

type harness struct {
	projects  *fakeProjects
	updates   *fakeUpdates
	auth      *fakeAuth
	envs      *fakeEnvs
	status    *fakeStatus
	migrator  *fakeMigrator
	versions  *fakeVersions
	refresher *fakeRefresher
	prompter  *confirmer
	events    []Event
	o         *Orchestrator
}

func newHarness() *harness {
	h := &harness{
		projects: &fakeProjects{initialized: true, cfg: &types.ProjectConfig{Dir: ".", Dependencies: map[string]string{"core": "latest"}}},
		updates:  &fakeUpdates{st: &update.Status{Current: "1.2.0"}},
		auth:     &fakeAuth{},
		envs:     &fakeEnvs{rec: &types.EnvironmentRecord{Env: "default", ID: "proj-1", Endpoint: "https://api.example.test/blog", Version: "ver-1"}},
		status: &fakeStatus{cs: &changeset.ChangeSet{
			Changes: []types.ChangeRecord{{Type: types.ChangeAdd, Description: "Type Post"}},
			Summary: types.ChangeSummary{Add: 1},
		}},
		migrator: &fakeMigrator{payload: &api.MigratePayload{Node: &api.Project{
			ID:      "proj-1",
			Version: &api.Version{ID: "ver-2", Bundle: "https://cdn.example.test/ver-2.zip"},
		}}},
		versions:  &fakeVersions{},
		refresher: &fakeRefresher{},
		prompter:  &confirmer{answer: true},
	}
	h.o = &Orchestrator{
		Projects:     h.projects,
		Validate:     func(*types.ProjectConfig) types.ValidationErrors { return nil },
		Updates:      h.updates,
		Auth:         h.auth,
		Environments: h.envs,
		Status:       h.status,
		Modules: func(*types.ProjectConfig) ([]api.ModuleInput, error) {
			return []api.ModuleInput{{Name: "core", Version: "latest"}}, nil
		},
		Migrator:  h.migrator,
		Versions:  h.versions,
		Refresher: h.refresher,
		Prompter:  h.prompter,
	}
	h.o.Subscribe(func(e Event) { h.events = append(h.events, e) })
	return h
}

func (h *harness) run(t *testing.T, opts Options) (*Result, error) {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = "/work/blog"
	}
	return h.o.Run(context.Background(), opts)
}

func (h *harness) lastEvent() Event {
	return h.events[len(h.events)-1]
}

func TestRunSucceeds(t *testing.T) {
	h := newHarness()

	res, err := h.run(t, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.True(t, res.Migrated)
	assert.Equal(t, "ver-2", res.Version)
	assert.Equal(t, "ver-2", res.Environment.Version)

	assert.Equal(t, "default", h.envs.name)
	assert.Equal(t, 1, h.prompter.asked)
	assert.Equal(t, api.MigrateInput{
		Environment: "proj-1",
		Modules:     []api.ModuleInput{{Name: "core", Version: "latest"}},
	}, h.migrator.last)
	assert.Equal(t, "default", h.versions.env)
	assert.Equal(t, "ver-2", h.versions.version)
	assert.Equal(t, "https://cdn.example.test/ver-2.zip", h.refresher.url)
	assert.Equal(t, "/work/blog", h.refresher.dir)

	var stages []Stage
	for _, e := range h.events {
		assert.NotEqual(t, EventFailed, e.Kind)
		if e.Kind == EventFinished {
			stages = append(stages, e.Stage)
		}
		if e.Stage == StageStatus && e.Kind == EventFinished {
			assert.Equal(t, h.status.cs.Changes, e.Changes)
		}
	}
	assert.Equal(t, []Stage{
		StageValidate, StageUpdateCheck, StageAuth, StageEnvironment, StageStatus,
		StageConfirm, StageMigrate, StageVerify, StageRefresh,
	}, stages)
}

func TestRunForwardsOverridesAndSkipsConfirmWhenForced(t *testing.T) {
	h := newHarness()

	opts := Options{
		Env:   types.Explicit("staging"),
		Force: true,
		Name:  types.Explicit("Blog (staging)"),
		Alias: types.Explicit("blog-staging"),
	}
	res, err := h.run(t, opts)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, 0, h.prompter.asked)
	assert.Equal(t, "staging", h.envs.name)
	assert.True(t, h.envs.opts.Force)
	assert.Equal(t, types.Explicit("blog-staging"), h.envs.opts.Alias)
	assert.False(t, h.envs.opts.Account.Set)
	assert.Equal(t, "staging", h.versions.env)
}

func TestRunAborts(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(h *harness)
		reason AbortReason
	}{
		{
			name:   "not initialized",
			setup:  func(h *harness) { h.projects.initialized = false },
			reason: AbortNotInitialized,
		},
		{
			name: "invalid project",
			setup: func(h *harness) {
				h.o.Validate = func(*types.ProjectConfig) types.ValidationErrors {
					return types.ValidationErrors{errors.New(`module "x": empty version`)}
				}
			},
			reason: AbortInvalidProject,
		},
		{
			name:   "outdated",
			setup:  func(h *harness) { h.updates.st = &update.Status{Current: "1.0.0", Minimum: "1.1.0", Outdated: true} },
			reason: AbortOutdated,
		},
		{
			name:   "unauthenticated",
			setup:  func(h *harness) { h.auth.err = errors.New("no token") },
			reason: AbortUnauthenticated,
		},
		{
			name:   "no changes",
			setup:  func(h *harness) { h.status.cs = &changeset.ChangeSet{} },
			reason: AbortNoChanges,
		},
		{
			name:   "declined",
			setup:  func(h *harness) { h.prompter.answer = false },
			reason: AbortDeclined,
		},
		{
			name:   "interrupted confirmation",
			setup:  func(h *harness) { h.prompter.err = prompt.ErrAborted },
			reason: AbortDeclined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			tt.setup(h)

			res, err := h.run(t, Options{})
			require.NoError(t, err)
			assert.Equal(t, OutcomeAborted, res.Outcome)
			assert.Equal(t, tt.reason, res.Reason)
			assert.False(t, res.Migrated)
			assert.Equal(t, 0, h.migrator.calls)
			assert.Equal(t, 0, h.refresher.calls)
		})
	}
}

func TestRunInvalidProjectCarriesProblems(t *testing.T) {
	h := newHarness()
	problems := types.ValidationErrors{errors.New("a"), errors.New("b")}
	h.o.Validate = func(*types.ProjectConfig) types.ValidationErrors { return problems }

	res, err := h.run(t, Options{})
	require.NoError(t, err)
	assert.Equal(t, problems, res.Problems)
	assert.Equal(t, EventFailed, h.lastEvent().Kind)
}

func TestRunNoChangesIsInformational(t *testing.T) {
	h := newHarness()
	h.status.cs = &changeset.ChangeSet{}

	res, err := h.run(t, Options{})
	require.NoError(t, err)
	assert.True(t, res.Reason.Informational())
	assert.Equal(t, Event{Stage: StageStatus, Kind: EventFinished, Detail: AbortNoChanges.String()}, h.lastEvent())
	assert.Equal(t, 0, h.prompter.asked)
}

func TestRunUpdateCheckErrorIsIgnored(t *testing.T) {
	h := newHarness()
	h.updates.err = errors.New("dial tcp: timeout")

	res, err := h.run(t, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Nil(t, res.Update)
}

func TestRunWithoutUpdateChecker(t *testing.T) {
	h := newHarness()
	h.o.Updates = nil

	res, err := h.run(t, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	for _, e := range h.events {
		assert.NotEqual(t, StageUpdateCheck, e.Stage)
	}
}

func TestRunRefreshesWhenVersionRecordFails(t *testing.T) {
	h := newHarness()
	h.versions.err = errors.New("read-only file system")

	res, err := h.run(t, Options{})
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.True(t, res.Migrated)
	assert.Equal(t, "ver-2", res.Version)
	assert.Equal(t, "ver-1", res.Environment.Version, "record keeps the old version when the write failed")
	assert.Equal(t, 1, h.refresher.calls)

	var target *types.IoRefreshError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "record version", target.Op)
	assert.Equal(t, "/work/blog/.gqldrc", target.Path)

	var verify, refresh Event
	for _, e := range h.events {
		switch {
		case e.Stage == StageVerify && e.Kind != EventStarted:
			verify = e
		case e.Stage == StageRefresh && e.Kind != EventStarted:
			refresh = e
		}
	}
	assert.Equal(t, EventFailed, verify.Kind)
	assert.Equal(t, EventFinished, refresh.Kind)
}

func TestRunWithoutPrompterSkipsConfirm(t *testing.T) {
	h := newHarness()
	h.o.Prompter = nil

	res, err := h.run(t, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	for _, e := range h.events {
		assert.NotEqual(t, StageConfirm, e.Stage)
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(h *harness)
		migrated    bool
		refreshes   int
		notDeployed bool
		check       func(t *testing.T, err error)
	}{
		{
			name:  "environment",
			setup: func(h *harness) { h.envs.err = &types.NoCapacityError{Environment: "default"} },
			check: func(t *testing.T, err error) {
				var target *types.NoCapacityError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:  "status",
			setup: func(h *harness) { h.status.err = &types.InvalidStatusError{Environment: "default", Messages: []string{"boom"}} },
			check: func(t *testing.T, err error) {
				var target *types.InvalidStatusError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:  "migration transport",
			setup: func(h *harness) { h.migrator.err = errors.New("connection reset") },
			check: func(t *testing.T, err error) {
				var target *types.MigrationError
				require.ErrorAs(t, err, &target)
				assert.False(t, target.NotDeployed)
				assert.Contains(t, err.Error(), "connection reset")
			},
		},
		{
			name: "migration errors",
			setup: func(h *harness) {
				h.migrator.payload = &api.MigratePayload{
					Node:   &api.Project{Version: &api.Version{ID: "ver-2", Bundle: "https://cdn.example.test/ver-2.zip"}},
					Errors: []string{"module auth: incompatible"},
				}
			},
			check: func(t *testing.T, err error) {
				var target *types.MigrationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, []string{"module auth: incompatible"}, target.Messages)
			},
		},
		{
			name:        "missing bundle",
			setup:       func(h *harness) { h.migrator.payload.Node.Version.Bundle = "" },
			notDeployed: true,
		},
		{
			name:        "missing version",
			setup:       func(h *harness) { h.migrator.payload.Node.Version = nil },
			notDeployed: true,
		},
		{
			name:        "nil payload",
			setup:       func(h *harness) { h.migrator.payload = nil },
			notDeployed: true,
		},
		{
			name: "version record and refresh",
			setup: func(h *harness) {
				h.versions.err = errors.New("read-only file system")
				h.refresher.err = errors.New("no space left on device")
			},
			migrated:  true,
			refreshes: 1,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "record version /work/blog/.gqldrc: read-only file system")
				assert.Contains(t, err.Error(), "refresh /work/blog: no space left on device")
			},
		},
		{
			name:      "refresh",
			setup:     func(h *harness) { h.refresher.err = errors.New("zip: not a valid zip file") },
			migrated:  true,
			refreshes: 1,
			check: func(t *testing.T, err error) {
				var target *types.IoRefreshError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "/work/blog", target.Path)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			tt.setup(h)

			res, err := h.run(t, Options{})
			require.Error(t, err)
			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.Equal(t, tt.migrated, res.Migrated)
			assert.Equal(t, tt.refreshes, h.refresher.calls)
			assert.Equal(t, EventFailed, h.lastEvent().Kind)
			assert.Equal(t, err, h.lastEvent().Err)
			if tt.notDeployed {
				var target *types.MigrationError
				require.ErrorAs(t, err, &target)
				assert.True(t, target.NotDeployed)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}
