package deploy

import (
	"github.com/steveyegge/gqld/internal/changeset"
	"github.com/steveyegge/gqld/internal/types"
	"github.com/steveyegge/gqld/internal/update"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeAborted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeAborted:
		return "aborted"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// AbortReason explains an expected, non-error stop.
type AbortReason int

const (
	NotAborted AbortReason = iota
	AbortNotInitialized
	AbortInvalidProject
	AbortOutdated
	AbortUnauthenticated
	AbortNoChanges
	AbortDeclined
)

func (r AbortReason) String() string {
	switch r {
	case AbortNotInitialized:
		return "project not initialized"
	case AbortInvalidProject:
		return "project has validation errors"
	case AbortOutdated:
		return "client is outdated"
	case AbortUnauthenticated:
		return "not authenticated"
	case AbortNoChanges:
		return "environment is up to date"
	case AbortDeclined:
		return "Deployment aborted"
	}
	return ""
}

// Informational reports whether the abort should still exit successfully.
func (r AbortReason) Informational() bool {
	return r == AbortNoChanges
}

// Result describes a finished run. Fields are filled as far as the run got.
type Result struct {
	Outcome     Outcome
	Reason      AbortReason
	Problems    types.ValidationErrors
	Update      *update.Status
	Environment *types.EnvironmentRecord
	Changes     *changeset.ChangeSet
	Version     string
	// Migrated is true once the remote side accepted the migration, even if
	// the local refresh failed afterwards.
	Migrated bool
}
