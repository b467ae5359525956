package deploy

import "github.com/steveyegge/gqld/internal/types"

// Stage is one step of a deployment run.
type Stage string

const (
	StageValidate    Stage = "validate"
	StageUpdateCheck Stage = "update-check"
	StageAuth        Stage = "authenticate"
	StageEnvironment Stage = "environment"
	StageStatus      Stage = "status"
	StageConfirm     Stage = "confirm"
	StageMigrate     Stage = "migrate"
	StageVerify      Stage = "verify"
	StageRefresh     Stage = "refresh"
)

// Title is the human-readable label of a stage.
func (s Stage) Title() string {
	switch s {
	case StageValidate:
		return "Validating project"
	case StageUpdateCheck:
		return "Checking for updates"
	case StageAuth:
		return "Authenticating"
	case StageEnvironment:
		return "Loading environment"
	case StageStatus:
		return "Loading status"
	case StageConfirm:
		return "Confirming deployment"
	case StageMigrate:
		return "Deploying changes"
	case StageVerify:
		return "Verifying deployment"
	case StageRefresh:
		return "Updating local files"
	}
	return string(s)
}

// EventKind tells whether a stage started, finished or failed.
type EventKind int

const (
	EventStarted EventKind = iota
	EventFinished
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is emitted at every stage transition.
type Event struct {
	Stage  Stage
	Kind   EventKind
	Detail string
	Err    error
	// Changes is set when the status stage finishes with pending changes.
	Changes []types.ChangeRecord
}

// Listener receives events synchronously, in order.
type Listener func(Event)
