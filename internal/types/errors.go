package types

import (
	"fmt"
	"strings"
)

// ClusterListError reports that the cluster list could not be obtained.
type ClusterListError struct {
	Messages []string
	Err      error
}

func (e *ClusterListError) Error() string {
	return "listing clusters: " + detail(e.Messages, e.Err)
}

func (e *ClusterListError) Unwrap() error { return e.Err }

// NoCapacityError reports that no cluster is available to host a new project.
type NoCapacityError struct {
	Environment string
}

func (e *NoCapacityError) Error() string {
	return fmt.Sprintf("no cluster available to create environment %q", e.Environment)
}

// ProjectCreationError reports a createProject call that did not yield a project.
type ProjectCreationError struct {
	Name     string
	Alias    string
	Messages []string
	Err      error
}

func (e *ProjectCreationError) Error() string {
	return fmt.Sprintf("creating project %q: %s", e.Name, detail(e.Messages, e.Err))
}

func (e *ProjectCreationError) Unwrap() error { return e.Err }

// InvalidStatusError reports a status response that cannot be trusted.
type InvalidStatusError struct {
	Environment string
	Messages    []string
	Err         error
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("loading status of environment %q: %s", e.Environment, detail(e.Messages, e.Err))
}

func (e *InvalidStatusError) Unwrap() error { return e.Err }

// MigrationError reports a failed migration. NotDeployed is set when the
// server accepted the call but returned no deployed version bundle.
type MigrationError struct {
	Environment string
	Messages    []string
	NotDeployed bool
	Err         error
}

func (e *MigrationError) Error() string {
	if e.NotDeployed {
		return fmt.Sprintf("migrating environment %q: version was not deployed%s", e.Environment, suffix(e.Messages))
	}
	return fmt.Sprintf("migrating environment %q: %s", e.Environment, detail(e.Messages, e.Err))
}

func (e *MigrationError) Unwrap() error { return e.Err }

// IoRefreshError reports a local write that failed after the remote side
// already changed. Remote and local state may differ until the next deploy.
type IoRefreshError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoRefreshError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoRefreshError) Unwrap() error { return e.Err }

// ValidationErrors is the full list of static project validation failures.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, err := range v {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%d validation error(s): %s", len(v), strings.Join(parts, "; "))
}

func detail(messages []string, err error) string {
	if len(messages) > 0 {
		return strings.Join(messages, "; ")
	}
	if err != nil {
		return err.Error()
	}
	return "unknown error"
}

func suffix(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	return ": " + strings.Join(messages, "; ")
}
