// Package types defines core data structures for the gqld deployment client.
package types

import (
	"fmt"
	"strings"
	"time"
)

// ClusterCandidate is a backend cluster a project can be hosted on.
type ClusterCandidate struct {
	ID      string `json:"id"`
	Alias   string `json:"alias"`
	Name    string `json:"name"`
	PingURL string `json:"pingUrl"`
}

// ClusterTiming pairs a candidate with the measured round-trip of one probe.
// Reachable is false when the probe failed; Latency is meaningless then.
type ClusterTiming struct {
	Cluster   ClusterCandidate
	Latency   time.Duration
	Reachable bool
}

// EnvironmentRecord binds a local project directory to one remote project.
// The environment name is the key in the environments file, so it is not
// serialized with the record itself.
type EnvironmentRecord struct {
	Env           string `yaml:"-" json:"env"`
	Endpoint      string `yaml:"endpoint" json:"endpoint"`
	Version       string `yaml:"version" json:"version"`
	ID            string `yaml:"id" json:"id"`
	Alias         string `yaml:"alias" json:"alias"`
	Name          string `yaml:"name" json:"name"`
	ConsoleURL    string `yaml:"consoleUrl,omitempty" json:"consoleUrl,omitempty"`
	PlaygroundURL string `yaml:"playgroundUrl,omitempty" json:"playgroundUrl,omitempty"`
}

// DefaultEnvironment is the conventional name of the first environment.
const DefaultEnvironment = "default"

// ChangeType classifies a pending modification.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeUpdate ChangeType = "update"
	ChangeRemove ChangeType = "remove"
)

// ParseChangeType maps a wire type tag to a ChangeType, ignoring case.
func ParseChangeType(raw string) (ChangeType, error) {
	switch t := ChangeType(strings.ToLower(strings.TrimSpace(raw))); t {
	case ChangeAdd, ChangeUpdate, ChangeRemove:
		return t, nil
	default:
		return "", fmt.Errorf("unknown change type %q", raw)
	}
}

// ChangeRecord is a single pending modification.
type ChangeRecord struct {
	Type        ChangeType `json:"type"`
	Description string     `json:"description"`
}

// ChangeSummary counts pending changes by type.
type ChangeSummary struct {
	Add    int `json:"add"`
	Update int `json:"update"`
	Remove int `json:"remove"`
}

// Total returns the number of changes of any type.
func (s ChangeSummary) Total() int {
	return s.Add + s.Update + s.Remove
}

// ProjectConfig is the loaded local declarative project.
// Dependencies maps a module name to a registry version or a local path
// (paths start with "./").
type ProjectConfig struct {
	Dir          string            `yaml:"-" toml:"-"`
	Dependencies map[string]string `yaml:"dependencies" toml:"dependencies"`
}

// Setting holds an option value together with whether the user supplied it
// explicitly or it was left at its default.
type Setting[T any] struct {
	Value T
	Set   bool
}

// Explicit returns a Setting marked as user supplied.
func Explicit[T any](v T) Setting[T] {
	return Setting[T]{Value: v, Set: true}
}

// Default returns a Setting carrying a default value.
func Default[T any](v T) Setting[T] {
	return Setting[T]{Value: v}
}
