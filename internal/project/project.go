// Package project loads the local declarative project configuration.
//
// A project directory is initialized when it contains gqld.yml (or the TOML
// equivalent gqld.toml). The file declares the modules the remote project
// should run:
//
//	dependencies:
//	  core: latest
//	  auth: latest
//	  "@private/blog": ./modules/blog
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/gqld/internal/api"
	"github.com/steveyegge/gqld/internal/types"
	"github.com/steveyegge/gqld/internal/validation"
)

const (
	YAMLFile = "gqld.yml"
	TOMLFile = "gqld.toml"
)

// ErrNotInitialized is returned by Load when dir holds no project file.
var ErrNotInitialized = errors.New("not a gqld project")

// DefaultDependencies are written by WriteSkeleton.
var DefaultDependencies = map[string]string{
	"core":  "latest",
	"auth":  "latest",
	"image": "latest",
}

// ConfigPath returns the project file in dir, preferring YAML. It returns
// "" when neither exists.
func ConfigPath(dir string) string {
	for _, name := range []string{YAMLFile, TOMLFile} {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// IsInitialized reports whether dir contains a project file.
func IsInitialized(dir string) bool {
	return ConfigPath(dir) != ""
}

// Load reads the project file in dir.
func Load(dir string) (*types.ProjectConfig, error) {
	path := ConfigPath(dir)
	if path == "" {
		return nil, fmt.Errorf("%s: %w (run 'gqld init' first)", dir, ErrNotInitialized)
	}
	data, err := os.ReadFile(path) // #nosec G304 - project file inside the project directory
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	cfg := &types.ProjectConfig{}
	if filepath.Base(path) == TOMLFile {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", TOMLFile, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", YAMLFile, err)
	}
	cfg.Dir = dir
	if cfg.Dependencies == nil {
		cfg.Dependencies = map[string]string{}
	}
	return cfg, nil
}

// WriteSkeleton creates gqld.yml with the default modules. It refuses to
// touch an initialized directory.
func WriteSkeleton(dir string) (*types.ProjectConfig, error) {
	if IsInitialized(dir) {
		return nil, fmt.Errorf("%s is already a gqld project", dir)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	cfg := &types.ProjectConfig{Dir: dir, Dependencies: map[string]string{}}
	for k, v := range DefaultDependencies {
		cfg.Dependencies[k] = v
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", YAMLFile, err)
	}
	if err := os.WriteFile(filepath.Join(dir, YAMLFile), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", YAMLFile, err)
	}
	return cfg, nil
}

// ModuleInputs converts the declared dependencies into migration input,
// inlining the schema of local modules. Modules are sorted by name.
func ModuleInputs(cfg *types.ProjectConfig) ([]api.ModuleInput, error) {
	names := make([]string, 0, len(cfg.Dependencies))
	for name := range cfg.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	modules := make([]api.ModuleInput, 0, len(names))
	for _, name := range names {
		value := cfg.Dependencies[name]
		if !validation.IsLocalModule(value) {
			modules = append(modules, api.ModuleInput{Name: name, Version: value})
			continue
		}
		schemaPath := filepath.Join(cfg.Dir, filepath.FromSlash(value), validation.SchemaFile)
		schema, err := os.ReadFile(schemaPath) // #nosec G304 - module path declared by the project
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", name, err)
		}
		modules = append(modules, api.ModuleInput{Name: name, Schema: string(schema)})
	}
	return modules, nil
}

// Files exposes the package functions as a value for callers that take
// the project source as a dependency.
type Files struct{}

func (Files) IsInitialized(dir string) bool { return IsInitialized(dir) }

func (Files) Load(dir string) (*types.ProjectConfig, error) { return Load(dir) }
