// Package validation holds the static checks gqld runs before talking to the
// backend.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/steveyegge/gqld/internal/types"
)

// SchemaFile is the schema document every local module directory must contain.
const SchemaFile = "schema.graphql"

var (
	aliasPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	modulePattern = regexp.MustCompile(`^(@[a-z0-9][a-z0-9-]*/)?[a-z0-9][a-z0-9-]*$`)
)

const (
	minAliasLength = 4
	maxAliasLength = 60
)

// ValidateName checks a project display name.
func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

// ValidateAlias checks a project alias: lowercase letters, digits and single
// inner hyphens, 4 to 60 characters.
func ValidateAlias(alias string) error {
	if len(alias) < minAliasLength || len(alias) > maxAliasLength {
		return fmt.Errorf("alias must be between %d and %d characters", minAliasLength, maxAliasLength)
	}
	if !aliasPattern.MatchString(alias) {
		return fmt.Errorf("invalid alias %q (use lowercase letters, digits and hyphens, e.g. 'my-blog')", alias)
	}
	return nil
}

// IsLocalModule reports whether a dependency value points at a directory.
func IsLocalModule(value string) bool {
	return strings.HasPrefix(value, "./") || strings.HasPrefix(value, "../")
}

// ValidateProject runs every static rule and returns all failures, sorted by
// module name, or nil.
func ValidateProject(cfg *types.ProjectConfig) types.ValidationErrors {
	if cfg == nil {
		return types.ValidationErrors{fmt.Errorf("project configuration is missing")}
	}

	names := make([]string, 0, len(cfg.Dependencies))
	for name := range cfg.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs types.ValidationErrors
	for _, name := range names {
		value := strings.TrimSpace(cfg.Dependencies[name])
		if !modulePattern.MatchString(name) {
			errs = append(errs, fmt.Errorf("module %q: invalid module name", name))
		}
		switch {
		case value == "":
			errs = append(errs, fmt.Errorf("module %q: version or path is required", name))
		case IsLocalModule(value):
			if err := checkModuleDir(cfg.Dir, value); err != nil {
				errs = append(errs, fmt.Errorf("module %q: %w", name, err))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkModuleDir(projectDir, rel string) error {
	dir := filepath.Join(projectDir, filepath.FromSlash(rel))
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("module directory %s not found", rel)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", rel)
	}
	if _, err := os.Stat(filepath.Join(dir, SchemaFile)); err != nil {
		return fmt.Errorf("%s is missing %s", rel, SchemaFile)
	}
	return nil
}
