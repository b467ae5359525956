// Package envstore persists environment records for a project directory.
//
// Records live in a single YAML file, FileName, at the project root: a
// mapping from environment name to its connection metadata. The store does
// not lock the file; concurrent invocations against the same directory can
// lose writes.
package envstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/gqld/internal/types"
)

// FileName is the environments file inside a project directory.
const FileName = ".gqldrc"

// Store reads and writes the environments file of one project directory.
type Store struct {
	dir string
}

// Open returns a Store for dir. The file does not have to exist yet.
func Open(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the environments file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Get returns a copy of the record for name. ok is false when there is no
// such environment, including when the file does not exist.
func (s *Store) Get(name string) (rec *types.EnvironmentRecord, ok bool, err error) {
	all, err := s.load()
	if err != nil {
		return nil, false, err
	}
	r, ok := all[name]
	if !ok {
		return nil, false, nil
	}
	r.Env = name
	return &r, true, nil
}

// List returns all records sorted by environment name.
func (s *Store) List() ([]types.EnvironmentRecord, error) {
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]types.EnvironmentRecord, 0, len(all))
	for name, r := range all {
		r.Env = name
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Env < out[j].Env })
	return out, nil
}

// Put stores rec under name, replacing any existing record.
func (s *Store) Put(name string, rec types.EnvironmentRecord) error {
	all, err := s.load()
	if err != nil {
		return err
	}
	rec.Env = ""
	all[name] = rec
	return s.save(all)
}

// SetVersion records a newly deployed version for an existing environment.
func (s *Store) SetVersion(name, version string) error {
	all, err := s.load()
	if err != nil {
		return err
	}
	r, ok := all[name]
	if !ok {
		return fmt.Errorf("environment %q not found in %s", name, s.Path())
	}
	r.Version = version
	all[name] = r
	return s.save(all)
}

func (s *Store) load() (map[string]types.EnvironmentRecord, error) {
	data, err := os.ReadFile(s.Path()) // #nosec G304 - path is the project's environments file
	if errors.Is(err, os.ErrNotExist) {
		return map[string]types.EnvironmentRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	all := map[string]types.EnvironmentRecord{}
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if all == nil {
		all = map[string]types.EnvironmentRecord{}
	}
	return all, nil
}

// save writes through a temp file so a crash never leaves a truncated file.
func (s *Store) save(all map[string]types.EnvironmentRecord) error {
	data, err := yaml.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", FileName, err)
	}
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return nil
}
