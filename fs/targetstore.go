package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/codeharvest"
)

// DefaultTargetsFile is the file the target list is kept in when no other
// path is configured.
const DefaultTargetsFile = "data.json"

// Ensure TargetStore implements codeharvest.TargetStore at compile time.
var _ codeharvest.TargetStore = (*TargetStore)(nil)

// TargetStore keeps the target list as a JSON array of {"url","file"}
// records. Saves go through a temporary file that is renamed into place, so
// readers never observe a partially written list.
type TargetStore struct {
	path string
}

// NewTargetStore creates a TargetStore backed by the file at path.
func NewTargetStore(path string) *TargetStore {
	if path == "" {
		path = DefaultTargetsFile
	}
	return &TargetStore{path: path}
}

// Path returns the backing file path.
func (s *TargetStore) Path() string {
	return s.path
}

func (s *TargetStore) tempPath() string {
	return s.path + ".tmp"
}

// SaveTargets replaces the stored list with targets.
func (s *TargetStore) SaveTargets(ctx context.Context, targets []*codeharvest.Target) error {
	if targets == nil {
		targets = []*codeharvest.Target{}
	}

	data, err := json.MarshalIndent(targets, "", "  ")
	if err != nil {
		return codeharvest.WrapError(codeharvest.EINTERNAL, err, "failed to encode targets")
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return codeharvest.WrapError(codeharvest.EFILESYSTEM, err, "failed to create directory for %s", s.path)
		}
	}

	if err := os.WriteFile(s.tempPath(), data, 0644); err != nil {
		return codeharvest.WrapError(codeharvest.EFILESYSTEM, err, "failed to write %s", s.tempPath())
	}

	if err := os.Rename(s.tempPath(), s.path); err != nil {
		_ = os.Remove(s.tempPath())
		return codeharvest.WrapError(codeharvest.EFILESYSTEM, err, "failed to replace %s", s.path)
	}

	return nil
}

// LoadTargets reads the stored list.
func (s *TargetStore) LoadTargets(ctx context.Context) ([]*codeharvest.Target, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, codeharvest.Errorf(codeharvest.ENOTFOUND, "targets file %s not found, run discover first", s.path)
	} else if err != nil {
		return nil, codeharvest.WrapError(codeharvest.EFILESYSTEM, err, "failed to read %s", s.path)
	}

	var targets []*codeharvest.Target
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, codeharvest.WrapError(codeharvest.EPARSE, err, "invalid targets file %s", s.path)
	}
	for i, t := range targets {
		if t == nil {
			return nil, codeharvest.Errorf(codeharvest.EPARSE, "invalid targets file %s: entry %d is null", s.path, i)
		}
	}

	return targets, nil
}
