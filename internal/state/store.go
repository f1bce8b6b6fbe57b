package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/layerorder/internal/fsops"
)

// StateStore provides an interface for persisting install records.
type StateStore interface {
	// Load loads the install record for the given target.
	// Returns os.ErrNotExist if no install was recorded.
	Load(target string) (*InstallRecord, error)

	// Save saves the install record atomically.
	Save(rec *InstallRecord) error

	// Delete deletes the install record of target.
	Delete(target string) error
}

// FileStateStore implements StateStore using JSON files on disk.
type FileStateStore struct {
	fs  fsops.FS
	dir string
}

// NewFileStateStore creates a new FileStateStore.
func NewFileStateStore(fs fsops.FS, dir string) *FileStateStore {
	return &FileStateStore{fs: fs, dir: dir}
}

func (s *FileStateStore) path(target string) (string, error) {
	if err := s.fs.ValidateIdentifier(target); err != nil {
		return "", fmt.Errorf("invalid target name: %w", err)
	}
	return filepath.Join(s.dir, target+".json"), nil
}

// Load loads the install record for the given target.
func (s *FileStateStore) Load(target string) (*InstallRecord, error) {
	path, err := s.path(target)
	if err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read install record: %w", err)
	}

	var rec InstallRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal install record: %w", err)
	}

	return &rec, nil
}

// Save saves the install record atomically.
func (s *FileStateStore) Save(rec *InstallRecord) error {
	path, err := s.path(rec.Target)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal install record: %w", err)
	}

	if err := s.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write install record: %w", err)
	}

	return nil
}

// Delete deletes the install record of target.
func (s *FileStateStore) Delete(target string) error {
	path, err := s.path(target)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete install record: %w", err)
	}

	return nil
}
