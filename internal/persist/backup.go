package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danieljhkim/layerorder/internal/fsops"
	"github.com/danieljhkim/layerorder/internal/hash"
	"github.com/danieljhkim/layerorder/internal/reconcile"
	"github.com/danieljhkim/layerorder/internal/regstore"
)

// ErrChecksum indicates a backup whose content does not match its checksum.
var ErrChecksum = errors.New("backup checksum mismatch")

// Backup is a saved snapshot of one namespace.
type Backup struct {
	// ID is a UUID assigned when the backup is created
	ID string `json:"id"`

	// Target is the configured target the namespace belongs to
	Target string `json:"target"`

	// Namespace is the store the entries were read from
	Namespace regstore.Namespace `json:"namespace"`

	// TakenAt is when the snapshot was read
	TakenAt time.Time `json:"takenAt"`

	// Reason records the operation that took the backup ("install" or "restore")
	Reason string `json:"reason"`

	// Entries are the namespace contents in enumeration order
	Entries reconcile.Snapshot `json:"entries"`

	// Checksum is the SHA-256 of target, namespace and entries
	Checksum string `json:"checksum"`
}

// checksumDoc is the part of a Backup covered by its checksum.
type checksumDoc struct {
	Target    string             `json:"target"`
	Namespace regstore.Namespace `json:"namespace"`
	Entries   reconcile.Snapshot `json:"entries"`
}

// BackupStore persists backups.
type BackupStore interface {
	// Create builds a new backup with a fresh ID and checksum. It does not save it.
	Create(target string, ns regstore.Namespace, reason string, takenAt time.Time, entries reconcile.Snapshot) (*Backup, error)

	// Save writes b atomically.
	Save(b *Backup) error

	// Load reads the backup with the given ID.
	// Returns os.ErrNotExist if it doesn't exist.
	Load(id string) (*Backup, error)

	// List returns the backups of target, oldest first. An empty target lists all.
	List(target string) ([]*Backup, error)

	// Verify checks b against its checksum.
	Verify(b *Backup) error

	// Prune deletes the oldest backups of target beyond keep and returns their IDs.
	Prune(target string, keep int) ([]string, error)
}

// FileBackupStore implements BackupStore with one JSON file per backup.
type FileBackupStore struct {
	fs     fsops.FS
	dir    string
	hasher hash.Hasher
	newID  func() string
}

// NewFileBackupStore creates a FileBackupStore that writes to dir.
func NewFileBackupStore(fs fsops.FS, dir string, hasher hash.Hasher) *FileBackupStore {
	return &FileBackupStore{
		fs:     fs,
		dir:    dir,
		hasher: hasher,
		newID:  uuid.NewString,
	}
}

// Create builds a new backup with a fresh ID and checksum.
func (s *FileBackupStore) Create(target string, ns regstore.Namespace, reason string, takenAt time.Time, entries reconcile.Snapshot) (*Backup, error) {
	b := &Backup{
		ID:        s.newID(),
		Target:    target,
		Namespace: ns,
		TakenAt:   takenAt,
		Reason:    reason,
		Entries:   append(reconcile.Snapshot{}, entries...),
	}
	sum, err := s.checksum(b)
	if err != nil {
		return nil, err
	}
	b.Checksum = sum
	return b, nil
}

// Save writes b atomically.
func (s *FileBackupStore) Save(b *Backup) error {
	path, err := s.path(b.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}
	if err := s.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Load reads the backup with the given ID.
func (s *FileBackupStore) Load(id string) (*Backup, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup %s: %w", id, err)
	}
	return &b, nil
}

// List returns the backups of target, oldest first. Unreadable files are skipped.
func (s *FileBackupStore) List(target string) ([]*Backup, error) {
	names, err := s.fs.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := []*Backup{}
	for _, name := range names {
		id, ok := strings.CutSuffix(name, ".json")
		if !ok {
			continue
		}
		b, err := s.Load(id)
		if err != nil {
			continue
		}
		if target == "" || b.Target == target {
			backups = append(backups, b)
		}
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].TakenAt.Equal(backups[j].TakenAt) {
			return backups[i].ID < backups[j].ID
		}
		return backups[i].TakenAt.Before(backups[j].TakenAt)
	})
	return backups, nil
}

// Verify checks b against its checksum.
func (s *FileBackupStore) Verify(b *Backup) error {
	sum, err := s.checksum(b)
	if err != nil {
		return err
	}
	if sum != b.Checksum {
		return fmt.Errorf("%w: backup %s", ErrChecksum, b.ID)
	}
	for _, e := range b.Entries {
		if err := e.Value.Validate(); err != nil {
			return fmt.Errorf("backup %s: entry %q: %w", b.ID, e.Name, err)
		}
	}
	return nil
}

// Prune deletes the oldest backups of target beyond keep. keep <= 0 keeps all.
func (s *FileBackupStore) Prune(target string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	backups, err := s.List(target)
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return nil, nil
	}

	var removed []string
	for _, b := range backups[:len(backups)-keep] {
		path, err := s.path(b.ID)
		if err != nil {
			return removed, err
		}
		if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove backup %s: %w", b.ID, err)
		}
		removed = append(removed, b.ID)
	}
	return removed, nil
}

func (s *FileBackupStore) path(id string) (string, error) {
	if err := s.fs.ValidateIdentifier(id); err != nil {
		return "", fmt.Errorf("invalid backup ID: %w", err)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *FileBackupStore) checksum(b *Backup) (string, error) {
	data, err := json.Marshal(checksumDoc{Target: b.Target, Namespace: b.Namespace, Entries: b.Entries})
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup for checksum: %w", err)
	}
	return s.hasher.Sum(data), nil
}
