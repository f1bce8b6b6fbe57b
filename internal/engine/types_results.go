package engine

import (
	"time"

	"github.com/danieljhkim/layerorder/internal/reconcile"
	"github.com/danieljhkim/layerorder/internal/regstore"
	"github.com/danieljhkim/layerorder/internal/state"
)

// TargetResult is the outcome of installing one target.
type TargetResult struct {
	// Target is the configured target name
	Target string `json:"target"`

	// Namespace is the store that was reconciled
	Namespace regstore.Namespace `json:"namespace"`

	// SelfName is the value name written first
	SelfName string `json:"selfName"`

	// Before is the snapshot read before writing
	Before reconcile.Snapshot `json:"before"`

	// After is the ordering written (or planned, on a dry run)
	After reconcile.Snapshot `json:"after"`

	// Dropped are the stale self entries removed
	Dropped []string `json:"dropped"`

	// Kept is how many other entries follow the self entry
	Kept int `json:"kept"`

	// Settled reports that the store already had the planned ordering
	Settled bool `json:"settled"`

	// BackupID is the backup taken before writing
	BackupID string `json:"backupId,omitempty"`

	// Pruned are the old backups removed after the install
	Pruned []string `json:"pruned,omitempty"`

	// Applied reports that the new ordering was written
	Applied bool `json:"applied"`

	// RolledBack reports that a failed reconcile was undone from the snapshot
	RolledBack bool `json:"rolledBack"`

	// Err is the failure for this target, if any
	Err error `json:"-"`

	// Error is Err as text
	Error string `json:"error,omitempty"`
}

func (r *TargetResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// InstallResult represents the result of an install.
type InstallResult struct {
	// InstallDir is the directory the self names were built from
	InstallDir string `json:"installDir"`

	// DryRun reports that nothing was written
	DryRun bool `json:"dryRun"`

	// Targets holds one result per selected target, in configuration order
	Targets []TargetResult `json:"targets"`
}

// StatusEntry is one value of a namespace in enumeration order.
type StatusEntry struct {
	// Name is the value name
	Name string `json:"name"`

	// Value is the value rendered as text
	Value string `json:"value"`

	// Match reports that the name refers to our manifest
	Match bool `json:"match"`
}

// TargetStatus is the current ordering of one target.
type TargetStatus struct {
	// Target is the configured target name
	Target string `json:"target"`

	// Namespace is the store that was read
	Namespace regstore.Namespace `json:"namespace"`

	// Manifest is the manifest file name matched against value names
	Manifest string `json:"manifest"`

	// Entries are the values in enumeration order
	Entries []StatusEntry `json:"entries"`

	// Matches is how many entries refer to our manifest
	Matches int `json:"matches"`

	// Settled reports exactly one match, enumerating first
	Settled bool `json:"settled"`

	// LastInstall is the last recorded install, if any
	LastInstall *state.InstallRecord `json:"lastInstall,omitempty"`

	// Err is the failure reading this target, if any
	Err error `json:"-"`

	// Error is Err as text
	Error string `json:"error,omitempty"`
}

// StatusResult represents the current ordering of every selected target.
type StatusResult struct {
	Targets []TargetStatus `json:"targets"`
}

// RestoreResult represents the result of restoring a backup.
type RestoreResult struct {
	// BackupID is the restored backup
	BackupID string `json:"backupId"`

	// Target is the target the backup was taken for
	Target string `json:"target"`

	// Namespace is the store that was rewritten
	Namespace regstore.Namespace `json:"namespace"`

	// Before is what the store held before the restore
	Before reconcile.Snapshot `json:"before"`

	// After is the backed-up ordering that was written
	After reconcile.Snapshot `json:"after"`

	// SafetyBackupID is the backup of Before taken prior to writing
	SafetyBackupID string `json:"safetyBackupId,omitempty"`

	// DryRun reports that nothing was written
	DryRun bool `json:"dryRun"`

	// Applied reports that the backup was written
	Applied bool `json:"applied"`

	// RolledBack reports that a failed restore was undone from Before
	RolledBack bool `json:"rolledBack"`
}

// BackupInfo describes a saved backup.
type BackupInfo struct {
	ID        string             `json:"id"`
	Target    string             `json:"target"`
	Namespace regstore.Namespace `json:"namespace"`
	TakenAt   time.Time          `json:"takenAt"`
	Reason    string             `json:"reason"`
	Entries   int                `json:"entries"`

	// Verified reports that the checksum matches
	Verified bool `json:"verified"`
}

// BackupsResult represents the result of listing backups.
type BackupsResult struct {
	Backups []BackupInfo `json:"backups"`
}
