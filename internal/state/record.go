package state

import (
	"time"

	"github.com/danieljhkim/layerorder/internal/regstore"
)

// InstallRecord describes the last successful install for a target.
type InstallRecord struct {
	// Target is the configured target name
	Target string `json:"target"`

	// Namespace is the store that was reconciled
	Namespace regstore.Namespace `json:"namespace"`

	// SelfName is the value name written first
	SelfName string `json:"selfName"`

	// InstallDir is the directory the self name was built from
	InstallDir string `json:"installDir"`

	// Value is what was written under SelfName
	Value regstore.Value `json:"value"`

	// InstalledAt is when the reconcile finished
	InstalledAt time.Time `json:"installedAt"`

	// BackupID is the backup taken before the reconcile, if any
	BackupID string `json:"backupId,omitempty"`

	// Dropped are the stale self entries that were removed
	Dropped []string `json:"dropped"`

	// Kept is how many other entries were rewritten after the self entry
	Kept int `json:"kept"`
}
