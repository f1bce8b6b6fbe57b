package engine

// InstallRequest represents a request to put our layer first.
type InstallRequest struct {
	// InstallDir is the directory holding the layer manifests
	InstallDir string

	// Targets restricts the install to these target names; empty means all
	Targets []string

	// DryRun computes the new ordering without writing
	DryRun bool

	// NoBackup skips the snapshot backup even if the config enables it
	NoBackup bool
}

// StatusRequest represents a request for the current ordering.
type StatusRequest struct {
	// Targets restricts the report to these target names; empty means all
	Targets []string
}

// RestoreRequest represents a request to rewrite a namespace from a backup.
type RestoreRequest struct {
	// BackupID is the backup to restore
	BackupID string

	// DryRun reports what would be written without writing
	DryRun bool
}

// BackupsRequest represents a request to list backups.
type BackupsRequest struct {
	// Target restricts the listing to one target; empty lists all
	Target string
}
