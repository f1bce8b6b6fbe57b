package engine

import (
	"errors"

	"github.com/danieljhkim/layerorder/internal/config"
	"github.com/danieljhkim/layerorder/internal/persist"
)

var (
	// ErrInvalidRequest indicates a request that cannot be executed as given.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnknownTarget indicates a target name that is not configured.
	ErrUnknownTarget = config.ErrUnknownTarget

	// ErrBackupNotFound indicates a backup ID with no saved backup.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrChecksum indicates a backup that was modified after it was saved.
	ErrChecksum = persist.ErrChecksum

	// ErrRollback indicates that restoring the snapshot after a failed reconcile also failed.
	ErrRollback = errors.New("rollback failed")
)
