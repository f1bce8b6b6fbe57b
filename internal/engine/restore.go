package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/danieljhkim/layerorder/internal/reconcile"
)

// Restore rewrites a namespace to the ordering saved in a backup.
//
// The backup must pass its checksum. Unless backups are disabled, the current
// contents are saved first so a restore can itself be undone.
func (e *Engine) Restore(ctx context.Context, req *RestoreRequest) (*RestoreResult, error) {
	if req.BackupID == "" {
		return nil, fmt.Errorf("%w: backup ID is required", ErrInvalidRequest)
	}

	b, err := e.backups.Load(req.BackupID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, req.BackupID)
		}
		return nil, fmt.Errorf("failed to load backup: %w", err)
	}
	if err := e.backups.Verify(b); err != nil {
		return nil, err
	}
	if err := b.Namespace.Validate(); err != nil {
		return nil, fmt.Errorf("%w: backup %s: %v", ErrInvalidRequest, b.ID, err)
	}

	logger := e.logger.With(
		zap.String("target", b.Target),
		zap.Stringer("namespace", b.Namespace),
		zap.String("backup", b.ID),
	)

	result := &RestoreResult{
		BackupID:  b.ID,
		Target:    b.Target,
		Namespace: b.Namespace,
		After:     b.Entries,
		DryRun:    req.DryRun,
	}

	sess, err := e.open(ctx, b.Namespace, logger)
	if err != nil {
		return nil, err
	}
	defer sess.close()

	current, err := reconcile.Take(sess.handle)
	if err != nil {
		return nil, err
	}
	result.Before = current

	if req.DryRun {
		return result, nil
	}

	if e.cfg.Backup {
		safety, err := e.backups.Create(b.Target, b.Namespace, "restore", e.clock.Now(), current)
		if err == nil {
			err = e.backups.Save(safety)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save backup: %w", err)
		}
		result.SafetyBackupID = safety.ID
	}

	if err := reconcile.Rewrite(sess.handle, current, b.Entries); err != nil {
		logger.Error("restore failed", zap.Error(err))
		if e.cfg.RollbackOnError {
			if rbErr := rollback(sess.handle, current); rbErr != nil {
				logger.Error("rollback failed", zap.Error(rbErr))
				err = errors.Join(err, fmt.Errorf("%w: %w", ErrRollback, rbErr))
			} else {
				logger.Info("namespace rolled back to pre-restore state")
				result.RolledBack = true
			}
		}
		return result, err
	}
	result.Applied = true

	// The install record no longer describes the namespace.
	if err := e.states.Delete(b.Target); err != nil {
		logger.Warn("failed to clear install record", zap.Error(err))
	}

	logger.Info("backup restored", zap.Int("entries", len(b.Entries)))
	return result, nil
}

// Backups lists saved backups, oldest first.
func (e *Engine) Backups(ctx context.Context, req *BackupsRequest) (*BackupsResult, error) {
	list, err := e.backups.List(req.Target)
	if err != nil {
		return nil, err
	}

	result := &BackupsResult{Backups: make([]BackupInfo, 0, len(list))}
	for _, b := range list {
		result.Backups = append(result.Backups, BackupInfo{
			ID:        b.ID,
			Target:    b.Target,
			Namespace: b.Namespace,
			TakenAt:   b.TakenAt,
			Reason:    b.Reason,
			Entries:   len(b.Entries),
			Verified:  e.backups.Verify(b) == nil,
		})
	}
	return result, nil
}
