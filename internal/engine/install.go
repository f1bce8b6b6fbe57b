package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/layerorder/internal/config"
	"github.com/danieljhkim/layerorder/internal/reconcile"
	"github.com/danieljhkim/layerorder/internal/regstore"
	"github.com/danieljhkim/layerorder/internal/state"
)

// Install makes our layer the first entry of every selected target.
//
// Every target is attempted even if another one fails. The returned error
// joins the per-target failures; the result is always complete.
func (e *Engine) Install(ctx context.Context, req *InstallRequest) (*InstallResult, error) {
	if strings.TrimSpace(req.InstallDir) == "" {
		return nil, fmt.Errorf("%w: install directory is required", ErrInvalidRequest)
	}

	targets, err := e.cfg.Select(req.Targets)
	if err != nil {
		return nil, err
	}

	result := &InstallResult{
		InstallDir: req.InstallDir,
		DryRun:     req.DryRun,
		Targets:    make([]TargetResult, len(targets)),
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.Parallelism)
	for i, t := range targets {
		g.Go(func() error {
			result.Targets[i] = e.installTarget(ctx, t, req)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range result.Targets {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("target %s: %w", r.Target, r.Err))
		}
	}
	return result, errors.Join(errs...)
}

func (e *Engine) installTarget(ctx context.Context, t config.Target, req *InstallRequest) TargetResult {
	ns := t.Namespace()
	logger := e.logger.With(zap.String("target", t.Name), zap.Stringer("namespace", ns))

	res := TargetResult{
		Target:    t.Name,
		Namespace: ns,
		SelfName:  reconcile.SelfKey(req.InstallDir, t.Manifest),
		Dropped:   []string{},
	}

	if err := ctx.Err(); err != nil {
		res.fail(err)
		return res
	}

	self := reconcile.Self{
		Name:  res.SelfName,
		Value: regstore.DWord(t.Value),
		Match: reconcile.ManifestMatcher(t.Manifest),
	}
	if err := self.Validate(); err != nil {
		res.fail(err)
		return res
	}

	sess, err := e.open(ctx, ns, logger)
	if err != nil {
		logger.Error("failed to open namespace", zap.Error(err))
		res.fail(err)
		return res
	}
	defer sess.close()

	snap, err := reconcile.Take(sess.handle)
	if err != nil {
		logger.Error("failed to read namespace", zap.Error(err))
		res.fail(err)
		return res
	}

	plan := reconcile.BuildPlan(snap, self)
	res.Before = snap
	res.After = plan.Entries()
	res.Dropped = reconcile.Snapshot(plan.Dropped).Names()
	res.Kept = len(plan.Keep)
	res.Settled = plan.Settled(snap)

	logger.Debug("plan built",
		zap.Int("entries", len(snap)),
		zap.Strings("dropped", res.Dropped),
		zap.Bool("settled", res.Settled),
	)

	if req.DryRun {
		return res
	}

	backedUp := e.cfg.Backup && !req.NoBackup
	if backedUp {
		b, err := e.backups.Create(t.Name, ns, "install", e.clock.Now(), snap)
		if err == nil {
			err = e.backups.Save(b)
		}
		if err != nil {
			// Nothing has been written yet; refuse to continue without a backup.
			logger.Error("failed to save backup", zap.Error(err))
			res.fail(fmt.Errorf("failed to save backup: %w", err))
			return res
		}
		res.BackupID = b.ID
	}

	if err := reconcile.Apply(sess.handle, snap, plan); err != nil {
		logger.Error("reconcile failed", zap.Error(err), zap.String("backup", res.BackupID))
		if e.cfg.RollbackOnError {
			if rbErr := rollback(sess.handle, snap); rbErr != nil {
				logger.Error("rollback failed", zap.Error(rbErr))
				err = errors.Join(err, fmt.Errorf("%w: %w", ErrRollback, rbErr))
			} else {
				logger.Info("namespace rolled back to snapshot")
				res.RolledBack = true
			}
		}
		res.fail(err)
		return res
	}
	res.Applied = true

	rec := &state.InstallRecord{
		Target:      t.Name,
		Namespace:   ns,
		SelfName:    self.Name,
		InstallDir:  req.InstallDir,
		Value:       self.Value,
		InstalledAt: e.clock.Now(),
		BackupID:    res.BackupID,
		Dropped:     res.Dropped,
		Kept:        res.Kept,
	}
	if err := e.states.Save(rec); err != nil {
		logger.Warn("failed to save install record", zap.Error(err))
	}

	if backedUp {
		pruned, err := e.backups.Prune(t.Name, e.cfg.KeepBackups)
		if err != nil {
			logger.Warn("failed to prune backups", zap.Error(err))
		}
		res.Pruned = pruned
	}

	logger.Info("layer installed",
		zap.String("self", self.Name),
		zap.Int("kept", res.Kept),
		zap.Int("dropped", len(res.Dropped)),
		zap.String("backup", res.BackupID),
	)
	return res
}

// rollback rewrites st to hold exactly snap, whatever a failed pass left behind.
func rollback(st regstore.Store, snap reconcile.Snapshot) error {
	current, err := reconcile.Take(st)
	if err != nil {
		return err
	}
	return reconcile.Rewrite(st, current, snap)
}
