// Package engine provides the install, status and restore operations of layerorder.
//
// The engine is the caller of the reconcile package. For every configured
// target it builds the self entry from the install directory, serializes
// access to the namespace, takes a backup, reconciles, and rolls back from the
// backup when a reconcile fails partway. Targets are independent and are
// processed concurrently.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Install: Puts our layer first in every selected target
//   - Status: Reports the current ordering of every target
//   - Restore/Backups: Lists and rewrites saved snapshots
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/danieljhkim/layerorder/internal/clock"
	"github.com/danieljhkim/layerorder/internal/config"
	"github.com/danieljhkim/layerorder/internal/lock"
	"github.com/danieljhkim/layerorder/internal/persist"
	"github.com/danieljhkim/layerorder/internal/regstore"
	"github.com/danieljhkim/layerorder/internal/state"
)

// Engine orchestrates all layerorder operations.
// It is the main API surface called by the CLI.
type Engine struct {
	opener  regstore.Opener
	backups persist.BackupStore
	states  state.StateStore
	locker  lock.Locker
	clock   clock.Clock
	logger  *zap.Logger
	cfg     *config.Config
}

// New creates a new Engine with the given dependencies. A nil logger disables logging.
func New(
	opener regstore.Opener,
	backups persist.BackupStore,
	states state.StateStore,
	locker lock.Locker,
	clk clock.Clock,
	logger *zap.Logger,
	cfg *config.Config,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		opener:  opener,
		backups: backups,
		states:  states,
		locker:  locker,
		clock:   clk,
		logger:  logger,
		cfg:     cfg,
	}
}

// Config returns the configuration the engine runs with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// session is an open, locked namespace.
type session struct {
	handle regstore.Handle
	unlock lock.Unlock
	logger *zap.Logger
}

// open locks ns and opens its store. The caller must call close.
func (e *Engine) open(ctx context.Context, ns regstore.Namespace, logger *zap.Logger) (*session, error) {
	lockCtx, cancel := context.WithTimeout(ctx, e.cfg.LockTimeout)
	defer cancel()

	unlock, err := e.locker.Lock(lockCtx, ns)
	if err != nil {
		return nil, err
	}
	logger.Debug("namespace locked")

	h, err := e.opener.Open(ns)
	if err != nil {
		if uerr := unlock(); uerr != nil {
			logger.Warn("failed to release namespace lock", zap.Error(uerr))
		}
		return nil, err
	}

	return &session{handle: h, unlock: unlock, logger: logger}, nil
}

func (s *session) close() {
	if err := s.handle.Close(); err != nil {
		s.logger.Warn("failed to close store", zap.Error(err))
	}
	if err := s.unlock(); err != nil {
		s.logger.Warn("failed to release namespace lock", zap.Error(err))
	}
}
