package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/danieljhkim/layerorder/internal/config"
	"github.com/danieljhkim/layerorder/internal/reconcile"
)

// Status returns the current ordering of every selected target.
func (e *Engine) Status(ctx context.Context, req *StatusRequest) (*StatusResult, error) {
	targets, err := e.cfg.Select(req.Targets)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{Targets: make([]TargetStatus, 0, len(targets))}
	var errs []error
	for _, t := range targets {
		st := e.targetStatus(ctx, t)
		if st.Err != nil {
			errs = append(errs, fmt.Errorf("target %s: %w", t.Name, st.Err))
		}
		result.Targets = append(result.Targets, st)
	}

	return result, errors.Join(errs...)
}

func (e *Engine) targetStatus(ctx context.Context, t config.Target) TargetStatus {
	ns := t.Namespace()
	logger := e.logger.With(zap.String("target", t.Name), zap.Stringer("namespace", ns))

	st := TargetStatus{
		Target:    t.Name,
		Namespace: ns,
		Manifest:  t.Manifest,
		Entries:   []StatusEntry{},
	}

	rec, err := e.states.Load(t.Name)
	switch {
	case err == nil:
		st.LastInstall = rec
	case !os.IsNotExist(err):
		logger.Warn("failed to load install record", zap.Error(err))
	}

	sess, err := e.open(ctx, ns, logger)
	if err != nil {
		st.Err, st.Error = err, err.Error()
		return st
	}
	defer sess.close()

	snap, err := reconcile.Take(sess.handle)
	if err != nil {
		st.Err, st.Error = err, err.Error()
		return st
	}

	match := reconcile.ManifestMatcher(t.Manifest)
	for i, entry := range snap {
		m := match(entry.Name)
		if m {
			st.Matches++
			if i == 0 {
				st.Settled = true
			}
		}
		st.Entries = append(st.Entries, StatusEntry{
			Name:  entry.Name,
			Value: entry.Value.String(),
			Match: m,
		})
	}
	st.Settled = st.Settled && st.Matches == 1

	return st
}
