// Package lock serializes access to a store namespace across processes.
//
// Two installers writing the same registry key at once would interleave their
// delete and set passes, so every reconcile holds an OS-level file lock named
// after the namespace for its whole duration.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/danieljhkim/layerorder/internal/hash"
	"github.com/danieljhkim/layerorder/internal/regstore"
)

// ErrTimeout indicates the lock was not acquired before the context ended.
var ErrTimeout = errors.New("timed out waiting for namespace lock")

// retryDelay is how often a held lock is polled.
const retryDelay = 50 * time.Millisecond

// Unlock releases a held lock.
type Unlock func() error

// Locker acquires exclusive access to a namespace.
type Locker interface {
	// Lock blocks until the namespace is locked or ctx is done.
	Lock(ctx context.Context, ns regstore.Namespace) (Unlock, error)
}

// FileLocker implements Locker with one lock file per namespace in dir.
type FileLocker struct {
	dir    string
	hasher hash.Hasher
}

// NewFileLocker creates a FileLocker that keeps its lock files in dir.
func NewFileLocker(dir string, hasher hash.Hasher) *FileLocker {
	return &FileLocker{dir: dir, hasher: hasher}
}

// PathFor returns the lock file used for ns. Registry paths are case
// insensitive, so namespaces differing only in case share a lock.
func (l *FileLocker) PathFor(ns regstore.Namespace) string {
	sum := l.hasher.Sum([]byte(strings.ToLower(ns.String())))
	if len(sum) > 16 {
		sum = sum[:16]
	}
	return filepath.Join(l.dir, sum+".lock")
}

// Lock acquires the lock file for ns, polling until ctx is done.
func (l *FileLocker) Lock(ctx context.Context, ns regstore.Namespace) (Unlock, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	fl := flock.New(l.PathFor(ns))

	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTimeout, ns, err)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", ns, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, ns)
	}

	return fl.Unlock, nil
}
