package lock

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/layerorder/internal/hash"
	"github.com/danieljhkim/layerorder/internal/regstore"
)

var implicit = regstore.Namespace{Hive: "HKLM", Path: `SOFTWARE\Khronos\OpenXR\1\ApiLayers\Implicit`}

func TestFileLocker_PathFor(t *testing.T) {
	l := NewFileLocker(t.TempDir(), hash.NewSHA256Hasher())

	lower := regstore.Namespace{Hive: "hklm", Path: `software\khronos\openxr\1\apilayers\implicit`}
	assert.Equal(t, l.PathFor(implicit), l.PathFor(lower), "case must not matter")

	other := regstore.Namespace{Hive: "HKLM", Path: `SOFTWARE\WOW6432Node\Khronos\OpenXR\1\ApiLayers\Implicit`}
	assert.NotEqual(t, l.PathFor(implicit), l.PathFor(other))
}

func TestFileLocker_PathForUsesHasher(t *testing.T) {
	dir := t.TempDir()
	hasher := hash.NewFakeHasher()
	hasher.SetSum(`hklm\software\khronos\openxr\1\apilayers\implicit`, "0123456789abcdef0123456789abcdef")
	l := NewFileLocker(dir, hasher)

	assert.Equal(t, filepath.Join(dir, "0123456789abcdef.lock"), l.PathFor(implicit))

	// Short sums are used whole.
	other := regstore.Namespace{Hive: "HKCU", Path: `SOFTWARE\Layers`}
	assert.Equal(t, filepath.Join(dir, "fakehash.lock"), l.PathFor(other))
}

func TestFileLocker_LockUnlock(t *testing.T) {
	l := NewFileLocker(t.TempDir(), hash.NewSHA256Hasher())

	unlock, err := l.Lock(context.Background(), implicit)
	require.NoError(t, err)

	_, err = os.Stat(l.PathFor(implicit))
	require.NoError(t, err, "lock file should exist while held")

	require.NoError(t, unlock())

	// Re-acquiring after release succeeds immediately.
	unlock, err = l.Lock(context.Background(), implicit)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestFileLocker_Contention(t *testing.T) {
	dir := t.TempDir()
	first := NewFileLocker(dir, hash.NewSHA256Hasher())
	second := NewFileLocker(dir, hash.NewSHA256Hasher())

	unlock, err := first.Lock(context.Background(), implicit)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctx, implicit)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	acquired := make(chan error, 1)
	go func() {
		u, err := second.Lock(context.Background(), implicit)
		if err == nil {
			err = u()
		}
		acquired <- err
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, unlock())

	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
}

func TestFileLocker_IndependentNamespaces(t *testing.T) {
	l := NewFileLocker(t.TempDir(), hash.NewSHA256Hasher())
	other := regstore.Namespace{Hive: "HKCU", Path: `SOFTWARE\Khronos\OpenXR\1\ApiLayers\Implicit`}

	u1, err := l.Lock(context.Background(), implicit)
	require.NoError(t, err)
	defer func() { _ = u1() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	u2, err := l.Lock(ctx, other)
	require.NoError(t, err)
	require.NoError(t, u2())
}
