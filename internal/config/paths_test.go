package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("returns paths based on home directory", func(t *testing.T) {
		t.Setenv(RootEnv, "")

		paths, err := DefaultPaths()
		require.NoError(t, err)

		assert.Equal(t, ".layerorder", filepath.Base(paths.Root))
		assert.Equal(t, filepath.Join(paths.Root, "backups"), paths.Backups)
		assert.Equal(t, filepath.Join(paths.Root, "state"), paths.State)
		assert.Equal(t, filepath.Join(paths.Root, "locks"), paths.Locks)
		assert.Equal(t, filepath.Join(paths.Root, "stores"), paths.Stores)
		assert.Equal(t, filepath.Join(paths.Root, "config.yaml"), paths.Config)
	})

	t.Run("respects LAYERORDER_ROOT", func(t *testing.T) {
		customRoot := filepath.Join(string(filepath.Separator), "custom", "layerorder")
		t.Setenv(RootEnv, customRoot)

		paths, err := DefaultPaths()
		require.NoError(t, err)

		assert.Equal(t, customRoot, paths.Root)
		assert.Equal(t, filepath.Join(customRoot, "backups"), paths.Backups)
		assert.Equal(t, filepath.Join(customRoot, "config.yaml"), paths.Config)
	})
}

func TestPaths_EnsureDirectories(t *testing.T) {
	paths := PathsAt(filepath.Join(t.TempDir(), "root"))

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.Root, paths.Backups, paths.State, paths.Locks, paths.Stores} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	// Idempotent.
	require.NoError(t, paths.EnsureDirectories())
}
