package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "", filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, BackendRegistry, cfg.Backend)
	assert.True(t, cfg.Backup)
	assert.True(t, cfg.RollbackOnError)
	assert.Equal(t, 10, cfg.KeepBackups)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, 30*time.Second, cfg.LockTimeout)
	assert.Equal(t, DefaultTargets(), cfg.Targets)
	assert.Empty(t, cfg.Source)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
backend: file
backup: false
keep_backups: 3
lock_timeout: 5s
targets:
  - name: user
    hive: HKCU
    path: Software\Layers\Implicit
    manifest: my_layer.json
    value: 1
`)

	cfg, err := Load(viper.New(), path, "")
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Backend)
	assert.False(t, cfg.Backup)
	assert.True(t, cfg.RollbackOnError, "unset keys keep their defaults")
	assert.Equal(t, 3, cfg.KeepBackups)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, path, cfg.Source)
	require.Len(t, cfg.Targets, 1)
	assert.Equal(t, Target{Name: "user", Hive: "HKCU", Path: `Software\Layers\Implicit`, Manifest: "my_layer.json", Value: 1}, cfg.Targets[0])
}

func TestLoad_DefaultFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	defaultFile := writeFile(t, dir, "config.yaml", "keep_backups: 4\nparallelism: 1\n")
	t.Setenv("LAYERORDER_BACKEND", "file")
	t.Setenv("LAYERORDER_KEEP_BACKUPS", "7")

	cfg, err := Load(viper.New(), "", defaultFile)
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, 7, cfg.KeepBackups, "environment overrides the file")
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Equal(t, defaultFile, cfg.Source)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(viper.New(), filepath.Join(dir, "missing.yaml"), "")
	assert.Error(t, err, "an explicit config file must exist")

	bad := writeFile(t, dir, "bad.yaml", "backend: floppy\n")
	_, err = Load(viper.New(), bad, "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "x" }},
		{"negative keep", func(c *Config) { c.KeepBackups = -1 }},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }},
		{"zero lock timeout", func(c *Config) { c.LockTimeout = 0 }},
		{"no targets", func(c *Config) { c.Targets = nil }},
		{"empty target name", func(c *Config) { c.Targets[0].Name = "" }},
		{"target name with separator", func(c *Config) { c.Targets[0].Name = "a/b" }},
		{"duplicate target", func(c *Config) { c.Targets[1].Name = c.Targets[0].Name }},
		{"unknown hive", func(c *Config) { c.Targets[0].Hive = "HKCR" }},
		{"shared namespace", func(c *Config) { c.Targets[1].Path = c.Targets[0].Path }},
		{"manifest with path", func(c *Config) { c.Targets[0].Manifest = `C:\x\layer.json` }},
		{"empty manifest", func(c *Config) { c.Targets[0].Manifest = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := Defaults()
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_Select(t *testing.T) {
	cfg := Defaults()

	all, err := cfg.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Targets, all)

	one, err := cfg.Select([]string{"x86"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "x86", one[0].Name)

	ordered, err := cfg.Select([]string{"x86", "x64"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x64", "x86"}, []string{ordered[0].Name, ordered[1].Name}, "configuration order wins")

	_, err = cfg.Select([]string{"arm64"})
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	want := Defaults()
	want.KeepBackups = 5
	want.LockTimeout = 90 * time.Second

	data, err := want.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "lock_timeout: 1m30s")

	path := writeFile(t, t.TempDir(), "config.yaml", string(data))
	got, err := Load(viper.New(), path, "")
	require.NoError(t, err)

	got.Source = ""
	assert.Equal(t, &want, got)
}
