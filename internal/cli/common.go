package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/danieljhkim/layerorder/internal/clock"
	"github.com/danieljhkim/layerorder/internal/config"
	"github.com/danieljhkim/layerorder/internal/engine"
	"github.com/danieljhkim/layerorder/internal/fsops"
	"github.com/danieljhkim/layerorder/internal/hash"
	"github.com/danieljhkim/layerorder/internal/lock"
	"github.com/danieljhkim/layerorder/internal/persist"
	"github.com/danieljhkim/layerorder/internal/regstore"
	"github.com/danieljhkim/layerorder/internal/state"
)

// loadConfig reads the config file named by --config, or the default one,
// with --backend applied on top.
func loadConfig(paths *config.Paths) (*config.Config, error) {
	v := viper.New()
	if backendFlag != "" {
		v.Set("backend", backendFlag)
	}
	return config.Load(v, configFile, paths.Config)
}

// newOpener returns the store backend selected by cfg.
func newOpener(cfg *config.Config, fs fsops.FS, paths *config.Paths) (regstore.Opener, error) {
	switch cfg.Backend {
	case config.BackendRegistry:
		return regstore.NewRegistryOpener(), nil
	case config.BackendFile:
		return regstore.NewFileOpener(fs, paths.Stores), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Backend)
	}
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() (*engine.Engine, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	cfg, err := loadConfig(paths)
	if err != nil {
		return nil, err
	}

	fs := fsops.NewRealFS()
	hasher := hash.NewSHA256Hasher()
	opener, err := newOpener(cfg, fs, paths)
	if err != nil {
		return nil, err
	}

	return engine.New(
		opener,
		persist.NewFileBackupStore(fs, paths.Backups, hasher),
		state.NewFileStateStore(fs, paths.State),
		lock.NewFileLocker(paths.Locks, hasher),
		&clock.RealClock{},
		logger,
		cfg,
	), nil
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
