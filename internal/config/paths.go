// Package config manages layerorder configuration and filesystem paths.
//
// Paths locate the data directory (default ~/.layerorder, overridable with
// LAYERORDER_ROOT) holding backups/, state/, locks/, stores/ and config.yaml.
// Config describes the target namespaces and the install policy and is
// loaded with viper from YAML, environment and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootEnv overrides the data directory.
const RootEnv = "LAYERORDER_ROOT"

// Paths contains all the filesystem paths used by layerorder.
type Paths struct {
	// Root is the base directory for all layerorder data (default: ~/.layerorder)
	Root string

	// Backups holds every snapshot backup as <id>.json, for all targets
	Backups string

	// State holds the last-install record per target
	State string

	// Locks holds the per-namespace lock files
	Locks string

	// Stores is the root of the file backend
	Stores string

	// Config is the path to the default config file
	Config string
}

// DefaultPaths returns the default paths for layerorder.
func DefaultPaths() (*Paths, error) {
	root := os.Getenv(RootEnv)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".layerorder")
	}
	return PathsAt(root), nil
}

// PathsAt returns the layout below an explicit root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:    root,
		Backups: filepath.Join(root, "backups"),
		State:   filepath.Join(root, "state"),
		Locks:   filepath.Join(root, "locks"),
		Stores:  filepath.Join(root, "stores"),
		Config:  filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Root,
		p.Backups,
		p.State,
		p.Locks,
		p.Stores,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
