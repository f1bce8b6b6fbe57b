package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerorder/internal/engine"
)

var (
	installTargets  []string
	installDryRun   bool
	installNoBackup bool
)

var installCmd = &cobra.Command{
	Use:   "install [install-dir]",
	Short: "Register the layer first in every target",
	Long: `Register the layer from install-dir as the first implicit API layer.

install-dir defaults to the directory holding the layerorder executable. The
value name written is <install-dir>\<manifest> for each configured target.
Registrations of the same manifest from any other directory are removed; all
other layers keep their order and values.

A backup of every namespace is saved before it is rewritten. If a write fails
partway, the namespace is restored from that snapshot.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := installDir(args)
		if err != nil {
			return err
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}

		req := &engine.InstallRequest{
			InstallDir: dir,
			Targets:    installTargets,
			DryRun:     installDryRun,
			NoBackup:   installNoBackup,
		}

		result, err := eng.Install(context.Background(), req)
		if result == nil {
			return err
		}

		if jsonOutput {
			if jerr := outputJSON(cmd.OutOrStdout(), result); jerr != nil {
				return jerr
			}
			return err
		}

		renderInstall(cmd.OutOrStdout(), result)
		return err
	},
}

// installDir returns the explicit argument or the executable's directory.
func installDir(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	return filepath.Dir(exe), nil
}

func init() {
	installCmd.Flags().StringSliceVarP(&installTargets, "target", "t", nil, "Only install these targets (default all)")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Show the new order without writing")
	installCmd.Flags().BoolVar(&installNoBackup, "no-backup", false, "Do not save a backup before writing")
}
