package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerorder/internal/config"
	"github.com/danieljhkim/layerorder/internal/fsops"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the layerorder configuration",
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Write the built-in configuration to the config file so it can be edited.

The file is --config if given, else config.yaml in the data directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get config paths: %w", err)
		}
		path := paths.Config
		if configFile != "" {
			path = configFile
		}

		fs := fsops.NewRealFS()
		exists, err := fs.Exists(path)
		if err != nil {
			return err
		}
		if exists && !configInitForce {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		cfg := config.Defaults()
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		if err := fs.AtomicWrite(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), map[string]string{"path": path})
		}
		PrintSuccess(cmd.OutOrStdout(), "Wrote "+path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get config paths: %w", err)
		}
		cfg, err := loadConfig(paths)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), cfg)
		}

		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		source := cfg.Source
		if source == "" {
			source = "built-in defaults"
		}
		_, _ = dimColor.Fprintf(cmd.OutOrStdout(), "# source: %s\n", source)
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
