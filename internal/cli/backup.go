package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerorder/internal/engine"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect saved namespace backups",
	Long:  `Backups are taken before every install and restore.`,
}

var backupLsTarget string

var backupLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List saved backups, oldest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Backups(context.Background(), &engine.BackupsRequest{Target: backupLsTarget})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), result)
		}

		renderBackups(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	backupLsCmd.Flags().StringVarP(&backupLsTarget, "target", "t", "", "Only list backups of this target")
	backupCmd.AddCommand(backupLsCmd)
}
