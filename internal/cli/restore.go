package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerorder/internal/engine"
)

var restoreDryRun bool

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Rewrite a namespace from a backup",
	Long: `Rewrite the namespace a backup was taken from to exactly the saved entries,
in the saved order.

The backup's checksum is verified first. The current contents are backed up
before writing, so a restore can be undone with another restore.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Restore(context.Background(), &engine.RestoreRequest{
			BackupID: args[0],
			DryRun:   restoreDryRun,
		})
		if result == nil {
			return err
		}

		if jsonOutput {
			if jerr := outputJSON(cmd.OutOrStdout(), result); jerr != nil {
				return jerr
			}
			return err
		}

		renderRestore(cmd.OutOrStdout(), result, err)
		return err
	},
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Show what would be written without writing")
}
