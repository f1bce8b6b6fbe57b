package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerorder/internal/engine"
)

var statusTargets []string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the layer order of every target",
	Long: `List the registered layers of every target in enumeration order.

Entries marked with * refer to this layer's manifest. A target is settled when
exactly one such entry exists and it is listed first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Status(context.Background(), &engine.StatusRequest{Targets: statusTargets})
		if result == nil {
			return err
		}

		if jsonOutput {
			if jerr := outputJSON(cmd.OutOrStdout(), result); jerr != nil {
				return jerr
			}
			return err
		}

		renderStatus(cmd.OutOrStdout(), result)
		return err
	},
}

func init() {
	statusCmd.Flags().StringSliceVarP(&statusTargets, "target", "t", nil, "Only show these targets (default all)")
}
