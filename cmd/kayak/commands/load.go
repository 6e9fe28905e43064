package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Loads the local snapshots, or the latest uploaded ones, into the warehouse.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()

		wh, err := a.openWarehouse(ctx)
		if err != nil {
			return err
		}
		defer wh.Close()

		pipeline, err := a.pipeline(wh)
		if err != nil {
			return err
		}

		_, err = pipeline.Run(ctx)
		return err
	},
}
