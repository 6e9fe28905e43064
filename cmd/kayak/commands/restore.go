package commands

import (
	"fmt"
	"ulascansenturk/kayak-pipeline/internal/objectstore"

	"github.com/spf13/cobra"
)

var (
	restoreAll  *bool
	restoreDest *string
)

func init() {
	restoreAll = restoreCmd.Flags().Bool("all", false, "Download every upload of the file instead of the latest one.")
	restoreDest = restoreCmd.Flags().String("dest", "", "Destination directory. Defaults to DATA_DIR.")
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore <logical-name> [--all] [--dest <dir>]",
	Short: "Downloads uploaded snapshots of a logical file, such as weather.json, using the upload ledger.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		mode := objectstore.RestoreLatest
		if *restoreAll {
			mode = objectstore.RestoreAll
		}
		dest := *restoreDest
		if dest == "" {
			dest = a.conf.DataDir
		}

		paths, err := a.store.Restore(cmd.Context(), args[0], mode, dest)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}
