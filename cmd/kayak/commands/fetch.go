package commands

import (
	"fmt"
	"ulascansenturk/kayak-pipeline/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:       "fetch [weather|hotels]",
	Short:     "Acquires and uploads snapshots without loading them. Both sources when none is named.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"weather", "hotels"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		if err := a.store.EnsureBucketExists(ctx); err != nil {
			return err
		}

		cache := a.newCache()
		defer cache.Close()

		if len(args) == 0 {
			return service.NewOrchestrator(a.store, a.weatherFetcher(cache), a.hotelCrawler(), nil, a.logger).Acquire(ctx)
		}

		switch args[0] {
		case "weather":
			path, err := a.weatherFetcher(cache).Run(ctx)
			if err != nil {
				return err
			}
			a.logger.Info().Str("file", path).Msg("weather snapshot written")
		case "hotels":
			summary, err := a.hotelCrawler().Run(ctx)
			if err != nil {
				return err
			}
			a.logger.Info().Int("records", summary.Records).Int("dropped", summary.Dropped).Msg("hotel snapshot written")
		default:
			return fmt.Errorf("unknown source %q", args[0])
		}
		return nil
	},
}
