package commands

import (
	"ulascansenturk/kayak-pipeline/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Acquires both sources, checkpoints them to object storage, then loads the warehouse.",
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

		loader, err := a.pipeline(wh)
		if err != nil {
			return err
		}

		cache := a.newCache()
		defer cache.Close()

		orchestrator := service.NewOrchestrator(a.store, a.weatherFetcher(cache), a.hotelCrawler(), loader, a.logger)
		result, err := orchestrator.Run(ctx)
		a.logger.Info().
			Str("partition", result.Partition).
			Int("weather_rows", result.WeatherRows).
			Int("hotel_rows", result.HotelRows).
			Msg("run finished")
		return err
	},
}
