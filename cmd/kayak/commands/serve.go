package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"ulascansenturk/kayak-pipeline/internal/api/v1/handlers"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the upload ledger, warehouse health and pipeline counters over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, mainCtxStop := context.WithCancel(cmd.Context())
		defer mainCtxStop()

		wh, err := a.openWarehouse(ctx)
		if err != nil {
			return err
		}
		defer wh.Close()

		httpServer := &http.Server{
			Addr:              a.conf.ServerAddress,
			Handler:           handlers.NewOpsHandler(a.store, wh, a.recorder, a.conf.HTTPTimeoutDuration()),
			ReadHeaderTimeout: a.conf.HTTPTimeoutDuration(),
		}

		handleSignals(ctx, mainCtxStop, func(shutdownCtx context.Context) {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Error().Err(err).Msg("server shutdown failed")
			}
		})

		a.logger.Info().Msgf("started server on %s", a.conf.ServerAddress)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		<-ctx.Done()
		a.logger.Info().Msg("server stopped")
		return nil
	},
}

func handleSignals(ctx context.Context, cancelCtx context.CancelFunc, callback func(context.Context)) {
	sig := make(chan os.Signal, 1)

	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	const shutdownDuration = 30 * time.Second

	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDuration)
		defer cancel()

		callback(shutdownCtx)
		cancelCtx()
	}()
}
