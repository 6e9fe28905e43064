package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"ulascansenturk/kayak-pipeline/internal/failure"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "kayak",
	Short:         "kayak acquires hotel and weather data for a set of cities and loads it into the warehouse.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, failure.ErrConnectivity) {
			fmt.Fprintln(os.Stderr, "cannot reach the relational store, check DATABASE_URL or DATABASE_* settings")
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
