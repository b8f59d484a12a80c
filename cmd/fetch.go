package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Collects signals from all configured providers",
		Long: `Runs one ingestion pass: every provider's RSS feeds, news pages, and
social mentions are fetched, normalized into signals, merged with the stored
snapshot, deduplicated, sorted, and capped.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runFetch(ctx)
		},
	}
}

func runFetch(ctx context.Context) error {
	collector, err := buildCollector(cfg, logger)
	if err != nil {
		return err
	}
	return collector.Run(ctx)
}
