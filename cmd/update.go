package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newUpdateCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Publishes the curated news dataset",
		Long: `Runs one curation pass: the raw signal store is filtered for relevance,
cleared of ad-like content, deduplicated, sorted, capped, and published to the
working and front-end news documents. An empty result preserves the previous
published dataset.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if refresh {
				if err := runFetch(ctx); err != nil {
					// A failed refresh still leaves the previous snapshot usable.
					logger.Warn("signal refresh failed; curating stored signals", zap.Error(err))
				}
			}

			curator, closeMirror, err := buildCurator(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeMirror()
			return curator.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&refresh, "fetch", false, "refresh signals before curating")
	return cmd
}
