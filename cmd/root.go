// Package cmd defines the CLI commands for the aisignals executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/config"
	"github.com/machinecinema/aisignals/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aisignals",
		Short: "Aggregates AI product announcements into a curated news dataset",
		Long: `aisignals collects announcements about AI products and companies from
RSS feeds, scraped news pages, and a social-search API, normalizes them into
signal records, and publishes a deduplicated, filtered, bounded news dataset
for the static front-end.`,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aisignals: %v\n", err)
		os.Exit(1)
	}
}
