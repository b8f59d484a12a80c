package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/adapter"
	"github.com/machinecinema/aisignals/internal/catalog"
	"github.com/machinecinema/aisignals/internal/collect"
	"github.com/machinecinema/aisignals/internal/config"
	"github.com/machinecinema/aisignals/internal/curate"
	"github.com/machinecinema/aisignals/internal/fetch"
	"github.com/machinecinema/aisignals/internal/filter"
	"github.com/machinecinema/aisignals/internal/store"
	"github.com/machinecinema/aisignals/internal/store/postgres"
)

// buildCollector wires the ingestion pass from configuration.
func buildCollector(cfg config.Config, logger *zap.Logger) (*collect.Collector, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load provider catalog: %w", err)
	}

	client := fetch.NewClient(fetch.Config{
		MinHostInterval: cfg.HostDelay(),
		Timeout:         cfg.FetchTimeout(),
		UserAgent:       cfg.Fetch.UserAgent,
		MaxBodyBytes:    cfg.Fetch.MaxBodyBytes,
	})

	if cfg.Social.BearerToken == "" {
		logger.Info("X_BEARER_TOKEN not set; social search disabled")
	}

	adapters := []adapter.Adapter{
		adapter.NewRSS(client, logger, adapter.RSSConfig{
			ItemLimit: cfg.Collect.RSSItemLimit,
		}),
		adapter.NewWeb(client, logger, adapter.WebConfig{
			BlockLimit: cfg.Collect.ScrapeBlockLimit,
		}),
		adapter.NewSocial(client, logger, adapter.SocialConfig{
			BearerToken: cfg.Social.BearerToken,
			SearchURL:   cfg.Social.SearchURL,
			ResultLimit: cfg.Social.ResultLimit,
			TitleLimit:  cfg.Social.TitleLimit,
		}),
	}

	signals := store.NewSignalStore(cfg.Paths.Signals, logger)
	return collect.New(cat, adapters, signals, logger, collect.Config{
		MaxSignals: cfg.Collect.MaxSignals,
	}), nil
}

// buildCurator wires the curation pass. The returned closer releases the
// Postgres mirror when one is configured.
func buildCurator(ctx context.Context, cfg config.Config, logger *zap.Logger) (*curate.Curator, func(), error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load provider catalog: %w", err)
	}

	signals := store.NewSignalStore(cfg.Paths.Signals, logger)
	news := store.NewNewsStore(cfg.Paths.News, cfg.Paths.PublishedNews, logger)

	var mirror curate.Mirror
	closer := func() {}
	if cfg.DB.DSN != "" {
		pgStore, err := postgres.NewNewsStore(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres mirror: %w", err)
		}
		mirror = pgStore
		closer = pgStore.Close
	}

	curator := curate.New(signals, news, filter.New(cat), mirror, logger, curate.Config{
		MaxItems: cfg.Curate.MaxItems,
	})
	return curator, closer, nil
}
