// Package collect runs the ingestion pass: every provider's adapters are
// invoked in catalog order, the fresh batch is merged ahead of the stored
// signals, and the deduplicated, sorted, capped result becomes the new raw
// signal store.
package collect

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/adapter"
	"github.com/machinecinema/aisignals/internal/catalog"
	"github.com/machinecinema/aisignals/internal/metrics"
	"github.com/machinecinema/aisignals/internal/signal"
	"github.com/machinecinema/aisignals/internal/store"
)

const defaultMaxSignals = 800

// Config tunes the collector.
type Config struct {
	// MaxSignals bounds the raw store size.
	MaxSignals int
}

// Collector orchestrates one ingestion run.
type Collector struct {
	catalog    *catalog.Catalog
	adapters   []adapter.Adapter
	signals    *store.SignalStore
	logger     *zap.Logger
	maxSignals int
}

// New builds a Collector. Adapters run in the given order for each provider.
func New(cat *catalog.Catalog, adapters []adapter.Adapter, signals *store.SignalStore, logger *zap.Logger, cfg Config) *Collector {
	maxSignals := cfg.MaxSignals
	if maxSignals <= 0 {
		maxSignals = defaultMaxSignals
	}
	return &Collector{
		catalog:    cat,
		adapters:   adapters,
		signals:    signals,
		logger:     logger,
		maxSignals: maxSignals,
	}
}

// Run collects signals from every provider, merges them with the stored
// snapshot (fresh signals win on key collisions), and rewrites the raw store.
// Only the final store write can fail.
func (c *Collector) Run(ctx context.Context) error {
	logger := c.logger.With(zap.String("run_id", uuid.NewString()))

	existing := c.signals.Load()

	var collected []signal.Signal
	for _, provider := range c.catalog.Providers {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("collection aborted: %w", err)
		}
		providerSignals := c.collectProvider(ctx, provider)
		collected = append(collected, providerSignals...)
	}

	uniqueNew, providerCount := summarize(collected, existing)

	merged := append(append([]signal.Signal{}, collected...), existing...)
	merged = signal.Dedupe(dropInvalid(merged), signal.RawKey)
	signal.SortByPublishedAt(merged)
	if len(merged) > c.maxSignals {
		merged = merged[:c.maxSignals]
	}

	if err := c.signals.Save(merged); err != nil {
		return fmt.Errorf("save signal store: %w", err)
	}

	logger.Info("collection run complete",
		zap.Int("new_signals", uniqueNew),
		zap.Int("providers_with_new_signals", providerCount),
		zap.Int("stored_signals", len(merged)))
	return nil
}

func (c *Collector) collectProvider(ctx context.Context, provider catalog.Provider) []signal.Signal {
	var signals []signal.Signal
	for _, a := range c.adapters {
		adapterSignals := a.Collect(ctx, provider)
		metrics.ObserveCollected(provider.Slug, string(a.Source()), len(adapterSignals))
		signals = append(signals, adapterSignals...)
	}
	return signals
}

func dropInvalid(signals []signal.Signal) []signal.Signal {
	valid := signals[:0:0]
	for _, s := range signals {
		if s.Valid() {
			valid = append(valid, s)
		}
	}
	return valid
}

// summarize counts fresh signals not already in the store and the number of
// providers that contributed them.
func summarize(collected, existing []signal.Signal) (uniqueNew, providerCount int) {
	existingKeys := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		existingKeys[signal.RawKey(s)] = struct{}{}
	}
	newKeys := make(map[string]struct{}, len(collected))
	providers := make(map[string]struct{})
	for _, s := range collected {
		key := signal.RawKey(s)
		if _, ok := existingKeys[key]; ok {
			continue
		}
		if _, ok := newKeys[key]; ok {
			continue
		}
		newKeys[key] = struct{}{}
		providers[s.ProviderSlug] = struct{}{}
	}
	return len(newKeys), len(providers)
}
