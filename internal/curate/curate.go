// Package curate produces the published dataset: the raw signal store is
// filtered, deduplicated, sorted, capped, and reshaped into the public schema.
// An empty result never overwrites a non-empty published set.
package curate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/filter"
	"github.com/machinecinema/aisignals/internal/metrics"
	"github.com/machinecinema/aisignals/internal/signal"
	"github.com/machinecinema/aisignals/internal/store"
)

const defaultMaxItems = 75

// Mirror receives the final published list, typically a relational store.
type Mirror interface {
	Upsert(ctx context.Context, items []signal.PublishedItem) error
}

// Config tunes the curator.
type Config struct {
	// MaxItems bounds the published dataset size.
	MaxItems int
}

// Curator runs the curation pass.
type Curator struct {
	signals  *store.SignalStore
	news     *store.NewsStore
	filter   *filter.Filter
	mirror   Mirror
	logger   *zap.Logger
	maxItems int
}

// New builds a Curator. mirror may be nil.
func New(signals *store.SignalStore, news *store.NewsStore, f *filter.Filter, mirror Mirror, logger *zap.Logger, cfg Config) *Curator {
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &Curator{
		signals:  signals,
		news:     news,
		filter:   f,
		mirror:   mirror,
		logger:   logger,
		maxItems: maxItems,
	}
}

// Run loads the raw store, applies the relevance and ad gates, dedupes on the
// curated key, sorts, caps, reshapes, and publishes. When the run produces no
// qualifying items, the previously published set is rewritten unchanged.
func (c *Curator) Run(ctx context.Context) error {
	existing := c.news.Load()
	rawSignals := c.signals.Load()
	if len(rawSignals) == 0 {
		c.logger.Warn("no raw signals available; run a fetch to populate the signal store")
	}

	cleaned := make([]signal.Signal, 0, len(rawSignals))
	for _, s := range rawSignals {
		if c.filter.AdLike(s) {
			metrics.ObserveFiltered("ad_like")
			continue
		}
		if !c.filter.Relevant(s) {
			metrics.ObserveFiltered("irrelevant")
			continue
		}
		cleaned = append(cleaned, s)
	}

	deduped := signal.Dedupe(cleaned, signal.CuratedKey)
	signal.SortByPublishedAt(deduped)
	if len(deduped) > c.maxItems {
		deduped = deduped[:c.maxItems]
	}

	items := make([]signal.PublishedItem, 0, len(deduped))
	for _, s := range deduped {
		item, ok := toPublishedItem(s)
		if !ok {
			metrics.ObserveFiltered("unparseable_timestamp")
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 && len(existing) > 0 {
		c.logger.Warn("no curated items produced; keeping previous published dataset",
			zap.Int("previous_items", len(existing)))
		items = existing
	}

	if err := c.news.Save(items); err != nil {
		return fmt.Errorf("save published news: %w", err)
	}
	metrics.SetPublishedItems(len(items))

	if c.mirror != nil {
		if err := c.mirror.Upsert(ctx, items); err != nil {
			return fmt.Errorf("mirror published news: %w", err)
		}
	}

	c.logger.Info("curation run complete", zap.Int("published_items", len(items)))
	return nil
}

// toPublishedItem reshapes a signal into the public schema. Signals whose
// publish time cannot be resolved are dropped.
func toPublishedItem(s signal.Signal) (signal.PublishedItem, bool) {
	publishedAt, ok := signal.EffectivePublishedAt(s)
	if !ok {
		return signal.PublishedItem{}, false
	}
	provider := signal.NormalizeText(s.ProviderName)
	if provider == "" {
		provider = s.ProviderSlug
	}
	return signal.PublishedItem{
		ID:          s.ID,
		Title:       signal.NormalizeText(s.Title),
		Summary:     signal.NormalizeText(s.Summary),
		Provider:    provider,
		Source:      provider,
		SourceURL:   s.URL,
		URL:         s.URL,
		Language:    s.Language,
		Tags:        signal.NormalizeTags(s.Tags),
		PublishedAt: signal.FormatTimestamp(publishedAt),
	}, true
}
