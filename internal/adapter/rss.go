package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/catalog"
	"github.com/machinecinema/aisignals/internal/fetch"
	"github.com/machinecinema/aisignals/internal/signal"
)

const defaultRSSItemLimit = 10

// RSSConfig tunes the RSS adapter.
type RSSConfig struct {
	// ItemLimit caps how many of the newest items are taken per feed.
	ItemLimit int
	// Now overrides the collection clock; nil means time.Now.
	Now func() time.Time
}

// RSS collects signals from a provider's configured RSS/Atom feeds.
type RSS struct {
	fetcher   Fetcher
	logger    *zap.Logger
	itemLimit int
	now       func() time.Time
}

// NewRSS builds the RSS adapter.
func NewRSS(fetcher Fetcher, logger *zap.Logger, cfg RSSConfig) *RSS {
	limit := cfg.ItemLimit
	if limit <= 0 {
		limit = defaultRSSItemLimit
	}
	return &RSS{
		fetcher:   fetcher,
		logger:    logger,
		itemLimit: limit,
		now:       nowOrDefault(cfg.Now),
	}
}

// Source implements Adapter.
func (a *RSS) Source() signal.Source {
	return signal.SourceRSS
}

// Collect fetches and parses each configured feed, taking at most the
// configured number of most-recent items per feed. Items missing a link or
// title are skipped.
func (a *RSS) Collect(ctx context.Context, provider catalog.Provider) []signal.Signal {
	if len(provider.RSSFeeds) == 0 {
		return nil
	}
	collectedAt := signal.FormatTimestamp(a.now())
	baseTags := provider.BaseTags()

	var signals []signal.Signal
	for _, feedURL := range provider.RSSFeeds {
		resp, err := a.fetcher.Get(ctx, feedURL, fetch.Options{})
		if err != nil {
			a.logger.Warn("rss fetch failed",
				zap.String("provider", provider.Slug),
				zap.String("feed", feedURL),
				zap.Error(err))
			continue
		}
		if !resp.OK() {
			a.logger.Warn("rss request returned non-success status",
				zap.String("provider", provider.Slug),
				zap.String("feed", feedURL),
				zap.String("status", resp.Status))
			continue
		}
		feed, err := gofeed.NewParser().ParseString(string(resp.Body))
		if err != nil {
			a.logger.Warn("rss parse failed",
				zap.String("provider", provider.Slug),
				zap.String("feed", feedURL),
				zap.Error(err))
			continue
		}

		items := feed.Items
		if len(items) > a.itemLimit {
			items = items[:a.itemLimit]
		}
		for _, item := range items {
			if item == nil || item.Link == "" || strings.TrimSpace(item.Title) == "" {
				continue
			}
			publishedAt := collectedAt
			if ts := itemTimestamp(item); ts != nil {
				publishedAt = signal.FormatTimestamp(*ts)
			}
			signals = append(signals, signal.Signal{
				ID:           signal.NewID(provider.Slug, signal.SourceRSS, item.Link),
				ProviderSlug: provider.Slug,
				ProviderName: provider.DisplayName,
				Source:       signal.SourceRSS,
				Origin:       provider.Slug + "-rss",
				Title:        strings.TrimSpace(item.Title),
				Summary:      itemSummary(item),
				URL:          item.Link,
				Language:     feed.Language,
				Tags:         baseTags,
				PublishedAt:  publishedAt,
				CollectedAt:  collectedAt,
			})
		}
	}
	return signals
}

func itemTimestamp(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

func itemSummary(item *gofeed.Item) string {
	if summary := strings.TrimSpace(item.Description); summary != "" {
		return summary
	}
	return strings.TrimSpace(item.Content)
}
