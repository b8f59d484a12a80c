package adapter

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/catalog"
	"github.com/machinecinema/aisignals/internal/fetch"
	"github.com/machinecinema/aisignals/internal/signal"
)

const defaultScrapeBlockLimit = 20

// dateSelectors are the fallback when a content block has no <time> element.
const dateSelectors = ".date,.published,.time,.meta time,.entry-date"

// WebConfig tunes the web-scrape adapter.
type WebConfig struct {
	// BlockLimit caps how many content blocks are considered per page.
	BlockLimit int
	// Now overrides the collection clock; nil means time.Now.
	Now func() time.Time
}

// Web collects signals by scraping a provider's configured news pages.
type Web struct {
	fetcher    Fetcher
	logger     *zap.Logger
	blockLimit int
	now        func() time.Time
}

// NewWeb builds the web-scrape adapter.
func NewWeb(fetcher Fetcher, logger *zap.Logger, cfg WebConfig) *Web {
	limit := cfg.BlockLimit
	if limit <= 0 {
		limit = defaultScrapeBlockLimit
	}
	return &Web{
		fetcher:    fetcher,
		logger:     logger,
		blockLimit: limit,
		now:        nowOrDefault(cfg.Now),
	}
}

// Source implements Adapter.
func (a *Web) Source() signal.Source {
	return signal.SourceWebsite
}

// Collect scrapes each configured news page.
func (a *Web) Collect(ctx context.Context, provider catalog.Provider) []signal.Signal {
	var signals []signal.Signal
	for _, pageURL := range provider.NewsPages {
		signals = append(signals, a.scrapePage(ctx, provider, pageURL)...)
	}
	return signals
}

func (a *Web) scrapePage(ctx context.Context, provider catalog.Provider, pageURL string) []signal.Signal {
	collectedAt := signal.FormatTimestamp(a.now())

	resp, err := a.fetcher.Get(ctx, pageURL, fetch.Options{})
	if err != nil {
		a.logger.Warn("news page fetch failed",
			zap.String("provider", provider.Slug),
			zap.String("page", pageURL),
			zap.Error(err))
		return nil
	}
	if !resp.OK() {
		a.logger.Warn("news page returned non-success status",
			zap.String("provider", provider.Slug),
			zap.String("page", pageURL),
			zap.String("status", resp.Status))
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		a.logger.Warn("news page parse failed",
			zap.String("provider", provider.Slug),
			zap.String("page", pageURL),
			zap.Error(err))
		return nil
	}

	containers := doc.Find("article")
	if containers.Length() == 0 {
		// No semantic articles; fall back to any container holding a heading.
		containers = doc.Find("section,div,li").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			return sel.Find("h1,h2,h3").Length() > 0
		})
	}

	baseTags := provider.BaseTags()
	origin := deriveOrigin(provider.Slug, pageURL)

	var signals []signal.Signal
	containers.EachWithBreak(func(i int, block *goquery.Selection) bool {
		if i >= a.blockLimit {
			return false
		}
		heading := block.Find("h1,h2,h3").First()
		title := strings.TrimSpace(heading.Text())
		if title == "" {
			return true
		}
		href, ok := heading.Find("a").Attr("href")
		if !ok || href == "" {
			href, _ = block.Find("a").First().Attr("href")
		}
		if href == "" {
			return true
		}
		absoluteURL := resolveURL(pageURL, href)

		summary := strings.TrimSpace(block.Find("p").First().Text())

		timeElement := block.Find("time").First()
		datetime, hasAttr := timeElement.Attr("datetime")
		if !hasAttr {
			datetime = timeElement.Text()
		}
		publishedAt := collectedAt
		if ts, ok := signal.ParseTimestamp(datetime); ok {
			publishedAt = signal.FormatTimestamp(ts)
		} else if ts, ok := signal.ParseTimestamp(block.Find(dateSelectors).First().Text()); ok {
			publishedAt = signal.FormatTimestamp(ts)
		}

		signals = append(signals, signal.Signal{
			ID:           signal.NewID(provider.Slug, signal.SourceWebsite, absoluteURL),
			ProviderSlug: provider.Slug,
			ProviderName: provider.DisplayName,
			Source:       signal.SourceWebsite,
			Origin:       origin,
			Title:        title,
			Summary:      summary,
			URL:          absoluteURL,
			Tags:         baseTags,
			PublishedAt:  publishedAt,
			CollectedAt:  collectedAt,
		})
		return true
	})
	return signals
}

var repeatedSlash = regexp.MustCompile(`/+`)

// deriveOrigin names the page within the provider namespace using the
// slugified URL path, falling back to the hostname for bare roots.
func deriveOrigin(slug, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return slug
	}
	if pathSlug := signal.Slugify(repeatedSlash.ReplaceAllString(parsed.Path, "/")); pathSlug != "" {
		return slug + "-" + pathSlug
	}
	return slug + "-" + signal.Slugify(parsed.Hostname())
}
