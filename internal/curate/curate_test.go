package curate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/filter"
	"github.com/machinecinema/aisignals/internal/signal"
	"github.com/machinecinema/aisignals/internal/store"
)

type recordingMirror struct {
	items []signal.PublishedItem
	err   error
}

func (m *recordingMirror) Upsert(_ context.Context, items []signal.PublishedItem) error {
	m.items = items
	return m.err
}

type testStores struct {
	signals *store.SignalStore
	news    *store.NewsStore
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	dir := t.TempDir()
	return testStores{
		signals: store.NewSignalStore(filepath.Join(dir, "signals.json"), zap.NewNop()),
		news: store.NewNewsStore(
			filepath.Join(dir, "news.json"),
			filepath.Join(dir, "published", "news.json"),
			zap.NewNop()),
	}
}

func rawSignal(slug, title, url string) signal.Signal {
	return signal.Signal{
		ID:           signal.NewID(slug, signal.SourceRSS, url),
		ProviderSlug: slug,
		ProviderName: "Provider " + slug,
		Source:       signal.SourceRSS,
		Origin:       slug + "-rss",
		Title:        title,
		URL:          url,
		PublishedAt:  "2025-02-01T00:00:00.000Z",
		CollectedAt:  "2025-02-01T00:00:00.000Z",
	}
}

func TestRunFiltersDedupesAndPublishes(t *testing.T) {
	t.Parallel()

	stores := newTestStores(t)
	include := rawSignal("openai", "OpenAI releases GPT-5", "https://openai.com/blog/gpt-5")
	adLike := rawSignal("openai", "GPT-5 model release: limited-time offer", "https://openai.com/blog/promo")
	irrelevant := rawSignal("openai", "OpenAI opens a new office", "https://openai.com/blog/office")
	// Same provider and URL from another source collapses on the curated key.
	duplicate := include
	duplicate.Source = signal.SourceWebsite
	duplicate.ID = signal.NewID("openai", signal.SourceWebsite, include.URL)
	require.NoError(t, stores.signals.Save([]signal.Signal{include, adLike, irrelevant, duplicate}))

	mirror := &recordingMirror{}
	c := New(stores.signals, stores.news, filter.New(nil), mirror, zap.NewNop(), Config{})
	require.NoError(t, c.Run(context.Background()))

	published := stores.news.Load()
	require.Len(t, published, 1)
	item := published[0]
	assert.Equal(t, include.ID, item.ID)
	assert.Equal(t, "OpenAI releases GPT-5", item.Title)
	assert.Equal(t, "Provider openai", item.Provider)
	assert.Equal(t, "Provider openai", item.Source)
	assert.Equal(t, include.URL, item.SourceURL)
	assert.Equal(t, "2025-02-01T00:00:00.000Z", item.PublishedAt)

	require.Len(t, mirror.items, 1)
	assert.Equal(t, include.ID, mirror.items[0].ID)
}

func TestRunCapsPublishedItems(t *testing.T) {
	t.Parallel()

	stores := newTestStores(t)
	older := rawSignal("openai", "Older model release", "https://openai.com/blog/older")
	older.PublishedAt = "2025-01-01T00:00:00.000Z"
	newer := rawSignal("openai", "Newer model release", "https://openai.com/blog/newer")
	require.NoError(t, stores.signals.Save([]signal.Signal{older, newer}))

	c := New(stores.signals, stores.news, filter.New(nil), nil, zap.NewNop(), Config{MaxItems: 1})
	require.NoError(t, c.Run(context.Background()))

	published := stores.news.Load()
	require.Len(t, published, 1)
	assert.Equal(t, "Newer model release", published[0].Title)
}

func TestRunKeepsPreviousDatasetWhenEmpty(t *testing.T) {
	t.Parallel()

	stores := newTestStores(t)
	previous := []signal.PublishedItem{{
		ID:          "previous-item",
		Title:       "Previously published",
		Provider:    "OpenAI",
		Source:      "OpenAI",
		URL:         "https://openai.com/blog/previous",
		PublishedAt: "2025-01-01T00:00:00.000Z",
	}}
	require.NoError(t, stores.news.Save(previous))

	// Everything in the raw store fails the relevance gate.
	require.NoError(t, stores.signals.Save([]signal.Signal{
		rawSignal("openai", "OpenAI opens a new office", "https://openai.com/blog/office"),
	}))

	c := New(stores.signals, stores.news, filter.New(nil), nil, zap.NewNop(), Config{})
	require.NoError(t, c.Run(context.Background()))

	published := stores.news.Load()
	require.Len(t, published, 1)
	assert.Equal(t, "previous-item", published[0].ID)
}

func TestRunPropagatesMirrorFailure(t *testing.T) {
	t.Parallel()

	stores := newTestStores(t)
	require.NoError(t, stores.signals.Save([]signal.Signal{
		rawSignal("openai", "OpenAI releases GPT-5", "https://openai.com/blog/gpt-5"),
	}))

	mirror := &recordingMirror{err: errors.New("db down")}
	c := New(stores.signals, stores.news, filter.New(nil), mirror, zap.NewNop(), Config{})
	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mirror published news")
}

func TestToPublishedItemDropsUnresolvableTimestamps(t *testing.T) {
	t.Parallel()

	s := rawSignal("openai", "OpenAI releases GPT-5", "https://openai.com/blog/gpt-5")
	s.PublishedAt = "garbage"
	s.CollectedAt = "also garbage"
	_, ok := toPublishedItem(s)
	assert.False(t, ok)

	s.CollectedAt = "2025-02-01T00:00:00.000Z"
	item, ok := toPublishedItem(s)
	require.True(t, ok)
	assert.Equal(t, "2025-02-01T00:00:00.000Z", item.PublishedAt)
}
