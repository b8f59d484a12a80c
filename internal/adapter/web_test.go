package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/catalog"
	"github.com/machinecinema/aisignals/internal/signal"
)

const articlePageFixture = `<!DOCTYPE html>
<html><body>
  <article>
    <h2><a href="/blog/gemini-2">Gemini 2 is here</a></h2>
    <p>Our next generation multimodal model.</p>
    <time datetime="2025-02-10T08:00:00Z">February 10, 2025</time>
  </article>
  <article>
    <h3>Untitled teaser</h3>
  </article>
  <article>
    <h2>Research roundup</h2>
    <a href="https://deepmind.google/research/roundup">Read more</a>
    <span class="date">January 5, 2025</span>
  </article>
</body></html>`

const fallbackPageFixture = `<!DOCTYPE html>
<html><body>
  <div class="card">
    <h2><a href="/news/veo-3">Veo 3 launches</a></h2>
    <p>Text-to-video, now in preview.</p>
  </div>
  <div class="card">
    <h2><a href="/news/second">Second story</a></h2>
  </div>
  <div class="card">
    <h2><a href="/news/third">Third story</a></h2>
  </div>
</body></html>`

func webProvider() catalog.Provider {
	return catalog.Provider{
		Slug:        "deepmind",
		Kind:        catalog.KindCompany,
		DisplayName: "Google DeepMind",
		NewsPages:   []string{"https://deepmind.google/discover/blog"},
	}
}

func TestWebCollectArticles(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{body: articlePageFixture}
	a := NewWeb(fetcher, zap.NewNop(), WebConfig{Now: fixedClock()})

	signals := a.Collect(context.Background(), webProvider())
	require.Len(t, signals, 2, "the teaser without a link is skipped")

	first := signals[0]
	assert.Equal(t, "Gemini 2 is here", first.Title)
	assert.Equal(t, "https://deepmind.google/blog/gemini-2", first.URL, "relative href resolved against the page")
	assert.Equal(t, "Our next generation multimodal model.", first.Summary)
	assert.Equal(t, "2025-02-10T08:00:00.000Z", first.PublishedAt)
	assert.Equal(t, signal.SourceWebsite, first.Source)
	assert.Equal(t, "deepmind-discover-blog", first.Origin)

	// Block anchor and date-class fallbacks.
	second := signals[1]
	assert.Equal(t, "Research roundup", second.Title)
	assert.Equal(t, "https://deepmind.google/research/roundup", second.URL)
	assert.Equal(t, "2025-01-05T00:00:00.000Z", second.PublishedAt)
}

func TestWebCollectFallbackContainersAndBlockLimit(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{body: fallbackPageFixture}
	a := NewWeb(fetcher, zap.NewNop(), WebConfig{BlockLimit: 2, Now: fixedClock()})

	signals := a.Collect(context.Background(), webProvider())
	require.Len(t, signals, 2, "third block is beyond the limit")
	assert.Equal(t, "Veo 3 launches", signals[0].Title)
	assert.Equal(t, "https://deepmind.google/news/veo-3", signals[0].URL)
	assert.Equal(t, "Second story", signals[1].Title)
	// No date anywhere: published falls back to the collection time.
	assert.Equal(t, "2025-03-01T12:00:00.000Z", signals[0].PublishedAt)
}

func TestWebCollectNonSuccessStatus(t *testing.T) {
	t.Parallel()

	a := NewWeb(&stubFetcher{status: 404, body: "gone"}, zap.NewNop(), WebConfig{Now: fixedClock()})
	assert.Empty(t, a.Collect(context.Background(), webProvider()))
}

func TestDeriveOrigin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "deepmind-discover-blog", deriveOrigin("deepmind", "https://deepmind.google/discover/blog"))
	assert.Equal(t, "deepmind-deepmind-google", deriveOrigin("deepmind", "https://deepmind.google/"))
	assert.Equal(t, "deepmind-news", deriveOrigin("deepmind", "https://deepmind.google//news//"))
}
