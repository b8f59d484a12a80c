package adapter

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/catalog"
	"github.com/machinecinema/aisignals/internal/signal"
)

const socialFixture = `{
  "data": [
    {
      "id": "1001",
      "text": "Excited to ship #GPT5 today! Huge step for reasoning models.",
      "created_at": "2025-02-20T16:45:00.000Z",
      "lang": "en",
      "author_id": "u1"
    },
    {
      "id": "1002",
      "text": "no author record for this one",
      "lang": "en",
      "author_id": "u2"
    }
  ],
  "includes": {
    "users": [
      {"id": "u1", "username": "sama"}
    ]
  }
}`

func socialProvider() catalog.Provider {
	return catalog.Provider{
		Slug:        "openai",
		Kind:        catalog.KindCompany,
		DisplayName: "OpenAI",
		Handles:     []string{"OpenAI"},
		Hashtags:    []string{"#GPT5"},
	}
}

func TestSocialCollectWithoutTokenIsNoOp(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{body: socialFixture}
	a := NewSocial(fetcher, zap.NewNop(), SocialConfig{Now: fixedClock()})
	assert.Empty(t, a.Collect(context.Background(), socialProvider()))
	assert.Empty(t, fetcher.requests, "no token means no request")
}

func TestSocialCollect(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{body: socialFixture}
	a := NewSocial(fetcher, zap.NewNop(), SocialConfig{
		BearerToken: "secret",
		ResultLimit: 20,
		Now:         fixedClock(),
	})

	signals := a.Collect(context.Background(), socialProvider())
	require.Len(t, signals, 2)

	require.Len(t, fetcher.requests, 1)
	requested, err := url.Parse(fetcher.requests[0])
	require.NoError(t, err)
	query := requested.Query()
	assert.Equal(t, "(@OpenAI OR #GPT5) lang:en -is:retweet", query.Get("query"))
	assert.Equal(t, "20", query.Get("max_results"))
	assert.Equal(t, "secret", fetcher.lastOpts.BearerToken)

	first := signals[0]
	assert.Equal(t, signal.NewID("openai", signal.SourceSocial, "1001"), first.ID)
	assert.Equal(t, signal.SourceSocial, first.Source)
	assert.Equal(t, "social", first.Origin)
	assert.Equal(t, "https://x.com/sama/status/1001", first.URL)
	assert.Equal(t, "2025-02-20T16:45:00.000Z", first.PublishedAt)
	assert.Equal(t, "en", first.Language)
	// Hashtags found in the post text merge into the provider's base tags.
	assert.Equal(t, []string{"openai", "gpt5"}, first.Tags)

	// Unknown author falls back to the status-only URL; missing created_at
	// falls back to the collection time.
	second := signals[1]
	assert.Equal(t, "https://x.com/i/web/status/1002", second.URL)
	assert.Equal(t, "2025-03-01T12:00:00.000Z", second.PublishedAt)
}

func TestSocialCollectTruncatesTitles(t *testing.T) {
	t.Parallel()

	longText := strings.Repeat("reasoning ", 20) // 200 chars
	fetcher := &stubFetcher{body: `{"data":[{"id":"1","text":"` + longText + `","author_id":"u"}]}`}
	a := NewSocial(fetcher, zap.NewNop(), SocialConfig{BearerToken: "secret", TitleLimit: 40, Now: fixedClock()})

	signals := a.Collect(context.Background(), socialProvider())
	require.Len(t, signals, 1)
	assert.Len(t, []rune(signals[0].Title), 40)
	assert.True(t, strings.HasSuffix(signals[0].Title, "..."))
	assert.Greater(t, len(signals[0].Summary), 40, "summary keeps the full text")
}

func TestSocialCollectNothingToSearch(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{body: socialFixture}
	a := NewSocial(fetcher, zap.NewNop(), SocialConfig{BearerToken: "secret", Now: fixedClock()})

	p := socialProvider()
	p.Handles = nil
	p.Hashtags = nil
	assert.Empty(t, a.Collect(context.Background(), p))
	assert.Empty(t, fetcher.requests)
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "@OpenAI lang:en -is:retweet",
		buildQuery(catalog.Provider{Handles: []string{"OpenAI"}}))
	assert.Equal(t, "#Claude lang:en -is:retweet",
		buildQuery(catalog.Provider{Hashtags: []string{"Claude"}}))
	assert.Equal(t, "", buildQuery(catalog.Provider{}))
}
