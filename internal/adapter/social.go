package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/catalog"
	"github.com/machinecinema/aisignals/internal/fetch"
	"github.com/machinecinema/aisignals/internal/signal"
)

const (
	defaultSearchURL         = "https://api.twitter.com/2/tweets/search/recent"
	defaultSocialResultLimit = 20
	defaultSocialTitleLimit  = 120
)

// SocialConfig tunes the social-search adapter.
type SocialConfig struct {
	// BearerToken authorizes the search API. When empty the adapter collects
	// nothing; this is a configuration state, not an error.
	BearerToken string
	// SearchURL overrides the recent-search endpoint (tests).
	SearchURL string
	// ResultLimit caps results per provider query.
	ResultLimit int
	// TitleLimit is the maximum title length before truncation.
	TitleLimit int
	// Now overrides the collection clock; nil means time.Now.
	Now func() time.Time
}

// Social collects signals from the post search API using a provider's
// configured handles and hashtags.
type Social struct {
	fetcher     Fetcher
	logger      *zap.Logger
	token       string
	searchURL   string
	resultLimit int
	titleLimit  int
	now         func() time.Time
}

// NewSocial builds the social-search adapter.
func NewSocial(fetcher Fetcher, logger *zap.Logger, cfg SocialConfig) *Social {
	searchURL := cfg.SearchURL
	if searchURL == "" {
		searchURL = defaultSearchURL
	}
	resultLimit := cfg.ResultLimit
	if resultLimit <= 0 {
		resultLimit = defaultSocialResultLimit
	}
	titleLimit := cfg.TitleLimit
	if titleLimit <= 0 {
		titleLimit = defaultSocialTitleLimit
	}
	return &Social{
		fetcher:     fetcher,
		logger:      logger,
		token:       cfg.BearerToken,
		searchURL:   searchURL,
		resultLimit: resultLimit,
		titleLimit:  titleLimit,
		now:         nowOrDefault(cfg.Now),
	}
}

// Source implements Adapter.
func (a *Social) Source() signal.Source {
	return signal.SourceSocial
}

type searchResponse struct {
	Data     []searchPost `json:"data"`
	Includes struct {
		Users []searchUser `json:"users"`
	} `json:"includes"`
}

type searchPost struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	Lang      string `json:"lang"`
	AuthorID  string `json:"author_id"`
}

type searchUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Collect searches recent posts mentioning the provider's handles or hashtags.
// Without a bearer token the adapter is a no-op.
func (a *Social) Collect(ctx context.Context, provider catalog.Provider) []signal.Signal {
	if a.token == "" {
		return nil
	}
	query := buildQuery(provider)
	if query == "" {
		return nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(a.resultLimit))
	params.Set("tweet.fields", "created_at,lang,author_id")
	params.Set("expansions", "author_id")
	params.Set("user.fields", "username")

	resp, err := a.fetcher.Get(ctx, a.searchURL+"?"+params.Encode(), fetch.Options{BearerToken: a.token})
	if err != nil {
		a.logger.Warn("social search failed",
			zap.String("provider", provider.Slug),
			zap.Error(err))
		return nil
	}
	if !resp.OK() {
		a.logger.Warn("social search returned non-success status",
			zap.String("provider", provider.Slug),
			zap.String("status", resp.Status))
		return nil
	}

	var payload searchResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		a.logger.Warn("social search response decode failed",
			zap.String("provider", provider.Slug),
			zap.Error(err))
		return nil
	}
	if len(payload.Data) == 0 {
		return nil
	}

	users := make(map[string]searchUser, len(payload.Includes.Users))
	for _, user := range payload.Includes.Users {
		users[user.ID] = user
	}

	baseTags := provider.BaseTags()
	collectedAt := signal.FormatTimestamp(a.now())

	signals := make([]signal.Signal, 0, len(payload.Data))
	for _, post := range payload.Data {
		cleanText := signal.NormalizeText(post.Text)
		title := truncate(cleanText, a.titleLimit)
		if title == "" {
			title = provider.DisplayName
		}
		publishedAt := collectedAt
		if ts, ok := signal.ParseTimestamp(post.CreatedAt); ok {
			publishedAt = signal.FormatTimestamp(ts)
		}
		signals = append(signals, signal.Signal{
			ID:           signal.NewID(provider.Slug, signal.SourceSocial, post.ID),
			ProviderSlug: provider.Slug,
			ProviderName: provider.DisplayName,
			Source:       signal.SourceSocial,
			Origin:       "social",
			Title:        title,
			Summary:      cleanText,
			URL:          postURL(users, post),
			Language:     post.Lang,
			Tags:         mergeTags(baseTags, extractHashtags(post.Text)),
			PublishedAt:  publishedAt,
			CollectedAt:  collectedAt,
		})
	}
	return signals
}

// buildQuery assembles the boolean-OR search query, restricted to English
// originals (no reposts). An empty string means the provider has nothing to
// search for.
func buildQuery(provider catalog.Provider) string {
	var parts []string
	for _, handle := range provider.Handles {
		if trimmed := strings.TrimSpace(handle); trimmed != "" {
			parts = append(parts, "@"+trimmed)
		}
	}
	for _, hashtag := range provider.Hashtags {
		trimmed := strings.TrimSpace(hashtag)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			trimmed = "#" + trimmed
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return ""
	}
	base := parts[0]
	if len(parts) > 1 {
		base = fmt.Sprintf("(%s)", strings.Join(parts, " OR "))
	}
	return base + " lang:en -is:retweet"
}

func postURL(users map[string]searchUser, post searchPost) string {
	if user, ok := users[post.AuthorID]; ok && user.Username != "" {
		return fmt.Sprintf("https://x.com/%s/status/%s", user.Username, post.ID)
	}
	return fmt.Sprintf("https://x.com/i/web/status/%s", post.ID)
}

var hashtagPattern = regexp.MustCompile(`#[\p{L}0-9_]+`)

func extractHashtags(text string) []string {
	matches := hashtagPattern.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, match := range matches {
		if tag := signal.Slugify(strings.TrimPrefix(match, "#")); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func mergeTags(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, tag := range append(append([]string{}, base...), extra...) {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}
	return merged
}

// truncate shortens text to limit characters, marking the cut with an
// ellipsis inside the limit.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
