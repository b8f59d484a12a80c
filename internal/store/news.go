package store

import (
	"encoding/json"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/signal"
)

// NewsStore owns the published news documents: a working copy and the copy
// served to the front-end. Both are replaced atomically on every save.
type NewsStore struct {
	workingPath   string
	publishedPath string
	logger        *zap.Logger
}

// NewNewsStore returns a store writing to both sink locations.
func NewNewsStore(workingPath, publishedPath string, logger *zap.Logger) *NewsStore {
	return &NewsStore{
		workingPath:   workingPath,
		publishedPath: publishedPath,
		logger:        logger,
	}
}

// Load returns the last published items, trying the working copy first and
// falling back to the published copy. Documents may be a bare array or an
// object wrapping an "articles" array, and may contain records in the legacy
// bilingual-suffix schema, which are upconverted.
func (s *NewsStore) Load() []signal.PublishedItem {
	for _, path := range []string{s.workingPath, s.publishedPath} {
		raw, found, err := readFile(path)
		if err != nil {
			s.logger.Warn("failed to read existing news", zap.String("path", path), zap.Error(err))
			continue
		}
		if !found {
			continue
		}
		items := decodeNewsDocument(raw)
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

// Save atomically replaces both sink locations with items.
func (s *NewsStore) Save(items []signal.PublishedItem) error {
	if items == nil {
		items = []signal.PublishedItem{}
	}
	if err := writeJSONAtomic(s.workingPath, items); err != nil {
		return err
	}
	return writeJSONAtomic(s.publishedPath, items)
}

func decodeNewsDocument(raw []byte) []signal.PublishedItem {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		var wrapped struct {
			Articles []json.RawMessage `json:"articles"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil
		}
		records = wrapped.Articles
	}

	items := make([]signal.PublishedItem, 0, len(records))
	for _, record := range records {
		if item, ok := decodeNewsRecord(record); ok {
			items = append(items, item)
		}
	}
	return items
}

// newsRecord is the permissive union of the current published schema and the
// legacy bilingual-suffix schema.
type newsRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	TitleEn      string   `json:"title_en"`
	TitleEnCamel string   `json:"titleEn"`
	Summary      string   `json:"summary"`
	SummaryEn    string   `json:"summary_en"`
	SummaryCamel string   `json:"summaryEn"`
	Provider     string   `json:"provider"`
	Source       string   `json:"source"`
	SourceURL    string   `json:"sourceUrl"`
	URL          string   `json:"url"`
	Language     string   `json:"language"`
	Tags         []string `json:"tags"`
	PublishedAt  string   `json:"publishedAt"`
}

func decodeNewsRecord(raw json.RawMessage) (signal.PublishedItem, bool) {
	var rec newsRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return signal.PublishedItem{}, false
	}

	id := signal.NormalizeText(rec.ID)
	recURL := signal.NormalizeText(rec.URL)
	publishedAt, ok := signal.ParseTimestamp(rec.PublishedAt)
	if id == "" || recURL == "" || !ok {
		return signal.PublishedItem{}, false
	}

	title := firstNonEmpty(
		signal.NormalizeText(rec.Title),
		signal.NormalizeText(rec.TitleEn),
		signal.NormalizeText(rec.TitleEnCamel),
		"Untitled",
	)
	summary := firstNonEmpty(
		signal.NormalizeText(rec.Summary),
		signal.NormalizeText(rec.SummaryEn),
		signal.NormalizeText(rec.SummaryCamel),
	)
	provider := firstNonEmpty(
		signal.NormalizeText(rec.Provider),
		signal.NormalizeText(rec.Source),
		hostnameOf(rec.SourceURL),
		"AI News",
	)

	return signal.PublishedItem{
		ID:          id,
		Title:       title,
		Summary:     summary,
		Provider:    provider,
		Source:      provider,
		SourceURL:   signal.NormalizeText(rec.SourceURL),
		URL:         recURL,
		Language:    rec.Language,
		Tags:        signal.NormalizeTags(rec.Tags),
		PublishedAt: signal.FormatTimestamp(publishedAt),
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func hostnameOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return signal.NormalizeText(strings.TrimPrefix(parsed.Hostname(), "www."))
}
