// Package signal defines the normalized records flowing through the pipeline
// and the identity, normalization, and ordering rules shared by every stage.
package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Source identifies which kind of endpoint produced a signal.
type Source string

const (
	SourceWebsite Source = "website"
	SourceRSS     Source = "rss"
	SourceSocial  Source = "social"
)

// Signal is one raw piece of ingested information about an AI provider or
// product. Signals are immutable once created; re-ingesting the same logical
// item yields the same ID and is collapsed by deduplication, never merged.
type Signal struct {
	ID           string   `json:"id"`
	ProviderSlug string   `json:"providerSlug"`
	ProviderName string   `json:"providerName"`
	Source       Source   `json:"source"`
	Origin       string   `json:"origin"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	URL          string   `json:"url"`
	Language     string   `json:"language,omitempty"`
	Tags         []string `json:"tags"`
	PublishedAt  string   `json:"publishedAt"`
	CollectedAt  string   `json:"collectedAt"`
}

// Valid reports whether the signal carries the minimum required fields.
// Candidates failing this are dropped before storage.
func (s Signal) Valid() bool {
	return strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.URL) != ""
}

// PublishedItem is the minimal public shape served to the front-end.
type PublishedItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary,omitempty"`
	Provider    string   `json:"provider"`
	Source      string   `json:"source"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
	URL         string   `json:"url"`
	Language    string   `json:"language,omitempty"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"publishedAt"`
}

// NewID derives the deterministic signal id from the provider slug, the
// source, and the source-specific unique key (feed link, absolute page URL,
// or post id). Identical inputs always yield the same id.
func NewID(providerSlug string, source Source, uniqueKey string) string {
	sum := sha256.Sum256([]byte(uniqueKey))
	return fmt.Sprintf("%s-%s-%s", providerSlug, source, hex.EncodeToString(sum[:])[:12])
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases value and collapses every non-alphanumeric run into a
// single hyphen, trimming hyphens from both ends.
func Slugify(value string) string {
	lowered := strings.ToLower(norm.NFKD.String(value))
	return strings.Trim(nonAlnum.ReplaceAllString(lowered, "-"), "-")
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeText applies NFKC normalization and collapses whitespace runs.
func NormalizeText(value string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(norm.NFKC.String(value), " "))
}

// ISO8601Millis is the wire format both snapshots use for timestamps.
const ISO8601Millis = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the snapshot wire format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(ISO8601Millis)
}

// timestampLayouts are tried in order when parsing source-provided dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02",
}

// ParseTimestamp parses a best-effort timestamp from source metadata.
func ParseTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// EffectivePublishedAt resolves the signal's publish time, falling back from
// publishedAt to collectedAt. The boolean is false when neither parses.
func EffectivePublishedAt(s Signal) (time.Time, bool) {
	for _, candidate := range []string{s.PublishedAt, s.CollectedAt} {
		if ts, ok := ParseTimestamp(candidate); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// RawKey is the raw-store dedup key.
func RawKey(s Signal) string {
	return s.ProviderSlug + "|" + string(s.Source) + "|" + s.URL
}

// CuratedKey is the curated-store dedup key; a published item is addressed by
// provider and URL regardless of which source produced it.
func CuratedKey(s Signal) string {
	return s.ProviderSlug + "|" + s.URL
}

// Dedupe keeps the first occurrence per key, preserving order. Callers merging
// fresh signals with stored ones place the fresh batch first so refreshed data
// wins on key collisions.
func Dedupe(signals []Signal, key func(Signal) string) []Signal {
	seen := make(map[string]struct{}, len(signals))
	deduped := make([]Signal, 0, len(signals))
	for _, s := range signals {
		k := key(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, s)
	}
	return deduped
}

// SortByPublishedAt orders signals by effective publish time, newest first.
// Unparseable timestamps sort as epoch zero (last); ties keep their original
// relative order.
func SortByPublishedAt(signals []Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		ti, _ := EffectivePublishedAt(signals[i])
		tj, _ := EffectivePublishedAt(signals[j])
		return ti.After(tj)
	})
}

// NormalizeTags normalizes every tag and drops empties and duplicates while
// preserving first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned := NormalizeText(tag)
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}
