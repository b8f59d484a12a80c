// Package filter implements the heuristic relevance and ad/noise gates applied
// during curation. The keyword tables are data, reviewable on their own; the
// control flow only folds over them.
package filter

import (
	"regexp"
	"strings"

	"github.com/machinecinema/aisignals/internal/signal"
)

// adTextKeywords reject a signal when found in its lowercased title+summary.
var adTextKeywords = []string{
	"sale",
	"discount",
	"limited offer",
	"limited-time",
	"limited time",
	"save %",
	"% off",
	"black friday",
	"cyber monday",
	"register now",
	"sign up now",
	"book your demo",
	"sponsored",
	"partner content",
	"ad:",
	"advertorial",
	"pricing",
	"plans & pricing",
	"upgrade now",
	"webinar",
	"join our webinar",
	"conference tickets",
	"early bird",
	"ebook",
	"download our",
	"watch the webinar",
	"reserve your seat",
	"get your ticket",
}

// adURLKeywords reject a signal when found in its lowercased URL.
var adURLKeywords = []string{
	"/ads/",
	"/promo",
	"/promotions",
	"/sale",
	"/pricing",
	"/plans",
	"/webinar",
	"/events",
	"/sponsored",
}

// aggregatorListiclePatterns reject listicle-style roundups, but only for
// providers classified as aggregators.
var aggregatorListiclePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)top\s+\d+\s+(?:ai\s+)?tools`),
	regexp.MustCompile(`(?i)best\s+(?:ai\s+)?tools`),
	regexp.MustCompile(`(?i)must[-\s]+try\s+ai`),
	regexp.MustCompile(`(?i)ultimate\s+guide\s+to\s+ai`),
	regexp.MustCompile(`(?i)ai\s+tool\s+roundup`),
}

// coreKeywords: at least one must appear for a signal to be relevant at all.
var coreKeywords = []string{
	"model",
	"models",
	"multimodal",
	"text-to-video",
	"text-to-image",
	"vision",
	"ai agent",
	"agents",
	"assistant",
	"gpt",
	"llm",
	"large language",
	"diffusion",
	"gen-",
	"neural",
}

// actionKeywords signal news-worthiness (a release, launch, integration...).
var actionKeywords = []string{
	"release",
	"launch",
	"introducing",
	"now available",
	"available today",
	"update",
	"updated",
	"announces",
	"announced",
	"rolling out",
	"beta",
	"preview",
	"api",
	"sdk",
	"integration",
	"partnership",
	"collaboration",
	"ships",
	"support",
}

// aiTagHints recognize AI entities in the provider slug or tags.
var aiTagHints = []string{
	"ai",
	"ml",
	"llm",
	"openai",
	"anthropic",
	"gemini",
	"deepmind",
	"grok",
	"claude",
	"sora",
	"midjourney",
	"stability",
	"runway",
	"perplexity",
	"llama",
	"mistral",
	"watson",
	"copilot",
	"diffusion",
	"gen3",
	"aip",
}

// AggregatorLookup answers whether a provider slug names an aggregator.
type AggregatorLookup interface {
	IsAggregator(slug string) bool
}

// Filter decides inclusion for curated publication.
type Filter struct {
	aggregators AggregatorLookup
}

// New builds a Filter using the given aggregator lookup.
func New(aggregators AggregatorLookup) *Filter {
	return &Filter{aggregators: aggregators}
}

func combinedText(s signal.Signal) string {
	return strings.ToLower(signal.NormalizeText(s.Title) + " " + signal.NormalizeText(s.Summary))
}

// AdLike reports whether the signal is heuristically promotional or noise.
func (f *Filter) AdLike(s signal.Signal) bool {
	text := combinedText(s)
	if text != "" {
		for _, keyword := range adTextKeywords {
			if strings.Contains(text, keyword) {
				return true
			}
		}
	}

	loweredURL := strings.ToLower(s.URL)
	if loweredURL != "" {
		for _, keyword := range adURLKeywords {
			if strings.Contains(loweredURL, keyword) {
				return true
			}
		}
	}

	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), "marketing") {
			return true
		}
	}

	if f.aggregators != nil && f.aggregators.IsAggregator(s.ProviderSlug) {
		for _, pattern := range aggregatorListiclePatterns {
			if pattern.MatchString(s.Title) || pattern.MatchString(s.Summary) {
				return true
			}
		}
	}

	return false
}

// Relevant reports whether the signal clears the AI-news relevance gate.
// A core keyword is mandatory; without one the signal is rejected no matter
// what action keywords or entity hints it carries.
func (f *Filter) Relevant(s signal.Signal) bool {
	text := combinedText(s)

	hasCore := false
	for _, keyword := range coreKeywords {
		if strings.Contains(text, keyword) {
			hasCore = true
			break
		}
	}
	if !hasCore {
		return false
	}

	for _, keyword := range actionKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}

	slug := strings.ToLower(s.ProviderSlug)
	for _, hint := range aiTagHints {
		if strings.Contains(slug, hint) {
			return true
		}
		for _, tag := range s.Tags {
			if strings.Contains(strings.ToLower(tag), hint) {
				return true
			}
		}
	}

	return false
}

// Include is the publication decision: relevant and not ad-like.
func (f *Filter) Include(s signal.Signal) bool {
	return f.Relevant(s) && !f.AdLike(s)
}
