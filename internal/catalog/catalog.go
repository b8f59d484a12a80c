// Package catalog holds the static provider catalog the pipeline ingests for.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/machinecinema/aisignals/internal/signal"
)

// Kind classifies a provider entry.
type Kind string

const (
	KindCompany    Kind = "company"
	KindModel      Kind = "model"
	KindAggregator Kind = "aggregator"
)

// Provider identifies one company, model, or aggregator entity and the
// endpoints signals are collected from. Slug is globally unique and namespaces
// every identity key derived for the provider.
type Provider struct {
	Slug        string   `yaml:"slug"`
	Kind        Kind     `yaml:"kind"`
	DisplayName string   `yaml:"displayName"`
	Models      []string `yaml:"models,omitempty"`
	Homepage    string   `yaml:"homepage,omitempty"`
	RSSFeeds    []string `yaml:"rssFeeds,omitempty"`
	NewsPages   []string `yaml:"newsPages,omitempty"`
	Handles     []string `yaml:"handles,omitempty"`
	Hashtags    []string `yaml:"hashtags,omitempty"`
}

// BaseTags builds the tag set every signal for the provider starts from:
// the slug plus slugified model names and hashtags, deduplicated in
// insertion order.
func (p Provider) BaseTags() []string {
	seen := map[string]struct{}{p.Slug: {}}
	tags := []string{p.Slug}
	add := func(value string) {
		slug := signal.Slugify(value)
		if slug == "" {
			return
		}
		if _, ok := seen[slug]; ok {
			return
		}
		seen[slug] = struct{}{}
		tags = append(tags, slug)
	}
	for _, model := range p.Models {
		add(model)
	}
	for _, hashtag := range p.Hashtags {
		add(stripHash(hashtag))
	}
	return tags
}

func stripHash(tag string) string {
	if len(tag) > 0 && tag[0] == '#' {
		return tag[1:]
	}
	return tag
}

// Catalog is an ordered provider list with slug lookup.
type Catalog struct {
	Providers []Provider `yaml:"providers"`
	bySlug    map[string]Provider
}

//go:embed providers.yaml
var embeddedCatalog []byte

// Load parses and validates the embedded provider catalog.
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Parse decodes a provider catalog from YAML and validates it.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse provider catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.bySlug = make(map[string]Provider, len(c.Providers))
	for _, p := range c.Providers {
		c.bySlug[p.Slug] = p
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("provider catalog is empty")
	}
	seen := make(map[string]struct{}, len(c.Providers))
	for i, p := range c.Providers {
		if p.Slug == "" {
			return fmt.Errorf("provider %d has no slug", i)
		}
		if p.Slug != signal.Slugify(p.Slug) {
			return fmt.Errorf("provider slug %q is not lowercase-hyphenated", p.Slug)
		}
		if _, dup := seen[p.Slug]; dup {
			return fmt.Errorf("duplicate provider slug %q", p.Slug)
		}
		seen[p.Slug] = struct{}{}
		if p.DisplayName == "" {
			return fmt.Errorf("provider %q has no display name", p.Slug)
		}
		switch p.Kind {
		case KindCompany, KindModel, KindAggregator:
		default:
			return fmt.Errorf("provider %q has unknown kind %q", p.Slug, p.Kind)
		}
	}
	return nil
}

// IsAggregator reports whether slug names an aggregator provider. Unknown
// slugs are not aggregators.
func (c *Catalog) IsAggregator(slug string) bool {
	p, ok := c.bySlug[slug]
	return ok && p.Kind == KindAggregator
}

// Lookup returns the provider for slug.
func (c *Catalog) Lookup(slug string) (Provider, bool) {
	p, ok := c.bySlug[slug]
	return p, ok
}
