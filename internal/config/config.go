// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all pipeline knobs loaded via Viper.
type Config struct {
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Collect CollectConfig `mapstructure:"collect"`
	Curate  CurateConfig  `mapstructure:"curate"`
	Social  SocialConfig  `mapstructure:"social"`
	Paths   PathsConfig   `mapstructure:"paths"`
	DB      DBConfig      `mapstructure:"db"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// FetchConfig governs the shared rate-limited HTTP client.
type FetchConfig struct {
	DelayMs        int    `mapstructure:"delay_ms"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	MaxBodyBytes   int64  `mapstructure:"max_body_bytes"`
}

// CollectConfig governs the ingestion pass.
type CollectConfig struct {
	RSSItemLimit     int `mapstructure:"rss_item_limit"`
	ScrapeBlockLimit int `mapstructure:"scrape_block_limit"`
	MaxSignals       int `mapstructure:"max_signals"`
}

// CurateConfig governs the curation pass.
type CurateConfig struct {
	MaxItems int `mapstructure:"max_items"`
}

// SocialConfig governs the social-search adapter. BearerToken binds to the
// X_BEARER_TOKEN environment variable; when empty the adapter is disabled.
type SocialConfig struct {
	BearerToken string `mapstructure:"bearer_token"`
	SearchURL   string `mapstructure:"search_url"`
	ResultLimit int    `mapstructure:"result_limit"`
	TitleLimit  int    `mapstructure:"title_limit"`
}

// PathsConfig locates the pipeline's snapshot documents.
type PathsConfig struct {
	Signals       string `mapstructure:"signals"`
	News          string `mapstructure:"news"`
	PublishedNews string `mapstructure:"published_news"`
}

// DBConfig controls the optional Postgres mirror; empty DSN disables it.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ServerConfig controls the read-only serve surface.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AISIGNALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The social credential keeps its historical environment name.
	_ = v.BindEnv("social.bearer_token", "X_BEARER_TOKEN")

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fetch.delay_ms", 1000)
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.user_agent", "aisignals-bot/1.0 (+https://github.com/machinecinema/aisignals)")
	v.SetDefault("fetch.max_body_bytes", 8*1024*1024)
	v.SetDefault("collect.rss_item_limit", 10)
	v.SetDefault("collect.scrape_block_limit", 20)
	v.SetDefault("collect.max_signals", 800)
	v.SetDefault("curate.max_items", 75)
	v.SetDefault("social.result_limit", 20)
	v.SetDefault("social.title_limit", 120)
	v.SetDefault("paths.signals", "data/ai_signals.json")
	v.SetDefault("paths.news", "data/news.json")
	v.SetDefault("paths.published_news", "docs/data/news.json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Fetch.DelayMs < 0 {
		return fmt.Errorf("fetch.delay_ms must be >= 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Collect.MaxSignals <= 0 {
		return fmt.Errorf("collect.max_signals must be > 0")
	}
	if c.Curate.MaxItems <= 0 {
		return fmt.Errorf("curate.max_items must be > 0")
	}
	if c.Curate.MaxItems > c.Collect.MaxSignals {
		return fmt.Errorf("curate.max_items must not exceed collect.max_signals")
	}
	if c.Paths.Signals == "" || c.Paths.News == "" || c.Paths.PublishedNews == "" {
		return fmt.Errorf("paths.signals, paths.news, and paths.published_news are required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// HostDelay converts the fetch delay to a duration.
func (c Config) HostDelay() time.Duration {
	return time.Duration(c.Fetch.DelayMs) * time.Millisecond
}

// FetchTimeout converts the fetch timeout to a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
