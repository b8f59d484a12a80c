// Package postgres mirrors the published dataset into a relational store for
// downstream consumers that prefer SQL over the JSON documents.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/machinecinema/aisignals/internal/signal"
)

type execCloser interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// NewsStore upserts published items into the published_news table.
type NewsStore struct {
	pool execCloser
}

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// NewNewsStore connects a pool using cfg.
func NewNewsStore(ctx context.Context, cfg Config) (*NewsStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &NewsStore{pool: pool}, nil
}

// NewNewsStoreWithPool constructs a store from an existing pool (tests).
func NewNewsStoreWithPool(pool execCloser) (*NewsStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &NewsStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *NewsStore) Close() {
	s.pool.Close()
}

const upsertNewsSQL = `INSERT INTO published_news
  (id, title, summary, provider, source, source_url, url, language, tags, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  summary = EXCLUDED.summary,
  provider = EXCLUDED.provider,
  source = EXCLUDED.source,
  source_url = EXCLUDED.source_url,
  url = EXCLUDED.url,
  language = EXCLUDED.language,
  tags = EXCLUDED.tags,
  published_at = EXCLUDED.published_at,
  updated_at = NOW()`

// Upsert writes every item, replacing rows that share an id.
func (s *NewsStore) Upsert(ctx context.Context, items []signal.PublishedItem) error {
	for _, item := range items {
		publishedAt, ok := signal.ParseTimestamp(item.PublishedAt)
		if !ok {
			return fmt.Errorf("item %s has unparseable publishedAt %q", item.ID, item.PublishedAt)
		}
		_, err := s.pool.Exec(ctx, upsertNewsSQL,
			item.ID,
			item.Title,
			item.Summary,
			item.Provider,
			item.Source,
			item.SourceURL,
			item.URL,
			item.Language,
			item.Tags,
			publishedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert published item %s: %w", item.ID, err)
		}
	}
	return nil
}
