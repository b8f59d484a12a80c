// Package adapter turns each external source format into Signal records. Every
// adapter shares the same failure contract: an endpoint that cannot be fetched
// or parsed is logged and contributes zero signals; it never aborts collection
// for other endpoints or providers.
package adapter

import (
	"context"
	"net/url"
	"time"

	"github.com/machinecinema/aisignals/internal/catalog"
	"github.com/machinecinema/aisignals/internal/fetch"
	"github.com/machinecinema/aisignals/internal/signal"
)

// Fetcher is the rate-limited HTTP client adapters fetch through.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Response, error)
}

// Adapter maps one provider's configured endpoints to signals.
type Adapter interface {
	// Source names the signal source the adapter produces.
	Source() signal.Source
	// Collect gathers signals for provider. Endpoint failures are soft.
	Collect(ctx context.Context, provider catalog.Provider) []signal.Signal
}

func nowOrDefault(now func() time.Time) func() time.Time {
	if now != nil {
		return now
	}
	return time.Now
}

// resolveURL resolves maybeRelative against base. Unparseable input is
// returned unchanged; the signal validity check downstream decides its fate.
func resolveURL(base, maybeRelative string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return maybeRelative
	}
	ref, err := url.Parse(maybeRelative)
	if err != nil {
		return maybeRelative
	}
	return baseURL.ResolveReference(ref).String()
}
