// Package metrics exposes Prometheus collectors for the signal pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisignals_fetch_requests_total",
			Help: "Total outbound HTTP requests, labeled by host and status code.",
		},
		[]string{"host", "status"},
	)

	rateLimitDelaySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisignals_rate_limit_delay_seconds",
			Help:    "Delay introduced by per-host request spacing.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"host"},
	)

	signalsCollectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisignals_signals_collected_total",
			Help: "Signals emitted by source adapters, labeled by provider and source.",
		},
		[]string{"provider", "source"},
	)

	signalsFilteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisignals_signals_filtered_total",
			Help: "Signals rejected during curation, labeled by reason.",
		},
		[]string{"reason"},
	)

	publishedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aisignals_published_items",
			Help: "Number of items in the most recently published dataset.",
		},
	)
)

// ObserveFetch records one outbound request.
func ObserveFetch(host, status string) {
	fetchRequestsTotal.WithLabelValues(host, status).Inc()
}

// ObserveRateLimitDelay records time spent waiting on the per-host limiter.
func ObserveRateLimitDelay(host string, d time.Duration) {
	rateLimitDelaySeconds.WithLabelValues(host).Observe(d.Seconds())
}

// ObserveCollected counts adapter output.
func ObserveCollected(provider, source string, n int) {
	if n > 0 {
		signalsCollectedTotal.WithLabelValues(provider, source).Add(float64(n))
	}
}

// ObserveFiltered counts curation rejections.
func ObserveFiltered(reason string) {
	signalsFilteredTotal.WithLabelValues(reason).Inc()
}

// SetPublishedItems records the published dataset size.
func SetPublishedItems(n int) {
	publishedItems.Set(float64(n))
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
