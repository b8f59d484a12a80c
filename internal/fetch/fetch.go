// Package fetch implements the outbound HTTP client shared by all source
// adapters. Requests to the same host are spaced by a minimum interval; the
// spacing is enforced here regardless of how callers iterate providers.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/machinecinema/aisignals/internal/metrics"
)

// Config holds fetcher parameters.
type Config struct {
	// MinHostInterval is the minimum delay between two requests to the same
	// host. Zero or negative disables spacing.
	MinHostInterval time.Duration
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// MaxBodyBytes caps response body reads. Zero means the default of 8 MiB.
	MaxBodyBytes int64
}

const defaultMaxBodyBytes = 8 << 20

// Options customize a single request.
type Options struct {
	// BearerToken, when set, is sent as an Authorization header.
	BearerToken string
}

// Response is the raw result of a fetch. Non-2xx responses are returned here
// rather than as errors so adapters can treat them as soft failures.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

// OK reports whether the response carries a success status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues rate-limited HTTP GET requests. The per-host limiter map is
// owned by the instance, so independent clients never contend and parallel
// test runs cannot cross-contaminate.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBody    int64

	mu       sync.Mutex
	interval time.Duration
	limiters map[string]*rate.Limiter
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  cfg.UserAgent,
		maxBody:    maxBody,
		interval:   cfg.MinHostInterval,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Get fetches rawURL, waiting first until the host's minimum request interval
// has elapsed. Transport errors and context cancellation propagate; HTTP error
// statuses do not.
func (c *Client) Get(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	// Key by host:port; two ports on one machine are independent endpoints.
	host := parsed.Host

	if err := c.waitHost(ctx, host); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if opts.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.BearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveFetch(host, "error")
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	metrics.ObserveFetch(host, strconv.Itoa(resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", rawURL, err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}, nil
}

func (c *Client) waitHost(ctx context.Context, host string) error {
	if c.interval <= 0 {
		return nil
	}
	c.mu.Lock()
	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(c.interval), 1)
		c.limiters[host] = limiter
	}
	c.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", host, err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(host, waited)
	}
	return nil
}
