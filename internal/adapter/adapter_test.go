package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/machinecinema/aisignals/internal/fetch"
)

// stubFetcher serves canned responses and records what was requested.
type stubFetcher struct {
	body     string
	status   int
	err      error
	requests []string
	lastOpts fetch.Options
}

func (s *stubFetcher) Get(_ context.Context, rawURL string, opts fetch.Options) (*fetch.Response, error) {
	s.requests = append(s.requests, rawURL)
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	status := s.status
	if status == 0 {
		status = 200
	}
	return &fetch.Response{StatusCode: status, Status: "stub", Body: []byte(s.body)}, nil
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://openai.com/blog/gpt-5",
		resolveURL("https://openai.com/news", "/blog/gpt-5"))
	assert.Equal(t, "https://openai.com/blog/gpt-5",
		resolveURL("https://openai.com/news", "https://openai.com/blog/gpt-5"))
	assert.Equal(t, "https://openai.com/news/latest",
		resolveURL("https://openai.com/news/", "latest"))
}
