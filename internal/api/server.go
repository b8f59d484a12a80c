// Package api exposes the read-only HTTP surface: the published news document
// and Prometheus metrics.
package api

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/metrics"
)

// Server serves the published dataset to front-end consumers.
type Server struct {
	router   chi.Router
	newsPath string
	logger   *zap.Logger
}

// NewServer constructs a Server reading the published document at newsPath.
func NewServer(newsPath string, logger *zap.Logger) *Server {
	s := &Server{
		newsPath: newsPath,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthz)
	r.Get("/data/news.json", s.news)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// news streams the published document as-is; the pipeline guarantees it is a
// well-formed JSON array.
func (s *Server) news(w http.ResponseWriter, r *http.Request) {
	payload, err := os.ReadFile(s.newsPath)
	if err != nil {
		if os.IsNotExist(err) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("[]\n"))
			return
		}
		s.logger.Error("failed to read published news", zap.String("path", s.newsPath), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}
