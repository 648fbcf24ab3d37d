// Package backend serves the news API consumed by the frontend.
package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bryan-buckman/newsfront/internal/database"
	"github.com/bryan-buckman/newsfront/internal/metrics"
)

// Options configures the API server.
type Options struct {
	PageSize       int
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy takes the client address from X-Forwarded-For and friends.
	TrustProxy bool
}

// Server is the news API HTTP server.
type Server struct {
	db         database.Store
	pageSize   int
	trustProxy bool
	limiter    *RateLimiter
	logger     *slog.Logger
	router     chi.Router
}

// New creates the API server.
func New(db database.Store, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	s := &Server{
		db:         db,
		pageSize:   opts.PageSize,
		trustProxy: opts.TrustProxy,
		limiter:    NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, logger),
		logger:     logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Get("/news/", s.handleNews)
		r.Get("/news", s.handleNews)
		r.Get("/news/search", s.handleSearch)
		r.Get("/news/stats", s.handleStats)
	})

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("News API listening", "addr", addr, "database", s.db.DatabaseType())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Cleanup(); n > 0 {
				s.logger.Debug("Cleaned up inactive clients", "count", n)
			}
		}
	}
}

// handleNews returns the latest articles, newest first, as a JSON array.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.db.LatestArticles(s.pageSize)
	if err != nil {
		s.logger.Error("load latest articles", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	metrics.ArticlesServed.Add(float64(len(articles)))
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.db.CountArticles()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": s.db.DatabaseType(),
		"articles": n,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
