// Package server provides the frontend HTTP server and handlers.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bryan-buckman/newsfront/internal/card"
	"github.com/bryan-buckman/newsfront/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// PageTitle is the heading shown above the news list.
const PageTitle = "Latest News"

// refreshSeconds is how often a loading page re-renders its view.
const refreshSeconds = 1

// Options configures the frontend server.
type Options struct {
	// LoadWait is how long a new page waits for its view before rendering
	// the loading placeholder.
	LoadWait time.Duration
}

// Server is the frontend HTTP server.
type Server struct {
	views     *view.Registry
	loadWait  time.Duration
	logger    *slog.Logger
	router    chi.Router
	templates *template.Template
}

// New creates a new server.
func New(views *view.Registry, opts Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		views:     views,
		loadWait:  opts.LoadWait,
		logger:    logger,
		templates: tmpl,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Serve static files.
	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Pages.
	r.Get("/", s.handleHome)
	r.Get("/views/{viewID}", s.handleView)
	r.Post("/views/{viewID}/close", s.handleCloseView)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Frontend listening", "addr", addr)
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

// --- Page Handlers ---

// handleHome mounts a fresh view, which issues the one fetch for this page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	id, v := s.views.Mount()

	ctx, cancel := context.WithTimeout(r.Context(), s.loadWait)
	defer cancel()
	s.render(w, id, v.Wait(ctx))
}

// handleView re-renders an existing view; it never fetches.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	v, ok := s.views.Get(id)
	if !ok {
		// Expired or closed: a reload starts over with a new view.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, id, v.Snapshot())
}

func (s *Server) handleCloseView(w http.ResponseWriter, r *http.Request) {
	if !s.views.Remove(chi.URLParam(r, "viewID")) {
		http.Error(w, "View not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"views":  s.views.Len(),
	})
}

// --- Helpers ---

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// Page is the data the layout template renders.
type Page struct {
	Title          string
	ViewID         string
	State          view.State
	Loading        bool
	Failed         bool
	Cards          []card.Card
	RefreshURL     string
	RefreshSeconds int
}

func newPage(id string, snap view.Snapshot) Page {
	return Page{
		Title:          PageTitle,
		ViewID:         id,
		State:          snap.State,
		Loading:        snap.State == view.Loading,
		Failed:         snap.State == view.Failed,
		Cards:          card.FromArticles(snap.Articles),
		RefreshURL:     "/views/" + id,
		RefreshSeconds: refreshSeconds,
	}
}

func (s *Server) render(w http.ResponseWriter, id string, snap view.Snapshot) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.templates.ExecuteTemplate(w, "layout.html", newPage(id, snap)); err != nil {
		s.logger.Error("Template error", "error", err)
		http.Error(w, "Render error", http.StatusInternalServerError)
	}
}
