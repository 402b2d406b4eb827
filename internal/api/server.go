// Package api exposes the review pipeline and the quality gate over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docguard/internal/config"
	"github.com/dgallion1/docguard/internal/llm"
	"github.com/dgallion1/docguard/internal/pathstore"
	"github.com/dgallion1/docguard/internal/pipeline"
	"github.com/dgallion1/docguard/internal/quality"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Reviews reads and deletes stored reviews.
type Reviews interface {
	ListReviews(ctx context.Context, userID string, limit int) ([]pathstore.ReviewListing, error)
	GetReview(ctx context.Context, userID, docID string) (*pathstore.Review, error)
	DeleteReview(ctx context.Context, userID, docID string) (bool, error)
}

// Deps are the components the handlers call into.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Reviews      Reviews
	Validator    *quality.Validator
	LLMStats     *llm.LLMStats
	Model        string
}

// Server is the HTTP API server for docguard.
type Server struct {
	router chi.Router
	deps   Deps
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/ingest", s.handleIngest)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)
		r.Post("/api/ingest/batch", s.handleBatchIngest)

		r.Post("/api/validate", s.handleValidate)

		r.Get("/api/reviews", s.handleListReviews)
		r.Get("/api/reviews/{docID}", s.handleGetReview)
		r.Delete("/api/reviews/{docID}", s.handleDeleteReview)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.deps.Orchestrator != nil {
		body["queue_depth"] = s.deps.Orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
