// Package server exposes the aggregation engine over HTTP: retention
// analysis, waterfall matrix computation, and dataset upload with
// server-side retention for filter-driven recomputation.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/cohortpulse/cohortpulse/internal/cohort"
	"github.com/cohortpulse/cohortpulse/internal/config"
	"github.com/cohortpulse/cohortpulse/internal/record"
	"github.com/cohortpulse/cohortpulse/internal/store"
)

// Server holds the HTTP API state: configuration, the dataset store, and the
// recompute controller over the retained record set.
type Server struct {
	cfg      *config.Config
	db       *store.DB
	validate *validator.Validate

	mu         sync.Mutex
	recomputer *cohort.Recomputer

	http *http.Server
}

// New creates a server over the given configuration and dataset store.
// The store may be nil; the GET matrix path then requires a prior upload in
// the same process.
func New(cfg *config.Config, db *store.DB) *Server {
	s := &Server{
		cfg:      cfg,
		db:       db,
		validate: validator.New(),
	}
	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}
	return s
}

// routes builds the chi router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/upload", s.handleUpload)
		r.Post("/cohort-matrix", s.handleMatrixPost)
		r.Get("/cohort-matrix", s.handleMatrixGet)
	})

	return r
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe starts the HTTP listener and blocks until shutdown.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.cfg.Server.Addr).Msg("http server listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// setRetained swaps in a freshly uploaded record set as the retained set for
// subsequent filter recomputes.
func (s *Server) setRetained(claims []record.ClaimPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputer = cohort.NewRecomputer(claims)
}

// retained returns the current recompute controller, loading the latest
// stored dataset on a cold start. Returns nil when no record set exists
// anywhere.
func (s *Server) retained() (*cohort.Recomputer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recomputer != nil {
		return s.recomputer, nil
	}
	if s.db == nil {
		return nil, nil
	}
	ds, err := s.db.LatestDataset()
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, nil
	}
	claims, err := s.db.LoadClaims(ds.ID)
	if err != nil {
		return nil, err
	}
	s.recomputer = cohort.NewRecomputer(claims)
	return s.recomputer, nil
}
