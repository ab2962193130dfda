// Package server exposes the relocation pipelines as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/starcalypse/torrentdeck/config"
	"github.com/starcalypse/torrentdeck/relocator"
)

// ConfigStore reads and persists the application config file. Read must not
// apply environment overrides, since clients PUT back what they GET.
type ConfigStore interface {
	Read() (*config.AppConfig, error)
	Save(cfg *config.AppConfig) error
}

// Server wraps the HTTP server and its dependencies
type Server struct {
	http   *http.Server
	ops    *relocator.Operations
	store  ConfigStore
	logger zerolog.Logger
}

// New builds the HTTP server with its router and middlewares
func New(listen string, ops *relocator.Operations, store ConfigStore, logger zerolog.Logger) *Server {
	s := &Server{
		ops:    ops,
		store:  store,
		logger: logger,
	}

	s.http = &http.Server{
		Addr:              listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// execute walks every torrent sequentially, keep this generous
		WriteTimeout:   10 * time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.logger))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		// Rejects the form and text/plain bodies a browser may send cross-site
		// without a preflight. Bodiless requests pass through.
		r.Use(middleware.AllowContentType("application/json"))

		r.Post("/connection/test", s.handleTestConnection)
		r.Post("/scan", s.handleScan)
		r.Post("/execute", s.handleExecute)
		r.Post("/trackers", s.handleTrackers)
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
	})

	return r
}

// Start runs the HTTP server and blocks until it fails or is shut down
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
