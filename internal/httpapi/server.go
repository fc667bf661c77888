// Package httpapi exposes KVStore CRUD operations over HTTP: routing,
// bearer-token auth, CORS, request-id propagation, and the input
// validation the wire contract requires before a request reaches the
// store.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/typedkv/kvsvc/internal/config"
	"github.com/typedkv/kvsvc/internal/kvstore"
)

const defaultShutdownTimeout = 5 * time.Second

// Server wires a KVStore to an HTTP listener per cfg.
type Server struct {
	store      *kvstore.Store
	cfg        *config.ServiceConfig
	log        *slog.Logger
	httpServer *http.Server
}

// New builds a Server that has not started listening yet.
func New(store *kvstore.Store, cfg *config.ServiceConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: store, cfg: cfg, log: log}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.maxBodyMiddleware)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/v1/{type}", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleList)
		r.Get("/{key}", s.handleGet)
		r.Put("/{key}", s.handlePut)
		r.Delete("/{key}", s.handleDelete)
	})

	return r
}

// Start begins serving on cfg.ListenAddr. It blocks until the server
// stops, returning nil on a graceful Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router(),
		ReadHeaderTimeout: time.Second,
	}
	s.log.Info("http server listening", "addr", s.cfg.ListenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting up to
// defaultShutdownTimeout for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
