// Package server provides the HTTP API over a loaded vector store.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/store"
)

// Server serves semantic search over a vector store.
type Server struct {
	encoder embedding.Encoder
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server

	mu    sync.RWMutex
	store *store.Store
}

// NewServer creates a server over the given store and encoder.
func NewServer(s *store.Store, encoder embedding.Encoder, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		store:   s,
		encoder: encoder,
		config:  cfg,
		logger:  logger,
	}
}

// ReplaceStore swaps in a new store (used after a watch-triggered rebuild).
func (s *Server) ReplaceStore(newStore *store.Store) {
	s.mu.Lock()
	s.store = newStore
	s.mu.Unlock()
}

func (s *Server) currentStore() *store.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Router returns the HTTP handler with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/corpora", s.handleCorpora)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
