package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/logger"
	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/Project-Sylos/Nimbus/sdk"
	"github.com/go-chi/chi/v5"
)

// Server represents the HTTP API server
type Server struct {
	router *chi.Mux
	nimbus *sdk.Nimbus
	config *types.APIConfig
	http   *http.Server
}

// NewServer creates a new API server
func NewServer(nimbus *sdk.Nimbus, config *types.APIConfig) *Server {
	router := NewRouter(nimbus).SetupRoutes()

	return &Server{
		router: router,
		nimbus: nimbus,
		config: config,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves until Stop is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	logger.Info("Starting Nimbus API server on %s", s.http.Addr)
	logger.Info("Health check available at http://%s/health", s.http.Addr)

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// GetRouter returns the configured router
func (s *Server) GetRouter() *chi.Mux {
	return s.router
}

// Stop drains in-flight requests and closes the SDK
func (s *Server) Stop(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return s.nimbus.Close()
}
