package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/satonic/satonic-storefront/internal/config"
)

// HTTPServer wraps http.Server with start and graceful shutdown helpers
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer creates a configured HTTP server instance
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *HTTPServer {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
	}
	return &HTTPServer{server: srv}
}

// Addr returns the listen address
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Start runs the server in the current goroutine. A graceful shutdown is
// not reported as an error.
func (s *HTTPServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
