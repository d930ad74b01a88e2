// Package server hosts the HTTP handlers behind the shared middleware chain
// and serves the health, readiness and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"ifc-api/internal/common/errors"
	commonhttp "ifc-api/internal/common/http"
	"ifc-api/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteHandler is implemented by every endpoint package's Handler.
type RouteHandler interface {
	http.Handler
	GetRoute() string
}

type Options struct {
	Config *Config
	Routes []RouteHandler
	// Ready reports whether the service can take traffic. Nil means always.
	Ready  func(ctx context.Context) error
	Logger logger.Logger
}

type Server struct {
	config     *Config
	logger     logger.Logger
	handler    http.Handler
	httpServer *http.Server
	listener   net.Listener
	ready      func(ctx context.Context) error
	draining   atomic.Bool
	serveErr   chan error
}

func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	s := &Server{
		config:   cfg,
		logger:   log,
		ready:    opts.Ready,
		serveErr: make(chan error, 1),
	}

	mux := http.NewServeMux()
	for _, route := range opts.Routes {
		mux.Handle(route.GetRoute(), route)
	}
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	if cfg.MetricsEnabled {
		mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	s.handler = instrument(log, recoverPanics(log, cors(cfg.CORSOrigins, mux)))
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// Handler returns the full middleware chain, for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	s.listener = listener

	s.logger.Info("HTTP server listening", map[string]interface{}{
		"address": listener.Addr().String(),
	})

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server failed", map[string]interface{}{
				"error": err.Error(),
			})
			s.serveErr <- err
		}
		close(s.serveErr)
	}()
	return nil
}

// Addr returns the bound listener address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Errors delivers a fatal serve error, then closes when serving stops.
func (s *Server) Errors() <-chan error {
	return s.serveErr
}

// Shutdown marks the server not ready and drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.draining.Store(true)

	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped", nil)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = commonhttp.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.draining.Load() {
		errors.WriteError(w, http.StatusServiceUnavailable, &errors.StandardError{
			Code:    errors.ErrCodeInternal,
			Message: "Server is shutting down",
		})
		return
	}
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			errors.WriteError(w, http.StatusServiceUnavailable, &errors.StandardError{
				Code:    errors.ErrCodeInternal,
				Message: fmt.Sprintf("Not ready: %s", err.Error()),
			})
			return
		}
	}
	_ = commonhttp.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
