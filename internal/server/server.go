// Package server implements the sidestep demo service HTTP surface.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/boilerroom/sidestep/pkg/config"
	"github.com/boilerroom/sidestep/pkg/telemetry"
)

// Server is the sidestep HTTP server. Configuration is held behind an
// atomic pointer so hot reloads swap it without locking request paths.
type Server struct {
	cfg        atomic.Pointer[config.Config]
	logger     *slog.Logger
	metrics    *telemetry.Metrics
	probe      DependencyProbe
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server with the given configuration. A nil logger falls
// back to slog.Default; a nil metrics instance gets a fresh registry.
func New(cfg *config.Config, logger *slog.Logger, metrics *telemetry.Metrics) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}

	s := &Server{
		logger:  logger,
		metrics: metrics,
		probe:   RandomProbe{},
	}
	s.cfg.Store(cfg)
	return s
}

// SetProbe replaces the readiness dependency probe. Tests use this to make
// /ready deterministic.
func (s *Server) SetProbe(p DependencyProbe) {
	if p != nil {
		s.probe = p
	}
}

// ApplyConfig installs a new configuration. Chaos mode, readiness failure
// rate, and slow-delay changes take effect on the next request.
func (s *Server) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	old := s.cfg.Swap(cfg)
	if old != nil && old.Chaos.Enabled != cfg.Chaos.Enabled {
		s.logger.Info("Chaos mode changed", "enabled", cfg.Chaos.Enabled)
	}
}

func (s *Server) config() *config.Config {
	return s.cfg.Load()
}

// Handler builds the full middleware chain around the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /chaos", s.handleChaos)
	mux.HandleFunc("GET /slow", s.handleSlow)
	mux.Handle("GET /metrics", s.metrics.Handler())

	var handler http.Handler = otelhttp.NewHandler(mux, "sidestep.http")
	handler = s.recoverPanics(handler)
	handler = requestID(handler)
	handler = s.metrics.Middleware(handler)
	return handler
}

// Start binds the listener and serves in the background. Use addr ":0" to
// bind an ephemeral port; Addr reports the resolved address.
func (s *Server) Start(addr string) error {
	cfg := s.config()

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info("Server listening", "addr", listener.Addr().String())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
