package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/engine"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/server/middleware"
	"sentinel-hq/sentinel/pkg/telemetry/health"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
	"sentinel-hq/sentinel/pkg/telemetry/tracing"
)

// HealthSource reports provider health. *providers.Registry implements it.
type HealthSource interface {
	Health() map[string]providers.ProviderHealth
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves the collector at /metrics.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = collector
	}
}

// WithHealthSource reports provider health at /health.
func WithHealthSource(h HealthSource) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithReadiness serves the checker's report at /ready.
func WithReadiness(c *health.Checker) Option {
	return func(s *Server) {
		s.readiness = c
	}
}

// WithRateLimit wraps the routes that spend provider budget (/v1/ask and
// /v1/analysis) with limit.
func WithRateLimit(limit func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.rateLimit = limit
	}
}

// WithTracer records a span per request and continues propagated traces.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// Server is the HTTP surface of the engine.
type Server struct {
	config    config.ServerConfig
	engine    *engine.Engine
	metrics   *metrics.Collector
	health    HealthSource
	readiness *health.Checker
	rateLimit func(http.Handler) http.Handler
	tracer    *tracing.Tracer
	logger    *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	isRunning  bool
}

// NewServer creates a server over eng.
func NewServer(cfg config.ServerConfig, eng *engine.Engine, opts ...Option) *Server {
	s := &Server{
		config: cfg,
		engine: eng,
		logger: slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	limit := s.rateLimit
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}

	mux.HandleFunc("GET /v1/insights", s.handleGetInsights)
	mux.HandleFunc("POST /v1/insights/viewed", s.handleMarkViewed)
	mux.HandleFunc("POST /v1/insights/dismiss", s.handleDismiss)
	mux.HandleFunc("GET /v1/context", s.handleGetContext)
	mux.HandleFunc("POST /v1/context", s.handleInitializeContext)
	mux.HandleFunc("PATCH /v1/context", s.handleUpdateContext)
	mux.Handle("POST /v1/analysis/{type}", limit(http.HandlerFunc(s.handleTriggerAnalysis)))
	mux.Handle("POST /v1/ask", limit(http.HandlerFunc(s.handleAsk)))
	mux.HandleFunc("GET /v1/usage", s.handleUsage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	if s.readiness != nil {
		mux.Handle("GET /ready", s.readiness.Handler())
	}

	var handler http.Handler = mux
	handler = tracing.HTTPMiddleware(s.tracer)(handler)
	handler = middleware.CORSMiddleware(s.config.AllowedOrigins)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)
	return handler
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.listener = ln
	s.isRunning = true
	srv := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	}
}

// Addr returns the bound address once Start is listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting up to the configured shutdown timeout
// for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	srv := s.httpServer
	s.mu.Unlock()

	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
