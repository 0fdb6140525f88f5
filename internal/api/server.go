// Package api serves the openfootprint REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/config"
)

// Server is the HTTP front end over a catalog.Service.
type Server struct {
	svc     *catalog.Service
	cfg     config.ServerConfig
	logger  zerolog.Logger
	metrics *Metrics
	ui      http.Handler
	handler http.Handler
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the base request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithUI mounts h under /ui/.
func WithUI(h http.Handler) Option {
	return func(s *Server) { s.ui = h }
}

// WithMetrics uses m instead of a fresh registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds the server and its middleware chain.
func New(svc *catalog.Service, cfg config.ServerConfig, opts ...Option) (*Server, error) {
	s := &Server{svc: svc, cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		m, err := NewMetrics()
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		s.metrics = m
	}

	mux := http.NewServeMux()
	s.routes(mux)

	h := withMetrics(s.metrics, withJSONFallback(mux))
	h = withRateLimit(cfg.RateLimit, s.metrics, h)
	h = withCORS(cfg.AllowedOrigins, h)
	h = withRecovery(h)
	h = withLogging(s.logger, h)
	s.handler = h
	return s, nil
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// ListenAndServe listens on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	s.logger.Info().Dur("timeout", timeout).Msg("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
