// Package server provides net/http server lifecycle helpers: synchronous
// binding, serving and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Davis1233798/note/infrastructure/logger"
)

// DefaultShutdownTimeout is the default timeout for graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// ErrNotListening is returned by Serve when Listen has not been called.
var ErrNotListening = errors.New("server is not listening")

// Config holds server configuration.
type Config struct {
	// Name identifies the server in log lines.
	Name            string
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SetDefaults applies default values to the config.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Server wraps an http.Server whose listener is bound separately from
// serving, so bind errors are reported before anything runs in the
// background.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server for handler. Nothing is bound until Listen.
func New(cfg Config, handler http.Handler, log logger.Logger) *Server {
	cfg.SetDefaults()

	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: log,
	}
}

// HTTPServer returns the underlying http.Server.
func (s *Server) HTTPServer() *http.Server {
	return s.srv
}

// Listen binds the configured address. Calling it again is a no-op.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}

	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.srv.Addr
}

// Serve accepts connections on the bound listener until Shutdown, after
// which it returns nil.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln == nil {
		return ErrNotListening
	}

	s.logger.Info("Starting HTTP server",
		logger.String("server", s.cfg.Name),
		logger.String("address", ln.Addr().String()),
	)

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server error: %w", s.cfg.Name, err)
	}

	return nil
}

// StartAsync binds synchronously and serves in a goroutine. Serve errors
// arrive on the returned channel, which is closed when serving stops.
func (s *Server) StartAsync() (<-chan error, error) {
	if err := s.Listen(); err != nil {
		return nil, err
	}

	errCh := make(chan error, 1)

	go func() {
		if err := s.Serve(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown drains in-flight requests, bounded by the configured shutdown
// timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server",
		logger.String("server", s.cfg.Name),
		logger.Duration("timeout", s.cfg.ShutdownTimeout),
	)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s server shutdown error: %w", s.cfg.Name, err)
	}

	// Serve closes the listener itself; this covers a server that was bound
	// but never served.
	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Unlock()

	s.logger.Info("HTTP server stopped gracefully", logger.String("server", s.cfg.Name))
	return nil
}
