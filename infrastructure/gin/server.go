package gin

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Davis1233798/note/infrastructure/logger"
	"github.com/Davis1233798/note/infrastructure/server"
	"github.com/gin-gonic/gin"
)

// ErrNotListening is returned by Serve when Listen has not been called.
var ErrNotListening = server.ErrNotListening

// Server represents an HTTP server with lifecycle management.
type Server struct {
	router *gin.Engine
	http   *server.Server
	logger logger.Logger
	config *Config
}

// NewServer creates a new HTTP server with the given configuration.
// The setupRoutes function is called to configure service-specific routes
// after standard middleware has been applied.
func NewServer(cfg *Config, log logger.Logger, setupRoutes func(*gin.Engine)) *Server {
	cfg.SetDefaults()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// A trailing slash names a static path, never a redirect to a route.
	router.RedirectTrailingSlash = false

	// 1. Recovery first to catch panics
	router.Use(RecoveryMiddleware(log))

	// 2. Request ID + context-scoped logger
	router.Use(RequestIDLoggerMiddleware(log))

	// 3. Request logging (picks up request_id set by step 2)
	router.Use(LoggerMiddleware(log))

	// 4. CORS handling
	router.Use(CORSMiddleware(cfg.CORS))

	if setupRoutes != nil {
		setupRoutes(router)
	}

	httpServer := server.New(server.Config{
		Name:            cfg.ServiceName,
		Address:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, router, log)

	return &Server{
		router: router,
		http:   httpServer,
		logger: log,
		config: cfg,
	}
}

// Router returns the underlying Gin engine for additional configuration.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// HTTPServer returns the underlying http.Server.
func (s *Server) HTTPServer() *http.Server {
	return s.http.HTTPServer()
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Listen binds the configured address. It is a no-op when the server is
// already bound. Port 0 picks a free port; use Addr to learn which.
func (s *Server) Listen() error {
	return s.http.Listen()
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	return s.http.Addr()
}

// Serve accepts connections on the listener bound by Listen. It blocks until
// the server is shut down, in which case it returns nil.
func (s *Server) Serve() error {
	s.logger.Info("Serving service",
		logger.String("service", s.config.ServiceName),
		logger.String("version", s.config.ServiceVersion),
		logger.String("address", s.Addr()),
		logger.Duration("read_timeout", s.config.ReadTimeout),
		logger.Duration("write_timeout", s.config.WriteTimeout),
	)
	return s.http.Serve()
}

// Start binds and serves in a blocking manner.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// StartAsync binds synchronously, then serves in a goroutine. A bind error is
// returned directly; later serve errors arrive on the channel, which is
// closed when serving stops.
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

// Shutdown gracefully shuts down the server with the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// ShutdownWithTimeout gracefully shuts down the server with a custom timeout.
func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// RunWithGracefulShutdown starts the server and handles graceful shutdown
// on SIGINT or SIGTERM signals or when the context is cancelled.
func (s *Server) RunWithGracefulShutdown(ctx context.Context) error {
	errCh, err := s.StartAsync()
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Info("Shutdown signal received",
			logger.String("signal", sig.String()),
		)
	case <-ctx.Done():
		s.logger.Info("Context cancelled, shutting down")
	}

	// Fresh context: the caller's may already be cancelled.
	//nolint:contextcheck // shutdown must outlive the cancelled parent
	return s.Shutdown(context.Background())
}

// Run is a convenience method that creates a context and runs the server
// with graceful shutdown handling.
func (s *Server) Run() error {
	return s.RunWithGracefulShutdown(context.Background())
}
