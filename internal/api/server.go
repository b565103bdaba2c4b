// Package api assembles the note-backend HTTP server.
package api

import (
	"time"

	infragin "github.com/Davis1233798/note/infrastructure/gin"
	infralogger "github.com/Davis1233798/note/infrastructure/logger"
	"github.com/Davis1233798/note/infrastructure/metrics"
	"github.com/Davis1233798/note/internal/config"
	"github.com/Davis1233798/note/internal/handler"
	"github.com/gin-gonic/gin"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// NewServer creates the front door server. m may be nil when metrics are not
// collected.
func NewServer(
	staticHandler *handler.StaticHandler,
	cfg *config.Config,
	m *metrics.Metrics,
	log infralogger.Logger,
) *infragin.Server {
	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithHost(cfg.Service.Host).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithHealthPath(config.DefaultHealthPath).
		WithCORS(infragin.CORSConfig{
			Enabled:        true,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
		}).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, staticHandler)
		})

	if m != nil {
		builder = builder.WithMiddleware(m.Middleware())
	}

	return builder.Build()
}
