// Package ops serves the operations endpoints (metrics, memory statistics
// and pprof) on a listener separate from the front door.
package ops

import (
	"net/http"

	infralogger "github.com/Davis1233798/note/infrastructure/logger"
	"github.com/Davis1233798/note/infrastructure/metrics"
	"github.com/Davis1233798/note/infrastructure/monitoring"
	"github.com/Davis1233798/note/infrastructure/profiling"
	"github.com/Davis1233798/note/infrastructure/server"
	"github.com/Davis1233798/note/internal/config"
)

// Route paths served by the operations listener.
const (
	MetricsPath      = "/metrics"
	MemoryHealthPath = "/health/memory"
)

// NewHandler builds the operations mux.
func NewHandler(m *metrics.Metrics, enablePprof bool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET "+MetricsPath, m.Handler())
	mux.HandleFunc("GET "+MemoryHealthPath, monitoring.MemoryHealthHandler)

	if enablePprof {
		profiling.RegisterPprof(mux)
	}

	return mux
}

// NewServer creates the operations server from cfg. It is not bound until
// Listen is called.
func NewServer(cfg *config.Config, m *metrics.Metrics, log infralogger.Logger) *server.Server {
	return server.New(server.Config{
		Name:    "ops",
		Address: cfg.OpsAddress(),
	}, NewHandler(m, cfg.Ops.Pprof), log)
}
