package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Davis1233798/note/infrastructure/logger"
	"github.com/Davis1233798/note/infrastructure/metrics"
	"github.com/Davis1233798/note/infrastructure/profiling"
	"github.com/Davis1233798/note/internal/api"
	"github.com/Davis1233798/note/internal/config"
	"github.com/Davis1233798/note/internal/handler"
	"github.com/Davis1233798/note/internal/ops"
)

// runServe loads configuration, binds the listeners and serves until ctx is
// cancelled or a shutdown signal arrives. Every failure before the listeners
// are bound is returned and ends the process.
func runServe(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := createLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	return runServer(ctx, cfg, log)
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// runServer wires the front door and the optional operations listener.
func runServer(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	profiler, err := profiling.StartPyroscope(cfg.Ops.Pyroscope, cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", logger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	m := metrics.New(cfg.Service.Name)
	staticHandler := handler.NewStaticHandler(cfg.Static.Root, cfg.Static.Fallback, log)
	checkFallback(cfg, log)

	server := api.NewServer(staticHandler, cfg, m, log)
	if err := server.Listen(); err != nil {
		log.Error("Failed to bind front door", logger.String("address", cfg.Address()), logger.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Ops.Enabled {
		stopOps, opsErr := startOps(ctx, cancel, cfg, m, log)
		if opsErr != nil {
			_ = server.Shutdown(context.Background())
			return opsErr
		}
		defer stopOps()
	}

	log.Info("Note backend starting",
		logger.String("address", server.Addr()),
		logger.String("static_root", cfg.Static.Root),
		logger.Bool("ops_enabled", cfg.Ops.Enabled),
	)

	if err := server.RunWithGracefulShutdown(ctx); err != nil {
		log.Error("Server error", logger.Error(err))
		return err
	}

	log.Info("Note backend exited cleanly")
	return nil
}

// startOps binds and serves the operations listener. A serve failure cancels
// the front door through cancel. The returned func shuts the listener down.
func startOps(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg *config.Config,
	m *metrics.Metrics,
	log logger.Logger,
) (func(), error) {
	opsServer := ops.NewServer(cfg, m, log)

	errCh, err := opsServer.StartAsync()
	if err != nil {
		log.Error("Failed to bind ops listener", logger.String("address", cfg.OpsAddress()), logger.Error(err))
		return nil, err
	}

	go func() {
		if serveErr := <-errCh; serveErr != nil {
			log.Error("Ops server error", logger.Error(serveErr))
			cancel()
		}
	}()

	return func() {
		if shutdownErr := opsServer.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			log.Warn("Ops shutdown error", logger.Error(shutdownErr))
		}
	}, nil
}

// checkFallback warns at startup when the SPA entry point is missing; every
// unknown path would then answer 404.
func checkFallback(cfg *config.Config, log logger.Logger) {
	info, err := os.Stat(cfg.Static.FallbackPath())
	if err == nil && info.Mode().IsRegular() {
		return
	}

	log.Warn("Static fallback file not found",
		logger.String("fallback", cfg.Static.FallbackPath()),
	)
}
