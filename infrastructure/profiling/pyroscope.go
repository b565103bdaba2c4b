package profiling

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Davis1233798/note/infrastructure/logger"
	"github.com/grafana/pyroscope-go"
)

// Default Pyroscope settings.
const (
	DefaultPyroscopeServerURL   = "http://pyroscope:4040"
	DefaultPyroscopeEnvironment = "development"
)

// PyroscopeConfig configures continuous profiling.
type PyroscopeConfig struct {
	Enabled     bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"enabled"`
	ServerURL   string `env:"PYROSCOPE_SERVER_URL"        yaml:"server_url"`
	Environment string `env:"PYROSCOPE_ENVIRONMENT"       yaml:"environment"`
}

// SetDefaults fills in the server URL and environment tag.
func (c *PyroscopeConfig) SetDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultPyroscopeServerURL
	}
	if c.Environment == "" {
		c.Environment = DefaultPyroscopeEnvironment
	}
}

// PyroscopeProfiler holds the Pyroscope profiler instance
type PyroscopeProfiler struct {
	profiler *pyroscope.Profiler
}

// StartPyroscope starts continuous profiling for serviceName. It returns a
// nil profiler and no error when profiling is disabled.
func StartPyroscope(cfg PyroscopeConfig, serviceName, version string, log logger.Logger) (*PyroscopeProfiler, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg.SetDefaults()

	pcfg := pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   cfg.ServerURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": cfg.Environment,
			"version":     version,
			"hostname":    getHostname(),
			"go_version":  runtime.Version(),
		},
	}

	profiler, err := pyroscope.Start(pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}

	log.Info("Pyroscope continuous profiling started",
		logger.String("application", pcfg.ApplicationName),
		logger.String("server", cfg.ServerURL),
		logger.String("environment", cfg.Environment),
	)

	return &PyroscopeProfiler{profiler: profiler}, nil
}

// Stop gracefully stops the Pyroscope profiler
func (p *PyroscopeProfiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
