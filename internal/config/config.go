// Package config defines the note-backend configuration: defaults, YAML
// layout, environment overrides and validation.
package config

import (
	"fmt"
	"net/http"
	"path/filepath"

	infraconfig "github.com/Davis1233798/note/infrastructure/config"
	"github.com/Davis1233798/note/infrastructure/profiling"
)

// Default configuration values.
const (
	ServiceName    = "note-backend"
	ServiceVersion = "0.1.0"

	DefaultPort       = 8080
	DefaultHealthPath = "/api/health"
	DefaultStaticRoot = "static"
	DefaultFallback   = "index.html"
	DefaultOpsHost    = "localhost"
	DefaultOpsPort    = 9090
	DefaultConfigPath = "config.yml"

	allOrigins = "*"
	allHeaders = "*"
)

// Config holds the application configuration.
type Config struct {
	Service ServiceConfig             `yaml:"service"`
	Static  StaticConfig              `yaml:"static"`
	CORS    CORSConfig                `yaml:"cors"`
	Ops     OpsConfig                 `yaml:"ops"`
	Logging infraconfig.LoggingConfig `yaml:"logging"`
}

// ServiceConfig holds the front door listener settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Host    string `env:"HOST"      yaml:"host"`
	Port    int    `env:"PORT"      yaml:"port"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// StaticConfig locates the asset directory and the SPA entry point.
type StaticConfig struct {
	Root     string `env:"STATIC_DIR"      yaml:"root"`
	Fallback string `env:"STATIC_FALLBACK" yaml:"fallback"`
}

// FallbackPath returns the fallback file joined onto the asset root.
func (s *StaticConfig) FallbackPath() string {
	return filepath.Join(s.Root, s.Fallback)
}

// CORSConfig holds the cross-origin policy.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// OpsConfig configures the operations listener. It stays off unless enabled
// and binds localhost by default.
type OpsConfig struct {
	Enabled   bool                      `env:"OPS_ENABLED"      yaml:"enabled"`
	Host      string                    `env:"OPS_HOST"         yaml:"host"`
	Port      int                       `env:"OPS_PORT"         yaml:"port"`
	Pprof     bool                      `env:"ENABLE_PROFILING" yaml:"pprof"`
	Pyroscope profiling.PyroscopeConfig `yaml:"pyroscope"`
}

// Load loads configuration from the specified path. A missing file is not an
// error; defaults and environment variables cover every setting.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setStaticDefaults(&cfg.Static)
	setCORSDefaults(&cfg.CORS)
	setOpsDefaults(&cfg.Ops)
	cfg.Logging.SetDefaults()
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = ServiceName
	}
	if svc.Version == "" {
		svc.Version = ServiceVersion
	}
	if svc.Port == 0 {
		svc.Port = DefaultPort
	}
}

func setStaticDefaults(s *StaticConfig) {
	if s.Root == "" {
		s.Root = DefaultStaticRoot
	}
	if s.Fallback == "" {
		s.Fallback = DefaultFallback
	}
}

func setCORSDefaults(c *CORSConfig) {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{allOrigins}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodPatch,
		}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{allHeaders}
	}
}

func setOpsDefaults(ops *OpsConfig) {
	if ops.Host == "" {
		ops.Host = DefaultOpsHost
	}
	if ops.Port == 0 {
		ops.Port = DefaultOpsPort
	}
	ops.Pyroscope.SetDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("static.root", c.Static.Root); err != nil {
		return err
	}
	if filepath.IsAbs(c.Static.Fallback) {
		return &infraconfig.ValidationError{
			Field:   "static.fallback",
			Message: "must be relative to static.root",
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Ops.Enabled {
		if err := infraconfig.ValidatePort("ops.port", c.Ops.Port); err != nil {
			return err
		}
		if c.Ops.Port == c.Service.Port {
			return &infraconfig.ValidationError{
				Field:   "ops.port",
				Message: fmt.Sprintf("must differ from service.port (%d)", c.Service.Port),
			}
		}
	}
	return nil
}

// Address returns the front door listen address.
func (c *Config) Address() string {
	return infraconfig.JoinHostPort(c.Service.Host, c.Service.Port)
}

// OpsAddress returns the operations listener address.
func (c *Config) OpsAddress() string {
	return infraconfig.JoinHostPort(c.Ops.Host, c.Ops.Port)
}
