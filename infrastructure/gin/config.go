// Package gin provides the shared HTTP server plumbing for Gin-based
// services: middleware ordering, CORS, request logging, the health route and
// server lifecycle.
package gin

import (
	"net/http"
	"time"
)

// Default timeout values for HTTP server configuration.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultCORSMaxAge      = 12 * time.Hour
	DefaultHealthPath      = "/health"
	DefaultServiceVersion  = "1.0.0"
)

// Wildcard allows every origin or header when used as the sole list entry.
const Wildcard = "*"

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the interface to bind; empty means all interfaces.
	Host string

	// Port is the TCP port to listen on.
	Port int

	// Debug switches Gin to debug mode.
	Debug bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// CORS holds the CORS configuration.
	CORS CORSConfig

	// HealthPath is where the health endpoint is mounted.
	HealthPath string

	// ServiceName and ServiceVersion are reported by the health endpoint.
	ServiceName    string
	ServiceVersion string
}

// CORSConfig holds the CORS middleware configuration.
type CORSConfig struct {
	// Enabled determines whether CORS headers are written at all.
	Enabled bool

	// AllowedOrigins lists origins allowed to call the service. "*" allows all.
	AllowedOrigins []string

	// AllowedMethods is sent verbatim in Access-Control-Allow-Methods.
	AllowedMethods []string

	// AllowedHeaders is sent verbatim in Access-Control-Allow-Headers. "*"
	// allows any header.
	AllowedHeaders []string

	// AllowCredentials adds Access-Control-Allow-Credentials: true.
	AllowCredentials bool

	// MaxAge is how long a preflight result may be cached.
	MaxAge time.Duration
}

// SetDefaults applies default values to the config where values are not set.
func (c *Config) SetDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.HealthPath == "" {
		c.HealthPath = DefaultHealthPath
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = DefaultServiceVersion
	}

	c.CORS.SetDefaults()
}

// DefaultAllowedMethods returns the methods advertised to browsers.
func DefaultAllowedMethods() []string {
	return []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodPatch,
	}
}

// SetDefaults applies the permissive policy: any origin, any header and the
// methods from DefaultAllowedMethods. A zero CORSConfig is enabled; set
// AllowedOrigins to disable it explicitly.
func (c *CORSConfig) SetDefaults() {
	if !c.Enabled && len(c.AllowedOrigins) == 0 {
		c.Enabled = true
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{Wildcard}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = DefaultAllowedMethods()
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{Wildcard}
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}
}

// NewConfig creates a Config with defaults applied.
func NewConfig(serviceName string, port int) *Config {
	cfg := &Config{
		Port:        port,
		ServiceName: serviceName,
		CORS:        CORSConfig{Enabled: true},
	}
	cfg.SetDefaults()
	return cfg
}
