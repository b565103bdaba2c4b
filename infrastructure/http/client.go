// Package http builds outbound HTTP clients with bounded timeouts.
package http

import (
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// DefaultDialTimeout bounds establishing the TCP connection.
	DefaultDialTimeout = 5 * time.Second

	// DefaultIdleConnTimeout is the default idle connection timeout
	DefaultIdleConnTimeout = 90 * time.Second

	// DefaultMaxIdleConnsPerHost is the default maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
)

// ClientConfig configures an HTTP client. Zero values take the defaults.
type ClientConfig struct {
	// Timeout limits the whole exchange, body included.
	Timeout time.Duration

	// DialTimeout limits connecting. It is capped at Timeout.
	DialTimeout time.Duration

	// ResponseHeaderTimeout limits the wait for response headers once the
	// request is written. Zero means only Timeout applies.
	ResponseHeaderTimeout time.Duration

	// IdleConnTimeout is how long an idle keep-alive connection is kept.
	IdleConnTimeout time.Duration

	// DisableKeepAlives uses a fresh connection per request, which suits
	// one-shot callers such as probes.
	DisableKeepAlives bool
}

// NewClient creates an HTTP client from cfg. A nil cfg uses the defaults.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = DefaultDialTimeout
	}
	dialTimeout = min(dialTimeout, timeout)

	idleConnTimeout := cfg.IdleConnTimeout
	if idleConnTimeout == 0 {
		idleConnTimeout = DefaultIdleConnTimeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout}).DialContext,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		DisableKeepAlives:     cfg.DisableKeepAlives,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// NewDefaultClient creates a new HTTP client with all default settings.
func NewDefaultClient() *http.Client {
	return NewClient(nil)
}
