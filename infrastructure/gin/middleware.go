package gin

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Davis1233798/note/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin context key holding the request ID.
	RequestIDKey = "request_id"

	// maxRequestIDLen caps inbound IDs so a client cannot bloat every log line.
	maxRequestIDLen = 128
)

// LoggerMiddleware logs one line per request with method, path, status,
// duration and client IP. It prefers the request-scoped logger installed by
// RequestIDLoggerMiddleware so the line carries the request ID.
func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []logger.Field{
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", statusCode),
			logger.Duration("duration", duration),
			logger.String("client_ip", c.ClientIP()),
			logger.Int("bytes", c.Writer.Size()),
		}

		if query != "" {
			fields = append(fields, logger.String("query", query))
		}

		if !isHealthPath(path) {
			fields = append(fields, logger.String("user_agent", c.Request.UserAgent()))
		}

		reqLog := log
		if _, ok := c.Get(RequestIDKey); ok {
			reqLog = logger.FromContext(c.Request.Context())
		}

		// Errors go into the same entry to avoid double-logging.
		if len(c.Errors) > 0 {
			errorMessages := make([]string, len(c.Errors))
			for i, err := range c.Errors {
				errorMessages[i] = err.Err.Error()
			}
			fields = append(fields, logger.Strings("errors", errorMessages))
			reqLog.Error("HTTP request with errors", fields...)
			return
		}

		reqLog.Info("HTTP request", fields...)
	}
}

func isHealthPath(path string) bool {
	return strings.HasPrefix(path, "/health") || strings.HasSuffix(path, "/health")
}

// CORSMiddleware writes the configured CORS headers on every response and
// answers preflight requests with 204.
func CORSMiddleware(cfg CORSConfig) gin.HandlerFunc {
	cfg.SetDefaults()

	allowedMethods := strings.Join(cfg.AllowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := formatMaxAge(cfg.MaxAge)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		allowedOrigin := determineAllowedOrigin(c.GetHeader("Origin"), cfg.AllowedOrigins)
		if allowedOrigin == "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowedOrigin)
		h.Set("Access-Control-Allow-Methods", allowedMethods)
		h.Set("Access-Control-Allow-Headers", allowedHeaders)
		h.Set("Access-Control-Max-Age", maxAge)
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if allowedOrigin != Wildcard {
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// determineAllowedOrigin returns the Access-Control-Allow-Origin value for
// origin, or "" when the origin is not allowed.
func determineAllowedOrigin(origin string, allowedOrigins []string) string {
	for _, allowed := range allowedOrigins {
		if allowed == Wildcard {
			return Wildcard
		}
		if origin != "" && allowed == origin {
			return origin
		}
	}

	// Same-origin requests carry no Origin header.
	if origin == "" {
		return Wildcard
	}

	return ""
}

func formatMaxAge(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds <= 0 {
		return "0"
	}
	return strconv.Itoa(seconds)
}

// RecoveryMiddleware catches panics, logs them and answers 500.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					logger.Any("error", err),
					logger.String("path", c.Request.URL.Path),
					logger.String("method", c.Request.Method),
					logger.String("client_ip", c.ClientIP()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal server error",
					"code":    "INTERNAL_ERROR",
					"message": "An unexpected error occurred",
				})
			}
		}()

		c.Next()
	}
}

// RequestIDLoggerMiddleware assigns every request an ID, echoes it in the
// response header and stores a logger carrying it in the request context.
// An inbound X-Request-ID is kept when it is no longer than 128 bytes.
func RequestIDLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = newRequestID()
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		reqLog := log.With(logger.String(RequestIDKey, requestID))
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()
	}
}

// newRequestID returns a random 32-character hex ID.
func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
