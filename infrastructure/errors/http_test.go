package errors_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	infraerrors "github.com/Davis1233798/note/infrastructure/errors"
	"github.com/stretchr/testify/assert"
)

func response(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestFromResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    int
		body    string
		message string
		text    string
	}{
		{
			name:    "json error field",
			code:    http.StatusNotFound,
			body:    `{"error":"Not found"}`,
			message: "Not found",
			text:    "HTTP 404 Not Found: Not found",
		},
		{
			name:    "json message field",
			code:    http.StatusInternalServerError,
			body:    `{"error":"","message":"An unexpected error occurred"}`,
			message: "An unexpected error occurred",
			text:    "HTTP 500 Internal Server Error: An unexpected error occurred",
		},
		{
			name:    "plain text",
			code:    http.StatusBadGateway,
			body:    "upstream down\n",
			message: "upstream down",
			text:    "HTTP 502 Bad Gateway: upstream down",
		},
		{
			name: "empty body",
			code: http.StatusServiceUnavailable,
			text: "HTTP 503 Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := infraerrors.FromResponse(response(tt.code, tt.body))

			assert.Equal(t, tt.code, err.StatusCode)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.text, err.Error())
		})
	}
}

func TestGetHTTPStatusCode(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("health check: %w", infraerrors.FromResponse(response(http.StatusTeapot, "")))

	code, ok := infraerrors.GetHTTPStatusCode(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusTeapot, code)

	_, ok = infraerrors.GetHTTPStatusCode(io.EOF)
	assert.False(t, ok)
}
