// Package errors turns unexpected HTTP responses into structured errors.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a response body is kept on an HTTPError.
const maxErrorBody = 4 << 10

// HTTPError represents an HTTP response the caller did not expect.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	Message    string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %s: %s", e.Status, e.Message)
	}
	return "HTTP " + e.Status
}

// FromResponse reads resp's body (up to 4 KiB) and returns it as an
// HTTPError. A JSON body with an "error" or "message" field supplies the
// message; any other body is used verbatim.
func FromResponse(resp *http.Response) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	if httpErr.Status == "" {
		httpErr.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		httpErr.Message = fmt.Sprintf("failed to read response body: %v", err)
		return httpErr
	}
	httpErr.Body = string(bodyBytes)

	var jsonErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(bodyBytes, &jsonErr) == nil && (jsonErr.Error != "" || jsonErr.Message != "") {
		httpErr.Message = jsonErr.Error
		if httpErr.Message == "" {
			httpErr.Message = jsonErr.Message
		}
		return httpErr
	}

	httpErr.Message = strings.TrimSpace(httpErr.Body)
	return httpErr
}

// GetHTTPStatusCode extracts the status code from an HTTPError anywhere in
// err's chain.
func GetHTTPStatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
