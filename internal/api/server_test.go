package api_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	infragin "github.com/Davis1233798/note/infrastructure/gin"
	"github.com/Davis1233798/note/infrastructure/logger"
	"github.com/Davis1233798/note/infrastructure/metrics"
	"github.com/Davis1233798/note/internal/api"
	"github.com/Davis1233798/note/internal/config"
	"github.com/Davis1233798/note/internal/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	healthJSON = `{"status":"ok","service":"note-backend","version":"0.1.0"}`
	indexHTML  = "<!doctype html><div id=app></div>"
	logoSVG    = `<svg xmlns="http://www.w3.org/2000/svg"></svg>`
)

func testConfig(staticRoot string) *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{
			Name:    config.ServiceName,
			Version: config.ServiceVersion,
			Host:    "127.0.0.1",
			Port:    config.DefaultPort,
		},
		Static: config.StaticConfig{Root: staticRoot, Fallback: config.DefaultFallback},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
			AllowedHeaders: []string{"*"},
		},
	}
}

func newTestServer(t *testing.T, withIndex bool) (*infragin.Server, *metrics.Metrics) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "img", "logo.svg"), []byte(logoSVG), 0o600))
	if withIndex {
		require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte(indexHTML), 0o600))
	}

	cfg := testConfig(root)
	log := logger.NewNop()
	m := metrics.New(cfg.Service.Name)
	static := handler.NewStaticHandler(cfg.Static.Root, cfg.Static.Fallback, log)

	return api.NewServer(static, cfg, m, log), m
}

func serve(srv *infragin.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, PATCH", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestHealth_FixedPayload(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		header map[string]string
	}{
		{name: "plain get", method: http.MethodGet, target: "/api/health"},
		{name: "query string", method: http.MethodGet, target: "/api/health?verbose=1&probe=x"},
		{name: "post with body", method: http.MethodPost, target: "/api/health", body: `{"ignored":true}`},
		{name: "put garbage", method: http.MethodPut, target: "/api/health", body: "\x00\x01not json"},
		{name: "delete", method: http.MethodDelete, target: "/api/health"},
		{name: "patch", method: http.MethodPatch, target: "/api/health"},
		{
			name:   "odd headers",
			method: http.MethodGet,
			target: "/api/health",
			header: map[string]string{"Accept": "text/plain", "Authorization": "Bearer nope", "Origin": "https://x.test"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			w := serve(srv, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, healthJSON, w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			assertCORS(t, w)
		})
	}
}

func TestStatic_AssetAndFallback(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)

	t.Run("existing asset", func(t *testing.T) {
		t.Parallel()

		w := serve(srv, httptest.NewRequest(http.MethodGet, "/img/logo.svg", http.NoBody))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, logoSVG, w.Body.String())
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assertCORS(t, w)
	})

	for _, target := range []string{"/", "/notes/7/edit", "/api/other", "/api/health/", "/img/missing.png"} {
		t.Run("fallback "+target, func(t *testing.T) {
			t.Parallel()

			w := serve(srv, httptest.NewRequest(http.MethodGet, target, http.NoBody))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, indexHTML, w.Body.String())
			assertCORS(t, w)
		})
	}
}

func TestStatic_MissingFallbackStillCarriesCORS(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/notes", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	assertCORS(t, w)
}

func TestPreflight(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)

	for _, target := range []string{"/api/health", "/img/logo.svg", "/anything"} {
		req := httptest.NewRequest(http.MethodOptions, target, http.NoBody)
		req.Header.Set("Origin", "https://notes.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)

		w := serve(srv, req)

		assert.Equal(t, http.StatusNoContent, w.Code, target)
		assert.Empty(t, w.Body.String(), target)
		assertCORS(t, w)
	}
}

func TestConcurrentRequests(t *testing.T) {
	t.Parallel()

	srv, m := newTestServer(t, true)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan string, workers*2)

	for range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))
			if w.Code != http.StatusOK || w.Body.String() != healthJSON {
				errs <- "health: " + w.Body.String()
			}
		}()
		go func() {
			defer wg.Done()
			w := serve(srv, httptest.NewRequest(http.MethodGet, "/img/logo.svg", http.NoBody))
			if w.Code != http.StatusOK || w.Body.String() != logoSVG {
				errs <- "static: " + w.Body.String()
			}
		}()
	}

	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Contains(t, scrape.Body.String(),
		`http_requests_total{method="GET",route="/api/health",service="note-backend",status="200"} 50`)
	assert.Contains(t, scrape.Body.String(),
		`http_requests_total{method="GET",route="static",service="note-backend",status="200"} 50`)
}

func TestRequestIDOnEveryResponse(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)

	for _, target := range []string{"/api/health", "/img/logo.svg", "/deep/link"} {
		w := serve(srv, httptest.NewRequest(http.MethodGet, target, http.NoBody))
		assert.Len(t, w.Header().Get(infragin.RequestIDHeader), 32, target)
	}
}
