package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"sift-api/internal/pkg/metrics"
	"sift-api/internal/repository/memory"
	"sift-api/internal/service/sift"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

type panickySifter struct{}

func (panickySifter) Sift(ctx context.Context, req sift.Request) (*sift.Result, error) {
	panic("boom")
}

func newTestHandler(apiKey string) http.Handler {
	repo := memory.NewPageRepository()
	pipeline := sift.NewPipeline(repo, sift.Deps{}, createTestLogger())
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, reg)
	return NewRouter(createTestLogger(), apiKey, repo, pipeline, m).SetupRoutes()
}

func TestRouter_Auth(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		header     string
		path       string
		wantStatus int
	}{
		{"open when no key configured", "", "", "/api/pages", http.StatusOK},
		{"missing header", "secret", "", "/api/pages", http.StatusUnauthorized},
		{"wrong key", "secret", "Bearer nope", "/api/pages", http.StatusUnauthorized},
		{"valid key", "secret", "Bearer secret", "/api/pages", http.StatusOK},
		{"health is public", "secret", "", "/health", http.StatusOK},
		{"metrics are public", "secret", "", "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newTestHandler(tt.apiKey).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_SiftEndToEnd(t *testing.T) {
	h := newTestHandler("")

	req := httptest.NewRequest(http.MethodPost, "/api/sift", strings.NewReader(`{"url":"https://www.example.com/post"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`"success":true`, `"title":"Saved from example.com"`, `"tags":["Bookmark"]`, `"source":"sift-api"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sift", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"error":"URL is required"`) {
		t.Errorf("missing url: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler("secret").ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/sift", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler("").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sift", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	repo := memory.NewPageRepository()
	h := NewRouter(createTestLogger(), "", repo, panickySifter{}, nil).SetupRoutes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sift", strings.NewReader(`{"url":"https://x"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"boom"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
