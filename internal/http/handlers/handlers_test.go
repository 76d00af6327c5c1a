package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"sift-api/internal/domain"
	"sift-api/internal/repository/memory"
	"sift-api/internal/service/sift"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

type fakeSifter struct {
	pages domain.PageRepository
	err   error
	got   sift.Request
}

func (f *fakeSifter) Sift(ctx context.Context, req sift.Request) (*sift.Result, error) {
	f.got = req
	if strings.TrimSpace(req.URL) == "" {
		return nil, domain.ErrURLRequired
	}
	if f.err != nil {
		return nil, f.err
	}
	page := &domain.Page{URL: req.URL, Platform: req.Platform, Title: "t"}
	if err := f.pages.Create(ctx, page); err != nil {
		return nil, err
	}
	return &sift.Result{Page: page, Mode: sift.ModeBookmark}, nil
}

func seedPage(t *testing.T, repo domain.PageRepository, page domain.Page) *domain.Page {
	t.Helper()
	p := page
	if err := repo.Create(context.Background(), &p); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHandleSift(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		sifterErr  error
		wantStatus int
		wantError  string
	}{
		{"success", `{"url":"https://example.com","platform":"generic"}`, nil, http.StatusOK, ""},
		{"missing url", `{"platform":"tiktok"}`, nil, http.StatusBadRequest, "URL is required"},
		{"blank url", `{"url":"  "}`, nil, http.StatusBadRequest, "URL is required"},
		{"malformed body", `{"url":`, nil, http.StatusBadRequest, "Invalid request body"},
		{"persist failure", `{"url":"https://example.com"}`, errors.New("failed to save page: db down"), http.StatusInternalServerError, "failed to save page: db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewPageRepository()
			h := NewSiftHandler(createTestLogger(), &fakeSifter{pages: repo, err: tt.sifterErr})

			req := httptest.NewRequest(http.MethodPost, "/api/sift", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleSift(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantError != "" {
				if got := decode[errorResponse](t, rec); got.Error != tt.wantError {
					t.Errorf("error = %q, want %q", got.Error, tt.wantError)
				}
				return
			}

			got := decode[SiftResponse](t, rec)
			if !got.Success || got.Page == nil || got.Page.URL != "https://example.com" {
				t.Errorf("response = %+v", got)
			}
		})
	}
}

func TestHandleSift_IgnoresClientCancellation(t *testing.T) {
	repo := memory.NewPageRepository()
	h := NewSiftHandler(createTestLogger(), &fakeSifter{pages: repo})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/sift", strings.NewReader(`{"url":"https://example.com"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.HandleSift(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	pages, _ := repo.List(context.Background(), domain.PageFilter{})
	if len(pages) != 1 {
		t.Errorf("stored %d pages, want 1", len(pages))
	}
}

func TestArchiveLifecycle(t *testing.T) {
	repo := memory.NewPageRepository()
	h := NewArchiveHandler(createTestLogger(), repo)
	page := seedPage(t, repo, domain.Page{URL: "https://a", Title: "A"})

	put := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.UpdateArchive(rec, httptest.NewRequest(http.MethodPut, "/api/archive", strings.NewReader(body)))
		return rec
	}
	list := func() []*domain.Page {
		rec := httptest.NewRecorder()
		h.GetArchived(rec, httptest.NewRequest(http.MethodGet, "/api/archive", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET status = %d", rec.Code)
		}
		return decode[[]*domain.Page](t, rec)
	}

	if got := list(); len(got) != 0 {
		t.Fatalf("archive starts with %d pages", len(got))
	}

	rec := put(fmt.Sprintf(`{"id":%q,"action":"archive"}`, page.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("archive status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decode[PageResponse](t, rec); !resp.Success || !resp.Page.IsArchived {
		t.Errorf("archive response = %+v", resp)
	}
	if got := list(); len(got) != 1 || got[0].ID != page.ID {
		t.Errorf("archived pages = %v", got)
	}

	rec = put(fmt.Sprintf(`{"id":%q,"action":"restore"}`, page.ID))
	if resp := decode[PageResponse](t, rec); rec.Code != http.StatusOK || resp.Page.IsArchived {
		t.Errorf("restore status = %d, page = %+v", rec.Code, resp.Page)
	}
	if got := list(); len(got) != 0 {
		t.Errorf("restored page still archived")
	}
}

func TestUpdateArchive_Errors(t *testing.T) {
	repo := memory.NewPageRepository()
	h := NewArchiveHandler(createTestLogger(), repo)
	page := seedPage(t, repo, domain.Page{URL: "https://a"})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing id", `{"action":"archive"}`, http.StatusBadRequest},
		{"malformed id", `{"id":"nope","action":"archive"}`, http.StatusBadRequest},
		{"bad action", fmt.Sprintf(`{"id":%q,"action":"shred"}`, page.ID), http.StatusBadRequest},
		{"unknown id", fmt.Sprintf(`{"id":%q,"action":"archive"}`, uuid.New()), http.StatusNotFound},
		{"malformed body", `[`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.UpdateArchive(rec, httptest.NewRequest(http.MethodPut, "/api/archive", strings.NewReader(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decode[errorResponse](t, rec); got.Error == "" {
				t.Error("error body missing")
			}
		})
	}
}

func TestDeleteArchived(t *testing.T) {
	repo := memory.NewPageRepository()
	h := NewArchiveHandler(createTestLogger(), repo)
	page := seedPage(t, repo, domain.Page{URL: "https://a", IsArchived: true})

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"missing id", "", http.StatusBadRequest},
		{"deletes", "?id=" + page.ID.String(), http.StatusOK},
		{"already gone", "?id=" + page.ID.String(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.DeleteArchived(rec, httptest.NewRequest(http.MethodDelete, "/api/archive"+tt.query, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestListPages(t *testing.T) {
	repo := memory.NewPageRepository()
	h := NewPagesHandler(createTestLogger(), repo)
	seedPage(t, repo, domain.Page{Title: "Sourdough starter", Tags: []string{"Baking"}, Metadata: domain.PageMetadata{Category: "Cooking"}})
	seedPage(t, repo, domain.Page{Title: "Go generics", Tags: []string{"Tech"}, Metadata: domain.PageMetadata{Category: "Tech"}})
	seedPage(t, repo, domain.Page{Title: "Old news", IsArchived: true})

	tests := []struct {
		name        string
		query       string
		wantCount   int
		wantHasMore bool
	}{
		{"all non-archived", "", 2, false},
		{"search", "?q=sourdough", 1, false},
		{"tag", "?tag=tech", 1, false},
		{"category", "?category=Cooking", 1, false},
		{"limit", "?limit=1", 1, true},
		{"offset past limit", "?limit=1&offset=1", 1, false},
		{"bad limit falls back", "?limit=abc", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ListPages(rec, httptest.NewRequest(http.MethodGet, "/api/pages"+tt.query, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			got := decode[PagesResponse](t, rec)
			if len(got.Pages) != tt.wantCount || got.HasMore != tt.wantHasMore {
				t.Errorf("got %d pages, has_more=%v; want %d, %v", len(got.Pages), got.HasMore, tt.wantCount, tt.wantHasMore)
			}
		})
	}
}

func TestListPages_QueryTooLong(t *testing.T) {
	h := NewPagesHandler(createTestLogger(), memory.NewPageRepository())
	rec := httptest.NewRecorder()
	h.ListPages(rec, httptest.NewRequest(http.MethodGet, "/api/pages?q="+strings.Repeat("a", 501), nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPageByID(t *testing.T) {
	repo := memory.NewPageRepository()
	h := NewPagesHandler(createTestLogger(), repo)
	page := seedPage(t, repo, domain.Page{Title: "A"})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pages/{id}", h.GetPage)
	mux.HandleFunc("PUT /api/pages/{id}/pin", h.TogglePin)
	mux.HandleFunc("DELETE /api/pages/{id}", h.DeletePage)

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}
	path := "/api/pages/" + page.ID.String()

	if rec := do(http.MethodGet, path); rec.Code != http.StatusOK {
		t.Errorf("GET status = %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/api/pages/not-a-uuid"); rec.Code != http.StatusBadRequest {
		t.Errorf("GET malformed id status = %d", rec.Code)
	}

	rec := do(http.MethodPut, path+"/pin")
	if resp := decode[PageResponse](t, rec); !resp.Page.IsPinned {
		t.Error("first toggle should pin")
	}
	rec = do(http.MethodPut, path+"/pin")
	if resp := decode[PageResponse](t, rec); resp.Page.IsPinned {
		t.Error("second toggle should unpin")
	}

	if rec := do(http.MethodDelete, path); rec.Code != http.StatusOK {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	if rec := do(http.MethodGet, path); rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	repo := memory.NewPageRepository()
	h := NewStatsHandler(createTestLogger(), repo)
	seedPage(t, repo, domain.Page{Metadata: domain.PageMetadata{Category: "Tech"}})
	seedPage(t, repo, domain.Page{Metadata: domain.PageMetadata{Category: "Tech"}})
	seedPage(t, repo, domain.Page{Metadata: domain.PageMetadata{Category: "Random"}})

	rec := httptest.NewRecorder()
	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	got := decode[StatsResponse](t, rec)
	if got.Total != 3 || got.Categories["Tech"] != 2 || got.Categories["Random"] != 1 {
		t.Errorf("stats = %+v", got)
	}
	if n, ok := got.Categories["Cooking"]; !ok || n != 0 {
		t.Errorf("empty categories should be reported as zero")
	}
}
