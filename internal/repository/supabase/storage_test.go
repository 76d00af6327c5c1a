package supabase

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotKey, gotType, gotUpsert string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		gotType = r.Header.Get("Content-Type")
		gotUpsert = r.Header.Get("x-upsert")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	storage := NewStorage(server.URL+"/", "service-key", "sift-assets", createTestLogger())
	err := storage.Upload(context.Background(), "covers/1-abc.png", "image/png", []byte("png"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if gotPath != "/storage/v1/object/sift-assets/covers/1-abc.png" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer service-key" || gotKey != "service-key" {
		t.Errorf("auth headers = %q, %q", gotAuth, gotKey)
	}
	if gotType != "image/png" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotUpsert != "true" {
		t.Errorf("x-upsert = %q", gotUpsert)
	}
	if string(gotBody) != "png" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestUpload_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Bucket not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	storage := NewStorage(server.URL, "k", "missing", createTestLogger())
	if err := storage.Upload(context.Background(), "covers/x.jpg", "image/jpeg", nil); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

func TestPublicURL(t *testing.T) {
	storage := NewStorage("https://proj.supabase.co", "k", "sift-assets", createTestLogger())
	want := "https://proj.supabase.co/storage/v1/object/public/sift-assets/covers/a.jpg"
	if got := storage.PublicURL("covers/a.jpg"); got != want {
		t.Errorf("PublicURL() = %q, want %q", got, want)
	}
}
