package sift

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractMeta(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		contentType string
		want        PageMeta
	}{
		{
			name: "title element wins over og:title",
			html: `<html><head><title> Real Title </title>
				<meta property="og:title" content="OG Title">
				<meta property="og:image" content="https://cdn.example.com/og.jpg"></head></html>`,
			contentType: "text/html; charset=utf-8",
			want:        PageMeta{Title: "Real Title", OGImage: "https://cdn.example.com/og.jpg"},
		},
		{
			name:        "og:title when no title element",
			html:        `<html><head><meta content="OG Only" property="og:title"></head></html>`,
			contentType: "text/html",
			want:        PageMeta{Title: "OG Only"},
		},
		{
			name:        "nothing found",
			html:        `<html><body>plain</body></html>`,
			contentType: "text/html",
			want:        PageMeta{},
		},
		{
			name:        "latin-1 page",
			html:        "<html><head><title>Caf\xe9</title></head></html>",
			contentType: "text/html; charset=iso-8859-1",
			want:        PageMeta{Title: "Café"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractMeta([]byte(tt.html), tt.contentType)
			if err != nil {
				t.Fatalf("ExtractMeta() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractMeta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHTTPMetadataFetcher_Fetch(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<title>Hello</title><meta property="og:image" content="https://img/x.png">`))
	}))
	defer server.Close()

	fetcher := NewHTTPMetadataFetcher(5*time.Second, nil, createTestLogger())
	got := fetcher.Fetch(context.Background(), server.URL)

	if got != (PageMeta{Title: "Hello", OGImage: "https://img/x.png"}) {
		t.Errorf("Fetch() = %+v", got)
	}
	if gotUA != metadataUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAccept != metadataAccept {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestHTTPMetadataFetcher_FailureIsSwallowed(t *testing.T) {
	fetcher := NewHTTPMetadataFetcher(time.Second, nil, createTestLogger())
	if got := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/unreachable"); got != (PageMeta{}) {
		t.Errorf("Fetch() = %+v, want empty", got)
	}
	if got := fetcher.Fetch(context.Background(), "::not a url"); got != (PageMeta{}) {
		t.Errorf("Fetch() = %+v, want empty", got)
	}
}

type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (f *fakeRenderer) Render(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.html, f.err
}

func TestHTTPMetadataFetcher_BrowserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`<title>Just a moment...</title>`))
	}))
	defer server.Close()

	renderer := &fakeRenderer{html: `<meta property="og:image" content="https://img/rendered.jpg">`}
	fetcher := NewHTTPMetadataFetcher(5*time.Second, renderer, createTestLogger())

	got := fetcher.Fetch(context.Background(), server.URL)
	if renderer.calls != 1 {
		t.Fatalf("renderer called %d times, want 1", renderer.calls)
	}
	want := PageMeta{Title: "Just a moment...", OGImage: "https://img/rendered.jpg"}
	if got != want {
		t.Errorf("Fetch() = %+v, want %+v", got, want)
	}

	renderer.err = errors.New("chromium missing")
	got = fetcher.Fetch(context.Background(), server.URL)
	if got.OGImage != "" {
		t.Errorf("Fetch() with failing renderer = %+v", got)
	}
}
