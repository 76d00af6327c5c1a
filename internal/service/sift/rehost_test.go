package sift

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"
)

type fakeStore struct {
	uploads     map[string][]byte
	contentType string
	err         error
}

func (s *fakeStore) Upload(ctx context.Context, path, contentType string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	s.uploads[path] = data
	s.contentType = contentType
	return nil
}

func (s *fakeStore) PublicURL(path string) string {
	return "https://storage.test/public/" + path
}

func imageServer(t *testing.T, status int, contentType string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		w.Write([]byte("imagebytes"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestImageRehoster_Rehost(t *testing.T) {
	server := imageServer(t, http.StatusOK, "image/webp")
	store := &fakeStore{}
	rehoster := NewImageRehoster(store, 5*time.Second, createTestLogger())
	rehoster.now = func() time.Time { return time.UnixMilli(1700000000000) }

	got, err := rehoster.Rehost(context.Background(), server.URL+"/cover")
	if err != nil {
		t.Fatalf("Rehost() error = %v", err)
	}

	pattern := regexp.MustCompile(`^https://storage\.test/public/covers/1700000000000-[0-9a-f]{8}\.webp$`)
	if !pattern.MatchString(got) {
		t.Errorf("Rehost() = %q, want match for %s", got, pattern)
	}
	if store.contentType != "image/webp" {
		t.Errorf("uploaded content type = %q", store.contentType)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(store.uploads))
	}
	for _, data := range store.uploads {
		if string(data) != "imagebytes" {
			t.Errorf("uploaded %q", data)
		}
	}
}

func TestImageRehoster_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		uploadErr error
	}{
		{"not found", http.StatusNotFound, nil},
		{"rate limited", http.StatusTooManyRequests, nil},
		{"upload rejected", http.StatusOK, errors.New("bucket not found")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := imageServer(t, tt.status, "image/png")
			store := &fakeStore{err: tt.uploadErr}
			rehoster := NewImageRehoster(store, 5*time.Second, createTestLogger())

			got, err := rehoster.Rehost(context.Background(), server.URL)
			if err == nil {
				t.Fatalf("Rehost() = %q, expected error", got)
			}
			if len(store.uploads) != 0 {
				t.Errorf("unexpected upload")
			}
		})
	}
}

func TestImageType(t *testing.T) {
	tests := []struct {
		header   string
		wantType string
		wantExt  string
	}{
		{"image/png", "image/png", "png"},
		{"image/jpeg", "image/jpeg", "jpeg"},
		{"image/svg+xml; charset=utf-8", "image/svg+xml", "svg"},
		{"", "image/jpeg", "jpg"},
		{"garbage", "image/jpeg", "jpg"},
	}

	for _, tt := range tests {
		gotType, gotExt := imageType(tt.header)
		if gotType != tt.wantType || gotExt != tt.wantExt {
			t.Errorf("imageType(%q) = (%q, %q), want (%q, %q)",
				tt.header, gotType, gotExt, tt.wantType, tt.wantExt)
		}
	}
}

func TestImageRehoster_RejectsOversizedImage(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"at limit", maxImageBytes, false},
		{"over limit", maxImageBytes + 1<<20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Write(make([]byte, tt.size))
			}))
			defer server.Close()

			store := &fakeStore{}
			rehoster := NewImageRehoster(store, 10*time.Second, createTestLogger())

			got, err := rehoster.Rehost(context.Background(), server.URL+"/big.jpg")
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Rehost() error = %v", err)
				}
				for _, data := range store.uploads {
					if len(data) != tt.size {
						t.Errorf("uploaded %d bytes, want %d", len(data), tt.size)
					}
				}
				return
			}

			if !errors.Is(err, ErrImageTooLarge) {
				t.Fatalf("Rehost() error = %v, want ErrImageTooLarge", err)
			}
			if got != "" {
				t.Errorf("Rehost() = %q, want empty", got)
			}
			if len(store.uploads) != 0 {
				t.Errorf("uploaded %d objects, want none", len(store.uploads))
			}
		})
	}
}
