package sift

import (
	"reflect"
	"testing"

	"sift-api/internal/domain"
)

func TestBookmark(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		pageTitle string
		wantTitle string
	}{
		{"strips www", "https://www.example.com/a/b", "", "Saved from example.com"},
		{"keeps subdomain", "https://news.ycombinator.com/item?id=1", "", "Saved from news.ycombinator.com"},
		{"prefers page title", "https://example.com", "Example Domain", "Example Domain"},
		{"unparseable url", "not a url", "", "Saved from not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bookmark(tt.url, tt.pageTitle)
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Summary != BookmarkSummary {
				t.Errorf("Summary = %q", got.Summary)
			}
			if got.Category != domain.CategoryRandom {
				t.Errorf("Category = %q", got.Category)
			}
			if !reflect.DeepEqual(got.Tags, []string{"Bookmark"}) {
				t.Errorf("Tags = %v", got.Tags)
			}
		})
	}
}
