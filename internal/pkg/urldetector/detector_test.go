package urldetector

import (
	"testing"
)

func TestFixMalformedQueryString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Double question mark share link",
			input: "https://youtube.com/watch?v=D1avYj7q42A?si=5c2KrgyqSfo_0jSE",
			want:  "https://youtube.com/watch?v=D1avYj7q42A&si=5c2KrgyqSfo_0jSE",
		},
		{
			name:  "Already correct URL",
			input: "https://youtube.com/watch?v=D1avYj7q42A&si=5c2KrgyqSfo_0jSE",
			want:  "https://youtube.com/watch?v=D1avYj7q42A&si=5c2KrgyqSfo_0jSE",
		},
		{
			name:  "No query string",
			input: "https://youtube.com/watch",
			want:  "https://youtube.com/watch",
		},
		{
			name:  "Multiple malformed ? in query",
			input: "https://example.com/path?a=1?b=2?c=3",
			want:  "https://example.com/path?a=1&b=2&c=3",
		},
		{
			name:  "URL with fragment",
			input: "https://example.com/path?v=123?si=abc#fragment",
			want:  "https://example.com/path?v=123&si=abc#fragment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixMalformedQueryString(tt.input)
			if got != tt.want {
				t.Errorf("fixMalformedQueryString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectURLs(t *testing.T) {
	d := New()

	got := d.DetectURLs("look at this https://www.instagram.com/p/abc/, and <https://youtu.be/xyz> and again https://www.instagram.com/p/abc/")
	want := []URLInfo{
		{URL: "https://www.instagram.com/p/abc/", Platform: "instagram"},
		{URL: "https://youtu.be/xyz", Platform: "youtube"},
	}

	if len(got) != len(want) {
		t.Fatalf("DetectURLs() returned %d urls, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DetectURLs()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDetectURLs_None(t *testing.T) {
	if got := New().DetectURLs("no links here, just example.com"); len(got) != 0 {
		t.Errorf("DetectURLs() = %v, want none", got)
	}
}

func TestIsSupported(t *testing.T) {
	d := New()
	tests := map[string]bool{
		"https://example.com/a":   true,
		"  http://example.com  ":  true,
		"see https://example.com": false,
		"example.com":             false,
		"":                        false,
	}
	for input, want := range tests {
		if got := d.IsSupported(input); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestCleanTrailingPunctuation(t *testing.T) {
	tests := map[string]string{
		"https://example.com/a.":                      "https://example.com/a",
		"https://example.com/a!?":                     "https://example.com/a",
		"https://en.wikipedia.org/wiki/Go_(language)": "https://en.wikipedia.org/wiki/Go_(language)",
		"https://example.com/a).":                     "https://example.com/a",
	}
	for input, want := range tests {
		if got := cleanTrailingPunctuation(input); got != want {
			t.Errorf("cleanTrailingPunctuation(%q) = %q, want %q", input, got, want)
		}
	}
}
