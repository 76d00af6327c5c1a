package urldetector

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"https://www.Instagram.com/p/abc/?igsh=xyz", "https://instagram.com/p/abc/", false},
		{"youtube.com/watch?v=1&si=abc&utm_source=x", "https://youtube.com/watch?v=1", false},
		{"https://example.com/a#top", "https://example.com/a", false},
		{"", "", true},
		{"not a url", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHostname(t *testing.T) {
	tests := map[string]string{
		"https://www.example.com/path": "example.com",
		"https://blog.example.com":     "blog.example.com",
		"http://example.com:8080/x":    "example.com",
		"not a url":                    "",
	}
	for input, want := range tests {
		if got := Hostname(input); got != want {
			t.Errorf("Hostname(%q) = %q, want %q", input, got, want)
		}
	}
}
