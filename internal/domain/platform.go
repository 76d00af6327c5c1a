package domain

import "strings"

// Platform constants - single source of truth
const (
	PlatformYouTube   = "youtube"
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
	PlatformGeneric   = "generic"
)

// platformPatterns are matched as plain substrings, first match wins
var platformPatterns = []struct {
	platform string
	patterns []string
}{
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformInstagram, []string{"instagram.com"}},
	{PlatformTikTok, []string{"tiktok.com"}},
}

// ClassifyURL detects the platform from a URL. It never fails; anything
// unrecognized is generic.
func ClassifyURL(url string) string {
	for _, p := range platformPatterns {
		for _, pattern := range p.patterns {
			if strings.Contains(url, pattern) {
				return p.platform
			}
		}
	}
	return PlatformGeneric
}

// GetValidPlatforms returns every platform the router can produce
func GetValidPlatforms() []string {
	return []string{PlatformYouTube, PlatformInstagram, PlatformTikTok, PlatformGeneric}
}
