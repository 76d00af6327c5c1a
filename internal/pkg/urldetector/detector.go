package urldetector

import (
	"regexp"
	"strings"

	"sift-api/internal/domain"
)

// URLInfo contains information about a detected URL
type URLInfo struct {
	URL      string
	Platform string
}

// Detector finds shareable links in free-form chat text
type Detector struct {
	pattern *regexp.Regexp
}

// New creates a detector for absolute http(s) links
func New() *Detector {
	return &Detector{
		pattern: regexp.MustCompile(`(?i)\bhttps?://[^\s<>]+`),
	}
}

// DetectURLs finds every link in content, in order, without duplicates
func (d *Detector) DetectURLs(content string) []URLInfo {
	var urls []URLInfo
	seen := make(map[string]bool)

	for _, match := range d.pattern.FindAllString(content, -1) {
		// Discord wraps links in <...> to suppress embeds
		url := strings.TrimSuffix(match, ">")
		url = cleanTrailingPunctuation(url)
		url = fixMalformedQueryString(url)

		if seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, URLInfo{
			URL:      url,
			Platform: domain.ClassifyURL(url),
		})
	}

	return urls
}

// IsSupported reports whether text is a single absolute http(s) link
func (d *Detector) IsSupported(text string) bool {
	text = strings.TrimSpace(text)
	return d.pattern.FindString(text) == text && text != ""
}

// fixMalformedQueryString repairs share links where a second "?" was used
// instead of "&", as in watch?v=ID?si=TOKEN
func fixMalformedQueryString(rawURL string) string {
	idx := strings.Index(rawURL, "?")
	if idx == -1 {
		return rawURL
	}

	fragment := ""
	rest := rawURL[idx+1:]
	if hash := strings.Index(rest, "#"); hash != -1 {
		fragment = rest[hash:]
		rest = rest[:hash]
	}

	return rawURL[:idx+1] + strings.ReplaceAll(rest, "?", "&") + fragment
}
