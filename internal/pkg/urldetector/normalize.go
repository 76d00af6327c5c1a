package urldetector

import (
	"fmt"
	"net/url"
	"strings"
)

// trackingParams are dropped by NormalizeURL
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term",
	"si",     // YouTube share ID
	"fbclid", // Facebook click ID
	"gclid",  // Google click ID
	"igshid", // Instagram share ID
	"igsh",   // Instagram share ID, newer clients
	"_r",     // TikTok referrer
	"_t",     // TikTok share token
	"is_from_webapp",
	"sender_device",
}

// NormalizeURL creates a canonical form of a URL for comparison. Stored page
// URLs keep exactly what the user shared; this is only used to match them.
func NormalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("empty URL")
	}

	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if !strings.Contains(rawURL, ".") {
			return "", fmt.Errorf("invalid URL: no domain found")
		}
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL: no host found")
	}

	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	q := u.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String(), nil
}

// Hostname returns the host of rawURL without a leading "www.". It is
// empty when rawURL has no parseable host.
func Hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// cleanTrailingPunctuation removes sentence punctuation stuck to a link.
// A closing parenthesis survives when the link itself opened one.
func cleanTrailingPunctuation(urlStr string) string {
	for {
		trimmed := strings.TrimRight(urlStr, ".,!?;:\"'")
		if strings.HasSuffix(trimmed, ")") &&
			strings.Count(trimmed, "(") < strings.Count(trimmed, ")") {
			trimmed = strings.TrimSuffix(trimmed, ")")
		}
		if trimmed == urlStr {
			return trimmed
		}
		urlStr = trimmed
	}
}
