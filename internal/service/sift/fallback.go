package sift

import (
	"sift-api/internal/domain"
	"sift-api/internal/pkg/urldetector"
)

// BookmarkSummary is the summary of every page saved without analysis
const BookmarkSummary = "Content could not be scraped. Saved as bookmark."

// Bookmark builds the terminal fallback summary for url. A captured page
// title is preferred over the hostname-derived one.
func Bookmark(url, pageTitle string) domain.AISummary {
	title := pageTitle
	if title == "" {
		title = "Saved from " + bookmarkHost(url)
	}
	return domain.AISummary{
		Title:    title,
		Summary:  BookmarkSummary,
		Category: domain.CategoryRandom,
		Tags:     []string{domain.TagBookmark},
	}
}

// bookmarkHost falls back to the raw URL when it has no parseable host
func bookmarkHost(url string) string {
	if host := urldetector.Hostname(url); host != "" {
		return host
	}
	return url
}

// defaultSummary is what a page gets when it had content but the model
// call failed
func defaultSummary() domain.AISummary {
	return domain.AISummary{
		Title:    domain.DefaultTitle,
		Summary:  domain.DefaultSummary,
		Category: domain.CategoryRandom,
		Tags:     []string{},
	}
}
