package domain

import (
	"strings"
	"unicode/utf8"
)

// NormalizedContent is the platform-independent shape every scraper payload
// is mapped onto before validation and summarization.
type NormalizedContent struct {
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
	Author      string `json:"author,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Title       string `json:"title,omitempty"`
}

// MinAnalyzableLength is the shortest text worth a model call, in characters
const MinAnalyzableLength = 5

// AnalyzableText returns the first non-empty of caption, description,
// transcript and title, in that order.
func (c NormalizedContent) AnalyzableText() string {
	for _, s := range []string{c.Caption, c.Description, c.Transcript, c.Title} {
		if s != "" {
			return s
		}
	}
	return ""
}

// HasAnalyzableContent applies the content gate
func (c NormalizedContent) HasAnalyzableContent() bool {
	return utf8.RuneCountInString(c.AnalyzableText()) >= MinAnalyzableLength
}

// AISummary is the structured output of the language model
type AISummary struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Summary  string   `json:"summary"`
}

// Categories a page can be filed under
const (
	CategoryCooking = "Cooking"
	CategoryTech    = "Tech"
	CategoryDesign  = "Design"
	CategoryHealth  = "Health"
	CategoryFashion = "Fashion"
	CategoryNews    = "News"
	CategoryRandom  = "Random"
)

// Categories lists every allowed category in prompt order
var Categories = []string{
	CategoryCooking,
	CategoryTech,
	CategoryDesign,
	CategoryHealth,
	CategoryFashion,
	CategoryNews,
	CategoryRandom,
}

// AllowedTags is the closed set the model must pick from
var AllowedTags = []string{"Cooking", "Baking", "Tech", "Health", "Lifestyle", "Professional"}

// TagBookmark marks pages saved without a summary
const TagBookmark = "Bookmark"

// MaxTags caps how many model tags are kept
const MaxTags = 3

// fallbackTag replaces a tag list that had no allowed entries
const fallbackTag = "Lifestyle"

// Summary defaults used when the model response omits a field
const (
	DefaultTitle   = "Untitled Page"
	DefaultSummary = "Summary unavailable."
)

// NormalizeCategory maps a model category onto the allowed set, ignoring
// case. Anything else becomes Random.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	for _, c := range Categories {
		if equalFold(c, category) {
			return c
		}
	}
	return CategoryRandom
}

// CoerceTags drops tags outside AllowedTags, canonicalizes case, removes
// duplicates and keeps at most MaxTags. A non-empty input with no allowed
// tag collapses to Lifestyle. Nil in, empty out.
func CoerceTags(tags []string) []string {
	out := make([]string, 0, MaxTags)
	if len(tags) == 0 {
		return out
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		canonical, ok := canonicalTag(tag)
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
		if len(out) == MaxTags {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, fallbackTag)
	}
	return out
}

// IsAllowedTag reports membership in AllowedTags (exact case)
func IsAllowedTag(tag string) bool {
	for _, t := range AllowedTags {
		if t == tag {
			return true
		}
	}
	return false
}

func canonicalTag(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	for _, t := range AllowedTags {
		if equalFold(t, tag) {
			return t, true
		}
	}
	return "", false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
