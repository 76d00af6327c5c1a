package sift

import (
	"encoding/json"

	"sift-api/internal/domain"
)

// Sentinels used when a payload has no usable text
const (
	NoTranscript       = "No transcript available."
	NoInstagramCaption = "No caption detected."
	NoCaption          = "No caption."
)

// RawPayload is one platform's scraper item, decoded defensively
type RawPayload interface {
	platform() string
}

type YouTubeRaw struct {
	Title        string
	Description  string
	ChannelName  string
	ThumbnailURL string
	Subtitles    any
}

type InstagramRaw struct {
	Caption       string
	HasCaption    bool
	OwnerUsername string
	DisplayURL    string
	ThumbnailURL  string
}

type TikTokRaw struct {
	Text        string
	Description string
	Author      string
	ImageURL    string
	CoverURL    string
}

// GenericRaw is a non-TikTok page scraped by the TikTok actor
type GenericRaw struct {
	TikTokRaw
	Title string
}

func (YouTubeRaw) platform() string   { return domain.PlatformYouTube }
func (InstagramRaw) platform() string { return domain.PlatformInstagram }
func (TikTokRaw) platform() string    { return domain.PlatformTikTok }
func (GenericRaw) platform() string   { return domain.PlatformGeneric }

// DecodeRaw reads an untyped scraper item into the variant for platform.
// Missing or mistyped fields decode as empty.
func DecodeRaw(platform string, item map[string]any) RawPayload {
	switch platform {
	case domain.PlatformYouTube:
		return YouTubeRaw{
			Title:        str(item, "title"),
			Description:  str(item, "description"),
			ChannelName:  str(item, "channelName"),
			ThumbnailURL: str(item, "thumbnailUrl"),
			Subtitles:    item["subtitles"],
		}
	case domain.PlatformInstagram:
		caption, hasCaption := instagramCaption(item)
		owner := str(item, "ownerUsername")
		if owner == "" {
			owner = str(obj(item, "owner"), "username")
		}
		return InstagramRaw{
			Caption:       caption,
			HasCaption:    hasCaption,
			OwnerUsername: owner,
			DisplayURL:    str(item, "displayUrl"),
			ThumbnailURL:  str(item, "thumbnailUrl"),
		}
	case domain.PlatformTikTok:
		return decodeTikTok(item)
	default:
		return GenericRaw{TikTokRaw: decodeTikTok(item), Title: str(item, "title")}
	}
}

func decodeTikTok(item map[string]any) TikTokRaw {
	author := str(obj(item, "authorMeta"), "name")
	if author == "" {
		author = str(item, "author")
	}
	return TikTokRaw{
		Text:        str(item, "text"),
		Description: str(item, "description"),
		Author:      author,
		ImageURL:    str(item, "imageUrl"),
		CoverURL:    str(obj(item, "videoMeta"), "coverUrl"),
	}
}

// instagramCaption accepts {"caption": {"text": ...}}, {"caption": "..."}
// or a top-level "text"
func instagramCaption(item map[string]any) (string, bool) {
	switch c := item["caption"].(type) {
	case map[string]any:
		if text := str(c, "text"); text != "" {
			return text, true
		}
	case string:
		if c != "" {
			return c, true
		}
	}
	if text := str(item, "text"); text != "" {
		return text, true
	}
	return "", false
}

// Normalize maps a raw payload onto the common content shape. The result
// always has a caption, possibly a sentinel.
func Normalize(raw RawPayload) domain.NormalizedContent {
	switch r := raw.(type) {
	case YouTubeRaw:
		transcript := NoTranscript
		if r.Subtitles != nil {
			if b, err := json.Marshal(r.Subtitles); err == nil {
				transcript = string(b)
			}
		}
		return domain.NormalizedContent{
			Title:       r.Title,
			Description: r.Description,
			Caption:     orDefault(r.Description, NoCaption),
			Author:      r.ChannelName,
			Transcript:  transcript,
			ImageURL:    r.ThumbnailURL,
		}
	case InstagramRaw:
		caption := NoInstagramCaption
		if r.HasCaption {
			caption = r.Caption
		}
		return domain.NormalizedContent{
			Caption:  caption,
			Author:   r.OwnerUsername,
			ImageURL: firstNonEmpty(r.DisplayURL, r.ThumbnailURL),
		}
	case TikTokRaw:
		return normalizeTikTok(r)
	case GenericRaw:
		content := normalizeTikTok(r.TikTokRaw)
		content.Title = r.Title
		return content
	default:
		return domain.NormalizedContent{Caption: NoCaption}
	}
}

func normalizeTikTok(r TikTokRaw) domain.NormalizedContent {
	return domain.NormalizedContent{
		Caption:  firstNonEmpty(r.Text, r.Description, NoCaption),
		Author:   r.Author,
		ImageURL: firstNonEmpty(r.ImageURL, r.CoverURL),
	}
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func obj(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	o, _ := m[key].(map[string]any)
	return o
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
