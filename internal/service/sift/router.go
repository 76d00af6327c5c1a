package sift

import "sift-api/internal/domain"

// Apify actors per platform
const (
	ActorYouTube   = "apify/youtube-scraper"
	ActorInstagram = "shu8hvrXbJbY3Eb9W"
	ActorTikTok    = "clockworks/tiktok-scraper"
)

// Route is the scraper configuration chosen for one URL
type Route struct {
	Platform string
	Actor    string
	Input    map[string]any
}

// RouteURL classifies url and builds the actor input for it. Anything that
// is not YouTube or Instagram goes to the TikTok actor, which returns no
// items for pages it cannot handle.
func RouteURL(url string) Route {
	platform := domain.ClassifyURL(url)

	switch platform {
	case domain.PlatformYouTube:
		return Route{
			Platform: platform,
			Actor:    ActorYouTube,
			Input: map[string]any{
				"urls":              []string{url},
				"downloadSubtitles": true,
				"saveSubsToKVS":     false,
			},
		}
	case domain.PlatformInstagram:
		return Route{
			Platform: platform,
			Actor:    ActorInstagram,
			Input: map[string]any{
				"directUrls":         []string{url},
				"resultsType":        "posts",
				"resultsLimit":       1,
				"addParentData":      false,
				"proxyConfiguration": apifyProxy(),
			},
		}
	default:
		return Route{
			Platform: platform,
			Actor:    ActorTikTok,
			Input: map[string]any{
				"postURLs":                      []string{url},
				"shouldDownloadVideos":          false,
				"shouldDownloadCovers":          false,
				"shouldDownloadSlideshowImages": false,
				"proxyConfiguration":            apifyProxy(),
			},
		}
	}
}

func apifyProxy() map[string]any {
	return map[string]any{"useApifyProxy": true}
}
