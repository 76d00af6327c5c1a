package sift

import (
	"reflect"
	"testing"

	"sift-api/internal/domain"
)

func TestRouteURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantPlatform string
		wantActor    string
		wantURLKey   string
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=abc", domain.PlatformYouTube, ActorYouTube, "urls"},
		{"youtube short link", "https://youtu.be/abc", domain.PlatformYouTube, ActorYouTube, "urls"},
		{"instagram post", "https://www.instagram.com/p/xyz/", domain.PlatformInstagram, ActorInstagram, "directUrls"},
		{"tiktok video", "https://www.tiktok.com/@user/video/123", domain.PlatformTikTok, ActorTikTok, "postURLs"},
		{"generic page", "https://example.com/article", domain.PlatformGeneric, ActorTikTok, "postURLs"},
		{"not even a url", "hello", domain.PlatformGeneric, ActorTikTok, "postURLs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := RouteURL(tt.url)
			if route.Platform != tt.wantPlatform {
				t.Errorf("Platform = %q, want %q", route.Platform, tt.wantPlatform)
			}
			if route.Actor != tt.wantActor {
				t.Errorf("Actor = %q, want %q", route.Actor, tt.wantActor)
			}
			if got := route.Input[tt.wantURLKey]; !reflect.DeepEqual(got, []string{tt.url}) {
				t.Errorf("Input[%q] = %v, want [%s]", tt.wantURLKey, got, tt.url)
			}
		})
	}
}

func TestRouteURL_ActorInput(t *testing.T) {
	yt := RouteURL("https://youtu.be/abc").Input
	if yt["downloadSubtitles"] != true || yt["saveSubsToKVS"] != false {
		t.Errorf("youtube input = %v", yt)
	}

	ig := RouteURL("https://instagram.com/p/1").Input
	if ig["resultsType"] != "posts" || ig["resultsLimit"] != 1 || ig["addParentData"] != false {
		t.Errorf("instagram input = %v", ig)
	}

	tt := RouteURL("https://tiktok.com/@a/video/1").Input
	for _, key := range []string{"shouldDownloadVideos", "shouldDownloadCovers", "shouldDownloadSlideshowImages"} {
		if tt[key] != false {
			t.Errorf("tiktok input %s = %v, want false", key, tt[key])
		}
	}
	if !reflect.DeepEqual(tt["proxyConfiguration"], map[string]any{"useApifyProxy": true}) {
		t.Errorf("tiktok proxyConfiguration = %v", tt["proxyConfiguration"])
	}
}
