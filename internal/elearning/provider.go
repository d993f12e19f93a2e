package elearning

import (
	"errors"
	"net/url"
	"strings"
)

// Provider identifies how a lesson video is embedded.
type Provider string

const (
	ProviderYouTube Provider = "youtube"
	ProviderVimeo   Provider = "vimeo"
	ProviderDirect  Provider = "direct"
)

// ErrUnsupportedVideo signals a URL no known player can embed.
var ErrUnsupportedVideo = errors.New("unsupported video url")

// Embed describes the resolved player for a raw video URL.
type Embed struct {
	Provider Provider `json:"provider"`
	// ID is the provider video id for youtube/vimeo, or the raw URL for
	// direct playback.
	ID string `json:"id"`
}

// DetectProvider resolves the embed provider and video id from a raw URL.
// Recognised forms:
//
//	https://www.youtube.com/watch?v=<id>
//	https://youtu.be/<id>
//	https://www.youtube.com/embed/<id>
//	https://vimeo.com/<id>
//	https://player.vimeo.com/video/<id>
//	any https URL ending in .mp4 (direct playback)
func DetectProvider(raw string) (Embed, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return Embed{}, ErrUnsupportedVideo
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return Embed{Provider: ProviderYouTube, ID: id}, nil
		}
		if id := pathSegmentAfter(u.Path, "embed"); id != "" {
			return Embed{Provider: ProviderYouTube, ID: id}, nil
		}
		if id := pathSegmentAfter(u.Path, "shorts"); id != "" {
			return Embed{Provider: ProviderYouTube, ID: id}, nil
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" && !strings.Contains(id, "/") {
			return Embed{Provider: ProviderYouTube, ID: id}, nil
		}
	case "vimeo.com":
		if id := strings.Trim(u.Path, "/"); isDigits(id) {
			return Embed{Provider: ProviderVimeo, ID: id}, nil
		}
	case "player.vimeo.com":
		if id := pathSegmentAfter(u.Path, "video"); isDigits(id) {
			return Embed{Provider: ProviderVimeo, ID: id}, nil
		}
	}

	if strings.HasSuffix(strings.ToLower(u.Path), ".mp4") {
		return Embed{Provider: ProviderDirect, ID: raw}, nil
	}
	return Embed{}, ErrUnsupportedVideo
}

func pathSegmentAfter(path, marker string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p == marker && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
