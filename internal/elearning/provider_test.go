package elearning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectProvider(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want Embed
	}{
		{
			name: "youtube watch",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: Embed{Provider: ProviderYouTube, ID: "dQw4w9WgXcQ"},
		},
		{
			name: "youtube short link",
			url:  "https://youtu.be/dQw4w9WgXcQ",
			want: Embed{Provider: ProviderYouTube, ID: "dQw4w9WgXcQ"},
		},
		{
			name: "youtube embed path",
			url:  "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want: Embed{Provider: ProviderYouTube, ID: "dQw4w9WgXcQ"},
		},
		{
			name: "youtube shorts",
			url:  "https://m.youtube.com/shorts/abc123XYZ_-",
			want: Embed{Provider: ProviderYouTube, ID: "abc123XYZ_-"},
		},
		{
			name: "vimeo plain",
			url:  "https://vimeo.com/76979871",
			want: Embed{Provider: ProviderVimeo, ID: "76979871"},
		},
		{
			name: "vimeo player",
			url:  "https://player.vimeo.com/video/76979871",
			want: Embed{Provider: ProviderVimeo, ID: "76979871"},
		},
		{
			name: "direct mp4",
			url:  "https://cdn.almanar.sch.id/lessons/tajwid-01.mp4",
			want: Embed{Provider: ProviderDirect, ID: "https://cdn.almanar.sch.id/lessons/tajwid-01.mp4"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectProvider(tc.url)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDetectProviderRejectsUnknown(t *testing.T) {
	for _, raw := range []string{
		"",
		"not a url",
		"https://example.com/watch?v=abc",
		"https://vimeo.com/about",
		"https://www.youtube.com/feed/subscriptions",
	} {
		_, err := DetectProvider(raw)
		require.ErrorIs(t, err, ErrUnsupportedVideo, "url %q", raw)
	}
}
