package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichPlatformYouTube(t *testing.T) {
	tests := []struct {
		name string
		url  string
		id   string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1", "dQw4w9WgXcQ"},
		{"shorts url", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"nocookie embed", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := EnrichPlatform(VideoCandidate{URL: tt.url})
			assert.Equal(t, "YouTube", c.SourceWebsite)
			assert.Equal(t, TypeYouTube, c.Type)
			assert.Equal(t, tt.id, c.VideoID)
			assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", c.ThumbnailURL)
		})
	}
}

func TestEnrichPlatformYouTubeShortID(t *testing.T) {
	// IDs are whatever the path or query carries; no length requirement
	c := EnrichPlatform(VideoCandidate{URL: "https://www.youtube.com/embed/abc123"})
	assert.Equal(t, "abc123", c.VideoID)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/maxresdefault.jpg", c.ThumbnailURL)
}

func TestEnrichPlatformYouTubeNoID(t *testing.T) {
	for _, u := range []string{
		"https://www.youtube.com/watch",
		"https://www.youtube.com/feed/subscriptions",
		"https://www.youtube.com/embed/",
	} {
		c := EnrichPlatform(VideoCandidate{URL: u})
		assert.Equal(t, "YouTube", c.SourceWebsite, u)
		assert.Empty(t, c.VideoID, u)
		assert.Empty(t, c.ThumbnailURL, u)
	}
}

func TestRecognizedPlatform(t *testing.T) {
	assert.True(t, recognizedPlatform("Twitch"))
	assert.True(t, recognizedPlatform("Pornhub"))
	assert.False(t, recognizedPlatform("cdn.example.com"))
	assert.False(t, recognizedPlatform(""))
}

func TestEnrichPlatformVimeo(t *testing.T) {
	c := EnrichPlatform(VideoCandidate{URL: "https://player.vimeo.com/video/76979871"})
	assert.Equal(t, "Vimeo", c.SourceWebsite)
	assert.Equal(t, TypeVimeo, c.Type)
	assert.Equal(t, "76979871", c.VideoID)
	assert.Equal(t, "https://vumbnail.com/76979871.jpg", c.ThumbnailURL)
}

func TestEnrichPlatformDailymotion(t *testing.T) {
	c := EnrichPlatform(VideoCandidate{URL: "https://www.dailymotion.com/video/x8abcde"})
	assert.Equal(t, "Dailymotion", c.SourceWebsite)
	assert.Equal(t, "x8abcde", c.VideoID)

	c = EnrichPlatform(VideoCandidate{URL: "https://dai.ly/x8abcde"})
	assert.Equal(t, "x8abcde", c.VideoID)
}

func TestEnrichPlatformAdultHost(t *testing.T) {
	c := EnrichPlatform(VideoCandidate{URL: "https://www.pornhub.com/view_video.php?viewkey=ph12345"})
	assert.Equal(t, "Pornhub", c.SourceWebsite)
	assert.True(t, c.IsAdult)
	assert.Equal(t, "ph12345", c.VideoID)
}

func TestEnrichPlatformUnknownHostPassesThrough(t *testing.T) {
	c := EnrichPlatform(VideoCandidate{URL: "https://cdn.example.com/v/clip.mp4", Type: TypeDirect})
	assert.Equal(t, "cdn.example.com", c.SourceWebsite)
	assert.Equal(t, TypeDirect, c.Type)
	assert.Empty(t, c.VideoID)
}

func TestEnrichPlatformKeepsExistingThumbnail(t *testing.T) {
	c := EnrichPlatform(VideoCandidate{
		URL:          "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		ThumbnailURL: "https://example.com/custom.jpg",
	})
	assert.Equal(t, "https://example.com/custom.jpg", c.ThumbnailURL)
}

func TestKnownEmbedHost(t *testing.T) {
	assert.True(t, knownEmbedHost("https://www.youtube.com/embed/x"))
	assert.True(t, knownEmbedHost("https://player.twitch.tv/?video=1"))
	assert.False(t, knownEmbedHost("https://example.com/embed/x"))
	assert.False(t, knownEmbedHost("https://notyoutube.com/watch?v=x"))
}
