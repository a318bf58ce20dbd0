package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoElementStrategy(t *testing.T) {
	page := newFakePage("https://example.com/watch").
		onJSON("v.videoWidth", []map[string]any{
			{
				"src":      "https://example.com/media/movie.mp4",
				"poster":   "/thumbs/movie.jpg",
				"title":    "My Movie",
				"width":    1280,
				"height":   720,
				"duration": 120.0,
			},
		})

	s := &videoElementStrategy{cfg: testConfig()}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)

	c := found[0]
	assert.Equal(t, "https://example.com/media/movie.mp4", c.URL)
	assert.Equal(t, TypeDirect, c.Type)
	assert.Equal(t, "mp4", c.Format)
	assert.Equal(t, strategyVideoElement, c.FoundBy)
	assert.Equal(t, "My Movie", c.Title)
	assert.Equal(t, "https://example.com/thumbs/movie.jpg", c.ThumbnailURL)
	assert.Equal(t, "720p", c.Quality)
	assert.Equal(t, 120.0, c.Attributes.Duration)
}

func TestVideoElementStrategyRelativeSource(t *testing.T) {
	page := newFakePage("https://example.com/videos/page").
		onJSON("v.videoWidth", []map[string]any{
			{"src": "clip.webm"},
			{"src": "javascript:void(0)"},
		})

	s := &videoElementStrategy{cfg: testConfig()}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "https://example.com/videos/clip.webm", found[0].URL)
}

func TestIframeStrategy(t *testing.T) {
	page := newFakePage("https://example.com/post").
		onJSON("parseInt(f.width", []map[string]any{
			{"src": "https://www.youtube.com/embed/dQw4w9WgXcQ", "title": "Clip", "width": 560, "height": 315},
			{"src": "https://example.com/ads/banner", "title": "ad"},
			{"src": "https://cdn.example.com/player?id=9", "title": "hosted"},
		})

	s := &iframeStrategy{cfg: testConfig()}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", found[0].URL)
	assert.Equal(t, TypeEmbedded, found[0].Type)
	assert.Equal(t, strategyIframe, found[0].FoundBy)
	// generic player path on an unknown host
	assert.Equal(t, "https://cdn.example.com/player?id=9", found[1].URL)
}

func TestDataAttributeStrategy(t *testing.T) {
	page := newFakePage("https://example.com").
		onJSON("attrs.forEach", []map[string]any{
			{"value": "/streams/live.m3u8", "attr": "data-hls", "selector": "div"},
			{"value": "not a url at all", "attr": "data-src", "selector": "img"},
		})

	s := &dataAttributeStrategy{cfg: testConfig()}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "https://example.com/streams/live.m3u8", found[0].URL)
	assert.Equal(t, TypeHLS, found[0].Type)
	assert.Equal(t, "data-hls", found[0].Metadata["attribute"])
}

func TestAnchorTagStrategy(t *testing.T) {
	cfg := testConfig()
	page := newFakePage("https://example.com/list").
		onJSON("mailto:", []map[string]any{
			{"href": "https://example.com/files/full.mp4", "text": "Download"},
			{"href": "https://example.com/watch/abc-123", "text": "Watch this"},
			{"href": "https://other-site.com/watch/xyz", "text": "External"},
			{"href": "https://example.com/about", "text": "About us"},
		})

	s := &anchorTagStrategy{cfg: cfg}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, TypeDirect, found[0].Type)
	assert.Equal(t, "https://example.com/watch/abc-123", found[1].URL)
	assert.Equal(t, TypeUnknown, found[1].Type)
}

func TestAnchorTagStrategyFollowExternal(t *testing.T) {
	cfg := testConfig()
	cfg.FollowExternal = true
	page := newFakePage("https://example.com/list").
		onJSON("mailto:", []map[string]any{
			{"href": "https://other-site.com/watch/xyz", "text": "External"},
		})

	s := &anchorTagStrategy{cfg: cfg}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestCSSBackgroundStrategy(t *testing.T) {
	page := newFakePage("https://example.com").
		onJSON(`[style*="url("]`, []map[string]any{
			{"value": `background: url('/media/loop.mp4') no-repeat`},
			{"value": `background-image: url(/img/hero.jpg)`},
		})

	s := &cssBackgroundStrategy{}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "https://example.com/media/loop.mp4", found[0].URL)
}

func TestScriptMiningRegex(t *testing.T) {
	page := newFakePage("https://example.com").
		onJSON("sc.textContent", []map[string]any{
			{"type": "", "text": `var player = setup({file: "https://cdn.example.com/v/123.mp4?tok=9"});`},
			{"type": "", "text": `var cfg = {"hlsUrl": "//cdn.example.com/v/123/master.m3u8"};`},
			{"type": "", "text": `console.log("no media here");`},
		})

	s := &scriptMiningStrategy{cfg: testConfig()}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "https://cdn.example.com/v/123.mp4?tok=9", found[0].URL)
	assert.Equal(t, strategyScriptMining, found[0].FoundBy)
	assert.Equal(t, "https://cdn.example.com/v/123/master.m3u8", found[1].URL)
	assert.Equal(t, TypeHLS, found[1].Type)
}

func TestScriptMiningJSONLD(t *testing.T) {
	ld := `{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "WebPage", "name": "ignored"},
			{
				"@type": "VideoObject",
				"name": "Launch Recap",
				"contentUrl": "https://example.com/media/recap.mp4",
				"thumbnailUrl": "https://example.com/media/recap.jpg",
				"duration": "PT1M30S"
			}
		]
	}`
	page := newFakePage("https://example.com").
		onJSON("sc.textContent", []map[string]any{
			{"type": "application/ld+json", "text": ld},
		})

	s := &scriptMiningStrategy{cfg: testConfig()}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)

	c := found[0]
	assert.Equal(t, strategyJSONLD, c.FoundBy)
	assert.Equal(t, "Launch Recap", c.Title)
	assert.Equal(t, "https://example.com/media/recap.jpg", c.ThumbnailURL)
	assert.Equal(t, 90.0, c.Attributes.Duration)
}

func TestPlayerIntrospectionStrategy(t *testing.T) {
	page := newFakePage("https://example.com").
		onJSON("jwplayer", []map[string]any{
			{"src": "https://cdn.example.com/hls/master.m3u8", "title": "Stream", "poster": "/poster.jpg", "player": "jwplayer"},
			{"src": "blob:https://example.com/abc-def", "player": "videojs"},
		})

	s := &playerIntrospectionStrategy{}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, TypeHLS, found[0].Type)
	assert.Equal(t, "jwplayer", found[0].Metadata["player"])
}

func TestMediaSourceStrategy(t *testing.T) {
	watcher := &networkWatcher{
		requests: make(chan capturedRequest, 8),
		seen: map[string]bool{
			"https://cdn.example.com/live/master.m3u8": true,
			"https://cdn.example.com/js/app.js":        true,
		},
	}

	page := newFakePage("https://example.com").
		onJSON("hasMediaSource", map[string]bool{"hasMediaSource": true, "blobVideo": true})

	s := &mediaSourceStrategy{watcher: watcher}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "https://cdn.example.com/live/master.m3u8", found[0].URL)
	assert.Equal(t, strategyMediaSource, found[0].FoundBy)
}

func TestMediaSourceStrategyNoBlobPlayback(t *testing.T) {
	watcher := &networkWatcher{
		requests: make(chan capturedRequest, 8),
		seen:     map[string]bool{"https://cdn.example.com/live/master.m3u8": true},
	}
	page := newFakePage("https://example.com").
		onJSON("hasMediaSource", map[string]bool{"hasMediaSource": true, "blobVideo": false})

	s := &mediaSourceStrategy{watcher: watcher}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestAdultPatternsStrategy(t *testing.T) {
	page := newFakePage("https://example.com").
		onJSON(".mozaique", []map[string]any{
			{"href": "https://example.com/view_video.php?viewkey=abc", "title": "Some clip", "thumb": "/t/abc.jpg"},
		})

	s := &adultPatternsStrategy{}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].IsAdult)
	assert.Equal(t, TypeEmbedded, found[0].Type)
	assert.Equal(t, "https://example.com/t/abc.jpg", found[0].ThumbnailURL)
}

func TestCustomSelectorsStrategy(t *testing.T) {
	cfg := testConfig()
	cfg.CustomSelectors = []string{".my-player"}
	page := newFakePage("https://example.com").
		onJSON("push(inner, sel)", []map[string]any{
			{"src": "/media/custom.mp4", "selector": ".my-player"},
		})

	s := &customSelectorsStrategy{cfg: cfg}
	found, err := s.Run(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ".my-player", found[0].Metadata["selector"])
}

type stubStrategy struct {
	name  string
	found []VideoCandidate
	err   error
	panic bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Run(context.Context, Page) ([]VideoCandidate, error) {
	if s.panic {
		panic("strategy blew up")
	}
	return s.found, s.err
}

func TestRegistryIsolatesFailures(t *testing.T) {
	good := []VideoCandidate{{URL: "https://example.com/ok.mp4", FoundBy: "stub"}}
	r := &Registry{
		logger: log.With("component", "registry"),
		strategies: []Strategy{
			&stubStrategy{name: "panics", panic: true},
			&stubStrategy{name: "fails", err: errors.New("script blocked")},
			&stubStrategy{name: "works", found: good},
		},
	}

	found := r.RunAll(context.Background(), newFakePage("https://example.com"))
	require.Len(t, found, 1)
	assert.Equal(t, "https://example.com/ok.mp4", found[0].URL)
}

func TestRegistryComposition(t *testing.T) {
	cfg := testConfig()
	cfg.CustomSelectors = []string{".player"}
	r := newRegistry(cfg, true, nil)

	names := r.names()
	assert.Contains(t, names, strategyVideoElement)
	assert.Contains(t, names, strategyAdultPatterns)
	// custom selectors always run last
	assert.Equal(t, strategyCustom, names[len(names)-1])

	cfg.ScanIframes = false
	cfg.ScanScriptTags = false
	r = newRegistry(cfg, false, nil)
	assert.NotContains(t, r.names(), strategyIframe)
	assert.NotContains(t, r.names(), strategyScriptMining)
	assert.NotContains(t, r.names(), strategyAdultPatterns)
}

func TestStrategyEvaluateError(t *testing.T) {
	page := newFakePage("https://example.com").
		failOn("v.videoWidth", errors.New("execution context destroyed"))

	s := &videoElementStrategy{cfg: testConfig()}
	_, err := s.Run(context.Background(), page)
	assert.Error(t, err)
}
