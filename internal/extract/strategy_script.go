package extract

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

type rawScript struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// scriptMiningStrategy digs through inline <script> content: JSON-LD
// VideoObject blocks first, then regex patterns for the file/src/hls/dash
// keys players hide their sources behind. The regex tier is the least
// structurally reliable signal in the registry and is scored as advisory.
type scriptMiningStrategy struct{ cfg Config }

func (s *scriptMiningStrategy) Name() string { return strategyScriptMining }

var scriptSourcePattern = regexp.MustCompile(
	`(?i)["']?(?:file|src|source|url|hls|hlsUrl|dash|dashUrl|stream|streamUrl|videoUrl|mp4)["']?\s*[:=]\s*["']((?:https?:)?//[^"'\s\\]+?\.(?:mp4|webm|mov|m3u8|mpd)(?:\?[^"'\s\\]*)?)["']`)

func (s *scriptMiningStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	js := `
	(() => {
		const out = [];
		document.querySelectorAll('script').forEach(sc => {
			if (sc.src) return;
			const text = sc.textContent || '';
			if (!text.trim()) return;
			out.push({type: sc.type || '', text: text.slice(0, 100000)});
		});
		return JSON.stringify(out);
	})()`

	var scripts []rawScript
	if err := evaluateJSON(ctx, page, js, &scripts); err != nil {
		return nil, err
	}

	var out []VideoCandidate
	for _, sc := range scripts {
		if strings.Contains(sc.Type, "ld+json") {
			out = append(out, s.mineJSONLD(page.URL(), sc.Text)...)
			continue
		}
		out = append(out, s.mineRegex(page.URL(), sc.Text)...)
	}
	return out, nil
}

func (s *scriptMiningStrategy) mineJSONLD(pageURL, text string) []VideoCandidate {
	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil
	}
	var out []VideoCandidate
	walkJSONLD(data, func(obj map[string]any) {
		videoURL := firstString(obj, "contentUrl", "embedUrl", "url")
		if videoURL == "" {
			return
		}
		abs := resolveURL(pageURL, videoURL)
		if abs == "" {
			return
		}
		kind, format, ok := classifyMediaURL(abs, s.cfg.FileExtensions)
		if !ok {
			if knownEmbedHost(abs) {
				kind = TypeEmbedded
			} else {
				kind = TypeUnknown
			}
		}
		c := VideoCandidate{
			URL:          abs,
			Title:        firstString(obj, "name", "headline"),
			ThumbnailURL: resolveURL(pageURL, firstString(obj, "thumbnailUrl")),
			FoundBy:      strategyJSONLD,
			Type:         kind,
			Format:       format,
		}
		if dur := firstString(obj, "duration"); dur != "" {
			c.Attributes.Duration = ParseISO8601Duration(dur)
			c.setMeta("durationText", dur)
		}
		out = append(out, c)
	})
	return out
}

func (s *scriptMiningStrategy) mineRegex(pageURL, text string) []VideoCandidate {
	var out []VideoCandidate
	for _, m := range scriptSourcePattern.FindAllStringSubmatch(text, -1) {
		abs := resolveURL(pageURL, m[1])
		if abs == "" {
			continue
		}
		kind, format, ok := classifyMediaURL(abs, s.cfg.FileExtensions)
		if !ok {
			continue
		}
		out = append(out, VideoCandidate{
			URL:     abs,
			FoundBy: strategyScriptMining,
			Type:    kind,
			Format:  format,
		})
	}
	return out
}

// walkJSONLD visits every object in a JSON-LD document, descending into
// @graph arrays and nested values, and calls fn on each VideoObject.
func walkJSONLD(node any, fn func(map[string]any)) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			walkJSONLD(item, fn)
		}
	case map[string]any:
		if isVideoObject(v) {
			fn(v)
		}
		for _, val := range v {
			walkJSONLD(val, fn)
		}
	}
}

func isVideoObject(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return strings.Contains(t, "Video")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.Contains(s, "Video") {
				return true
			}
		}
	}
	return false
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

var iso8601Pattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// ParseISO8601Duration handles the PT#H#M#S form used by schema.org.
// Returns 0 when the value does not parse.
func ParseISO8601Duration(s string) float64 {
	m := iso8601Pattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	var total float64
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		total += float64(h) * 3600
	}
	if m[2] != "" {
		min, _ := strconv.Atoi(m[2])
		total += float64(min) * 60
	}
	if m[3] != "" {
		sec, _ := strconv.ParseFloat(m[3], 64)
		total += sec
	}
	return total
}

type rawPlayerItem struct {
	Src      string  `json:"src"`
	Title    string  `json:"title"`
	Poster   string  `json:"poster"`
	Duration float64 `json:"duration"`
	Player   string  `json:"player"`
}

// playerIntrospectionStrategy asks known in-page player runtimes (JWPlayer,
// Video.js, Plyr) for their playlists. Structured and high-confidence when
// it hits.
type playerIntrospectionStrategy struct{}

func (s *playerIntrospectionStrategy) Name() string { return strategyPlayer }

func (s *playerIntrospectionStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	js := `
	(() => {
		const out = [];
		try {
			if (typeof window.jwplayer === 'function') {
				const p = window.jwplayer();
				if (p && typeof p.getPlaylist === 'function') {
					(p.getPlaylist() || []).forEach(item => {
						const sources = item.sources && item.sources.length ? item.sources : (item.file ? [{file: item.file}] : []);
						sources.forEach(src => {
							if (src.file) out.push({src: src.file, title: item.title || '', poster: item.image || '', player: 'jwplayer'});
						});
					});
				}
			}
		} catch (e) {}
		try {
			if (window.videojs && typeof window.videojs.getAllPlayers === 'function') {
				window.videojs.getAllPlayers().forEach(p => {
					const src = typeof p.currentSrc === 'function' ? p.currentSrc() : '';
					if (src) out.push({
						src: src,
						poster: (typeof p.poster === 'function' && p.poster()) || '',
						duration: (typeof p.duration === 'function' && isFinite(p.duration()) && p.duration()) || 0,
						player: 'videojs'
					});
				});
			}
		} catch (e) {}
		try {
			if (window.Plyr) {
				document.querySelectorAll('.plyr video, [data-plyr] video').forEach(v => {
					const src = v.currentSrc || v.src;
					if (src) out.push({
						src: src,
						poster: v.poster || '',
						duration: (isFinite(v.duration) && v.duration) || 0,
						player: 'plyr'
					});
				});
			}
		} catch (e) {}
		return JSON.stringify(out);
	})()`

	var items []rawPlayerItem
	if err := evaluateJSON(ctx, page, js, &items); err != nil {
		return nil, err
	}

	var out []VideoCandidate
	for _, item := range items {
		abs := resolveURL(page.URL(), item.Src)
		if abs == "" || strings.HasPrefix(item.Src, "blob:") {
			continue
		}
		kind, format, ok := classifyMediaURL(abs, nil)
		if !ok {
			kind = TypeDirect
		}
		c := VideoCandidate{
			URL:          abs,
			Title:        item.Title,
			ThumbnailURL: resolveURL(page.URL(), item.Poster),
			FoundBy:      strategyPlayer,
			Type:         kind,
			Format:       format,
			Attributes:   Attributes{Duration: item.Duration},
		}
		c.setMeta("player", item.Player)
		out = append(out, c)
	}
	return out, nil
}

type rawMSEState struct {
	HasMediaSource bool `json:"hasMediaSource"`
	BlobVideo      bool `json:"blobVideo"`
}

// mediaSourceStrategy detects MediaSource playback (video elements fed from
// blob: URLs, no direct src to scrape) and falls back to the stream
// manifests the network watcher intercepted.
type mediaSourceStrategy struct{ watcher *networkWatcher }

func (s *mediaSourceStrategy) Name() string { return strategyMediaSource }

func (s *mediaSourceStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	if s.watcher == nil {
		return nil, nil
	}
	js := `
	(() => {
		const vids = Array.from(document.querySelectorAll('video'));
		return JSON.stringify({
			hasMediaSource: typeof window.MediaSource !== 'undefined',
			blobVideo: vids.some(v => (v.src || '').startsWith('blob:'))
		});
	})()`

	var state rawMSEState
	if err := evaluateJSON(ctx, page, js, &state); err != nil {
		return nil, err
	}
	if !state.HasMediaSource || !state.BlobVideo {
		return nil, nil
	}

	var out []VideoCandidate
	for _, manifest := range s.watcher.manifests() {
		abs := resolveURL(page.URL(), manifest)
		if abs == "" {
			continue
		}
		kind, format, _ := classifyMediaURL(abs, nil)
		out = append(out, VideoCandidate{
			URL:     abs,
			FoundBy: strategyMediaSource,
			Type:    kind,
			Format:  format,
		})
	}
	return out, nil
}
