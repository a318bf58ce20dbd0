package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// evaluateJSON runs an IIFE that returns JSON.stringify(...) and unmarshals
// the result. Keeping the wire format as a JSON string avoids CDP's lossy
// object serialization for nested structures.
func evaluateJSON(ctx context.Context, page Page, js string, out any) error {
	var raw string
	if err := page.Evaluate(ctx, js, &raw); err != nil {
		return err
	}
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

// jsRoots emits the root-set prelude shared by DOM strategies. With
// scanOnlyMain, queries are scoped to the main content containers when the
// page has any.
func jsRoots(scanOnlyMain bool) string {
	if scanOnlyMain {
		return `const roots = (() => {
			const m = document.querySelectorAll('article, main, [role="main"]');
			return m.length ? Array.from(m) : [document];
		})();`
	}
	return `const roots = [document];`
}

type rawMediaElement struct {
	Src      string  `json:"src"`
	Poster   string  `json:"poster"`
	Title    string  `json:"title"`
	Format   string  `json:"format"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration"`
}

// videoElementStrategy reads <video> and nested <source> nodes, the most
// structurally reliable DOM signal.
type videoElementStrategy struct{ cfg Config }

func (s *videoElementStrategy) Name() string { return strategyVideoElement }

func (s *videoElementStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	js := fmt.Sprintf(`
	(() => {
		%s
		const out = [];
		roots.forEach(root => {
			root.querySelectorAll('video').forEach(v => {
				const meta = {
					poster: v.poster || '',
					title: v.title || v.getAttribute('aria-label') || '',
					width: v.videoWidth || v.width || 0,
					height: v.videoHeight || v.height || 0,
					duration: (isFinite(v.duration) && v.duration) || 0
				};
				if (v.src) out.push(Object.assign({src: v.src}, meta));
				v.querySelectorAll('source').forEach(src => {
					if (src.src) out.push(Object.assign({src: src.src, format: src.type || ''}, meta));
				});
			});
		});
		return JSON.stringify(out);
	})()`, jsRoots(s.cfg.ScanOnlyMain))

	var elements []rawMediaElement
	if err := evaluateJSON(ctx, page, js, &elements); err != nil {
		return nil, err
	}

	var out []VideoCandidate
	for _, el := range elements {
		abs := resolveURL(page.URL(), el.Src)
		if abs == "" {
			continue
		}
		kind, format, ok := classifyMediaURL(abs, s.cfg.FileExtensions)
		if !ok {
			kind = TypeDirect
		}
		if format == "" && el.Format != "" {
			// <source type="video/mp4"> style hints
			if parts := strings.SplitN(el.Format, "/", 2); len(parts) == 2 {
				format = parts[1]
			}
		}
		c := VideoCandidate{
			URL:          abs,
			Title:        el.Title,
			ThumbnailURL: resolveURL(page.URL(), el.Poster),
			FoundBy:      strategyVideoElement,
			Type:         kind,
			Format:       format,
			Quality:      qualityBucket(el.Height),
			Attributes:   Attributes{Width: el.Width, Height: el.Height, Duration: el.Duration},
		}
		out = append(out, c)
	}
	return out, nil
}

// mediaElementsStrategy covers <audio> the same way; candidates are tagged
// as audio so callers can filter them out.
type mediaElementsStrategy struct{ cfg Config }

func (s *mediaElementsStrategy) Name() string { return strategyMediaElements }

func (s *mediaElementsStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	js := fmt.Sprintf(`
	(() => {
		%s
		const out = [];
		roots.forEach(root => {
			root.querySelectorAll('audio').forEach(a => {
				const meta = {
					title: a.title || '',
					duration: (isFinite(a.duration) && a.duration) || 0
				};
				if (a.src) out.push(Object.assign({src: a.src}, meta));
				a.querySelectorAll('source').forEach(src => {
					if (src.src) out.push(Object.assign({src: src.src, format: src.type || ''}, meta));
				});
			});
		});
		return JSON.stringify(out);
	})()`, jsRoots(s.cfg.ScanOnlyMain))

	var elements []rawMediaElement
	if err := evaluateJSON(ctx, page, js, &elements); err != nil {
		return nil, err
	}

	var out []VideoCandidate
	for _, el := range elements {
		abs := resolveURL(page.URL(), el.Src)
		if abs == "" {
			continue
		}
		_, format, _ := classifyMediaURL(abs, nil)
		out = append(out, VideoCandidate{
			URL:        abs,
			Title:      el.Title,
			FoundBy:    strategyMediaElements,
			Type:       TypeAudio,
			Format:     format,
			Attributes: Attributes{Duration: el.Duration},
		})
	}
	return out, nil
}

type rawIframe struct {
	Src    string `json:"src"`
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// iframeStrategy collects iframe embeds pointing at known video hosts or
// generic player paths. The platform enricher resolves IDs afterwards.
type iframeStrategy struct{ cfg Config }

func (s *iframeStrategy) Name() string { return strategyIframe }

var embedPathPattern = regexp.MustCompile(`(?i)/(embed|player|video)[/?]`)

func (s *iframeStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	js := fmt.Sprintf(`
	(() => {
		%s
		const out = [];
		roots.forEach(root => {
			root.querySelectorAll('iframe[src]').forEach(f => {
				out.push({
					src: f.src,
					title: f.title || '',
					width: f.width ? parseInt(f.width, 10) || 0 : 0,
					height: f.height ? parseInt(f.height, 10) || 0 : 0
				});
			});
		});
		return JSON.stringify(out);
	})()`, jsRoots(s.cfg.ScanOnlyMain))

	var frames []rawIframe
	if err := evaluateJSON(ctx, page, js, &frames); err != nil {
		return nil, err
	}

	var out []VideoCandidate
	for _, f := range frames {
		abs := resolveURL(page.URL(), f.Src)
		if abs == "" {
			continue
		}
		if !knownEmbedHost(abs) && !embedPathPattern.MatchString(abs) {
			continue
		}
		out = append(out, VideoCandidate{
			URL:        abs,
			Title:      f.Title,
			FoundBy:    strategyIframe,
			Type:       TypeEmbedded,
			Quality:    qualityBucket(f.Height),
			Attributes: Attributes{Width: f.Width, Height: f.Height},
		})
	}
	return out, nil
}

type rawAttrHit struct {
	Value    string `json:"value"`
	Attr     string `json:"attr"`
	Selector string `json:"selector"`
}

// dataAttributeStrategy probes the data-* attributes lazy players stash
// their real sources in.
type dataAttributeStrategy struct{ cfg Config }

func (s *dataAttributeStrategy) Name() string { return strategyDataAttribute }

var dataAttrNames = []string{
	"data-src", "data-video", "data-video-src", "data-video-url",
	"data-url", "data-mp4", "data-hls", "data-stream", "data-file",
}

func (s *dataAttributeStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	attrList, _ := json.Marshal(dataAttrNames)
	js := fmt.Sprintf(`
	(() => {
		%s
		const attrs = %s;
		const out = [];
		roots.forEach(root => {
			attrs.forEach(attr => {
				root.querySelectorAll('[' + attr + ']').forEach(el => {
					const v = el.getAttribute(attr);
					if (v) out.push({value: v, attr: attr, selector: el.tagName.toLowerCase()});
				});
			});
		});
		return JSON.stringify(out);
	})()`, jsRoots(s.cfg.ScanOnlyMain), attrList)

	var hits []rawAttrHit
	if err := evaluateJSON(ctx, page, js, &hits); err != nil {
		return nil, err
	}

	var out []VideoCandidate
	for _, h := range hits {
		abs := resolveURL(page.URL(), h.Value)
		if abs == "" {
			continue
		}
		kind, format, ok := classifyMediaURL(abs, s.cfg.FileExtensions)
		if !ok {
			if !knownEmbedHost(abs) {
				continue
			}
			kind = TypeEmbedded
		}
		c := VideoCandidate{
			URL:     abs,
			FoundBy: strategyDataAttribute,
			Type:    kind,
			Format:  format,
		}
		c.setMeta("attribute", h.Attr)
		out = append(out, c)
	}
	return out, nil
}

type rawAnchor struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// anchorTagStrategy scans links for configured file extensions and common
// video path shapes. Weak signal, scored accordingly.
type anchorTagStrategy struct{ cfg Config }

func (s *anchorTagStrategy) Name() string { return strategyAnchorTag }

var videoPathPattern = regexp.MustCompile(`(?i)/(watch|video|videos|clip|v)/[\w-]+`)

func (s *anchorTagStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	js := fmt.Sprintf(`
	(() => {
		%s
		const out = [];
		roots.forEach(root => {
			root.querySelectorAll('a[href]').forEach(a => {
				const href = a.href;
				if (!href || href.startsWith('javascript:') || href.startsWith('mailto:') || href.startsWith('#')) return;
				out.push({href: href, text: (a.textContent || '').trim().slice(0, 200)});
			});
		});
		return JSON.stringify(out);
	})()`, jsRoots(s.cfg.ScanOnlyMain))

	var anchors []rawAnchor
	if err := evaluateJSON(ctx, page, js, &anchors); err != nil {
		return nil, err
	}

	pageHost := hostOf(page.URL())
	var out []VideoCandidate
	for _, a := range anchors {
		abs := resolveURL(page.URL(), a.Href)
		if abs == "" {
			continue
		}
		kind, format, isFile := classifyMediaURL(abs, s.cfg.FileExtensions)
		if !isFile {
			if !videoPathPattern.MatchString(abs) {
				continue
			}
			if !s.cfg.FollowExternal && hostOf(abs) != pageHost && !knownEmbedHost(abs) {
				continue
			}
			kind, format = TypeUnknown, ""
		}
		out = append(out, VideoCandidate{
			URL:     abs,
			Title:   a.Text,
			FoundBy: strategyAnchorTag,
			Type:    kind,
			Format:  format,
		})
	}
	return out, nil
}

// cssBackgroundStrategy catches the rare inline style pointing straight at
// a video file.
type cssBackgroundStrategy struct{}

func (s *cssBackgroundStrategy) Name() string { return strategyCSSBackground }

var cssURLPattern = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)

func (s *cssBackgroundStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	js := `
	(() => {
		const out = [];
		document.querySelectorAll('[style*="url("]').forEach(el => {
			out.push({value: el.getAttribute('style') || ''});
		});
		return JSON.stringify(out);
	})()`

	var hits []rawAttrHit
	if err := evaluateJSON(ctx, page, js, &hits); err != nil {
		return nil, err
	}

	var out []VideoCandidate
	for _, h := range hits {
		for _, m := range cssURLPattern.FindAllStringSubmatch(h.Value, -1) {
			abs := resolveURL(page.URL(), m[1])
			if abs == "" {
				continue
			}
			kind, format, ok := classifyMediaURL(abs, nil)
			if !ok || kind == TypeAudio {
				continue
			}
			out = append(out, VideoCandidate{
				URL:     abs,
				FoundBy: strategyCSSBackground,
				Type:    kind,
				Format:  format,
			})
		}
	}
	return out, nil
}

type rawCustomHit struct {
	Src      string `json:"src"`
	Href     string `json:"href"`
	Title    string `json:"title"`
	Selector string `json:"selector"`
}

// customSelectorsStrategy checks caller-supplied selectors, plus any <video>
// or <iframe> nested under them. Runs last so caller intent can widen
// whatever the built-ins covered.
type customSelectorsStrategy struct{ cfg Config }

func (s *customSelectorsStrategy) Name() string { return strategyCustom }

func (s *customSelectorsStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	selList, _ := json.Marshal(s.cfg.CustomSelectors)
	js := fmt.Sprintf(`
	(() => {
		const selectors = %s;
		const out = [];
		const push = (el, sel) => {
			out.push({
				src: el.src || el.getAttribute('data-src') || '',
				href: el.href || '',
				title: el.title || '',
				selector: sel
			});
		};
		selectors.forEach(sel => {
			let els;
			try { els = document.querySelectorAll(sel); } catch (e) { return; }
			els.forEach(el => {
				push(el, sel);
				el.querySelectorAll('video, video source, iframe[src]').forEach(inner => push(inner, sel));
			});
		});
		return JSON.stringify(out);
	})()`, selList)

	var hits []rawCustomHit
	if err := evaluateJSON(ctx, page, js, &hits); err != nil {
		return nil, err
	}

	var out []VideoCandidate
	for _, h := range hits {
		raw := h.Src
		if raw == "" {
			raw = h.Href
		}
		abs := resolveURL(page.URL(), raw)
		if abs == "" {
			continue
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
			URL:     abs,
			Title:   h.Title,
			FoundBy: strategyCustom,
			Type:    kind,
			Format:  format,
		}
		c.setMeta("selector", h.Selector)
		out = append(out, c)
	}
	return out, nil
}

func hostOf(rawURL string) string {
	return strings.ToLower(hostOfURL(rawURL))
}
