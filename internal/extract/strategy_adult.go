package extract

import (
	"context"
)

type rawAdultHit struct {
	Href  string `json:"href"`
	Src   string `json:"src"`
	Title string `json:"title"`
	Thumb string `json:"thumb"`
}

// adultPatternsStrategy applies the container and attribute heuristics the
// big tube sites share (thumbnail grids of .video-item / .thumb blocks with
// a viewkey-style link). Only registered when the session is adult-flagged.
type adultPatternsStrategy struct{}

func (s *adultPatternsStrategy) Name() string { return strategyAdultPatterns }

func (s *adultPatternsStrategy) Run(ctx context.Context, page Page) ([]VideoCandidate, error) {
	js := `
	(() => {
		const out = [];
		const containers = document.querySelectorAll(
			'.video-item, .video-box, .thumb-list__item, .video-thumb, .thumb-block, ' +
			'li[data-video-id], div[data-video-id], .videoblock, .mozaique .thumb'
		);
		containers.forEach(el => {
			const a = el.querySelector('a[href]');
			if (!a) return;
			const img = el.querySelector('img');
			out.push({
				href: a.href,
				src: el.getAttribute('data-video-url') || el.getAttribute('data-preview') || '',
				title: a.title || (img && img.alt) || (a.textContent || '').trim().slice(0, 200),
				thumb: (img && (img.getAttribute('data-src') || img.src)) || ''
			});
		});
		return JSON.stringify(out);
	})()`

	var hits []rawAdultHit
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
		kind, format, ok := classifyMediaURL(abs, nil)
		if !ok {
			kind = TypeEmbedded
		}
		out = append(out, VideoCandidate{
			URL:          abs,
			Title:        h.Title,
			ThumbnailURL: resolveURL(page.URL(), h.Thumb),
			FoundBy:      strategyAdultPatterns,
			Type:         kind,
			Format:       format,
			IsAdult:      true,
		})
	}
	return out, nil
}
