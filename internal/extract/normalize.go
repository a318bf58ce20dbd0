package extract

import (
	"net/url"
	"sort"
	"strings"
)

// Canonicalize produces the dedup key form of a URL. Direct media files lose
// their query string (cache busters and session tokens defeat duplicate
// matching); streaming manifests and platform embeds keep theirs, where the
// query is usually meaningful. Idempotent.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if kind, _, ok := classifyMediaURL(u.String(), nil); ok {
		if kind == TypeDirect || kind == TypeAudio {
			u.RawQuery = ""
		}
	}
	return u.String()
}

// Dedupe groups candidates by canonical URL. The first-seen candidate per
// group wins, but empty fields are filled from later duplicates and
// provenance accumulates so the scorer can award the union of their bonuses.
func Dedupe(candidates []VideoCandidate) []VideoCandidate {
	index := make(map[string]int)
	var out []VideoCandidate
	for _, c := range candidates {
		key := Canonicalize(c.URL)
		i, seen := index[key]
		if !seen {
			c.foundByAll = []string{c.FoundBy}
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		mergeCandidate(&out[i], c)
	}
	return out
}

func mergeCandidate(dst *VideoCandidate, src VideoCandidate) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.ThumbnailURL == "" {
		dst.ThumbnailURL = src.ThumbnailURL
	}
	if dst.SourceWebsite == "" {
		dst.SourceWebsite = src.SourceWebsite
	}
	if dst.VideoID == "" {
		dst.VideoID = src.VideoID
	}
	if dst.Format == "" {
		dst.Format = src.Format
	}
	if dst.Quality == "" {
		dst.Quality = src.Quality
	}
	if dst.Type == TypeUnknown && src.Type != TypeUnknown {
		dst.Type = src.Type
	}
	if dst.Attributes.Duration == 0 {
		dst.Attributes.Duration = src.Attributes.Duration
	}
	if dst.Attributes.Width == 0 {
		dst.Attributes.Width = src.Attributes.Width
		dst.Attributes.Height = src.Attributes.Height
	}
	if src.IsAdult {
		dst.IsAdult = true
	}
	for k, v := range src.Metadata {
		if _, ok := dst.Metadata[k]; !ok {
			dst.setMeta(k, v)
		}
	}
	for _, tag := range src.provenance() {
		found := false
		for _, have := range dst.foundByAll {
			if have == tag {
				found = true
				break
			}
		}
		if !found {
			dst.foundByAll = append(dst.foundByAll, tag)
		}
	}
}

// applyFilters drops invalid candidates: empty URLs always; known durations
// below the minimum when the filter is configured. Unknown durations are
// never dropped by the duration filter.
func applyFilters(candidates []VideoCandidate, cfg Config) []VideoCandidate {
	out := candidates[:0]
	for _, c := range candidates {
		if c.URL == "" {
			continue
		}
		if cfg.MinVideoDuration > 0 && c.Attributes.Duration > 0 &&
			c.Attributes.Duration < cfg.MinVideoDuration {
			continue
		}
		out = append(out, c)
	}
	return out
}

// finalize scores, orders, and truncates the merged candidate set. Ordering
// is descending confidence with stable insertion-order ties.
func finalize(candidates []VideoCandidate, cfg Config) []VideoCandidate {
	for i := range candidates {
		candidates[i].Confidence = scoreCandidate(&candidates[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > cfg.MaxVideos {
		candidates = candidates[:cfg.MaxVideos]
	}
	return candidates
}
