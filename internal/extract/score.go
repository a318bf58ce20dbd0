package extract

import "strings"

// Provenance bonus tiers. A merged candidate takes the best tier among all
// strategies that found it.
var provenanceBonus = map[string]float64{
	strategyVideoElement:   0.2,
	strategyNetworkRequest: 0.2,
	strategyJSONLD:         0.2,
	strategyPlayer:         0.1,
	strategyIframe:         0.05,
	strategyMediaElements:  0.05,
	strategyMediaSource:    0.05,
	strategyDataAttribute:  0.05,
	strategyCSSBackground:  0.05,
	strategyAdultPatterns:  0.05,
	strategyCustom:         0.05,
	// script-tag-mining and anchor-tag carry no bonus: least reliable.
}

var genericTitles = map[string]bool{
	"": true, "video": true, "player": true, "untitled": true, "watch": true,
}

const (
	scoreBase = 0.5
	scoreMin  = 0.1
	scoreMax  = 1.0
)

// scoreCandidate computes the deterministic confidence for one candidate.
// Run once, over the deduplicated set, so merged provenance counts.
func scoreCandidate(c *VideoCandidate) float64 {
	score := scoreBase

	switch c.Type {
	case TypeDirect:
		score += 0.3
	case TypeHLS, TypeDASH:
		score += 0.15
	case TypeYouTube, TypeVimeo, TypeDailymotion, TypeFacebook:
		score += 0.1
	case TypeEmbedded:
		// Twitch and the adult tubes stay TypeEmbedded but are still
		// recognized platforms; the enricher records the platform name.
		if recognizedPlatform(c.SourceWebsite) {
			score += 0.1
		}
	}

	var best float64
	for _, tag := range c.provenance() {
		if b := provenanceBonus[tag]; b > best {
			best = b
		}
	}
	score += best

	if !genericTitles[strings.ToLower(strings.TrimSpace(c.Title))] {
		score += 0.05
	}
	if c.ThumbnailURL != "" {
		score += 0.05
	}
	if c.Quality != "" && c.Quality != "unknown" {
		score += 0.05
	}

	if score < scoreMin {
		return scoreMin
	}
	if score > scoreMax {
		return scoreMax
	}
	return score
}
