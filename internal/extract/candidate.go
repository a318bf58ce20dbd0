package extract

// CandidateType classifies how a discovered video is delivered.
type CandidateType string

const (
	TypeDirect      CandidateType = "direct"
	TypeHLS         CandidateType = "hls-stream"
	TypeDASH        CandidateType = "dash-stream"
	TypeEmbedded    CandidateType = "embedded"
	TypeYouTube     CandidateType = "youtube"
	TypeVimeo       CandidateType = "vimeo"
	TypeDailymotion CandidateType = "dailymotion"
	TypeFacebook    CandidateType = "facebook"
	TypeAudio       CandidateType = "audio"
	TypeUnknown     CandidateType = "unknown"
)

// Attributes holds intrinsic media properties when the page exposes them.
type Attributes struct {
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Duration float64 `json:"duration,omitempty"` // seconds
}

// VideoCandidate is one unverified video reference discovered by a strategy.
// URL is always absolute, resolved against the page it was found on.
type VideoCandidate struct {
	URL           string            `json:"url"`
	Title         string            `json:"title,omitempty"`
	ThumbnailURL  string            `json:"thumbnailUrl,omitempty"`
	SourceWebsite string            `json:"sourceWebsite,omitempty"`
	FoundBy       string            `json:"foundBy"`
	Type          CandidateType     `json:"type"`
	Format        string            `json:"format,omitempty"`
	Quality       string            `json:"quality,omitempty"`
	Attributes    Attributes        `json:"attributes,omitempty"`
	VideoID       string            `json:"videoId,omitempty"`
	IsAdult       bool              `json:"isAdultContent"`
	Confidence    float64           `json:"confidence"`
	Metadata      map[string]string `json:"metadata,omitempty"`

	// foundByAll accumulates provenance tags when duplicates are merged, so
	// the scorer can award the union of strategy bonuses.
	foundByAll []string
}

func (c *VideoCandidate) provenance() []string {
	if len(c.foundByAll) > 0 {
		return c.foundByAll
	}
	return []string{c.FoundBy}
}

func (c *VideoCandidate) setMeta(key, value string) {
	if value == "" {
		return
	}
	if c.Metadata == nil {
		c.Metadata = make(map[string]string)
	}
	c.Metadata[key] = value
}

// Pagination summarises how far the crawl got.
type Pagination struct {
	TotalPages   int `json:"totalPages"`
	PagesScanned int `json:"pagesScanned"`
}

// ResultMetadata carries ancillary information about an extraction run.
type ResultMetadata struct {
	PageTitle         string     `json:"pageTitle,omitempty"`
	ExtractionMethods []string   `json:"extractionMethods"`
	Pagination        Pagination `json:"pagination"`
}

// Result is the final answer for one extraction request. Videos are sorted by
// descending confidence and capped at Config.MaxVideos.
type Result struct {
	URL      string           `json:"url"`
	Domain   string           `json:"domain"`
	IsAdult  bool             `json:"isAdultContent"`
	Videos   []VideoCandidate `json:"videos"`
	Metadata ResultMetadata   `json:"metadata"`
}
