// Package metadata implements the lightweight no-browser path: fetch one
// known-video URL over plain HTTP and parse its metadata out of the HTML.
// The heavyweight discovery engine lives in internal/extract; this path is
// for the "add one video by URL" flow where a full browser session is
// overkill.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/videograb/internal/extract"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Video is the metadata resolved for a single known-video URL.
type Video struct {
	URL          string                `json:"url"`
	Title        string                `json:"title,omitempty"`
	Description  string                `json:"description,omitempty"`
	ThumbnailURL string                `json:"thumbnailUrl,omitempty"`
	Provider     string                `json:"provider,omitempty"`
	Type         extract.CandidateType `json:"type"`
	VideoID      string                `json:"videoId,omitempty"`
	Duration     float64               `json:"duration,omitempty"`
}

// Client fetches and parses single-video pages.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  defaultUserAgent,
	}
}

// ExtractSingleVideo resolves metadata for one video page URL without a
// browser. The page URL itself is used as the video reference when it
// already points at a recognized platform; otherwise the document's OG
// tags, twitter:player, JSON-LD, and <video> elements are consulted in
// that order.
func (c *Client) ExtractSingleVideo(ctx context.Context, rawURL string) (*Video, error) {
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", extract.ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch failed: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return c.fromDocument(doc, rawURL), nil
}

func (c *Client) fromDocument(doc *goquery.Document, pageURL string) *Video {
	video := &Video{URL: pageURL, Type: extract.TypeUnknown}

	video.Title = firstNonEmpty(
		metaContent(doc, "meta[property='og:title']"),
		metaContent(doc, "meta[name='twitter:title']"),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	video.Description = firstNonEmpty(
		metaContent(doc, "meta[property='og:description']"),
		metaContent(doc, "meta[name='description']"),
	)
	video.ThumbnailURL = firstNonEmpty(
		metaContent(doc, "meta[property='og:image:secure_url']"),
		metaContent(doc, "meta[property='og:image']"),
	)

	if src := c.findVideoSource(doc, pageURL); src != "" {
		video.URL = src
	}

	if ld := c.findJSONLD(doc); ld != nil {
		if video.Title == "" {
			video.Title = ld.Title
		}
		if video.ThumbnailURL == "" {
			video.ThumbnailURL = ld.ThumbnailURL
		}
		video.Duration = ld.Duration
		if ld.URL != "" && video.URL == pageURL {
			video.URL = ld.URL
		}
	}

	if kind, _ := extract.ClassifyURL(video.URL); kind != extract.TypeUnknown {
		video.Type = kind
	}

	enriched := extract.EnrichPlatform(extract.VideoCandidate{
		URL:          video.URL,
		Title:        video.Title,
		ThumbnailURL: video.ThumbnailURL,
	})
	video.Provider = enriched.SourceWebsite
	video.VideoID = enriched.VideoID
	if video.ThumbnailURL == "" {
		video.ThumbnailURL = enriched.ThumbnailURL
	}
	if enriched.Type != "" {
		video.Type = enriched.Type
	}
	return video
}

// findVideoSource walks the document's direct video references in priority
// order: OG video tags, twitter:player, then the first <video>/<source>.
func (c *Client) findVideoSource(doc *goquery.Document, pageURL string) string {
	for _, sel := range []string{
		"meta[property='og:video:secure_url']",
		"meta[property='og:video:url']",
		"meta[property='og:video']",
		"meta[name='twitter:player']",
	} {
		if v := metaContent(doc, sel); v != "" {
			if abs := absolute(pageURL, v); abs != "" {
				return abs
			}
		}
	}

	var found string
	doc.Find("video").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if src, ok := s.Attr("src"); ok && src != "" {
			found = absolute(pageURL, src)
			return false
		}
		if src, ok := s.Find("source").First().Attr("src"); ok && src != "" {
			found = absolute(pageURL, src)
			return false
		}
		return true
	})
	return found
}

type jsonLDVideo struct {
	URL          string
	Title        string
	ThumbnailURL string
	Duration     float64
}

func (c *Client) findJSONLD(doc *goquery.Document) *jsonLDVideo {
	var found *jsonLDVideo
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if v := videoObjectFrom(data); v != nil {
			found = v
			return false
		}
		return true
	})
	return found
}

// videoObjectFrom locates the first schema.org VideoObject in a JSON-LD
// document, descending into @graph arrays.
func videoObjectFrom(node any) *jsonLDVideo {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if found := videoObjectFrom(item); found != nil {
				return found
			}
		}
	case map[string]any:
		if t, ok := v["@type"].(string); ok && strings.Contains(t, "Video") {
			out := &jsonLDVideo{}
			if s, ok := v["contentUrl"].(string); ok {
				out.URL = s
			} else if s, ok := v["embedUrl"].(string); ok {
				out.URL = s
			}
			if s, ok := v["name"].(string); ok {
				out.Title = s
			}
			if s, ok := v["thumbnailUrl"].(string); ok {
				out.ThumbnailURL = s
			}
			if s, ok := v["duration"].(string); ok {
				out.Duration = extract.ParseISO8601Duration(s)
			}
			return out
		}
		if graph, ok := v["@graph"]; ok {
			return videoObjectFrom(graph)
		}
	}
	return nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func absolute(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
