package extract

import (
	"net/url"
	"path"
	"strings"
)

var videoExtensions = map[string]CandidateType{
	"mp4":  TypeDirect,
	"webm": TypeDirect,
	"ogg":  TypeDirect,
	"ogv":  TypeDirect,
	"mov":  TypeDirect,
	"avi":  TypeDirect,
	"mkv":  TypeDirect,
	"flv":  TypeDirect,
	"ts":   TypeDirect,
	"m3u8": TypeHLS,
	"mpd":  TypeDASH,
}

var audioExtensions = map[string]bool{
	"mp3": true, "m4a": true, "aac": true, "wav": true, "flac": true, "oga": true,
}

// urlExtension returns the lowercase file extension of a URL path, without
// the leading dot and ignoring the query string.
func urlExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	return strings.ToLower(ext)
}

// classifyMediaURL maps a URL to a candidate type by extension. extra lists
// caller-configured extensions that are accepted as direct files.
func classifyMediaURL(rawURL string, extra []string) (CandidateType, string, bool) {
	ext := urlExtension(rawURL)
	if ext == "" {
		return TypeUnknown, "", false
	}
	if t, ok := videoExtensions[ext]; ok {
		return t, ext, true
	}
	if audioExtensions[ext] {
		return TypeAudio, ext, true
	}
	for _, e := range extra {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return TypeDirect, ext, true
		}
	}
	return TypeUnknown, "", false
}

// ClassifyURL maps a URL to a delivery type by file extension. Returns
// TypeUnknown when the extension is not a recognized media format.
func ClassifyURL(rawURL string) (CandidateType, string) {
	kind, format, ok := classifyMediaURL(rawURL, nil)
	if !ok {
		return TypeUnknown, ""
	}
	return kind, format
}

// isStreamManifest reports whether a URL points at an HLS or DASH manifest.
func isStreamManifest(rawURL string) bool {
	switch urlExtension(rawURL) {
	case "m3u8", "mpd":
		return true
	}
	return false
}

// qualityBucket maps a pixel height to the usual resolution label.
func qualityBucket(height int) string {
	switch {
	case height >= 2160:
		return "2160p"
	case height >= 1440:
		return "1440p"
	case height >= 1080:
		return "1080p"
	case height >= 720:
		return "720p"
	case height >= 480:
		return "480p"
	case height >= 360:
		return "360p"
	case height > 0:
		return "240p"
	default:
		return ""
	}
}

func hostOfURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// resolveURL makes href absolute against the page base. Returns "" when the
// result is not a usable http(s) URL.
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "data:") {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
