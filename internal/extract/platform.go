package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// platformRule describes one recognized video host: how to match it, how to
// pull the native video ID out of a URL, and how to synthesize a thumbnail
// when the platform has a predictable pattern.
type platformRule struct {
	name      string
	kind      CandidateType
	hosts     []string
	adult     bool
	extractID func(*url.URL) string
	thumbnail func(id string) string
}

func hostMatches(host string, suffixes []string) bool {
	for _, s := range suffixes {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

var (
	youtubeIDPattern     = regexp.MustCompile(`^[\w-]+$`)
	vimeoPathPattern     = regexp.MustCompile(`^/(?:video/)?(\d+)`)
	dailymotionPattern   = regexp.MustCompile(`^/(?:embed/)?video/([a-zA-Z0-9]+)`)
	facebookVideoPattern = regexp.MustCompile(`/videos/(\d+)`)
	xvideosPattern       = regexp.MustCompile(`^/video([\w.]+)/`)
	redtubePattern       = regexp.MustCompile(`^/(\d+)`)
)

func youtubeID(u *url.URL) string {
	var id string
	switch {
	case u.Hostname() == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case u.Path == "/watch" || u.Path == "/details":
		id = u.Query().Get("v")
	case strings.HasPrefix(u.Path, "/embed/"),
		strings.HasPrefix(u.Path, "/shorts/"),
		strings.HasPrefix(u.Path, "/v/"):
		parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
		if len(parts) == 2 {
			id = parts[1]
		}
	}
	id = strings.SplitN(id, "/", 2)[0]
	if !youtubeIDPattern.MatchString(id) {
		return ""
	}
	return id
}

var platformRules = []platformRule{
	{
		name:  "YouTube",
		kind:  TypeYouTube,
		hosts: []string{"youtube.com", "youtube-nocookie.com", "youtu.be"},
		extractID: func(u *url.URL) string {
			return youtubeID(u)
		},
		thumbnail: func(id string) string {
			return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
		},
	},
	{
		name:  "Vimeo",
		kind:  TypeVimeo,
		hosts: []string{"vimeo.com", "player.vimeo.com"},
		extractID: func(u *url.URL) string {
			if m := vimeoPathPattern.FindStringSubmatch(u.Path); m != nil {
				return m[1]
			}
			return ""
		},
		thumbnail: func(id string) string {
			return fmt.Sprintf("https://vumbnail.com/%s.jpg", id)
		},
	},
	{
		name:  "Dailymotion",
		kind:  TypeDailymotion,
		hosts: []string{"dailymotion.com", "dai.ly"},
		extractID: func(u *url.URL) string {
			if u.Hostname() == "dai.ly" {
				return strings.Trim(u.Path, "/")
			}
			if m := dailymotionPattern.FindStringSubmatch(u.Path); m != nil {
				return m[1]
			}
			return ""
		},
		thumbnail: func(id string) string {
			return fmt.Sprintf("https://www.dailymotion.com/thumbnail/video/%s", id)
		},
	},
	{
		name:  "Facebook",
		kind:  TypeFacebook,
		hosts: []string{"facebook.com", "fb.watch"},
		extractID: func(u *url.URL) string {
			if u.Path == "/watch" || u.Path == "/watch/" {
				return u.Query().Get("v")
			}
			if m := facebookVideoPattern.FindStringSubmatch(u.Path); m != nil {
				return m[1]
			}
			return ""
		},
	},
	{
		name:  "Twitch",
		kind:  TypeEmbedded,
		hosts: []string{"twitch.tv", "player.twitch.tv"},
		extractID: func(u *url.URL) string {
			if strings.HasPrefix(u.Path, "/videos/") {
				return strings.TrimPrefix(u.Path, "/videos/")
			}
			return u.Query().Get("video")
		},
	},
	{
		name:  "Pornhub",
		kind:  TypeEmbedded,
		hosts: []string{"pornhub.com"},
		adult: true,
		extractID: func(u *url.URL) string {
			if u.Path == "/view_video.php" {
				return u.Query().Get("viewkey")
			}
			if strings.HasPrefix(u.Path, "/embed/") {
				return strings.TrimPrefix(u.Path, "/embed/")
			}
			return ""
		},
	},
	{
		name:  "XVideos",
		kind:  TypeEmbedded,
		hosts: []string{"xvideos.com"},
		adult: true,
		extractID: func(u *url.URL) string {
			if m := xvideosPattern.FindStringSubmatch(u.Path); m != nil {
				return m[1]
			}
			return ""
		},
	},
	{
		name:  "xHamster",
		kind:  TypeEmbedded,
		hosts: []string{"xhamster.com"},
		adult: true,
		extractID: func(u *url.URL) string {
			parts := strings.Split(strings.Trim(u.Path, "/"), "-")
			if len(parts) > 1 && strings.HasPrefix(u.Path, "/videos/") {
				return parts[len(parts)-1]
			}
			return ""
		},
	},
	{
		name:  "RedTube",
		kind:  TypeEmbedded,
		hosts: []string{"redtube.com"},
		adult: true,
		extractID: func(u *url.URL) string {
			if m := redtubePattern.FindStringSubmatch(u.Path); m != nil {
				return m[1]
			}
			return ""
		},
	},
}

// knownEmbedHost reports whether a URL points at any recognized platform.
func knownEmbedHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, rule := range platformRules {
		if hostMatches(host, rule.hosts) {
			return true
		}
	}
	return false
}

// recognizedPlatform reports whether a source label is one of the platform
// rule names, as opposed to the bare hostname unknown sources carry.
func recognizedPlatform(source string) bool {
	for _, rule := range platformRules {
		if rule.name == source {
			return true
		}
	}
	return false
}

// EnrichPlatform rewrites a candidate whose URL matches a recognized
// platform: native ID, canonical source name, platform type, and a
// synthesized thumbnail where the platform supports one. Unknown hosts pass
// through unchanged.
func EnrichPlatform(c VideoCandidate) VideoCandidate {
	u, err := url.Parse(c.URL)
	if err != nil {
		return c
	}
	host := strings.ToLower(u.Hostname())
	for _, rule := range platformRules {
		if !hostMatches(host, rule.hosts) {
			continue
		}
		c.SourceWebsite = rule.name
		c.Type = rule.kind
		if rule.adult {
			c.IsAdult = true
		}
		if rule.extractID != nil {
			if id := rule.extractID(u); id != "" {
				c.VideoID = id
				if c.ThumbnailURL == "" && rule.thumbnail != nil {
					c.ThumbnailURL = rule.thumbnail(id)
				}
			}
		}
		return c
	}
	if c.SourceWebsite == "" {
		c.SourceWebsite = host
	}
	return c
}
