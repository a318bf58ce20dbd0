package extract

import (
	"net/url"
	"strings"
)

var adultKeywords = []string{
	"porn", "xxx", "sex", "adult", "nsfw", "xvideo", "xhamster", "xnxx",
	"redtube", "youporn", "spankbang", "rule34", "hentai", "nude", "erotic",
	"camgirl", "chaturbate", "stripchat", "onlyfans",
}

var adultTLDs = []string{".xxx", ".adult", ".porn", ".sex", ".sexy"}

// looksAdult applies the domain-keyword and TLD heuristics used to decide
// whether an age gate is likely and whether adult-site strategies apply.
func looksAdult(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, tld := range adultTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	for _, kw := range adultKeywords {
		if strings.Contains(host, kw) {
			return true
		}
	}
	return false
}

// looksAdultContent extends the domain check with page-level signals
// (title keywords) collected after navigation.
func looksAdultContent(pageTitle string) bool {
	title := strings.ToLower(pageTitle)
	for _, kw := range adultKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
