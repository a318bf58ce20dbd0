package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

type paginationState int

const (
	stateScanning paginationState = iota
	stateAdvancing
	stateExhausted
)

// Site-specific "next" controls probed before the generic set.
var platformNextSelectors = []string{
	"a.nextpostslink",              // WordPress
	".nav-next a",                  // WordPress themes
	".pagination .next a",          // Bootstrap-style
	".pagination-next a",           // Bulma-style
	"a.orangeButton[href*='page']", // tube-site pagers
	"li.page-next a",
}

var genericNextSelectors = []string{
	"a[rel='next']",
	"li.next a",
	"a.next",
	"a.next_page",
	"button.next",
	"a[aria-label='Next']",
	"a[aria-label*='next' i]",
	"a.morelink",
}

var nextControlTexts = []string{"next", "more", "older", ">", "»"}

// paginator decides whether and how the session advances to the next
// listing page. It never retries: one failed advance at any page index ends
// pagination for the session.
type paginator struct {
	cfg    Config
	state  paginationState
	logger *log.Logger
}

func newPaginator(cfg Config) *paginator {
	return &paginator{cfg: cfg, logger: log.With("component", "paginator")}
}

type advanceOutcome struct {
	// nextURL is set when the driver should navigate directly.
	nextURL string
	// clicked means a next control was clicked and the page is navigating
	// in place.
	clicked bool
}

// advance transitions Scanning -> AdvancingPage, or -> Exhausted when a
// budget is hit or no way forward exists. pageIndex is 1-based.
func (p *paginator) advance(ctx context.Context, page Page, pageIndex, uniqueCount int) (advanceOutcome, bool) {
	if p.state == stateExhausted {
		return advanceOutcome{}, false
	}
	if uniqueCount >= p.cfg.MaxVideos {
		p.logger.Debug("video budget reached", "unique", uniqueCount)
		p.state = stateExhausted
		return advanceOutcome{}, false
	}
	if pageIndex >= p.cfg.MaxPages {
		p.logger.Debug("page budget reached", "pages", pageIndex)
		p.state = stateExhausted
		return advanceOutcome{}, false
	}

	if outcome, ok := p.findNextControl(ctx, page); ok {
		p.state = stateAdvancing
		return outcome, true
	}

	if next, ok := synthesizeNextURL(page.URL()); ok {
		p.logger.Debug("synthesized next page URL", "url", next)
		p.state = stateAdvancing
		return advanceOutcome{nextURL: next}, true
	}

	p.state = stateExhausted
	return advanceOutcome{}, false
}

// fail records a navigation failure during AdvancingPage; pagination ends
// and previously accumulated results remain valid.
func (p *paginator) fail(err error) {
	p.logger.Warn("pagination navigation failed, ending pagination", "error", err)
	p.state = stateExhausted
}

// resume returns the state machine to Scanning after a successful advance.
func (p *paginator) resume() {
	if p.state == stateAdvancing {
		p.state = stateScanning
	}
}

type rawNextControl struct {
	Href    string `json:"href"`
	Clicked bool   `json:"clicked"`
}

// findNextControl probes the platform-specific selectors first, then the
// generic ones. Anchors with an href are returned for direct navigation;
// anything else gets clicked.
func (p *paginator) findNextControl(ctx context.Context, page Page) (advanceOutcome, bool) {
	selectors := append(append([]string{}, platformNextSelectors...), genericNextSelectors...)
	selJSON, _ := json.Marshal(selectors)
	textJSON, _ := json.Marshal(nextControlTexts)
	js := fmt.Sprintf(`
	(() => {
		const selectors = %s;
		const texts = %s;
		const visible = el => {
			const r = el.getBoundingClientRect();
			if (r.width === 0 || r.height === 0) return null;
			const style = getComputedStyle(el);
			if (style.visibility === 'hidden' || style.display === 'none') return null;
			return !el.disabled;
		};
		const generic = el => {
			const t = (el.textContent || el.getAttribute('aria-label') || '').trim().toLowerCase();
			return texts.some(x => t.includes(x));
		};
		for (const sel of selectors) {
			let els;
			try { els = document.querySelectorAll(sel); } catch (e) { continue; }
			for (const el of els) {
				if (!visible(el)) continue;
				if (sel === 'button.next' || sel.startsWith('a[aria-label')) {
					if (!generic(el)) continue;
				}
				if (el.tagName === 'A' && el.href && !el.href.startsWith('javascript:')) {
					return JSON.stringify({href: el.href, clicked: false});
				}
				try { el.click(); return JSON.stringify({href: '', clicked: true}); } catch (e) {}
			}
		}
		return JSON.stringify(null);
	})()`, selJSON, textJSON)

	var control *rawNextControl
	if err := evaluateJSON(ctx, page, js, &control); err != nil {
		p.logger.Debug("next control probe failed", "error", err)
		return advanceOutcome{}, false
	}
	if control == nil {
		return advanceOutcome{}, false
	}
	if control.Clicked {
		return advanceOutcome{clicked: true}, true
	}
	abs := resolveURL(page.URL(), control.Href)
	if abs == "" || Canonicalize(abs) == Canonicalize(page.URL()) {
		return advanceOutcome{}, false
	}
	return advanceOutcome{nextURL: abs}, true
}

var (
	pagePathPattern    = regexp.MustCompile(`^(.*/page/)(\d+)(/?)$`)
	trailingNumPattern = regexp.MustCompile(`^(.*/)(\d+)(/?)$`)
)

// synthesizeNextURL derives a next-page URL from the current one: increment
// a page=/p= query parameter, a /page/N segment, or a trailing /N segment.
// With no recognizable pattern it falls back to appending ?page=2 -- a
// documented heuristic that can miss on hash-routed or POST-paginated
// sites.
func synthesizeNextURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	q := u.Query()
	for _, key := range []string{"page", "p"} {
		if v := q.Get(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				q.Set(key, strconv.Itoa(n+1))
				u.RawQuery = q.Encode()
				return u.String(), true
			}
		}
	}

	if m := pagePathPattern.FindStringSubmatch(u.Path); m != nil {
		n, _ := strconv.Atoi(m[2])
		u.Path = m[1] + strconv.Itoa(n+1) + m[3]
		return u.String(), true
	}
	if m := trailingNumPattern.FindStringSubmatch(u.Path); m != nil {
		n, _ := strconv.Atoi(m[2])
		u.Path = m[1] + strconv.Itoa(n+1) + m[3]
		return u.String(), true
	}

	// Last resort. Only when no page parameter exists at all.
	if !strings.Contains(u.RawQuery, "page=") {
		q.Set("page", "2")
		u.RawQuery = q.Encode()
		return u.String(), true
	}
	return "", false
}
