package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Navigator loads pages and works through the friction third-party sites put
// between a fresh browser and their content: consent walls, age gates, lazy
// loading. Every probe is best-effort; only the initial navigation timeout
// escalates to the caller.
type Navigator struct {
	cfg    Config
	adult  bool
	logger *log.Logger
}

func newNavigator(cfg Config, adult bool) *Navigator {
	return &Navigator{
		cfg:    cfg,
		adult:  adult,
		logger: log.With("component", "navigator"),
	}
}

// Load navigates and then runs the stabilization routine. The returned error
// is only ever the navigation failure itself.
func (n *Navigator) Load(ctx context.Context, page Page, url string) error {
	if err := page.Navigate(ctx, url, n.cfg.NavigationTimeout); err != nil {
		return err
	}
	n.Stabilize(ctx, page)
	return nil
}

// Stabilize runs the post-navigation sequence: opportunistic network-idle
// wait, overlay dismissal, age gate, lazy-load scrolling, load-more probing,
// and player nudging. Never fails.
func (n *Navigator) Stabilize(ctx context.Context, page Page) {
	n.waitNetworkIdle(ctx, page)
	n.dismissOverlays(ctx, page)
	if n.adult && n.cfg.AgeVerification {
		n.passAgeGate(ctx, page)
	}
	n.scrollForLazyContent(ctx, page)
	n.clickLoadMore(ctx, page)
	n.nudgePlayers(ctx, page)
}

// waitNetworkIdle polls until the resource count stops growing or the soft
// timeout elapses. Never escalates: a page that trickles requests forever is
// still worth scraping.
func (n *Navigator) waitNetworkIdle(ctx context.Context, page Page) {
	deadline := time.Now().Add(n.cfg.NetworkIdleWait)
	js := `(() => performance.getEntriesByType('resource').length)()`
	var prev float64 = -1
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		var count float64
		if err := page.Evaluate(ctx, js, &count); err != nil {
			return
		}
		if count == prev {
			return
		}
		prev = count
		time.Sleep(300 * time.Millisecond)
	}
}

// Consent selector patterns, one category per banner framework. The first
// visible and enabled match per category gets one click.
var consentSelectorGroups = [][]string{
	{"#onetrust-accept-btn-handler", "#onetrust-pc-btn-handler"},
	{".fc-cta-consent", ".fc-button.fc-cta-consent"},
	{".qc-cmp2-summary-buttons button[mode='primary']"},
	{".cc-allow", ".cc-btn.cc-dismiss", ".cc-compliance .cc-allow"},
	{"#cookie-accept", ".cookie-accept", "#accept-cookies", ".accept-cookies"},
	{"button[id*='accept' i]", "button[class*='accept' i]", "button[aria-label*='accept' i]"},
	{"button[id*='consent' i]", "button[class*='consent' i]"},
	{"button[id*='agree' i]", "button[class*='agree' i]"},
}

func (n *Navigator) dismissOverlays(ctx context.Context, page Page) {
	for _, group := range consentSelectorGroups {
		if ctx.Err() != nil {
			return
		}
		clicked, err := clickFirstVisible(ctx, page, group, nil)
		if err != nil {
			n.logger.Debug("overlay probe failed", "error", err)
			continue
		}
		if clicked {
			n.logger.Debug("dismissed overlay", "selectors", group[0])
			time.Sleep(250 * time.Millisecond)
		}
	}
}

var ageGateButtonSelectors = []string{
	"button[id*='age' i]", "button[class*='age' i]",
	"a[class*='age' i][href='#']",
	"button[class*='enter' i]", "a[class*='enter' i]",
	"button", "a.button", "input[type='submit']",
}

var ageGateButtonTexts = []string{
	"i am 18", "i'm 18", "over 18", "18 or older", "enter", "yes", "agree", "continue",
}

// passAgeGate satisfies the common age-verification UIs: tick confirmation
// checkboxes, set date-of-birth selects to an adult birthday, then click a
// confirmation control. Each step is independent best-effort.
func (n *Navigator) passAgeGate(ctx context.Context, page Page) {
	prepJS := `
	(() => {
		let touched = 0;
		document.querySelectorAll(
			"input[type='checkbox'][id*='age' i], input[type='checkbox'][name*='age' i], " +
			"input[type='checkbox'][id*='confirm' i], input[type='checkbox'][name*='confirm' i]"
		).forEach(cb => {
			if (!cb.checked) { cb.checked = true; cb.dispatchEvent(new Event('change', {bubbles: true})); touched++; }
		});
		document.querySelectorAll(
			"select[id*='year' i], select[name*='year' i], select[id*='birth' i], select[name*='birth' i]"
		).forEach(sel => {
			for (const opt of sel.options) {
				if (opt.value === '1990' || opt.textContent.trim() === '1990') {
					sel.value = opt.value;
					sel.dispatchEvent(new Event('change', {bubbles: true}));
					touched++;
					break;
				}
			}
		});
		return touched;
	})()`
	var touched float64
	if err := page.Evaluate(ctx, prepJS, &touched); err != nil {
		n.logger.Debug("age gate preparation failed", "error", err)
	}

	clicked, err := clickFirstVisible(ctx, page, ageGateButtonSelectors, ageGateButtonTexts)
	if err != nil {
		n.logger.Debug("age gate probe failed", "error", err)
		return
	}
	if clicked {
		n.logger.Debug("clicked age gate confirmation")
		time.Sleep(500 * time.Millisecond)
	}
}

// scrollForLazyContent performs bounded incremental scroll passes, stopping
// early when the page height stops growing two passes in a row.
func (n *Navigator) scrollForLazyContent(ctx context.Context, page Page) {
	heightJS := `(() => document.body ? document.body.scrollHeight : 0)()`
	var prevHeight float64
	stagnant := 0
	for pass := 0; pass < n.cfg.MaxScrollPasses; pass++ {
		if ctx.Err() != nil {
			return
		}
		scrollJS := fmt.Sprintf(`(() => { window.scrollBy(0, %d); return window.scrollY; })()`, n.cfg.ScrollDistance)
		var y float64
		if err := page.Evaluate(ctx, scrollJS, &y); err != nil {
			n.logger.Debug("scroll failed", "error", err)
			return
		}
		time.Sleep(n.cfg.ScrollTick)

		var height float64
		if err := page.Evaluate(ctx, heightJS, &height); err != nil {
			return
		}
		if height <= prevHeight {
			stagnant++
			if stagnant >= 2 {
				return
			}
		} else {
			stagnant = 0
		}
		prevHeight = height
	}
}

var loadMoreSelectors = []string{
	"button[class*='load-more' i]", "a[class*='load-more' i]",
	"button[class*='loadmore' i]", "button[id*='load-more' i]",
	".load-more", ".show-more button", "button.more",
}

var loadMoreTexts = []string{"load more", "show more", "view more", "more videos"}

func (n *Navigator) clickLoadMore(ctx context.Context, page Page) {
	clicked, err := clickFirstVisible(ctx, page, loadMoreSelectors, loadMoreTexts)
	if err != nil {
		n.logger.Debug("load-more probe failed", "error", err)
		return
	}
	if clicked {
		n.logger.Debug("clicked load-more control")
		time.Sleep(800 * time.Millisecond)
	}
}

// nudgePlayers simulates play so lazy players materialise their sources into
// the DOM and the network stream.
func (n *Navigator) nudgePlayers(ctx context.Context, page Page) {
	js := `
	(() => {
		let nudged = 0;
		document.querySelectorAll(
			'.vjs-big-play-button, .jw-display-icon-display, .plyr__control--overlaid, ' +
			"button[aria-label*='play' i], .play-button, .video-play-button"
		).forEach(el => { try { el.click(); nudged++; } catch (e) {} });
		document.querySelectorAll('video').forEach(v => {
			try { const p = v.play(); if (p && p.catch) p.catch(() => {}); nudged++; } catch (e) {}
		});
		return nudged;
	})()`
	var nudged float64
	if err := page.Evaluate(ctx, js, &nudged); err != nil {
		n.logger.Debug("player nudge failed", "error", err)
		return
	}
	if nudged > 0 {
		time.Sleep(500 * time.Millisecond)
	}
}

// clickFirstVisible probes selectors in order and clicks the first visible,
// enabled match, optionally requiring the element text to contain one of
// texts (lowercase). Returns whether anything was clicked.
func clickFirstVisible(ctx context.Context, page Page, selectors, texts []string) (bool, error) {
	selJSON, _ := json.Marshal(selectors)
	textJSON, _ := json.Marshal(texts)
	js := fmt.Sprintf(`
	(() => {
		const selectors = %s;
		const texts = %s;
		const visible = el => {
			const r = el.getBoundingClientRect();
			if (r.width === 0 || r.height === 0) return false;
			const style = getComputedStyle(el);
			if (style.visibility === 'hidden' || style.display === 'none') return false;
			return !el.disabled;
		};
		for (const sel of selectors) {
			let els;
			try { els = document.querySelectorAll(sel); } catch (e) { continue; }
			for (const el of els) {
				if (!visible(el)) continue;
				if (texts && texts.length) {
					const t = (el.textContent || el.value || '').trim().toLowerCase();
					if (!texts.some(x => t.includes(x))) continue;
				}
				try { el.click(); return true; } catch (e) {}
			}
		}
		return false;
	})()`, selJSON, textJSON)

	var clicked bool
	if err := page.Evaluate(ctx, js, &clicked); err != nil {
		return false, err
	}
	return clicked, nil
}
