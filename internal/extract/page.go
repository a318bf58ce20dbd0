package extract

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// Page is the surface strategies and the navigator need from one browser tab.
// Everything is expressed as JS evaluation returning JSON, which keeps
// strategies independent of chromedp and testable against canned documents.
type Page interface {
	// URL returns the page's current location as last observed.
	URL() string
	// Navigate loads a URL and waits for DOM-ready within the timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Evaluate runs a JS expression and unmarshals its result into out.
	Evaluate(ctx context.Context, js string, out any) error
	// Title returns the document title.
	Title(ctx context.Context) (string, error)
	// Location re-reads the live location, picking up in-page navigations.
	Location(ctx context.Context) (string, error)
}

// BrowserPage is the chromedp-backed Page bound to one browser tab.
type BrowserPage struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	location  string
}

func (p *BrowserPage) URL() string { return p.location }

func (p *BrowserPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	runCtx, cancel := context.WithTimeout(p.tabCtx, timeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return err
	}

	// Redirects are common; record where we actually landed.
	p.location = url
	var finalURL string
	if err := chromedp.Run(runCtx, chromedp.Location(&finalURL)); err == nil && finalURL != "" {
		p.location = finalURL
	}
	// Respect the caller-provided deadline too, not just the tab's.
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (p *BrowserPage) Evaluate(ctx context.Context, js string, out any) error {
	runCtx, cancel := mergeContext(p.tabCtx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Evaluate(js, out))
}

func (p *BrowserPage) Title(ctx context.Context) (string, error) {
	runCtx, cancel := mergeContext(p.tabCtx, ctx)
	defer cancel()
	var title string
	if err := chromedp.Run(runCtx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (p *BrowserPage) Location(ctx context.Context) (string, error) {
	runCtx, cancel := mergeContext(p.tabCtx, ctx)
	defer cancel()
	var loc string
	if err := chromedp.Run(runCtx, chromedp.Location(&loc)); err != nil {
		return p.location, err
	}
	if loc != "" {
		p.location = loc
	}
	return p.location, nil
}

func (p *BrowserPage) close() {
	if p.tabCancel != nil {
		p.tabCancel()
	}
}

// mergeContext bounds the tab context by the caller's deadline and
// cancellation. chromedp actions must run on the tab context to reach the
// right target, so the caller's signals are grafted onto it.
func mergeContext(tab, caller context.Context) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if deadline, ok := caller.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(tab, deadline)
	} else {
		runCtx, cancel = context.WithCancel(tab)
	}
	stop := context.AfterFunc(caller, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
