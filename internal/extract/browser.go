package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserSession owns one headless browser process and its browsing context.
// Release must be called exactly once per acquisition; it is safe to call
// even when earlier steps failed, and tears down pages, context, and process
// independently best-effort.
type BrowserSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	profile       BrowserProfile

	mu       sync.Mutex
	pages    []*BrowserPage
	released bool
}

func buildChromeOptions(profile BrowserProfile) []chromedp.ExecAllocatorOption {
	spec := profile.spec()
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
		chromedp.WindowSize(spec.width, spec.height),
		chromedp.UserAgent(spec.userAgent),
	)
}

// acquireBrowser launches a headless browser for one extraction session.
// A launch failure is the only fatal infrastructure error in the engine.
func acquireBrowser(ctx context.Context, profile BrowserProfile) (*BrowserSession, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, buildChromeOptions(profile)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so fatal launch errors surface
	// here instead of mid-extraction.
	probeCtx, probeCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer probeCancel()
	if err := chromedp.Run(probeCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	return &BrowserSession{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		profile:       profile,
	}, nil
}

// NewPage opens a tab in this session's browsing context with the session's
// device emulation applied.
func (s *BrowserSession) NewPage() (*BrowserPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, fmt.Errorf("browser session already released")
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)

	spec := s.profile.spec()
	viewportOpts := []chromedp.EmulateViewportOption{}
	if spec.mobile {
		viewportOpts = append(viewportOpts, chromedp.EmulateMobile)
	}
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(spec.width), int64(spec.height), viewportOpts...),
	); err != nil {
		tabCancel()
		return nil, fmt.Errorf("page setup failed: %w", err)
	}

	page := &BrowserPage{tabCtx: tabCtx, tabCancel: tabCancel}
	s.pages = append(s.pages, page)
	return page, nil
}

// Release tears everything down: pages, then browsing context, then process.
// Idempotent.
func (s *BrowserSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	for _, p := range s.pages {
		p.close()
	}
	s.pages = nil
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}
