package extract

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// networkWatcher captures media requests the page makes while it loads.
// It is registered before navigation and keeps listening for the tab's whole
// lifetime; captures are drained after the page is judged stable. This is the
// only strategy signal that sees playback URLs never materialised in the DOM.
type networkWatcher struct {
	extensions []string
	requests   chan capturedRequest

	mu   sync.Mutex
	seen map[string]bool
}

type capturedRequest struct {
	url      string
	kind     CandidateType
	format   string
	mimeType string
}

// watchNetwork enables the CDP network domain on the tab and starts
// listening. The listener callback must never block, so captures go through
// a buffered channel and overflow is dropped.
func watchNetwork(page *BrowserPage, extensions []string) *networkWatcher {
	w := &networkWatcher{
		extensions: extensions,
		requests:   make(chan capturedRequest, 256),
		seen:       make(map[string]bool),
	}

	chromedp.ListenTarget(page.tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			w.offer(e.Request.URL, "")
		case *network.EventResponseReceived:
			w.offer(e.Response.URL, e.Response.MimeType)
		}
	})

	if err := chromedp.Run(page.tabCtx, network.Enable()); err != nil {
		log.Debug("network domain enable failed", "error", err)
	}
	return w
}

func (w *networkWatcher) offer(rawURL, mimeType string) {
	kind, format, ok := classifyMediaURL(rawURL, w.extensions)
	if !ok {
		kind, format, ok = classifyMIME(mimeType)
	}
	if !ok {
		return
	}

	w.mu.Lock()
	dup := w.seen[rawURL]
	w.seen[rawURL] = true
	w.mu.Unlock()
	if dup {
		return
	}

	select {
	case w.requests <- capturedRequest{url: rawURL, kind: kind, format: format, mimeType: mimeType}:
	default:
		// Channel full; session-level dedup makes dropped repeats harmless.
	}
}

// drain converts everything captured so far into candidates.
func (w *networkWatcher) drain(pageURL string) []VideoCandidate {
	var out []VideoCandidate
	for {
		select {
		case req := <-w.requests:
			abs := resolveURL(pageURL, req.url)
			if abs == "" {
				continue
			}
			c := VideoCandidate{
				URL:     abs,
				FoundBy: strategyNetworkRequest,
				Type:    req.kind,
				Format:  req.format,
			}
			c.setMeta("mimeType", req.mimeType)
			out = append(out, c)
		default:
			return out
		}
	}
}

// manifests returns the stream manifest URLs seen so far. The MediaSource
// strategy correlates against these.
func (w *networkWatcher) manifests() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for u := range w.seen {
		if isStreamManifest(u) {
			out = append(out, u)
		}
	}
	return out
}

func classifyMIME(mimeType string) (CandidateType, string, bool) {
	switch mimeType {
	case "application/vnd.apple.mpegurl", "application/x-mpegurl":
		return TypeHLS, "m3u8", true
	case "application/dash+xml":
		return TypeDASH, "mpd", true
	case "video/mp4":
		return TypeDirect, "mp4", true
	case "video/webm":
		return TypeDirect, "webm", true
	}
	return TypeUnknown, "", false
}
