package extract

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// session is the request-scoped accumulator: one target URL, one browser
// context, candidates pooled across every page visited.
type session struct {
	targetURL string
	domain    string
	cfg       Config
	adult     bool
	pageTitle string

	pool         []VideoCandidate
	canon        map[string]bool
	pagesScanned int
}

func (s *session) addAll(found []VideoCandidate) {
	for _, c := range found {
		if c.URL == "" {
			continue
		}
		s.pool = append(s.pool, c)
		s.canon[Canonicalize(c.URL)] = true
	}
}

func (s *session) uniqueCount() int { return len(s.canon) }

func (s *session) result() *Result {
	merged := Dedupe(s.pool)
	merged = applyFilters(merged, s.cfg)
	videos := finalize(merged, s.cfg)

	methodSet := make(map[string]bool)
	for i := range videos {
		if s.adult {
			videos[i].IsAdult = true
		}
		for _, tag := range videos[i].provenance() {
			methodSet[tag] = true
		}
	}
	methods := make([]string, 0, len(methodSet))
	for m := range methodSet {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	return &Result{
		URL:     s.targetURL,
		Domain:  s.domain,
		IsAdult: s.adult,
		Videos:  videos,
		Metadata: ResultMetadata{
			PageTitle:         s.pageTitle,
			ExtractionMethods: methods,
			Pagination: Pagination{
				TotalPages:   s.pagesScanned,
				PagesScanned: s.pagesScanned,
			},
		},
	}
}

// Extract runs one full discovery cycle: launch a browser, visit up to
// MaxPages listing pages, pool every strategy's candidates, then normalize,
// dedupe, score, and rank. Only the four fatal error kinds abort the call;
// everything past the first page degrades to fewer results. On a
// first-page navigation timeout the (normally empty) partial result is
// returned alongside the error.
func Extract(ctx context.Context, rawURL string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	adult := looksAdult(target)
	if adult && !cfg.AgeVerification {
		return nil, fmt.Errorf("%w: %s flagged as adult content", ErrAgeVerificationRequired, target.Hostname())
	}

	s := &session{
		targetURL: rawURL,
		domain:    target.Hostname(),
		cfg:       cfg,
		adult:     adult,
		canon:     make(map[string]bool),
	}

	browser, err := acquireBrowser(ctx, cfg.Profile)
	if err != nil {
		return nil, err
	}
	defer browser.Release()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	watcher := watchNetwork(page, cfg.FileExtensions)
	if err := runSession(ctx, s, page, watcher); err != nil {
		return s.result(), err
	}
	return s.result(), nil
}

// runSession drives the page loop: load, stabilize, scan, advance. Split
// from Extract so the traversal logic can run against any Page.
func runSession(ctx context.Context, s *session, page Page, watcher *networkWatcher) error {
	logger := log.With("component", "extract", "url", s.targetURL)

	nav := newNavigator(s.cfg, s.adult)
	registry := newRegistry(s.cfg, s.adult, watcher)
	pag := newPaginator(s.cfg)

	currentURL := s.targetURL
	justClicked := false
	for pageIndex := 1; ; pageIndex++ {
		if justClicked {
			// The next control already navigated in place.
			nav.Stabilize(ctx, page)
			justClicked = false
		} else if err := nav.Load(ctx, page, currentURL); err != nil {
			if pageIndex == 1 {
				return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
			}
			pag.fail(err)
			break
		}
		pag.resume()
		s.pagesScanned++
		logger.Debug("page loaded", "page", pageIndex, "location", page.URL())

		if pageIndex == 1 {
			if title, err := page.Title(ctx); err == nil {
				s.pageTitle = title
				if !s.adult && looksAdultContent(title) {
					s.adult = true
					nav = newNavigator(s.cfg, true)
					registry = newRegistry(s.cfg, true, watcher)
				}
			}
		}

		found := registry.RunAll(ctx, page)
		if watcher != nil {
			found = append(found, watcher.drain(page.URL())...)
		}
		for i := range found {
			found[i] = EnrichPlatform(found[i])
		}
		s.addAll(found)
		logger.Debug("page scanned", "page", pageIndex, "candidates", len(found), "unique", s.uniqueCount())

		// Caller deadline: stop advancing, return what accumulated.
		if ctx.Err() != nil {
			logger.Debug("deadline reached, returning partial results")
			break
		}

		outcome, ok := pag.advance(ctx, page, pageIndex, s.uniqueCount())
		if !ok {
			break
		}
		if outcome.clicked {
			time.Sleep(time.Second)
			loc, err := page.Location(ctx)
			if err != nil {
				pag.fail(err)
				break
			}
			currentURL = loc
			justClicked = true
		} else {
			currentURL = outcome.nextURL
		}
	}
	return nil
}
