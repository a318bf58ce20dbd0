package extract

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Provenance tags. These survive into the final result and drive scoring.
const (
	strategyVideoElement   = "video-element"
	strategyIframe         = "iframe-element"
	strategyNetworkRequest = "network-request"
	strategyMediaElements  = "media-elements"
	strategyScriptMining   = "script-tag-mining"
	strategyJSONLD         = "json-ld"
	strategyPlayer         = "player-introspection"
	strategyMediaSource    = "media-source-extensions"
	strategyDataAttribute  = "data-attribute"
	strategyAnchorTag      = "anchor-tag"
	strategyCSSBackground  = "css-background"
	strategyAdultPatterns  = "adult-site-patterns"
	strategyCustom         = "custom-selectors"
)

// Strategy is one independent signal-extraction routine run against a live
// page. Implementations are read-only with respect to the page.
type Strategy interface {
	Name() string
	Run(ctx context.Context, page Page) ([]VideoCandidate, error)
}

// Registry holds the fixed, ordered strategy set for one session. A failing
// or panicking strategy contributes zero candidates and never aborts its
// siblings.
type Registry struct {
	strategies []Strategy
	logger     *log.Logger
}

// newRegistry wires the strategy set for a session. Custom selectors always
// run last so caller intent can widen whatever the built-ins found.
func newRegistry(cfg Config, adult bool, watcher *networkWatcher) *Registry {
	r := &Registry{logger: log.With("component", "registry")}

	r.strategies = append(r.strategies,
		&videoElementStrategy{cfg: cfg},
		&mediaElementsStrategy{cfg: cfg},
	)
	if cfg.ScanIframes {
		r.strategies = append(r.strategies, &iframeStrategy{cfg: cfg})
	}
	if cfg.ScanScriptTags {
		r.strategies = append(r.strategies,
			&scriptMiningStrategy{cfg: cfg},
			&playerIntrospectionStrategy{},
		)
	}
	r.strategies = append(r.strategies, &mediaSourceStrategy{watcher: watcher})
	if cfg.ScanDataAttributes {
		r.strategies = append(r.strategies, &dataAttributeStrategy{cfg: cfg})
	}
	r.strategies = append(r.strategies,
		&anchorTagStrategy{cfg: cfg},
		&cssBackgroundStrategy{},
	)
	if adult {
		r.strategies = append(r.strategies, &adultPatternsStrategy{})
	}
	if len(cfg.CustomSelectors) > 0 {
		r.strategies = append(r.strategies, &customSelectorsStrategy{cfg: cfg})
	}
	return r
}

// RunAll executes every strategy and pools their raw candidates. Strategies
// never deduplicate against each other; the normalizer owns that.
func (r *Registry) RunAll(ctx context.Context, page Page) []VideoCandidate {
	var pool []VideoCandidate
	for _, s := range r.strategies {
		found := r.runIsolated(ctx, page, s)
		if len(found) > 0 {
			r.logger.Debug("strategy produced candidates", "strategy", s.Name(), "count", len(found))
		}
		pool = append(pool, found...)
	}
	return pool
}

func (r *Registry) runIsolated(ctx context.Context, page Page, s Strategy) (found []VideoCandidate) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("strategy panicked", "strategy", s.Name(), "panic", fmt.Sprint(rec))
			found = nil
		}
	}()
	found, err := s.Run(ctx, page)
	if err != nil {
		r.logger.Warn("strategy failed", "strategy", s.Name(), "error", err)
		return nil
	}
	return found
}

// names lists the registered strategy names in execution order.
func (r *Registry) names() []string {
	out := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s.Name())
	}
	return out
}
