package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakePage implements Page against canned script responses, matched by a
// distinctive substring of the evaluated JS. Unmatched scripts get a typed
// zero value, so probes the test does not care about stay silent.
type fakePage struct {
	url       string
	title     string
	handlers  []fakeHandler
	navErr    map[string]error
	navigated []string
}

type fakeHandler struct {
	marker  string
	respond func(p *fakePage) any
	err     error
}

func newFakePage(url string) *fakePage {
	return &fakePage{url: url, navErr: make(map[string]error)}
}

func (p *fakePage) on(marker string, value any) *fakePage {
	return p.onFunc(marker, func(*fakePage) any { return value })
}

// onJSON registers a response serialized the way evaluateJSON expects it.
func (p *fakePage) onJSON(marker string, value any) *fakePage {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	return p.on(marker, string(raw))
}

func (p *fakePage) onFunc(marker string, respond func(p *fakePage) any) *fakePage {
	p.handlers = append(p.handlers, fakeHandler{marker: marker, respond: respond})
	return p
}

func (p *fakePage) failOn(marker string, err error) *fakePage {
	p.handlers = append(p.handlers, fakeHandler{marker: marker, err: err})
	return p
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Navigate(_ context.Context, url string, _ time.Duration) error {
	if err := p.navErr[url]; err != nil {
		return err
	}
	p.navigated = append(p.navigated, url)
	p.url = url
	return nil
}

func (p *fakePage) Evaluate(_ context.Context, js string, out any) error {
	for _, h := range p.handlers {
		if !strings.Contains(js, h.marker) {
			continue
		}
		if h.err != nil {
			return h.err
		}
		return assignResult(out, h.respond(p))
	}
	return assignResult(out, defaultResult(out))
}

func (p *fakePage) Title(context.Context) (string, error)    { return p.title, nil }
func (p *fakePage) Location(context.Context) (string, error) { return p.url, nil }

func assignResult(out, value any) error {
	switch o := out.(type) {
	case *string:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("fake page: want string response, got %T", value)
		}
		*o = s
	case *bool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("fake page: want bool response, got %T", value)
		}
		*o = b
	case *float64:
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("fake page: want float64 response, got %T", value)
		}
		*o = f
	default:
		return fmt.Errorf("fake page: unsupported out type %T", out)
	}
	return nil
}

func defaultResult(out any) any {
	switch out.(type) {
	case *bool:
		return false
	case *float64:
		return float64(0)
	default:
		return "null"
	}
}

// testConfig disables the timed stabilization probes so tests stay fast.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NetworkIdleWait = 0
	cfg.MaxScrollPasses = 0
	cfg.ScrollTick = 0
	return cfg
}

func TestMergeContextPropagatesCancellation(t *testing.T) {
	caller, cancel := context.WithCancel(context.Background())
	runCtx, stop := mergeContext(context.Background(), caller)
	defer stop()

	assert.NoError(t, runCtx.Err())
	cancel()
	select {
	case <-runCtx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("caller cancellation did not reach the run context")
	}
}

func TestMergeContextPropagatesDeadline(t *testing.T) {
	callerDeadline := time.Now().Add(time.Minute)
	caller, cancel := context.WithDeadline(context.Background(), callerDeadline)
	defer cancel()

	runCtx, stop := mergeContext(context.Background(), caller)
	defer stop()

	got, ok := runCtx.Deadline()
	assert.True(t, ok)
	assert.Equal(t, callerDeadline, got)
}

func TestMergeContextStopReleasesRunContext(t *testing.T) {
	caller := context.Background()
	runCtx, stop := mergeContext(context.Background(), caller)
	stop()
	assert.ErrorIs(t, runCtx.Err(), context.Canceled)
}
