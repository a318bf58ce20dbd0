package extract

import (
	"fmt"
	"time"
)

// BrowserProfile selects the device emulation used for a session.
type BrowserProfile string

const (
	ProfileChrome  BrowserProfile = "chrome"
	ProfileFirefox BrowserProfile = "firefox"
	ProfileSafari  BrowserProfile = "safari"
	ProfileEdge    BrowserProfile = "edge"
	ProfileMobile  BrowserProfile = "mobile"
)

type deviceSpec struct {
	userAgent string
	width     int
	height    int
	mobile    bool
}

var deviceSpecs = map[BrowserProfile]deviceSpec{
	ProfileChrome: {
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		width:     1366, height: 900,
	},
	ProfileFirefox: {
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
		width:     1366, height: 900,
	},
	ProfileSafari: {
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
		width:     1440, height: 900,
	},
	ProfileEdge: {
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
		width:     1366, height: 900,
	},
	ProfileMobile: {
		userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1",
		width:     390, height: 844, mobile: true,
	},
}

func (p BrowserProfile) spec() deviceSpec {
	if s, ok := deviceSpecs[p]; ok {
		return s
	}
	return deviceSpecs[ProfileChrome]
}

// Config holds all settings for one extraction request. Build it once with
// DefaultConfig, override fields, then treat it as read-only.
type Config struct {
	FileExtensions     []string
	CustomSelectors    []string
	ScanScriptTags     bool
	ScanDataAttributes bool
	ScanIframes        bool
	FollowExternal     bool
	ScanOnlyMain       bool
	MinVideoDuration   float64 // seconds; 0 disables the filter
	MaxScanDepth       int
	Profile            BrowserProfile
	MaxPages           int
	MaxVideos          int
	AgeVerification    bool

	NavigationTimeout time.Duration
	NetworkIdleWait   time.Duration
	ScrollTick        time.Duration
	ScrollDistance    int
	MaxScrollPasses   int
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		FileExtensions:     []string{"mp4", "webm", "ogg", "mov", "m3u8", "mpd"},
		ScanScriptTags:     true,
		ScanDataAttributes: true,
		ScanIframes:        true,
		MaxScanDepth:       3,
		Profile:            ProfileChrome,
		MaxPages:           1,
		MaxVideos:          50,
		NavigationTimeout:  30 * time.Second,
		NetworkIdleWait:    5 * time.Second,
		ScrollTick:         400 * time.Millisecond,
		ScrollDistance:     800,
		MaxScrollPasses:    12,
	}
}

// Validate checks the budget invariants before a session starts.
func (c Config) Validate() error {
	if c.MaxPages < 1 {
		return fmt.Errorf("maxPages must be >= 1, got %d", c.MaxPages)
	}
	if c.MaxVideos < 1 {
		return fmt.Errorf("maxVideos must be >= 1, got %d", c.MaxVideos)
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigationTimeout must be positive")
	}
	return nil
}
