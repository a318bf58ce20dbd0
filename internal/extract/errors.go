package extract

import "errors"

// Only these four errors abort a whole extraction call. Everything else
// degrades to fewer results.
var (
	// ErrInvalidURL means the input URL could not be parsed; no browser is
	// launched.
	ErrInvalidURL = errors.New("invalid target URL")

	// ErrAgeVerificationRequired means the target looks like adult content
	// and the caller did not confirm age verification.
	ErrAgeVerificationRequired = errors.New("age verification required")

	// ErrBrowserLaunch means the browser process could not be started.
	ErrBrowserLaunch = errors.New("browser launch failed")

	// ErrNavigationTimeout means the first page never reached DOM-ready
	// within the configured timeout.
	ErrNavigationTimeout = errors.New("navigation timed out")
)
