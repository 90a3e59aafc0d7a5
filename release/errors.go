package release

import "errors"

// Sentinel errors for release resolution.
var (
	// ErrNoProbe is returned by New when no probe function is configured.
	ErrNoProbe = errors.New("release: probe is required")

	// ErrNoRelease is returned when a probe response carries no release.
	ErrNoRelease = errors.New("release: response carries no release")
)
