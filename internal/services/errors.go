package services

import "errors"

// Analysis service errors
var (
	// ErrNoAnalysisLoaded is returned by every read or edit before the
	// first successful load.
	ErrNoAnalysisLoaded = errors.New("no analysis loaded")

	// ErrNoCustomSlope is returned by export when the session has no pair
	// of slope points to derive a slope from.
	ErrNoCustomSlope = errors.New("custom slope is not available")

	ErrUnknownTarget = errors.New("unknown session target")
)
