package provider

import "errors"

// Provider-neutral error taxonomy. Backend adapters translate their wire
// errors into these so callers never depend on a specific provider.
var (
	// ErrUnavailable is a transport-level failure reaching the provider.
	// Retryable by the caller.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrManifestCorrupt is a playlist that failed to parse. Fatal per job.
	ErrManifestCorrupt = errors.New("manifest corrupt")

	// ErrManifestIncomplete is a playback response without a transcoding
	// URL: the provider declined to transcode. Fatal, never retried.
	ErrManifestIncomplete = errors.New("manifest incomplete: no transcoding url")
)
