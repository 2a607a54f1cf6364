package engine

import "errors"

// Sentinel errors for the failure modes playback can hit. Callers
// branch on these with errors.Is; the engine also reflects them in the
// status it broadcasts.
var (
	// ErrMissingPermission means the media files cannot be read at
	// all. Remediation is outside the engine (fix file permissions or
	// the configured sources).
	ErrMissingPermission = errors.New("engine: missing permission to read media")

	// ErrResourceDenied means the focus broker refused playback. The
	// engine parks in Paused rather than erroring out, so the user can
	// retry once the resource frees up.
	ErrResourceDenied = errors.New("engine: audio resource denied")

	// ErrItemNotFound means a requested id, key or queue position did
	// not resolve to a playable item. The queue is left untouched.
	ErrItemNotFound = errors.New("engine: item not found")

	// ErrLoadFailed means the selected file could not be decoded.
	ErrLoadFailed = errors.New("engine: failed to load track")

	// ErrClosed is returned for commands issued after Close.
	ErrClosed = errors.New("engine: closed")
)
