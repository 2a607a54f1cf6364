// internal/player/interface.go
package player

import "time"

// Interface defines the decode/output resource contract for dependency
// injection and testing. One track is loaded at a time; loading a new
// track resets the resource wholesale.
type Interface interface {
	Play(path string) error
	Stop()
	Pause()
	Resume()
	State() State
	TrackInfo() *TrackInfo
	Position() time.Duration
	Duration() time.Duration
	SeekTo(position time.Duration) error
	FinishedChan() <-chan struct{}
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
