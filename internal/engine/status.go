package engine

import (
	"time"

	"github.com/ndelorme/quaver/internal/queue"
)

// State is the engine-level playback state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
	StateError
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Actions is a bitmask of the commands valid in the current state.
type Actions uint32

const (
	ActionPlay Actions = 1 << iota
	ActionPause
	ActionStop
	ActionSeek
	ActionSkipNext
	ActionSkipPrevious
	ActionSkipToItem
	ActionPlayFromID
	ActionShuffle
)

// Has reports whether the mask contains the given action.
func (a Actions) Has(action Actions) bool {
	return a&action != 0
}

const (
	stoppedActions = ActionPlay | ActionPlayFromID | ActionSkipNext |
		ActionSkipPrevious | ActionSkipToItem
	playingActions = ActionPause | ActionStop | ActionSeek | ActionSkipNext |
		ActionSkipPrevious | ActionSkipToItem | ActionPlayFromID | ActionShuffle
	pausedActions = ActionPlay | ActionStop | ActionSeek | ActionSkipNext |
		ActionSkipPrevious | ActionSkipToItem | ActionPlayFromID | ActionShuffle
)

func actionsFor(s State) Actions {
	switch s {
	case StatePlaying:
		return playingActions
	case StatePaused:
		return pausedActions
	default:
		return stoppedActions
	}
}

// Status is an immutable snapshot of the engine, broadcast to
// subscribers on every observable change.
type Status struct {
	State        State
	Err          error // set when State is StateError
	Track        *queue.Entry
	QueueLength  int
	PlaylistName string
	Position     time.Duration
	Duration     time.Duration
	Actions      Actions
}
