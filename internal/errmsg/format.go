// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackPause  Op = "pause playback"
	OpPlaybackResume Op = "resume playback"
	OpQueueAdvance   Op = "advance queue"
	OpQueueRetreat   Op = "go to previous track"
	OpQueueJump      Op = "jump to queue item"
	OpQueueShuffle   Op = "shuffle queue"

	// Persistence operations
	OpQueueSave    Op = "save queue"
	OpQueueRestore Op = "restore queue"

	// Library operations
	OpLibraryScan  Op = "scan library"
	OpLibraryQuery Op = "query library"
	OpLibraryWatch Op = "watch library sources"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
