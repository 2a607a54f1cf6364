package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	if got := Format(OpPlaybackStart, nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}

	got := Format(OpPlaybackStart, errors.New("no such file"))
	want := "Failed to start playback: no such file"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatWith(t *testing.T) {
	err := errors.New("decode error")

	got := FormatWith(OpQueueJump, "track 3", err)
	want := "Failed to jump to queue item 'track 3': decode error"
	if got != want {
		t.Errorf("FormatWith() = %q, want %q", got, want)
	}

	if got := FormatWith(OpQueueJump, "", err); got != Format(OpQueueJump, err) {
		t.Errorf("FormatWith with empty context = %q, want plain Format", got)
	}
}
