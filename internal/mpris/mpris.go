//go:build linux

// Package mpris exposes the engine over the MPRIS D-Bus interface so
// desktop media keys and applets can drive playback.
package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/ndelorme/quaver/internal/engine"
)

// Adapter connects the engine to MPRIS over D-Bus.
type Adapter struct {
	engine *engine.Engine
	server *server.Server
	done   chan struct{}
}

// New creates and starts a new MPRIS adapter.
func New(e *engine.Engine) (*Adapter, error) {
	a := &Adapter{
		engine: e,
		done:   make(chan struct{}),
	}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{engine: e}

	a.server = server.NewServer("quaver", rootAdapter, playerAdapter)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Quaver", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	engine *engine.Engine
}

func (p *playerAdapter) Next() error {
	return p.engine.SkipNext()
}

func (p *playerAdapter) Previous() error {
	return p.engine.SkipPrevious()
}

func (p *playerAdapter) Pause() error {
	return p.engine.Pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.engine.Toggle()
}

func (p *playerAdapter) Stop() error {
	return p.engine.Stop()
}

func (p *playerAdapter) Play() error {
	return p.engine.Play()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.engine.Status().Position + time.Duration(offset)*time.Microsecond
	if pos < 0 {
		pos = 0
	}
	return p.engine.SeekTo(pos)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.engine.SeekTo(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.engine.Status().State {
	case engine.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case engine.StatePaused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st := p.engine.Status()
	if st.Track == nil {
		return types.Metadata{}, nil
	}

	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(st.Track.Path)),
		Length:  types.Microseconds(st.Duration.Microseconds()),
		Title:   st.Track.Title,
		Album:   st.Track.Subtitle,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.engine.Status().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

// The queue wraps around, so next/previous are available whenever it
// has entries.
func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.engine.Status().QueueLength > 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.engine.Status().QueueLength > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
