// Package engine coordinates the play queue, the decoder, the focus
// broker and the snapshot store. All mutations run on a single control
// goroutine, so command handling, track completion and focus changes
// never interleave.
package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ndelorme/quaver/internal/focus"
	"github.com/ndelorme/quaver/internal/library"
	"github.com/ndelorme/quaver/internal/persist"
	"github.com/ndelorme/quaver/internal/player"
	"github.com/ndelorme/quaver/internal/queue"
)

// Engine is the playback engine. Construct with New; all methods are
// safe for concurrent use.
type Engine struct {
	player     player.Interface
	broker     focus.Broker
	lib        *library.Library
	dispatcher *library.Dispatcher
	store      *persist.Store
	logger     *logrus.Logger

	mu           sync.RWMutex
	q            *queue.Queue
	state        State
	errReason    error
	playlistName string
	position     time.Duration
	duration     time.Duration

	// Control-goroutine-only fields.
	resumeOnGain bool
	pendingSeek  time.Duration
	labels       map[library.Category]string

	subsMu sync.Mutex
	subs   []*Subscription

	commands  chan func()
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates an engine and starts its control goroutine. The store
// may be nil when persistence is disabled.
func New(p player.Interface, broker focus.Broker, lib *library.Library, store *persist.Store, logger *logrus.Logger) *Engine {
	e := &Engine{
		player:     p,
		broker:     broker,
		lib:        lib,
		dispatcher: library.NewDispatcher(lib, logger),
		store:      store,
		logger:     logger,
		q:          queue.Build(nil),
		labels:     make(map[library.Category]string),
		commands:   make(chan func()),
		quit:       make(chan struct{}),
	}
	go e.run()
	return e
}

const positionRefreshInterval = time.Second

func (e *Engine) run() {
	ticker := time.NewTicker(positionRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.quit:
			return
		case <-ticker.C:
			if e.currentState() == StatePlaying {
				e.broadcast()
			}
		case fn := <-e.commands:
			fn()
		case <-e.player.FinishedChan():
			e.handleTrackComplete()
		case change := <-e.broker.Changes():
			e.handleFocusChange(change)
		case result := <-e.dispatcher.Results():
			e.handleQueryResult(result)
		}
	}
}

// do runs fn on the control goroutine and waits for its result.
func (e *Engine) do(fn func() error) error {
	errCh := make(chan error, 1)
	select {
	case e.commands <- func() { errCh <- fn() }:
	case <-e.quit:
		return ErrClosed
	}
	select {
	case err := <-errCh:
		return err
	case <-e.quit:
		return ErrClosed
	}
}

// Close shuts the engine down: playback stops, focus is released and
// all subscriptions are closed. Idempotent.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.quit)
		e.player.Stop()
		e.broker.Release()

		e.subsMu.Lock()
		for _, s := range e.subs {
			s.close()
		}
		e.subs = nil
		e.subsMu.Unlock()
	})
	return nil
}

// Subscribe registers a new status subscriber. The first snapshot
// arrives on the next observable change.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Status returns a snapshot of the engine.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := Status{
		State:        e.state,
		Err:          e.errReason,
		PlaylistName: e.playlistName,
		Actions:      actionsFor(e.state),
		Position:     e.position,
		Duration:     e.duration,
	}
	if e.q != nil {
		st.QueueLength = e.q.Len()
		st.Track = e.q.Current()
	}
	return st
}

// Queue returns a copy of the current queue entries.
func (e *Engine) Queue() []queue.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.q.Entries()
}

// SetQueue replaces the play queue. Playback stops; nothing starts
// until Play.
func (e *Engine) SetQueue(candidates []queue.Entry, name string) error {
	return e.do(func() error {
		e.player.Stop()
		e.pendingSeek = 0
		e.resumeOnGain = false
		e.mu.Lock()
		e.q = queue.Build(candidates)
		e.playlistName = name
		e.mu.Unlock()
		e.setState(StateStopped, nil)
		return nil
	})
}

// Play starts or resumes playback. With an empty queue it does
// nothing; load a queue first.
func (e *Engine) Play() error {
	return e.do(func() error {
		switch e.currentState() {
		case StatePlaying:
			return nil
		case StatePaused:
			return e.resumePlayback()
		default:
			if e.queueEmpty() {
				return nil
			}
			return e.startCurrent()
		}
	})
}

// Pause pauses playback and gives the audio resource back. A later
// focus gain will not auto-resume an explicit pause; Play re-acquires
// the resource.
func (e *Engine) Pause() error {
	return e.do(func() error {
		e.resumeOnGain = false
		if e.currentState() != StatePlaying {
			return nil
		}
		e.player.Pause()
		e.broker.Release()
		e.setState(StatePaused, nil)
		return nil
	})
}

// Toggle pauses when playing, otherwise plays.
func (e *Engine) Toggle() error {
	if e.Status().State == StatePlaying {
		return e.Pause()
	}
	return e.Play()
}

// Stop halts playback and releases the audio resource. The queue is
// kept.
func (e *Engine) Stop() error {
	return e.do(func() error {
		e.player.Stop()
		e.broker.Release()
		e.resumeOnGain = false
		e.pendingSeek = 0
		e.setState(StateStopped, nil)
		return nil
	})
}

// SkipNext advances to the next entry, wrapping at the end, and starts
// it.
func (e *Engine) SkipNext() error {
	return e.do(func() error {
		if e.queueEmpty() {
			return ErrItemNotFound
		}
		e.mu.Lock()
		e.q.Advance()
		e.mu.Unlock()
		return e.startCurrent()
	})
}

// SkipPrevious moves to the previous entry, wrapping at the front, and
// starts it.
func (e *Engine) SkipPrevious() error {
	return e.do(func() error {
		if e.queueEmpty() {
			return ErrItemNotFound
		}
		e.mu.Lock()
		e.q.Retreat()
		e.mu.Unlock()
		return e.startCurrent()
	})
}

// SkipToQueueItem jumps to the entry carrying the given sequence id
// and starts it. An unknown id moves the engine to Error; the queue
// and the loaded track are left untouched.
func (e *Engine) SkipToQueueItem(seqID int64) error {
	return e.do(func() error {
		e.mu.Lock()
		entry := e.q.JumpToSequence(seqID)
		e.mu.Unlock()
		if entry == nil {
			e.setState(StateError, ErrItemNotFound)
			return fmt.Errorf("%w: sequence id %d", ErrItemNotFound, seqID)
		}
		return e.startCurrent()
	})
}

// PlayFromID builds a fresh queue from the catalog entries matching
// the key and starts it. An unresolvable key moves the engine to
// Error; the current queue and the loaded track are left untouched.
func (e *Engine) PlayFromID(key string) error {
	return e.do(func() error {
		tracks, err := e.lib.ByKey(key)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"key":   key,
				"error": err,
			}).Warn("catalog lookup failed")
			e.setState(StateError, ErrItemNotFound)
			return fmt.Errorf("%w: %q", ErrItemNotFound, key)
		}
		if len(tracks) == 0 {
			e.setState(StateError, ErrItemNotFound)
			return fmt.Errorf("%w: %q", ErrItemNotFound, key)
		}

		q, name := e.queueForKey(key, tracks)
		e.pendingSeek = 0
		e.mu.Lock()
		e.q = q
		e.playlistName = name
		e.mu.Unlock()
		return e.startCurrent()
	})
}

// queueForKey builds the queue for a resolved key. A key naming a
// single track anchors into the full catalog, with that track as the
// current entry, so playback continues past it. Keys matching several
// tracks (album, artist, path prefix) become the queue as is.
func (e *Engine) queueForKey(key string, tracks []library.Track) (*queue.Queue, string) {
	if len(tracks) == 1 {
		all, err := e.lib.ByFolder()
		if err == nil && len(all) > 1 {
			q := queue.Build(entriesFromTracks(all))
			if idx := q.IndexOfID(tracks[0].MediaKey); idx >= 0 {
				q.SetCurrent(idx)
				return q, "Library"
			}
		}
	}
	return queue.Build(entriesFromTracks(tracks)), key
}

// Shuffle permutes the queue, keeping the current track in place.
func (e *Engine) Shuffle() error {
	return e.do(func() error {
		e.mu.Lock()
		e.q.Shuffle()
		e.mu.Unlock()
		e.broadcast()
		return nil
	})
}

// SeekTo moves playback to an absolute position in the current track.
func (e *Engine) SeekTo(pos time.Duration) error {
	return e.do(func() error {
		if e.queueEmpty() {
			return ErrItemNotFound
		}
		if err := e.player.SeekTo(pos); err != nil {
			return err
		}
		e.broadcast()
		return nil
	})
}

// SaveNow persists the queue and current position.
func (e *Engine) SaveNow() error {
	return e.do(func() error { return e.saveSnapshot() })
}

// RestoreSaved loads the persisted queue and position, if any. The
// saved position is applied when playback next starts; restore itself
// never starts playback. An unusable snapshot is not an error.
func (e *Engine) RestoreSaved() error {
	return e.do(func() error {
		if e.store == nil {
			return nil
		}
		q, name, posMs, err := e.store.Restore()
		if err != nil {
			if errors.Is(err, persist.ErrNotRestorable) {
				e.logger.Debug("no saved queue to restore")
				return nil
			}
			return err
		}
		e.mu.Lock()
		e.q = q
		e.playlistName = name
		e.mu.Unlock()
		e.pendingSeek = time.Duration(posMs) * time.Millisecond
		e.setState(StateStopped, nil)
		return nil
	})
}

// --- control-goroutine internals ---

func (e *Engine) currentState() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) queueEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.q == nil || e.q.IsEmpty()
}

func (e *Engine) setState(s State, reason error) {
	e.mu.Lock()
	e.state = s
	e.errReason = reason
	e.mu.Unlock()
	e.broadcast()
}

// broadcast refreshes the cached position and fans the snapshot out.
// Runs on the control goroutine only: Status itself never touches the
// player, so concurrent readers cannot race with a track load.
func (e *Engine) broadcast() {
	e.refreshPosition()

	st := e.Status()
	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.send(st)
	}
	e.subsMu.Unlock()
}

func (e *Engine) refreshPosition() {
	pos := e.player.Position()
	dur := e.player.Duration()
	e.mu.Lock()
	e.position = pos
	e.duration = dur
	e.mu.Unlock()
}

// startCurrent acquires focus and loads the current entry into the
// player. Focus denial parks the engine in Paused so a retry is one
// Play away.
func (e *Engine) startCurrent() error {
	e.mu.RLock()
	entry := e.q.Current()
	e.mu.RUnlock()
	if entry == nil {
		return ErrItemNotFound
	}

	if !e.broker.Request(func() {}) {
		e.resumeOnGain = false
		e.setState(StatePaused, nil)
		return fmt.Errorf("%w: %s", ErrResourceDenied, entry.Title)
	}

	if err := e.player.Play(entry.Path); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			e.setState(StateError, ErrMissingPermission)
			return fmt.Errorf("%w: %s", ErrMissingPermission, entry.Path)
		}
		e.setState(StateError, ErrLoadFailed)
		return fmt.Errorf("%w: %s: %v", ErrLoadFailed, entry.Path, err)
	}

	if e.pendingSeek > 0 {
		if err := e.player.SeekTo(e.pendingSeek); err != nil {
			e.logger.WithField("error", err).Warn("failed to restore saved position")
		}
		e.pendingSeek = 0
	}

	e.resumeOnGain = false
	e.setState(StatePlaying, nil)
	return nil
}

func (e *Engine) resumePlayback() error {
	if !e.broker.Request(func() {}) {
		e.resumeOnGain = false
		return ErrResourceDenied
	}
	e.player.Resume()
	e.resumeOnGain = false
	e.setState(StatePlaying, nil)
	return nil
}

// handleTrackComplete advances the queue when the current track ends.
// With wraparound a single-track queue just replays.
func (e *Engine) handleTrackComplete() {
	if e.queueEmpty() {
		e.setState(StateStopped, nil)
		return
	}
	e.mu.Lock()
	e.q.Advance()
	e.mu.Unlock()
	if err := e.startCurrent(); err != nil {
		e.logger.WithField("error", err).Warn("failed to advance to next track")
	}
}

func (e *Engine) handleFocusChange(change focus.Change) {
	e.logger.WithField("change", change.String()).Debug("focus change")

	switch change {
	case focus.Gain:
		if !e.resumeOnGain {
			return
		}
		e.resumeOnGain = false
		e.player.Resume()
		e.setState(StatePlaying, nil)

	case focus.LossTransient, focus.LossTransientCanDuck:
		if e.currentState() != StatePlaying {
			return
		}
		e.player.Pause()
		e.resumeOnGain = true
		e.setState(StatePaused, nil)

	case focus.LossPermanent:
		if s := e.currentState(); s != StatePlaying && s != StatePaused {
			return
		}
		e.player.Pause()
		e.resumeOnGain = false
		e.broker.Release()
		if err := e.saveSnapshot(); err != nil {
			e.logger.WithField("error", err).Warn("failed to save queue on focus loss")
		}
		e.setState(StatePaused, nil)
	}
}

func (e *Engine) saveSnapshot() error {
	if e.store == nil {
		return nil
	}
	e.mu.RLock()
	q := e.q
	name := e.playlistName
	e.mu.RUnlock()
	return e.store.Save(q, name, e.player.Position().Milliseconds())
}

func entriesFromTracks(tracks []library.Track) []queue.Entry {
	entries := make([]queue.Entry, len(tracks))
	for i, t := range tracks {
		entries[i] = queue.Entry{
			ID:       t.MediaKey,
			Title:    t.Title,
			Subtitle: t.Subtitle(),
			Path:     t.Path,
		}
	}
	return entries
}
