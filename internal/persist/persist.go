package persist

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ndelorme/quaver/internal/queue"
)

// slotKey is the single preference slot holding the saved playlist.
// Each save overwrites the previous payload.
const slotKey = "current_playlist"

// ErrNotRestorable means no usable saved playlist exists: nothing was
// saved, the payload is corrupt, or none of the saved files still
// exist. Callers treat it as "start fresh", not as a failure to
// surface.
var ErrNotRestorable = errors.New("persist: no restorable playlist")

// PrefStore is the flat key-value slot the snapshot lives in.
type PrefStore interface {
	GetPref(key string) (string, bool, error)
	SetPref(key, value string) error
	DeletePref(key string) error
}

// Store saves and restores play queue snapshots.
type Store struct {
	prefs  PrefStore
	logger *logrus.Logger
}

// NewStore creates a snapshot store over the given preference slot.
func NewStore(prefs PrefStore, logger *logrus.Logger) *Store {
	return &Store{prefs: prefs, logger: logger}
}

// Save persists the queue, its current entry and the playback position.
// An empty queue is not saved; the previous snapshot, if any, stays.
func (s *Store) Save(q *queue.Queue, name string, positionMs int64) error {
	if q == nil || q.IsEmpty() {
		return nil
	}

	p := Playlist{
		Name:            name,
		SavedPositionMs: positionMs,
	}
	if cur := q.Current(); cur != nil {
		p.CurrentSequenceID = cur.SequenceID
	}
	for _, e := range q.Entries() {
		p.Entries = append(p.Entries, Entry{
			SequenceID: e.SequenceID,
			ID:         e.ID,
			Title:      e.Title,
			Subtitle:   e.Subtitle,
			Path:       e.Path,
		})
	}

	if err := s.prefs.SetPref(slotKey, Encode(p)); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"entries":  len(p.Entries),
		"position": positionMs,
	}).Debug("saved play queue")
	return nil
}

// Restore loads the saved snapshot. Entries whose files no longer
// exist are dropped; if the saved current entry is among them the
// queue restarts at index 0. The playlist name and saved position are
// returned alongside the rebuilt queue. Restored playback never starts
// on its own.
func (s *Store) Restore() (*queue.Queue, string, int64, error) {
	payload, ok, err := s.prefs.GetPref(slotKey)
	if err != nil {
		return nil, "", 0, err
	}
	if !ok {
		return nil, "", 0, ErrNotRestorable
	}

	p, err := Decode(payload)
	if err != nil {
		s.logger.WithField("error", err).Warn("saved playlist is corrupt, discarding")
		return nil, "", 0, ErrNotRestorable
	}
	if p.SavedPositionMs < 0 {
		// A track position can never be negative; the payload decoded
		// but its contents are not trustworthy.
		s.logger.WithField("position", p.SavedPositionMs).
			Warn("saved playlist has an impossible position, discarding")
		return nil, "", 0, ErrNotRestorable
	}

	var entries []queue.Entry
	dropped := 0
	for _, e := range p.Entries {
		if _, err := os.Stat(e.Path); err != nil {
			dropped++
			continue
		}
		entries = append(entries, queue.Entry{
			ID:         e.ID,
			Title:      e.Title,
			Subtitle:   e.Subtitle,
			Path:       e.Path,
			SequenceID: e.SequenceID,
		})
	}
	if dropped > 0 {
		s.logger.WithField("dropped", dropped).Info("dropped vanished tracks from saved queue")
	}
	if len(entries) == 0 {
		return nil, "", 0, ErrNotRestorable
	}

	current := 0
	for i, e := range entries {
		if e.SequenceID == p.CurrentSequenceID {
			current = i
			break
		}
	}

	q := queue.Rebuild(entries, current)
	position := p.SavedPositionMs
	if q.Current().SequenceID != p.CurrentSequenceID {
		// The track we were positioned in is gone; restarting another
		// track mid-way makes no sense.
		position = 0
	}
	return q, p.Name, position, nil
}

// Clear removes the saved snapshot.
func (s *Store) Clear() error {
	return s.prefs.DeletePref(slotKey)
}
