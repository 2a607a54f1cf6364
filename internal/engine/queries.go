package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/ndelorme/quaver/internal/library"
	"github.com/ndelorme/quaver/internal/queue"
)

// Async queue loading. Each Load method issues a background catalog
// query; the queue is replaced when the result arrives, stopping
// whatever was playing. Issuing a new query for the same category
// supersedes the previous one, so only the latest result lands.

// LoadFolder queues the full catalog in folder order.
func (e *Engine) LoadFolder() error {
	return e.load(library.CategoryFolder, "Library", e.dispatcher.QueryFolder)
}

// LoadAlbum queues one album.
func (e *Engine) LoadAlbum(album string) error {
	return e.load(library.CategoryAlbum, album, func() { e.dispatcher.QueryAlbum(album) })
}

// LoadArtist queues all tracks by an artist.
func (e *Engine) LoadArtist(artist string) error {
	return e.load(library.CategoryArtist, artist, func() { e.dispatcher.QueryArtist(artist) })
}

// LoadGenre queues all tracks of a genre.
func (e *Engine) LoadGenre(genre string) error {
	return e.load(library.CategoryGenre, genre, func() { e.dispatcher.QueryGenre(genre) })
}

func (e *Engine) load(cat library.Category, label string, dispatch func()) error {
	return e.do(func() error {
		e.labels[cat] = label
		dispatch()
		return nil
	})
}

// handleQueryResult installs a completed catalog query as the queue.
// Playback stops; nothing starts until Play. A failed query arrives
// here as an empty track list and yields an empty queue.
//
// The epoch is checked again here, not just at delivery: a result can
// sit in the buffered channel while a newer query bumps the epoch, and
// a superseded result must never replace the newer queue.
func (e *Engine) handleQueryResult(r library.Result) {
	if r.Epoch != e.dispatcher.Epoch(r.Category) {
		e.logger.WithFields(logrus.Fields{
			"category": r.Category.String(),
			"epoch":    r.Epoch,
		}).Debug("dropping superseded query result")
		return
	}

	e.player.Stop()
	e.pendingSeek = 0
	e.resumeOnGain = false

	e.mu.Lock()
	e.q = queue.Build(entriesFromTracks(r.Tracks))
	e.playlistName = e.labels[r.Category]
	e.mu.Unlock()
	e.setState(StateStopped, nil)
}
