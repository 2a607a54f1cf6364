// Package library is the local media index: a sqlite-backed catalog of
// tracks discovered under the configured sources, queried by folder,
// album, artist, genre or key to produce play-queue candidates.
package library

import (
	"database/sql"
	"fmt"
	"hash/fnv"

	"github.com/sirupsen/logrus"
)

// Track is one indexed media file.
type Track struct {
	ID          int64
	MediaKey    string // stable key derived from the path
	Path        string
	Mtime       int64
	Artist      string
	Album       string
	Title       string
	TrackNumber int
	Year        int
	Genre       string
}

// Subtitle returns the display subtitle for queue entries: the album,
// falling back to the artist.
func (t Track) Subtitle() string {
	if t.Album != "" {
		return t.Album
	}
	return t.Artist
}

// Library answers catalog queries. It owns no playback state.
type Library struct {
	db     *sql.DB
	logger *logrus.Logger
}

// New creates a library over the shared state database.
func New(db *sql.DB, logger *logrus.Logger) *Library {
	return &Library{db: db, logger: logger}
}

// MediaKey derives the stable media key for a path.
func MediaKey(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("%x", h.Sum64())
}

// TrackCount returns the total number of indexed tracks.
func (l *Library) TrackCount() (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM library_tracks`).Scan(&count)
	return count, err
}
