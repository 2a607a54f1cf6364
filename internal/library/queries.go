package library

import (
	"database/sql"

	dbutil "github.com/ndelorme/quaver/internal/db"
)

const trackColumns = `id, media_key, path, mtime, artist, album, title, track_number, year, genre`

func (l *Library) scanTracks(rows *sql.Rows) ([]Track, error) {
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		var trackNum, year sql.NullInt64
		var genre sql.NullString

		if err := rows.Scan(&t.ID, &t.MediaKey, &t.Path, &t.Mtime, &t.Artist, &t.Album, &t.Title,
			&trackNum, &year, &genre); err != nil {
			return nil, err
		}
		t.TrackNumber = int(dbutil.NullInt64Value(trackNum))
		t.Year = int(dbutil.NullInt64Value(year))
		t.Genre = dbutil.NullStringValue(genre)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// ByFolder returns all tracks ordered by path, i.e. folder traversal
// order.
func (l *Library) ByFolder() ([]Track, error) {
	rows, err := l.db.Query(`
		SELECT ` + trackColumns + `
		FROM library_tracks
		ORDER BY path COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	return l.scanTracks(rows)
}

// ByAlbum returns the tracks of one album in track order.
func (l *Library) ByAlbum(album string) ([]Track, error) {
	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE album = ?
		ORDER BY track_number, title COLLATE NOCASE
	`, album)
	if err != nil {
		return nil, err
	}
	return l.scanTracks(rows)
}

// ByArtist returns all tracks by an artist, grouped by album.
func (l *Library) ByArtist(artist string) ([]Track, error) {
	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE artist = ?
		ORDER BY (year IS NULL OR year = 0), year, album COLLATE NOCASE, track_number, title COLLATE NOCASE
	`, artist)
	if err != nil {
		return nil, err
	}
	return l.scanTracks(rows)
}

// ByGenre returns all tracks of a genre.
func (l *Library) ByGenre(genre string) ([]Track, error) {
	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE genre = ?
		ORDER BY artist COLLATE NOCASE, album COLLATE NOCASE, track_number
	`, genre)
	if err != nil {
		return nil, err
	}
	return l.scanTracks(rows)
}

// ByKey returns tracks matching a key: the media key itself, an exact
// album, artist or title, or a path prefix.
func (l *Library) ByKey(key string) ([]Track, error) {
	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE media_key = ? OR album = ? OR artist = ? OR title = ? OR path LIKE ?
		ORDER BY path COLLATE NOCASE
	`, key, key, key, key, key+"%")
	if err != nil {
		return nil, err
	}
	return l.scanTracks(rows)
}

// MetadataFor returns the track carrying the given media key, or nil
// if the key is unknown.
func (l *Library) MetadataFor(mediaKey string) (*Track, error) {
	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE media_key = ?
	`, mediaKey)
	if err != nil {
		return nil, err
	}
	tracks, err := l.scanTracks(rows)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return &tracks[0], nil
}

// Albums returns all distinct album names.
func (l *Library) Albums() ([]string, error) {
	return l.distinctColumn(`SELECT DISTINCT album FROM library_tracks WHERE album != '' ORDER BY album COLLATE NOCASE`)
}

// Artists returns all distinct artist names.
func (l *Library) Artists() ([]string, error) {
	return l.distinctColumn(`SELECT DISTINCT artist FROM library_tracks WHERE artist != '' ORDER BY artist COLLATE NOCASE`)
}

// Genres returns all distinct genre names.
func (l *Library) Genres() ([]string, error) {
	return l.distinctColumn(`SELECT DISTINCT genre FROM library_tracks WHERE genre IS NOT NULL AND genre != '' ORDER BY genre COLLATE NOCASE`)
}

func (l *Library) distinctColumn(query string) ([]string, error) {
	rows, err := l.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
