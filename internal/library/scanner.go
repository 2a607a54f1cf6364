package library

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	dbutil "github.com/ndelorme/quaver/internal/db"
	"github.com/ndelorme/quaver/internal/player"
)

const numWorkers = 8

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path  string
	mtime int64
}

// ScanStats summarizes a completed scan.
type ScanStats struct {
	Added   int
	Updated int
	Removed int
}

// Refresh performs an incremental scan of the given source directories:
// new and modified files are (re)tagged and upserted, vanished files
// are removed from the index.
func (l *Library) Refresh(sources []string) (ScanStats, error) {
	var stats ScanStats

	files, discovered := discoverFiles(sources)

	existing, err := l.existingTracks(sources)
	if err != nil {
		return stats, err
	}

	var toProcess []fileInfo
	isNew := make(map[string]bool)
	for _, f := range files {
		if mtime, ok := existing[f.path]; ok && mtime == f.mtime {
			continue // unchanged
		}
		_, existed := existing[f.path]
		isNew[f.path] = !existed
		toProcess = append(toProcess, f)
	}

	results := l.readTags(toProcess)
	for _, r := range results {
		if err := l.upsertTrack(r); err != nil {
			l.logger.WithFields(logrus.Fields{
				"path":  r.Path,
				"error": err,
			}).Warn("failed to index track")
			continue
		}
		if isNew[r.Path] {
			stats.Added++
		} else {
			stats.Updated++
		}
	}

	for path := range existing {
		if _, ok := discovered[path]; ok {
			continue
		}
		if err := l.deleteTrackByPath(path); err == nil {
			stats.Removed++
		}
	}

	l.logger.WithFields(logrus.Fields{
		"added":   stats.Added,
		"updated": stats.Updated,
		"removed": stats.Removed,
	}).Info("library scan complete")
	return stats, nil
}

// discoverFiles walks the source directories and returns all music
// files found. Walk errors are skipped so one unreadable directory
// does not abort the scan.
func discoverFiles(sources []string) (files []fileInfo, discovered map[string]struct{}) {
	for _, src := range sources {
		_ = filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !player.IsMusicFile(path) {
				return nil
			}
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			files = append(files, fileInfo{path: path, mtime: info.ModTime().Unix()})
			return nil
		})
	}

	discovered = make(map[string]struct{}, len(files))
	for _, f := range files {
		discovered[f.path] = struct{}{}
	}
	return files, discovered
}

// readTags extracts tag metadata from the given files using a small
// worker pool.
func (l *Library) readTags(files []fileInfo) []Track {
	if len(files) == 0 {
		return nil
	}

	jobs := make(chan fileInfo)
	out := make(chan Track)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				info, err := player.ReadTrackInfo(f.path)
				if err != nil {
					l.logger.WithFields(logrus.Fields{
						"path":  f.path,
						"error": err,
					}).Warn("failed to read tags")
					continue
				}
				out <- Track{
					MediaKey:    MediaKey(f.path),
					Path:        f.path,
					Mtime:       f.mtime,
					Artist:      info.Artist,
					Album:       info.Album,
					Title:       info.Title,
					TrackNumber: info.Track,
					Year:        info.Year,
					Genre:       info.Genre,
				}
			}
		}()
	}

	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var tracks []Track
	for t := range out {
		tracks = append(tracks, t)
	}
	return tracks
}

func (l *Library) existingTracks(sources []string) (map[string]int64, error) {
	rows, err := l.db.Query(`SELECT path, mtime FROM library_tracks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		for _, src := range sources {
			if pathUnder(src, path) {
				existing[path] = mtime
				break
			}
		}
	}
	return existing, rows.Err()
}

func pathUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (l *Library) upsertTrack(t Track) error {
	now := time.Now().Unix()
	return dbutil.WithTx(l.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO library_tracks (media_key, path, mtime, artist, album, title, track_number, year, genre, added_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				mtime = excluded.mtime,
				artist = excluded.artist,
				album = excluded.album,
				title = excluded.title,
				track_number = excluded.track_number,
				year = excluded.year,
				genre = excluded.genre,
				updated_at = excluded.updated_at
		`, t.MediaKey, t.Path, t.Mtime, t.Artist, t.Album, t.Title, t.TrackNumber, t.Year, t.Genre, now, now)
		return err
	})
}

func (l *Library) deleteTrackByPath(path string) error {
	_, err := l.db.Exec(`DELETE FROM library_tracks WHERE path = ?`, path)
	return err
}
