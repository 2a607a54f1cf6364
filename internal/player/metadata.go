package player

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
)

// TrackInfo holds display metadata for the loaded track.
type TrackInfo struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Genre    string
	Year     int
	Track    int
	Duration time.Duration
}

// IsMusicFile reports whether the path has a playable extension.
func IsMusicFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == extMP3 || ext == extFLAC
}

// ReadTrackInfo reads tag metadata from the file at path.
// Returns an info with just the filename as title if the file carries
// no readable tags.
func ReadTrackInfo(path string) (*TrackInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return &TrackInfo{Path: path, Title: filepath.Base(path)}, nil
	}

	trackNum, _ := m.Track()
	info := &TrackInfo{
		Path:   path,
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Genre:  m.Genre(),
		Year:   m.Year(),
		Track:  trackNum,
	}
	if info.Title == "" {
		info.Title = filepath.Base(path)
	}
	return info, nil
}
