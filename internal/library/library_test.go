package library

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ndelorme/quaver/internal/state"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	m, err := state.OpenPath(filepath.Join(t.TempDir(), "quaver.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return New(m.DB(), testLogger())
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestMediaKey(t *testing.T) {
	a := MediaKey("/music/a.mp3")
	b := MediaKey("/music/b.mp3")

	if a == "" {
		t.Fatal("MediaKey returned empty key")
	}
	if a == b {
		t.Errorf("distinct paths produced the same key %q", a)
	}
	if a != MediaKey("/music/a.mp3") {
		t.Error("MediaKey is not stable for the same path")
	}
}

func TestRefresh(t *testing.T) {
	lib := openTestLibrary(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "a.mp3"))
	writeFile(t, filepath.Join(dir, "sub", "b.flac"))
	writeFile(t, filepath.Join(dir, "notes.txt"))

	stats, err := lib.Refresh([]string{dir})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if stats.Added != 2 {
		t.Errorf("Added = %d, want 2", stats.Added)
	}

	tracks, err := lib.ByFolder()
	if err != nil {
		t.Fatalf("ByFolder: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	if tracks[0].Title != "a.mp3" {
		t.Errorf("untagged file title = %q, want filename", tracks[0].Title)
	}

	// Unchanged files are skipped on the next pass.
	stats, err = lib.Refresh([]string{dir})
	if err != nil {
		t.Fatalf("Refresh again: %v", err)
	}
	if stats.Added != 0 || stats.Updated != 0 || stats.Removed != 0 {
		t.Errorf("second scan = %+v, want all zero", stats)
	}

	// A bumped mtime forces a re-read.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "a.mp3"), later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	stats, err = lib.Refresh([]string{dir})
	if err != nil {
		t.Fatalf("Refresh after touch: %v", err)
	}
	if stats.Updated != 1 {
		t.Errorf("Updated = %d, want 1", stats.Updated)
	}

	// Vanished files are removed from the index.
	if err := os.Remove(filepath.Join(dir, "sub", "b.flac")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	stats, err = lib.Refresh([]string{dir})
	if err != nil {
		t.Fatalf("Refresh after delete: %v", err)
	}
	if stats.Removed != 1 {
		t.Errorf("Removed = %d, want 1", stats.Removed)
	}

	count, err := lib.TrackCount()
	if err != nil {
		t.Fatalf("TrackCount: %v", err)
	}
	if count != 1 {
		t.Errorf("TrackCount = %d, want 1", count)
	}
}

// writeTaggedFile writes an mp3 whose ID3v2.3 header carries a title
// and a genre frame, enough for the tag reader without any audio data.
func writeTaggedFile(t *testing.T, path, title, genre string) {
	t.Helper()
	frame := func(id, text string) []byte {
		payload := append([]byte{0}, []byte(text)...) // ISO-8859-1 encoding byte
		b := []byte(id)
		n := len(payload)
		b = append(b, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		b = append(b, 0, 0)
		return append(b, payload...)
	}
	body := append(frame("TIT2", title), frame("TCON", genre)...)
	data := []byte{'I', 'D', '3', 3, 0, 0}
	n := len(body)
	// Tag size is a 28-bit syncsafe integer.
	data = append(data, byte(n>>21&0x7f), byte(n>>14&0x7f), byte(n>>7&0x7f), byte(n&0x7f))
	data = append(data, body...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestRefresh_IndexesGenre(t *testing.T) {
	lib := openTestLibrary(t)
	dir := t.TempDir()
	writeTaggedFile(t, filepath.Join(dir, "drift.mp3"), "Drift", "Ambient")
	writeFile(t, filepath.Join(dir, "plain.mp3"))

	if _, err := lib.Refresh([]string{dir}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	tracks, err := lib.ByGenre("Ambient")
	if err != nil {
		t.Fatalf("ByGenre: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Title != "Drift" {
		t.Errorf("ByGenre(Ambient) = %v, want the tagged track", tracks)
	}
	if tracks[0].Genre != "Ambient" {
		t.Errorf("Genre = %q, want Ambient", tracks[0].Genre)
	}

	genres, err := lib.Genres()
	if err != nil {
		t.Fatalf("Genres: %v", err)
	}
	found := false
	for _, g := range genres {
		if g == "Ambient" {
			found = true
		}
	}
	if !found {
		t.Errorf("Genres = %v, want Ambient listed", genres)
	}
}

func seedTracks(t *testing.T, lib *Library) {
	t.Helper()
	tracks := []Track{
		{MediaKey: MediaKey("/m/cave/1.mp3"), Path: "/m/cave/1.mp3", Mtime: 1, Artist: "Nick Cave", Album: "The Boatman's Call", Title: "Into My Arms", TrackNumber: 1, Year: 1997, Genre: "Rock"},
		{MediaKey: MediaKey("/m/cave/2.mp3"), Path: "/m/cave/2.mp3", Mtime: 1, Artist: "Nick Cave", Album: "The Boatman's Call", Title: "Lime Tree Arbour", TrackNumber: 2, Year: 1997, Genre: "Rock"},
		{MediaKey: MediaKey("/m/low/1.flac"), Path: "/m/low/1.flac", Mtime: 1, Artist: "Low", Album: "Things We Lost in the Fire", Title: "Sunflower", TrackNumber: 1, Year: 2001, Genre: "Slowcore"},
	}
	for _, tr := range tracks {
		if err := lib.upsertTrack(tr); err != nil {
			t.Fatalf("upsertTrack(%s): %v", tr.Path, err)
		}
	}
}

func TestQueries(t *testing.T) {
	lib := openTestLibrary(t)
	seedTracks(t, lib)

	byAlbum, err := lib.ByAlbum("The Boatman's Call")
	if err != nil {
		t.Fatalf("ByAlbum: %v", err)
	}
	if len(byAlbum) != 2 || byAlbum[0].Title != "Into My Arms" {
		t.Errorf("ByAlbum = %v, want 2 tracks starting with Into My Arms", byAlbum)
	}

	byArtist, err := lib.ByArtist("Low")
	if err != nil {
		t.Fatalf("ByArtist: %v", err)
	}
	if len(byArtist) != 1 {
		t.Errorf("ByArtist(Low) returned %d tracks, want 1", len(byArtist))
	}

	byGenre, err := lib.ByGenre("Slowcore")
	if err != nil {
		t.Fatalf("ByGenre: %v", err)
	}
	if len(byGenre) != 1 || byGenre[0].Artist != "Low" {
		t.Errorf("ByGenre(Slowcore) = %v, want the Low track", byGenre)
	}

	byKey, err := lib.ByKey("Nick Cave")
	if err != nil {
		t.Fatalf("ByKey: %v", err)
	}
	if len(byKey) != 2 {
		t.Errorf("ByKey(artist) returned %d tracks, want 2", len(byKey))
	}

	byPrefix, err := lib.ByKey("/m/low")
	if err != nil {
		t.Fatalf("ByKey prefix: %v", err)
	}
	if len(byPrefix) != 1 {
		t.Errorf("ByKey(path prefix) returned %d tracks, want 1", len(byPrefix))
	}

	none, err := lib.ByKey("no such thing")
	if err != nil {
		t.Fatalf("ByKey miss: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ByKey miss returned %d tracks, want 0", len(none))
	}
}

func TestMetadataFor(t *testing.T) {
	lib := openTestLibrary(t)
	seedTracks(t, lib)

	tr, err := lib.MetadataFor(MediaKey("/m/low/1.flac"))
	if err != nil {
		t.Fatalf("MetadataFor: %v", err)
	}
	if tr == nil || tr.Title != "Sunflower" {
		t.Errorf("MetadataFor = %v, want Sunflower", tr)
	}

	missing, err := lib.MetadataFor("deadbeef")
	if err != nil {
		t.Fatalf("MetadataFor miss: %v", err)
	}
	if missing != nil {
		t.Errorf("MetadataFor on unknown key = %v, want nil", missing)
	}
}

func TestDistinctListings(t *testing.T) {
	lib := openTestLibrary(t)
	seedTracks(t, lib)

	albums, err := lib.Albums()
	if err != nil {
		t.Fatalf("Albums: %v", err)
	}
	if len(albums) != 2 {
		t.Errorf("Albums = %v, want 2", albums)
	}

	artists, err := lib.Artists()
	if err != nil {
		t.Fatalf("Artists: %v", err)
	}
	if len(artists) != 2 {
		t.Errorf("Artists = %v, want 2", artists)
	}

	genres, err := lib.Genres()
	if err != nil {
		t.Fatalf("Genres: %v", err)
	}
	if len(genres) != 2 {
		t.Errorf("Genres = %v, want 2", genres)
	}
}

func TestSubtitle(t *testing.T) {
	withAlbum := Track{Artist: "Low", Album: "Trust"}
	if got := withAlbum.Subtitle(); got != "Trust" {
		t.Errorf("Subtitle = %q, want album", got)
	}
	artistOnly := Track{Artist: "Low"}
	if got := artistOnly.Subtitle(); got != "Low" {
		t.Errorf("Subtitle = %q, want artist fallback", got)
	}
}
