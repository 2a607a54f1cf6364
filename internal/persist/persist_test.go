package persist

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ndelorme/quaver/internal/queue"
)

type memPrefs struct {
	values map[string]string
}

func newMemPrefs() *memPrefs {
	return &memPrefs{values: make(map[string]string)}
}

func (m *memPrefs) GetPref(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memPrefs) SetPref(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memPrefs) DeletePref(key string) error {
	delete(m.values, key)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeTrack(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCodec_Roundtrip(t *testing.T) {
	in := Playlist{
		Name:              "Evening",
		CurrentSequenceID: 2,
		SavedPositionMs:   93500,
		Entries: []Entry{
			{SequenceID: 0, ID: "aa", Title: "One", Subtitle: "Album", Path: "/m/1.mp3"},
			{SequenceID: 1, ID: "bb", Title: "Twø", Subtitle: "", Path: "/m/2.flac"},
			{SequenceID: 2, ID: "cc", Title: "Three", Subtitle: "Other", Path: "/m/3.mp3"},
		},
	}

	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Name != in.Name || out.CurrentSequenceID != 2 || out.SavedPositionMs != 93500 {
		t.Errorf("header mismatch: %+v", out)
	}
	if len(out.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(out.Entries))
	}
	if out.Entries[1] != in.Entries[1] {
		t.Errorf("entry mismatch: %+v != %+v", out.Entries[1], in.Entries[1])
	}
}

func TestCodec_RejectsGarbage(t *testing.T) {
	for _, payload := range []string{
		"",
		"not base64!!!",
		"AAAA",
	} {
		if _, err := Decode(payload); err == nil {
			t.Errorf("Decode(%q) accepted garbage", payload)
		}
	}
}

func TestCodec_RejectsTruncated(t *testing.T) {
	full := Encode(Playlist{
		Name:    "x",
		Entries: []Entry{{SequenceID: 0, ID: "a", Title: "t", Path: "/p"}},
	})
	if _, err := Decode(full[:len(full)-8]); err == nil {
		t.Error("Decode accepted a truncated payload")
	}
}

func TestStore_SaveRestore(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTrack(t, dir, "1.mp3")
	p2 := writeTrack(t, dir, "2.mp3")
	p3 := writeTrack(t, dir, "3.mp3")

	q := queue.Build([]queue.Entry{
		{ID: "a", Title: "One", Path: p1},
		{ID: "b", Title: "Two", Path: p2},
		{ID: "c", Title: "Three", Path: p3},
	})
	q.SetCurrent(1)

	store := NewStore(newMemPrefs(), testLogger())
	if err := store.Save(q, "Morning", 45000); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, name, pos, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if name != "Morning" || pos != 45000 {
		t.Errorf("Restore header = (%q, %d), want (Morning, 45000)", name, pos)
	}
	if got.Len() != 3 {
		t.Fatalf("restored %d entries, want 3", got.Len())
	}
	if cur := got.Current(); cur.ID != "b" {
		t.Errorf("restored current = %q, want b", cur.ID)
	}
}

func TestStore_RestoreDropsVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTrack(t, dir, "1.mp3")
	p2 := writeTrack(t, dir, "2.mp3")
	p3 := writeTrack(t, dir, "3.mp3")

	q := queue.Build([]queue.Entry{
		{ID: "a", Path: p1},
		{ID: "b", Path: p2},
		{ID: "c", Path: p3},
	})
	q.SetCurrent(1)

	store := NewStore(newMemPrefs(), testLogger())
	if err := store.Save(q, "", 60000); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The saved current track vanishes before restore.
	if err := os.Remove(p2); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	got, _, pos, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("restored %d entries, want 2", got.Len())
	}
	if cur := got.Current(); cur.ID != "a" {
		t.Errorf("restored current = %q, want fallback to first entry", cur.ID)
	}
	if pos != 0 {
		t.Errorf("saved position %d survived a vanished current track, want 0", pos)
	}
}

func TestStore_RestoreNothingSaved(t *testing.T) {
	store := NewStore(newMemPrefs(), testLogger())

	if _, _, _, err := store.Restore(); !errors.Is(err, ErrNotRestorable) {
		t.Errorf("Restore = %v, want ErrNotRestorable", err)
	}
}

func TestStore_RestoreCorruptSlot(t *testing.T) {
	prefs := newMemPrefs()
	prefs.values[slotKey] = "definitely not a snapshot"

	store := NewStore(prefs, testLogger())
	if _, _, _, err := store.Restore(); !errors.Is(err, ErrNotRestorable) {
		t.Errorf("Restore = %v, want ErrNotRestorable", err)
	}
}

func TestStore_RestoreNegativePosition(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTrack(t, dir, "1.mp3")

	// A decodable payload with an impossible position is as untrustworthy
	// as a corrupt one.
	prefs := newMemPrefs()
	prefs.values[slotKey] = Encode(Playlist{
		Name:            "x",
		SavedPositionMs: -1,
		Entries:         []Entry{{SequenceID: 0, ID: "a", Title: "t", Path: p1}},
	})

	store := NewStore(prefs, testLogger())
	if _, _, _, err := store.Restore(); !errors.Is(err, ErrNotRestorable) {
		t.Errorf("Restore = %v, want ErrNotRestorable", err)
	}
}

func TestStore_RestoreAllFilesGone(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTrack(t, dir, "1.mp3")

	q := queue.Build([]queue.Entry{{ID: "a", Path: p1}})
	store := NewStore(newMemPrefs(), testLogger())
	if err := store.Save(q, "", 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.Remove(p1); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, _, _, err := store.Restore(); !errors.Is(err, ErrNotRestorable) {
		t.Errorf("Restore = %v, want ErrNotRestorable", err)
	}
}

func TestStore_SaveEmptyQueueIsNoop(t *testing.T) {
	prefs := newMemPrefs()
	store := NewStore(prefs, testLogger())

	if err := store.Save(queue.Build(nil), "", 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(prefs.values) != 0 {
		t.Error("empty queue was saved")
	}
}
