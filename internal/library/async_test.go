package library

import (
	"testing"
	"time"
)

func receiveResult(t *testing.T, d *Dispatcher) Result {
	t.Helper()
	select {
	case r := <-d.Results():
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for query result")
		return Result{}
	}
}

func TestDispatcher_DeliversResult(t *testing.T) {
	lib := openTestLibrary(t)
	seedTracks(t, lib)
	d := NewDispatcher(lib, testLogger())

	d.QueryFolder()

	r := receiveResult(t, d)
	if r.Category != CategoryFolder {
		t.Errorf("Category = %v, want folder", r.Category)
	}
	if len(r.Tracks) != 3 {
		t.Errorf("got %d tracks, want 3", len(r.Tracks))
	}
}

func TestDispatcher_FailureDegradesToEmpty(t *testing.T) {
	lib := openTestLibrary(t)
	d := NewDispatcher(lib, testLogger())

	// Break the underlying store so the query errors out.
	lib.db.Close()

	d.QueryAlbum("anything")

	r := receiveResult(t, d)
	if len(r.Tracks) != 0 {
		t.Errorf("failed query delivered %d tracks, want empty list", len(r.Tracks))
	}
}

func TestDispatcher_SupersededResultDropped(t *testing.T) {
	lib := openTestLibrary(t)
	seedTracks(t, lib)
	d := NewDispatcher(lib, testLogger())

	// Simulate a slow query that finishes after a newer one was issued.
	d.epochs[CategoryKey] = 7
	d.deliver(Result{Category: CategoryKey, Epoch: 3, Tracks: []Track{{Title: "stale"}}})

	select {
	case r := <-d.Results():
		t.Fatalf("stale result %v was delivered", r)
	case <-time.After(50 * time.Millisecond):
	}

	d.deliver(Result{Category: CategoryKey, Epoch: 7})
	r := receiveResult(t, d)
	if r.Epoch != 7 {
		t.Errorf("Epoch = %d, want 7", r.Epoch)
	}
}

func TestDispatcher_NewQueryBumpsEpoch(t *testing.T) {
	lib := openTestLibrary(t)
	d := NewDispatcher(lib, testLogger())

	d.QueryGenre("a")
	first := receiveResult(t, d)

	d.QueryGenre("b")
	second := receiveResult(t, d)

	if second.Epoch <= first.Epoch {
		t.Errorf("epoch did not advance: %d then %d", first.Epoch, second.Epoch)
	}
}
