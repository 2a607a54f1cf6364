// Package queue implements the play queue: an ordered sequence of
// entries with a designated current index. The queue is circular for
// advance/retreat so next/previous are always available.
package queue

import "math/rand"

// Entry is one addressable track reference in the play queue.
// Entries are immutable once constructed; SequenceID is reassigned
// whenever the queue is rebuilt (e.g. after a shuffle) and is the key
// used for skip-to-item addressing.
type Entry struct {
	ID         string // stable media key, unique within one queue build
	Title      string
	Subtitle   string
	Path       string // source locator on the local filesystem
	SequenceID int64
}

// Queue holds an ordered list of entries plus the index of the entry
// currently loaded (or about to be loaded) into the player.
type Queue struct {
	entries []Entry
	current int
}

// Build constructs a fresh queue from the candidate list, assigning
// each entry a sequence id equal to its position. The current index
// starts at 0.
func Build(candidates []Entry) *Queue {
	entries := make([]Entry, len(candidates))
	copy(entries, candidates)
	for i := range entries {
		entries[i].SequenceID = int64(i)
	}
	return &Queue{entries: entries}
}

// Rebuild reconstructs a queue from previously saved entries, keeping
// their stored sequence ids. An out-of-range current index falls back
// to 0.
func Rebuild(entries []Entry, current int) *Queue {
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	if current < 0 || current >= len(copied) {
		current = 0
	}
	return &Queue{entries: copied, current: current}
}

// Len returns the number of entries in the queue.
func (q *Queue) Len() int {
	return len(q.entries)
}

// IsEmpty returns true if the queue has no entries.
func (q *Queue) IsEmpty() bool {
	return len(q.entries) == 0
}

// Entries returns a copy of all entries in order.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Current returns the entry at the current index, or nil if the queue
// is empty.
func (q *Queue) Current() *Entry {
	if len(q.entries) == 0 {
		return nil
	}
	e := q.entries[q.current]
	return &e
}

// CurrentIndex returns the current index. Only meaningful when the
// queue is non-empty.
func (q *Queue) CurrentIndex() int {
	return q.current
}

// SetCurrent moves the current index to the given position.
// Returns false if the index is out of range.
func (q *Queue) SetCurrent(index int) bool {
	if index < 0 || index >= len(q.entries) {
		return false
	}
	q.current = index
	return true
}

// Advance moves the current index forward, wrapping past the last
// entry back to index 0. Returns the new current entry, or nil if the
// queue is empty.
func (q *Queue) Advance() *Entry {
	if len(q.entries) == 0 {
		return nil
	}
	q.current = (q.current + 1) % len(q.entries)
	return q.Current()
}

// Retreat moves the current index backward, wrapping before index 0 to
// the last entry. Returns the new current entry, or nil if the queue
// is empty.
func (q *Queue) Retreat() *Entry {
	if len(q.entries) == 0 {
		return nil
	}
	q.current--
	if q.current < 0 {
		q.current = len(q.entries) - 1
	}
	return q.Current()
}

// IndexOfSequence returns the index of the entry with the given
// sequence id, or -1 if no entry carries it.
func (q *Queue) IndexOfSequence(seqID int64) int {
	for i, e := range q.entries {
		if e.SequenceID == seqID {
			return i
		}
	}
	return -1
}

// IndexOfID returns the index of the entry with the given media key,
// or -1 if the key is not in the queue.
func (q *Queue) IndexOfID(id string) int {
	for i, e := range q.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// JumpToSequence moves the current index to the entry with the given
// sequence id. Returns the entry, or nil if the id does not resolve.
func (q *Queue) JumpToSequence(seqID int64) *Entry {
	idx := q.IndexOfSequence(seqID)
	if idx < 0 {
		return nil
	}
	q.current = idx
	return q.Current()
}

// Shuffle randomly permutes the queue while keeping the current entry
// at the front so playback continues uninterrupted. Queues of size two
// or less are left untouched. Every sequence id is reassigned to its
// new positional index and the current index becomes 0.
//
// Previously played entries stay in the shuffle pool, so repeats are
// possible. That matches the simple shuffle this is modeled on.
func (q *Queue) Shuffle() {
	if len(q.entries) <= 2 {
		return
	}
	current := q.entries[q.current]
	rest := make([]Entry, 0, len(q.entries)-1)
	rest = append(rest, q.entries[:q.current]...)
	rest = append(rest, q.entries[q.current+1:]...)

	rand.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	q.entries = append([]Entry{current}, rest...)
	for i := range q.entries {
		q.entries[i].SequenceID = int64(i)
	}
	q.current = 0
}
