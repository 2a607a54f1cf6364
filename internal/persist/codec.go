// Package persist saves and restores the play queue and position
// across process restarts. The payload is a compact binary record,
// base64-wrapped so it fits a text preference slot.
package persist

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const codecVersion = 1

// maxEntries bounds decoding so a corrupt length field cannot trigger
// a huge allocation.
const maxEntries = 1 << 16

// Entry is one saved queue position.
type Entry struct {
	SequenceID int64
	ID         string
	Title      string
	Subtitle   string
	Path       string
}

// Playlist is the full persisted snapshot: the queue, which entry was
// current, and how far into it playback had progressed.
type Playlist struct {
	Name              string
	Entries           []Entry
	CurrentSequenceID int64
	SavedPositionMs   int64
}

var errBadPayload = errors.New("persist: malformed payload")

// Encode serializes the playlist to a text-safe string.
func Encode(p Playlist) string {
	var buf bytes.Buffer
	buf.WriteByte(codecVersion)
	writeString(&buf, p.Name)
	writeInt64(&buf, p.CurrentSequenceID)
	writeInt64(&buf, p.SavedPositionMs)
	writeInt64(&buf, int64(len(p.Entries)))
	for _, e := range p.Entries {
		writeInt64(&buf, e.SequenceID)
		writeString(&buf, e.ID)
		writeString(&buf, e.Title)
		writeString(&buf, e.Subtitle)
		writeString(&buf, e.Path)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Decode parses a string produced by Encode. Any corruption, including
// a version mismatch, yields an error.
func Decode(s string) (Playlist, error) {
	var p Playlist

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return p, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	r := bytes.NewReader(raw)

	version, err := r.ReadByte()
	if err != nil {
		return p, errBadPayload
	}
	if version != codecVersion {
		return p, fmt.Errorf("%w: unknown version %d", errBadPayload, version)
	}

	if p.Name, err = readString(r); err != nil {
		return p, err
	}
	if p.CurrentSequenceID, err = readInt64(r); err != nil {
		return p, err
	}
	if p.SavedPositionMs, err = readInt64(r); err != nil {
		return p, err
	}

	count, err := readInt64(r)
	if err != nil {
		return p, err
	}
	if count < 0 || count > maxEntries {
		return p, fmt.Errorf("%w: entry count %d", errBadPayload, count)
	}

	p.Entries = make([]Entry, 0, count)
	for range count {
		var e Entry
		if e.SequenceID, err = readInt64(r); err != nil {
			return p, err
		}
		if e.ID, err = readString(r); err != nil {
			return p, err
		}
		if e.Title, err = readString(r); err != nil {
			return p, err
		}
		if e.Subtitle, err = readString(r); err != nil {
			return p, err
		}
		if e.Path, err = readString(r); err != nil {
			return p, err
		}
		p.Entries = append(p.Entries, e)
	}

	if r.Len() != 0 {
		return p, fmt.Errorf("%w: %d trailing bytes", errBadPayload, r.Len())
	}
	return p, nil
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func readInt64(r *bytes.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errBadPayload
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func writeString(buf *bytes.Buffer, s string) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return "", errBadPayload
	}
	n := binary.BigEndian.Uint32(b[:])
	if int(n) > r.Len() {
		return "", fmt.Errorf("%w: string length %d exceeds payload", errBadPayload, n)
	}
	s := make([]byte, n)
	if _, err := io.ReadFull(r, s); err != nil {
		return "", errBadPayload
	}
	return string(s), nil
}
