package library

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Category identifies one kind of catalog query. At most one query per
// category is in flight at a time: issuing a new one supersedes the
// previous, whose late result is dropped on arrival.
type Category int

const (
	CategoryFolder Category = iota
	CategoryAlbum
	CategoryArtist
	CategoryGenre
	CategoryKey
)

func (c Category) String() string {
	switch c {
	case CategoryFolder:
		return "folder"
	case CategoryAlbum:
		return "album"
	case CategoryArtist:
		return "artist"
	case CategoryGenre:
		return "genre"
	case CategoryKey:
		return "key"
	default:
		return "unknown"
	}
}

// Result is one completed catalog query. A failed query still produces
// a Result with an empty Tracks slice.
type Result struct {
	Category Category
	Epoch    int64
	Tracks   []Track
}

const resultBufferSize = 16

// Dispatcher runs catalog queries on background goroutines and
// delivers their results on a channel. Each query is tagged with an
// epoch per category; results from superseded epochs are discarded.
type Dispatcher struct {
	lib    *Library
	logger *logrus.Logger

	mu     sync.Mutex
	epochs map[Category]int64

	results chan Result
}

// NewDispatcher creates a dispatcher over the given library.
func NewDispatcher(lib *Library, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		lib:     lib,
		logger:  logger,
		epochs:  make(map[Category]int64),
		results: make(chan Result, resultBufferSize),
	}
}

// Results returns the delivery channel. Receivers should drain it
// promptly; the dispatcher drops results when the buffer is full.
func (d *Dispatcher) Results() <-chan Result {
	return d.results
}

// Epoch returns the current epoch for a category. Receivers compare a
// buffered Result against it before acting, since a newer query may
// have been issued while the result sat in the channel.
func (d *Dispatcher) Epoch(cat Category) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.epochs[cat]
}

// QueryFolder requests the full catalog in folder order.
func (d *Dispatcher) QueryFolder() {
	d.dispatch(CategoryFolder, func() ([]Track, error) { return d.lib.ByFolder() })
}

// QueryAlbum requests the tracks of one album.
func (d *Dispatcher) QueryAlbum(album string) {
	d.dispatch(CategoryAlbum, func() ([]Track, error) { return d.lib.ByAlbum(album) })
}

// QueryArtist requests all tracks by an artist.
func (d *Dispatcher) QueryArtist(artist string) {
	d.dispatch(CategoryArtist, func() ([]Track, error) { return d.lib.ByArtist(artist) })
}

// QueryGenre requests all tracks of a genre.
func (d *Dispatcher) QueryGenre(genre string) {
	d.dispatch(CategoryGenre, func() ([]Track, error) { return d.lib.ByGenre(genre) })
}

// QueryKey requests the tracks matching an arbitrary key.
func (d *Dispatcher) QueryKey(key string) {
	d.dispatch(CategoryKey, func() ([]Track, error) { return d.lib.ByKey(key) })
}

func (d *Dispatcher) dispatch(cat Category, run func() ([]Track, error)) {
	d.mu.Lock()
	d.epochs[cat]++
	epoch := d.epochs[cat]
	d.mu.Unlock()

	go func() {
		tracks, err := run()
		if err != nil {
			d.logger.WithFields(logrus.Fields{
				"category": cat.String(),
				"error":    err,
			}).Warn("catalog query failed, returning empty list")
			tracks = nil
		}
		d.deliver(Result{Category: cat, Epoch: epoch, Tracks: tracks})
	}()
}

func (d *Dispatcher) deliver(r Result) {
	d.mu.Lock()
	current := d.epochs[r.Category]
	d.mu.Unlock()

	if r.Epoch != current {
		d.logger.WithFields(logrus.Fields{
			"category": r.Category.String(),
			"epoch":    r.Epoch,
			"current":  current,
		}).Debug("dropping superseded query result")
		return
	}

	select {
	case d.results <- r:
	default:
		d.logger.WithField("category", r.Category.String()).
			Warn("result buffer full, dropping delivery")
	}
}
