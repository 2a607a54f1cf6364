package library

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ndelorme/quaver/internal/player"
)

const rescanDebounce = 2 * time.Second

// Watcher monitors the source directories and triggers an incremental
// rescan when files change. Events are debounced so a burst of copies
// results in a single scan.
type Watcher struct {
	lib     *Library
	sources []string
	fsw     *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts monitoring the given sources. The returned Watcher
// must be closed on shutdown.
func (l *Library) Watch(sources []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		lib:     l,
		sources: sources,
		fsw:     fsw,
		done:    make(chan struct{}),
	}

	for _, src := range sources {
		if err := w.addRecursive(src); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	go w.run()
	l.logger.WithField("sources", sources).Info("library watcher started")
	return w, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	w.fsw.Close()
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are skipped
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(rescanDebounce)
			} else {
				timer.Reset(rescanDebounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.lib.logger.WithField("error", err).Error("library watcher error")

		case <-timerC:
			timerC = nil
			if _, err := w.lib.Refresh(w.sources); err != nil {
				w.lib.logger.WithField("error", err).Error("rescan after file change failed")
			}
		}
	}
}

// relevant filters out hidden and temporary files; directory events
// stay relevant so new subtrees get watched and scanned.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
		return false
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	return event.Has(fsnotify.Write) && player.IsMusicFile(event.Name)
}
