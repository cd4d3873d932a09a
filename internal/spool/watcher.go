package spool

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"tools.zach/dev/blessing/internal/paths"
)

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher signals when request files appear in a directory, using fsnotify
// with a polling fallback.
type Watcher struct {
	// dir is the requests directory.
	dir string
	// events is buffered to 1 so bursts of requests coalesce.
	events chan struct{}
	done   chan struct{}
	// fsw is nil when polling.
	fsw  *fsnotify.Watcher
	once sync.Once
	// polling is true once the watcher has fallen back to directory scans.
	polling      atomic.Bool
	pollInterval time.Duration
}

// NewWatcher watches dir, creating it if needed.
func NewWatcher(dir string) (*Watcher, error) {
	return newWatcher(dir, false, 2*time.Second)
}

func newWatcher(dir string, forcePoll bool, interval time.Duration) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create requests dir: %w", err)
	}
	w := &Watcher{
		dir:          dir,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: interval,
	}
	if forcePoll {
		w.startPolling()
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to directory polling", "error", err)
		w.startPolling()
		return w, nil
	}
	if err := fsw.Add(dir); err != nil {
		slog.Info("cannot watch requests dir, falling back to polling", "path", dir, "error", err)
		fsw.Close()
		w.startPolling()
		return w, nil
	}
	w.fsw = fsw
	go w.watch()
	return w, nil
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// isRequest reports whether name is a request file.
func isRequest(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, paths.RequestExt) && len(base) > len(paths.RequestExt)
}

func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if (event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)) && isRequest(event.Name) {
				w.notify()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to directory polling", "error", err)
			w.fsw.Close()
			w.fsw = nil
			w.startPolling()
			return
		}
	}
}

// poll signals on every tick that finds a pending request. Requests are
// removed once handled, so a quiet directory stays quiet.
func (w *Watcher) poll() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if pending, _ := Pending(w.dir); len(pending) > 0 {
				w.notify()
			}
		}
	}
}

// Polling reports whether the watcher is scanning instead of using fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events receives a signal when new requests may be waiting.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}

func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
