package forcing

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a forcing file for changes.
type Watcher struct {
	path     string
	onReload func(*Forcing, error)
	current  *Forcing
	mu       sync.RWMutex
	reloads  atomic.Uint32
}

// NewWatcher loads the forcing file and starts watching it. Every change
// is debounced, reloaded, validated and handed to onReload.
func NewWatcher(path string, onReload func(*Forcing, error)) (*Watcher, error) {
	watcher := &Watcher{
		path:     path,
		onReload: onReload,
	}

	f, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("forcing: failed to load initial forcing: %w", err)
	}
	watcher.current = f

	go watcher.watch()

	return watcher, nil
}

// watch watches for forcing file changes.
func (fw *Watcher) watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create file watcher", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(fw.path); err != nil {
		slog.Error("Failed to watch forcing file", "path", fw.path, "error", err)
		return
	}

	var timer *time.Timer
	const debounce = 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Write == fsnotify.Write {
				if timer != nil {
					timer.Stop()
				}

				timer = time.AfterFunc(debounce, func() {
					fw.reload()
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			slog.Error("Watcher error", "error", err)
		}
	}
}

// reload reloads the forcing file.
func (fw *Watcher) reload() {
	count := fw.reloads.Add(1)
	slog.Info("Reloading forcing file", "path", fw.path, "count", count)

	f, err := Load(fw.path)
	if err != nil {
		slog.Error("Failed to reload forcing", "error", err)
		fw.onReload(nil, err)
		return
	}

	fw.mu.Lock()
	fw.current = f
	fw.mu.Unlock()

	slog.Info("Forcing reloaded successfully", "count", count)
	fw.onReload(f, nil)
}

// Snapshot returns the current forcing snapshot (thread-safe).
func (fw *Watcher) Snapshot() *Forcing {
	fw.mu.RLock()
	defer fw.mu.RUnlock()

	return fw.current
}

// ReloadCount returns the number of times the forcing has been reloaded.
func (fw *Watcher) ReloadCount() uint32 {
	return fw.reloads.Load()
}
