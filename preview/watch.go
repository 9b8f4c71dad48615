package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"mailcraft/config"
)

const (
	watchTick     = 50 * time.Millisecond
	watchDebounce = 100 * time.Millisecond
)

// WatchFile publishes the contents of path to hub after every settled change
// until ctx is done. The parent directory is watched so editors that replace
// the file on save are still seen. ready, when set, is called once the watch
// is registered and the file has been re-read.
func WatchFile(ctx context.Context, path string, hub *Hub, ready func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	// Edits made before the watch existed would otherwise be lost.
	reload(abs, hub)
	if ready != nil {
		ready()
	}

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.Now()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			config.DebugLog.Warnw("preview watcher error", "path", abs, "err", err)

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < watchDebounce {
				continue
			}
			pending = time.Time{}
			reload(abs, hub)
		}
	}
}

// reload publishes path when its contents differ from what hub holds.
func reload(path string, hub *Hub) {
	html, err := os.ReadFile(path)
	if err != nil {
		// Renamed away mid-save; the following Create brings it back.
		config.DebugLog.Warnw("failed to reload preview file", "path", path, "err", err)
		return
	}
	if string(html) == hub.Current() {
		return
	}
	hub.Publish(string(html))
	config.DebugLog.Debugw("preview file reloaded", "path", path, "bytes", len(html))
}
