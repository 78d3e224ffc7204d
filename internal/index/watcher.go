package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/mad/internal/paths"
)

// DefaultDebounce is how long the watcher waits for further changes before
// rebuilding the caches.
const DefaultDebounce = 300 * time.Millisecond

// RebuildCallback is called after each watcher-driven rebuild with the
// vault-relative notes that triggered it and the rebuild error, if any.
type RebuildCallback func(changed []string, err error)

// Watch starts an fsnotify watcher on the vault root and rebuilds every
// cache once a burst of .md changes settles, until ctx is cancelled.
//
// Hidden directories (including the backup directory) are not watched.
// New directories created at runtime are added to the watch list.
func Watch(ctx context.Context, cache *Cache, vaultRoot string, debounce time.Duration, logger *slog.Logger, cb RebuildCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	var timer *time.Timer
	var timerCh <-chan time.Time
	pending := make(map[string]struct{})

	schedule := func(rel string) {
		pending[rel] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			timer, timerCh = nil, nil

			rebuildErr := cache.Rebuild(KindAll)
			if rebuildErr != nil {
				logger.Warn("watcher: rebuild failed", slog.String("error", rebuildErr.Error()))
			}
			if cb != nil {
				cb(changed, rebuildErr)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if paths.IsHidden(info.Name()) {
						continue
					}
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// A moved-in directory may already hold notes.
					schedule(relTo(vaultRoot, absPath))
					continue
				}
			}

			// Directory removals and renames also affect the caches.
			if !strings.HasSuffix(absPath, ".md") && ev.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", absPath), slog.String("op", ev.Op.String()))
			schedule(relTo(vaultRoot, absPath))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func relTo(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && paths.IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
