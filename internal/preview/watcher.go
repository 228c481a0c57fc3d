package preview

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDirs are the tree subdirectories whose changes trigger a
// rebuild. The out directory is deliberately absent: watching our own
// output would loop.
var watchDirs = []string{"config", "content", "data", "templates"}

// Watch starts an fsnotify watcher over the content tree and calls
// onChange after file activity settles. Events are debounced so an
// editor's save burst produces one rebuild, not five.
//
// New directories created at runtime are added to the watch list.
func Watch(ctx context.Context, root string, logger *slog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range watchDirs {
		abs := filepath.Join(root, dir)
		if _, statErr := os.Stat(abs); statErr != nil {
			continue
		}
		if addErr := addDirsRecursive(w, abs); addErr != nil {
			return addErr
		}
	}

	logger.Info("watcher: started", slog.String("root", root))

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	scheduleRebuild := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounceTimer.C
		} else {
			debounceTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleRebuild()
					continue
				}
			}

			if !relevantFile(ev.Name) {
				continue
			}
			logger.Debug("watcher: change detected",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			scheduleRebuild()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// relevantFile reports whether a change to the file can affect the
// artifact. Hidden files and editor temp files are ignored.
func relevantFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch filepath.Ext(base) {
	case ".yaml", ".yml", ".tmpl":
		return true
	default:
		return false
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != root {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
