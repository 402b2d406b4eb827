// Package watch turns files dropped into inbox directories into callbacks.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config describes what to watch.
type Config struct {
	Dirs        []string      // Watched recursively.
	Debounce    time.Duration // Quiet period before a burst of events is delivered.
	InitialScan bool          // Deliver files already present at startup.
	Accept      func(path string) bool
}

// Run watches cfg.Dirs until ctx is done, calling handle once per settled
// file. Events for the same path within the debounce window are coalesced.
// handle is called from Run's goroutine.
func Run(ctx context.Context, cfg Config, log *slog.Logger, handle func(path string)) error {
	if len(cfg.Dirs) == 0 {
		return errors.New("watch: no directories configured")
	}
	if cfg.Accept == nil {
		cfg.Accept = func(string) bool { return true }
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	var existing []string
	for _, root := range cfg.Dirs {
		err := addTree(w, root, func(path string) {
			if cfg.InitialScan && cfg.Accept(path) {
				existing = append(existing, path)
			}
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}
	log.Info("watching directories", "dirs", cfg.Dirs, "debounce", cfg.Debounce)
	for _, path := range existing {
		handle(path)
	}

	pending := map[string]struct{}{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	flush := func() {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		clear(pending)
		slices.Sort(paths)
		for _, p := range paths {
			handle(p)
		}
	}

	schedule := func() {
		if cfg.Debounce <= 0 {
			flush()
			return
		}
		timer.Reset(cfg.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Rename carries the old name of a file that has gone; its new
			// name arrives as a Create if it stays under a watched directory.
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					// Files may land in the directory before its watch exists.
					err := addTree(w, ev.Name, func(path string) {
						if cfg.Accept(path) {
							pending[path] = struct{}{}
						}
					})
					if err != nil {
						log.Warn("watch new directory", "path", ev.Name, "error", err)
					}
					if len(pending) > 0 {
						schedule()
					}
					continue
				}
			}
			if !cfg.Accept(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			schedule()
		case <-timer.C:
			flush()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "error", err)
		}
	}
}

// addTree watches root and every directory beneath it. Only directories are
// added to w; regular files are passed to onFile.
func addTree(w *fsnotify.Watcher, root string, onFile func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if d.Type().IsRegular() {
			onFile(path)
		}
		return nil
	})
}
