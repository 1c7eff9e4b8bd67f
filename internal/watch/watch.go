// Package watch keeps an indexer current with filesystem change events.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phobologic/qxtags/internal/indexer"
	"github.com/phobologic/qxtags/internal/lang"
)

// Watcher scans a set of roots and then re-indexes whatever changes below them.
type Watcher struct {
	ix       *indexer.Indexer
	roots    []string
	debounce time.Duration
	log      *slog.Logger
	fsw      *fsnotify.Watcher
}

// New creates a Watcher over ix. Roots must be absolute and clean.
// Files with syntax errors or duplicate class names are logged and skipped
// from then on, since files are routinely broken while being edited.
func New(ix *indexer.Indexer, roots []string, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{ix: ix, roots: roots, debounce: debounce, log: log, fsw: fsw}
	ix.SetFileErrorHandler(w.skipFile)
	return w, nil
}

func (w *Watcher) skipFile(path string, err error) {
	w.log.Warn("skipping file", "path", path, "err", err)
}

// Close releases the underlying OS watches.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// DirectoryAdded starts watching a newly scanned directory.
func (w *Watcher) DirectoryAdded(path string) {
	if err := w.fsw.Add(path); err != nil {
		w.log.Warn("cannot watch directory", "path", path, "err", err)
	}
}

// DirectoryRemoved drops the watch of a vanished directory. The OS usually
// drops it first, so failures are ignored.
func (w *Watcher) DirectoryRemoved(path string) {
	_ = w.fsw.Remove(path)
}

// Scan indexes every root, adding watches as directories are discovered.
func (w *Watcher) Scan() error {
	for _, root := range w.roots {
		if err := w.ix.Scan(root, w); err != nil {
			return err
		}
	}
	return nil
}

// Apply re-indexes the changed paths. Existing directories are rescanned,
// known directories that are gone are removed, source files are re-checked,
// everything else is ignored.
func (w *Watcher) Apply(paths []string) error {
	for _, path := range paths {
		if err := w.apply(path); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) apply(path string) error {
	info, err := w.ix.Fs().Stat(path)
	if err != nil && !indexer.Gone(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	isDir := err == nil && info.IsDir()

	if isDir {
		if !w.ix.Known(path) && w.ix.Excluded(path, true) {
			return nil
		}
		return w.ix.Scan(path, w)
	}
	if _, err := w.ix.Remove(path, w); err != nil {
		return err
	}

	if !lang.IsSource(path) || w.ix.Excluded(path, false) {
		return nil
	}
	return w.ix.Check(path)
}

// Run scans the roots, calls onUpdate, and then calls onUpdate again after
// every debounced batch of changes until ctx is done.
func (w *Watcher) Run(ctx context.Context, onUpdate func() error) error {
	if err := w.Scan(); err != nil {
		return err
	}
	if err := onUpdate(); err != nil {
		return err
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = map[string]bool{}

			w.log.Info("re-indexing", "paths", len(changed))
			if err := w.Apply(changed); err != nil {
				return err
			}
			if err := onUpdate(); err != nil {
				return err
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching: %w", err)
		}
	}
}
