package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/partitura/internal/musicxml"
	"github.com/starford/partitura/internal/storage"
)

const (
	// changeDelay coalesces the bursts of Write events editors and
	// exporters produce while saving one file.
	changeDelay    = 100 * time.Millisecond
	reconcileDelay = 200 * time.Millisecond
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// debouncer is a restartable timer whose channel is nil until first use.
type debouncer struct {
	delay time.Duration
	timer *time.Timer
	C     <-chan time.Time
}

func (d *debouncer) schedule() {
	if d.timer == nil {
		d.timer = time.NewTimer(d.delay)
		d.C = d.timer.C
		return
	}
	d.timer.Reset(d.delay)
}

func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
}

type watcher struct {
	fsw    *fsnotify.Watcher
	db     *DB
	store  storage.Provider
	im     *musicxml.Importer
	root   string
	logger *slog.Logger
	cb     EventCallback

	pending   map[string]struct{}
	changes   debouncer
	reconcile debouncer
}

// Watch re-imports score files under root as they change until ctx is
// cancelled, calling cb (if non-nil) after each index mutation.
//
// Directories created at runtime are watched too. fsnotify reports a rename
// only for the old name, so renames schedule a full reconciliation against
// the disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, im *musicxml.Importer, root string, logger *slog.Logger, cb EventCallback) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addDirsRecursive(fsw, root); err != nil {
		return err
	}

	w := &watcher{
		fsw:       fsw,
		db:        db,
		store:     store,
		im:        im,
		root:      root,
		logger:    logger,
		cb:        cb,
		pending:   make(map[string]struct{}),
		changes:   debouncer{delay: changeDelay},
		reconcile: debouncer{delay: reconcileDelay},
	}
	defer w.changes.stop()
	defer w.reconcile.stop()

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-w.changes.C:
			w.flush()

		case <-w.reconcile.C:
			if err := syncLibrary(db, store, im, logger, cb); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *watcher) notify(kind, rel string) {
	if w.cb != nil {
		w.cb(kind, rel)
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.watchDir(ev.Name)
			return
		}
	}
	if !storage.IsScoreFile(ev.Name) {
		return
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		w.pending[rel] = struct{}{}
		w.changes.schedule()

	case ev.Has(fsnotify.Remove):
		delete(w.pending, rel)
		w.remove(rel)

	case ev.Has(fsnotify.Rename):
		delete(w.pending, rel)
		w.remove(rel)
		w.reconcile.schedule()
	}
}

// watchDir adds a new directory tree and queues the score files it already
// holds, since their Create events happened before the watch existed.
func (w *watcher) watchDir(dir string) {
	if isHidden(dir) {
		return
	}
	if err := addDirsRecursive(w.fsw, dir); err != nil {
		w.logger.Warn("watcher: add new dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: watching new dir", slog.String("path", dir))
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsScoreFile(p) {
			return nil
		}
		if rel, relErr := filepath.Rel(w.root, p); relErr == nil {
			w.pending[filepath.ToSlash(rel)] = struct{}{}
		}
		return nil
	})
	if len(w.pending) > 0 {
		w.changes.schedule()
	}
}

func (w *watcher) flush() {
	for rel := range w.pending {
		w.refresh(rel)
	}
	clear(w.pending)
}

// refresh re-imports rel if its content differs from the indexed checksum.
func (w *watcher) refresh(rel string) {
	sf, err := w.store.Stat(rel)
	if errors.Is(err, os.ErrNotExist) {
		w.remove(rel)
		return
	}
	if err != nil {
		w.logger.Warn("watcher: stat failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	prev, err := w.db.GetChecksum(rel)
	if err != nil {
		w.logger.Warn("watcher: checksum lookup failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if prev == sf.Checksum {
		return
	}
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := IndexFile(w.db, w.im, rel, data); err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	kind := "updated"
	if prev == "" {
		kind = "created"
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	w.notify(kind, rel)
}

func (w *watcher) remove(rel string) {
	prev, err := w.db.GetChecksum(rel)
	if err != nil || prev == "" {
		return
	}
	if err := w.db.DeleteScore(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.notify("deleted", rel)
}

func isHidden(dir string) bool {
	return strings.HasPrefix(filepath.Base(dir), ".")
}

// addDirsRecursive watches root and every non-hidden directory below it.
func addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && isHidden(p) {
			return filepath.SkipDir
		}
		return fsw.Add(p)
	})
}
