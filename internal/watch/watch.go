// Package watch clears cached pages when their files change on disk, so edits made outside the
// admin pipeline show up without a restart.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// CacheClearer drops the cached entries of one page.
type CacheClearer interface {
	ClearPageCache(pageID string)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher follows a content directory tree.
type Watcher struct {
	root    string
	target  CacheClearer
	logger  interfaces.Logger
	watcher *fsnotify.Watcher
}

// New registers root and every directory below it.
func New(root string, target CacheClearer, opts ...Option) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("watch: cache target is required")
	}
	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:    root,
		target:  target,
		logger:  logging.NoOp(),
		watcher: inner,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if err := w.addTree(root); err != nil {
		inner.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Run dispatches file events until ctx is done, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("content watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if event.Has(fsnotify.Create) && isDir(event.Name) {
		if err := w.addTree(event.Name); err != nil {
			w.logger.Warn("content watcher could not follow directory", "path", event.Name, "error", err)
		}
		return
	}
	pageID, ok := PageIDFromPath(event.Name)
	if !ok {
		return
	}
	w.target.ClearPageCache(pageID)
	w.logger.Debug("page cache cleared after file change", "page_id", pageID, "op", event.Op.String())
}

// PageIDFromPath maps a content file such as es/pages/home.json to its page id.
func PageIDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), ".json") {
		return "", false
	}
	pageID := strings.TrimSuffix(base, filepath.Ext(base))
	if !content.IsValidPageID(pageID) {
		return "", false
	}
	return pageID, true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
