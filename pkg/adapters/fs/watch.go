package fs

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/cellar/pkg/core"
)

// Watch emits an event for every notebook change under the workspace whose
// id matches pattern (doublestar syntax, e.g. "**/*.ipynb"; empty matches
// everything). The returned channel is closed when ctx is cancelled and the
// worker has drained.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	events := make(chan core.Event, r.config.EventBuffer)
	worker := newWatchWorker(r, pattern, events)
	if err := worker.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// recursiveAdd registers the workspace directory tree with the watcher.
// Hidden directories and the system directory stay out; their contents are
// never notebooks.
func (r *Repository) recursiveAdd(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(r.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != r.Path && (d.Name() == r.config.SystemDir || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// shouldIgnore filters watcher noise: temp files from atomic writes,
// hidden files, the system directory, unknown extensions, and ids outside
// the subscription pattern.
func (r *Repository) shouldIgnore(event fsnotify.Event, pattern string) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) || strings.HasPrefix(name, ".") {
		return true
	}

	rel, err := filepath.Rel(r.Path, event.Name)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	if rel == r.config.SystemDir || strings.HasPrefix(rel, r.config.SystemDir+"/") {
		return true
	}

	if _, ok := r.serializers[filepath.Ext(name)]; !ok {
		return true
	}

	if pattern != "" {
		match, err := doublestar.Match(pattern, rel)
		if err != nil || !match {
			return true
		}
	}
	return false
}

// mapEventType translates fsnotify operations into workspace events.
// Renames count as deletes: the new name produces its own Create.
func (r *Repository) mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

// resolveID maps an absolute event path back to a notebook id.
func (r *Repository) resolveID(path string) (string, error) {
	rel, err := filepath.Rel(r.Path, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
