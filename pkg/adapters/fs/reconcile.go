package fs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/cellar/pkg/core"
)

// Reconcile diffs the persisted listing index against the workspace tree
// and returns one event per drifted file: CREATE for files the index has
// never seen, MODIFY for files whose mtime moved, DELETE for indexed
// files that are gone. The index is updated to match the tree, so a
// second call right after reports nothing.
//
// This is how changes made while no watcher was running become visible.
func (r *Repository) Reconcile(ctx context.Context) ([]core.Event, error) {
	if err := r.cache.Load(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("listing cache unavailable, reconciling cold", "error", err)
	}
	known := r.cache.Snapshot()

	var events []core.Event
	seen := make(map[string]bool)
	now := time.Now().Unix()

	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != r.Path && (d.Name() == r.config.SystemDir || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := r.serializers[filepath.Ext(d.Name())]; !ok {
			return nil
		}
		if strings.HasPrefix(d.Name(), TempFilePrefix) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtime := info.ModTime()
		seen[relPath] = true

		prev, indexed := known[relPath]
		if indexed && prev.Equal(mtime) {
			return nil
		}

		nb, err := r.Get(ctx, relPath)
		if err != nil {
			// A broken file should not fail the whole reconciliation.
			if r.config.Logger != nil {
				r.config.Logger.Warn("skipping unparseable notebook", "id", relPath, "error", err)
			}
			return nil
		}
		r.cache.Set(relPath, &indexEntry{Info: core.Summarize(relPath, nb, mtime), LastModified: mtime})

		eType := core.EventCreate
		if indexed {
			eType = core.EventModify
		}
		events = append(events, core.Event{Type: eType, ID: relPath, Timestamp: now})
		return nil
	})
	if err != nil {
		return nil, err
	}

	var removed []string
	for relPath := range known {
		if !seen[relPath] {
			removed = append(removed, relPath)
		}
	}
	sort.Strings(removed)
	for _, relPath := range removed {
		r.cache.Delete(relPath)
		events = append(events, core.Event{Type: core.EventDelete, ID: relPath, Timestamp: now})
	}

	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil && r.config.Logger != nil {
			r.config.Logger.Debug("failed to persist listing cache", "error", err)
		}
	}

	r.recordReconcile()
	return events, nil
}
