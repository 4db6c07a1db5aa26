package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/cellar/pkg/core"
)

// Transaction batches notebook writes and deletes in memory until Commit
// applies them to the workspace in one pass with a single index flush.
// Each file write is atomic; the batch as a whole is not, a failing write
// leaves earlier writes in place.
type Transaction struct {
	repo    *Repository
	staged  map[string]core.Notebook
	deleted map[string]bool
	mu      sync.Mutex
	closed  bool
}

// NewTransaction creates a transaction over the repository.
func NewTransaction(repo *Repository) *Transaction {
	return &Transaction{
		repo:    repo,
		staged:  make(map[string]core.Notebook),
		deleted: make(map[string]bool),
	}
}

// Save stages a notebook for writing.
func (t *Transaction) Save(ctx context.Context, id string, nb core.Notebook) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}
	if id == "" {
		return fmt.Errorf("notebook has no ID")
	}

	t.staged[id] = nb
	delete(t.deleted, id)
	return nil
}

// Get retrieves a notebook, favoring staged changes over the workspace.
func (t *Transaction) Get(ctx context.Context, id string) (core.Notebook, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return core.Notebook{}, fmt.Errorf("transaction closed")
	}

	if t.deleted[id] {
		return core.Notebook{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	if nb, ok := t.staged[id]; ok {
		return nb, nil
	}
	return t.repo.Get(ctx, id)
}

// Delete stages a notebook for removal.
func (t *Transaction) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}

	t.deleted[id] = true
	delete(t.staged, id)
	return nil
}

// Commit applies all staged changes to the workspace.
//
// Workflow:
//  1. Write every staged notebook through its serializer, atomically.
//  2. Remove every notebook staged for deletion.
//  3. Flush the listing index to disk once.
func (t *Transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction already closed")
	}
	if t.repo.config.ReadOnly {
		return core.ErrReadOnly
	}

	if err := t.repo.cache.ensureLoaded(); err != nil && t.repo.config.Logger != nil {
		t.repo.config.Logger.Debug("listing cache unavailable, reindexing cold", "error", err)
	}

	for id, nb := range t.staged {
		filename := id
		ext := filepath.Ext(id)
		if ext == "" {
			ext = ".ipynb"
			filename = id + ext
		}

		serializer, ok := t.repo.serializers[ext]
		if !ok {
			return fmt.Errorf("no serializer registered for %q", ext)
		}

		fullPath := filepath.Join(t.repo.Path, filename)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fmt.Errorf("failed to create directories for %s: %w", id, err)
		}

		data, err := serializer.Serialize(nb)
		if err != nil {
			return fmt.Errorf("failed to serialize notebook %s: %w", id, err)
		}
		if err := writeFileAtomic(fullPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", id, err)
		}

		// Index with the real mtime so the next List reuses the entry
		// without reparsing.
		key := filepath.ToSlash(filename)
		if info, err := os.Stat(fullPath); err == nil {
			mtime := info.ModTime()
			t.repo.cache.Set(key, &indexEntry{Info: core.Summarize(key, nb, mtime), LastModified: mtime})
		} else {
			t.repo.cache.Delete(key)
		}
	}

	for id := range t.deleted {
		filename, _, err := t.repo.resolveFile(id)
		if err != nil {
			continue // already gone
		}

		fullPath := filepath.Join(t.repo.Path, filename)
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove file %s: %w", id, err)
		}
		t.repo.cache.Delete(filepath.ToSlash(filename))
	}

	if err := t.repo.cache.Save(); err != nil && t.repo.config.Logger != nil {
		t.repo.config.Logger.Debug("failed to persist listing cache", "error", err)
	}

	t.closed = true
	return nil
}

// Rollback discards all staged changes.
func (t *Transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.staged = nil
	t.deleted = nil
	t.closed = true
	return nil
}
