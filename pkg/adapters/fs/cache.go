package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/cellar/pkg/core"
)

// indexEntry is the cached summary for a single notebook file.
// LastModified is the file mtime the summary was computed from; a
// different mtime on disk invalidates the entry.
type indexEntry struct {
	Info         core.Info `json:"info"`
	LastModified time.Time `json:"lastModified"`
}

// index is the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // keyed by relative path (e.g. "analysis/report.ipynb")
	dirty   bool
	loaded  bool
	mu      sync.RWMutex
}

// cache manages the loading, updating, and saving of the listing index.
// It exists so that List on a large workspace does not reparse every
// notebook on every call.
type cache struct {
	Path  string // {workspace}/{systemDir}/index.json
	index *index
}

// newCache initializes a cache under the workspace system directory.
func newCache(workspacePath, systemDir string) *cache {
	return &cache{
		Path: filepath.Join(workspacePath, systemDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk, replacing the in-memory entries. A
// missing or corrupted file is not an error: the index starts empty and
// self-heals on the next Save.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	c.index.loaded = true

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	c.index.Entries = make(map[string]*indexEntry)
	if err := json.Unmarshal(data, c.index); err != nil {
		c.index.Entries = make(map[string]*indexEntry)
		return nil
	}

	c.index.dirty = false
	return nil
}

// ensureLoaded pulls the on-disk index into memory once per cache
// lifetime. Writers must call it before their first Set or Delete, or a
// cold instance would persist an index holding nothing but its own entry.
func (c *cache) ensureLoaded() error {
	c.index.mu.RLock()
	loaded := c.index.loaded
	c.index.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Load()
}

// Save persists the cache to disk if it is dirty.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}

	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()

	return nil
}

// Get retrieves an entry if it exists and its mtime still matches.
func (c *cache) Get(relPath string, currentMtime time.Time) (*indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[relPath]
	if !ok {
		return nil, false
	}
	if !entry.LastModified.Equal(currentMtime) {
		return nil, false
	}
	return entry, true
}

// Set updates an entry in the cache.
func (c *cache) Set(relPath string, entry *indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries[relPath] = entry
	c.index.dirty = true
}

// Delete removes a single entry from the cache.
func (c *cache) Delete(relPath string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	if _, ok := c.index.Entries[relPath]; ok {
		delete(c.index.Entries, relPath)
		c.index.dirty = true
	}
}

// Prune removes entries that are not in the 'keep' set.
func (c *cache) Prune(keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	for path := range c.index.Entries {
		if !keep[path] {
			delete(c.index.Entries, path)
			c.index.dirty = true
		}
	}
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}

// Snapshot returns the mtime every indexed path was last seen with.
func (c *cache) Snapshot() map[string]time.Time {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	seen := make(map[string]time.Time, len(c.index.Entries))
	for path, entry := range c.index.Entries {
		seen[path] = entry.LastModified
	}
	return seen
}
