package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/cellar/pkg/core"
)

func TestCache_Load(t *testing.T) {
	t.Run("Starts Empty if File Missing", func(t *testing.T) {
		tmpDir := t.TempDir()
		c := newCache(tmpDir, ".cellar")

		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if c.Len() != 0 {
			t.Errorf("Expected empty entries, got %d", c.Len())
		}
	})

	t.Run("Loads Valid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".cellar")
		os.MkdirAll(cacheDir, 0755)

		jsonContent := `{
			"version": 1,
			"entries": {
				"report.ipynb": {
					"info": {
						"id": "report.ipynb",
						"version": "4.5",
						"cells": 3,
						"code_cells": 2,
						"last_modified": "2024-01-01T00:00:00Z"
					},
					"lastModified": "2024-01-01T00:00:00Z"
				}
			}
		}`
		os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte(jsonContent), 0644)

		c := newCache(tmpDir, ".cellar")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		mtime, _ := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
		entry, ok := c.Get("report.ipynb", mtime)
		if !ok {
			t.Fatal("Expected entry report.ipynb not found")
		}
		if entry.Info.Cells != 3 || entry.Info.CodeCells != 2 {
			t.Errorf("Unexpected cached summary: %+v", entry.Info)
		}
	})

	t.Run("Resets on Corrupted JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".cellar")
		os.MkdirAll(cacheDir, 0755)

		os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte("{ invalid json"), 0644)

		c := newCache(tmpDir, ".cellar")
		// Should not error, but return empty
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if c.Len() != 0 {
			t.Errorf("Expected empty entries after corruption, got %d", c.Len())
		}
	})
}

func TestCache_Save(t *testing.T) {
	t.Run("Does Not Save if Not Dirty", func(t *testing.T) {
		tmpDir := t.TempDir()
		c := newCache(tmpDir, ".cellar")

		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
			t.Error("Expected index.json NOT to exist")
		}
	})

	t.Run("Saves if Dirty", func(t *testing.T) {
		tmpDir := t.TempDir()
		c := newCache(tmpDir, ".cellar")

		c.Set("nb.ipynb", &indexEntry{Info: core.Info{ID: "nb.ipynb"}})

		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if _, err := os.Stat(c.Path); os.IsNotExist(err) {
			t.Fatal("Expected index.json to exist")
		}

		if c.index.dirty {
			t.Error("Expected dirty to be false after save")
		}
	})

	t.Run("Round Trips Through Disk", func(t *testing.T) {
		tmpDir := t.TempDir()
		mtime := time.Now().Truncate(time.Second)

		c := newCache(tmpDir, ".cellar")
		c.Set("nb.ipynb", &indexEntry{
			Info:         core.Info{ID: "nb.ipynb", Version: "4.5", Cells: 2, CodeCells: 1, LastModified: mtime},
			LastModified: mtime,
		})
		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		fresh := newCache(tmpDir, ".cellar")
		if err := fresh.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		entry, ok := fresh.Get("nb.ipynb", mtime)
		if !ok {
			t.Fatal("Expected hit after reload")
		}
		if entry.Info.Version != "4.5" || entry.Info.CodeCells != 1 {
			t.Errorf("Summary changed across reload: %+v", entry.Info)
		}
	})
}

func TestCache_Get_Set(t *testing.T) {
	tmpDir := t.TempDir()
	c := newCache(tmpDir, ".cellar")

	now := time.Now().Truncate(time.Second) // Truncate for stability
	entry := &indexEntry{
		Info:         core.Info{ID: "nb.ipynb", Cells: 1},
		LastModified: now,
	}

	c.Set("nb.ipynb", entry)

	t.Run("Hit with Same Mtime", func(t *testing.T) {
		got, hit := c.Get("nb.ipynb", now)
		if !hit {
			t.Error("Expected cache hit")
		}
		if got.Info.ID != "nb.ipynb" {
			t.Errorf("Expected ID 'nb.ipynb', got '%s'", got.Info.ID)
		}
	})

	t.Run("Miss with Different Mtime", func(t *testing.T) {
		later := now.Add(1 * time.Hour)
		_, hit := c.Get("nb.ipynb", later)
		if hit {
			t.Error("Expected cache miss due to mtime mismatch")
		}
	})

	t.Run("Miss with Missing Key", func(t *testing.T) {
		_, hit := c.Get("ghost.ipynb", now)
		if hit {
			t.Error("Expected cache miss for missing key")
		}
	})
}

func TestCache_Prune(t *testing.T) {
	tmpDir := t.TempDir()
	c := newCache(tmpDir, ".cellar")

	c.Set("keep.ipynb", &indexEntry{Info: core.Info{ID: "keep.ipynb"}})
	c.Set("drop.ipynb", &indexEntry{Info: core.Info{ID: "drop.ipynb"}})

	// Reset dirty manually to test if Prune sets it
	c.index.dirty = false

	keep := map[string]bool{
		"keep.ipynb": true,
	}

	c.Prune(keep)

	if _, ok := c.index.Entries["keep.ipynb"]; !ok {
		t.Error("Expected keep.ipynb to remain")
	}
	if _, ok := c.index.Entries["drop.ipynb"]; ok {
		t.Error("Expected drop.ipynb to be removed")
	}

	if !c.index.dirty {
		t.Error("Expected dirty to be true after pruning")
	}
}
