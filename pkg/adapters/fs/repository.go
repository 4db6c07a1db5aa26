package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/cellar/pkg/core"
)

// probeExtensions is the order in which extensionless ids are resolved
// against the workspace.
var probeExtensions = []string{".ipynb", ".py"}

// Repository implements core.Repository over a directory of notebook files.
// Ids are workspace-relative paths including the extension; the extension
// picks the serializer.
type Repository struct {
	Path        string
	config      Config
	serializers map[string]Serializer
	cache       *cache

	mu            sync.RWMutex
	watcherActive bool
	lastReconcile *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path        string
	MustExist   bool
	ReadOnly    bool
	Version     string // nbformat version assumed for percent scripts
	SystemDir   string // e.g. ".cellar"
	EventBuffer int    // watch channel capacity
	Logger      *slog.Logger
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".cellar"
	}
	if config.Version == "" {
		config.Version = core.DefaultVersion
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 16
	}

	serializers := DefaultSerializers(config.Version)
	if s, ok := serializers[".ipynb"].(*IpynbSerializer); ok {
		s.Logger = config.Logger
	}

	return &Repository{
		Path:        config.Path,
		config:      config,
		serializers: serializers,
		cache:       newCache(config.Path, config.SystemDir),
	}
}

// RegisterSerializer installs a serializer for the given extension,
// replacing any default. Must be called before the repository is shared
// across goroutines.
func (r *Repository) RegisterSerializer(ext string, s Serializer) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.serializers[ext] = s
}

// Initialize performs the necessary setup for the repository (mkdir).
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("workspace path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("workspace path is not a directory: %s", r.Path)
		}
		return nil
	}
	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return nil
}

// Save persists a notebook to the workspace.
//
// Workflow:
//  1. Resolve the filename: the id's extension picks the serializer,
//     an extensionless id defaults to .ipynb.
//  2. Create parent directories.
//  3. Serialize and write atomically to disk.
//  4. Reindex the listing cache entry with the written file's mtime.
func (r *Repository) Save(ctx context.Context, id string, nb core.Notebook) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if id == "" {
		return fmt.Errorf("notebook has no ID")
	}

	filename := id
	ext := filepath.Ext(id)
	if ext == "" {
		ext = ".ipynb"
		filename = id + ext
	}

	serializer, ok := r.serializers[ext]
	if !ok {
		return fmt.Errorf("no serializer registered for %q", ext)
	}

	fullPath := filepath.Join(r.Path, filename)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := serializer.Serialize(nb)
	if err != nil {
		return fmt.Errorf("failed to serialize notebook: %w", err)
	}

	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	// Index with the real mtime so List and Reconcile treat this write as
	// already seen.
	if err := r.cache.ensureLoaded(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("listing cache unavailable, reindexing cold", "error", err)
	}
	key := filepath.ToSlash(filename)
	if info, err := os.Stat(fullPath); err == nil {
		mtime := info.ModTime()
		r.cache.Set(key, &indexEntry{Info: core.Summarize(key, nb, mtime), LastModified: mtime})
	} else {
		r.cache.Delete(key)
	}
	if err := r.cache.Save(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("failed to persist listing cache", "error", err)
	}
	return nil
}

// Get retrieves a notebook from the workspace.
//
// Workflow:
//  1. Resolve the file: an id with an extension maps directly, an
//     extensionless id probes .ipynb then .py.
//  2. Parse with the serializer matching the extension.
func (r *Repository) Get(ctx context.Context, id string) (core.Notebook, error) {
	filename, ext, err := r.resolveFile(id)
	if err != nil {
		return core.Notebook{}, err
	}

	serializer, ok := r.serializers[ext]
	if !ok {
		return core.Notebook{}, fmt.Errorf("no serializer registered for %q", ext)
	}

	f, err := os.Open(filepath.Join(r.Path, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return core.Notebook{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return core.Notebook{}, err
	}
	defer f.Close()

	nb, err := serializer.Parse(f)
	if err != nil {
		return core.Notebook{}, fmt.Errorf("failed to parse notebook %s: %w", id, err)
	}
	return nb, nil
}

// resolveFile maps an id onto a workspace file, probing the known
// extensions when the id does not carry one.
func (r *Repository) resolveFile(id string) (filename, ext string, err error) {
	if id == "" {
		return "", "", fmt.Errorf("notebook has no ID")
	}
	if ext := filepath.Ext(id); ext != "" {
		return id, ext, nil
	}
	for _, candidate := range probeExtensions {
		if _, err := os.Stat(filepath.Join(r.Path, id+candidate)); err == nil {
			return id + candidate, candidate, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", core.ErrNotFound, id)
}

// List scans the workspace for all notebooks.
//
// Strategy:
//  1. Load the listing cache (metadata index) from disk.
//  2. Walk the directory tree, skipping hidden and system dirs.
//  3. For each notebook file:
//     a. Cache hit (same mtime): reuse the indexed summary (FAST).
//     b. Cache miss: full parse, then reindex.
//  4. Prune stale entries and save the cache back to disk.
func (r *Repository) List(ctx context.Context) ([]core.Info, error) {
	var infos []core.Info

	if err := r.cache.Load(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("listing cache unavailable, rebuilding", "error", err)
	}
	seen := make(map[string]bool)

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

		if entry, hit := r.cache.Get(relPath, mtime); hit {
			infos = append(infos, entry.Info)
			return nil
		}

		nb, err := r.Get(ctx, relPath)
		if err != nil {
			// A broken file should not fail the whole listing.
			if r.config.Logger != nil {
				r.config.Logger.Warn("skipping unparseable notebook", "id", relPath, "error", err)
			}
			return nil
		}

		summary := core.Summarize(relPath, nb, mtime)
		r.cache.Set(relPath, &indexEntry{Info: summary, LastModified: mtime})
		infos = append(infos, summary)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.cache.Prune(seen)
	// The index never hits disk in read-only mode.
	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil && r.config.Logger != nil {
			r.config.Logger.Debug("failed to persist listing cache", "error", err)
		}
	}

	return infos, nil
}

// Begin opens a transaction that stages changes in memory until Commit.
func (r *Repository) Begin(ctx context.Context) (*Transaction, error) {
	if r.config.ReadOnly {
		return nil, core.ErrReadOnly
	}
	return NewTransaction(r), nil
}

// Delete removes a notebook from the workspace.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	filename, _, err := r.resolveFile(id)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(r.Path, filename)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	if err := r.cache.ensureLoaded(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("listing cache unavailable, reindexing cold", "error", err)
	}
	r.cache.Delete(filepath.ToSlash(filename))
	if err := r.cache.Save(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("failed to persist listing cache", "error", err)
	}
	return nil
}
