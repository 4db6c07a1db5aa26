package core

import (
	"context"
	"fmt"
	"time"
)

// Repository defines the contract for storing and retrieving notebooks.
// Adhering to this interface allows the core to be independent of the
// container format and the underlying storage mechanism (filesystem today,
// anything else tomorrow).
type Repository interface {
	// Save persists a notebook under the given id. It creates if not
	// exists, or overwrites if it does.
	Save(ctx context.Context, id string, nb Notebook) error

	// Get retrieves a notebook by its id.
	Get(ctx context.Context, id string) (Notebook, error)

	// List returns summaries of all notebooks in the workspace.
	List(ctx context.Context) ([]Info, error)

	// Delete removes a notebook by its id.
	Delete(ctx context.Context, id string) error

	// Initialize ensures the underlying storage is ready (e.g., create
	// the workspace directory).
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for repositories that can report changes
// to their contents as they happen.
type Watchable interface {
	// Watch emits an event for every notebook change matching pattern.
	// The channel closes when ctx is cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Reconcilable defines an interface for repositories that can detect
// changes made behind their back, by diffing their index against the
// backing store.
type Reconcilable interface {
	// Reconcile returns one event per file that changed since the index
	// last saw the store, and brings the index up to date.
	Reconcile(ctx context.Context) ([]Event, error)
}

// Info is a lightweight listing entry for a notebook. Listings never load
// full cell sources; this is what adapters index and cache.
type Info struct {
	ID           string    `json:"id"`
	Version      string    `json:"version"`
	Cells        int       `json:"cells"`
	CodeCells    int       `json:"code_cells"`
	LastModified time.Time `json:"last_modified"`
}

// Summarize builds the listing entry for a notebook.
func Summarize(id string, nb Notebook, modified time.Time) Info {
	info := Info{ID: id, Version: nb.Version, Cells: len(nb.Cells), LastModified: modified}
	for _, c := range nb.Cells {
		if c.Type == CellCode {
			info.CodeCells++
		}
	}
	return info
}

// EventType represents the type of change in a watched workspace.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a notebook in a watched workspace.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String renders the event for logs and event streams.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
