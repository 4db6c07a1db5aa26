package cellar

import (
	"log/slog"

	"github.com/aretw0/cellar/internal/platform"
	"github.com/aretw0/cellar/pkg/core"
	"github.com/aretw0/cellar/pkg/percent"
	"github.com/aretw0/cellar/pkg/render"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Notebook is a public alias for the core notebook document.
type Notebook = core.Notebook

// Cell is a public alias for the core cell.
type Cell = core.Cell

// CellType discriminates code cells from markdown cells.
type CellType = core.CellType

// Raw is the generic key-value representation of a notebook, the shape
// produced by decoding a .ipynb container.
type Raw = core.Raw

// Info is a lightweight listing entry for a notebook.
type Info = core.Info

// Event represents a change to a notebook in a watched workspace.
type Event = core.Event

// EventType classifies a workspace change.
type EventType = core.EventType

const (
	// CellCode and CellMarkdown are the two recognized cell types.
	CellCode     = core.CellCode
	CellMarkdown = core.CellMarkdown

	// NotExecuted marks a code cell with no recorded execution count.
	NotExecuted = core.NotExecuted

	// DefaultVersion is the nbformat version minted for new notebooks.
	DefaultVersion = core.DefaultVersion

	// EventCreate, EventModify and EventDelete classify workspace changes.
	EventCreate = core.EventCreate
	EventModify = core.EventModify
	EventDelete = core.EventDelete
)

// Sentinel errors surfaced by repository operations.
var (
	ErrNotFound = core.ErrNotFound
	ErrReadOnly = core.ErrReadOnly
)

// --- Configuration ---

// Option defines a functional option for configuring the toolbox.
type Option = platform.Option

// WithVersion sets the nbformat version assumed for formats that do not
// carry one themselves (e.g. percent scripts without a header).
func WithVersion(version string) Option {
	return platform.WithVersion(version)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the workspace directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter allows specifying the storage adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".cellar").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithEventBuffer allows specifying the capacity of the watch event channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithSerializer registers a custom serializer for a specific extension.
func WithSerializer(ext string, s any) Option {
	return platform.WithSerializer(ext, s)
}

// WithDevSafety controls the sandbox mechanism for `go run` sessions.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a new notebook Service over the workspace at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// --- Cells & Notebooks ---

// NewCodeCell builds a code cell with the given execution count.
func NewCodeCell(id string, source []string, executionCount int) Cell {
	return core.NewCodeCell(id, source, executionCount)
}

// NewMarkdownCell builds a markdown cell.
func NewMarkdownCell(id string, source []string) Cell {
	return core.NewMarkdownCell(id, source)
}

// NewNotebook builds a notebook from cells.
func NewNotebook(version string, cells []Cell) Notebook {
	return core.NewNotebook(version, cells)
}

// --- Structural Loading ---

// FromRaw builds a notebook from its generic key-value representation.
func FromRaw(raw Raw) (Notebook, error) {
	return core.FromRaw(raw)
}

// ToRaw converts a notebook back to the generic representation.
func ToRaw(nb Notebook) (Raw, error) {
	return core.ToRaw(nb)
}

// --- Text Formats ---

// ParsePercent reads a py-percent script into a notebook.
func ParsePercent(data []byte) (Notebook, error) {
	return percent.Parse(data)
}

// SerializePercent renders a notebook as a py-percent script.
func SerializePercent(nb Notebook) ([]byte, error) {
	return percent.Serialize(nb)
}

// --- Views & Transforms ---

// Outline renders a plain-text tree view of the notebook.
func Outline(nb Notebook) string {
	return core.Outline(nb)
}

// RenderHTML renders the notebook as a standalone HTML page.
func RenderHTML(nb Notebook) ([]byte, error) {
	return render.HTML(nb)
}

// RenderMarkdown flattens the notebook into a single Markdown document.
func RenderMarkdown(nb Notebook) []byte {
	return render.Markdown(nb)
}

// StripMarkdown returns a copy of the notebook without markdown cells.
func StripMarkdown(nb Notebook) Notebook {
	return core.StripMarkdown(nb)
}

// Markdownize converts code cells into fenced markdown cells.
func Markdownize(nb Notebook) Notebook {
	return core.Markdownize(nb)
}

// Normalize fills in missing or duplicate cell ids.
func Normalize(nb Notebook) Notebook {
	return core.Normalize(nb)
}

// --- Safety & Utils ---

// ResolveWorkspacePath determines the actual workspace path based on
// safety rules.
func ResolveWorkspacePath(userPath string, forceTemp bool) string {
	return platform.ResolveWorkspacePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindWorkspaceRoot recursively looks upwards for a workspace root indicator.
func FindWorkspaceRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
