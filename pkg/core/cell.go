package core

// CellType discriminates the closed set of cell variants.
type CellType string

const (
	// CellCode marks an executable code cell.
	CellCode CellType = "code"
	// CellMarkdown marks a prose cell.
	CellMarkdown CellType = "markdown"
)

// NotExecuted is the ExecutionCount sentinel for code cells that have never
// run. Jupyter execution counts start at 1, so zero is free to carry that
// meaning; the container format serializes it as null.
const NotExecuted = 0

// Cell is an atomic unit of a notebook: either markdown prose or code.
// It is a tagged union over Type. Components switch on the tag exhaustively
// instead of dispatching through an interface, so adding a variant breaks
// loudly everywhere it matters.
type Cell struct {
	ID     string
	Type   CellType
	Source []string // terminator-free lines, joined with "\n" on output

	// ExecutionCount is meaningful for code cells only.
	ExecutionCount int
}

// NewCodeCell builds a code cell.
func NewCodeCell(id string, source []string, executionCount int) Cell {
	return Cell{ID: id, Type: CellCode, Source: source, ExecutionCount: executionCount}
}

// NewMarkdownCell builds a markdown cell.
func NewMarkdownCell(id string, source []string) Cell {
	return Cell{ID: id, Type: CellMarkdown, Source: source}
}

// Executed reports whether the cell is a code cell that has run at least once.
func (c Cell) Executed() bool {
	return c.Type == CellCode && c.ExecutionCount != NotExecuted
}

// Clone returns a deep copy of the cell.
func (c Cell) Clone() Cell {
	dup := c
	dup.Source = append([]string(nil), c.Source...)
	return dup
}
