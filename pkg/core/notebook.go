package core

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultVersion is the nbformat version assumed when a source format
// cannot encode one (py-percent scripts, for example).
const DefaultVersion = "4.5"

// Notebook is the central entity of the domain: an ordered sequence of
// cells plus the nbformat version tag ("major.minor"). It is treated as a
// value; transforms return new instances instead of mutating in place.
type Notebook struct {
	Version string
	Cells   []Cell
}

// NewNotebook builds a notebook from a version tag and cells.
func NewNotebook(version string, cells []Cell) Notebook {
	return Notebook{Version: version, Cells: cells}
}

// Len returns the number of cells.
func (n Notebook) Len() int { return len(n.Cells) }

// Clone returns a deep copy of the notebook.
func (n Notebook) Clone() Notebook {
	cells := make([]Cell, len(n.Cells))
	for i, c := range n.Cells {
		cells[i] = c.Clone()
	}
	return Notebook{Version: n.Version, Cells: cells}
}

// Validate checks the structural invariants: a well-formed version tag, a
// non-empty id on every cell, and only known cell types.
func (n Notebook) Validate() error {
	if _, _, err := SplitVersion(n.Version); err != nil {
		return err
	}
	for i, c := range n.Cells {
		if c.ID == "" {
			return fmt.Errorf("cell %d has no ID", i)
		}
		switch c.Type {
		case CellCode, CellMarkdown:
		default:
			return fmt.Errorf("cell %d has unknown type %q", i, c.Type)
		}
	}
	return nil
}

// SplitVersion parses a "major.minor" version tag into its components.
// Both parts must be non-negative integers.
func SplitVersion(version string) (major, minor int, err error) {
	parts := strings.Split(version, ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	return major, minor, nil
}
