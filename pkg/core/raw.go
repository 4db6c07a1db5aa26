package core

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Raw is the generic key-value representation of a notebook container.
// It is what a persistence adapter hands over after decoding an .ipynb
// file, and what it receives back for writing. The core never touches the
// container encoding itself.
type Raw = map[string]any

// Loader builds notebooks from the generic container representation.
// A nil Logger silences drop reporting.
type Loader struct {
	Logger *slog.Logger
}

// FromRaw builds a Notebook from the generic representation using a
// default Loader.
func FromRaw(raw Raw) (Notebook, error) {
	return Loader{}.Load(raw)
}

// Load converts the generic representation into a Notebook.
//
// Workflow:
//  1. Read the nbformat/nbformat_minor pair into the version tag.
//  2. Walk the cells list, requiring cell_type, id and source on each.
//  3. Code cells additionally require the execution_count key; a null
//     value means the cell never ran.
//
// Cells whose cell_type is neither "code" nor "markdown" are dropped and
// logged at Warn. The toolbox models exactly those two variants, and
// passing unknown cells through untouched would break the round-trip
// guarantees of every serializer downstream.
func (l Loader) Load(raw Raw) (Notebook, error) {
	major, err := intField(raw, "nbformat")
	if err != nil {
		return Notebook{}, err
	}
	minor, err := intField(raw, "nbformat_minor")
	if err != nil {
		return Notebook{}, err
	}

	rawCells, ok := raw["cells"]
	if !ok {
		return Notebook{}, &MissingFieldError{Field: "cells", Index: -1}
	}
	entries, ok := rawCells.([]any)
	if !ok {
		return Notebook{}, fmt.Errorf("field %q is not a list", "cells")
	}

	nb := Notebook{Version: fmt.Sprintf("%d.%d", major, minor)}
	for i, entry := range entries {
		cellMap, ok := entry.(map[string]any)
		if !ok {
			return Notebook{}, fmt.Errorf("cell %d is not an object", i)
		}
		cell, keep, err := l.loadCell(cellMap, i)
		if err != nil {
			return Notebook{}, err
		}
		if keep {
			nb.Cells = append(nb.Cells, cell)
		}
	}
	return nb, nil
}

// loadCell converts one cell entry. The boolean reports whether the cell
// was kept; unknown cell types are dropped before any field validation so
// a malformed raw cell never blocks the load.
func (l Loader) loadCell(entry map[string]any, index int) (Cell, bool, error) {
	cellType, ok := entry["cell_type"].(string)
	if !ok {
		return Cell{}, false, &MissingFieldError{Field: "cell_type", Index: index}
	}

	switch CellType(cellType) {
	case CellCode, CellMarkdown:
	default:
		if l.Logger != nil {
			l.Logger.Warn("dropping unsupported cell type", "cell_type", cellType, "index", index)
		}
		return Cell{}, false, nil
	}

	id, ok := entry["id"].(string)
	if !ok {
		return Cell{}, false, &MissingFieldError{Field: "id", Index: index}
	}
	rawSource, ok := entry["source"]
	if !ok {
		return Cell{}, false, &MissingFieldError{Field: "source", Index: index}
	}
	source, err := sourceLines(rawSource)
	if err != nil {
		return Cell{}, false, fmt.Errorf("cell %d: %w", index, err)
	}

	if CellType(cellType) == CellMarkdown {
		return NewMarkdownCell(id, source), true, nil
	}

	rawCount, ok := entry["execution_count"]
	if !ok {
		return Cell{}, false, &MissingFieldError{Field: "execution_count", Index: index}
	}
	count := NotExecuted
	if rawCount != nil {
		n, ok := asInt(rawCount)
		if !ok {
			return Cell{}, false, fmt.Errorf("cell %d: execution_count is not a number", index)
		}
		count = n
	}
	return NewCodeCell(id, source, count), true, nil
}

// ToRaw converts a Notebook back into the generic container representation.
//
// Code cells carry execution_count (null when never run) plus empty outputs
// and metadata; markdown cells carry metadata only. Source lines get their
// newline terminators back, except on the last line of each cell, matching
// the on-disk convention so that a notebook written by this toolbox
// re-reads and re-writes unchanged.
func ToRaw(nb Notebook) (Raw, error) {
	major, minor, err := SplitVersion(nb.Version)
	if err != nil {
		return nil, err
	}

	cells := make([]any, 0, len(nb.Cells))
	for _, c := range nb.Cells {
		entry := map[string]any{
			"cell_type": string(c.Type),
			"id":        c.ID,
			"metadata":  map[string]any{},
			"source":    terminatedLines(c.Source),
		}
		if c.Type == CellCode {
			if c.ExecutionCount == NotExecuted {
				entry["execution_count"] = nil
			} else {
				entry["execution_count"] = c.ExecutionCount
			}
			entry["outputs"] = []any{}
		}
		cells = append(cells, entry)
	}

	return Raw{
		"cells":          cells,
		"metadata":       map[string]any{},
		"nbformat":       major,
		"nbformat_minor": minor,
	}, nil
}

// intField reads a required non-negative integer, tolerating the numeric
// types different container decoders produce.
func intField(raw Raw, key string) (int, error) {
	v, ok := raw[key]
	if !ok {
		return 0, &MissingFieldError{Field: key, Index: -1}
	}
	n, ok := asInt(v)
	if !ok || n < 0 {
		return 0, fmt.Errorf("field %q is not a non-negative integer", key)
	}
	return n, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// sourceLines normalizes the container's source field into terminator-free
// lines. Jupyter stores a list of strings that keep their trailing newline
// (except usually the last); a bare string is tolerated as well.
func sourceLines(v any) ([]string, error) {
	switch src := v.(type) {
	case []any:
		lines := make([]string, 0, len(src))
		for _, item := range src {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("source entry is not a string")
			}
			lines = append(lines, strings.TrimSuffix(s, "\n"))
		}
		return lines, nil
	case []string:
		lines := make([]string, 0, len(src))
		for _, s := range src {
			lines = append(lines, strings.TrimSuffix(s, "\n"))
		}
		return lines, nil
	case string:
		return strings.Split(strings.TrimSuffix(src, "\n"), "\n"), nil
	default:
		return nil, fmt.Errorf("source is neither a list nor a string")
	}
}

// terminatedLines rejoins terminator-free lines into the container source
// convention: every line except the last regains its "\n".
func terminatedLines(lines []string) []any {
	out := make([]any, len(lines))
	for i, line := range lines {
		if i < len(lines)-1 {
			out[i] = line + "\n"
		} else {
			out[i] = line
		}
	}
	return out
}
