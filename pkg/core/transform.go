package core

import "github.com/google/uuid"

// StripMarkdown returns a new notebook containing only the code cells, in
// their original order. Applying it twice is a no-op.
func StripMarkdown(nb Notebook) Notebook {
	out := Notebook{Version: nb.Version}
	for _, c := range nb.Cells {
		if c.Type == CellCode {
			out.Cells = append(out.Cells, c.Clone())
		}
	}
	return out
}

// Markdownize returns a new notebook where every code cell is replaced by a
// markdown cell wrapping the source in a fenced python block. Ids are kept;
// execution counts cannot survive the change of variant and are dropped.
func Markdownize(nb Notebook) Notebook {
	out := Notebook{Version: nb.Version, Cells: make([]Cell, 0, len(nb.Cells))}
	for _, c := range nb.Cells {
		switch c.Type {
		case CellCode:
			source := make([]string, 0, len(c.Source)+2)
			source = append(source, "```python")
			source = append(source, c.Source...)
			source = append(source, "```")
			out.Cells = append(out.Cells, NewMarkdownCell(c.ID, source))
		default:
			out.Cells = append(out.Cells, c.Clone())
		}
	}
	return out
}

// Normalize returns a new notebook in which every cell carries a unique,
// non-empty id. Cells with a missing or duplicate id receive a fresh random
// id in Jupyter's short form (the first 8 hex characters of a UUID); all
// other ids are preserved untouched.
func Normalize(nb Notebook) Notebook {
	out := nb.Clone()
	seen := make(map[string]bool, len(out.Cells))
	for i := range out.Cells {
		id := out.Cells[i].ID
		for id == "" || seen[id] {
			id = freshCellID()
		}
		out.Cells[i].ID = id
		seen[id] = true
	}
	return out
}

func freshCellID() string {
	return uuid.NewString()[:8]
}
