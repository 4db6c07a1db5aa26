package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Outline renders a readable tree summary of a notebook. The layout is a
// stable output contract:
//
//	Jupyter Notebook v4.5
//	└─▶ Markdown cell #a9541506
//	    ┌  Hello world!
//	    │  ============
//	    └  Print `Hello world!`:
//	└─▶ Code cell #b777420a (1)
//	    | print("Hello world!")
//
// Multi-line sources use the corner connectors, single-line sources the
// plain pipe. Code cells show their execution count in parentheses, with
// '-' for cells that never ran. The result carries no trailing newline.
func Outline(nb Notebook) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Jupyter Notebook v%s", nb.Version)
	for _, c := range nb.Cells {
		switch c.Type {
		case CellMarkdown:
			fmt.Fprintf(&b, "\n└─▶ Markdown cell #%s", c.ID)
		case CellCode:
			fmt.Fprintf(&b, "\n└─▶ Code cell #%s (%s)", c.ID, formatCount(c.ExecutionCount))
		default:
			continue
		}
		writeSourceTree(&b, c.Source)
	}
	return b.String()
}

func formatCount(count int) string {
	if count == NotExecuted {
		return "-"
	}
	return strconv.Itoa(count)
}

func writeSourceTree(b *strings.Builder, source []string) {
	if len(source) == 0 {
		return
	}
	if len(source) == 1 {
		fmt.Fprintf(b, "\n    | %s", source[0])
		return
	}
	fmt.Fprintf(b, "\n    ┌  %s", source[0])
	for _, line := range source[1 : len(source)-1] {
		fmt.Fprintf(b, "\n    │  %s", line)
	}
	fmt.Fprintf(b, "\n    └  %s", source[len(source)-1])
}
