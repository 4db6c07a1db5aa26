// Package render produces presentation formats for notebooks.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"github.com/aretw0/cellar/pkg/core"
)

// HTML renders the notebook as a standalone HTML document. Markdown cells
// go through goldmark with GFM enabled; code cells become pre blocks with
// an execution prompt in Jupyter's "In [n]:" form ("In [ ]:" for cells
// that never ran).
func HTML(nb core.Notebook) ([]byte, error) {
	md := newEngine()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Jupyter Notebook v%s</title>\n</head>\n<body>\n",
		html.EscapeString(nb.Version))

	for _, cell := range nb.Cells {
		switch cell.Type {
		case core.CellMarkdown:
			buf.WriteString("<section class=\"cell markdown\">\n")
			if err := md.Convert([]byte(strings.Join(cell.Source, "\n")), &buf); err != nil {
				return nil, fmt.Errorf("failed to render markdown cell %s: %w", cell.ID, err)
			}
			buf.WriteString("</section>\n")
		case core.CellCode:
			buf.WriteString("<section class=\"cell code\">\n")
			fmt.Fprintf(&buf, "<div class=\"prompt\">In [%s]:</div>\n", prompt(cell.ExecutionCount))
			fmt.Fprintf(&buf, "<pre><code class=\"language-python\">%s</code></pre>\n",
				html.EscapeString(strings.Join(cell.Source, "\n")))
			buf.WriteString("</section>\n")
		}
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// Markdown renders the notebook as a single markdown document: markdown
// cells verbatim, code cells as fenced python blocks, separated by blank
// lines.
func Markdown(nb core.Notebook) []byte {
	var buf bytes.Buffer
	for i, cell := range nb.Cells {
		if i > 0 {
			buf.WriteByte('\n')
		}
		switch cell.Type {
		case core.CellMarkdown:
			for _, line := range cell.Source {
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
		case core.CellCode:
			buf.WriteString("```python\n")
			for _, line := range cell.Source {
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
			buf.WriteString("```\n")
		}
	}
	return buf.Bytes()
}

func newEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			ghtml.WithUnsafe(),
		),
	)
}

func prompt(count int) string {
	if count == core.NotExecuted {
		return " "
	}
	return strconv.Itoa(count)
}
