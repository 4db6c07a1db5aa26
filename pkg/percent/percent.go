// Package percent implements the py-percent script codec.
//
// The format encodes a notebook as a plain Python script: `# %%` opens a
// code cell, `# %% [markdown]` a markdown cell, and a blank line ends the
// cell body. Markdown source lines are commented with a `# ` prefix so the
// script stays runnable. An optional commented YAML header carries the
// nbformat version, which the text itself cannot encode.
//
// The format is lossy by nature: cell ids and execution counts do not
// survive, and a code cell containing a blank line splits into two cells
// on re-parse. Everything else round-trips.
package percent

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/cellar/pkg/core"
)

const (
	codeMarker     = "# %%"
	markdownMarker = "# %% [markdown]"
	commentPrefix  = "# "
	emptyComment   = "#"
)

// FormatError reports unexpected structure in a py-percent stream.
type FormatError struct {
	Line   int    // 1-based line number
	Text   string // the offending line
	Reason string
}

func (e *FormatError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Option configures serialization.
type Option func(*config)

type config struct {
	header bool
}

// WithHeader prepends the commented YAML metadata block carrying the
// notebook format version, so that parsing can recover it later.
func WithHeader() Option {
	return func(c *config) { c.header = true }
}

// Serialize renders the notebook as a py-percent script. Cell blocks are
// separated by exactly one blank line and the output ends with a single
// newline.
func Serialize(nb core.Notebook, opts ...Option) ([]byte, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var buf bytes.Buffer
	if cfg.header {
		if err := writeHeader(&buf, nb.Version); err != nil {
			return nil, err
		}
	}

	for i, cell := range nb.Cells {
		if i > 0 {
			buf.WriteByte('\n')
		}
		switch cell.Type {
		case core.CellMarkdown:
			buf.WriteString(markdownMarker)
			buf.WriteByte('\n')
			for _, line := range cell.Source {
				writeCommented(&buf, line)
			}
		case core.CellCode:
			buf.WriteString(codeMarker)
			buf.WriteByte('\n')
			for _, line := range cell.Source {
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
		}
	}
	return buf.Bytes(), nil
}

// Write renders the notebook as a py-percent script into w.
func Write(w io.Writer, nb core.Notebook, opts ...Option) error {
	data, err := Serialize(nb, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeCommented emits one markdown source line in its commented form.
// Empty lines become a bare '#' so they cannot terminate the cell block.
func writeCommented(buf *bytes.Buffer, line string) {
	if line == "" {
		buf.WriteString(emptyComment)
	} else {
		buf.WriteString(commentPrefix)
		buf.WriteString(line)
	}
	buf.WriteByte('\n')
}

// Parser reconstructs notebooks from py-percent text. Version is assumed
// for the result when the stream carries no metadata header; the zero
// value falls back to core.DefaultVersion.
type Parser struct {
	Version string
}

// NewParser returns a Parser assuming the given format version.
func NewParser(version string) *Parser {
	return &Parser{Version: version}
}

// Parse reads py-percent text assuming the default format version.
func Parse(r io.Reader) (core.Notebook, error) {
	return (&Parser{}).Parse(r)
}

// Parse reads py-percent text and reconstructs the notebook.
//
// Workflow:
//  1. Consume the optional commented YAML metadata header.
//  2. Scan for cell markers; collect each body up to a blank line or EOF.
//  3. Strip the comment prefix from markdown bodies.
//
// Ids and execution counts are not encoded by the format. Cells get the
// deterministic ids cell-1, cell-2, ... in document order, and code cells
// come back as never executed. Any non-blank line outside a cell body that
// is not a marker is a FormatError, as is a markdown body line without its
// comment prefix.
func (p *Parser) Parse(r io.Reader) (core.Notebook, error) {
	lines, err := readLines(r)
	if err != nil {
		return core.Notebook{}, err
	}

	version := p.Version
	if version == "" {
		version = core.DefaultVersion
	}

	pos := 0
	headerVersion, next, err := parseHeader(lines)
	if err != nil {
		return core.Notebook{}, err
	}
	if next > 0 {
		pos = next
		if headerVersion != "" {
			version = headerVersion
		}
	}

	nb := core.Notebook{Version: version}
	for pos < len(lines) {
		line := lines[pos]
		if line == "" {
			pos++
			continue
		}

		var cellType core.CellType
		switch line {
		case markdownMarker:
			cellType = core.CellMarkdown
		case codeMarker:
			cellType = core.CellCode
		default:
			return core.Notebook{}, &FormatError{Line: pos + 1, Text: line, Reason: "expected a cell marker"}
		}
		pos++

		bodyStart := pos
		for pos < len(lines) && lines[pos] != "" {
			pos++
		}
		body := lines[bodyStart:pos]
		if pos < len(lines) {
			pos++ // consume the blank separator; at EOF the body is simply done
		}

		id := fmt.Sprintf("cell-%d", len(nb.Cells)+1)
		switch cellType {
		case core.CellMarkdown:
			source, err := stripComments(body, bodyStart)
			if err != nil {
				return core.Notebook{}, err
			}
			nb.Cells = append(nb.Cells, core.NewMarkdownCell(id, source))
		case core.CellCode:
			nb.Cells = append(nb.Cells, core.NewCodeCell(id, append([]string(nil), body...), core.NotExecuted))
		}
	}
	return nb, nil
}

// stripComments recovers markdown source from its commented body form.
// `# ` prefixed lines lose the prefix, a bare `#` recovers an empty line,
// and anything else means the stream does not round-trip: fail loudly
// rather than guess.
func stripComments(body []string, start int) ([]string, error) {
	source := make([]string, 0, len(body))
	for i, line := range body {
		switch {
		case strings.HasPrefix(line, commentPrefix):
			source = append(source, line[len(commentPrefix):])
		case line == emptyComment:
			source = append(source, "")
		default:
			return nil, &FormatError{Line: start + i + 1, Text: line, Reason: "markdown body line missing '# ' prefix"}
		}
	}
	return source, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	return lines, nil
}
