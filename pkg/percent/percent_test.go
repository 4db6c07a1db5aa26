package percent

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cellar/pkg/core"
)

func helloWorld() core.Notebook {
	return core.NewNotebook("4.5", []core.Cell{
		core.NewMarkdownCell("a9541506", []string{"Hello world!", "============", "Print `Hello world!`:"}),
		core.NewCodeCell("b777420a", []string{`print("Hello world!")`}, 1),
	})
}

func TestSerialize_Golden(t *testing.T) {
	data, err := Serialize(helloWorld())
	require.NoError(t, err)

	expected := "# %% [markdown]\n" +
		"# Hello world!\n" +
		"# ============\n" +
		"# Print `Hello world!`:\n" +
		"\n" +
		"# %%\n" +
		"print(\"Hello world!\")\n"
	assert.Equal(t, expected, string(data))
}

func TestSerialize_EmptyMarkdownLine(t *testing.T) {
	nb := core.NewNotebook("4.5", []core.Cell{
		core.NewMarkdownCell("a", []string{"above", "", "below"}),
	})

	data, err := Serialize(nb)
	require.NoError(t, err)

	// The empty line must become a bare '#', otherwise it would terminate
	// the block on re-parse.
	assert.Equal(t, "# %% [markdown]\n# above\n#\n# below\n", string(data))
}

func TestSerialize_WithHeader(t *testing.T) {
	data, err := Serialize(helloWorld(), WithHeader())
	require.NoError(t, err)

	expected := "# ---\n" +
		"# jupyter:\n" +
		"#   nbformat: 4\n" +
		"#   nbformat_minor: 5\n" +
		"# ---\n" +
		"\n" +
		"# %% [markdown]\n" +
		"# Hello world!\n" +
		"# ============\n" +
		"# Print `Hello world!`:\n" +
		"\n" +
		"# %%\n" +
		"print(\"Hello world!\")\n"
	assert.Equal(t, expected, string(data))
}

func TestSerialize_WithHeader_InvalidVersion(t *testing.T) {
	_, err := Serialize(core.NewNotebook("bogus", nil), WithHeader())
	assert.ErrorIs(t, err, core.ErrInvalidVersion)
}

func TestSerialize_EmptyNotebook(t *testing.T) {
	data, err := Serialize(core.NewNotebook("4.5", nil))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestParse_Golden(t *testing.T) {
	input := "# %% [markdown]\n" +
		"# Hello world!\n" +
		"# ============\n" +
		"# Print `Hello world!`:\n" +
		"\n" +
		"# %%\n" +
		"print(\"Hello world!\")\n"

	nb, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "4.5", nb.Version)
	require.Len(t, nb.Cells, 2)

	md := nb.Cells[0]
	assert.Equal(t, core.CellMarkdown, md.Type)
	assert.Equal(t, "cell-1", md.ID)
	assert.Equal(t, []string{"Hello world!", "============", "Print `Hello world!`:"}, md.Source)

	code := nb.Cells[1]
	assert.Equal(t, core.CellCode, code.Type)
	assert.Equal(t, "cell-2", code.ID)
	assert.Equal(t, []string{`print("Hello world!")`}, code.Source)
	assert.Equal(t, core.NotExecuted, code.ExecutionCount)
}

func TestParse_RecoversEmptyMarkdownLines(t *testing.T) {
	input := "# %% [markdown]\n# above\n#\n# below\n"

	nb, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, nb.Cells, 1)
	assert.Equal(t, []string{"above", "", "below"}, nb.Cells[0].Source)
}

func TestParse_HeaderVersionWins(t *testing.T) {
	input := "# ---\n" +
		"# jupyter:\n" +
		"#   nbformat: 4\n" +
		"#   nbformat_minor: 2\n" +
		"# ---\n" +
		"\n" +
		"# %%\n" +
		"x = 1\n"

	nb, err := NewParser("4.5").Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "4.2", nb.Version)
	require.Len(t, nb.Cells, 1)
	assert.Equal(t, []string{"x = 1"}, nb.Cells[0].Source)
}

func TestParse_ParserVersionWithoutHeader(t *testing.T) {
	nb, err := NewParser("4.2").Parse(strings.NewReader("# %%\nx = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "4.2", nb.Version)
}

func TestParse_EmptyStream(t *testing.T) {
	nb, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, core.DefaultVersion, nb.Version)
	assert.Empty(t, nb.Cells)
}

func TestParse_CRLF(t *testing.T) {
	input := "# %% [markdown]\r\n# hi\r\n\r\n# %%\r\nx = 1\r\n"

	nb, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, nb.Cells, 2)
	assert.Equal(t, []string{"hi"}, nb.Cells[0].Source)
	assert.Equal(t, []string{"x = 1"}, nb.Cells[1].Source)
}

func TestParse_ExtraBlankLines(t *testing.T) {
	input := "\n\n# %%\nx = 1\n\n\n\n# %%\ny = 2\n\n"

	nb, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, nb.Cells, 2)
	assert.Equal(t, "cell-1", nb.Cells[0].ID)
	assert.Equal(t, "cell-2", nb.Cells[1].ID)
}

func TestParse_MarkerAtEOF(t *testing.T) {
	nb, err := Parse(strings.NewReader("# %%\n"))
	require.NoError(t, err)
	require.Len(t, nb.Cells, 1)
	assert.Empty(t, nb.Cells[0].Source)
}

func TestParse_StrayLine(t *testing.T) {
	input := "# %%\nx = 1\n\nnot a marker\n"

	_, err := Parse(strings.NewReader(input))
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 4, ferr.Line)
	assert.Equal(t, "not a marker", ferr.Text)
}

func TestParse_MarkdownBodyMissingPrefix(t *testing.T) {
	input := "# %% [markdown]\n# fine\nbroken\n"

	_, err := Parse(strings.NewReader(input))
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 3, ferr.Line)
	assert.Equal(t, "broken", ferr.Text)
	assert.Contains(t, ferr.Error(), "line 3")
}

func TestParse_UnclosedHeader(t *testing.T) {
	input := "# ---\n# jupyter:\n#   nbformat: 4\n"

	_, err := Parse(strings.NewReader(input))
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Reason, "never closed")
}

func TestRoundTrip(t *testing.T) {
	nb := core.NewNotebook("4.5", []core.Cell{
		core.NewMarkdownCell("a9541506", []string{"Hello world!", "", "Print `Hello world!`:"}),
		core.NewCodeCell("b777420a", []string{`print("Hello world!")`}, 1),
		core.NewMarkdownCell("a23ab5ac", []string{"Goodbye! 👋"}),
	})

	data, err := Serialize(nb, WithHeader())
	require.NoError(t, err)

	back, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)

	require.Len(t, back.Cells, len(nb.Cells))
	assert.Equal(t, nb.Version, back.Version)
	for i := range nb.Cells {
		assert.Equal(t, nb.Cells[i].Type, back.Cells[i].Type, "cell %d", i)
		assert.Equal(t, nb.Cells[i].Source, back.Cells[i].Source, "cell %d", i)
	}

	// Ids and counts are re-minted by the format.
	assert.Equal(t, "cell-1", back.Cells[0].ID)
	assert.Equal(t, core.NotExecuted, back.Cells[1].ExecutionCount)
}

func TestWrite(t *testing.T) {
	var sb strings.Builder
	err := Write(&sb, helloWorld())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sb.String(), "# %% [markdown]\n"))
	assert.True(t, strings.HasSuffix(sb.String(), "\n"))
}

func TestFormatError_Message(t *testing.T) {
	withText := &FormatError{Line: 7, Text: "oops", Reason: "expected a cell marker"}
	assert.Equal(t, `line 7: expected a cell marker: "oops"`, withText.Error())

	bare := &FormatError{Line: 1, Reason: "metadata header never closed"}
	assert.Equal(t, "line 1: metadata header never closed", bare.Error())

	var target *FormatError
	assert.True(t, errors.As(error(withText), &target))
}
