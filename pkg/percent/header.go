package percent

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/cellar/pkg/core"
)

// headerFence opens and closes the commented metadata block.
const headerFence = "# ---"

// headerDoc is the YAML shape of the metadata header. Unknown keys are
// tolerated and ignored, so scripts produced by other tools still parse.
type headerDoc struct {
	Jupyter headerInfo `yaml:"jupyter"`
}

type headerInfo struct {
	Nbformat      int `yaml:"nbformat"`
	NbformatMinor int `yaml:"nbformat_minor"`
}

// writeHeader emits the commented YAML metadata block followed by a blank
// separator line:
//
//	# ---
//	# jupyter:
//	#   nbformat: 4
//	#   nbformat_minor: 5
//	# ---
func writeHeader(buf *bytes.Buffer, version string) error {
	major, minor, err := core.SplitVersion(version)
	if err != nil {
		return err
	}

	var yamlBuf bytes.Buffer
	enc := yaml.NewEncoder(&yamlBuf)
	enc.SetIndent(2)
	if err := enc.Encode(headerDoc{Jupyter: headerInfo{Nbformat: major, NbformatMinor: minor}}); err != nil {
		return fmt.Errorf("failed to encode metadata header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode metadata header: %w", err)
	}

	buf.WriteString(headerFence)
	buf.WriteByte('\n')
	for _, line := range strings.Split(strings.TrimSuffix(yamlBuf.String(), "\n"), "\n") {
		writeCommented(buf, line)
	}
	buf.WriteString(headerFence)
	buf.WriteByte('\n')
	buf.WriteByte('\n')
	return nil
}

// parseHeader consumes the optional commented metadata block at the top of
// the stream. It returns the version the block carries (empty when absent)
// and the index of the first line after the block and its blank separator.
// A stream not starting with the fence has no header; that is not an error.
func parseHeader(lines []string) (string, int, error) {
	if len(lines) == 0 || lines[0] != headerFence {
		return "", 0, nil
	}

	var yamlLines []string
	end := -1
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if line == headerFence {
			end = i
			break
		}
		switch {
		case strings.HasPrefix(line, commentPrefix):
			yamlLines = append(yamlLines, line[len(commentPrefix):])
		case line == emptyComment:
			yamlLines = append(yamlLines, "")
		default:
			return "", 0, &FormatError{Line: i + 1, Text: line, Reason: "metadata header line missing '# ' prefix"}
		}
	}
	if end == -1 {
		return "", 0, &FormatError{Line: 1, Reason: "metadata header never closed"}
	}

	var doc headerDoc
	if err := yaml.Unmarshal([]byte(strings.Join(yamlLines, "\n")), &doc); err != nil {
		return "", 0, &FormatError{Line: 2, Reason: fmt.Sprintf("invalid metadata header: %v", err)}
	}

	next := end + 1
	if next < len(lines) && lines[next] == "" {
		next++
	}

	// A header without the jupyter block still counts as consumed; the
	// caller keeps its assumed version.
	if doc.Jupyter.Nbformat == 0 && doc.Jupyter.NbformatMinor == 0 {
		return "", next, nil
	}
	return fmt.Sprintf("%d.%d", doc.Jupyter.Nbformat, doc.Jupyter.NbformatMinor), next, nil
}
