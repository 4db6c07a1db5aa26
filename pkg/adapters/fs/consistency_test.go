package fs_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/aretw0/cellar/pkg/adapters/fs"
	"github.com/aretw0/cellar/pkg/core"
)

// TestCrossFormatConsistency verifies that the container and script
// serializers agree on notebook structure, and that only the documented
// fields differ: scripts re-mint cell ids and drop execution counts.
func TestCrossFormatConsistency(t *testing.T) {
	nb := core.NewNotebook("4.5", []core.Cell{
		core.NewMarkdownCell("a9541506", []string{"Hello", "", "World"}),
		core.NewCodeCell("b777420a", []string{"print(1)"}, 3),
	})

	ipynb := fs.NewIpynbSerializer()
	script := fs.NewPercentSerializer("4.5")

	jsonBytes, err := ipynb.Serialize(nb)
	if err != nil {
		t.Fatalf("failed to serialize ipynb: %v", err)
	}
	pyBytes, err := script.Serialize(nb)
	if err != nil {
		t.Fatalf("failed to serialize script: %v", err)
	}

	fromJSON, err := ipynb.Parse(bytes.NewReader(jsonBytes))
	if err != nil {
		t.Fatalf("failed to parse ipynb: %v", err)
	}
	fromPy, err := script.Parse(bytes.NewReader(pyBytes))
	if err != nil {
		t.Fatalf("failed to parse script: %v", err)
	}

	if fromJSON.Version != fromPy.Version {
		t.Errorf("version mismatch: ipynb %q, script %q", fromJSON.Version, fromPy.Version)
	}
	if len(fromJSON.Cells) != len(fromPy.Cells) {
		t.Fatalf("cell count mismatch: ipynb %d, script %d", len(fromJSON.Cells), len(fromPy.Cells))
	}

	for i := range fromJSON.Cells {
		cj, cp := fromJSON.Cells[i], fromPy.Cells[i]
		if cj.Type != cp.Type {
			t.Errorf("cell %d: type mismatch: %s vs %s", i, cj.Type, cp.Type)
		}
		if !reflect.DeepEqual(cj.Source, cp.Source) {
			t.Errorf("cell %d: source mismatch:\n\tipynb:  %q\n\tscript: %q", i, cj.Source, cp.Source)
		}
	}

	// The container format preserves identity; scripts re-mint it.
	if fromJSON.Cells[0].ID != "a9541506" || fromJSON.Cells[1].ExecutionCount != 3 {
		t.Error("ipynb round-trip lost ids or counts")
	}
	if fromPy.Cells[0].ID != "cell-1" {
		t.Errorf("expected re-minted id cell-1, got %q", fromPy.Cells[0].ID)
	}
	if fromPy.Cells[1].ExecutionCount != core.NotExecuted {
		t.Errorf("expected the script format to drop the execution count, got %d", fromPy.Cells[1].ExecutionCount)
	}
}
