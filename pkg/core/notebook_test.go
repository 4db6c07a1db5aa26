package core_test

import (
	"errors"
	"testing"

	"github.com/aretw0/cellar/pkg/core"
)

func TestSplitVersion(t *testing.T) {
	tests := []struct {
		version string
		major   int
		minor   int
		wantErr bool
	}{
		{"4.5", 4, 5, false},
		{"4.0", 4, 0, false},
		{"10.12", 10, 12, false},
		{"", 0, 0, true},
		{"4", 0, 0, true},
		{"4.5.1", 0, 0, true},
		{"a.b", 0, 0, true},
		{"-1.5", 0, 0, true},
		{"4.-5", 0, 0, true},
	}

	for _, tt := range tests {
		major, minor, err := core.SplitVersion(tt.version)
		if tt.wantErr {
			if !errors.Is(err, core.ErrInvalidVersion) {
				t.Errorf("%q: expected ErrInvalidVersion, got %v", tt.version, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.version, err)
			continue
		}
		if major != tt.major || minor != tt.minor {
			t.Errorf("%q: expected %d.%d, got %d.%d", tt.version, tt.major, tt.minor, major, minor)
		}
	}
}

func TestNotebook_Validate(t *testing.T) {
	good := core.NewNotebook("4.5", []core.Cell{
		core.NewMarkdownCell("a", []string{"hi"}),
		core.NewCodeCell("b", nil, core.NotExecuted),
	})
	if err := good.Validate(); err != nil {
		t.Errorf("valid notebook rejected: %v", err)
	}

	badVersion := core.NewNotebook("4", nil)
	if err := badVersion.Validate(); !errors.Is(err, core.ErrInvalidVersion) {
		t.Errorf("expected ErrInvalidVersion, got %v", err)
	}

	noID := core.NewNotebook("4.5", []core.Cell{core.NewMarkdownCell("", nil)})
	if err := noID.Validate(); err == nil {
		t.Error("expected error for empty cell id")
	}

	unknown := core.NewNotebook("4.5", []core.Cell{{ID: "x", Type: "raw"}})
	if err := unknown.Validate(); err == nil {
		t.Error("expected error for unknown cell type")
	}
}

func TestNotebook_CloneIsDeep(t *testing.T) {
	nb := core.NewNotebook("4.5", []core.Cell{
		core.NewCodeCell("a", []string{"x = 1"}, 1),
	})

	dup := nb.Clone()
	dup.Cells[0].Source[0] = "mutated"
	dup.Cells[0].ID = "changed"

	if nb.Cells[0].Source[0] != "x = 1" {
		t.Error("clone shares source backing array with original")
	}
	if nb.Cells[0].ID != "a" {
		t.Error("clone shares cell header with original")
	}
}

func TestCell_Executed(t *testing.T) {
	if core.NewCodeCell("a", nil, core.NotExecuted).Executed() {
		t.Error("unexecuted code cell reports executed")
	}
	if !core.NewCodeCell("a", nil, 2).Executed() {
		t.Error("executed code cell reports unexecuted")
	}
	if core.NewMarkdownCell("a", nil).Executed() {
		t.Error("markdown cell reports executed")
	}
}
