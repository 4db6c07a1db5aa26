package platform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/aretw0/cellar"
	"github.com/aretw0/cellar/pkg/core"
)

func setupService(t *testing.T, opts ...cellar.Option) (*core.Service, string) {
	t.Helper()
	tmpDir := t.TempDir()

	service, err := cellar.New(tmpDir, opts...)
	if err != nil {
		t.Fatalf("Failed to init service: %v", err)
	}
	return service, tmpDir
}

func TestService_SaveGet(t *testing.T) {
	service, tmpDir := setupService(t)
	ctx := context.TODO()

	nb := cellar.NewNotebook(cellar.DefaultVersion, []cellar.Cell{
		cellar.NewMarkdownCell("intro", []string{"# Analysis", "", "Round-trip check."}),
		cellar.NewCodeCell("load", []string{"import json", "data = json.load(open('x'))"}, 3),
	})

	if err := service.SaveNotebook(ctx, "research/analysis.ipynb", nb); err != nil {
		t.Fatalf("Service.SaveNotebook failed: %v", err)
	}

	// Check the file landed on disk
	expectedPath := filepath.Join(tmpDir, "research", "analysis.ipynb")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("File was not created at %s", expectedPath)
	}

	// Read back (round-trip verification)
	loaded, err := service.GetNotebook(ctx, "research/analysis.ipynb")
	if err != nil {
		t.Fatalf("Service.GetNotebook failed: %v", err)
	}

	if loaded.Version != nb.Version {
		t.Errorf("Version mismatch. Want %s, got %s", nb.Version, loaded.Version)
	}
	if !reflect.DeepEqual(loaded.Cells, nb.Cells) {
		t.Errorf("Cells mismatch.\nWant: %+v\nGot:  %+v", nb.Cells, loaded.Cells)
	}
}

func TestService_DeleteList(t *testing.T) {
	service, tmpDir := setupService(t)
	ctx := context.TODO()

	ids := []string{"nb1.ipynb", "nb2.ipynb", "script.py"}
	for _, id := range ids {
		nb := cellar.NewNotebook(cellar.DefaultVersion, []cellar.Cell{
			cellar.NewCodeCell("c1", []string{"print('" + id + "')"}, cellar.NotExecuted),
		})
		if err := service.SaveNotebook(ctx, id, nb); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
	}

	list, err := service.ListNotebooks(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("Expected 3 notebooks, got %d", len(list))
	}

	if err := service.DeleteNotebook(ctx, "nb2.ipynb"); err != nil {
		t.Fatalf("Failed to delete nb2: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "nb2.ipynb")); !os.IsNotExist(err) {
		t.Error("nb2.ipynb still exists on disk after Delete")
	}

	list, err = service.ListNotebooks(ctx)
	if err != nil {
		t.Fatalf("Failed to list post-delete: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 notebooks, got %d", len(list))
	}
}

func TestService_Namespaces(t *testing.T) {
	service, tmpDir := setupService(t)
	ctx := context.TODO()

	nbID := "deep/nested/nb.ipynb"
	nb := cellar.NewNotebook(cellar.DefaultVersion, []cellar.Cell{
		cellar.NewMarkdownCell("deep-note", []string{"Content in a folder"}),
	})
	if err := service.SaveNotebook(ctx, nbID, nb); err != nil {
		t.Fatalf("Failed to write nested notebook: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, "deep", "nested", "nb.ipynb")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("File was not created at %s", expectedPath)
	}

	infos, err := service.ListNotebooks(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}

	found := false
	for _, info := range infos {
		if info.ID == nbID {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Nested notebook %s not found in list. Got %d entries.", nbID, len(infos))
	}
}

func TestService_MustExist(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistent := filepath.Join(tmpDir, "does-not-exist")

	_, err := cellar.New(nonExistent, cellar.WithMustExist(true))
	if err == nil {
		t.Error("Expected New to fail with MustExist for non-existent path, but it succeeded")
	}
}

func TestService_ReadOnly(t *testing.T) {
	ctx := context.TODO()

	// Seed the workspace with a writable service first.
	service, tmpDir := setupService(t)
	nb := cellar.NewNotebook(cellar.DefaultVersion, []cellar.Cell{
		cellar.NewCodeCell("only", []string{"1 + 1"}, 1),
	})
	if err := service.SaveNotebook(ctx, "frozen.ipynb", nb); err != nil {
		t.Fatalf("Seed save failed: %v", err)
	}
	// Drop the index so the read-only pass below starts cold.
	if err := os.RemoveAll(filepath.Join(tmpDir, ".cellar")); err != nil {
		t.Fatal(err)
	}

	roService, err := cellar.New(tmpDir, cellar.WithReadOnly(true), cellar.WithMustExist(true))
	if err != nil {
		t.Fatalf("Failed to open read-only service: %v", err)
	}

	if err := roService.SaveNotebook(ctx, "new.ipynb", nb); !errors.Is(err, cellar.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly on save, got %v", err)
	}
	if err := roService.DeleteNotebook(ctx, "frozen.ipynb"); !errors.Is(err, cellar.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly on delete, got %v", err)
	}

	// Reads still work.
	loaded, err := roService.GetNotebook(ctx, "frozen.ipynb")
	if err != nil {
		t.Fatalf("Read-only Get failed: %v", err)
	}
	if len(loaded.Cells) != 1 {
		t.Errorf("Expected 1 cell, got %d", len(loaded.Cells))
	}
	infos, err := roService.ListNotebooks(ctx)
	if err != nil {
		t.Fatalf("Read-only List failed: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("Expected 1 listing entry, got %d", len(infos))
	}

	// Listing must not recreate the index on disk.
	if _, err := os.Stat(filepath.Join(tmpDir, ".cellar")); !os.IsNotExist(err) {
		t.Error("Read-only List wrote the index cache to disk")
	}
}

func TestService_Watch(t *testing.T) {
	service, _ := setupService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := service.Watch(ctx, "")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	nb := cellar.NewNotebook(cellar.DefaultVersion, []cellar.Cell{
		cellar.NewCodeCell("w1", []string{"pass"}, cellar.NotExecuted),
	})
	if err := service.SaveNotebook(ctx, "observed.ipynb", nb); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("Event channel closed before delivering an event")
		}
		if ev.ID != "observed.ipynb" {
			t.Errorf("Expected event for observed.ipynb, got %s", ev.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for watch event")
	}
}
