package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/cellar"
	"github.com/aretw0/cellar/pkg/adapters/fs"
)

func main() {
	count := flag.Int("count", 1000, "Number of notebooks to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark workspace after running")
	batch := flag.Bool("batch", false, "Generate through a single transaction instead of direct writes")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "cellar_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.TODO()

	fmt.Printf("Generating %d notebooks in %s...\n", *count, benchDir)
	startGen := time.Now()

	if *batch {
		if err := generateBatch(ctx, benchDir, *count, logger); err != nil {
			panic(err)
		}
	} else {
		if err := generateDirect(benchDir, *count); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	// Run 1: Cold (full parse of every file, populates the index)
	service, err := cellar.New(benchDir, cellar.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	fmt.Println("Running List (Run 1 - Cold)...")
	startList := time.Now()
	list, err := service.ListNotebooks(ctx)
	if err != nil {
		panic(err)
	}
	duration := time.Since(startList)
	fmt.Printf("Run 1 Result: %v (Items: %d)\n", duration, len(list))

	// Run 2: Warm. Re-instantiate to simulate a fresh CLI invocation; the
	// timing difference is the persistent index doing its job.
	service2, err := cellar.New(benchDir, cellar.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	fmt.Println("Running List (Run 2 - Warm)...")
	startList2 := time.Now()
	list2, err := service2.ListNotebooks(ctx)
	if err != nil {
		panic(err)
	}
	duration2 := time.Since(startList2)
	fmt.Printf("Run 2 Result: %v (Items: %d)\n", duration2, len(list2))

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notebooks):\n", *count)
	fmt.Printf("  Cold: %v\n", duration)
	fmt.Printf("  Warm: %v\n", duration2)
	fmt.Printf("--------------------------------------------------\n")
}

func benchNotebook(i int) cellar.Notebook {
	return cellar.NewNotebook(cellar.DefaultVersion, []cellar.Cell{
		cellar.NewMarkdownCell(fmt.Sprintf("md-%d", i), []string{fmt.Sprintf("# Notebook %d", i), "", "Generated for benchmarking."}),
		cellar.NewCodeCell(fmt.Sprintf("code-%d", i), []string{fmt.Sprintf("x = %d", i), "print(x)"}, i%7),
	})
}

// generateDirect writes files straight to disk, simulating a workspace that
// already existed before cellar ever saw it.
func generateDirect(dir string, count int) error {
	serializer := fs.NewIpynbSerializer()
	for i := 0; i < count; i++ {
		data, err := serializer.Serialize(benchNotebook(i))
		if err != nil {
			return err
		}
		filename := filepath.Join(dir, fmt.Sprintf("nb_%d.ipynb", i))
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// generateBatch stages everything in one transaction and commits once,
// which also leaves the index pre-populated.
func generateBatch(ctx context.Context, dir string, count int, logger *slog.Logger) error {
	repo, err := cellar.Init(dir, cellar.WithLogger(logger))
	if err != nil {
		return err
	}

	fsRepo, ok := repo.(*fs.Repository)
	if !ok {
		return fmt.Errorf("batch generation needs the fs adapter")
	}

	tx, err := fsRepo.Begin(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := tx.Save(ctx, fmt.Sprintf("nb_%d.ipynb", i), benchNotebook(i)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit(ctx)
}
