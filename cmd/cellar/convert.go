package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellar"
	"github.com/aretw0/cellar/pkg/adapters/fs"
)

var (
	convertVersion string
	convertHeader  bool
	convertNorm    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert SRC DST",
	Short: "Convert a notebook between formats",
	Long: `Convert reads SRC and writes DST. Each side's format is picked by its
file extension: .ipynb for the JSON container, .py for a py:percent script.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		src, dst := args[0], args[1]

		nb, err := loadNotebookFile(src)
		if err != nil {
			fatal("Failed to read "+src, err)
		}

		if convertNorm {
			nb = cellar.Normalize(nb)
		}

		if err := saveNotebookFile(dst, nb); err != nil {
			fatal("Failed to write "+dst, err)
		}

		fmt.Printf("Converted %s -> %s\n", src, dst)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertVersion, "version", "", "nbformat version for scripts without a header (default from config)")
	convertCmd.Flags().BoolVar(&convertHeader, "header", false, "Emit the commented YAML metadata header when writing .py")
	convertCmd.Flags().BoolVar(&convertNorm, "normalize", false, "Give missing or duplicate cell ids fresh ones before writing")
}

// fileSerializer picks the serializer for a path by its extension.
func fileSerializer(path string) (fs.Serializer, error) {
	version := convertVersion
	if version == "" {
		version = nbVersion()
	}

	switch ext := filepath.Ext(path); ext {
	case ".ipynb":
		s := fs.NewIpynbSerializer()
		s.Logger = slog.Default()
		return s, nil
	case ".py":
		s := fs.NewPercentSerializer(version)
		s.Header = convertHeader
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported notebook format %q", ext)
	}
}

func loadNotebookFile(path string) (cellar.Notebook, error) {
	serializer, err := fileSerializer(path)
	if err != nil {
		return cellar.Notebook{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return cellar.Notebook{}, err
	}
	defer f.Close()

	return serializer.Parse(f)
}

func saveNotebookFile(path string, nb cellar.Notebook) error {
	serializer, err := fileSerializer(path)
	if err != nil {
		return err
	}

	data, err := serializer.Serialize(nb)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
