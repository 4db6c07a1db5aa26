package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellar"
)

var (
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notebooks in the workspace",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		service, err := cellar.New(workspaceDir(),
			cellar.WithMustExist(true),
			cellar.WithLogger(slog.Default()),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing workspace: %v\n", err)
			os.Exit(1)
		}

		infos, err := service.ListNotebooks(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing notebooks: %v\n", err)
			os.Exit(1)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(infos); err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			return
		}

		for _, info := range infos {
			fmt.Printf("%s  v%s  %d cells (%d code)\n", info.ID, info.Version, info.Cells, info.CodeCells)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
