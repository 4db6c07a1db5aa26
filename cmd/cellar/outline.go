package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellar"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [id]",
	Short: "Print the cell structure of a notebook",
	Long: `Outline prints a tree view of a notebook in the workspace: one line
per cell with its type, id, and execution count, plus the source lines.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		service, err := cellar.New(workspaceDir(),
			cellar.WithMustExist(true),
			cellar.WithReadOnly(true),
			cellar.WithLogger(slog.Default()),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing workspace: %v\n", err)
			os.Exit(1)
		}

		nb, err := service.GetNotebook(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading notebook: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(cellar.Outline(nb))
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}
