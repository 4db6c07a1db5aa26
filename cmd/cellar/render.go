package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellar"
)

var (
	renderOut    string
	renderFormat string
)

var renderCmd = &cobra.Command{
	Use:   "render [id]",
	Short: "Render a notebook to HTML or Markdown",
	Long: `Render exports a notebook from the workspace as a standalone document.
Markdown cells go through the markdown engine; code cells keep their
execution prompts.`,
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

		var out []byte
		switch renderFormat {
		case "html":
			out, err = cellar.RenderHTML(nb)
			if err != nil {
				fatal("Failed to render", err)
			}
		case "markdown", "md":
			out = cellar.RenderMarkdown(nb)
		default:
			fatal("Unknown format", fmt.Errorf("%q (want html or markdown)", renderFormat))
		}

		if renderOut == "" {
			os.Stdout.Write(out)
			return
		}
		if err := os.WriteFile(renderOut, out, 0644); err != nil {
			fatal("Failed to write "+renderOut, err)
		}
		fmt.Printf("Rendered %s -> %s\n", id, renderOut)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "Write to file instead of stdout")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "Output format: html or markdown")
}
