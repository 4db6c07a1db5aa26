package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellar"
)

var stripCmd = &cobra.Command{
	Use:   "strip SRC [DST]",
	Short: "Remove markdown cells from a notebook",
	Long: `Strip drops every markdown cell, keeping only code. With no DST the
file is rewritten in place.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		src := args[0]
		dst := src
		if len(args) == 2 {
			dst = args[1]
		}

		nb, err := loadNotebookFile(src)
		if err != nil {
			fatal("Failed to read "+src, err)
		}

		stripped := cellar.StripMarkdown(nb)
		if err := saveNotebookFile(dst, stripped); err != nil {
			fatal("Failed to write "+dst, err)
		}

		fmt.Printf("Dropped %d of %d cells: %s\n", len(nb.Cells)-len(stripped.Cells), len(nb.Cells), dst)
	},
}

func init() {
	rootCmd.AddCommand(stripCmd)
}
