package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellar"
)

var markdownizeCmd = &cobra.Command{
	Use:   "markdownize SRC [DST]",
	Short: "Turn every code cell into a fenced markdown cell",
	Long: `Markdownize rewrites code cells as markdown cells holding a python
code fence, producing a read-only rendition of the notebook. With no
DST the file is rewritten in place.`,
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

		if err := saveNotebookFile(dst, cellar.Markdownize(nb)); err != nil {
			fatal("Failed to write "+dst, err)
		}

		fmt.Printf("Markdownized %s -> %s\n", src, dst)
	},
}

func init() {
	rootCmd.AddCommand(markdownizeCmd)
}
