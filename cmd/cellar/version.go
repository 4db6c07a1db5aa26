package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellar"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cellar",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cellar version %s\n", cellar.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
