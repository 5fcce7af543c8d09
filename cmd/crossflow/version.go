package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/crossflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of crossflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crossflow version %s\n", strings.TrimSpace(crossflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
