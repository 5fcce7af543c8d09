package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crossflow",
	Short: "Crossflow converts control-flow workflow XML into DAG artifacts",
	Long:  `Crossflow translates control-flow workflow definitions (actions, decisions, forks and joins) into dependency-driven DAG artifacts for a scheduler.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to crossflow.yaml (defaults to ./crossflow.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
