package main

import (
	"fmt"
	"os"

	"github.com/aretw0/crossflow"
	"github.com/aretw0/crossflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [input-dir]",
	Short: "Export the workflow graph visualization",
	Long:  `Parses the workflow document and outputs a Mermaid diagram (graph TD) representing the control-flow logic.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		conv, err := crossflow.New(dir)
		if err != nil {
			fmt.Printf("Error initializing crossflow: %v\n", err)
			os.Exit(1)
		}

		wf, _, err := conv.LoadWorkflow()
		if err != nil {
			fmt.Printf("Error parsing workflow: %v\n", err)
			os.Exit(1)
		}

		// Generate and print Mermaid graph
		fmt.Print(graph.GenerateMermaid(wf))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
