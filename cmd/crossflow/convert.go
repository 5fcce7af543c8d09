package main

import (
	"fmt"
	"os"

	"github.com/aretw0/crossflow/internal/cli"
	"github.com/spf13/cobra"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [input-dir]",
	Short: "Convert a workflow bundle into a DAG artifact",
	Long:  `Reads workflow.xml (plus optional job.properties) from the input directory, translates the control-flow graph into a dependency DAG and writes the rendered artifact.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputDir := "."
		if len(args) > 0 {
			inputDir = args[0]
		}

		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		output, _ := cmd.Flags().GetString("output")
		user, _ := cmd.Flags().GetString("user")
		startName, _ := cmd.Flags().GetString("start-name")
		quiet, _ := cmd.Flags().GetBool("quiet")

		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		opts := cli.ConvertOptions{
			InputDir:   inputDir,
			OutputPath: output,
			User:       user,
			StartName:  startName,
			Quiet:      quiet,
			Debug:      debug,
			Config:     cfg,
		}
		if err := cli.RunConvert(cmd.Context(), opts); err != nil {
			fmt.Printf("Conversion failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("output", "o", "", "Artifact output path (default output/<name>.py)")
	convertCmd.Flags().StringP("user", "u", "", "User seeded as user.name in the configuration")
	convertCmd.Flags().String("start-name", "", "Pin the generated entry node name for reproducible output")
	convertCmd.Flags().BoolP("quiet", "q", false, "Suppress the conversion report")
}
