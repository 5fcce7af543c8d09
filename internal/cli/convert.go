package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/crossflow"
	"github.com/aretw0/crossflow/internal/presentation/tui"
	"github.com/aretw0/crossflow/pkg/dag"
)

// ConvertOptions carries everything the convert command collected from flags
// and the config file.
type ConvertOptions struct {
	InputDir   string
	OutputPath string
	User       string
	StartName  string
	Quiet      bool
	Debug      bool

	Config *Config
}

// RunConvert executes a full conversion and prints the report.
func RunConvert(ctx context.Context, opts ConvertOptions) error {
	logger := createLogger(opts.Debug)

	conv, err := newConverter(opts.InputDir, opts.User, opts.StartName, opts.Config, opts.Debug)
	if err != nil {
		return err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = defaultOutputPath(opts.InputDir)
	}

	result, err := conv.Convert(ctx, outputPath)
	if err != nil {
		return err
	}
	logger.Info("conversion finished", "artifact", result.ArtifactPath, "tasks", result.Graph.Len())

	if opts.Quiet {
		return nil
	}
	printReport(result.Graph, result.ArtifactPath)
	if len(result.CopiedAssets) > 0 {
		printSystemMessage("Copied assets: %s", strings.Join(result.CopiedAssets, ", "))
	}
	return nil
}

// newConverter assembles the library converter from CLI inputs. Flag values
// win over config file values.
func newConverter(inputDir, user, startName string, cfg *Config, debug bool) (*crossflow.Converter, error) {
	if cfg == nil {
		cfg = &Config{Schedule: 3, StartDaysAgo: 3}
	}
	if user == "" {
		user = cfg.User
	}

	convOpts := []crossflow.Option{
		crossflow.WithLogger(createLogger(debug)),
		crossflow.WithSchedule(cfg.Schedule),
		crossflow.WithStartDaysAgo(cfg.StartDaysAgo),
	}
	if user != "" {
		convOpts = append(convOpts, crossflow.WithUser(user))
	}
	if startName != "" {
		convOpts = append(convOpts, crossflow.WithStartName(startName))
	}
	if cfg.DAGName != "" {
		convOpts = append(convOpts, crossflow.WithDAGName(cfg.DAGName))
	}
	if cfg.TemplateDir != "" {
		convOpts = append(convOpts, crossflow.WithTemplateOverrides(cfg.TemplateDir))
	}
	if len(cfg.Properties) > 0 {
		convOpts = append(convOpts, crossflow.WithProperties(cfg.Properties))
	}

	return crossflow.New(inputDir, convOpts...)
}

// defaultOutputPath derives the artifact path from the input bundle name.
func defaultOutputPath(inputDir string) string {
	base := filepath.Base(strings.TrimRight(inputDir, "/"))
	if base == "." || base == "" {
		base = "workflow"
	}
	return filepath.Join("output", dag.TaskID(base)+".py")
}

// printReport renders the conversion summary, through glamour when stdout is
// a terminal and as plain markdown otherwise.
func printReport(graph *dag.Graph, artifactPath string) {
	report := tui.ConversionReport(graph, artifactPath)

	if stdoutIsTerminal() {
		render := tui.NewRenderer()
		if out, err := render(report); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(report)
}
