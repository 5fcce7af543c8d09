package crossflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/crossflow/internal/emit"
	"github.com/aretw0/crossflow/internal/parser"
	"github.com/aretw0/crossflow/internal/props"
	"github.com/aretw0/crossflow/internal/transform"
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
	"github.com/aretw0/crossflow/pkg/workflow"
)

// Version is the release version, overridable at build time via -ldflags.
var Version = "0.1.0"

// Default file names inside an input bundle.
const (
	WorkflowFileName      = "workflow.xml"
	JobPropertiesFileName = "job.properties"
	ConfigPropertiesName  = "configuration.properties"
)

// Converter is the high-level entry point for the Crossflow library.
// It wraps the parse, transform and emit stages and provides a simplified
// API for consumers.
type Converter struct {
	inputDir     string
	user         string
	startName    string
	dagName      string
	templateDir  string
	schedule     int
	startDaysAgo int
	properties   map[string]string
	logger       *slog.Logger
}

// Option defines a functional option for configuring the Converter.
type Option func(*Converter)

// WithLogger sets a custom structured logger for the converter.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithUser sets the user name seeded into the configuration mapping as
// "user.name" before any properties files are applied.
func WithUser(user string) Option {
	return func(c *Converter) {
		c.user = user
	}
}

// WithSchedule sets the schedule interval of the generated artifact, in days.
func WithSchedule(days int) Option {
	return func(c *Converter) {
		c.schedule = days
	}
}

// WithStartDaysAgo sets the start date offset of the generated artifact.
func WithStartDaysAgo(days int) Option {
	return func(c *Converter) {
		c.startDaysAgo = days
	}
}

// WithStartName pins the generated name of the entry node, which otherwise
// gets a short random suffix. Reproducible runs and tests set this.
func WithStartName(name string) Option {
	return func(c *Converter) {
		c.startName = name
	}
}

// WithDAGName overrides the artifact's DAG name, which otherwise comes from
// the workflow document's name attribute.
func WithDAGName(name string) Option {
	return func(c *Converter) {
		c.dagName = name
	}
}

// WithTemplateOverrides points the emitter at a directory of *.tpl files
// layered over the built-in templates by file name.
func WithTemplateOverrides(dir string) Option {
	return func(c *Converter) {
		c.templateDir = dir
	}
}

// WithProperties merges extra configuration entries on top of whatever the
// properties files provide.
func WithProperties(properties map[string]string) Option {
	return func(c *Converter) {
		c.properties = properties
	}
}

// New initializes a Converter over an input bundle directory. The directory
// holds workflow.xml, an optional job.properties and an optional
// configuration.properties. An empty inputDir is allowed for consumers that
// only use Translate.
func New(inputDir string, opts ...Option) (*Converter, error) {
	c := &Converter{
		inputDir:     inputDir,
		schedule:     3,
		startDaysAgo: 3,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.user == "" {
		u := os.Getenv("USER")
		if u == "" {
			u = "airflow"
		}
		c.user = u
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if inputDir != "" {
		abs, err := filepath.Abs(inputDir)
		if err != nil {
			return nil, fmt.Errorf("invalid input path: %w", err)
		}
		c.inputDir = abs
	}

	return c, nil
}

// Result describes a finished conversion.
type Result struct {
	Graph        *dag.Graph
	ArtifactPath string
	// CopiedAssets lists the file and archive assets mirrored next to the
	// artifact, relative to the output directory.
	CopiedAssets []string
}

// LoadWorkflow loads the effective configuration and parses the workflow
// document, without converting it. Callers inspecting or visualizing the
// source graph use this.
func (c *Converter) LoadWorkflow() (*workflow.Workflow, map[string]string, error) {
	if c.inputDir == "" {
		return nil, nil, fmt.Errorf("input directory is required")
	}

	config, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	p := parser.New(c.parserOptions()...)
	wf, err := p.ParseFile(filepath.Join(c.inputDir, WorkflowFileName))
	if err != nil {
		return nil, nil, err
	}
	return wf, config, nil
}

// Convert runs the full pipeline: load configuration, parse, transform,
// render, write the artifact to outputPath and mirror referenced assets next
// to it.
func (c *Converter) Convert(ctx context.Context, outputPath string) (*Result, error) {
	wf, config, err := c.LoadWorkflow()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph, err := transform.New(wf, config, transform.WithLogger(c.logger)).Transform()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emitter, err := c.newEmitter()
	if err != nil {
		return nil, err
	}
	renderCtx := emit.RenderContext{
		DAGName:          c.artifactName(wf.Name),
		ScheduleInterval: c.schedule,
		StartDaysAgo:     c.startDaysAgo,
		Params:           config,
	}
	if err := emitter.WriteFile(outputPath, graph, el.NewResolver(config), renderCtx); err != nil {
		return nil, err
	}

	assets, err := c.copyAssets(graph, filepath.Dir(outputPath))
	if err != nil {
		return nil, err
	}

	return &Result{Graph: graph, ArtifactPath: outputPath, CopiedAssets: assets}, nil
}

// Translate converts an in-memory workflow document under the given
// configuration and returns the rendered artifact. It touches no files and
// backs the server mode.
func (c *Converter) Translate(ctx context.Context, definition []byte, config map[string]string) ([]byte, error) {
	merged := map[string]string{"user.name": c.user}
	for k, v := range c.properties {
		merged[k] = v
	}
	for k, v := range config {
		merged[k] = v
	}

	p := parser.New(c.parserOptions()...)
	wf, err := p.ParseBytes(definition)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph, err := transform.New(wf, merged, transform.WithLogger(c.logger)).Transform()
	if err != nil {
		return nil, err
	}

	emitter, err := c.newEmitter()
	if err != nil {
		return nil, err
	}
	return emitter.Render(graph, el.NewResolver(merged), emit.RenderContext{
		DAGName:          c.artifactName(wf.Name),
		ScheduleInterval: c.schedule,
		StartDaysAgo:     c.startDaysAgo,
		Params:           merged,
	})
}

func (c *Converter) newEmitter() (*emit.Emitter, error) {
	opts := []emit.Option{emit.WithLogger(c.logger)}
	if c.templateDir != "" {
		opts = append(opts, emit.WithTemplateOverrides(c.templateDir))
	}
	return emit.New(opts...)
}

// artifactName picks the DAG name for the artifact: the configured override,
// or the workflow's own name.
func (c *Converter) artifactName(workflowName string) string {
	if c.dagName != "" {
		return c.dagName
	}
	return workflowName
}

func (c *Converter) parserOptions() []parser.Option {
	opts := []parser.Option{parser.WithLogger(c.logger)}
	if c.startName != "" {
		opts = append(opts, parser.WithStartName(c.startName))
	}
	return opts
}

// loadConfig builds the effective configuration mapping: the user seed,
// job.properties, then the optional configuration.properties, then any
// WithProperties overrides.
func (c *Converter) loadConfig() (map[string]string, error) {
	seed := map[string]string{"user.name": c.user}

	config, err := props.LoadIfExists(seed,
		filepath.Join(c.inputDir, JobPropertiesFileName),
		filepath.Join(c.inputDir, ConfigPropertiesName),
	)
	if err != nil {
		return nil, err
	}

	for k, v := range c.properties {
		config[k] = v
	}
	return config, nil
}

// copyAssets mirrors every file and archive a task references into the
// output directory, so the artifact's relative paths stay valid. A trailing
// "#alias" fragment selects the runtime name and is stripped for the lookup.
func (c *Converter) copyAssets(graph *dag.Graph, outputDir string) ([]string, error) {
	var copied []string
	seen := make(map[string]bool)

	for _, task := range graph.Tasks() {
		refs := append(append([]string(nil), task.Files...), task.Archives...)
		for _, ref := range refs {
			rel, _, _ := strings.Cut(ref, "#")
			if rel == "" || seen[rel] {
				continue
			}
			seen[rel] = true

			src := filepath.Join(c.inputDir, rel)
			if _, err := os.Stat(src); err != nil {
				c.logger.Warn("referenced asset not found, skipping", "asset", rel)
				continue
			}
			dst := filepath.Join(outputDir, filepath.Base(rel))
			if err := copyFile(src, dst); err != nil {
				return nil, fmt.Errorf("failed to copy asset %q: %w", rel, err)
			}
			copied = append(copied, filepath.Base(rel))
		}
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
