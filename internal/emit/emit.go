// Package emit serializes a target graph into the generated DAG artifact.
//
// Rendering is fully deterministic: tasks are emitted in topological order
// with ties broken by dependency count and then source node name, imports
// and parameter keys are sorted, so identical input always yields a
// byte-identical artifact. Nothing is written until the whole graph has
// rendered; a failed render leaves no partial file behind.
package emit

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/aretw0/crossflow/internal/actions"
	"github.com/aretw0/crossflow/internal/logging"
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
	"github.com/aretw0/crossflow/pkg/workflow"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

// baseImports is what the artifact skeleton itself needs, before any
// operator contributes its own.
var baseImports = []string{
	"import datetime",
	"from airflow import models",
	"from airflow.utils import dates",
}

// RenderContext carries the artifact-level settings.
type RenderContext struct {
	DAGName          string
	ScheduleInterval int
	StartDaysAgo     int
	// Params is the configuration mapping echoed into the artifact so the
	// generated DAG can reference it at runtime.
	Params map[string]string
}

// Emitter renders target graphs. One emitter may render many graphs.
type Emitter struct {
	tmpl        *template.Template
	logger      *slog.Logger
	overrideDir string
}

// Option configures the emitter.
type Option func(*Emitter)

// WithLogger injects a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = l
	}
}

// WithTemplateOverrides layers the *.tpl files of dir over the embedded set.
// Overrides replace embedded templates by file name, so a custom shell.tpl
// changes shell rendering while every other template stays built-in.
func WithTemplateOverrides(dir string) Option {
	return func(e *Emitter) {
		e.overrideDir = dir
	}
}

// New parses the embedded template set, then any configured overrides.
func New(opts ...Option) (*Emitter, error) {
	e := &Emitter{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	funcs := sprig.TxtFuncMap()
	funcs["pystr"] = pyString
	funcs["pydict"] = pyDict
	funcs["pylist"] = pyList

	tmpl, err := template.New("emit").Funcs(funcs).ParseFS(templatesFS, "templates/*.tpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse emitter templates: %w", err)
	}
	if e.overrideDir != "" {
		tmpl, err = tmpl.ParseGlob(filepath.Join(e.overrideDir, "*.tpl"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template overrides: %w", err)
		}
	}

	e.tmpl = tmpl
	return e, nil
}

// Render produces the full artifact for one graph.
func (e *Emitter) Render(g *dag.Graph, resolver *el.Resolver, ctx RenderContext) ([]byte, error) {
	ordered, err := order(g)
	if err != nil {
		return nil, err
	}

	importSet := make(map[string]bool)
	for _, imp := range baseImports {
		importSet[imp] = true
	}

	var blocks []string
	for _, task := range ordered {
		mapper, ok := actions.Lookup(task.ActionType)
		if !ok {
			return nil, &actions.UnsupportedActionTypeError{Node: task.Source, Type: task.ActionType}
		}
		for _, imp := range mapper.Imports() {
			importSet[imp] = true
		}
		params, err := mapper.Params(task, resolver)
		if err != nil {
			return nil, fmt.Errorf("failed to render task %q: %w", task.ID, err)
		}
		var block bytes.Buffer
		if err := e.tmpl.ExecuteTemplate(&block, mapper.Template(), params); err != nil {
			return nil, fmt.Errorf("failed to render task %q: %w", task.ID, err)
		}
		blocks = append(blocks, block.String())
		e.logger.Debug("rendered task", "task", task.ID, "type", task.ActionType)
	}

	imports := make([]string, 0, len(importSet))
	for imp := range importSet {
		imports = append(imports, imp)
	}
	sort.Strings(imports)

	var out bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&out, "dag.tpl", headerParams(ctx, imports)); err != nil {
		return nil, fmt.Errorf("failed to render artifact header: %w", err)
	}
	for _, block := range blocks {
		out.WriteString("\n")
		out.WriteString(indent(block, 4))
	}

	relations := relationLines(g, ordered)
	if len(relations) > 0 {
		var rel bytes.Buffer
		if err := e.tmpl.ExecuteTemplate(&rel, "relations.tpl", map[string]any{"Relations": relations}); err != nil {
			return nil, fmt.Errorf("failed to render relations: %w", err)
		}
		out.WriteString("\n")
		out.WriteString(indent(rel.String(), 4))
	}

	return out.Bytes(), nil
}

// WriteFile renders the graph and writes the artifact in one step, only
// after the full render succeeded.
func (e *Emitter) WriteFile(path string, g *dag.Graph, resolver *el.Resolver, ctx RenderContext) error {
	data, err := e.Render(g, resolver, ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	e.logger.Info("wrote artifact", "path", path, "bytes", len(data))
	return nil
}

type headerData struct {
	DAGName          string
	ScheduleInterval int
	StartDaysAgo     int
	Imports          []string
	Params           []workflow.Property
}

func headerParams(ctx RenderContext, imports []string) headerData {
	keys := make([]string, 0, len(ctx.Params))
	for k := range ctx.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make([]workflow.Property, 0, len(keys))
	for _, k := range keys {
		params = append(params, workflow.Property{Name: k, Value: ctx.Params[k]})
	}
	return headerData{
		DAGName:          ctx.DAGName,
		ScheduleInterval: ctx.ScheduleInterval,
		StartDaysAgo:     ctx.StartDaysAgo,
		Imports:          imports,
		Params:           params,
	}
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
