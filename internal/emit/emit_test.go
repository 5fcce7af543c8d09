package emit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/crossflow/internal/actions"
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
	"github.com/aretw0/crossflow/pkg/workflow"
)

func shellTask(id string) *dag.Task {
	return &dag.Task{
		ID:          id,
		Source:      id,
		ActionType:  "shell",
		TriggerRule: dag.TriggerAllSuccess,
		Elements: []workflow.Element{
			{Tag: "exec", Text: "run.sh"},
			{Tag: "argument", Text: "${target}"},
		},
	}
}

func demoGraph(t *testing.T) *dag.Graph {
	t.Helper()
	g := dag.NewGraph("demo")

	a := shellTask("extract")
	b := shellTask("load")
	b.AddUpstream(dag.Edge{Upstream: "extract", Kind: dag.DepSuccess})
	fail := &dag.Task{
		ID:          "fail",
		Source:      "fail",
		ActionType:  "kill",
		TriggerRule: dag.TriggerOneFailed,
		KillMessage: "workflow failed",
	}
	fail.AddUpstream(dag.Edge{Upstream: "extract", Kind: dag.DepFailure})
	fail.AddUpstream(dag.Edge{Upstream: "load", Kind: dag.DepFailure})

	for _, task := range []*dag.Task{a, b, fail} {
		if err := g.Add(task); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func render(t *testing.T, g *dag.Graph) []byte {
	t.Helper()
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	resolver := el.NewResolver(map[string]string{"target": "prod"})
	out, err := e.Render(g, resolver, RenderContext{
		DAGName:          "demo",
		ScheduleInterval: 3,
		StartDaysAgo:     3,
		Params:           map[string]string{"target": "prod", "user.name": "etl"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return out
}

func TestRender_Artifact(t *testing.T) {
	out := string(render(t, demoGraph(t)))

	for _, want := range []string{
		"# Generated by crossflow. Do not edit by hand.",
		"import datetime",
		"from airflow import models",
		"from airflow.operators import bash_operator",
		"PARAMS = {'target': 'prod', 'user.name': 'etl'}",
		"with models.DAG(",
		"    'demo',",
		"schedule_interval=datetime.timedelta(days=3)",
		"start_date=dates.days_ago(3)",
		"extract = bash_operator.BashOperator(",
		"bash_command='run.sh' + ' ' + ' '.join(['prod'])",
		"trigger_rule='one_failed'",
		"load.set_upstream(extract)",
		"fail.set_upstream(extract)  # error path",
		"fail.set_upstream(load)  # error path",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("artifact missing %q\n---\n%s", want, out)
		}
	}

	// Imports are emitted exactly once even when several operators need them.
	if n := strings.Count(out, "from airflow.operators import bash_operator"); n != 1 {
		t.Errorf("bash_operator imported %d times", n)
	}
}

func TestRender_Deterministic(t *testing.T) {
	first := render(t, demoGraph(t))
	second := render(t, demoGraph(t))
	if !bytes.Equal(first, second) {
		t.Error("identical graphs rendered differently")
	}
}

func TestRender_TopologicalOrder(t *testing.T) {
	out := string(render(t, demoGraph(t)))

	extract := strings.Index(out, "extract = bash_operator")
	load := strings.Index(out, "load = bash_operator")
	if extract < 0 || load < 0 || extract > load {
		t.Errorf("upstream task emitted after its dependent (extract@%d, load@%d)", extract, load)
	}
}

func TestRender_TemplateOverrides(t *testing.T) {
	dir := t.TempDir()
	override := "{{.TaskID}} = custom.ShellOperator(task_id={{pystr .TaskID}})\n"
	if err := os.WriteFile(filepath.Join(dir, "shell.tpl"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	e, err := New(WithTemplateOverrides(dir))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	resolver := el.NewResolver(map[string]string{"target": "prod"})
	out, err := e.Render(demoGraph(t), resolver, RenderContext{DAGName: "demo"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.Contains(string(out), "extract = custom.ShellOperator(task_id='extract')") {
		t.Errorf("override template not applied:\n%s", out)
	}
	if strings.Contains(string(out), "extract = bash_operator.BashOperator(") {
		t.Error("built-in shell template still rendered despite override")
	}
	// Templates without an override keep their built-in rendering.
	if !strings.Contains(string(out), "fail = bash_operator.BashOperator(") {
		t.Error("kill template lost its built-in rendering")
	}
}

func TestRender_TemplateOverridesBadDir(t *testing.T) {
	if _, err := New(WithTemplateOverrides(t.TempDir())); err == nil {
		t.Error("New() succeeded with an override directory holding no templates")
	}
}

func TestRender_UnsupportedActionType(t *testing.T) {
	g := dag.NewGraph("demo")
	if err := g.Add(&dag.Task{ID: "h", Source: "h", ActionType: "hive"}); err != nil {
		t.Fatal(err)
	}

	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.Render(g, el.NewResolver(nil), RenderContext{DAGName: "demo"})

	var unsupported *actions.UnsupportedActionTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want UnsupportedActionTypeError", err)
	}
	if unsupported.Type != "hive" {
		t.Errorf("Type = %q", unsupported.Type)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "demo.py")

	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	resolver := el.NewResolver(map[string]string{"target": "prod"})
	if err := e.WriteFile(path, demoGraph(t), resolver, RenderContext{DAGName: "demo"}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "with models.DAG(") {
		t.Error("written artifact looks truncated")
	}
}

func TestWriteFile_NoPartialOutput(t *testing.T) {
	g := dag.NewGraph("demo")
	if err := g.Add(&dag.Task{ID: "h", Source: "h", ActionType: "hive"}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "demo.py")
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.WriteFile(path, g, el.NewResolver(nil), RenderContext{DAGName: "demo"}); err == nil {
		t.Fatal("WriteFile() succeeded, want error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed render left a partial artifact behind")
	}
}
