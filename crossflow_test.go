package crossflow

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/crossflow/pkg/dag"
)

func demoConverter(t *testing.T) *Converter {
	t.Helper()
	conv, err := New("examples/demo",
		WithUser("etl"),
		WithStartName("start_node_1234"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return conv
}

func TestConvert_DemoBundle(t *testing.T) {
	conv := demoConverter(t)
	outPath := filepath.Join(t.TempDir(), "demo.py")

	result, err := conv.Convert(context.Background(), outPath)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// pig, shell, ssh and the kill terminal; control nodes are transparent.
	if result.Graph.Len() != 4 {
		t.Errorf("Len() = %d, want 4", result.Graph.Len())
	}

	ssh, ok := result.Graph.Task("ssh_node")
	if !ok {
		t.Fatal("ssh_node task missing")
	}
	ups := ssh.Upstreams()
	if len(ups) != 2 {
		t.Fatalf("ssh_node upstreams = %+v, want both fork branches", ups)
	}
	for _, e := range ups {
		if e.Kind != dag.DepConditional || e.Guard != "${runNotify}" {
			t.Errorf("edge %+v, want conditional on ${runNotify}", e)
		}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	artifact := string(data)
	for _, want := range []string{
		"dataproc_operator",
		"bash_operator.BashOperator",
		"remote_host='airflow@node1.example.com'",
		"'demo',",
		"fail = bash_operator.BashOperator",
		"ssh_node.set_upstream(pig_node)  # when: ${runNotify}",
	} {
		if !strings.Contains(artifact, want) {
			t.Errorf("artifact missing %q", want)
		}
	}

	// The shell action's file reference gets mirrored next to the artifact.
	if len(result.CopiedAssets) != 1 || result.CopiedAssets[0] != "echo.sh" {
		t.Errorf("CopiedAssets = %v", result.CopiedAssets)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(outPath), "echo.sh")); err != nil {
		t.Errorf("copied asset missing: %v", err)
	}
}

func TestConvert_Deterministic(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := filepath.Join(dir, "a.py")
	second := filepath.Join(dir, "b.py")
	if _, err := demoConverter(t).Convert(ctx, first); err != nil {
		t.Fatal(err)
	}
	if _, err := demoConverter(t).Convert(ctx, second); err != nil {
		t.Fatal(err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Error("repeated conversions of the same bundle differ")
	}
}

func TestConvert_PropertiesOverride(t *testing.T) {
	conv, err := New("examples/demo",
		WithUser("etl"),
		WithStartName("start_node_1234"),
		WithProperties(map[string]string{"runNotify": "false"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	result, err := conv.Convert(context.Background(), filepath.Join(t.TempDir(), "demo.py"))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// With the notify guard off, the decision takes the default branch and
	// the ssh task disappears.
	if _, ok := result.Graph.Task("ssh_node"); ok {
		t.Error("ssh_node present despite falsy guard")
	}
	if result.Graph.Len() != 3 {
		t.Errorf("Len() = %d, want 3", result.Graph.Len())
	}
}

func TestConvert_DAGNameAndTemplateOverrides(t *testing.T) {
	tplDir := t.TempDir()
	override := "{{.TaskID}} = custom.SSHOperator(task_id={{pystr .TaskID}})\n"
	if err := os.WriteFile(filepath.Join(tplDir, "ssh.tpl"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	conv, err := New("examples/demo",
		WithUser("etl"),
		WithStartName("start_node_1234"),
		WithDAGName("renamed_dag"),
		WithTemplateOverrides(tplDir),
	)
	if err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(t.TempDir(), "demo.py")
	if _, err := conv.Convert(context.Background(), outPath); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	data, _ := os.ReadFile(outPath)
	artifact := string(data)
	if !strings.Contains(artifact, "'renamed_dag',") {
		t.Error("DAG name override not applied")
	}
	if !strings.Contains(artifact, "ssh_node = custom.SSHOperator(task_id='ssh_node')") {
		t.Errorf("ssh template override not applied:\n%s", artifact)
	}
	if !strings.Contains(artifact, "pig_node = dataproc_operator.DataProcPigOperator(") {
		t.Error("non-overridden templates lost their built-in rendering")
	}
}

func TestConvert_MissingBundle(t *testing.T) {
	conv, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conv.Convert(context.Background(), filepath.Join(t.TempDir(), "out.py")); err == nil {
		t.Error("Convert() succeeded without a workflow document")
	}
}

func TestTranslate_InMemory(t *testing.T) {
	definition := []byte(`
<workflow-app name="mini">
    <start to="say"/>
    <action name="say">
        <shell><exec>echo</exec><argument>${greeting}</argument></shell>
        <ok to="end"/>
        <error to="fail"/>
    </action>
    <kill name="fail"><message>boom</message></kill>
    <end name="end"/>
</workflow-app>`)

	conv, err := New("", WithUser("etl"), WithStartName("start_node_1234"))
	if err != nil {
		t.Fatal(err)
	}

	artifact, err := conv.Translate(context.Background(), definition, map[string]string{"greeting": "hello"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	out := string(artifact)
	for _, want := range []string{
		"'mini',",
		"say = bash_operator.BashOperator(",
		"'.join(['hello'])",
		"fail.set_upstream(say)  # error path",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("artifact missing %q\n---\n%s", want, out)
		}
	}
}

func TestLoadWorkflow(t *testing.T) {
	wf, config, err := demoConverter(t).LoadWorkflow()
	if err != nil {
		t.Fatalf("LoadWorkflow() error = %v", err)
	}
	if wf.Name != "demo" {
		t.Errorf("Name = %q", wf.Name)
	}
	if config["userName"] != "etl" {
		t.Errorf("userName = %q, want the user seed substituted into properties", config["userName"])
	}
}
