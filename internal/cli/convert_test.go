package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const miniWorkflow = `
<workflow-app name="mini">
    <start to="say"/>
    <action name="say">
        <shell><exec>echo</exec></shell>
        <ok to="end"/>
        <error to="fail"/>
    </action>
    <kill name="fail"><message>boom</message></kill>
    <end name="end"/>
</workflow-app>`

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "workflow.xml"), []byte(miniWorkflow), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunConvert(t *testing.T) {
	dir := writeBundle(t)
	out := filepath.Join(t.TempDir(), "mini.py")

	err := RunConvert(context.Background(), ConvertOptions{
		InputDir:   dir,
		OutputPath: out,
		User:       "etl",
		StartName:  "start_node_1234",
		Quiet:      true,
	})
	if err != nil {
		t.Fatalf("RunConvert() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("artifact not written: %v", err)
	}
}

func TestRunConvert_StartNameReachesParser(t *testing.T) {
	dir := writeBundle(t)

	// Pinning the entry node name onto an existing node must surface the
	// parser's duplicate check, proving the option is plumbed through.
	err := RunConvert(context.Background(), ConvertOptions{
		InputDir:   dir,
		OutputPath: filepath.Join(t.TempDir(), "mini.py"),
		StartName:  "say",
		Quiet:      true,
	})
	if err == nil {
		t.Error("RunConvert() succeeded with a colliding start name")
	}
}
