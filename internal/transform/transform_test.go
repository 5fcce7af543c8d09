package transform

import (
	"errors"
	"testing"

	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/workflow"
)

func startNode(to string) *workflow.Node {
	return &workflow.Node{Name: "start_node_1234", Kind: workflow.KindStart, Start: &workflow.StartSpec{To: to}}
}

func actionNode(name, ok, errTo string) *workflow.Node {
	return &workflow.Node{
		Name: name,
		Kind: workflow.KindAction,
		Action: &workflow.ActionSpec{
			Type:  "shell",
			OK:    ok,
			Error: errTo,
		},
	}
}

func endNode(name string) *workflow.Node {
	return &workflow.Node{Name: name, Kind: workflow.KindEnd}
}

func killNode(name, msg string) *workflow.Node {
	return &workflow.Node{Name: name, Kind: workflow.KindKill, Kill: &workflow.KillSpec{Message: msg}}
}

func build(t *testing.T, config map[string]string, nodes ...*workflow.Node) (*dag.Graph, error) {
	t.Helper()
	wf := workflow.NewWorkflow("test", "start_node_1234", nodes)
	return New(wf, config).Transform()
}

func mustBuild(t *testing.T, config map[string]string, nodes ...*workflow.Node) *dag.Graph {
	t.Helper()
	g, err := build(t, config, nodes...)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	return g
}

func upstreamIDs(t *testing.T, g *dag.Graph, id string) []dag.Edge {
	t.Helper()
	task, ok := g.Task(id)
	if !ok {
		t.Fatalf("task %q missing", id)
	}
	return task.Upstreams()
}

func TestTransform_LinearWithErrorPath(t *testing.T) {
	g := mustBuild(t, nil,
		startNode("crunch-data"),
		actionNode("crunch-data", "end", "fail"),
		killNode("fail", "boom"),
		endNode("end"),
	)

	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (control nodes are transparent)", g.Len())
	}

	crunch, _ := g.Task("crunch_data")
	if crunch == nil {
		t.Fatal("crunch_data task missing")
	}
	if crunch.Source != "crunch-data" {
		t.Errorf("Source = %q", crunch.Source)
	}
	if crunch.TriggerRule != dag.TriggerAllSuccess {
		t.Errorf("TriggerRule = %q", crunch.TriggerRule)
	}
	if len(crunch.Upstreams()) != 0 {
		t.Errorf("entry task has upstreams: %+v", crunch.Upstreams())
	}

	fail, _ := g.Task("fail")
	if fail == nil {
		t.Fatal("fail task missing")
	}
	if fail.TriggerRule != dag.TriggerOneFailed {
		t.Errorf("kill TriggerRule = %q", fail.TriggerRule)
	}
	if fail.KillMessage != "boom" {
		t.Errorf("KillMessage = %q", fail.KillMessage)
	}
	ups := fail.Upstreams()
	if len(ups) != 1 || ups[0] != (dag.Edge{Upstream: "crunch_data", Kind: dag.DepFailure}) {
		t.Errorf("kill upstreams = %+v", ups)
	}
}

func TestTransform_ForkJoin(t *testing.T) {
	g := mustBuild(t, nil,
		startNode("split"),
		&workflow.Node{Name: "split", Kind: workflow.KindFork, Fork: &workflow.ForkSpec{Paths: []string{"a", "b"}}},
		actionNode("a", "merge", "fail"),
		actionNode("b", "merge", "fail"),
		&workflow.Node{Name: "merge", Kind: workflow.KindJoin, Join: &workflow.JoinSpec{To: "final"}},
		actionNode("final", "end", "fail"),
		killNode("fail", "boom"),
		endNode("end"),
	)

	ups := upstreamIDs(t, g, "final")
	if len(ups) != 2 {
		t.Fatalf("final upstreams = %+v, want both fork branches", ups)
	}
	for _, e := range ups {
		if e.Kind != dag.DepSuccess {
			t.Errorf("edge %+v, want success kind", e)
		}
	}

	// Fork entries depend on nothing: the fork folded away.
	if ups := upstreamIDs(t, g, "a"); len(ups) != 0 {
		t.Errorf("a upstreams = %+v", ups)
	}
}

func TestTransform_DecisionFirstMatchWins(t *testing.T) {
	config := map[string]string{"enableA": "false", "enableB": "true"}

	g := mustBuild(t, config,
		startNode("prep"),
		actionNode("prep", "route", "fail"),
		&workflow.Node{Name: "route", Kind: workflow.KindDecision, Decision: &workflow.DecisionSpec{
			Cases: []workflow.Case{
				{Guard: "${enableA}", To: "branch-a"},
				{Guard: "${enableB}", To: "branch-b"},
			},
			Default: "end",
		}},
		actionNode("branch-a", "end", "fail"),
		actionNode("branch-b", "end", "fail"),
		killNode("fail", "boom"),
		endNode("end"),
	)

	if _, ok := g.Task("branch_a"); ok {
		t.Error("losing branch was not pruned")
	}

	ups := upstreamIDs(t, g, "branch_b")
	want := dag.Edge{Upstream: "prep", Kind: dag.DepConditional, Guard: "${enableB}"}
	if len(ups) != 1 || ups[0] != want {
		t.Errorf("branch_b upstreams = %+v, want %+v", ups, want)
	}
}

func TestTransform_DecisionDefault(t *testing.T) {
	config := map[string]string{"enableA": "false"}

	g := mustBuild(t, config,
		startNode("prep"),
		actionNode("prep", "route", "fail"),
		&workflow.Node{Name: "route", Kind: workflow.KindDecision, Decision: &workflow.DecisionSpec{
			Cases:   []workflow.Case{{Guard: "${enableA}", To: "branch-a"}},
			Default: "fallback",
		}},
		actionNode("branch-a", "end", "fail"),
		actionNode("fallback", "end", "fail"),
		killNode("fail", "boom"),
		endNode("end"),
	)

	ups := upstreamIDs(t, g, "fallback")
	want := dag.Edge{Upstream: "prep", Kind: dag.DepConditional, Guard: "default"}
	if len(ups) != 1 || ups[0] != want {
		t.Errorf("fallback upstreams = %+v, want %+v", ups, want)
	}
}

func TestTransform_DecisionUnresolvedGuard(t *testing.T) {
	_, err := build(t, nil,
		startNode("route"),
		&workflow.Node{Name: "route", Kind: workflow.KindDecision, Decision: &workflow.DecisionSpec{
			Cases:   []workflow.Case{{Guard: "${missing}", To: "end"}},
			Default: "end",
		}},
		endNode("end"),
	)

	var terr *TransformationError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want TransformationError", err)
	}
	if terr.Node != "route" {
		t.Errorf("Node = %q", terr.Node)
	}
}

func TestTransform_DiamondBuildsTaskOnce(t *testing.T) {
	g := mustBuild(t, nil,
		startNode("split"),
		&workflow.Node{Name: "split", Kind: workflow.KindFork, Fork: &workflow.ForkSpec{Paths: []string{"a", "b"}}},
		actionNode("a", "merge", "fail"),
		actionNode("b", "merge", "fail"),
		&workflow.Node{Name: "merge", Kind: workflow.KindJoin, Join: &workflow.JoinSpec{To: "tail"}},
		actionNode("tail", "end", "fail"),
		killNode("fail", "boom"),
		endNode("end"),
	)

	// Both a and b route their error path to the same kill task; it must be
	// built once with both failure edges merged.
	ups := upstreamIDs(t, g, "fail")
	if len(ups) != 3 {
		t.Fatalf("fail upstreams = %+v, want edges from a, b and tail", ups)
	}
	for _, e := range ups {
		if e.Kind != dag.DepFailure {
			t.Errorf("edge %+v, want failure kind", e)
		}
	}
}

func TestTransform_CycleDetected(t *testing.T) {
	_, err := build(t, nil,
		startNode("a"),
		actionNode("a", "b", "end"),
		actionNode("b", "a", "end"),
		endNode("end"),
	)

	var cyc *workflow.CyclicGraphError
	if !errors.As(err, &cyc) {
		t.Fatalf("error = %v, want CyclicGraphError", err)
	}
}
