// Package dag models the translated target graph: tasks connected by
// dependency edges. The transformer is the only producer; once handed to the
// emitter the graph is treated as immutable.
package dag

import (
	"fmt"

	"github.com/aretw0/crossflow/pkg/workflow"
)

// DepKind classifies a dependency edge.
type DepKind string

const (
	// DepSuccess fires when the upstream task succeeds.
	DepSuccess DepKind = "success"
	// DepFailure fires when the upstream task fails (the error path of an
	// action, typically ending in a kill-derived task).
	DepFailure DepKind = "failure"
	// DepConditional fires on the decision branch recorded in Guard.
	DepConditional DepKind = "conditional"
)

// Trigger rules carried onto tasks for the target runtime.
const (
	TriggerAllSuccess = "all_success"
	TriggerOneFailed  = "one_failed"
)

// TaskID derives a target task identifier from a source node name. Hyphens
// and dots are not valid in target identifiers and map to underscores; the
// derivation is total, so equal source names always yield equal identifiers.
func TaskID(source string) string {
	id := make([]byte, len(source))
	for i := 0; i < len(source); i++ {
		c := source[i]
		if c == '-' || c == '.' {
			c = '_'
		}
		id[i] = c
	}
	return string(id)
}

// Edge is one upstream dependency of a task.
type Edge struct {
	Upstream string
	Kind     DepKind
	// Guard holds the winning decision guard (or "default") for
	// conditional edges.
	Guard string
}

// Task is one target node. The identifier derives from the source node name;
// Source keeps the original spelling for error reporting.
type Task struct {
	ID          string
	Source      string
	ActionType  string
	TriggerRule string

	Prepare  []workflow.PrepareStep
	Config   []workflow.Property
	Params   []string
	Files    []string
	Archives []string
	Elements []workflow.Element

	// KillMessage is set on failure-terminal tasks only.
	KillMessage string

	upstreams []Edge
}

// AddUpstream records a dependency edge, ignoring exact duplicates so that
// diamond topologies do not double-count.
func (t *Task) AddUpstream(e Edge) {
	for _, existing := range t.upstreams {
		if existing == e {
			return
		}
	}
	t.upstreams = append(t.upstreams, e)
}

// Upstreams returns the dependency edges in insertion order.
func (t *Task) Upstreams() []Edge {
	return append([]Edge(nil), t.upstreams...)
}

// PayloadMap flattens the scalar payload elements into a lookup map.
func (t *Task) PayloadMap() map[string]string {
	m := make(map[string]string, len(t.Elements))
	for _, el := range t.Elements {
		if _, ok := m[el.Tag]; !ok {
			m[el.Tag] = el.Text
		}
	}
	return m
}

// Graph is the target task set, insertion-ordered.
type Graph struct {
	Name  string
	tasks map[string]*Task
	order []string
}

// NewGraph creates an empty target graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:  name,
		tasks: make(map[string]*Task),
	}
}

// Add inserts a task. Task identifiers are unique; the transformer builds
// each at most once per source node.
func (g *Graph) Add(t *Task) error {
	if _, ok := g.tasks[t.ID]; ok {
		return fmt.Errorf("task %q already present in target graph", t.ID)
	}
	g.tasks[t.ID] = t
	g.order = append(g.order, t.ID)
	return nil
}

// Task looks up a task by identifier.
func (g *Graph) Task(id string) (*Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Tasks returns all tasks in insertion order.
func (g *Graph) Tasks() []*Task {
	out := make([]*Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Len returns the task count.
func (g *Graph) Len() int {
	return len(g.order)
}
