// Package transform rewrites a validated source workflow into the target
// dependency graph.
//
// Traversal is a single forward walk from the start node. Action and kill
// nodes become tasks, built at most once per source node; revisiting one via
// a different path only adds the new upstream edge. Start, end, fork, join
// and decision nodes are transparent: their semantics fold into the edges of
// their neighbors.
package transform

import (
	"log/slog"

	"github.com/aretw0/crossflow/internal/logging"
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/el"
	"github.com/aretw0/crossflow/pkg/workflow"
)

// Transformer builds the target graph for one workflow. Each instance is
// single-use: Transform consumes the traversal state.
type Transformer struct {
	wf       *workflow.Workflow
	resolver *el.Resolver
	logger   *slog.Logger

	graph   *dag.Graph
	onStack map[string]bool
}

// Option configures the transformer.
type Option func(*Transformer)

// WithLogger injects a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transformer) {
		t.logger = l
	}
}

// New creates a transformer over a validated workflow and the configuration
// mapping used for decision-guard evaluation.
func New(wf *workflow.Workflow, config map[string]string, opts ...Option) *Transformer {
	t := &Transformer{
		wf:       wf,
		resolver: el.NewResolver(config),
		logger:   logging.NewNop(),
		graph:    dag.NewGraph(wf.Name),
		onStack:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform walks the workflow from its start node and returns the target
// graph. The input workflow is read-only; all output state is freshly built.
func (t *Transformer) Transform() (*dag.Graph, error) {
	if err := t.walk(t.wf.StartName, nil); err != nil {
		return nil, err
	}
	t.logger.Info("transformed workflow", "workflow", t.wf.Name, "tasks", t.graph.Len())
	return t.graph, nil
}

// walk visits one source node with the dependency edges accumulated on the
// way in. Transparent nodes forward (and possibly retag) those edges;
// task-bearing nodes consume them.
func (t *Transformer) walk(name string, incoming []dag.Edge) error {
	if t.onStack[name] {
		return &workflow.CyclicGraphError{Node: name}
	}

	node, ok := t.wf.Node(name)
	if !ok {
		return &workflow.DanglingReferenceError{Node: t.wf.Name, Target: name}
	}

	switch node.Kind {
	case workflow.KindStart:
		return t.descend(name, func() error {
			return t.walk(node.Start.To, nil)
		})

	case workflow.KindEnd:
		// Successful terminal: the traversal branch simply ends.
		return nil

	case workflow.KindKill:
		task, err := t.ensureKillTask(node)
		if err != nil {
			return err
		}
		attach(task, incoming)
		return nil

	case workflow.KindAction:
		return t.walkAction(node, incoming)

	case workflow.KindFork:
		return t.descend(name, func() error {
			for _, path := range node.Fork.Paths {
				if err := t.walk(path, incoming); err != nil {
					return err
				}
			}
			return nil
		})

	case workflow.KindJoin:
		return t.descend(name, func() error {
			return t.walk(node.Join.To, incoming)
		})

	case workflow.KindDecision:
		target, guard, err := t.selectBranch(node)
		if err != nil {
			return &TransformationError{Node: name, Err: err}
		}
		t.logger.Debug("resolved decision", "node", name, "branch", target, "guard", guard)
		conditional := make([]dag.Edge, len(incoming))
		for i, e := range incoming {
			conditional[i] = dag.Edge{Upstream: e.Upstream, Kind: dag.DepConditional, Guard: guard}
		}
		return t.descend(name, func() error {
			return t.walk(target, conditional)
		})
	}

	return &workflow.MalformedNodeError{Node: name, Reason: "unknown node kind"}
}

// descend runs fn with name held on the traversal stack.
func (t *Transformer) descend(name string, fn func() error) error {
	t.onStack[name] = true
	err := fn()
	delete(t.onStack, name)
	return err
}

func (t *Transformer) walkAction(node *workflow.Node, incoming []dag.Edge) error {
	id := dag.TaskID(node.Name)

	if task, ok := t.graph.Task(id); ok {
		// Already fully resolved via another path: merge the new edges,
		// downstream is already built.
		attach(task, incoming)
		return nil
	}

	task := &dag.Task{
		ID:          id,
		Source:      node.Name,
		ActionType:  node.Action.Type,
		TriggerRule: dag.TriggerAllSuccess,
		Prepare:     node.Action.Prepare,
		Config:      node.Action.Config,
		Params:      node.Action.Params,
		Files:       node.Action.Files,
		Archives:    node.Action.Archives,
		Elements:    node.Action.Elements,
	}
	if err := t.graph.Add(task); err != nil {
		return err
	}
	attach(task, incoming)

	return t.descend(node.Name, func() error {
		if err := t.walk(node.Action.OK, []dag.Edge{{Upstream: id, Kind: dag.DepSuccess}}); err != nil {
			return err
		}
		return t.walk(node.Action.Error, []dag.Edge{{Upstream: id, Kind: dag.DepFailure}})
	})
}

func (t *Transformer) ensureKillTask(node *workflow.Node) (*dag.Task, error) {
	id := dag.TaskID(node.Name)
	if task, ok := t.graph.Task(id); ok {
		return task, nil
	}
	task := &dag.Task{
		ID:          id,
		Source:      node.Name,
		ActionType:  "kill",
		TriggerRule: dag.TriggerOneFailed,
		KillMessage: node.Kill.Message,
	}
	if err := t.graph.Add(task); err != nil {
		return nil, err
	}
	return task, nil
}

// selectBranch evaluates decision guards in document order; the first truthy
// result wins, otherwise the default target is taken.
func (t *Transformer) selectBranch(node *workflow.Node) (target, guard string, err error) {
	for _, c := range node.Decision.Cases {
		val, err := t.resolver.Resolve(c.Guard)
		if err != nil {
			return "", "", err
		}
		if el.Truthy(val) {
			return c.To, c.Guard, nil
		}
	}
	return node.Decision.Default, "default", nil
}

func attach(task *dag.Task, incoming []dag.Edge) {
	for _, e := range incoming {
		task.AddUpstream(e)
	}
}
