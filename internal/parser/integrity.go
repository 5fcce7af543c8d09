package parser

import (
	"fmt"

	"github.com/aretw0/crossflow/pkg/workflow"
)

// checkIntegrity resolves every transition target against the node mapping.
func checkIntegrity(wf *workflow.Workflow) error {
	for _, node := range wf.Nodes() {
		for _, target := range node.Targets() {
			if _, ok := wf.Node(target); !ok {
				return &workflow.DanglingReferenceError{Node: node.Name, Target: target}
			}
		}
	}
	return nil
}

// checkForkJoin verifies the structural pairing of forks and joins: every
// path out of a fork must reach a join node, and all paths of one fork must
// converge on the same join.
func checkForkJoin(wf *workflow.Workflow) error {
	for _, node := range wf.Nodes() {
		if node.Kind != workflow.KindFork {
			continue
		}
		var join string
		for _, path := range node.Fork.Paths {
			j, err := findJoin(wf, node.Name, path, make(map[string]bool))
			if err != nil {
				return err
			}
			if join == "" {
				join = j
			} else if join != j {
				return &workflow.MalformedNodeError{
					Node:   node.Name,
					Reason: fmt.Sprintf("fork paths converge on different joins (%q and %q)", join, j),
				}
			}
		}
	}
	return nil
}

// findJoin follows success transitions from a fork path entry until the
// first join node. Action error transitions leave the fork scope and are
// not followed here.
func findJoin(wf *workflow.Workflow, fork, name string, visited map[string]bool) (string, error) {
	if visited[name] {
		return "", &workflow.MalformedNodeError{
			Node:   fork,
			Reason: fmt.Sprintf("fork path through %q never reaches a join", name),
		}
	}
	visited[name] = true

	node, ok := wf.Node(name)
	if !ok {
		// Unresolved targets are reported by the integrity pass.
		return "", &workflow.DanglingReferenceError{Node: fork, Target: name}
	}

	switch node.Kind {
	case workflow.KindJoin:
		return node.Name, nil
	case workflow.KindAction:
		return findJoin(wf, fork, node.Action.OK, visited)
	case workflow.KindDecision:
		// Branches may converge, so each follows its own copy of the
		// visited set.
		var join string
		for _, target := range node.Targets() {
			j, err := findJoin(wf, fork, target, copyVisited(visited))
			if err != nil {
				return "", err
			}
			if join == "" {
				join = j
			} else if join != j {
				return "", &workflow.MalformedNodeError{
					Node:   fork,
					Reason: fmt.Sprintf("decision %q branches reach different joins inside fork", node.Name),
				}
			}
		}
		return join, nil
	case workflow.KindFork:
		// A nested fork resolves through its own join first.
		inner, err := findJoin(wf, node.Name, node.Fork.Paths[0], visited)
		if err != nil {
			return "", err
		}
		innerNode, _ := wf.Node(inner)
		return findJoin(wf, fork, innerNode.Join.To, visited)
	case workflow.KindKill, workflow.KindEnd:
		return "", &workflow.MalformedNodeError{
			Node:   fork,
			Reason: fmt.Sprintf("fork path terminates at %q before reaching a join", node.Name),
		}
	}
	return "", &workflow.MalformedNodeError{Node: fork, Reason: "fork path re-entered the start node"}
}

func copyVisited(visited map[string]bool) map[string]bool {
	out := make(map[string]bool, len(visited))
	for k, v := range visited {
		out[k] = v
	}
	return out
}
