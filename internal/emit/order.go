package emit

import (
	"sort"

	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/workflow"
)

// order returns the tasks in the deterministic emission order: topological
// over dependency edges, picking among ready tasks by dependency count first
// and source node name second.
func order(g *dag.Graph) ([]*dag.Task, error) {
	tasks := g.Tasks()
	remaining := make(map[string]int, len(tasks))
	downstream := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		ups := t.Upstreams()
		remaining[t.ID] = len(ups)
		for _, e := range ups {
			downstream[e.Upstream] = append(downstream[e.Upstream], t.ID)
		}
	}

	depCount := func(id string) int {
		t, _ := g.Task(id)
		return len(t.Upstreams())
	}
	sourceName := func(id string) string {
		t, _ := g.Task(id)
		return t.Source
	}

	var ready []string
	for _, t := range tasks {
		if remaining[t.ID] == 0 {
			ready = append(ready, t.ID)
		}
	}

	out := make([]*dag.Task, 0, len(tasks))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			if depCount(ready[i]) != depCount(ready[j]) {
				return depCount(ready[i]) < depCount(ready[j])
			}
			return sourceName(ready[i]) < sourceName(ready[j])
		})
		id := ready[0]
		ready = ready[1:]

		task, _ := g.Task(id)
		out = append(out, task)
		for _, down := range downstream[id] {
			remaining[down]--
			if remaining[down] == 0 {
				ready = append(ready, down)
			}
		}
	}

	if len(out) != len(tasks) {
		// The transformer rejects cycles, so a shortfall here means the
		// graph was mutated after construction.
		for _, t := range tasks {
			if remaining[t.ID] > 0 {
				return nil, &workflow.CyclicGraphError{Node: t.Source}
			}
		}
	}
	return out, nil
}
