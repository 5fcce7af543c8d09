package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/crossflow/internal/actions"
	"github.com/aretw0/crossflow/pkg/dag"
	"github.com/aretw0/crossflow/pkg/workflow"
)

// relation is one rendered dependency line.
type relation struct {
	Up   string
	Down string
	Note string
}

// relationLines flattens every dependency edge into rendered relations, in
// emission order of the downstream task and declaration order of its edges.
func relationLines(g *dag.Graph, ordered []*dag.Task) []relation {
	var out []relation
	for _, task := range ordered {
		downFirst, _ := actions.Endpoints(task)
		for _, e := range task.Upstreams() {
			up, ok := g.Task(e.Upstream)
			if !ok {
				continue
			}
			_, upLast := actions.Endpoints(up)
			out = append(out, relation{
				Up:   upLast,
				Down: downFirst,
				Note: edgeNote(e),
			})
		}
	}
	return out
}

func edgeNote(e dag.Edge) string {
	switch e.Kind {
	case dag.DepFailure:
		return "error path"
	case dag.DepConditional:
		if e.Guard == "default" {
			return "default branch"
		}
		return "when: " + e.Guard
	}
	return ""
}

// pyString renders a single-quoted Python string literal.
func pyString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return "'" + escaped + "'"
}

// pyDict renders an ordered property list as a Python dict literal.
func pyDict(props any) string {
	var pairs []string
	switch v := props.(type) {
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s: %s", pyString(k), pyString(v[k])))
		}
	case []workflow.Property:
		for _, p := range v {
			pairs = append(pairs, fmt.Sprintf("%s: %s", pyString(p.Name), pyString(p.Value)))
		}
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// pyList renders a string slice as a Python list literal.
func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = pyString(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
