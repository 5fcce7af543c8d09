package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/crossflow/pkg/dag"
)

// ConversionReport summarizes a finished conversion as markdown, ready for
// the glamour renderer or plain output when stdout is not a terminal.
func ConversionReport(graph *dag.Graph, outputPath string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Conversion: %s\n\n", graph.Name)
	fmt.Fprintf(&sb, "Wrote **%d** tasks to `%s`.\n\n", graph.Len(), outputPath)

	sb.WriteString("| Task | Source Node | Type | Trigger Rule | Upstreams |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, task := range graph.Tasks() {
		ups := make([]string, 0, len(task.Upstreams()))
		for _, edge := range task.Upstreams() {
			label := edge.Upstream
			if edge.Kind == dag.DepFailure {
				label += " (error)"
			}
			if edge.Guard != "" {
				label += " (guarded)"
			}
			ups = append(ups, label)
		}
		upstream := strings.Join(ups, ", ")
		if upstream == "" {
			upstream = "-"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s |\n",
			task.ID, task.Source, task.ActionType, task.TriggerRule, upstream)
	}

	return sb.String()
}
