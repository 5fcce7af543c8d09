// Package graph renders parsed workflows as Mermaid flowcharts for quick
// visual inspection before conversion.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/crossflow/pkg/workflow"
)

// GenerateMermaid produces Mermaid flowchart syntax for a source workflow.
// Shapes follow the control-flow kinds:
//   - start/end: ((circle))
//   - decision: {rhombus}
//   - fork/join: [[subroutine]]
//   - kill: [/parallelogram/]
//   - action: [rectangle]
//
// Error transitions are dotted; decision branches carry their guard as the
// edge label.
func GenerateMermaid(wf *workflow.Workflow) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range wf.Nodes() {
		safeID := sanitizeMermaidID(node.Name)

		opener, closer := "[", "]"
		switch node.Kind {
		case workflow.KindStart, workflow.KindEnd:
			opener, closer = "((", "))"
		case workflow.KindDecision:
			opener, closer = "{", "}"
		case workflow.KindFork, workflow.KindJoin:
			opener, closer = "[[", "]]"
		case workflow.KindKill:
			opener, closer = "[/", "/]"
		}

		label := node.Name
		if node.Kind == workflow.KindAction {
			label = fmt.Sprintf("%s <br/> %s", node.Name, node.Action.Type)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		writeEdges(&sb, safeID, node)
	}

	sb.WriteString("\n    classDef kill fill:#fecaca,stroke:#b91c1c,color:#000;\n")
	for _, node := range wf.Nodes() {
		if node.Kind == workflow.KindKill {
			sb.WriteString(fmt.Sprintf("    class %s kill;\n", sanitizeMermaidID(node.Name)))
		}
	}

	return sb.String()
}

func writeEdges(sb *strings.Builder, safeID string, node *workflow.Node) {
	edge := func(arrow, target string) {
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(target)))
	}

	switch node.Kind {
	case workflow.KindStart:
		edge("-->", node.Start.To)
	case workflow.KindAction:
		edge("-->", node.Action.OK)
		edge("-. error .->", node.Action.Error)
	case workflow.KindDecision:
		for _, c := range node.Decision.Cases {
			guard := strings.ReplaceAll(c.Guard, "\"", "'")
			edge(fmt.Sprintf("-- \"%s\" -->", guard), c.To)
		}
		edge("-- \"default\" -->", node.Decision.Default)
	case workflow.KindFork:
		for _, path := range node.Fork.Paths {
			edge("-->", path)
		}
	case workflow.KindJoin:
		edge("-->", node.Join.To)
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
