package workflow

// Workflow is the validated source graph: the node mapping plus the start
// node reference. It is produced by the parser and read-only afterwards.
type Workflow struct {
	Name      string
	StartName string

	nodes map[string]*Node
	order []string
}

// NewWorkflow assembles a workflow from nodes in document order. It is the
// parser's constructor; it assumes per-node validation already happened.
func NewWorkflow(name, startName string, nodes []*Node) *Workflow {
	wf := &Workflow{
		Name:      name,
		StartName: startName,
		nodes:     make(map[string]*Node, len(nodes)),
		order:     make([]string, 0, len(nodes)),
	}
	for _, n := range nodes {
		wf.nodes[n.Name] = n
		wf.order = append(wf.order, n.Name)
	}
	return wf
}

// Node looks up a node by name.
func (w *Workflow) Node(name string) (*Node, bool) {
	n, ok := w.nodes[name]
	return n, ok
}

// Start returns the start node.
func (w *Workflow) Start() *Node {
	n := w.nodes[w.StartName]
	return n
}

// Nodes returns all nodes in document order.
func (w *Workflow) Nodes() []*Node {
	out := make([]*Node, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.nodes[name])
	}
	return out
}

// Len returns the node count.
func (w *Workflow) Len() int {
	return len(w.order)
}
