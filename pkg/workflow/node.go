package workflow

// Kind identifies the control-flow behavior of a node.
type Kind string

const (
	// KindStart is the single entry point of a workflow. It carries exactly
	// one outgoing transition and never appears in the translated graph.
	KindStart Kind = "start"
	// KindAction invokes an external tool and carries exactly two outgoing
	// transitions: ok (success) and error (failure).
	KindAction Kind = "action"
	// KindDecision is a multi-way branch: an ordered case list plus a
	// mandatory default, evaluated first-match at translation time.
	KindDecision Kind = "decision"
	// KindFork fans out into parallel paths.
	KindFork Kind = "fork"
	// KindJoin waits for every path of its fork and carries a single
	// continuation.
	KindJoin Kind = "join"
	// KindKill terminates the workflow in failure with a message.
	KindKill Kind = "kill"
	// KindEnd terminates the workflow successfully.
	KindEnd Kind = "end"
)

// Node is a single parsed workflow node. Exactly one of the kind-specific
// spec fields is non-nil, matching Kind. Nodes are created by the parser and
// read-only afterwards.
type Node struct {
	Name string
	Kind Kind

	Start    *StartSpec
	Action   *ActionSpec
	Decision *DecisionSpec
	Fork     *ForkSpec
	Join     *JoinSpec
	Kill     *KillSpec
}

// StartSpec carries the single transition out of the start node.
type StartSpec struct {
	To string
}

// Property is one name/value pair of an action's configuration block.
// Document order is preserved for reproducible output.
type Property struct {
	Name  string
	Value string
}

// PrepareStep is one path operation executed before an action runs.
type PrepareStep struct {
	Op   string // "mkdir" or "delete"
	Path string
}

// Element is one raw child of an action payload, kept in document order so
// tool-specific mappers (e.g. the fs action) can interpret repeated or
// attribute-carrying children themselves.
type Element struct {
	Tag   string
	Attrs map[string]string
	Text  string
}

// ActionSpec carries everything an action node declares. The payload is
// tool-defined and passed through opaquely except for EL-substituted strings.
type ActionSpec struct {
	Type     string // payload tag: pig, map-reduce, shell, ...
	OK       string // transition taken on success
	Error    string // transition taken on failure
	Prepare  []PrepareStep
	Config   []Property
	Params   []string // raw "key=value" entries from <param> children
	Files    []string
	Archives []string
	Elements []Element
}

// PayloadMap flattens the scalar payload children into a lookup map. Repeated
// tags keep the first occurrence; mappers needing repetition read Elements.
func (a *ActionSpec) PayloadMap() map[string]string {
	m := make(map[string]string, len(a.Elements))
	for _, el := range a.Elements {
		if _, ok := m[el.Tag]; !ok {
			m[el.Tag] = el.Text
		}
	}
	return m
}

// ConfigMap returns the configuration block as a map.
func (a *ActionSpec) ConfigMap() map[string]string {
	m := make(map[string]string, len(a.Config))
	for _, p := range a.Config {
		m[p.Name] = p.Value
	}
	return m
}

// Case is one guarded branch of a decision. The guard is kept as the raw EL
// string; the parser never evaluates it.
type Case struct {
	Guard string
	To    string
}

// DecisionSpec is the ordered case list plus the mandatory default target.
type DecisionSpec struct {
	Cases   []Case
	Default string
}

// ForkSpec lists the parallel path entry nodes in document order.
type ForkSpec struct {
	Paths []string
}

// JoinSpec carries the single continuation after the fan-in.
type JoinSpec struct {
	To string
}

// KillSpec carries the human-readable failure message.
type KillSpec struct {
	Message string
}

// Targets returns every outgoing transition target of the node, in document
// order. Terminal nodes (kill, end) return nil.
func (n *Node) Targets() []string {
	switch n.Kind {
	case KindStart:
		return []string{n.Start.To}
	case KindAction:
		return []string{n.Action.OK, n.Action.Error}
	case KindDecision:
		targets := make([]string, 0, len(n.Decision.Cases)+1)
		for _, c := range n.Decision.Cases {
			targets = append(targets, c.To)
		}
		return append(targets, n.Decision.Default)
	case KindFork:
		return append([]string(nil), n.Fork.Paths...)
	case KindJoin:
		return []string{n.Join.To}
	}
	return nil
}

// Terminal reports whether the node has no outgoing transitions.
func (n *Node) Terminal() bool {
	return n.Kind == KindKill || n.Kind == KindEnd
}
