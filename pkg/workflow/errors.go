package workflow

import "fmt"

// MalformedNodeError reports a node missing a required child element or
// carrying an unrecognized kind tag.
type MalformedNodeError struct {
	Node   string
	Reason string
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed node %q: %s", e.Node, e.Reason)
}

// DuplicateNodeError reports two nodes sharing one name in a document.
type DuplicateNodeError struct {
	Node string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node name %q", e.Node)
}

// DanglingReferenceError reports a transition whose target name does not
// resolve to any node in the document.
type DanglingReferenceError struct {
	Node   string
	Target string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("node %q references unknown node %q", e.Node, e.Target)
}

// CyclicGraphError reports a node revisited while still on the traversal
// stack. Cycles are a structural error, never a retryable condition.
type CyclicGraphError struct {
	Node string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("cycle detected through node %q", e.Node)
}
