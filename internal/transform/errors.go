package transform

import "fmt"

// TransformationError reports a fatal failure while rewriting a node,
// typically an EL resolution error on a decision guard. It names the node so
// the source location stays actionable.
type TransformationError struct {
	Node string
	Err  error
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("failed to transform node %q: %v", e.Node, e.Err)
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}
