package el

import "fmt"

// UnresolvedVariableError reports a variable lookup that found no value in
// the configuration mapping and had no default policy to fall back on.
type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variable %q", e.Name)
}

// UnsupportedExpressionError reports an expression outside the supported
// subset: an unknown function name or a construct the closed grammar cannot
// parse.
type UnsupportedExpressionError struct {
	Expr   string
	Reason string
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("unsupported expression %q: %s", e.Expr, e.Reason)
}
