// Package el evaluates the minimal expression-language subset appearing in
// decision guards and ${...} parameter interpolation.
//
// The grammar is deliberately closed: an expression is a quoted string
// literal, a configuration-variable lookup, or a call to one of a small fixed
// set of built-in functions. There is no general evaluator; anything outside
// this shape is rejected, never guessed at.
package el

import "strings"

// Expr is a parsed expression. The variant set is closed: Literal, Variable
// or Call.
type Expr interface {
	expr()
	String() string
}

// Literal is a quoted string constant.
type Literal struct {
	Value string
}

func (Literal) expr() {}

func (l Literal) String() string {
	return "'" + l.Value + "'"
}

// Variable is a configuration-variable lookup, e.g. user.name or nameNode.
type Variable struct {
	Name string
}

func (Variable) expr() {}

func (v Variable) String() string {
	return v.Name
}

// Call invokes a built-in function with already-parsed arguments.
type Call struct {
	Func string
	Args []Expr
}

func (Call) expr() {}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

// Truthy reports whether an evaluated guard selects its branch: the result
// must be non-empty and not the literal string "false".
func Truthy(s string) bool {
	return s != "" && s != "false"
}
