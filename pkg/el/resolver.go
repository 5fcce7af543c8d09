package el

import "strings"

// builtin is one entry of the fixed function set. Functions with a lenient
// argument policy see missing variables as empty strings instead of failing;
// that is the "default policy" a lookup can fall back on.
type builtin struct {
	fn      func(args []string) string
	lenient bool
}

var builtins = map[string]builtin{
	// firstNotNull returns the first non-empty argument.
	"firstNotNull": {
		fn: func(args []string) string {
			for _, a := range args {
				if a != "" {
					return a
				}
			}
			return ""
		},
		lenient: true,
	},
	// concat joins all arguments.
	"concat": {
		fn: func(args []string) string {
			return strings.Join(args, "")
		},
	},
}

// Resolver evaluates expressions against a configuration mapping. It holds
// no other state: evaluation is pure and the resolver is safe for reuse.
type Resolver struct {
	config map[string]string
}

// NewResolver creates a resolver over the supplied configuration mapping.
// The mapping is consumed read-only.
func NewResolver(config map[string]string) *Resolver {
	return &Resolver{config: config}
}

// Eval evaluates a parsed expression to its string value.
func (r *Resolver) Eval(expr Expr) (string, error) {
	return r.eval(expr, false)
}

func (r *Resolver) eval(expr Expr, lenient bool) (string, error) {
	switch e := expr.(type) {
	case Literal:
		return e.Value, nil
	case Variable:
		val, ok := r.config[e.Name]
		if !ok {
			if lenient {
				return "", nil
			}
			return "", &UnresolvedVariableError{Name: e.Name}
		}
		return val, nil
	case Call:
		b, ok := builtins[e.Func]
		if !ok {
			return "", &UnsupportedExpressionError{Expr: e.String(), Reason: "unknown function " + e.Func}
		}
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			val, err := r.eval(a, b.lenient)
			if err != nil {
				return "", err
			}
			args[i] = val
		}
		return b.fn(args), nil
	}
	return "", &UnsupportedExpressionError{Expr: expr.String(), Reason: "unknown expression variant"}
}

// Resolve parses and evaluates one expression string. A surrounding ${...}
// wrapper is accepted and stripped; anything else is treated as the bare
// expression (decision guards appear both ways).
func (r *Resolver) Resolve(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "${") && strings.HasSuffix(trimmed, "}") {
		trimmed = trimmed[2 : len(trimmed)-1]
	}
	expr, err := Parse(trimmed)
	if err != nil {
		return "", err
	}
	return r.Eval(expr)
}

// Interpolate replaces every ${...} placeholder in s with its evaluated
// value. Text outside placeholders passes through unchanged.
func (r *Resolver) Interpolate(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	var sb strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			return "", &UnsupportedExpressionError{Expr: s, Reason: "unterminated ${...} placeholder"}
		}

		sb.WriteString(rest[:start])
		inner := rest[start+2 : start+end]
		expr, err := Parse(inner)
		if err != nil {
			return "", err
		}
		val, err := r.Eval(expr)
		if err != nil {
			return "", err
		}
		sb.WriteString(val)
		rest = rest[start+end+1:]
	}
}
