package el

import (
	"strings"
)

// Parse reads a single expression. The input is the inside of a ${...}
// placeholder (or a bare guard string); surrounding whitespace is ignored.
func Parse(input string) (Expr, error) {
	s := &scanner{src: input}
	expr, err := s.parseExpr()
	if err != nil {
		return nil, err
	}
	s.skipSpaces()
	if !s.eof() {
		return nil, &UnsupportedExpressionError{Expr: input, Reason: "trailing characters after expression"}
	}
	return expr, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	return s.src[s.pos]
}

func (s *scanner) skipSpaces() {
	for !s.eof() && (s.peek() == ' ' || s.peek() == '\t') {
		s.pos++
	}
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == '-' || c == ':'
}

func (s *scanner) parseExpr() (Expr, error) {
	s.skipSpaces()
	if s.eof() {
		return nil, &UnsupportedExpressionError{Expr: s.src, Reason: "empty expression"}
	}

	c := s.peek()
	if c == '\'' || c == '"' {
		return s.parseLiteral(c)
	}

	ident := s.parseIdent()
	if ident == "" {
		return nil, &UnsupportedExpressionError{Expr: s.src, Reason: "expected literal, variable or function call"}
	}

	s.skipSpaces()
	if !s.eof() && s.peek() == '(' {
		return s.parseCall(ident)
	}
	return Variable{Name: ident}, nil
}

func (s *scanner) parseLiteral(quote byte) (Expr, error) {
	s.pos++ // opening quote
	end := strings.IndexByte(s.src[s.pos:], quote)
	if end < 0 {
		return nil, &UnsupportedExpressionError{Expr: s.src, Reason: "unterminated string literal"}
	}
	lit := Literal{Value: s.src[s.pos : s.pos+end]}
	s.pos += end + 1
	return lit, nil
}

func (s *scanner) parseIdent() string {
	start := s.pos
	for !s.eof() && isIdentChar(s.peek()) {
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) parseCall(name string) (Expr, error) {
	s.pos++ // opening paren
	call := Call{Func: name}

	s.skipSpaces()
	if !s.eof() && s.peek() == ')' {
		s.pos++
		return call, nil
	}

	for {
		arg, err := s.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		s.skipSpaces()
		if s.eof() {
			return nil, &UnsupportedExpressionError{Expr: s.src, Reason: "unterminated function call"}
		}
		switch s.peek() {
		case ',':
			s.pos++
		case ')':
			s.pos++
			return call, nil
		default:
			return nil, &UnsupportedExpressionError{Expr: s.src, Reason: "expected ',' or ')' in argument list"}
		}
	}
}
