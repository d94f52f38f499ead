package parser

import (
	"fmt"

	"github.com/metaphox/winzig/ast"
)

// ParseError reports the first token the grammar could not accept.
type ParseError struct {
	Expected ast.TokenType // the token type the grammar required
	Actual   ast.TokenType // the type found, EOF when the input ran out
	Token    ast.Token     // the offending token; for EOF, positioned after the last token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: expected %s, got %s", e.Token.Line, e.Token.Col, quote(e.Expected), e.found())
}

// Position returns the 1-based line and column of the offending token.
func (e *ParseError) Position() (line, col int) {
	return e.Token.Line, e.Token.Col
}

func (e *ParseError) found() string {
	switch e.Actual {
	case ast.IDENTIFIER, ast.INTEGER, ast.CHAR, ast.STRING:
		return fmt.Sprintf("%s %q", e.Actual, e.Token.Literal)
	}
	return quote(e.Actual)
}

// quote wraps fixed spellings in single quotes; bracketed names such as
// <identifier> and EOF are left as they are.
func quote(tt ast.TokenType) string {
	if s, ok := ast.Spelling(tt); ok {
		return "'" + s + "'"
	}
	return tt.String()
}
