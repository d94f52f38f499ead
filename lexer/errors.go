package lexer

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by LexError. Use errors.Is to test for them.
var (
	// ErrUnexpectedChar means no token can start with the character.
	ErrUnexpectedChar = errors.New("unexpected character")
	// ErrUnterminated means the input ended inside a char, string, or block
	// comment literal.
	ErrUnterminated = errors.New("unterminated literal")
	// ErrMalformedChar means a char literal was empty or held more than one
	// character.
	ErrMalformedChar = errors.New("malformed char literal")
)

// LexError reports the first malformed token in the input.
type LexError struct {
	Line int
	Col  int
	Char rune   // offending character, or the opening delimiter of a literal
	What string // which literal failed, empty for ErrUnexpectedChar
	Err  error  // one of the sentinel causes above
}

func (e *LexError) Error() string {
	if e.What == "" {
		return fmt.Sprintf("%d:%d: %v %q", e.Line, e.Col, e.Err, e.Char)
	}
	return fmt.Sprintf("%d:%d: %v: %s", e.Line, e.Col, e.Err, e.What)
}

func (e *LexError) Unwrap() error {
	return e.Err
}

// Position returns the 1-based line and column where the bad token starts.
func (e *LexError) Position() (line, col int) {
	return e.Line, e.Col
}
