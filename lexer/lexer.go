// Package lexer implements the WinZig lexer (tokeniser).
//
// The lexer converts a WinZig source string into a flat slice of [ast.Token]
// values. Call [Tokenize] for the whole input at once, or create a lexer with
// [New] and call [Lexer.NextToken] until it reports the end of input.
//
// Design notes:
//   - Single left-to-right pass; no backtracking across tokens.
//   - Fixed spellings (keywords, operators, delimiters) are tried first, in the
//     order of [ast.FixedTokens]. A keyword match is dropped when the next
//     character is a letter, so "orange" is one identifier rather than "or"
//     followed by "range". A digit or '_' does not drop it: "do2" is "do"
//     followed by 2.
//   - Comments are returned as tokens; the parser discards them.
//   - Errors are fatal: the first malformed token stops scanning and no partial
//     token slice is returned.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/metaphox/winzig/ast"
)

// Lexer holds all state required to tokenise a single WinZig source string.
// Create one with [New]; never copy a Lexer after first use.
type Lexer struct {
	input string // the full source text
	pos   int    // byte offset of the next unread character

	line int // 1-based line of input[pos]
	col  int // 1-based column of input[pos]
}

// New creates a [Lexer] positioned at the start of input.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize scans the whole of input and returns its tokens, comments included.
func Tokenize(input string) ([]ast.Token, error) {
	return New(input).Tokenize()
}

// Tokenize scans the remaining input. On error the tokens scanned so far are
// discarded.
func (l *Lexer) Tokenize() ([]ast.Token, error) {
	// Rough guess: one token per five bytes of source.
	toks := make([]ast.Token, 0, len(l.input)/5+1)
	for {
		tok, ok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

// NextToken scans one token. It returns ok == false once only whitespace
// remains.
func (l *Lexer) NextToken() (tok ast.Token, ok bool, err error) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return ast.Token{}, false, nil
	}

	if tok, ok := l.fixedToken(); ok {
		return l.end(tok), true, nil
	}

	ch := l.input[l.pos]
	switch {
	case isLetter(ch):
		tok = l.readIdentifier()
	case isDigit(ch):
		tok = l.readInteger()
	case ch == '\'':
		tok, err = l.readChar()
	case ch == '"':
		tok, err = l.readString()
	case ch == '#':
		tok = l.readLineComment()
	case ch == '{':
		tok, err = l.readBlockComment()
	default:
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		err = l.fail(l.line, l.col, r, ErrUnexpectedChar, "")
	}
	if err != nil {
		return ast.Token{}, false, err
	}
	return l.end(tok), true, nil
}

// end stamps tok with the position just past its last character.
func (l *Lexer) end(tok ast.Token) ast.Token {
	tok.EndLine, tok.EndCol = l.line, l.col
	return tok
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// advance moves the cursor forward n bytes, keeping line and column current.
func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.input); i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else if utf8.RuneStart(l.input[l.pos]) {
			// Continuation bytes of a multi-byte rune do not add a column.
			l.col++
		}
		l.pos++
	}
}

// skipWhitespace advances past space, tab, newline, form feed, carriage
// return and vertical tab.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && isWhitespace(l.input[l.pos]) {
		l.advance(1)
	}
}

// fixedToken tries every fixed spelling at the cursor in table order.
// A candidate that would run past the end of input is skipped; one ending
// exactly at the end of input is accepted.
func (l *Lexer) fixedToken() (ast.Token, bool) {
	rest := l.input[l.pos:]
	for _, ft := range fixedTokenTable {
		if !strings.HasPrefix(rest, ft.Spelling) {
			continue
		}
		if ft.keyword && len(rest) > len(ft.Spelling) && isAlpha(rest[len(ft.Spelling)]) {
			// Prefix of a longer identifier; let readIdentifier take it.
			return ast.Token{}, false
		}
		tok := ast.Token{Type: ft.Type, Literal: ft.Spelling, Line: l.line, Col: l.col}
		l.advance(len(ft.Spelling))
		return tok, true
	}
	return ast.Token{}, false
}

// readIdentifier scans [A-Za-z_][A-Za-z0-9_]* starting at the cursor.
func (l *Lexer) readIdentifier() ast.Token {
	start, line, col := l.pos, l.line, l.col
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.advance(1)
	}
	return ast.Token{Type: ast.IDENTIFIER, Literal: l.input[start:l.pos], Line: line, Col: col}
}

// readInteger scans a run of decimal digits.
func (l *Lexer) readInteger() ast.Token {
	start, line, col := l.pos, l.line, l.col
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.advance(1)
	}
	return ast.Token{Type: ast.INTEGER, Literal: l.input[start:l.pos], Line: line, Col: col}
}

// readChar scans a character literal: a quote, exactly one character, a quote.
// The token literal is the character alone.
func (l *Lexer) readChar() (ast.Token, error) {
	line, col := l.line, l.col
	l.advance(1) // opening '\''

	if l.pos >= len(l.input) {
		return ast.Token{}, l.fail(line, col, '\'', ErrUnterminated, "char literal")
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if r == '\'' {
		return ast.Token{}, l.fail(line, col, '\'', ErrMalformedChar, "empty char literal")
	}
	content := l.input[l.pos : l.pos+size]
	l.advance(size)

	if l.pos >= len(l.input) {
		return ast.Token{}, l.fail(line, col, '\'', ErrUnterminated, "char literal")
	}
	if l.input[l.pos] != '\'' {
		return ast.Token{}, l.fail(line, col, '\'', ErrMalformedChar, "char literal must hold exactly one character")
	}
	l.advance(1) // closing '\''
	return ast.Token{Type: ast.CHAR, Literal: content, Line: line, Col: col}, nil
}

// readString scans a double-quoted string. The content runs to the next '"'
// and may span lines.
func (l *Lexer) readString() (ast.Token, error) {
	line, col := l.line, l.col
	l.advance(1) // opening '"'

	end := strings.IndexByte(l.input[l.pos:], '"')
	if end < 0 {
		return ast.Token{}, l.fail(line, col, '"', ErrUnterminated, "string literal")
	}
	content := l.input[l.pos : l.pos+end]
	l.advance(end + 1)
	return ast.Token{Type: ast.STRING, Literal: content, Line: line, Col: col}, nil
}

// readLineComment scans '#' up to, not including, the next newline or the end
// of input. The literal excludes the '#'.
func (l *Lexer) readLineComment() ast.Token {
	line, col := l.line, l.col
	l.advance(1) // '#'
	start := l.pos
	end := strings.IndexByte(l.input[l.pos:], '\n')
	if end < 0 {
		end = len(l.input) - l.pos
	}
	l.advance(end)
	return ast.Token{Type: ast.COMMENT, Literal: l.input[start:l.pos], Line: line, Col: col}
}

// readBlockComment scans '{' up to and including the first '}'.
// Block comments do not nest.
func (l *Lexer) readBlockComment() (ast.Token, error) {
	start, line, col := l.pos, l.line, l.col
	end := strings.IndexByte(l.input[l.pos:], '}')
	if end < 0 {
		return ast.Token{}, l.fail(line, col, '{', ErrUnterminated, "block comment")
	}
	l.advance(end + 1)
	return ast.Token{Type: ast.BLOCK_COMMENT, Literal: l.input[start:l.pos], Line: line, Col: col}, nil
}

func (l *Lexer) fail(line, col int, ch rune, kind error, what string) *LexError {
	return &LexError{Line: line, Col: col, Char: ch, What: what, Err: kind}
}

// ── Character classes ─────────────────────────────────────────────────────────

// fixedEntry is an ast.FixedToken with its keyword flag precomputed.
type fixedEntry struct {
	ast.FixedToken
	keyword bool
}

var fixedTokenTable = func() []fixedEntry {
	fts := ast.FixedTokens()
	out := make([]fixedEntry, len(fts))
	for i, ft := range fts {
		out[i] = fixedEntry{FixedToken: ft, keyword: ft.Type.IsKeyword()}
	}
	return out
}()

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\f', '\r', '\v':
		return true
	}
	return false
}

// isLetter reports whether b can start an identifier.
func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

// isAlpha reports whether b is an ASCII letter. Only a letter after a keyword
// makes it part of a longer identifier.
func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isIdentPart reports whether b can continue an identifier.
func isIdentPart(b byte) bool {
	return isLetter(b) || isDigit(b)
}
