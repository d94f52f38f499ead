// Package ast defines the token types, the Token struct, and the syntax tree
// node used by the WinZig lexer and parser.
//
// Tokens are the smallest meaningful units of a WinZig source file. Every token
// carries its type, the exact text it was scanned from, and its source position
// (line + column). Position is 1-based: the first character of a file is
// Line 1, Col 1.
package ast

import "fmt"

// TokenType identifies the category of a scanned token.
// The zero value (ILLEGAL) is reserved and never produced by the lexer.
type TokenType int

const (
	// ── Special ────────────────────────────────────────────────────────────────

	// ILLEGAL is the zero value. No scanned token has this type.
	ILLEGAL TokenType = iota
	// EOF is never emitted by the lexer. The parser reports it as the actual
	// token when it looks past the end of the token sequence.
	EOF

	// ── Scanned kinds ──────────────────────────────────────────────────────────

	// IDENTIFIER is a name: [A-Za-z_][A-Za-z0-9_]*
	IDENTIFIER
	// INTEGER is a decimal digit run, e.g. 0, 42.
	INTEGER
	// CHAR is a single-character literal. Literal holds the character only: 'a' → a
	CHAR
	// STRING is a double-quoted literal. Literal holds the content without quotes.
	// Strings may span lines; there are no escape sequences.
	STRING
	// COMMENT is a line comment: # to end of line. Literal excludes the '#'.
	COMMENT
	// BLOCK_COMMENT is a brace comment: { ... }. Literal includes both braces.
	BLOCK_COMMENT

	// ── Keywords ───────────────────────────────────────────────────────────────

	PROGRAM
	VAR
	CONST
	TYPE
	FUNCTION
	RETURN
	BEGIN
	END
	OUTPUT
	IF
	THEN
	ELSE
	WHILE
	DO
	CASE
	OF
	OTHERWISE
	REPEAT
	FOR
	UNTIL
	LOOP
	POOL
	EXIT
	MOD
	AND
	OR
	NOT
	READ
	SUCC
	PRED
	CHR
	ORD
	// EOFKW is the `eof` keyword (end-of-input test in expressions), not to be
	// confused with EOF, the end of the token sequence.
	EOFKW

	// ── Operators ──────────────────────────────────────────────────────────────

	SWAP   // :=:
	ASSIGN // :=
	DOTS   // ..
	LE     // <=
	NE     // <>
	LT     // <
	GE     // >=
	GT     // >
	EQ     // =
	PLUS   // +
	MINUS  // -
	MULT   // *
	DIVIDE // /

	// ── Delimiters ─────────────────────────────────────────────────────────────

	COLON     // :
	SEMICOLON // ;
	PERIOD    // .
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
)

// FixedToken pairs a fixed token type with its one spelling.
type FixedToken struct {
	Type     TokenType
	Spelling string
}

// fixedTokens is the recognition table for every fixed token, in the order the
// lexer tries them. A spelling never follows another spelling that is a proper
// prefix of it: ord before or, :=: before := before :, .. before . and so on.
var fixedTokens = []FixedToken{
	{PROGRAM, "program"},
	{VAR, "var"},
	{CONST, "const"},
	{TYPE, "type"},
	{FUNCTION, "function"},
	{RETURN, "return"},
	{BEGIN, "begin"},
	{END, "end"},
	{SWAP, ":=:"},
	{ASSIGN, ":="},
	{OUTPUT, "output"},
	{IF, "if"},
	{THEN, "then"},
	{ELSE, "else"},
	{WHILE, "while"},
	{DO, "do"},
	{CASE, "case"},
	{OF, "of"},
	{DOTS, ".."},
	{OTHERWISE, "otherwise"},
	{REPEAT, "repeat"},
	{FOR, "for"},
	{UNTIL, "until"},
	{LOOP, "loop"},
	{POOL, "pool"},
	{EXIT, "exit"},
	{LE, "<="},
	{NE, "<>"},
	{LT, "<"},
	{GE, ">="},
	{GT, ">"},
	{EQ, "="},
	{MOD, "mod"},
	{AND, "and"},
	{ORD, "ord"},
	{OR, "or"},
	{NOT, "not"},
	{READ, "read"},
	{SUCC, "succ"},
	{PRED, "pred"},
	{CHR, "chr"},
	{EOFKW, "eof"},
	{COLON, ":"},
	{SEMICOLON, ";"},
	{PERIOD, "."},
	{COMMA, ","},
	{LPAREN, "("},
	{RPAREN, ")"},
	{PLUS, "+"},
	{MINUS, "-"},
	{MULT, "*"},
	{DIVIDE, "/"},
}

// spellings is the reverse of fixedTokens, indexed by TokenType.
var spellings = func() map[TokenType]string {
	m := make(map[TokenType]string, len(fixedTokens))
	for _, ft := range fixedTokens {
		m[ft.Type] = ft.Spelling
	}
	return m
}()

// typeNames holds display names for the types without a fixed spelling.
var typeNames = map[TokenType]string{
	ILLEGAL:       "ILLEGAL",
	EOF:           "EOF",
	IDENTIFIER:    "<identifier>",
	INTEGER:       "<integer>",
	CHAR:          "<char>",
	STRING:        "<string>",
	COMMENT:       "<comment>",
	BLOCK_COMMENT: "<block comment>",
}

// FixedTokens returns the recognition table in lexer order.
// The returned slice is a copy; the table itself never changes.
func FixedTokens() []FixedToken {
	out := make([]FixedToken, len(fixedTokens))
	copy(out, fixedTokens)
	return out
}

// Spelling returns the fixed spelling of tt and whether it has one.
// Scanned kinds (identifiers, literals, comments) have no fixed spelling.
func Spelling(tt TokenType) (string, bool) {
	s, ok := spellings[tt]
	return s, ok
}

// String returns the fixed spelling for keywords, operators and delimiters,
// and a bracketed name such as <identifier> for the scanned kinds.
func (tt TokenType) String() string {
	if s, ok := spellings[tt]; ok {
		return s
	}
	if s, ok := typeNames[tt]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsComment reports whether tt is one of the two comment kinds.
func (tt TokenType) IsComment() bool {
	return tt == COMMENT || tt == BLOCK_COMMENT
}

// IsKeyword reports whether tt is a fixed token spelled with letters only.
func (tt TokenType) IsKeyword() bool {
	s, ok := spellings[tt]
	if !ok {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

// Token is a single lexical unit produced by the WinZig lexer.
//
// Fields:
//   - Type: the category of this token (see TokenType constants)
//   - Literal: the matched text; for fixed tokens this is always the spelling
//   - Line: 1-based source line number
//   - Col: 1-based column of the first character of this token
//   - EndLine, EndCol: position just past the last source character, quotes
//     and comment markers included; zero when the token was not scanned
//
// Columns count runes, not bytes.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
	EndLine int
	EndCol  int
}

// String returns the token's literal text.
func (t Token) String() string {
	return t.Literal
}

// Pos formats the token position as line:col.
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Col)
}
