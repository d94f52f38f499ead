// Package diag formats lexer and parser errors for people: position, the
// offending source line, a caret, and a hint when a keyword looks misspelled.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/metaphox/winzig/ast"
	"github.com/metaphox/winzig/parser"
)

// positioned is implemented by *lexer.LexError and *parser.ParseError.
type positioned interface {
	error
	Position() (line, col int)
}

// Printer renders errors against one source file.
type Printer struct {
	Name   string // file name shown in the header; "<stdin>" when empty
	Source string
	Hints  bool
}

// Format returns a multi-line report for err. Errors that carry no source
// position come back as their plain message, prefixed with the file name.
func (pr Printer) Format(err error) string {
	name := pr.Name
	if name == "" {
		name = "<stdin>"
	}

	var pe positioned
	if !errors.As(err, &pe) {
		return fmt.Sprintf("%s: %v", name, err)
	}
	line, col := pe.Position()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%v", name, pe)
	if text, ok := sourceLine(pr.Source, line); ok {
		sb.WriteString("\n  ")
		sb.WriteString(text)
		sb.WriteString("\n  ")
		sb.WriteString(caretPad(text, col))
		sb.WriteByte('^')
	}
	if pr.Hints {
		if h := Hint(err); h != "" {
			sb.WriteString("\n  hint: ")
			sb.WriteString(h)
		}
	}
	return sb.String()
}

// Hint suggests a fix for a parse error where a keyword was required and an
// identifier close to it was found, e.g. "begn" for "begin" or "BEGIN" for
// "begin" (keywords are case-sensitive). It returns "" otherwise.
func Hint(err error) string {
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		return ""
	}
	if perr.Actual != ast.IDENTIFIER || !perr.Expected.IsKeyword() {
		return ""
	}
	want, _ := ast.Spelling(perr.Expected)
	got := perr.Token.Literal

	limit := len(want) / 3
	if limit < 1 {
		limit = 1
	}
	if strings.EqualFold(got, want) || fuzzy.LevenshteinDistance(strings.ToLower(got), want) <= limit {
		return fmt.Sprintf("did you mean '%s'?", want)
	}
	return ""
}

// sourceLine returns the 1-based line of src without its line terminator.
func sourceLine(src string, line int) (string, bool) {
	if line < 1 {
		return "", false
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[line-1], "\r"), true
}

// caretPad returns the padding that puts a caret under column col of text,
// copying tabs so the caret lines up however tabs are displayed.
func caretPad(text string, col int) string {
	var sb strings.Builder
	i := 1
	for _, r := range text {
		if i >= col {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
		i++
	}
	for ; i < col; i++ {
		sb.WriteByte(' ')
	}
	return sb.String()
}
