package treefmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/metaphox/winzig/ast"
)

// WriteText writes the indented dump of n followed by a newline.
func WriteText(w io.Writer, n *ast.Node, indent string) error {
	if indent == "" {
		indent = DefaultIndent
	}
	_, err := io.WriteString(w, n.RenderIndent(0, indent)+"\n")
	return err
}

// ReadText parses the indented dump back into a tree.
//
// Each line must start with depth indent units, where depth is known from
// the lines above it, and each (n) annotation is trusted to say how many
// lines of children follow. A missing child, an extra line, or a short indent
// fails with ErrMalformed. Children of <identifier>, <integer>, <char> and
// <string> are read as leaves; every other label must name a rule.
//
// Extra indent is only caught on rule lines, where it leaves an unknown
// label. A leaf's text may itself begin with the indent unit, so on a leaf
// line any indent past depth is kept as part of the text: "..x(0)" under an
// <identifier> at depth 0 reads as the leaf ".x".
//
// Leaf text containing a newline cannot be represented and does not round
// trip.
func ReadText(r io.Reader, indent string) (*ast.Node, error) {
	if indent == "" {
		indent = DefaultIndent
	}
	tr := &textReader{unit: indent}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		tr.lines = append(tr.lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// A trailing newline leaves no extra line, but trailing blank lines do.
	for len(tr.lines) > 0 && tr.lines[len(tr.lines)-1] == "" {
		tr.lines = tr.lines[:len(tr.lines)-1]
	}

	root, err := tr.node(0, false)
	if err != nil {
		return nil, err
	}
	if tr.pos < len(tr.lines) {
		return nil, fmt.Errorf("%w: line %d: unexpected line after the root's last child", ErrMalformed, tr.pos+1)
	}
	return root, nil
}

type textReader struct {
	lines []string
	pos   int
	unit  string
}

func (tr *textReader) node(depth int, leaf bool) (*ast.Node, error) {
	if tr.pos >= len(tr.lines) {
		return nil, fmt.Errorf("%w: input ends where a node at depth %d was expected", ErrMalformed, depth)
	}
	lineNo := tr.pos + 1
	line := tr.lines[tr.pos]
	tr.pos++

	prefix := strings.Repeat(tr.unit, depth)
	if !strings.HasPrefix(line, prefix) {
		return nil, fmt.Errorf("%w: line %d: want indent depth %d", ErrMalformed, lineNo, depth)
	}
	body := line[len(prefix):]
	open := strings.LastIndexByte(body, '(')
	if open < 0 || !strings.HasSuffix(body, ")") {
		return nil, fmt.Errorf("%w: line %d: missing (count) annotation", ErrMalformed, lineNo)
	}
	count, err := strconv.Atoi(body[open+1 : len(body)-1])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: line %d: bad child count %q", ErrMalformed, lineNo, body[open+1:len(body)-1])
	}
	label := body[:open]

	if leaf {
		if count != 0 {
			return nil, fmt.Errorf("%w: line %d: leaf %q claims %d children", ErrMalformed, lineNo, label, count)
		}
		return ast.NewLeaf(label), nil
	}

	kind := ast.KindForLabel(label)
	if kind == ast.NodeLeaf {
		return nil, fmt.Errorf("%w: line %d: unknown node label %q", ErrMalformed, lineNo, label)
	}
	n := ast.NewNode(kind)
	for i := 0; i < count; i++ {
		c, err := tr.node(depth+1, isWrapper(kind))
		if err != nil {
			return nil, err
		}
		n.AddChild(c)
	}
	return n, nil
}

func isWrapper(k ast.NodeKind) bool {
	switch k {
	case ast.NodeIdentifier, ast.NodeInteger, ast.NodeChar, ast.NodeString:
		return true
	}
	return false
}
