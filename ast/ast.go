package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ── Node kinds ────────────────────────────────────────────────────────────────

// NodeKind identifies the grammar rule (or leaf value) a Node represents.
// Each kind except NodeLeaf has one fixed label used in rendering.
type NodeKind int

const (
	// NodeLeaf holds literal text (an identifier name, digits, a character, or
	// string content). Its label is the text itself and it has no children.
	NodeLeaf NodeKind = iota

	// ── Leaf wrappers ──────────────────────────────────────────────────────────

	NodeIdentifier
	NodeInteger
	NodeChar
	NodeString

	// ── Declarations ───────────────────────────────────────────────────────────

	NodeProgram
	NodeConsts
	NodeConst
	NodeTypes
	NodeType
	NodeLit
	NodeSubprogs
	NodeFcn
	NodeParams
	NodeDclns
	NodeVar

	// ── Statements ─────────────────────────────────────────────────────────────

	NodeBlock
	NodeOutput
	NodeOutInteger // output item that is an expression
	NodeOutString  // output item that is a string literal
	NodeIf
	NodeWhile
	NodeRepeat
	NodeFor
	NodeLoop
	NodeCase
	NodeRead
	NodeExit
	NodeReturn
	NodeNull
	NodeCaseClause
	NodeDots
	NodeOtherwise
	NodeAssign
	NodeSwap
	NodeTrue

	// ── Expressions ────────────────────────────────────────────────────────────

	NodeLE
	NodeLT
	NodeGE
	NodeGT
	NodeEQ
	NodeNE
	NodePlus
	NodeMinus
	NodeOr
	NodeMult
	NodeDivide
	NodeAnd
	NodeMod
	NodeNot
	NodeEOF
	NodeCall
	NodeSucc
	NodePred
	NodeChr
	NodeOrd
)

var nodeLabels = [...]string{
	NodeLeaf:       "",
	NodeIdentifier: "<identifier>",
	NodeInteger:    "<integer>",
	NodeChar:       "<char>",
	NodeString:     "<string>",
	NodeProgram:    "program",
	NodeConsts:     "consts",
	NodeConst:      "const",
	NodeTypes:      "types",
	NodeType:       "type",
	NodeLit:        "lit",
	NodeSubprogs:   "subprogs",
	NodeFcn:        "fcn",
	NodeParams:     "params",
	NodeDclns:      "dclns",
	NodeVar:        "var",
	NodeBlock:      "block",
	NodeOutput:     "output",
	NodeOutInteger: "integer",
	NodeOutString:  "string",
	NodeIf:         "if",
	NodeWhile:      "while",
	NodeRepeat:     "repeat",
	NodeFor:        "for",
	NodeLoop:       "loop",
	NodeCase:       "case",
	NodeRead:       "read",
	NodeExit:       "exit",
	NodeReturn:     "return",
	NodeNull:       "<null>",
	NodeCaseClause: "case_clause",
	NodeDots:       "..",
	NodeOtherwise:  "otherwise",
	NodeAssign:     "assign",
	NodeSwap:       "swap",
	NodeTrue:       "true",
	NodeLE:         "<=",
	NodeLT:         "<",
	NodeGE:         ">=",
	NodeGT:         ">",
	NodeEQ:         "=",
	NodeNE:         "<>",
	NodePlus:       "+",
	NodeMinus:      "-",
	NodeOr:         "or",
	NodeMult:       "*",
	NodeDivide:     "/",
	NodeAnd:        "and",
	NodeMod:        "mod",
	NodeNot:        "not",
	NodeEOF:        "eof",
	NodeCall:       "call",
	NodeSucc:       "succ",
	NodePred:       "pred",
	NodeChr:        "chr",
	NodeOrd:        "ord",
}

// String returns the rendering label of k. NodeLeaf has no fixed label and
// reports "leaf".
func (k NodeKind) String() string {
	if k == NodeLeaf {
		return "leaf"
	}
	if int(k) >= 0 && int(k) < len(nodeLabels) {
		return nodeLabels[k]
	}
	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// KindForLabel maps a rendering label back to its NodeKind. Labels that match
// no rule are leaves.
func KindForLabel(label string) NodeKind {
	if k, ok := labelKinds[label]; ok {
		return k
	}
	return NodeLeaf
}

var labelKinds = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(nodeLabels))
	for k, l := range nodeLabels {
		if l != "" {
			m[l] = NodeKind(k)
		}
	}
	return m
}()

// ── Node ──────────────────────────────────────────────────────────────────────

// Node is one vertex of the syntax tree. A Node owns its children exclusively;
// trees are never shared or cyclic. After parsing completes no node is
// modified.
type Node struct {
	Kind     NodeKind
	Value    string // literal text, set only for NodeLeaf
	Children []*Node
}

// NewLeaf returns a childless node labelled with text.
func NewLeaf(text string) *Node {
	return &Node{Kind: NodeLeaf, Value: text}
}

// NewNode returns a node for the grammar rule kind with no children yet.
func NewNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// AddChild appends child to n's ordered child list.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Label is the text printed for n: the literal for leaves, the rule label
// otherwise.
func (n *Node) Label() string {
	if n.Kind == NodeLeaf {
		return n.Value
	}
	return n.Kind.String()
}

// Render returns the pre-order dump of the subtree rooted at n, one line per
// node in the form <indent>label(childCount), where the indent is one '.' per
// level of depth. Lines are separated by '\n'; there is no trailing newline.
func (n *Node) Render(depth int) string {
	return n.RenderIndent(depth, ".")
}

// RenderIndent is Render with a caller-chosen indent unit.
func (n *Node) RenderIndent(depth int, unit string) string {
	var sb strings.Builder
	n.render(&sb, depth, unit)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder, depth int, unit string) {
	for i := 0; i < depth; i++ {
		sb.WriteString(unit)
	}
	fmt.Fprintf(sb, "%s(%d)", n.Label(), len(n.Children))
	for _, c := range n.Children {
		sb.WriteByte('\n')
		c.render(sb, depth+1, unit)
	}
}

// String renders n from depth 0.
func (n *Node) String() string {
	return n.Render(0)
}

// Walk calls fn for n and every descendant in pre-order, passing the depth
// relative to n. Returning false from fn skips that node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}
