// Package parser implements the WinZig recursive-descent parser.
//
// The parser reads a token slice produced by the lexer and builds a single
// [ast.Node] tree. Every grammar rule is one method that looks at the next
// token to choose its alternative (the grammar is LL(1)), consumes terminals,
// calls the methods for nonterminals left to right, and finally reduces: it
// pops the nodes it pushed and pushes one node labelled for the rule.
//
// Usage:
//
//	toks, err := lexer.Tokenize(source)
//	...
//	root, err := parser.Parse(toks)
//	if err != nil { ... }
//	fmt.Println(root.Render(0))
//
// Error handling: the first unexpected token is fatal. There is no recovery
// and no partial tree is returned.
package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/metaphox/winzig/ast"
	"github.com/metaphox/winzig/lexer"
)

// ── Operator tables ───────────────────────────────────────────────────────────

// relOps are the (non-associative) relational operators of Expression.
var relOps = map[ast.TokenType]ast.NodeKind{
	ast.LE: ast.NodeLE,
	ast.LT: ast.NodeLT,
	ast.GE: ast.NodeGE,
	ast.GT: ast.NodeGT,
	ast.EQ: ast.NodeEQ,
	ast.NE: ast.NodeNE,
}

// addOps are the left-associative operators of Term.
var addOps = map[ast.TokenType]ast.NodeKind{
	ast.PLUS:  ast.NodePlus,
	ast.MINUS: ast.NodeMinus,
	ast.OR:    ast.NodeOr,
}

// mulOps are the left-associative operators of Factor.
var mulOps = map[ast.TokenType]ast.NodeKind{
	ast.MULT:   ast.NodeMult,
	ast.DIVIDE: ast.NodeDivide,
	ast.AND:    ast.NodeAnd,
	ast.MOD:    ast.NodeMod,
}

// builtins are the one-argument intrinsic functions of Primary.
var builtins = map[ast.TokenType]ast.NodeKind{
	ast.SUCC: ast.NodeSucc,
	ast.PRED: ast.NodePred,
	ast.CHR:  ast.NodeChr,
	ast.ORD:  ast.NodeOrd,
}

// wrappers maps literal-bearing token types to the node that wraps their text.
var wrappers = map[ast.TokenType]ast.NodeKind{
	ast.IDENTIFIER: ast.NodeIdentifier,
	ast.INTEGER:    ast.NodeInteger,
	ast.CHAR:       ast.NodeChar,
	ast.STRING:     ast.NodeString,
}

// ── Parser ────────────────────────────────────────────────────────────────────

// Parser holds the token slice, the read position and the work stack for one
// parse. Create one with [New] and call [Parser.Parse].
type Parser struct {
	tokens []ast.Token // comment tokens already removed
	pos    int         // index of the next unread token
	stack  []*ast.Node
}

// New creates a Parser over tokens. Comment tokens are dropped here and play
// no further part. The caller's slice is not modified.
func New(tokens []ast.Token) *Parser {
	kept := make([]ast.Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.Type.IsComment() {
			kept = append(kept, t)
		}
	}
	return &Parser{tokens: kept}
}

// Parse parses tokens as one complete WinZig program.
func Parse(tokens []ast.Token) (*ast.Node, error) {
	return New(tokens).Parse()
}

// ParseSource lexes and parses src.
func ParseSource(src string) (*ast.Node, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// Parse runs the grammar from the start symbol and returns the root node.
// All tokens must be consumed. Parse may be called again; each call starts
// from the first token with an empty stack.
func (p *Parser) Parse() (root *ast.Node, err error) {
	p.pos = 0
	p.stack = p.stack[:0]

	// Grammar methods abort with panic(*ParseError); everything else is a bug
	// and keeps propagating.
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			root, err = nil, perr
		}
	}()

	p.parseWinzig()
	if p.pos < len(p.tokens) {
		p.fail(ast.EOF)
	}
	if len(p.stack) != 1 {
		panic(fmt.Sprintf("parser: %d nodes left on the stack", len(p.stack)))
	}
	root = p.stack[0]
	p.stack = p.stack[:0]
	return root, nil
}

// ── Internal token management ─────────────────────────────────────────────────

// peek returns the type of the next unread token, or EOF past the end.
func (p *Parser) peek() ast.TokenType {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Type
	}
	return ast.EOF
}

// read consumes the next token. Literal-bearing tokens push a wrapper node
// holding a leaf with their text; other terminals leave no trace in the tree.
// It reports how many nodes it pushed.
func (p *Parser) read() int {
	if p.pos >= len(p.tokens) {
		// Every caller has checked peek first; this is only reachable through
		// a grammar bug.
		p.fail(ast.ILLEGAL)
	}
	tok := p.tokens[p.pos]
	p.pos++

	kind, ok := wrappers[tok.Type]
	if !ok {
		return 0
	}
	n := ast.NewNode(kind)
	n.AddChild(ast.NewLeaf(tok.Literal))
	p.stack = append(p.stack, n)
	return 1
}

// expect consumes the next token if it has type tt and fails otherwise.
func (p *Parser) expect(tt ast.TokenType) int {
	if p.peek() != tt {
		p.fail(tt)
	}
	return p.read()
}

// fail aborts the parse with a ParseError at the next unread token.
func (p *Parser) fail(expected ast.TokenType) {
	perr := &ParseError{Expected: expected, Actual: p.peek()}
	switch {
	case p.pos < len(p.tokens):
		perr.Token = p.tokens[p.pos]
	case len(p.tokens) > 0:
		line, col := endOf(p.tokens[len(p.tokens)-1])
		perr.Token = ast.Token{Type: ast.EOF, Line: line, Col: col}
	default:
		perr.Token = ast.Token{Type: ast.EOF, Line: 1, Col: 1}
	}
	panic(perr)
}

// endOf returns the position just past tok. Tokens built by hand carry no end
// position, so their literal length stands in for it.
func endOf(tok ast.Token) (line, col int) {
	if tok.EndLine > 0 {
		return tok.EndLine, tok.EndCol
	}
	return tok.Line, tok.Col + utf8.RuneCountInString(tok.Literal)
}

// build pops the top n nodes, which are already in left-to-right order at the
// top of the stack, and pushes one node of the given kind owning them.
// It always returns 1, the number of nodes the reduction leaves behind.
func (p *Parser) build(kind ast.NodeKind, n int) int {
	if n > len(p.stack) {
		panic(fmt.Sprintf("parser: reduce %v by %d with %d on the stack", kind, n, len(p.stack)))
	}
	node := ast.NewNode(kind)
	base := len(p.stack) - n
	for _, child := range p.stack[base:] {
		node.AddChild(child)
	}
	clear(p.stack[base:])
	p.stack = append(p.stack[:base], node)
	return 1
}

// ── Program and declarations ──────────────────────────────────────────────────

// Winzig -> 'program' Name ':' Consts Types Dclns SubProgs Body Name '.' => "program"
func (p *Parser) parseWinzig() int {
	p.expect(ast.PROGRAM)
	n := p.parseName()
	p.expect(ast.COLON)
	n += p.parseConsts()
	n += p.parseTypes()
	n += p.parseDclns()
	n += p.parseSubProgs()
	n += p.parseBody()
	n += p.parseName()
	p.expect(ast.PERIOD)
	return p.build(ast.NodeProgram, n)
}

// Consts -> 'const' Const list ',' ';' => "consts"
//
//	-> => "consts"
func (p *Parser) parseConsts() int {
	if p.peek() != ast.CONST {
		return p.build(ast.NodeConsts, 0)
	}
	p.expect(ast.CONST)
	n := p.parseConst()
	for p.peek() == ast.COMMA {
		p.expect(ast.COMMA)
		n += p.parseConst()
	}
	p.expect(ast.SEMICOLON)
	return p.build(ast.NodeConsts, n)
}

// Const -> Name '=' ConstValue => "const"
func (p *Parser) parseConst() int {
	n := p.parseName()
	p.expect(ast.EQ)
	n += p.parseConstValue()
	return p.build(ast.NodeConst, n)
}

// ConstValue -> '<integer>' | '<char>' | Name
func (p *Parser) parseConstValue() int {
	switch p.peek() {
	case ast.INTEGER, ast.CHAR:
		return p.read()
	default:
		return p.parseName()
	}
}

// Types -> 'type' (Type ';')+ => "types"
//
//	-> => "types"
func (p *Parser) parseTypes() int {
	if p.peek() != ast.TYPE {
		return p.build(ast.NodeTypes, 0)
	}
	p.expect(ast.TYPE)
	n := 0
	for {
		n += p.parseType()
		p.expect(ast.SEMICOLON)
		if p.peek() != ast.IDENTIFIER {
			break
		}
	}
	return p.build(ast.NodeTypes, n)
}

// Type -> Name '=' LitList => "type"
func (p *Parser) parseType() int {
	n := p.parseName()
	p.expect(ast.EQ)
	n += p.parseLitList()
	return p.build(ast.NodeType, n)
}

// LitList -> '(' Name list ',' ')' => "lit"
func (p *Parser) parseLitList() int {
	p.expect(ast.LPAREN)
	n := p.parseName()
	for p.peek() == ast.COMMA {
		p.expect(ast.COMMA)
		n += p.parseName()
	}
	p.expect(ast.RPAREN)
	return p.build(ast.NodeLit, n)
}

// SubProgs -> Fcn* => "subprogs"
func (p *Parser) parseSubProgs() int {
	n := 0
	for p.peek() == ast.FUNCTION {
		n += p.parseFcn()
	}
	return p.build(ast.NodeSubprogs, n)
}

// Fcn -> 'function' Name '(' Params ')' ':' Name ';' Consts Types Dclns Body Name ';' => "fcn"
func (p *Parser) parseFcn() int {
	p.expect(ast.FUNCTION)
	n := p.parseName()
	p.expect(ast.LPAREN)
	n += p.parseParams()
	p.expect(ast.RPAREN)
	p.expect(ast.COLON)
	n += p.parseName()
	p.expect(ast.SEMICOLON)
	n += p.parseConsts()
	n += p.parseTypes()
	n += p.parseDclns()
	n += p.parseBody()
	n += p.parseName()
	p.expect(ast.SEMICOLON)
	return p.build(ast.NodeFcn, n)
}

// Params -> Dcln list ';' => "params"
func (p *Parser) parseParams() int {
	n := p.parseDcln()
	for p.peek() == ast.SEMICOLON {
		p.expect(ast.SEMICOLON)
		n += p.parseDcln()
	}
	return p.build(ast.NodeParams, n)
}

// Dclns -> 'var' (Dcln ';')+ => "dclns"
//
//	-> => "dclns"
func (p *Parser) parseDclns() int {
	if p.peek() != ast.VAR {
		return p.build(ast.NodeDclns, 0)
	}
	p.expect(ast.VAR)
	n := 0
	for {
		n += p.parseDcln()
		p.expect(ast.SEMICOLON)
		if p.peek() != ast.IDENTIFIER {
			break
		}
	}
	return p.build(ast.NodeDclns, n)
}

// Dcln -> Name list ',' ':' Name => "var"
func (p *Parser) parseDcln() int {
	n := p.parseName()
	for p.peek() == ast.COMMA {
		p.expect(ast.COMMA)
		n += p.parseName()
	}
	p.expect(ast.COLON)
	n += p.parseName()
	return p.build(ast.NodeVar, n)
}

// ── Statements ────────────────────────────────────────────────────────────────

// Body -> 'begin' Statement list ';' 'end' => "block"
func (p *Parser) parseBody() int {
	p.expect(ast.BEGIN)
	n := p.parseStatementList()
	p.expect(ast.END)
	return p.build(ast.NodeBlock, n)
}

// parseStatementList parses Statement list ';' and reports the node count
// without reducing; the enclosing rule owns the reduction.
func (p *Parser) parseStatementList() int {
	n := p.parseStatement()
	for p.peek() == ast.SEMICOLON {
		p.expect(ast.SEMICOLON)
		n += p.parseStatement()
	}
	return n
}

// parseStatement dispatches on the first token of the statement. A token
// that starts no statement yields the empty statement "<null>" and is left
// for the caller.
func (p *Parser) parseStatement() int {
	switch p.peek() {
	case ast.IDENTIFIER:
		return p.parseAssignment()
	case ast.OUTPUT:
		return p.parseOutput()
	case ast.IF:
		return p.parseIf()
	case ast.WHILE:
		return p.parseWhile()
	case ast.REPEAT:
		return p.parseRepeat()
	case ast.FOR:
		return p.parseFor()
	case ast.LOOP:
		return p.parseLoop()
	case ast.CASE:
		return p.parseCase()
	case ast.READ:
		return p.parseRead()
	case ast.EXIT:
		p.expect(ast.EXIT)
		return p.build(ast.NodeExit, 0)
	case ast.RETURN:
		p.expect(ast.RETURN)
		n := p.parseExpression()
		return p.build(ast.NodeReturn, n)
	case ast.BEGIN:
		return p.parseBody()
	default:
		return p.build(ast.NodeNull, 0)
	}
}

// 'output' '(' OutExp list ',' ')' => "output"
func (p *Parser) parseOutput() int {
	p.expect(ast.OUTPUT)
	p.expect(ast.LPAREN)
	n := p.parseOutExp()
	for p.peek() == ast.COMMA {
		p.expect(ast.COMMA)
		n += p.parseOutExp()
	}
	p.expect(ast.RPAREN)
	return p.build(ast.NodeOutput, n)
}

// 'if' Expression 'then' Statement ('else' Statement)? => "if"
//
// A dangling else binds to the nearest if.
func (p *Parser) parseIf() int {
	p.expect(ast.IF)
	n := p.parseExpression()
	p.expect(ast.THEN)
	n += p.parseStatement()
	if p.peek() == ast.ELSE {
		p.expect(ast.ELSE)
		n += p.parseStatement()
	}
	return p.build(ast.NodeIf, n)
}

// 'while' Expression 'do' Statement => "while"
func (p *Parser) parseWhile() int {
	p.expect(ast.WHILE)
	n := p.parseExpression()
	p.expect(ast.DO)
	n += p.parseStatement()
	return p.build(ast.NodeWhile, n)
}

// 'repeat' Statement list ';' 'until' Expression => "repeat"
func (p *Parser) parseRepeat() int {
	p.expect(ast.REPEAT)
	n := p.parseStatementList()
	p.expect(ast.UNTIL)
	n += p.parseExpression()
	return p.build(ast.NodeRepeat, n)
}

// 'for' '(' ForStat ';' ForExp ';' ForStat ')' Statement => "for"
func (p *Parser) parseFor() int {
	p.expect(ast.FOR)
	p.expect(ast.LPAREN)
	n := p.parseForStat()
	p.expect(ast.SEMICOLON)
	n += p.parseForExp()
	p.expect(ast.SEMICOLON)
	n += p.parseForStat()
	p.expect(ast.RPAREN)
	n += p.parseStatement()
	return p.build(ast.NodeFor, n)
}

// 'loop' Statement list ';' 'pool' => "loop"
func (p *Parser) parseLoop() int {
	p.expect(ast.LOOP)
	n := p.parseStatementList()
	p.expect(ast.POOL)
	return p.build(ast.NodeLoop, n)
}

// 'case' Expression 'of' Caseclauses OtherwiseClause 'end' => "case"
func (p *Parser) parseCase() int {
	p.expect(ast.CASE)
	n := p.parseExpression()
	p.expect(ast.OF)
	n += p.parseCaseclauses()
	n += p.parseOtherwiseClause()
	p.expect(ast.END)
	return p.build(ast.NodeCase, n)
}

// 'read' '(' Name list ',' ')' => "read"
func (p *Parser) parseRead() int {
	p.expect(ast.READ)
	p.expect(ast.LPAREN)
	n := p.parseName()
	for p.peek() == ast.COMMA {
		p.expect(ast.COMMA)
		n += p.parseName()
	}
	p.expect(ast.RPAREN)
	return p.build(ast.NodeRead, n)
}

// OutExp -> Expression => "integer"
//
//	-> StringNode => "string"
func (p *Parser) parseOutExp() int {
	if p.peek() == ast.STRING {
		n := p.parseStringNode()
		return p.build(ast.NodeOutString, n)
	}
	n := p.parseExpression()
	return p.build(ast.NodeOutInteger, n)
}

// StringNode -> '<string>'
func (p *Parser) parseStringNode() int {
	return p.expect(ast.STRING)
}

// Caseclauses -> (Caseclause ';')+
//
// No node of its own: each clause stays on the stack as a child of "case".
func (p *Parser) parseCaseclauses() int {
	n := 0
	for {
		n += p.parseCaseclause()
		p.expect(ast.SEMICOLON)
		switch p.peek() {
		case ast.INTEGER, ast.CHAR, ast.IDENTIFIER:
			continue
		}
		return n
	}
}

// Caseclause -> CaseExpression list ',' ':' Statement => "case_clause"
func (p *Parser) parseCaseclause() int {
	n := p.parseCaseExpression()
	for p.peek() == ast.COMMA {
		p.expect(ast.COMMA)
		n += p.parseCaseExpression()
	}
	p.expect(ast.COLON)
	n += p.parseStatement()
	return p.build(ast.NodeCaseClause, n)
}

// CaseExpression -> ConstValue
//
//	-> ConstValue '..' ConstValue => ".."
func (p *Parser) parseCaseExpression() int {
	n := p.parseConstValue()
	if p.peek() == ast.DOTS {
		p.expect(ast.DOTS)
		n += p.parseConstValue()
		return p.build(ast.NodeDots, n)
	}
	return n
}

// OtherwiseClause -> 'otherwise' Statement => "otherwise"
//
//	->
func (p *Parser) parseOtherwiseClause() int {
	if p.peek() != ast.OTHERWISE {
		return 0
	}
	p.expect(ast.OTHERWISE)
	n := p.parseStatement()
	return p.build(ast.NodeOtherwise, n)
}

// Assignment -> Name ':=' Expression => "assign"
//
//	-> Name ':=:' Name => "swap"
func (p *Parser) parseAssignment() int {
	n := p.parseName()
	if p.peek() == ast.SWAP {
		p.expect(ast.SWAP)
		n += p.parseName()
		return p.build(ast.NodeSwap, n)
	}
	p.expect(ast.ASSIGN)
	n += p.parseExpression()
	return p.build(ast.NodeAssign, n)
}

// ForStat -> Assignment
//
//	-> => "<null>"
func (p *Parser) parseForStat() int {
	if p.peek() == ast.IDENTIFIER {
		return p.parseAssignment()
	}
	return p.build(ast.NodeNull, 0)
}

// ForExp -> Expression
//
//	-> => "true"
func (p *Parser) parseForExp() int {
	if p.peek() == ast.SEMICOLON {
		return p.build(ast.NodeTrue, 0)
	}
	return p.parseExpression()
}

// ── Expressions ───────────────────────────────────────────────────────────────

// Expression -> Term (relop Term)?
//
// Relational operators do not chain: a < b < c is a parse error at the second
// '<' once the enclosing rule expects its next terminal.
func (p *Parser) parseExpression() int {
	n := p.parseTerm()
	if kind, ok := relOps[p.peek()]; ok {
		p.read()
		n += p.parseTerm()
		return p.build(kind, n)
	}
	return n
}

// Term -> Factor (addop Factor)*, left-associative.
func (p *Parser) parseTerm() int {
	n := p.parseFactor()
	for {
		kind, ok := addOps[p.peek()]
		if !ok {
			return n
		}
		p.read()
		n += p.parseFactor()
		n = p.build(kind, n)
	}
}

// Factor -> Primary (mulop Primary)*, left-associative.
func (p *Parser) parseFactor() int {
	n := p.parsePrimary()
	for {
		kind, ok := mulOps[p.peek()]
		if !ok {
			return n
		}
		p.read()
		n += p.parsePrimary()
		n = p.build(kind, n)
	}
}

// Primary dispatches on its first token. Name falls through as the default
// alternative, so a token that starts no primary is reported as a missing
// identifier.
func (p *Parser) parsePrimary() int {
	switch tt := p.peek(); tt {
	case ast.MINUS:
		p.read()
		n := p.parsePrimary()
		return p.build(ast.NodeMinus, n)
	case ast.PLUS:
		// Unary plus adds no node.
		p.read()
		return p.parsePrimary()
	case ast.NOT:
		p.read()
		n := p.parsePrimary()
		return p.build(ast.NodeNot, n)
	case ast.EOFKW:
		p.read()
		return p.build(ast.NodeEOF, 0)
	case ast.INTEGER, ast.CHAR:
		return p.read()
	case ast.LPAREN:
		p.expect(ast.LPAREN)
		n := p.parseExpression()
		p.expect(ast.RPAREN)
		return n
	case ast.SUCC, ast.PRED, ast.CHR, ast.ORD:
		p.read()
		p.expect(ast.LPAREN)
		n := p.parseExpression()
		p.expect(ast.RPAREN)
		return p.build(builtins[tt], n)
	default:
		return p.parseNameOrCall()
	}
}

// parseNameOrCall parses Name, then looks one token further: '(' makes it
// Name '(' Expression list ',' ')' => "call".
func (p *Parser) parseNameOrCall() int {
	n := p.parseName()
	if p.peek() != ast.LPAREN {
		return n
	}
	p.expect(ast.LPAREN)
	n += p.parseExpression()
	for p.peek() == ast.COMMA {
		p.expect(ast.COMMA)
		n += p.parseExpression()
	}
	p.expect(ast.RPAREN)
	return p.build(ast.NodeCall, n)
}

// Name -> '<identifier>'
func (p *Parser) parseName() int {
	return p.expect(ast.IDENTIFIER)
}
