package spreadsheet

import (
	"strings"
)

// NodeTag tells the evaluator how to treat a node
type NodeTag int

const (
	TagNone      NodeTag = iota // operators, function names, parameter lists
	TagNumber                   // numeric literal
	TagCell                     // single cell reference
	TagCellRange                // range reference, only as a function parameter
	TagSum                      // terms joined by + and -
	TagProduct                  // factors joined by * and /
	TagFunction                 // function name followed by its parameter list
)

var tagNames = map[NodeTag]string{
	TagNone:      "",
	TagNumber:    "number",
	TagCell:      "cell",
	TagCellRange: "range",
	TagSum:       "sum",
	TagProduct:   "product",
	TagFunction:  "function",
}

func (t NodeTag) String() string {
	return tagNames[t]
}

// Node is a parsed formula tree. It is either a *TerminalNode or a *TreeNode.
type Node interface {
	Tag() NodeTag
	String() string
	node()
}

// TerminalNode wraps a single token
type TerminalNode struct {
	Token Token
	Kind  NodeTag
}

func (n *TerminalNode) Tag() NodeTag { return n.Kind }
func (n *TerminalNode) node()        {}

func (n *TerminalNode) String() string {
	t := n.Token
	switch t.Type {
	case TokenNumber:
		return FormatNumber(t.Number)
	case TokenCell:
		return formatReference(t.Cell, t.Anchor)
	case TokenRange:
		return t.Range.String()
	case TokenFunction:
		return t.Name
	}
	return t.Type.String()
}

// TreeNode holds ordered children. Operator tokens stay in the children so
// the evaluator can fold left to right.
type TreeNode struct {
	Children []Node
	Kind     NodeTag
}

func (n *TreeNode) Tag() NodeTag { return n.Kind }
func (n *TreeNode) node()        {}

// String renders the tree as an s-expression, mostly for debugging and the
// command line
func (n *TreeNode) String() string {
	parts := make([]string, 0, len(n.Children)+1)
	if n.Kind != TagNone {
		parts = append(parts, n.Kind.String())
	}
	for _, child := range n.Children {
		parts = append(parts, child.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func formatReference(pos CellPosition, anchor Anchor) string {
	var b strings.Builder
	if anchor.AbsoluteColumn() {
		b.WriteByte(charDollar)
	}
	b.WriteString(ColumnName(pos.Column - 1))
	if anchor.AbsoluteRow() {
		b.WriteByte(charDollar)
	}
	b.WriteString(FormatNumber(float64(pos.Row + 1)))
	return b.String()
}

// expected token sets, reused in error messages
var (
	expectFormula = []string{"=", "number", "-"}
	expectFactor  = []string{"(", "number", "cell position", "function name"}
	expectTerm    = append([]string{"-"}, expectFactor...)
	expectSign    = []string{"+", "-"}
	expectOperand = []string{"*", "/"}
	expectClose   = []string{")"}
	expectOpen    = []string{"("}
	expectEnd     = []string{endOfFormula}
)

// Parser is a recursive descent parser over a token slice. Precedence from
// low to high: formula, expression (+ -), term (* /), factor.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over already tokenized input
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses text in one go
func Parse(text string, functions *FunctionRegistry) (Node, error) {
	tokens, err := Tokenize(text, functions)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse parses the whole token slice. A formula is a bare number, a negated
// bare number or '=' followed by an expression.
func (p *Parser) Parse() (Node, error) {
	var root Node
	switch p.peekType() {
	case TokenNumber:
		root = p.terminal(TagNumber)
	case TokenMinus:
		minus := p.terminal(TagNone)
		if p.peekType() != TokenNumber {
			return nil, p.unexpected([]string{"number"})
		}
		root = &TreeNode{Kind: TagSum, Children: []Node{minus, p.terminal(TagNumber)}}
	case TokenEquals:
		p.pos++
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		root = expr
	default:
		return nil, p.unexpected(expectFormula)
	}

	if !p.atEnd() {
		return nil, p.unexpected(expectEnd)
	}
	return root, nil
}

// parseExpression reads terms joined by + and -. Only '-' is kept as a
// child, '+' carries no meaning for the fold.
func (p *Parser) parseExpression() (Node, error) {
	var children []Node
	for !p.atEnd() && !p.at(TokenCloseParen) && !p.at(TokenComma) {
		switch {
		case p.at(TokenMinus):
			children = append(children, p.terminal(TagNone))
		case len(children) == 0:
		case p.at(TokenPlus):
			p.pos++
		default:
			return nil, p.unexpected(expectSign)
		}

		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		children = append(children, term)
	}

	switch len(children) {
	case 0:
		return nil, p.unexpected(expectTerm)
	case 1:
		return children[0], nil
	}
	return &TreeNode{Kind: TagSum, Children: children}, nil
}

// parseTerm reads factors joined by * and /
func (p *Parser) parseTerm() (Node, error) {
	factor, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	children := []Node{factor}

	for !p.atEnd() {
		switch p.peekType() {
		case TokenPlus, TokenMinus, TokenCloseParen, TokenComma:
			return collapse(children, TagProduct), nil
		case TokenMultiply, TokenDivide:
			children = append(children, p.terminal(TagNone))
		default:
			return nil, p.unexpected(expectOperand)
		}

		factor, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		children = append(children, factor)
	}
	return collapse(children, TagProduct), nil
}

func (p *Parser) parseFactor() (Node, error) {
	if p.atEnd() {
		return nil, p.unexpected(expectFactor)
	}
	switch p.peekType() {
	case TokenOpenParen:
		p.pos++
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenCloseParen, expectClose); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenNumber:
		return p.terminal(TagNumber), nil
	case TokenCell:
		return p.terminal(TagCell), nil
	case TokenFunction:
		return p.parseFunctionCall()
	}
	return nil, p.unexpected(expectFactor)
}

func (p *Parser) parseFunctionCall() (Node, error) {
	name := p.terminal(TagNone)
	if err := p.expect(TokenOpenParen, expectOpen); err != nil {
		return nil, err
	}

	params := &TreeNode{Kind: TagNone}
	if !p.at(TokenCloseParen) {
		for {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			params.Children = append(params.Children, param)
			if !p.at(TokenComma) {
				break
			}
			p.pos++
		}
	}

	if err := p.expect(TokenCloseParen, expectClose); err != nil {
		return nil, err
	}
	return &TreeNode{Kind: TagFunction, Children: []Node{name, params}}, nil
}

// parseParam accepts a range on its own or a full expression. Ranges are not
// allowed anywhere else.
func (p *Parser) parseParam() (Node, error) {
	if p.at(TokenRange) {
		return p.terminal(TagCellRange), nil
	}
	return p.parseExpression()
}

func collapse(children []Node, tag NodeTag) Node {
	if len(children) == 1 {
		return children[0]
	}
	return &TreeNode{Kind: tag, Children: children}
}

// terminal consumes the current token
func (p *Parser) terminal(tag NodeTag) *TerminalNode {
	node := &TerminalNode{Token: p.tokens[p.pos], Kind: tag}
	p.pos++
	return node
}

func (p *Parser) expect(tokenType TokenType, expected []string) error {
	if !p.at(tokenType) {
		return p.unexpected(expected)
	}
	p.pos++
	return nil
}

func (p *Parser) unexpected(expected []string) *SyntaxError {
	found := endOfFormula
	if !p.atEnd() {
		found = p.tokens[p.pos].Type.String()
	}
	return &SyntaxError{Expected: expected, Found: found}
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) at(tokenType TokenType) bool {
	return !p.atEnd() && p.tokens[p.pos].Type == tokenType
}

// peekType returns -1 at the end of input
func (p *Parser) peekType() TokenType {
	if p.atEnd() {
		return -1
	}
	return p.tokens[p.pos].Type
}
