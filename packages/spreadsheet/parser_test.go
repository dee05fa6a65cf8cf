package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) Node {
	return &TerminalNode{Token: Token{Type: TokenNumber, Number: v}, Kind: TagNumber}
}

func op(tokenType TokenType) Node {
	return &TerminalNode{Token: Token{Type: tokenType}}
}

func cellRef(row, column int) Node {
	return &TerminalNode{Token: Token{Type: TokenCell, Cell: CellPosition{Row: row, Column: column}}, Kind: TagCell}
}

func rangeRef(from, to CellPosition) Node {
	return &TerminalNode{Token: Token{Type: TokenRange, Range: NewCellRange(from, to)}, Kind: TagCellRange}
}

func sum(children ...Node) Node {
	return &TreeNode{Children: children, Kind: TagSum}
}

func product(children ...Node) Node {
	return &TreeNode{Children: children, Kind: TagProduct}
}

func call(name string, params ...Node) Node {
	return &TreeNode{
		Children: []Node{
			&TerminalNode{Token: Token{Type: TokenFunction, Name: name}},
			&TreeNode{Children: params},
		},
		Kind: TagFunction,
	}
}

func parseFormula(t *testing.T, formula string) Node {
	t.Helper()
	node, err := Parse(formula, DefaultFunctions())
	require.NoError(t, err, formula)
	return node
}

func TestParserTrees(t *testing.T) {
	cases := []struct {
		formula string
		want    Node
	}{
		{"1", num(1)},
		{"-1.1", sum(op(TokenMinus), num(1.1))},
		{"=1.2", num(1.2)},
		{"= 1 + 2", sum(num(1), num(2))},
		{"=1-2", sum(num(1), op(TokenMinus), num(2))},
		{"=(2+2)*2", product(sum(num(2), num(2)), op(TokenMultiply), num(2))},
		{"=-(-3)", sum(op(TokenMinus), sum(op(TokenMinus), num(3)))},
		{"=((A1))", cellRef(0, 1)},
		{"=-3.14/1.5+A3*2", sum(
			op(TokenMinus),
			product(num(3.14), op(TokenDivide), num(1.5)),
			product(cellRef(2, 1), op(TokenMultiply), num(2)),
		)},
		{"=sum(A1:B2, 3)", call("sum", rangeRef(CellPosition{0, 1}, CellPosition{1, 2}), num(3))},
		{"=pow(2, sin(B1))", call("pow", num(2), call("sin", cellRef(0, 2)))},
		{"=max()", call("max")},
		{"=min((1), -A2)", call("min", num(1), sum(op(TokenMinus), cellRef(1, 1)))},
	}

	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			assert.Equal(t, tc.want, parseFormula(t, tc.formula))
		})
	}
}

func TestParserIsDeterministic(t *testing.T) {
	for _, formula := range []string{"=-(3*B1-B2)*(B1+B2)", "=max(B1:B2,6)", "-7"} {
		assert.Equal(t, parseFormula(t, formula), parseFormula(t, formula))
	}
}

func TestParserInvalidFormulas(t *testing.T) {
	invalidFormulas := []string{
		"",
		"=",
		"--1",
		"==1",
		"=1 2",
		"=1++2",
		"=1+-2",
		"=1--2",
		"=1+2+",
		"=1+A1:B3",
		"=A1:B3",
		"=(1",
		"=1)",
		"=()",
		"=sin(2",
		"=max(2 3)",
		"=max 2, 3",
		"=sum(,1)",
		"=sum(1,)",
		"=sum(A1:B2+1)",
		"=2*/2",
		"=2*2*",
		"A3",
		"sin(3)",
		"+1",
		"=+1",
		"- A1",
	}

	for _, formula := range invalidFormulas {
		t.Run(formula, func(t *testing.T) {
			_, err := Parse(formula, DefaultFunctions())
			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestParserErrorMessages(t *testing.T) {
	cases := []struct {
		formula string
		want    string
	}{
		{"", "expected =, number, - tokens, but end of formula was found"},
		{"=1+", "expected (, number, cell position, function name tokens, but end of formula was found"},
		{"=1 2", "expected *, / tokens, but number was found"},
		{"=1)", "expected end of formula tokens, but ) was found"},
		{"=(1", "expected ) tokens, but end of formula was found"},
		{"=()", "expected -, (, number, cell position, function name tokens, but ) was found"},
		{"=1+A1:B3", "expected (, number, cell position, function name tokens, but cell range was found"},
		{"=sum 1", "expected ( tokens, but number was found"},
	}
	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			_, err := Parse(tc.formula, DefaultFunctions())
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestNodeString(t *testing.T) {
	node := parseFormula(t, "=-$A$1*2+sum(B1:C2)")
	assert.Equal(t, "(sum - (product $A$1 * 2) (function sum (B1:C2)))", node.String())
}
