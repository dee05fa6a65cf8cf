package spreadsheet

import (
	"errors"
	"fmt"
)

// ValueKind distinguishes the two shapes an evaluated node can take
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindMatrix
)

func (k ValueKind) String() string {
	if k == KindMatrix {
		return "matrix"
	}
	return "scalar"
}

// Value is the result of evaluating a node: a Scalar or a Matrix
type Value interface {
	Kind() ValueKind
}

// Scalar is a single number
type Scalar float64

func (Scalar) Kind() ValueKind { return KindScalar }

// Matrix holds the values of a range, row-major
type Matrix [][]float64

func (Matrix) Kind() ValueKind { return KindMatrix }

// Flatten returns the values in row-major order
func (m Matrix) Flatten() []float64 {
	var values []float64
	for _, row := range m {
		values = append(values, row...)
	}
	return values
}

// ErrOutOfBounds is returned by a CellLookup for coordinates the sheet does
// not have. The evaluator turns it into a ReferenceError.
var ErrOutOfBounds = errors.New("cell is outside the table")

// CellLookup returns the live value of a data cell. Column is one-based.
type CellLookup func(row, column int) (float64, error)

// Evaluator walks parsed formulas
type Evaluator struct {
	functions *FunctionRegistry
}

// NewEvaluator creates an evaluator dispatching function calls to functions
func NewEvaluator(functions *FunctionRegistry) *Evaluator {
	return &Evaluator{functions: functions}
}

// Evaluate computes node, reading referenced cells through lookup
func (e *Evaluator) Evaluate(node Node, lookup CellLookup) (Value, error) {
	switch n := node.(type) {
	case *TerminalNode:
		switch n.Kind {
		case TagNumber:
			return Scalar(n.Token.Number), nil
		case TagCell:
			v, err := e.lookupCell(n.Token.Cell, lookup)
			if err != nil {
				return nil, err
			}
			return Scalar(v), nil
		case TagCellRange:
			return e.evaluateRange(n.Token.Range, lookup)
		}
	case *TreeNode:
		switch n.Kind {
		case TagSum:
			return e.evaluateSum(n, lookup)
		case TagProduct:
			return e.evaluateProduct(n, lookup)
		case TagFunction:
			return e.evaluateFunction(n, lookup)
		}
	}
	return nil, NewSpreadsheetError(ErrorCodeOther, fmt.Sprintf("cannot evaluate %v", node))
}

// EvaluateScalar evaluates node and requires a scalar result
func (e *Evaluator) EvaluateScalar(node Node, lookup CellLookup) (float64, error) {
	v, err := e.Evaluate(node, lookup)
	if err != nil {
		return 0, err
	}
	s, ok := v.(Scalar)
	if !ok {
		return 0, &ParameterTypeError{Position: 1, Expected: KindScalar, Actual: v.Kind()}
	}
	return float64(s), nil
}

func (e *Evaluator) lookupCell(pos CellPosition, lookup CellLookup) (float64, error) {
	v, err := lookup(pos.Row, pos.Column)
	if errors.Is(err, ErrOutOfBounds) {
		return 0, &ReferenceError{Cell: pos.String()}
	}
	return v, err
}

func (e *Evaluator) evaluateRange(r CellRange, lookup CellLookup) (Value, error) {
	m := make(Matrix, 0, r.Rows())
	for row := r.From.Row; row <= r.To.Row; row++ {
		values := make([]float64, 0, r.Columns())
		for column := r.From.Column; column <= r.To.Column; column++ {
			v, err := e.lookupCell(CellPosition{Row: row, Column: column}, lookup)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		m = append(m, values)
	}
	return m, nil
}

// evaluateSum folds terms left to right; a '-' leaf negates the term after it
func (e *Evaluator) evaluateSum(n *TreeNode, lookup CellLookup) (Value, error) {
	var total float64
	sign := 1.0
	for _, child := range n.Children {
		if isOperator(child, TokenMinus) {
			sign = -sign
			continue
		}
		v, err := e.EvaluateScalar(child, lookup)
		if err != nil {
			return nil, err
		}
		total += sign * v
		sign = 1
	}
	return Scalar(total), nil
}

// evaluateProduct folds factors left to right, switching between multiply
// and divide on each operator leaf
func (e *Evaluator) evaluateProduct(n *TreeNode, lookup CellLookup) (Value, error) {
	result := 1.0
	divide := false
	for _, child := range n.Children {
		switch {
		case isOperator(child, TokenMultiply):
			divide = false
			continue
		case isOperator(child, TokenDivide):
			divide = true
			continue
		}
		v, err := e.EvaluateScalar(child, lookup)
		if err != nil {
			return nil, err
		}
		if !divide {
			result *= v
			continue
		}
		if v == 0 {
			return nil, NewSpreadsheetError(ErrorCodeDiv0, "division by zero")
		}
		result /= v
	}
	return Scalar(result), nil
}

func (e *Evaluator) evaluateFunction(n *TreeNode, lookup CellLookup) (Value, error) {
	name := n.Children[0].(*TerminalNode).Token.Name
	params := n.Children[1].(*TreeNode)

	args := make([]Value, 0, len(params.Children))
	for _, param := range params.Children {
		v, err := e.Evaluate(param, lookup)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	result, err := e.functions.Call(name, args)
	if err != nil {
		return nil, err
	}
	return Scalar(result), nil
}

func isOperator(node Node, tokenType TokenType) bool {
	t, ok := node.(*TerminalNode)
	return ok && t.Kind == TagNone && t.Token.Type == tokenType
}

// References returns every cell inside bounds that a formula reads, ranges
// expanded, in order of first appearance and without duplicates. Cells
// outside bounds can never change, so they are left out.
func References(node Node, bounds CellRange) []CellPosition {
	seen := make(map[CellPosition]struct{})
	var refs []CellPosition
	add := func(pos CellPosition) {
		if _, ok := seen[pos]; !ok {
			seen[pos] = struct{}{}
			refs = append(refs, pos)
		}
	}
	var walk func(Node)
	walk = func(node Node) {
		switch n := node.(type) {
		case *TerminalNode:
			switch n.Kind {
			case TagCell:
				if bounds.Contains(n.Token.Cell) {
					add(n.Token.Cell)
				}
			case TagCellRange:
				if r, ok := n.Token.Range.Intersect(bounds); ok {
					for pos := range r.Positions() {
						add(pos)
					}
				}
			}
		case *TreeNode:
			for _, child := range n.Children {
				walk(child)
			}
		}
	}
	walk(node)
	return refs
}
