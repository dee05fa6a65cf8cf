package spreadsheet

import (
	"fmt"
	"math"
	"regexp"
	"sort"
)

// ParamLimit is one step of a function's parameter contract. Limits are
// applied left to right, each consuming arguments from the front of what
// remains.
type ParamLimit int

const (
	LimitScalar   ParamLimit = iota // exactly one scalar
	LimitMatrix                     // exactly one matrix
	LimitAny                        // exactly one scalar or matrix
	LimitScalars                    // every remaining argument, scalars only
	LimitMatrices                   // every remaining argument, matrices only
	LimitAnyRest                    // every remaining argument, any kind
	LimitEnd                        // no argument may remain
)

// consume validates args starting at index at and returns the index of the
// first argument left for the next limit
func (l ParamLimit) consume(function string, args []Value, at int) (int, error) {
	switch l {
	case LimitScalar, LimitMatrix, LimitAny:
		if at >= len(args) {
			return at, &NotEnoughParametersError{Function: function, Expected: at + 1, Actual: len(args)}
		}
		if err := l.check(function, args[at], at); err != nil {
			return at, err
		}
		return at + 1, nil
	case LimitScalars, LimitMatrices, LimitAnyRest:
		for ; at < len(args); at++ {
			if err := l.check(function, args[at], at); err != nil {
				return at, err
			}
		}
		return at, nil
	case LimitEnd:
		if at < len(args) {
			return at, &ExtraParametersError{Function: function, Expected: at, Actual: len(args)}
		}
		return at, nil
	}
	return at, fmt.Errorf("unknown parameter limit %d", l)
}

func (l ParamLimit) check(function string, arg Value, at int) error {
	var expected ValueKind
	switch l {
	case LimitScalar, LimitScalars:
		expected = KindScalar
	case LimitMatrix, LimitMatrices:
		expected = KindMatrix
	default:
		return nil
	}
	if arg.Kind() != expected {
		return &ParameterTypeError{Function: function, Position: at + 1, Expected: expected, Actual: arg.Kind()}
	}
	return nil
}

// FunctionBody computes a function's result from arguments that already
// passed its contract
type FunctionBody func(args []Value) (float64, error)

// FunctionDefinition couples a body with its parameter contract
type FunctionDefinition struct {
	Name   string
	Limits []ParamLimit
	Body   FunctionBody
}

// FunctionRegistry maps function names to their definitions. It is shared
// by the lexer, which rejects unknown names, and the evaluator.
type FunctionRegistry struct {
	functions map[string]*FunctionDefinition
}

var functionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// NewFunctionRegistry returns an empty registry
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]*FunctionDefinition)}
}

// DefaultFunctions returns a new registry holding the built-in functions
func DefaultFunctions() *FunctionRegistry {
	fr := NewFunctionRegistry()
	for _, name := range []string{"sin", "cos", "tan", "ln", "exp", "abs"} {
		fr.mustRegister(name, unary(unaryFunctions[name]), LimitScalar, LimitEnd)
	}
	fr.mustRegister("pow", pow, LimitScalar, LimitScalar, LimitEnd)
	fr.mustRegister("min", reduce(minOf), LimitAny, LimitAnyRest)
	fr.mustRegister("max", reduce(maxOf), LimitAny, LimitAnyRest)
	fr.mustRegister("sum", reduce(sumOf), LimitAny, LimitAnyRest)
	fr.mustRegister("mean", reduce(meanOf), LimitAny, LimitAnyRest)
	fr.mustRegister("std", reduce(stdOf), LimitAny, LimitAnyRest)
	fr.mustRegister("cor", cor, LimitMatrix, LimitMatrix, LimitEnd)
	return fr
}

// Register adds a function. Names must have the lower-case identifier shape
// the lexer recognizes.
func (fr *FunctionRegistry) Register(name string, body FunctionBody, limits ...ParamLimit) error {
	if !functionNamePattern.MatchString(name) {
		return NewApplicationError(InvalidArgument, fmt.Sprintf("invalid function name %q", name))
	}
	if _, exists := fr.functions[name]; exists {
		return NewApplicationError(AlreadyExists, fmt.Sprintf("function %q is already registered", name))
	}
	fr.functions[name] = &FunctionDefinition{Name: name, Limits: limits, Body: body}
	return nil
}

func (fr *FunctionRegistry) mustRegister(name string, body FunctionBody, limits ...ParamLimit) {
	if err := fr.Register(name, body, limits...); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered
func (fr *FunctionRegistry) Has(name string) bool {
	if fr == nil {
		return false
	}
	_, ok := fr.functions[name]
	return ok
}

// Lookup returns the definition for name
func (fr *FunctionRegistry) Lookup(name string) (*FunctionDefinition, bool) {
	if fr == nil {
		return nil, false
	}
	def, ok := fr.functions[name]
	return def, ok
}

// Names lists registered functions in alphabetical order
func (fr *FunctionRegistry) Names() []string {
	names := make([]string, 0, len(fr.functions))
	for name := range fr.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call validates args against the contract of name and runs it
func (fr *FunctionRegistry) Call(name string, args []Value) (float64, error) {
	def, ok := fr.Lookup(name)
	if !ok {
		return 0, &UnknownFunctionError{Name: name}
	}
	at := 0
	for _, limit := range def.Limits {
		var err error
		if at, err = limit.consume(name, args, at); err != nil {
			return 0, err
		}
	}
	result, err := def.Body(args)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, NewSpreadsheetError(ErrorCodeNum, fmt.Sprintf("%s returned a non-finite result", name))
	}
	return result, nil
}

var unaryFunctions = map[string]func(float64) float64{
	"sin": math.Sin,
	"cos": math.Cos,
	"tan": math.Tan,
	"ln":  math.Log,
	"exp": math.Exp,
	"abs": math.Abs,
}

func unary(fn func(float64) float64) FunctionBody {
	return func(args []Value) (float64, error) {
		return fn(float64(args[0].(Scalar))), nil
	}
}

func pow(args []Value) (float64, error) {
	return math.Pow(float64(args[0].(Scalar)), float64(args[1].(Scalar))), nil
}

// reduce flattens every argument into one list before folding it
func reduce(fn func([]float64) float64) FunctionBody {
	return func(args []Value) (float64, error) {
		return fn(flatten(args)), nil
	}
}

func flatten(args []Value) []float64 {
	var values []float64
	for _, arg := range args {
		switch v := arg.(type) {
		case Scalar:
			values = append(values, float64(v))
		case Matrix:
			values = append(values, v.Flatten()...)
		}
	}
	return values
}

func minOf(values []float64) float64 {
	result := math.Inf(1)
	for _, v := range values {
		result = math.Min(result, v)
	}
	return result
}

func maxOf(values []float64) float64 {
	result := math.Inf(-1)
	for _, v := range values {
		result = math.Max(result, v)
	}
	return result
}

func sumOf(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func meanOf(values []float64) float64 {
	return sumOf(values) / float64(len(values))
}

// stdOf is the population standard deviation
func stdOf(values []float64) float64 {
	mean := meanOf(values)
	var squares float64
	for _, v := range values {
		squares += (v - mean) * (v - mean)
	}
	return math.Sqrt(squares / float64(len(values)))
}

// cor is the Pearson correlation of two equally sized ranges. Ranges of
// different sizes correlate to 0.
func cor(args []Value) (float64, error) {
	x := args[0].(Matrix).Flatten()
	y := args[1].(Matrix).Flatten()
	if len(x) != len(y) {
		return 0, nil
	}
	xy := make([]float64, len(x))
	for i := range x {
		xy[i] = x[i] * y[i]
	}
	return (meanOf(xy) - meanOf(x)*meanOf(y)) / (stdOf(x) * stdOf(y)), nil
}
