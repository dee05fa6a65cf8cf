package spreadsheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorCode represents standard spreadsheet error codes following
// Excel conventions
type ErrorCode uint8

const (
	ErrorCodeDiv0  ErrorCode = 2 // #DIV/0! - division by zero
	ErrorCodeValue ErrorCode = 3 // #VALUE! - wrong type or count of arguments
	ErrorCodeRef   ErrorCode = 4 // #REF! - invalid cell reference
	ErrorCodeName  ErrorCode = 5 // #NAME? - unrecognized function name
	ErrorCodeNum   ErrorCode = 6 // #NUM! - result is not a finite number
	ErrorCodeCycle ErrorCode = 7 // #CYCLE! - circular reference
	ErrorCodeOther ErrorCode = 8 // #ERROR! - syntax and all other errors
)

// ErrorMapper maps error code numbers to their string representations
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeDiv0:  "#DIV/0!",
	ErrorCodeValue: "#VALUE!",
	ErrorCodeRef:   "#REF!",
	ErrorCodeName:  "#NAME?",
	ErrorCodeNum:   "#NUM!",
	ErrorCodeCycle: "#CYCLE!",
	ErrorCodeOther: "#ERROR!",
}

func (c ErrorCode) String() string {
	return ErrorMapper[c]
}

// FormulaError is implemented by every error a formula can produce
type FormulaError interface {
	error
	Code() ErrorCode
}

// CodeOf returns the spreadsheet error code for err, ErrorCodeOther when err
// is not a formula error
func CodeOf(err error) ErrorCode {
	var fe FormulaError
	if errors.As(err, &fe) {
		return fe.Code()
	}
	return ErrorCodeOther
}

// SpreadsheetError is a generic formula error carrying only a code
type SpreadsheetError struct {
	ErrorCode ErrorCode
	Message   string
}

func (e *SpreadsheetError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrorMapper[e.ErrorCode]
}

func (e *SpreadsheetError) Code() ErrorCode { return e.ErrorCode }

func NewSpreadsheetError(code ErrorCode, message string) *SpreadsheetError {
	if message == "" {
		message = ErrorMapper[code]
	}
	return &SpreadsheetError{
		ErrorCode: code,
		Message:   message,
	}
}

// LexicalError reports the first offset no token matches
type LexicalError struct {
	Position  int
	Remaining string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("unexpected formula elements since: %s", e.Remaining)
}

func (e *LexicalError) Code() ErrorCode { return ErrorCodeOther }

// UnknownFunctionError reports a function name missing from the registry
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("invalid function name: %s", e.Name)
}

func (e *UnknownFunctionError) Code() ErrorCode { return ErrorCodeName }

// endOfFormula is what a SyntaxError finds when the tokens ran out
const endOfFormula = "end of formula"

// SyntaxError carries the token kinds the parser would have accepted and
// the one it found instead
type SyntaxError struct {
	Expected []string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expected %s tokens, but %s was found", strings.Join(e.Expected, ", "), e.Found)
}

func (e *SyntaxError) Code() ErrorCode { return ErrorCodeOther }

// NotEnoughParametersError is raised when a parameter limit finds no
// argument left to consume
type NotEnoughParametersError struct {
	Function string
	Expected int
	Actual   int
}

func (e *NotEnoughParametersError) Error() string {
	return fmt.Sprintf("not enough parameters for %s: expected at least %d, got %d", e.Function, e.Expected, e.Actual)
}

func (e *NotEnoughParametersError) Code() ErrorCode { return ErrorCodeValue }

// ParameterTypeError is raised when an argument has the wrong shape
type ParameterTypeError struct {
	Function string
	Position int // one-based
	Expected ValueKind
	Actual   ValueKind
}

func (e *ParameterTypeError) Error() string {
	return fmt.Sprintf("parameter %d of %s must be a %s, got a %s", e.Position, e.Function, e.Expected, e.Actual)
}

func (e *ParameterTypeError) Code() ErrorCode { return ErrorCodeValue }

// ExtraParametersError is raised when arguments remain after the contract
// ended
type ExtraParametersError struct {
	Function string
	Expected int
	Actual   int
}

func (e *ExtraParametersError) Error() string {
	return fmt.Sprintf("too many parameters for %s: expected %d, got %d", e.Function, e.Expected, e.Actual)
}

func (e *ExtraParametersError) Code() ErrorCode { return ErrorCodeValue }

// ReferenceError names a referenced cell that lies outside the sheet
type ReferenceError struct {
	Cell string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("cell %s is outside the table", e.Cell)
}

func (e *ReferenceError) Code() ErrorCode { return ErrorCodeRef }

// CyclicDependencyError is reported against the cell whose edit closed a
// reference cycle
type CyclicDependencyError struct {
	Cell CellPosition
}

func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency was found"
}

func (e *CyclicDependencyError) Code() ErrorCode { return ErrorCodeCycle }

// DependencyError marks a cell that reads another cell holding an error
type DependencyError struct {
	Cell CellPosition
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("error in referenced cell %s", e.Cell)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func (e *DependencyError) Code() ErrorCode { return CodeOf(e.Err) }

// Cell is the engine's record for one cell. At most one of value and err is
// set; plain text that is neither a formula nor a number has neither.
type Cell struct {
	text     string
	node     Node // nil when text did not parse
	value    float64
	hasValue bool
	err      error
}

// Text returns the raw text as typed
func (c *Cell) Text() string {
	return c.text
}

// IsFormula reports whether the text is meant as a formula
func (c *Cell) IsFormula() bool {
	return isFormulaText(c.text)
}

// Value returns the cached value, if any
func (c *Cell) Value() (float64, bool) {
	return c.value, c.hasValue
}

// Err returns the cached error, if any
func (c *Cell) Err() error {
	return c.err
}

// DisplayText renders the value if one is cached, the error message for a
// failed formula, and the raw text otherwise
func (c *Cell) DisplayText() string {
	if c.hasValue {
		return FormatNumber(c.value)
	}
	if c.err != nil && c.IsFormula() {
		return c.err.Error()
	}
	return c.text
}

func (c *Cell) setValue(v float64) {
	c.value, c.hasValue, c.err = v, true, nil
}

func (c *Cell) setError(err error) {
	c.value, c.hasValue, c.err = 0, false, err
}

func (c *Cell) clear() {
	c.value, c.hasValue, c.err = 0, false, nil
}

func isFormulaText(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "=")
}

// FormatNumber renders a value the way cells display it: integers without a
// fraction, everything else in the shortest exact decimal form
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
