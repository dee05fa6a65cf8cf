package spreadsheet

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the kind of a lexical token in a formula
type TokenType int

const (
	TokenEquals TokenType = iota
	TokenPlus
	TokenMinus
	TokenMultiply
	TokenDivide
	TokenOpenParen
	TokenCloseParen
	TokenComma
	TokenNumber
	TokenCell
	TokenRange
	TokenFunction
)

// tokenDescriptions are used verbatim in syntax error messages
var tokenDescriptions = map[TokenType]string{
	TokenEquals:     "=",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenMultiply:   "*",
	TokenDivide:     "/",
	TokenOpenParen:  "(",
	TokenCloseParen: ")",
	TokenComma:      ",",
	TokenNumber:     "number",
	TokenCell:       "cell position",
	TokenRange:      "cell range",
	TokenFunction:   "function name",
}

func (t TokenType) String() string {
	if s, ok := tokenDescriptions[t]; ok {
		return s
	}
	return "unknown token"
}

// Anchor records which parts of a cell reference carried a '$' marker
type Anchor uint8

const (
	AnchorColumn Anchor = 1 << iota
	AnchorRow
)

// AbsoluteColumn reports whether the column part is pinned
func (a Anchor) AbsoluteColumn() bool { return a&AnchorColumn != 0 }

// AbsoluteRow reports whether the row part is pinned
func (a Anchor) AbsoluteRow() bool { return a&AnchorRow != 0 }

// Token is one lexical unit. Only the payload field matching Type is set.
type Token struct {
	Type   TokenType
	Number float64      // TokenNumber
	Cell   CellPosition // TokenCell
	Anchor Anchor       // TokenCell
	Range  CellRange    // TokenRange
	Name   string       // TokenFunction
}

// char constants for punctuation
const (
	charEquals     = '='
	charPlus       = '+'
	charMinus      = '-'
	charMultiply   = '*'
	charDivide     = '/'
	charOpenParen  = '('
	charCloseParen = ')'
	charComma      = ','
	charColon      = ':'
	charDollar     = '$'
	charDot        = '.'
)

var punctuation = map[byte]TokenType{
	charEquals:     TokenEquals,
	charPlus:       TokenPlus,
	charMinus:      TokenMinus,
	charMultiply:   TokenMultiply,
	charDivide:     TokenDivide,
	charOpenParen:  TokenOpenParen,
	charCloseParen: TokenCloseParen,
	charComma:      TokenComma,
}

// matcher tries to recognize one token at the lexer's current offset and
// returns the offset just past it.
type matcher func(l *Lexer) (Token, int, bool)

// matchers are tried in order at every offset; the first hit wins. Ranges
// must come before single cells so A1:B2 is one token.
var matchers = []matcher{
	(*Lexer).matchPunctuation,
	(*Lexer).matchNumber,
	(*Lexer).matchRange,
	(*Lexer).matchCell,
	(*Lexer).matchFunction,
}

// Lexer turns formula text into tokens
type Lexer struct {
	input     string
	pos       int
	functions *FunctionRegistry
}

// NewLexer creates a new lexer for the given formula input. Function names
// are validated against functions.
func NewLexer(input string, functions *FunctionRegistry) *Lexer {
	return &Lexer{
		input:     input,
		functions: functions,
	}
}

// Tokenize is a shorthand for NewLexer(input, functions).Tokenize()
func Tokenize(input string, functions *FunctionRegistry) ([]Token, error) {
	return NewLexer(input, functions).Tokenize()
}

// Tokenize scans the whole input, failing on the first offset where no
// token kind matches
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return tokens, nil
		}

		token, end, ok := l.next()
		if !ok {
			return nil, &LexicalError{Position: l.pos, Remaining: l.input[l.pos:]}
		}
		if token.Type == TokenFunction && !l.functions.Has(token.Name) {
			return nil, &UnknownFunctionError{Name: token.Name}
		}
		tokens = append(tokens, token)
		l.pos = end
	}
}

func (l *Lexer) next() (Token, int, bool) {
	for _, match := range matchers {
		if token, end, ok := match(l); ok {
			return token, end, true
		}
	}
	return Token{}, l.pos, false
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *Lexer) matchPunctuation() (Token, int, bool) {
	if tokenType, ok := punctuation[l.input[l.pos]]; ok {
		return Token{Type: tokenType}, l.pos + 1, true
	}
	return Token{}, 0, false
}

// matchNumber accepts digits with an optional fraction; a leading dot is not
// a number
func (l *Lexer) matchNumber() (Token, int, bool) {
	end := scanDigits(l.input, l.pos)
	if end == l.pos {
		return Token{}, 0, false
	}
	if end < len(l.input) && l.input[end] == charDot {
		end = scanDigits(l.input, end+1)
	}
	value, err := strconv.ParseFloat(l.input[l.pos:end], 64)
	if err != nil {
		return Token{}, 0, false
	}
	return Token{Type: TokenNumber, Number: value}, end, true
}

func (l *Lexer) matchRange() (Token, int, bool) {
	from, end, ok := scanCellReference(l.input, l.pos)
	if !ok || end >= len(l.input) || l.input[end] != charColon {
		return Token{}, 0, false
	}
	to, end, ok := scanCellReference(l.input, end+1)
	if !ok {
		return Token{}, 0, false
	}
	return Token{Type: TokenRange, Range: NewCellRange(from.pos, to.pos)}, end, true
}

func (l *Lexer) matchCell() (Token, int, bool) {
	ref, end, ok := scanCellReference(l.input, l.pos)
	if !ok {
		return Token{}, 0, false
	}
	return Token{Type: TokenCell, Cell: ref.pos, Anchor: ref.anchor}, end, true
}

// matchFunction accepts the lower-case identifier shape; the name itself is
// checked against the registry by Tokenize
func (l *Lexer) matchFunction() (Token, int, bool) {
	if !isLower(l.input[l.pos]) {
		return Token{}, 0, false
	}
	end := l.pos + 1
	for end < len(l.input) && isFunctionChar(l.input[end]) {
		end++
	}
	return Token{Type: TokenFunction, Name: l.input[l.pos:end]}, end, true
}

// cellReference is a scanned A1 reference
type cellReference struct {
	pos    CellPosition
	anchor Anchor
}

// scanCellReference matches \$?[A-Z]+\$?[0-9]+ at offset i. Row 0 does not
// exist in A1 notation and is rejected.
func scanCellReference(s string, i int) (cellReference, int, bool) {
	var ref cellReference
	if i < len(s) && s[i] == charDollar {
		ref.anchor |= AnchorColumn
		i++
	}
	lettersStart := i
	for i < len(s) && isUpper(s[i]) {
		i++
	}
	if i == lettersStart {
		return ref, 0, false
	}
	letters := s[lettersStart:i]
	if i < len(s) && s[i] == charDollar {
		ref.anchor |= AnchorRow
		i++
	}
	end := scanDigits(s, i)
	if end == i {
		return ref, 0, false
	}
	row, err := strconv.Atoi(s[i:end])
	if err != nil || row < 1 {
		return ref, 0, false
	}
	column, err := ColumnID(letters)
	if err != nil {
		return ref, 0, false
	}
	ref.pos = CellPosition{Row: row - 1, Column: column + 1}
	return ref, end, true
}

func scanDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }
func isLower(ch byte) bool { return ch >= 'a' && ch <= 'z' }

func isFunctionChar(ch byte) bool {
	return isLower(ch) || isDigit(ch) || ch == '_'
}
