package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
)

// CellPosition addresses one data cell. Row is zero-based, Column is
// one-based because column 0 holds the row labels and is never addressable.
type CellPosition struct {
	Row    int
	Column int
}

// NewCellPosition is a shorthand used across the package and its tests
func NewCellPosition(row, column int) CellPosition {
	return CellPosition{Row: row, Column: column}
}

// String renders the position in A1 notation
func (p CellPosition) String() string {
	if p.Row < 0 || p.Column < 1 {
		return fmt.Sprintf("R%dC%d", p.Row, p.Column)
	}
	return ColumnName(p.Column-1) + strconv.Itoa(p.Row+1)
}

// Compare orders positions row-major
func (p CellPosition) Compare(other CellPosition) int {
	if p.Row != other.Row {
		if p.Row < other.Row {
			return -1
		}
		return 1
	}
	if p.Column != other.Column {
		if p.Column < other.Column {
			return -1
		}
		return 1
	}
	return 0
}

// CellRange is a rectangular block of cells, always normalized so that From
// holds the minimum row and column and To the maximum.
type CellRange struct {
	From CellPosition
	To   CellPosition
}

// NewCellRange normalizes the corners, so C45:C33 and C33:C45 are equal
func NewCellRange(a, b CellPosition) CellRange {
	return CellRange{
		From: CellPosition{Row: min(a.Row, b.Row), Column: min(a.Column, b.Column)},
		To:   CellPosition{Row: max(a.Row, b.Row), Column: max(a.Column, b.Column)},
	}
}

func (r CellRange) String() string {
	return r.From.String() + ":" + r.To.String()
}

// Rows returns the height of the range
func (r CellRange) Rows() int {
	return r.To.Row - r.From.Row + 1
}

// Columns returns the width of the range
func (r CellRange) Columns() int {
	return r.To.Column - r.From.Column + 1
}

// Contains reports whether pos lies inside the range
func (r CellRange) Contains(pos CellPosition) bool {
	return pos.Row >= r.From.Row && pos.Row <= r.To.Row &&
		pos.Column >= r.From.Column && pos.Column <= r.To.Column
}

// ColumnName converts a zero-based column index to its letters. The
// encoding is bijective base-26 without a zero digit: A=0, Z=25, AA=26.
func ColumnName(id int) string {
	if id < 0 {
		return ""
	}
	var buf [16]byte
	i := len(buf)
	for n := id + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// ColumnID converts column letters back to the zero-based index
func ColumnID(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	n := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name %q", name)
		}
		n = n*26 + int(ch-'A') + 1
		if n > maxColumnID {
			return 0, fmt.Errorf("column name %q is too large", name)
		}
	}
	return n - 1, nil
}

// maxColumnID keeps the conversion away from integer overflow; XFD is the
// widest Excel column, this is far beyond it.
const maxColumnID = 1 << 30

// ParsePosition parses an A1 style address, accepting absolute markers.
// Lower-case column letters are accepted here since addresses typed on the
// command line are not formulas.
func ParsePosition(address string) (CellPosition, error) {
	s := strings.ToUpper(strings.TrimSpace(address))
	ref, n, ok := scanCellReference(s, 0)
	if !ok || n != len(s) {
		return CellPosition{}, NewApplicationError(InvalidArgument, fmt.Sprintf("invalid cell address %q", address))
	}
	return ref.pos, nil
}

// ParseRange parses A1:B2 into a normalized range
func ParseRange(address string) (CellRange, error) {
	from, to, ok := strings.Cut(address, ":")
	if !ok {
		return CellRange{}, NewApplicationError(InvalidArgument, fmt.Sprintf("invalid range %q", address))
	}
	a, err := ParsePosition(from)
	if err != nil {
		return CellRange{}, err
	}
	b, err := ParsePosition(to)
	if err != nil {
		return CellRange{}, err
	}
	return NewCellRange(a, b), nil
}
