package spreadsheet

// Worksheet is the cell arena: one record per data cell, addressed by
// position. Cells never hold pointers to each other or to graph nodes.
type Worksheet struct {
	rows    int
	columns int
	cells   []Cell
}

// NewWorksheet allocates rows x columns empty cells
func NewWorksheet(rows, columns int) *Worksheet {
	return &Worksheet{
		rows:    rows,
		columns: columns,
		cells:   make([]Cell, rows*columns),
	}
}

// Contains reports whether pos addresses a data cell of this worksheet
func (w *Worksheet) Contains(pos CellPosition) bool {
	return pos.Row >= 0 && pos.Row < w.rows && pos.Column >= 1 && pos.Column <= w.columns
}

// Bounds returns the range covering every data cell
func (w *Worksheet) Bounds() CellRange {
	return NewCellRange(CellPosition{Row: 0, Column: 1}, CellPosition{Row: w.rows - 1, Column: w.columns})
}

// cell returns the record at pos, which must be in bounds
func (w *Worksheet) cell(pos CellPosition) *Cell {
	return &w.cells[pos.Row*w.columns+pos.Column-1]
}
