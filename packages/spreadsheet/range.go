package spreadsheet

import (
	"iter"
)

// Positions iterates the range row-major
func (r CellRange) Positions() iter.Seq[CellPosition] {
	return func(yield func(CellPosition) bool) {
		for row := r.From.Row; row <= r.To.Row; row++ {
			for column := r.From.Column; column <= r.To.Column; column++ {
				if !yield(CellPosition{Row: row, Column: column}) {
					return
				}
			}
		}
	}
}

// Intersect returns the overlap of two ranges
func (r CellRange) Intersect(other CellRange) (CellRange, bool) {
	out := CellRange{
		From: CellPosition{Row: max(r.From.Row, other.From.Row), Column: max(r.From.Column, other.From.Column)},
		To:   CellPosition{Row: min(r.To.Row, other.To.Row), Column: min(r.To.Column, other.To.Column)},
	}
	if out.From.Row > out.To.Row || out.From.Column > out.To.Column {
		return CellRange{}, false
	}
	return out, true
}

// Cells iterates the non-empty cells of the sheet row-major, the way the
// file writer and the command line walk it
func (s *Sheet) Cells() iter.Seq2[CellPosition, *Cell] {
	return func(yield func(CellPosition, *Cell) bool) {
		for row := 0; row < s.rows; row++ {
			for column := 1; column <= s.columns; column++ {
				cell := s.storage.cell(CellPosition{Row: row, Column: column})
				if cell.text == "" {
					continue
				}
				if !yield(CellPosition{Row: row, Column: column}, cell) {
					return
				}
			}
		}
	}
}

// Values iterates the cached values of a range, skipping cells without one
func (s *Sheet) Values(r CellRange) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for pos := range r.Positions() {
			if !s.inBounds(pos) {
				continue
			}
			if v, ok := s.storage.cell(pos).Value(); ok {
				if !yield(v) {
					return
				}
			}
		}
	}
}
