package spreadsheet

import (
	"strconv"
	"strings"
)

// refErrorText replaces a reference component that was shifted off the sheet
const refErrorText = "#REF!"

// RewriteAddresses shifts every relative component of every cell reference
// in text by (to - from). Components anchored with '$' keep their value. The
// text is not re-tokenized, so anything that is not a reference, including
// whitespace, is kept byte for byte.
func RewriteAddresses(text string, from, to CellPosition) string {
	rowShift := to.Row - from.Row
	columnShift := to.Column - from.Column
	if rowShift == 0 && columnShift == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for i := 0; i < len(text); {
		// a reference never starts in the middle of an identifier
		if i > 0 && (isUpper(text[i-1]) || isLower(text[i-1]) || isDigit(text[i-1]) || text[i-1] == '_') {
			i++
			continue
		}
		ref, end, ok := scanCellReference(text, i)
		if !ok || (end < len(text) && (isLower(text[end]) || text[end] == '_')) {
			i++
			continue
		}
		b.WriteString(text[last:i])
		b.WriteString(shiftReference(ref, rowShift, columnShift))
		last = end
		i = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func shiftReference(ref cellReference, rowShift, columnShift int) string {
	row, column := ref.pos.Row, ref.pos.Column
	if !ref.anchor.AbsoluteColumn() {
		column += columnShift
	}
	if !ref.anchor.AbsoluteRow() {
		row += rowShift
	}

	var b strings.Builder
	if ref.anchor.AbsoluteColumn() {
		b.WriteByte(charDollar)
	}
	if column < 1 {
		b.WriteString(refErrorText)
	} else {
		b.WriteString(ColumnName(column - 1))
	}
	if ref.anchor.AbsoluteRow() {
		b.WriteByte(charDollar)
	}
	if row < 0 {
		b.WriteString(refErrorText)
	} else {
		b.WriteString(strconv.Itoa(row + 1))
	}
	return b.String()
}
