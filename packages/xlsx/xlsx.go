// Package xlsx moves the raw text of a sheet to and from Excel workbooks.
package xlsx

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

const (
	// FormulaSheet holds the cell text, formulas as workbook formulas
	FormulaSheet = "Sheet1"
	// ValueSheet holds what every cell displays
	ValueSheet = "values"
)

// Size is the smallest sheet Import creates, grown to fit the workbook
type Size struct {
	Rows    int
	Columns int
}

// Export writes the sheet as a workbook with a formula sheet and a value
// sheet
func Export(w io.Writer, sheet *spreadsheet.Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(ValueSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", ValueSheet, err)
	}

	for pos, cell := range sheet.Cells() {
		name, err := excelize.CoordinatesToCellName(pos.Column, pos.Row+1)
		if err != nil {
			return err
		}
		if err := writeText(f, name, cell); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := writeValue(f, name, cell); err != nil {
			return fmt.Errorf("write %s value: %w", name, err)
		}
	}
	return f.Write(w)
}

// SaveFile exports the sheet to path. The workbook is written next to path
// and renamed over it, so a failed export leaves no partial file behind.
func SaveFile(path string, sheet *spreadsheet.Sheet) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Export(f, sheet); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeText(f *excelize.File, name string, cell *spreadsheet.Cell) error {
	text := cell.Text()
	if cell.IsFormula() {
		formula := strings.TrimPrefix(strings.TrimSpace(text), "=")
		return f.SetCellFormula(FormulaSheet, name, ConvertFormula(formula, strings.ToUpper))
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
		return f.SetCellValue(FormulaSheet, name, v)
	}
	return f.SetCellStr(FormulaSheet, name, text)
}

func writeValue(f *excelize.File, name string, cell *spreadsheet.Cell) error {
	if v, ok := cell.Value(); ok {
		return f.SetCellValue(ValueSheet, name, v)
	}
	if err := cell.Err(); err != nil && cell.IsFormula() {
		return f.SetCellStr(ValueSheet, name, spreadsheet.CodeOf(err).String())
	}
	return f.SetCellStr(ValueSheet, name, cell.Text())
}

// Import reads the first sheet of a workbook. Workbook formulas become
// '=' formulas with lower-case function names; other cells keep their
// formatted text.
func Import(r io.Reader, atLeast Size, opts ...spreadsheet.Option) (*spreadsheet.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name := sheets[0]

	// formula cells without a cached value do not show up in GetRows, the
	// value sheet written by Export covers them
	var data Size
	for _, sheetName := range sheets {
		if sheetName != name && sheetName != ValueSheet {
			continue
		}
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read rows from sheet %q: %w", sheetName, err)
		}
		data.Rows = max(data.Rows, len(rows))
		for _, row := range rows {
			data.Columns = max(data.Columns, len(row))
		}
	}

	sheet, err := spreadsheet.NewSheet(max(atLeast.Rows, data.Rows, 1), max(atLeast.Columns, data.Columns, 1), opts...)
	if err != nil {
		return nil, err
	}

	for rowIdx := 0; rowIdx < data.Rows; rowIdx++ {
		for colIdx := 0; colIdx < data.Columns; colIdx++ {
			text, err := readText(f, name, colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			if text == "" {
				continue
			}
			if err := sheet.SetTextAt(rowIdx, colIdx, text); err != nil {
				return nil, err
			}
		}
	}
	return sheet, nil
}

func readText(f *excelize.File, sheet string, col, row int) (string, error) {
	cellName, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	formula, err := f.GetCellFormula(sheet, cellName)
	if err != nil {
		return "", fmt.Errorf("read formula %s: %w", cellName, err)
	}
	if formula != "" {
		return "=" + ConvertFormula(formula, strings.ToLower), nil
	}
	value, err := f.GetCellValue(sheet, cellName)
	if err != nil {
		return "", fmt.Errorf("read value %s: %w", cellName, err)
	}
	return value, nil
}

// ConvertFormula re-renders a formula (without the leading '=') through the
// Excel tokenizer, passing function names through caseFn
func ConvertFormula(formula string, caseFn func(string) string) string {
	ps := efp.ExcelParser()
	tokens := ps.Parse(formula)

	var b strings.Builder
	for _, t := range tokens {
		switch t.TType {
		case efp.TokenTypeFunction:
			if t.TSubType == efp.TokenSubTypeStart {
				b.WriteString(caseFn(t.TValue))
				b.WriteByte('(')
			} else {
				b.WriteByte(')')
			}
		case efp.TokenTypeSubexpression:
			if t.TSubType == efp.TokenSubTypeStart {
				b.WriteByte('(')
			} else {
				b.WriteByte(')')
			}
		case efp.TokenTypeArgument:
			b.WriteByte(',')
		case efp.TokenTypeWhitespace:
			b.WriteByte(' ')
		default:
			b.WriteString(t.TValue)
		}
	}
	return b.String()
}
