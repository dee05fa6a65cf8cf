package xlsx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

func TestConvertFormula(t *testing.T) {
	cases := []struct {
		in, want string
		caseFn   func(string) string
	}{
		{"SUM(A1:B2,3)", "sum(A1:B2,3)", strings.ToLower},
		{"A1+SIN(B2)*2", "A1+sin(B2)*2", strings.ToLower},
		{"(A1+B1)/POW(2,3)", "(A1+B1)/pow(2,3)", strings.ToLower},
		{"mean(A1:A3)", "MEAN(A1:A3)", strings.ToUpper},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ConvertFormula(tc.in, tc.caseFn))
		})
	}
}

func sampleSheet(t *testing.T) *spreadsheet.Sheet {
	t.Helper()
	sheet, err := spreadsheet.NewSheet(3, 3)
	require.NoError(t, err)
	require.NoError(t, sheet.Set("A1", "2"))
	require.NoError(t, sheet.Set("B1", "=pow(A1,3)+sum(A1:A2)"))
	require.NoError(t, sheet.Set("A2", "text"))
	require.NoError(t, sheet.Set("C3", "=1/0"))
	return sheet
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleSheet(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{FormulaSheet, ValueSheet}, f.GetSheetList())

	formula, err := f.GetCellFormula(FormulaSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "POW(A1,3)+SUM(A1:A2)", formula)

	values := map[string]string{"A1": "2", "B1": "10", "A2": "text", "C3": "#DIV/0!"}
	for cell, want := range values {
		got, err := f.GetCellValue(ValueSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}

func TestSaveFile(t *testing.T) {
	t.Run("ReplacesDestination", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
		require.NoError(t, SaveFile(path, sampleSheet(t)))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{FormulaSheet, ValueSheet}, f.GetSheetList())

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("FailureLeavesNothingBehind", func(t *testing.T) {
		dir := t.TempDir()
		// a non-empty directory cannot be replaced by a file
		path := filepath.Join(dir, "out.xlsx")
		require.NoError(t, os.MkdirAll(filepath.Join(path, "keep"), 0o755))

		assert.Error(t, SaveFile(path, sampleSheet(t)))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "out.xlsx", entries[0].Name())
		assert.True(t, entries[0].IsDir())
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.xlsx")
		assert.Error(t, SaveFile(path, sampleSheet(t)))
		_, err := os.Stat(filepath.Dir(path))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleSheet(t)))

	sheet, err := Import(&buf, Size{})
	require.NoError(t, err)

	rows, columns := sheet.Size()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, columns)

	texts := map[string]string{"A1": "2", "B1": "=pow(A1,3)+sum(A1:A2)", "A2": "text", "C3": "=1/0"}
	for address, want := range texts {
		pos, err := spreadsheet.ParsePosition(address)
		require.NoError(t, err)
		text, err := sheet.TextAt(pos.Row, pos.Column-1)
		require.NoError(t, err)
		assert.Equal(t, want, text, address)
	}

	display, err := sheet.Get("B1")
	require.NoError(t, err)
	assert.Equal(t, "10", display)
	assert.Equal(t, 0, sheet.UndoDepth())
}

func TestImportWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", 3))
	require.NoError(t, f.SetCellFormula("Sheet1", "B1", "A1*2"))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "x"))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	sheet, err := Import(&buf, Size{Rows: 5, Columns: 5})
	require.NoError(t, err)

	rows, columns := sheet.Size()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 5, columns)

	for address, want := range map[string]string{"A1": "3", "B1": "6", "C1": "x"} {
		display, err := sheet.Get(address)
		require.NoError(t, err)
		assert.Equal(t, want, display, address)
	}
}

func TestImportInvalid(t *testing.T) {
	_, err := Import(strings.NewReader("not a workbook"), Size{})
	assert.Error(t, err)
}
