// Package tablefile reads and writes the plain text table format:
//
//	<rows>,<columns>;<row>,<column>,<length>:<text>...<row>,<column>,<length>:<text>.
//
// Only non-empty cells are written, columns are zero-based data columns and
// length counts runes of text.
package tablefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

// Extension is appended by Save when the path has none
const Extension = ".table"

// maxCells bounds the sheet a file may ask for
const maxCells = 1 << 24

// ErrInvalidTableFile is returned for any malformed input
var ErrInvalidTableFile = errors.New("invalid table file")

// Grid is the part of a sheet the writer needs
type Grid interface {
	Size() (rows, columns int)
	TextAt(row, column int) (string, error)
}

// Encode writes the raw text of every non-empty cell
func Encode(w io.Writer, g Grid) error {
	bw := bufio.NewWriter(w)
	rows, columns := g.Size()
	fmt.Fprintf(bw, "%d,%d;", rows, columns)
	for row := 0; row < rows; row++ {
		for column := 0; column < columns; column++ {
			text, err := g.TextAt(row, column)
			if err != nil {
				return err
			}
			if text == "" {
				continue
			}
			fmt.Fprintf(bw, "%d,%d,%d:%s", row, column, len([]rune(text)), text)
		}
	}
	bw.WriteByte('.')
	return bw.Flush()
}

// Decode reads a table into a new sheet. Cells are set in file order, each
// one recalculating eagerly.
func Decode(r io.Reader, opts ...spreadsheet.Option) (*spreadsheet.Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d := &decoder{input: []rune(strings.TrimSuffix(string(data), "\n"))}

	rows, err := d.number(',')
	if err != nil {
		return nil, err
	}
	columns, err := d.number(';')
	if err != nil {
		return nil, err
	}
	if rows < 1 || columns < 1 || rows > maxCells/columns {
		return nil, fmt.Errorf("%w: bad size %dx%d", ErrInvalidTableFile, rows, columns)
	}
	sheet, err := spreadsheet.NewSheet(rows, columns, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTableFile, err)
	}

	for d.pos < len(d.input)-1 {
		row, column, text, err := d.record()
		if err != nil {
			return nil, err
		}
		if row >= rows || column >= columns {
			return nil, fmt.Errorf("%w: cell (%d, %d) outside %dx%d", ErrInvalidTableFile, row, column, rows, columns)
		}
		if err := sheet.SetTextAt(row, column, text); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTableFile, err)
		}
	}

	if d.pos != len(d.input)-1 || d.input[d.pos] != '.' {
		return nil, fmt.Errorf("%w: missing terminator", ErrInvalidTableFile)
	}
	return sheet, nil
}

type decoder struct {
	input []rune
	pos   int
}

// number reads digits up to sep and consumes sep
func (d *decoder) number(sep rune) (int, error) {
	start := d.pos
	for d.pos < len(d.input) && d.input[d.pos] >= '0' && d.input[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == start || d.pos >= len(d.input) || d.input[d.pos] != sep {
		return 0, fmt.Errorf("%w: expected number followed by %q at offset %d", ErrInvalidTableFile, sep, start)
	}
	n, err := strconv.Atoi(string(d.input[start:d.pos]))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTableFile, err)
	}
	d.pos++
	return n, nil
}

func (d *decoder) record() (row, column int, text string, err error) {
	if row, err = d.number(','); err != nil {
		return
	}
	if column, err = d.number(','); err != nil {
		return
	}
	length, err := d.number(':')
	if err != nil {
		return
	}
	// the text must leave room for the terminator
	if length >= len(d.input)-d.pos {
		return 0, 0, "", fmt.Errorf("%w: text of cell (%d, %d) runs past the end", ErrInvalidTableFile, row, column)
	}
	text = string(d.input[d.pos : d.pos+length])
	d.pos += length
	return row, column, text, nil
}

// Save writes the sheet to path, adding the .table extension when the path
// has none. The file is replaced atomically.
func Save(path string, g Grid) (string, error) {
	if filepath.Ext(path) == "" {
		path += Extension
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if err := Encode(f, g); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}

// Load reads a table file into a new sheet
func Load(path string, opts ...spreadsheet.Option) (*spreadsheet.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return sheet, nil
}
