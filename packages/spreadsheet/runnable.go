package spreadsheet

import (
	"fmt"
)

// RunnableSheet wraps a Sheet with chainable calls that stop at the first
// error, for scripts and tests
type RunnableSheet struct {
	sheet   *Sheet
	err     error
	printLn func(string)
}

// NewRunnableSheet creates a sheet of the given size. printLn receives the
// output of Log.
func NewRunnableSheet(rows, columns int, printLn func(string), opts ...Option) *RunnableSheet {
	sheet, err := NewSheet(rows, columns, opts...)
	return &RunnableSheet{sheet: sheet, err: err, printLn: printLn}
}

// WrapSheet makes an existing sheet chainable
func WrapSheet(sheet *Sheet, printLn func(string)) *RunnableSheet {
	return &RunnableSheet{sheet: sheet, printLn: printLn}
}

// Set sets a cell's text
func (r *RunnableSheet) Set(address, text string) *RunnableSheet {
	if r.err != nil {
		return r
	}
	r.err = r.sheet.Set(address, text)
	return r
}

// Get returns the display text of a cell
func (r *RunnableSheet) Get(address string) (*RunnableSheet, string) {
	if r.err != nil {
		return r, ""
	}
	display, err := r.sheet.Get(address)
	r.err = err
	return r, display
}

// Undo reverts the last edit, failing when there is none
func (r *RunnableSheet) Undo() *RunnableSheet {
	if r.err != nil {
		return r
	}
	if !r.sheet.Undo() {
		r.err = NewApplicationError(InvalidArgument, "nothing to undo")
	}
	return r
}

// Copy copies one cell onto another, shifting relative references
func (r *RunnableSheet) Copy(from, to string) *RunnableSheet {
	if r.err != nil {
		return r
	}
	src, err := ParsePosition(from)
	if err != nil {
		r.err = err
		return r
	}
	dst, err := ParsePosition(to)
	if err != nil {
		r.err = err
		return r
	}
	clip, err := r.sheet.Copy(src.Row, src.Column)
	if err != nil {
		r.err = err
		return r
	}
	r.err = r.sheet.Paste(clip, dst.Row, dst.Column)
	return r
}

// Log prints a cell as "A1 = display"
func (r *RunnableSheet) Log(address string) *RunnableSheet {
	r, display := r.Get(address)
	if r.err == nil && r.printLn != nil {
		r.printLn(fmt.Sprintf("%s = %s", address, display))
	}
	return r
}

// Then runs fn unless an error occurred
func (r *RunnableSheet) Then(fn func(*RunnableSheet) *RunnableSheet) *RunnableSheet {
	if r.err != nil {
		return r
	}
	return fn(r)
}

// Error returns the first error of the chain
func (r *RunnableSheet) Error() error {
	return r.err
}

// Sheet returns the wrapped sheet
func (r *RunnableSheet) Sheet() *Sheet {
	return r.sheet
}

// Run returns the sheet and the first error of the chain
func (r *RunnableSheet) Run() (*Sheet, error) {
	return r.sheet, r.err
}
