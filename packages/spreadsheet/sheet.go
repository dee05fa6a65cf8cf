package spreadsheet

import (
	"fmt"
	"log/slog"
)

// AppErrorCode represents gRPC-style error codes for application-level errors.
// note that we are skipping error codes that don't make sense for our use-case,
// like unauthenticated, or permission denied.
type AppErrorCode int

const (
	// OK indicates the operation completed successfully.
	OK AppErrorCode = 0

	// InvalidArgument indicates client specified an invalid argument, such
	// as a malformed address or a non-positive sheet size.
	InvalidArgument AppErrorCode = 3

	// AlreadyExists means an attempt to register a function failed because
	// the name is taken.
	AlreadyExists AppErrorCode = 6

	// OutOfRange means a row or column past the sheet's size was used.
	OutOfRange AppErrorCode = 11
)

// AppError represents errors at the application level (not
// spreadsheet formula errors)
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Option configures a Sheet
type Option func(*Sheet)

// WithLogger sets the logger edits and recalculations are reported to
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sheet) {
		s.logger = logger
	}
}

// WithFunctions replaces the built-in function registry
func WithFunctions(functions *FunctionRegistry) Option {
	return func(s *Sheet) {
		s.functions = functions
	}
}

// WithListener registers a callback receiving the new display text of every
// cell an edit touched. It must not edit the sheet.
func WithListener(listener func(pos CellPosition, display string)) Option {
	return func(s *Sheet) {
		s.listener = listener
	}
}

// Sheet is the cell engine. It owns every cell record, the dependency graph
// and the undo history; all mutation goes through SetText. A Sheet is not
// safe for concurrent use and SetText must not be re-entered.
type Sheet struct {
	rows      int
	columns   int
	storage   *Storage
	functions *FunctionRegistry
	evaluator *Evaluator
	logger    *slog.Logger
	listener  func(CellPosition, string)
}

type SheetInterface interface {
	// editing, by one-based data column

	SetText(row, column int, text string) error
	DisplayText(row, column int) (string, error)
	Undo() bool

	// raw text by zero-based data column, for file loaders

	TextAt(row, column int) (string, error)
	SetTextAt(row, column int, text string) error

	// A1 addressing

	Set(address string, text string) error
	Get(address string) (string, error)
}

var _ SheetInterface = (*Sheet)(nil)

// NewSheet creates an empty sheet with the given number of rows and data
// columns
func NewSheet(rows, columns int, opts ...Option) (*Sheet, error) {
	if rows < 1 || columns < 1 {
		return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("invalid sheet size %dx%d", rows, columns))
	}
	s := &Sheet{
		rows:    rows,
		columns: columns,
		storage: newStorage(rows, columns),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.functions == nil {
		s.functions = DefaultFunctions()
	}
	s.evaluator = NewEvaluator(s.functions)
	return s, nil
}

// Size returns the number of rows and data columns
func (s *Sheet) Size() (rows, columns int) {
	return s.rows, s.columns
}

// Functions returns the registry formulas are resolved against
func (s *Sheet) Functions() *FunctionRegistry {
	return s.functions
}

func (s *Sheet) inBounds(pos CellPosition) bool {
	return s.storage.worksheet.Contains(pos)
}

func (s *Sheet) position(row, column int) (CellPosition, error) {
	pos := CellPosition{Row: row, Column: column}
	if !s.inBounds(pos) {
		return pos, NewApplicationError(OutOfRange, fmt.Sprintf("cell (%d, %d) is outside the %dx%d table", row, column, s.rows, s.columns))
	}
	return pos, nil
}

// SetText replaces the text of a cell, records the previous text for undo
// and recalculates every cell depending on it
func (s *Sheet) SetText(row, column int, text string) error {
	pos, err := s.position(row, column)
	if err != nil {
		return err
	}
	s.update(pos, text, true)
	return nil
}

// SetTextAt is SetText by zero-based data column without an undo entry
func (s *Sheet) SetTextAt(row, column int, text string) error {
	pos, err := s.position(row, column+1)
	if err != nil {
		return err
	}
	s.update(pos, text, false)
	return nil
}

// TextAt returns the raw text by zero-based data column
func (s *Sheet) TextAt(row, column int) (string, error) {
	pos, err := s.position(row, column+1)
	if err != nil {
		return "", err
	}
	return s.storage.cell(pos).text, nil
}

// DisplayText returns what the cell shows: its value, its error message or
// its raw text
func (s *Sheet) DisplayText(row, column int) (string, error) {
	pos, err := s.position(row, column)
	if err != nil {
		return "", err
	}
	return s.storage.cell(pos).DisplayText(), nil
}

// Value returns the cached value of a cell, or its error. Cells without
// either read as 0, like they do inside formulas.
func (s *Sheet) Value(row, column int) (float64, error) {
	pos, err := s.position(row, column)
	if err != nil {
		return 0, err
	}
	cell := s.storage.cell(pos)
	if cell.err != nil {
		return 0, cell.err
	}
	v, _ := cell.Value()
	return v, nil
}

// Evaluate computes a formula against the current cell values without
// storing it anywhere
func (s *Sheet) Evaluate(text string) (float64, error) {
	node, err := Parse(text, s.functions)
	if err != nil {
		return 0, err
	}
	return s.evaluator.EvaluateScalar(node, s.lookup)
}

// Cell returns the record at a position for inspection
func (s *Sheet) Cell(pos CellPosition) (*Cell, bool) {
	if !s.inBounds(pos) {
		return nil, false
	}
	return s.storage.cell(pos), true
}

// Set is SetText with an A1 address
func (s *Sheet) Set(address string, text string) error {
	pos, err := ParsePosition(address)
	if err != nil {
		return err
	}
	return s.SetText(pos.Row, pos.Column, text)
}

// Get is DisplayText with an A1 address
func (s *Sheet) Get(address string) (string, error) {
	pos, err := ParsePosition(address)
	if err != nil {
		return "", err
	}
	return s.DisplayText(pos.Row, pos.Column)
}

// Precedents returns the cells pos reads
func (s *Sheet) Precedents(pos CellPosition) []CellPosition {
	return s.storage.dependencyGraph.Precedents(pos)
}

// Dependents returns the cells reading pos directly
func (s *Sheet) Dependents(pos CellPosition) []CellPosition {
	return s.storage.dependencyGraph.Dependents(pos)
}

// update runs the edit pipeline: record undo, reparse, rewire the graph and
// recalculate the cell and its dependents in order
func (s *Sheet) update(pos CellPosition, text string, recordUndo bool) {
	cell := s.storage.cell(pos)
	if recordUndo && cell.text != text {
		s.storage.undo.push(UndoEntry{Position: pos, Text: cell.text})
	}

	cell.text = text
	cell.node = nil
	cell.clear()

	graph := s.storage.dependencyGraph
	graph.RemovePrecedents(pos)

	node, parseErr := Parse(text, s.functions)
	if parseErr == nil {
		cell.node = node
		for _, ref := range References(node, s.storage.worksheet.Bounds()) {
			graph.AddDependency(ref, pos)
		}
	} else if cell.IsFormula() {
		cell.setError(parseErr)
		s.logger.Debug("formula did not parse", "cell", pos, "error", parseErr)
	}

	order, err := graph.GetCalculationOrder(pos)
	if err != nil {
		// A plain number has no precedents, so the cycle lies further down
		// and the cell keeps its own value.
		if cell.node != nil && cell.IsFormula() {
			cell.setError(err)
		} else {
			s.recalculate(pos)
		}
		// Dependents keep their previous values until the cycle is broken.
		s.logger.Info("cyclic dependency", "cell", pos)
		s.notify(pos)
		return
	}

	if parseErr != nil {
		s.notify(pos)
		order = order[1:]
	}
	s.logger.Debug("recalculating", "cell", pos, "cells", len(order))
	for _, p := range order {
		s.recalculate(p)
		s.notify(p)
	}
}

func (s *Sheet) recalculate(pos CellPosition) {
	cell := s.storage.cell(pos)
	if cell.node == nil {
		return
	}
	v, err := s.evaluator.EvaluateScalar(cell.node, s.lookup)
	if err != nil {
		cell.setError(err)
		s.logger.Debug("evaluation failed", "cell", pos, "error", err)
		return
	}
	cell.setValue(v)
}

// lookup feeds cell values to the evaluator. Errored cells poison their
// readers, cells without a value read as 0.
func (s *Sheet) lookup(row, column int) (float64, error) {
	pos := CellPosition{Row: row, Column: column}
	if !s.inBounds(pos) {
		return 0, ErrOutOfBounds
	}
	cell := s.storage.cell(pos)
	if cell.err != nil {
		return 0, &DependencyError{Cell: pos, Err: cell.err}
	}
	v, _ := cell.Value()
	return v, nil
}

func (s *Sheet) notify(pos CellPosition) {
	if s.listener != nil {
		s.listener(pos, s.storage.cell(pos).DisplayText())
	}
}

// Undo restores the text of the most recent edit. It reports false when
// there is nothing to undo.
func (s *Sheet) Undo() bool {
	entry, ok := s.storage.undo.pop()
	if !ok {
		return false
	}
	s.logger.Info("undo", "cell", entry.Position)
	s.update(entry.Position, entry.Text, false)
	return true
}

// UndoDepth returns the number of edits Undo can revert
func (s *Sheet) UndoDepth() int {
	return s.storage.undo.Len()
}

// UndoEntry is the text a cell had before an edit
type UndoEntry struct {
	Position CellPosition
	Text     string
}

// UndoStack is a LIFO of undo entries
type UndoStack struct {
	entries []UndoEntry
}

// NewUndoStack creates an empty stack
func NewUndoStack() *UndoStack {
	return &UndoStack{}
}

func (us *UndoStack) push(entry UndoEntry) {
	us.entries = append(us.entries, entry)
}

func (us *UndoStack) pop() (UndoEntry, bool) {
	if len(us.entries) == 0 {
		return UndoEntry{}, false
	}
	entry := us.entries[len(us.entries)-1]
	us.entries = us.entries[:len(us.entries)-1]
	return entry, true
}

// Len returns the number of entries
func (us *UndoStack) Len() int {
	return len(us.entries)
}

// Clipboard is a copied cell. Formulas that parsed are shifted on paste,
// anything else is pasted as is.
type Clipboard struct {
	Text         string
	Source       CellPosition
	ValidFormula bool
}

// Copy captures a cell for a later Paste
func (s *Sheet) Copy(row, column int) (Clipboard, error) {
	pos, err := s.position(row, column)
	if err != nil {
		return Clipboard{}, err
	}
	cell := s.storage.cell(pos)
	return Clipboard{
		Text:         cell.text,
		Source:       pos,
		ValidFormula: cell.node != nil && cell.IsFormula(),
	}, nil
}

// Paste writes a copied cell, shifting relative references by the distance
// between the source and the target. It is undoable like any edit.
func (s *Sheet) Paste(clip Clipboard, row, column int) error {
	pos, err := s.position(row, column)
	if err != nil {
		return err
	}
	text := clip.Text
	if clip.ValidFormula {
		text = RewriteAddresses(text, clip.Source, pos)
	}
	s.update(pos, text, true)
	return nil
}
