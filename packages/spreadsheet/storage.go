package spreadsheet

// Storage is the mutable state a sheet owns: the cell arena, the dependency
// graph and the undo history. Every edit threads through it explicitly.
type Storage struct {
	worksheet       *Worksheet
	dependencyGraph *DependencyGraph
	undo            *UndoStack
}

func newStorage(rows, columns int) *Storage {
	return &Storage{
		worksheet:       NewWorksheet(rows, columns),
		dependencyGraph: NewDependencyGraph(),
		undo:            NewUndoStack(),
	}
}

func (st *Storage) cell(pos CellPosition) *Cell {
	return st.worksheet.cell(pos)
}
