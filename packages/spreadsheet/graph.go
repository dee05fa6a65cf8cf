package spreadsheet

import (
	"maps"
	"slices"
)

// DependencyNode represents a cell in the dependency graph. Nodes only exist
// while the cell takes part in at least one reference.
type DependencyNode struct {
	// address of *THIS* node
	Position CellPosition

	Precedents map[CellPosition]struct{} // cells this cell reads (incoming edges)
	Dependents map[CellPosition]struct{} // cells reading this cell (outgoing edges)

	// traversal marker, compared against the graph's generation
	color uint64
}

// DependencyGraph tracks which cells read which, and orders recalculation
type DependencyGraph struct {
	nodes map[CellPosition]*DependencyNode

	// bumped once per GetCalculationOrder call, so node colors from older
	// traversals read as unvisited without a reset
	generation uint64
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[CellPosition]*DependencyNode),
	}
}

// GetOrCreateNode gets an existing node or creates a new one
func (dg *DependencyGraph) GetOrCreateNode(pos CellPosition) *DependencyNode {
	if node, exists := dg.nodes[pos]; exists {
		return node
	}

	node := &DependencyNode{
		Position:   pos,
		Precedents: make(map[CellPosition]struct{}),
		Dependents: make(map[CellPosition]struct{}),
	}
	dg.nodes[pos] = node
	return node
}

// GetNode retrieves a node if it exists
func (dg *DependencyGraph) GetNode(pos CellPosition) (*DependencyNode, bool) {
	node, exists := dg.nodes[pos]
	return node, exists
}

// AddDependency records that to reads from
func (dg *DependencyGraph) AddDependency(from, to CellPosition) {
	dg.GetOrCreateNode(from).Dependents[to] = struct{}{}
	dg.GetOrCreateNode(to).Precedents[from] = struct{}{}
}

// RemovePrecedents drops every edge into pos, collecting nodes left without
// edges on either side
func (dg *DependencyGraph) RemovePrecedents(pos CellPosition) {
	node, exists := dg.nodes[pos]
	if !exists {
		return
	}

	for precedent := range node.Precedents {
		if precedentNode, ok := dg.nodes[precedent]; ok {
			delete(precedentNode.Dependents, pos)
			dg.cleanupNodeIfEmpty(precedent)
		}
	}
	clear(node.Precedents)
	dg.cleanupNodeIfEmpty(pos)
}

// cleanupNodeIfEmpty removes a node if it has no edges left
func (dg *DependencyGraph) cleanupNodeIfEmpty(pos CellPosition) {
	node, exists := dg.nodes[pos]
	if !exists {
		return
	}
	if len(node.Precedents) == 0 && len(node.Dependents) == 0 {
		delete(dg.nodes, pos)
	}
}

// GetCalculationOrder returns start followed by every cell that depends on
// it, transitively, such that each cell comes after all cells it reads. A
// cycle reachable from start fails with CyclicDependencyError.
func (dg *DependencyGraph) GetCalculationOrder(start CellPosition) ([]CellPosition, error) {
	dg.generation++
	dg.GetOrCreateNode(start)
	defer dg.cleanupNodeIfEmpty(start)

	var order []CellPosition
	if err := dg.visit(start, start, &order); err != nil {
		return nil, err
	}
	slices.Reverse(order)
	return order, nil
}

func (dg *DependencyGraph) gray() uint64  { return 2*dg.generation + 1 }
func (dg *DependencyGraph) black() uint64 { return 2*dg.generation + 2 }

// visit appends pos to order in postorder. Neighbours are walked in
// position order so the result does not depend on map iteration.
func (dg *DependencyGraph) visit(pos, start CellPosition, order *[]CellPosition) error {
	node := dg.nodes[pos]
	node.color = dg.gray()

	for _, next := range sortedPositions(node.Dependents) {
		nextNode := dg.nodes[next]
		switch nextNode.color {
		case dg.gray():
			return &CyclicDependencyError{Cell: start}
		case dg.black():
			continue
		}
		if err := dg.visit(next, start, order); err != nil {
			return err
		}
	}

	node.color = dg.black()
	*order = append(*order, pos)
	return nil
}

// Precedents returns the cells pos reads, sorted
func (dg *DependencyGraph) Precedents(pos CellPosition) []CellPosition {
	if node, ok := dg.nodes[pos]; ok {
		return sortedPositions(node.Precedents)
	}
	return nil
}

// Dependents returns the cells reading pos directly, sorted
func (dg *DependencyGraph) Dependents(pos CellPosition) []CellPosition {
	if node, ok := dg.nodes[pos]; ok {
		return sortedPositions(node.Dependents)
	}
	return nil
}

// NodeCount returns the number of nodes in the graph
func (dg *DependencyGraph) NodeCount() int {
	return len(dg.nodes)
}

// Clear removes all nodes
func (dg *DependencyGraph) Clear() {
	clear(dg.nodes)
}

func sortedPositions(set map[CellPosition]struct{}) []CellPosition {
	return slices.SortedFunc(maps.Keys(set), CellPosition.Compare)
}
