package refine

import "github.com/thruflo/hsfit/internal/grid"

// CellSet records the cells marked during one pass. Membership is an exact
// componentwise scan: a pass only holds the cells of flagged points, which
// stays small next to the cost of refitting.
type CellSet struct {
	cells []grid.Cell
}

// Contains reports whether a cell equal to c has been recorded.
func (s *CellSet) Contains(c grid.Cell) bool {
	for _, existing := range s.cells {
		if existing.Equal(c) {
			return true
		}
	}
	return false
}

// Add records c unless an equal cell is already present and reports whether
// it was added. The set keeps its own copy of c.
func (s *CellSet) Add(c grid.Cell) bool {
	if s.Contains(c) {
		return false
	}
	s.cells = append(s.cells, append(grid.Cell(nil), c...))
	return true
}

// Len returns the number of recorded cells.
func (s *CellSet) Len() int {
	return len(s.cells)
}

// Cells returns the recorded cells in insertion order.
func (s *CellSet) Cells() []grid.Cell {
	return s.cells
}
