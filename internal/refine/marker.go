package refine

import (
	"github.com/thruflo/hsfit/internal/grid"
	"github.com/thruflo/hsfit/internal/knots"
)

// Marker turns flagged points into refinement boxes.
type Marker struct {
	basis     HierarchicalBasis
	params    [][]float64
	extension []int
}

// NewMarker returns a Marker over the given parameters. extension must have
// one non-negative entry per basis dimension.
func NewMarker(basis HierarchicalBasis, params [][]float64, extension []int) *Marker {
	return &Marker{
		basis:     basis,
		params:    params,
		extension: append([]int(nil), extension...),
	}
}

// Boxes returns one box per distinct max-level cell holding a point whose
// error is at least threshold, in order of first occurrence. errors is
// index-aligned with the marker's parameters; entries past the last parameter
// are ignored.
func (m *Marker) Boxes(errors []float64, threshold float64) []grid.Box {
	maxLevel := m.basis.MaxLevel()
	breaks := m.maxLevelBreaks(maxLevel)

	if len(errors) > len(m.params) {
		errors = errors[:len(m.params)]
	}

	var seen CellSet
	var boxes []grid.Box
	for i, e := range errors {
		if e < threshold {
			continue
		}
		cell := m.cellOf(m.params[i], breaks)
		if !seen.Add(cell) {
			continue
		}
		boxes = append(boxes, m.boxFor(cell, maxLevel))
	}
	return boxes
}

func (m *Marker) maxLevelBreaks(maxLevel int) [][]float64 {
	breaks := make([][]float64, m.basis.Dim())
	for dim := range breaks {
		breaks[dim] = m.basis.Breakpoints(maxLevel, dim)
	}
	return breaks
}

// cellOf locates the max-level cell containing parameter u.
func (m *Marker) cellOf(u []float64, breaks [][]float64) grid.Cell {
	cell := make(grid.Cell, len(breaks))
	for dim, b := range breaks {
		cell[dim] = knots.Find(b, u[dim])
	}
	return cell
}

// boxFor builds the box refining cell one level above its current level,
// grown by the extension and clipped to the target level's breakpoints.
func (m *Marker) boxFor(cell grid.Cell, maxLevel int) grid.Box {
	current := m.basis.QueryCoarsestActiveLevel(cell, cell.Upper(), maxLevel)
	target := current + 1

	d := len(cell)
	box := grid.Box{
		Level: target,
		Lower: make([]int, d),
		Upper: make([]int, d),
	}
	for dim := 0; dim < d; dim++ {
		first, last := cellRange(cell[dim], maxLevel, target)
		lastBreak := m.basis.NumBreaks(target, dim) - 1
		box.Lower[dim], box.Upper[dim] = ExtendRange(first, last, m.extension[dim], lastBreak)
	}
	return box
}

// cellRange maps max-level cell index a to the target-level breakpoint range
// [first, first+1] anchored at the cell. Levels are dyadic: one level finer
// doubles every index, one level coarser halves it.
func cellRange(a, maxLevel, target int) (first, last int) {
	if target <= maxLevel {
		first = a >> uint(maxLevel-target)
	} else {
		first = a << uint(target-maxLevel)
	}
	return first, first + 1
}

// ExtendRange grows the breakpoint range [first, last] by ext on each side
// and clips it to breakpoint indices [0, lastBreak]. The result always
// satisfies 0 <= low <= upp <= lastBreak.
func ExtendRange(first, last, ext, lastBreak int) (low, upp int) {
	if first > ext {
		low = first - ext
	}
	upp = last + ext
	if upp > lastBreak {
		upp = lastBreak
	}
	if upp < 0 {
		upp = 0
	}
	if low > upp {
		low = upp
	}
	return low, upp
}
