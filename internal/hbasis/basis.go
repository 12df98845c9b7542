// Package hbasis implements a dyadic hierarchical tensor basis of piecewise
// linear functions over a box-shaped parameter domain.
//
// Level l splits dimension i into Intervals[i]*2^l cells. Which level is
// active over each part of the domain is tracked on the cells of the maximum
// registered level: every such cell stores the finest level refined over it.
// The nested subdomains are then Omega^l = {cells with level >= l}, and the
// basis is the hierarchical (Kraft) selection of tensor hat functions: a
// level-l hat is used when its support lies in Omega^l but not Omega^(l+1).
package hbasis

import (
	"fmt"

	"github.com/thruflo/hsfit/internal/grid"
	"github.com/thruflo/hsfit/internal/knots"
)

// Basis is a hierarchical tensor basis. It is not safe for concurrent use.
type Basis struct {
	dim       int
	intervals []int
	lower     []float64
	upper     []float64

	maxLevel int
	// levels holds the active level of every max-level cell in row-major
	// order, last dimension fastest.
	levels []int

	funcs []Function
	// nodeIndex maps, per level, a flat node index to its position in funcs.
	nodeIndex []map[int]int
}

// New creates a level-0 basis with intervals[i] cells along dimension i of
// the domain [lower, upper].
func New(intervals []int, lower, upper []float64) (*Basis, error) {
	d := len(intervals)
	if d == 0 {
		return nil, fmt.Errorf("basis needs at least one dimension")
	}
	if len(lower) != d || len(upper) != d {
		return nil, fmt.Errorf("domain bounds have %d/%d entries, want %d", len(lower), len(upper), d)
	}
	for i := 0; i < d; i++ {
		if intervals[i] <= 0 {
			return nil, fmt.Errorf("dimension %d: interval count must be positive, got %d", i, intervals[i])
		}
		if !(upper[i] > lower[i]) {
			return nil, fmt.Errorf("dimension %d: upper bound %v must exceed lower bound %v", i, upper[i], lower[i])
		}
	}

	b := &Basis{
		dim:       d,
		intervals: append([]int(nil), intervals...),
		lower:     append([]float64(nil), lower...),
		upper:     append([]float64(nil), upper...),
	}
	b.levels = make([]int, b.cellCount(0))
	return b, nil
}

// Dim returns the number of parametric dimensions.
func (b *Basis) Dim() int {
	return b.dim
}

// MaxLevel returns the finest level registered so far.
func (b *Basis) MaxLevel() int {
	return b.maxLevel
}

// Cells returns the number of cells along dim at level. Levels beyond the
// maximum are valid and describe the grid a refinement would create.
func (b *Basis) Cells(level, dim int) int {
	return b.intervals[dim] << uint(level)
}

// NumBreaks returns the number of breakpoints along dim at level.
func (b *Basis) NumBreaks(level, dim int) int {
	return b.Cells(level, dim) + 1
}

// Knots returns the breakpoint vector along dim at level.
func (b *Basis) Knots(level, dim int) *knots.Vector {
	v, err := knots.Uniform(b.lower[dim], b.upper[dim], b.Cells(level, dim))
	if err != nil {
		// Bounds and counts are validated by New.
		panic(err)
	}
	return v
}

// Breakpoints returns the breakpoints along dim at level.
func (b *Basis) Breakpoints(level, dim int) []float64 {
	return b.Knots(level, dim).Breaks()
}

// Domain returns copies of the lower and upper domain corners.
func (b *Basis) Domain() (lower, upper []float64) {
	return append([]float64(nil), b.lower...), append([]float64(nil), b.upper...)
}

// LevelAt returns the active level of the max-level cell c.
func (b *Basis) LevelAt(c grid.Cell) int {
	return b.levels[b.offset(c)]
}

// QueryCoarsestActiveLevel returns the coarsest level active anywhere in the
// cell range [lower, upper) expressed at level. The query does not modify
// the basis. An empty range reports level 0.
func (b *Basis) QueryCoarsestActiveLevel(lower, upper []int, level int) int {
	lo, hi := b.toMaxLevel(lower, upper, level)
	coarsest := -1
	forEachIndex(lo, hi, func(idx []int) {
		lvl := b.levels[b.offset(idx)]
		if coarsest < 0 || lvl < coarsest {
			coarsest = lvl
		}
	})
	if coarsest < 0 {
		return 0
	}
	return coarsest
}

// RefineElements activates every box at its level. Each box names breakpoint
// indices at its own level; the cells between Lower and Upper are raised to
// that level unless they are already finer. Boxes targeting a level above the
// current maximum register the new level first.
func (b *Basis) RefineElements(boxes []grid.Box) error {
	target := b.maxLevel
	for i, box := range boxes {
		if err := box.Validate(b.dim); err != nil {
			return fmt.Errorf("box %d: %w", i, err)
		}
		for dim := 0; dim < b.dim; dim++ {
			if box.Upper[dim] > b.Cells(box.Level, dim) {
				return fmt.Errorf("box %d: upper corner %d exceeds %d breakpoints in dimension %d",
					i, box.Upper[dim], b.NumBreaks(box.Level, dim), dim)
			}
		}
		if box.Level > target {
			target = box.Level
		}
	}

	if target > b.maxLevel {
		b.growTo(target)
	}

	for _, box := range boxes {
		shift := uint(b.maxLevel - box.Level)
		lo := make([]int, b.dim)
		hi := make([]int, b.dim)
		for dim := 0; dim < b.dim; dim++ {
			lo[dim] = box.Lower[dim] << shift
			hi[dim] = box.Upper[dim] << shift
		}
		forEachIndex(lo, hi, func(idx []int) {
			off := b.offset(idx)
			if b.levels[off] < box.Level {
				b.levels[off] = box.Level
			}
		})
	}

	b.funcs = nil
	b.nodeIndex = nil
	return nil
}

// growTo registers levels up to level, splitting every max-level cell into
// its 2^d children, which inherit the parent's active level.
func (b *Basis) growTo(level int) {
	shift := uint(level - b.maxLevel)
	next := make([]int, b.cellCount(level))

	old := b.maxLevel
	b.maxLevel = level
	hi := make([]int, b.dim)
	for dim := range hi {
		hi[dim] = b.Cells(level, dim)
	}
	parent := make([]int, b.dim)
	forEachIndex(make([]int, b.dim), hi, func(idx []int) {
		for dim := range idx {
			parent[dim] = idx[dim] >> shift
		}
		next[b.offset(idx)] = b.levels[b.offsetAt(parent, old)]
	})
	b.levels = next
}

// toMaxLevel converts a cell range at level into max-level cell indices,
// clipped to the grid.
func (b *Basis) toMaxLevel(lower, upper []int, level int) (lo, hi []int) {
	lo = make([]int, b.dim)
	hi = make([]int, b.dim)
	for dim := 0; dim < b.dim; dim++ {
		l, u := lower[dim], upper[dim]
		switch {
		case level < b.maxLevel:
			s := uint(b.maxLevel - level)
			l <<= s
			u <<= s
		case level > b.maxLevel:
			s := uint(level - b.maxLevel)
			l >>= s
			u = (u + (1 << s) - 1) >> s
		}
		n := b.Cells(b.maxLevel, dim)
		lo[dim] = clamp(l, 0, n)
		hi[dim] = clamp(u, 0, n)
	}
	return lo, hi
}

func (b *Basis) cellCount(level int) int {
	n := 1
	for dim := 0; dim < b.dim; dim++ {
		n *= b.Cells(level, dim)
	}
	return n
}

func (b *Basis) offset(idx []int) int {
	return b.offsetAt(idx, b.maxLevel)
}

func (b *Basis) offsetAt(idx []int, level int) int {
	off := 0
	for dim := 0; dim < b.dim; dim++ {
		off = off*b.Cells(level, dim) + idx[dim]
	}
	return off
}

// forEachIndex calls fn for every multi-index in [lo, hi), last dimension
// fastest. fn must not retain idx.
func forEachIndex(lo, hi []int, fn func(idx []int)) {
	for dim := range lo {
		if lo[dim] >= hi[dim] {
			return
		}
	}
	idx := append([]int(nil), lo...)
	for {
		fn(idx)
		dim := len(idx) - 1
		for ; dim >= 0; dim-- {
			idx[dim]++
			if idx[dim] < hi[dim] {
				break
			}
			idx[dim] = lo[dim]
		}
		if dim < 0 {
			return
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
