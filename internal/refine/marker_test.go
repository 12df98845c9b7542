package refine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/hsfit/internal/grid"
	"github.com/thruflo/hsfit/internal/hbasis"
	"github.com/thruflo/hsfit/internal/knots"
	"github.com/thruflo/hsfit/internal/testutil"
)

func unitBasis(t *testing.T, intervals ...int) *hbasis.Basis {
	t.Helper()
	lower := make([]float64, len(intervals))
	upper := make([]float64, len(intervals))
	for i := range upper {
		upper[i] = 1
	}
	b, err := hbasis.New(intervals, lower, upper)
	require.NoError(t, err)
	return b
}

func TestCellSet(t *testing.T) {
	t.Parallel()

	var s CellSet
	assert.True(t, s.Add(grid.Cell{1, 2}))
	assert.True(t, s.Add(grid.Cell{2, 1}))
	assert.False(t, s.Add(grid.Cell{1, 2}), "equal cells are not added twice")
	assert.True(t, s.Contains(grid.Cell{2, 1}))
	assert.False(t, s.Contains(grid.Cell{2, 2}))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []grid.Cell{{1, 2}, {2, 1}}, s.Cells())

	// The set keeps its own copy
	c := grid.Cell{5, 5}
	s.Add(c)
	c[0] = 0
	assert.True(t, s.Contains(grid.Cell{5, 5}))
}

func TestExtendRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		first, last int
		ext, limit  int
		low, upp    int
	}{
		{"interior", 4, 5, 1, 9, 3, 6},
		{"clips at zero", 0, 1, 1, 9, 0, 2},
		{"clips at last breakpoint", 8, 9, 2, 9, 6, 9},
		{"no extension", 3, 4, 0, 9, 3, 4},
		{"extension equal to first", 2, 3, 2, 9, 0, 5},
		{"wider than the grid", 1, 2, 20, 4, 0, 4},
		{"range beyond the grid collapses", 12, 13, 0, 9, 9, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			low, upp := ExtendRange(tt.first, tt.last, tt.ext, tt.limit)
			assert.Equal(t, tt.low, low)
			assert.Equal(t, tt.upp, upp)
		})
	}
}

func TestExtendRange_Bounds(t *testing.T) {
	t.Parallel()

	for limit := 0; limit < 6; limit++ {
		for first := 0; first < 8; first++ {
			for ext := 0; ext < 4; ext++ {
				low, upp := ExtendRange(first, first+1, ext, limit)
				assert.GreaterOrEqual(t, low, 0)
				assert.LessOrEqual(t, low, upp)
				assert.LessOrEqual(t, upp, limit)
			}
		}
	}
}

func TestCellRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		a, maxLevel, target int
		wantFirst, wantLast int
	}{
		{"same level", 5, 2, 2, 5, 6},
		{"coarser target", 5, 2, 1, 2, 3},
		{"much coarser target", 7, 3, 0, 0, 1},
		{"one level finer", 3, 1, 2, 6, 7},
		{"two levels finer", 1, 0, 2, 4, 5},
		{"first cell one level finer", 0, 0, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			first, last := cellRange(tt.a, tt.maxLevel, tt.target)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestMarker_GlobalThresholdMarksEveryCell(t *testing.T) {
	t.Parallel()

	basis := unitBasis(t, 4)
	params := [][]float64{{0.1}, {0.15}, {0.6}, {0.99}, {1}}
	errs := []float64{0, 0.2, 0, 0.5, 0}

	boxes := NewMarker(basis, params, []int{0}).Boxes(errs, 0)

	testutil.AssertBoxesEqual(t, []grid.Box{
		{Level: 1, Lower: []int{0}, Upper: []int{1}},
		{Level: 1, Lower: []int{4}, Upper: []int{5}},
		{Level: 1, Lower: []int{6}, Upper: []int{7}},
	}, boxes)
}

func TestMarker_ThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	basis := unitBasis(t, 4)
	params := [][]float64{{0.1}, {0.4}, {0.9}}
	errs := []float64{0.3, 0.5, 0.7}

	boxes := NewMarker(basis, params, []int{0}).Boxes(errs, 0.5)

	testutil.AssertBoxesEqual(t, []grid.Box{
		{Level: 1, Lower: []int{2}, Upper: []int{3}},
		{Level: 1, Lower: []int{6}, Upper: []int{7}},
	}, boxes)
}

func TestMarker_NothingAboveThreshold(t *testing.T) {
	t.Parallel()

	basis := unitBasis(t, 4)
	boxes := NewMarker(basis, line(8), []int{1}).Boxes(make([]float64, 8), 0.1)
	assert.Empty(t, boxes)
}

func TestMarker_ClipsAtDomainCorner(t *testing.T) {
	t.Parallel()

	// Ten breakpoints per dimension at the max level, and a point in the
	// first cell already active one level below it
	basis := &fakeBasis{dim: 2, cells: 4, breaksAt: map[int]int{1: 10}, maxLevel: 1, coarsest: 0}
	params := [][]float64{{0.05, 0.05}}

	boxes := NewMarker(basis, params, []int{1, 1}).Boxes([]float64{1}, 0.5)

	testutil.AssertBoxesEqual(t, []grid.Box{
		{Level: 1, Lower: []int{0, 0}, Upper: []int{2, 2}},
	}, boxes)
}

func TestMarker_ClipsAtDomainCornerOfMaxLevelCell(t *testing.T) {
	t.Parallel()

	// Ten breakpoints per dimension and the point's cell at the max level
	basis := unitBasis(t, 9, 9)
	require.Equal(t, 10, basis.NumBreaks(0, 0))
	params := [][]float64{{0.01, 0.01}}

	boxes := NewMarker(basis, params, []int{1, 1}).Boxes([]float64{1}, 0.5)

	testutil.AssertBoxesEqual(t, []grid.Box{
		{Level: 1, Lower: []int{0, 0}, Upper: []int{2, 2}},
	}, boxes)
	testutil.AssertBoxesWithin(t, boxes, basis.NumBreaks)
}

func TestMarker_LastCellClipsAtLastBreakpoint(t *testing.T) {
	t.Parallel()

	basis := unitBasis(t, 4)
	boxes := NewMarker(basis, [][]float64{{1}}, []int{2}).Boxes([]float64{1}, 0)

	// Cell 3 anchors at level-1 breakpoint 6; 6+2+1 clips to the last index 8
	testutil.AssertBoxesEqual(t, []grid.Box{{Level: 1, Lower: []int{4}, Upper: []int{8}}}, boxes)
}

func TestMarker_IgnoresErrorsWithoutParameters(t *testing.T) {
	t.Parallel()

	basis := unitBasis(t, 4)
	var boxes []grid.Box
	assert.NotPanics(t, func() {
		boxes = NewMarker(basis, [][]float64{{0.1}}, []int{0}).Boxes([]float64{1, 1, 1}, 0.5)
	})
	testutil.AssertBoxesEqual(t, []grid.Box{{Level: 1, Lower: []int{0}, Upper: []int{1}}}, boxes)
}

func TestMarker_TargetsLevelAboveCurrent(t *testing.T) {
	t.Parallel()

	basis := unitBasis(t, 2, 2)
	require.NoError(t, basis.RefineElements([]grid.Box{
		{Level: 2, Lower: []int{0, 0}, Upper: []int{4, 4}},
	}))
	require.NoError(t, basis.RefineElements([]grid.Box{
		{Level: 1, Lower: []int{2, 2}, Upper: []int{4, 4}},
	}))

	// The point in the lower left quadrant sits at level 2, the one in the
	// upper right quadrant at level 1
	params := [][]float64{{0.1, 0.1}, {0.9, 0.9}}
	boxes := NewMarker(basis, params, []int{0, 0}).Boxes([]float64{1, 1}, 0)
	require.Len(t, boxes, 2)

	assert.Equal(t, 3, boxes[0].Level)
	assert.Equal(t, 2, boxes[1].Level)
	// The level-2 box covers exactly the max-level cell holding the point
	testutil.AssertBoxesEqual(t, []grid.Box{{Level: 2, Lower: []int{7, 7}, Upper: []int{8, 8}}}, boxes[1:])
	// The level-3 box is anchored at the first level-3 child of the max-level cell
	testutil.AssertBoxesEqual(t, []grid.Box{{Level: 3, Lower: []int{0, 0}, Upper: []int{1, 1}}}, boxes[:1])
}

func TestMarker_OneBoxPerDistinctCell(t *testing.T) {
	t.Parallel()

	basis := unitBasis(t, 3, 3)
	rng := rand.New(rand.NewSource(11))
	var params [][]float64
	for i := 0; i < 200; i++ {
		params = append(params, []float64{rng.Float64(), rng.Float64()})
	}
	errs := make([]float64, len(params))
	for i := range errs {
		errs[i] = rng.Float64()
	}

	boxes := NewMarker(basis, params, []int{1, 1}).Boxes(errs, 0.5)

	var cells CellSet
	for i, e := range errs {
		if e >= 0.5 {
			cells.Add(grid.Cell{
				knots.Find(basis.Breakpoints(0, 0), params[i][0]),
				knots.Find(basis.Breakpoints(0, 1), params[i][1]),
			})
		}
	}
	assert.Len(t, boxes, cells.Len())
	testutil.AssertBoxesWithin(t, boxes, basis.NumBreaks)
	for _, box := range boxes {
		assert.Equal(t, 1, box.Level)
	}
}
