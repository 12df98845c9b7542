package refine

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/thruflo/hsfit/internal/grid"
)

// fakeBasis is a uniform basis over [0, 1]^d with cells<<level cells per
// dimension unless breaksAt overrides a level. Every query reports the same
// coarsest level.
type fakeBasis struct {
	dim       int
	cells     int
	breaksAt  map[int]int
	maxLevel  int
	coarsest  int
	refined   [][]grid.Box
	refineErr error
}

func (b *fakeBasis) Dim() int      { return b.dim }
func (b *fakeBasis) MaxLevel() int { return b.maxLevel }

func (b *fakeBasis) NumBreaks(level, dim int) int {
	if n, ok := b.breaksAt[level]; ok {
		return n
	}
	return b.cells<<uint(level) + 1
}

func (b *fakeBasis) Breakpoints(level, dim int) []float64 {
	return floats.Span(make([]float64, b.NumBreaks(level, dim)), 0, 1)
}

func (b *fakeBasis) QueryCoarsestActiveLevel(lower, upper []int, level int) int {
	return b.coarsest
}

func (b *fakeBasis) RefineElements(boxes []grid.Box) error {
	if b.refineErr != nil {
		return b.refineErr
	}
	b.refined = append(b.refined, boxes)
	for _, box := range boxes {
		if box.Level > b.maxLevel {
			b.maxLevel = box.Level
		}
	}
	return nil
}

var errSolve = errors.New("singular system")

// fakeSession replays a scripted sequence of error vectors: fit k publishes
// fits[k], and the last entry repeats once the script runs out.
type fakeSession struct {
	params     [][]float64
	fits       [][]float64
	computed   int
	current    []float64
	lambdas    []float64
	computeErr error
}

func (s *fakeSession) Compute(lambda float64) error {
	if s.computeErr != nil {
		return s.computeErr
	}
	s.lambdas = append(s.lambdas, lambda)
	s.computed++
	return nil
}

func (s *fakeSession) ComputeErrors() error {
	i := s.computed - 1
	if i >= len(s.fits) {
		i = len(s.fits) - 1
	}
	s.current = append([]float64(nil), s.fits[i]...)
	return nil
}

func (s *fakeSession) PointErrors() []float64  { return s.current }
func (s *fakeSession) Parameters() [][]float64 { return s.params }

func (s *fakeSession) MaxError() float64 {
	if len(s.current) == 0 {
		return 0
	}
	return floats.Max(s.current)
}

func (s *fakeSession) MinError() float64 {
	if len(s.current) == 0 {
		return 0
	}
	return floats.Min(s.current)
}

// fitted returns a fakeSession whose first fit has already been computed.
func fitted(params [][]float64, fits ...[]float64) *fakeSession {
	s := &fakeSession{params: params, fits: fits}
	_ = s.Compute(0)
	_ = s.ComputeErrors()
	s.lambdas = nil
	return s
}

// line returns n parameters evenly spread over the open unit interval.
func line(n int) [][]float64 {
	params := make([][]float64, n)
	for i := range params {
		params[i] = []float64{(float64(i) + 0.5) / float64(n)}
	}
	return params
}
