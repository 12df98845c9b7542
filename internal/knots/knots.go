// Package knots provides breakpoint vectors and the interval lookup used to
// locate a parameter value within one dimension of a tensor grid.
package knots

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Vector is a strictly increasing sequence of breakpoints. Consecutive
// breakpoints bound one interval, so a Vector of n breakpoints has n-1
// intervals.
type Vector struct {
	breaks []float64
}

// New returns a Vector over the given breakpoints.
func New(breaks []float64) (*Vector, error) {
	if len(breaks) < 2 {
		return nil, fmt.Errorf("need at least 2 breakpoints, got %d", len(breaks))
	}
	for i := 1; i < len(breaks); i++ {
		if !(breaks[i] > breaks[i-1]) {
			return nil, fmt.Errorf("breakpoints not strictly increasing at index %d", i)
		}
	}
	return &Vector{breaks: append([]float64(nil), breaks...)}, nil
}

// Uniform returns n equal intervals spanning [lo, hi].
func Uniform(lo, hi float64, n int) (*Vector, error) {
	if n <= 0 {
		return nil, fmt.Errorf("interval count must be positive, got %d", n)
	}
	if !(hi > lo) {
		return nil, fmt.Errorf("upper bound %v must exceed lower bound %v", hi, lo)
	}
	breaks := make([]float64, n+1)
	floats.Span(breaks, lo, hi)
	return &Vector{breaks: breaks}, nil
}

// Breaks returns a copy of the breakpoints.
func (v *Vector) Breaks() []float64 {
	return append([]float64(nil), v.breaks...)
}

// Len returns the number of breakpoints.
func (v *Vector) Len() int {
	return len(v.breaks)
}

// Intervals returns the number of intervals.
func (v *Vector) Intervals() int {
	return len(v.breaks) - 1
}

// Find returns the index i of the interval with b[i] <= u < b[i+1]. The last
// breakpoint belongs to the last interval; values outside the vector clamp to
// the first or last interval.
func (v *Vector) Find(u float64) int {
	return Find(v.breaks, u)
}

// Find performs the interval lookup of Vector.Find directly on a sorted
// breakpoint slice of length at least 2.
func Find(breaks []float64, u float64) int {
	last := len(breaks) - 2
	if u <= breaks[0] {
		return 0
	}
	if u >= breaks[len(breaks)-1] {
		return last
	}
	if i := floats.Within(breaks, u); i >= 0 {
		return i
	}
	// NaN falls through Within; keep it inside the grid.
	return 0
}
