package testutil

import (
	"math"

	"github.com/thruflo/hsfit/internal/state"
)

// SampleErrors returns the point errors 0.1, 0.2, ..., 0.9.
// Returns a new slice each time to prevent test interference.
func SampleErrors() []float64 {
	errs := make([]float64, 9)
	for i := range errs {
		errs[i] = float64(i+1) / 10
	}
	return errs
}

// Quadratic is u0^2 (+ u1^2 in two dimensions).
func Quadratic(u []float64) float64 {
	sum := 0.0
	for _, x := range u {
		sum += x * x
	}
	return sum
}

// Ridge is a narrow Gaussian bump centred at 0.7 along the first dimension.
// Fits of it need local refinement near the bump.
func Ridge(u []float64) float64 {
	d := u[0] - 0.7
	return math.Exp(-d * d / 0.005)
}

// SampleCloud1D samples f at n evenly spaced parameters in [0, 1]. Each
// point is the pair (u, f(u)).
func SampleCloud1D(n int, f func([]float64) float64) (params, points [][]float64) {
	for i := 0; i < n; i++ {
		u := []float64{float64(i) / float64(n-1)}
		params = append(params, u)
		points = append(points, []float64{u[0], f(u)})
	}
	return params, points
}

// SampleCloud2D samples f on an n by n grid over [0, 1]^2. Each point is the
// triple (u, v, f(u, v)).
func SampleCloud2D(n int, f func([]float64) float64) (params, points [][]float64) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u := []float64{float64(i) / float64(n-1), float64(j) / float64(n-1)}
			params = append(params, u)
			points = append(points, []float64{u[0], u[1], f(u)})
		}
	}
	return params, points
}

// SampleHistory returns history entries of a run that converged.
// Returns a new slice each time to prevent test interference.
func SampleHistory() []state.History {
	return []state.History{
		{Step: 1, Outcome: "progressed", Threshold: 0.2, MaxLevel: 1, MaxError: 0.12, MinError: 0.001},
		{Step: 2, Outcome: "progressed", Threshold: 0.05, MaxLevel: 2, MaxError: 0.03, MinError: 0.0005},
		{Step: 3, Outcome: "progressed", Threshold: 0.01, MaxLevel: 3, MaxError: 0.0008, MinError: 0.0001},
	}
}

// SampleHistoryStalled returns history entries whose max error stopped
// decreasing.
func SampleHistoryStalled() []state.History {
	return []state.History{
		{Step: 1, Outcome: "progressed", Threshold: 0.2, MaxLevel: 1, MaxError: 0.12},
		{Step: 2, Outcome: "progressed", Threshold: 0.2, MaxLevel: 2, MaxError: 0.12},
		{Step: 3, Outcome: "progressed", Threshold: 0.2, MaxLevel: 3, MaxError: 0.125},
	}
}
