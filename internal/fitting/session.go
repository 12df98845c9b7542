// Package fitting implements the least-squares fitting engine: it fits the
// coefficients of a hierarchical basis to a parametrized point cloud and
// reports the per-point residuals the refinement engine works from.
package fitting

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/thruflo/hsfit/internal/hbasis"
)

// ridge is added to the smoothing weight so the augmented system keeps full
// column rank when some basis function has no points in its support.
const ridge = 1e-10

// ErrNotComputed is returned when errors or values are requested before the
// first successful Compute.
var ErrNotComputed = errors.New("fitting: no coefficients computed")

// ErrorStats summarises the current point errors.
type ErrorStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Session owns one fit: the input cloud, the basis it is expressed in, the
// fitted coefficients and the point errors of the latest fit.
type Session struct {
	params [][]float64
	points [][]float64
	basis  *hbasis.Basis

	coefs       *mat.Dense
	pointErrors []float64
	stats       ErrorStats
}

// NewSession validates the inputs and returns an unfitted session. params[i]
// is the parameter of points[i]; every parameter has basis.Dim() entries and
// every point the same number of coordinates.
func NewSession(params, points [][]float64, basis *hbasis.Basis) (*Session, error) {
	if basis == nil {
		return nil, fmt.Errorf("basis is required")
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("no points to fit")
	}
	if len(params) != len(points) {
		return nil, fmt.Errorf("got %d parameters for %d points", len(params), len(points))
	}
	width := len(points[0])
	if width == 0 {
		return nil, fmt.Errorf("points have no coordinates")
	}
	for i := range params {
		if len(params[i]) != basis.Dim() {
			return nil, fmt.Errorf("parameter %d has %d entries, want %d", i, len(params[i]), basis.Dim())
		}
		if len(points[i]) != width {
			return nil, fmt.Errorf("point %d has %d coordinates, want %d", i, len(points[i]), width)
		}
	}

	return &Session{
		params: params,
		points: points,
		basis:  basis,
	}, nil
}

// Basis returns the basis the session fits in.
func (s *Session) Basis() *hbasis.Basis {
	return s.basis
}

// Parameters returns the parameter values of the points. The slice is shared
// and must not be modified.
func (s *Session) Parameters() [][]float64 {
	return s.params
}

// Compute solves the smoothed least-squares problem
//
//	min ||A c - X||^2 + (lambda + ridge) ||c||^2
//
// for the current basis, where A is the collocation matrix of the active
// basis functions at the parameters.
func (s *Session) Compute(lambda float64) error {
	if lambda < 0 {
		return fmt.Errorf("smoothing parameter must be non-negative, got %v", lambda)
	}

	n := len(s.params)
	m := s.basis.NumFunctions()
	width := len(s.points[0])

	a := mat.NewDense(n+m, m, nil)
	x := mat.NewDense(n+m, width, nil)
	for i, u := range s.params {
		for _, term := range s.basis.Eval(u) {
			a.Set(i, term.Index, term.Value)
		}
		x.SetRow(i, s.points[i])
	}
	w := math.Sqrt(lambda + ridge)
	for k := 0; k < m; k++ {
		a.Set(n+k, k, w)
	}

	var qr mat.QR
	qr.Factorize(a)

	coefs := mat.NewDense(m, width, nil)
	if err := qr.SolveTo(coefs, false, x); err != nil {
		return fmt.Errorf("failed to solve least squares system: %w", err)
	}

	s.coefs = coefs
	return nil
}

// Eval evaluates the fitted map at parameter u.
func (s *Session) Eval(u []float64) ([]float64, error) {
	if s.coefs == nil {
		return nil, ErrNotComputed
	}
	_, width := s.coefs.Dims()
	out := make([]float64, width)
	for _, term := range s.basis.Eval(u) {
		for j := 0; j < width; j++ {
			out[j] += term.Value * s.coefs.At(term.Index, j)
		}
	}
	return out, nil
}

// ComputeErrors recomputes every point error as the Euclidean distance
// between the fitted value and the data point, and refreshes the stats.
func (s *Session) ComputeErrors() error {
	if s.coefs == nil {
		return ErrNotComputed
	}

	errs := make([]float64, len(s.params))
	for i, u := range s.params {
		fitted, err := s.Eval(u)
		if err != nil {
			return err
		}
		errs[i] = floats.Distance(fitted, s.points[i], 2)
	}

	s.pointErrors = errs
	s.stats = ErrorStats{Min: floats.Min(errs), Max: floats.Max(errs)}
	return nil
}

// PointErrors returns the errors of the latest fit, index-aligned with the
// parameters. It is empty before the first ComputeErrors.
func (s *Session) PointErrors() []float64 {
	return s.pointErrors
}

// Stats returns the min and max point error.
func (s *Session) Stats() ErrorStats {
	return s.stats
}

// MaxError returns the largest point error.
func (s *Session) MaxError() float64 {
	return s.stats.Max
}

// MinError returns the smallest point error.
func (s *Session) MinError() float64 {
	return s.stats.Min
}

// NumPointsBelow counts the points whose error is below threshold.
func (s *Session) NumPointsBelow(threshold float64) int {
	count := 0
	for _, e := range s.pointErrors {
		if e < threshold {
			count++
		}
	}
	return count
}

// Coefficients returns a copy of the fitted coefficients, one row per basis
// function, or nil before the first Compute.
func (s *Session) Coefficients() *mat.Dense {
	if s.coefs == nil {
		return nil
	}
	return mat.DenseCopyOf(s.coefs)
}
