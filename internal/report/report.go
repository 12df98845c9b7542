// Package report renders refinement traces as convergence plots.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/thruflo/hsfit/internal/state"
)

// Plot size used by SaveConvergencePlot.
const (
	Width  = 8 * vg.Inch
	Height = 4 * vg.Inch
)

var (
	maxColor = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	minColor = color.RGBA{R: 40, G: 90, B: 200, A: 255}
)

// NewConvergencePlot builds a plot of the max and min point error against the
// refinement step.
func NewConvergencePlot(title string, history []state.History) (*plot.Plot, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("history is empty")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Point error"

	maxPts := make(plotter.XYs, 0, len(history))
	minPts := make(plotter.XYs, 0, len(history))
	for _, h := range history {
		maxPts = append(maxPts, plotter.XY{X: float64(h.Step), Y: h.MaxError})
		minPts = append(minPts, plotter.XY{X: float64(h.Step), Y: h.MinError})
	}

	maxLine, err := plotter.NewLine(maxPts)
	if err != nil {
		return nil, fmt.Errorf("failed to create max error line: %w", err)
	}
	maxLine.Color = maxColor
	maxLine.Width = vg.Points(1.5)

	minLine, err := plotter.NewLine(minPts)
	if err != nil {
		return nil, fmt.Errorf("failed to create min error line: %w", err)
	}
	minLine.Color = minColor
	minLine.Width = vg.Points(1)

	p.Add(plotter.NewGrid(), maxLine, minLine)
	p.Legend.Add("max error", maxLine)
	p.Legend.Add("min error", minLine)
	p.Legend.Top = true
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// SaveConvergencePlot renders history to path. The image format follows the
// file extension (png, svg, pdf, ...).
func SaveConvergencePlot(title string, history []state.History, path string) error {
	p, err := NewConvergencePlot(title, history)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
