package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// RatingHistogram draws the Rating distribution with the mean and the
// 25th/75th percentiles marked as dashed vertical lines.
func (r *Renderer) RatingHistogram(t *dataset.Table) (string, error) {
	s, err := t.Col(dataset.ColRating)
	if err != nil {
		return "", err
	}
	vals := s.Floats()
	if len(vals) == 0 {
		return "", fmt.Errorf("%s: no %s values: %w", RatingDistribution, s.Name, analysis.ErrInsufficientData)
	}
	p := newPlot("Rating distribution", s.Name, "Count")
	h, err := plotter.NewHist(plotter.Values(vals), r.Bins)
	if err != nil {
		return "", fmt.Errorf("%s: %w", RatingDistribution, err)
	}
	h.FillColor = blue
	p.Add(h)

	top := 0.0
	for _, b := range h.Bins {
		top = math.Max(top, b.Weight)
	}
	mean, _ := analysis.Mean(s.Name, vals)
	meanLine, err := vline(mean, top)
	if err != nil {
		return "", err
	}
	meanLine.Color = red
	p.Add(meanLine)
	p.Legend.Add("mean", meanLine)

	for i, q := range []float64{25, 75} {
		l, err := vline(analysis.Percentile(vals, q), top)
		if err != nil {
			return "", err
		}
		l.Color = green
		p.Add(l)
		if i == 0 {
			p.Legend.Add("25-75th percentile", l)
		}
	}
	p.Legend.Top = true
	p.Y.Min = 0
	return r.save(p, RatingDistribution)
}

func vline(x, top float64) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
	if err != nil {
		return nil, err
	}
	l.Width = vg.Points(2)
	l.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	return l, nil
}

// NumericHistogramGrid tiles one histogram per numeric column. Columns with
// no values leave their cell blank.
func (r *Renderer) NumericHistogramGrid(t *dataset.Table) (string, error) {
	cols := t.NumericColumns()
	if len(cols) == 0 {
		return "", fmt.Errorf("%s: no numeric columns: %w", NumericHistograms, analysis.ErrInsufficientData)
	}
	const perRow = 3
	rows := (len(cols) + perRow - 1) / perRow
	grid := make([][]*plot.Plot, rows)
	for i := range grid {
		grid[i] = make([]*plot.Plot, perRow)
	}
	for k, s := range cols {
		vals := s.Floats()
		if len(vals) == 0 {
			continue
		}
		p := newPlot(s.Name, "", "")
		p.Title.TextStyle.Font.Size = vg.Points(10)
		h, err := plotter.NewHist(plotter.Values(vals), r.Bins)
		if err != nil {
			return "", fmt.Errorf("%s: %s: %w", NumericHistograms, s.Name, err)
		}
		h.FillColor = blue
		p.Add(h)
		grid[k/perRow][k%perRow] = p
	}
	w := r.Width * 1.5
	h := vg.Length(rows) * r.Height / 2
	return r.saveGrid(grid, NumericHistograms, w, h)
}
