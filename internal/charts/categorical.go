package charts

import (
	"fmt"
	"strconv"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// CategoryBars draws one bar per category of column in first-appearance
// order, with the exact count printed above each bar.
func (r *Renderer) CategoryBars(t *dataset.Table, column, name string) (string, error) {
	s, err := t.Col(column)
	if err != nil {
		return "", err
	}
	if s.Kind != dataset.KindCategorical {
		return "", fmt.Errorf("%s: column %q is %s, not categorical", name, column, s.Kind)
	}
	counts := analysis.CountCategories(s.Strings())
	if len(counts) == 0 {
		return "", fmt.Errorf("%s: no %s values: %w", name, column, analysis.ErrInsufficientData)
	}

	p := newPlot(column+" counts", column, "Count")
	labels := make([]string, len(counts))
	xys := make(plotter.XYs, len(counts))
	texts := make([]string, len(counts))
	maxCount := 0
	for i, c := range counts {
		bars, err := plotter.NewBarChart(plotter.Values{float64(c.Count)}, vg.Points(40))
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		bars.XMin = float64(i)
		bars.Color = CategoryColor(c.Value)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)

		labels[i] = c.Value
		xys[i] = plotter.XY{X: float64(i), Y: float64(c.Count)}
		texts[i] = strconv.Itoa(c.Count)
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = draw.XCenter
	}
	lbl.Offset = vg.Point{Y: vg.Points(3)}
	p.Add(lbl)

	p.NominalX(labels...)
	p.Y.Min = 0
	p.Y.Max = float64(maxCount) * 1.15
	return r.save(p, name)
}
