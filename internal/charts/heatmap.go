package charts

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
)

// matrixGrid adapts a row-major matrix to plotter.GridXYZ. Row 0 is drawn
// at the top.
type matrixGrid struct {
	z [][]float64
}

func (g matrixGrid) Dims() (c, r int) {
	if len(g.z) == 0 {
		return 0, 0
	}
	return len(g.z[0]), len(g.z)
}

func (g matrixGrid) Z(c, r int) float64 { return g.z[len(g.z)-1-r][c] }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

// MissingMap draws the missing-value mask, one column per table column and
// one row per table row. Missing cells are highlighted.
func (r *Renderer) MissingMap(mask [][]bool, columns []string, name string) (string, error) {
	if len(mask) == 0 || len(columns) == 0 {
		return "", fmt.Errorf("%s: empty table: %w", name, analysis.ErrInsufficientData)
	}
	z := make([][]float64, len(mask))
	for i, row := range mask {
		z[i] = make([]float64, len(columns))
		for j, missing := range row {
			if missing {
				z[i][j] = 1
			}
		}
	}
	hm := plotter.NewHeatMap(matrixGrid{z: z}, missingPalette)
	hm.Min, hm.Max = 0, 1
	hm.Rasterized = len(mask) > 200

	p := newPlot("Missing values ("+name+")", "", "Row")
	p.Add(hm)
	p.NominalX(columns...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Tick.Marker = rowTicks(len(mask))
	return r.save(p, name)
}

// rowTicks labels rows top-down on a grid where row 0 sits at the top.
func rowTicks(rows int) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		step := 1
		for rows/step > 10 {
			step *= 10
		}
		var ticks []plot.Tick
		for i := 0; i < rows; i += step {
			ticks = append(ticks, plot.Tick{Value: float64(rows - 1 - i), Label: strconv.Itoa(i)})
		}
		return ticks
	})
}

// correlationPalette samples the blue-red diverging map evenly over [-1, 1].
func correlationPalette(n int) fixedPalette {
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	out := make(fixedPalette, n)
	for i := range out {
		v := math.Min(1, -1+2*float64(i)/float64(n-1))
		c, err := cmap.At(v)
		if err != nil {
			c = nanRGB
		}
		out[i] = c
	}
	return out
}

// CorrelationMap draws the correlation matrix on a diverging blue-red scale
// from -1 to 1 and prints each coefficient in its cell.
func (r *Renderer) CorrelationMap(m *analysis.CorrMatrix) (string, error) {
	n := len(m.Columns)
	if n == 0 {
		return "", fmt.Errorf("%s: empty matrix: %w", CorrelationHeatmap, analysis.ErrInsufficientData)
	}
	hm := plotter.NewHeatMap(matrixGrid{z: m.Values}, correlationPalette(256))
	hm.Min, hm.Max = -1, 1
	hm.NaN = nanRGB

	xys := make(plotter.XYs, 0, n*n)
	texts := make([]string, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			v := m.Values[i][j]
			if math.IsNaN(v) {
				texts = append(texts, "NaN")
			} else {
				texts = append(texts, strconv.FormatFloat(v, 'f', 2, 64))
			}
		}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return "", fmt.Errorf("%s: %w", CorrelationHeatmap, err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = draw.XCenter
		lbl.TextStyle[i].YAlign = draw.YCenter
		lbl.TextStyle[i].Font.Size = vg.Points(8)
	}

	p := newPlot("Correlation matrix", "", "")
	p.Add(hm, lbl)
	p.NominalX(m.Columns...)
	rev := make([]string, n)
	for i, c := range m.Columns {
		rev[n-1-i] = c
	}
	p.NominalY(rev...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	side := r.Height * 1.6
	return r.saveSized(p, CorrelationHeatmap, side*1.2, side)
}
