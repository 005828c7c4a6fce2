package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// RatingIncomeScatter plots gross income against Rating with the
// least-squares line through the points.
func (r *Renderer) RatingIncomeScatter(t *dataset.Table) (string, error) {
	x, err := t.Col(dataset.ColRating)
	if err != nil {
		return "", err
	}
	y, err := t.Col(dataset.ColGrossIncome)
	if err != nil {
		return "", err
	}
	xs, ys := analysis.Paired(x, y)
	if len(xs) == 0 {
		return "", fmt.Errorf("%s: no paired values: %w", RatingVsGrossIncome, analysis.ErrInsufficientData)
	}
	p := newPlot("Rating vs gross income", x.Name, y.Name)
	p.Add(plotter.NewGrid())
	sc, err := plotter.NewScatter(toXYs(xs, ys))
	if err != nil {
		return "", fmt.Errorf("%s: %w", RatingVsGrossIncome, err)
	}
	sc.GlyphStyle.Color = blue
	sc.GlyphStyle.Radius = vg.Points(2)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	if fit, err := analysis.FitLine(x, y); err == nil {
		line := plotter.NewFunction(fit.At)
		line.XMin, line.XMax = minMax(xs)
		line.Color = gold
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("fit: y = %.2f + %.2fx", fit.Intercept, fit.Slope), line)
		p.Legend.Top = true
	}
	return r.save(p, RatingVsGrossIncome)
}

// IncomeByBranchBoxes draws a Tukey box plot of gross income per branch.
func (r *Renderer) IncomeByBranchBoxes(t *dataset.Table) (string, error) {
	branch, err := t.Col(dataset.ColBranch)
	if err != nil {
		return "", err
	}
	income, err := t.Col(dataset.ColGrossIncome)
	if err != nil {
		return "", err
	}
	var order []string
	groups := map[string][]float64{}
	for i := 0; i < t.Len(); i++ {
		if !branch.Valid[i] || !income.Valid[i] {
			continue
		}
		b := branch.Str[i]
		if _, ok := groups[b]; !ok {
			order = append(order, b)
		}
		groups[b] = append(groups[b], income.Num[i])
	}
	if len(order) == 0 {
		return "", fmt.Errorf("%s: no values: %w", GrossIncomeByBranch, analysis.ErrInsufficientData)
	}
	p := newPlot("Gross income by branch", branch.Name, income.Name)
	for i, b := range order {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(groups[b]))
		if err != nil {
			return "", fmt.Errorf("%s: %w", GrossIncomeByBranch, err)
		}
		box.FillColor = CategoryColor(b)
		p.Add(box)
	}
	p.NominalX(order...)
	return r.save(p, GrossIncomeByBranch)
}

// IncomeTrend plots the daily mean of gross income over the date index.
func (r *Renderer) IncomeTrend(t *dataset.Table) (string, error) {
	s, err := t.Col(dataset.ColGrossIncome)
	if err != nil {
		return "", err
	}
	days := analysis.DailyMeans(t.Index, s)
	if len(days) == 0 {
		return "", fmt.Errorf("%s: no values: %w", GrossIncomeTrend, analysis.ErrInsufficientData)
	}
	xys := make(plotter.XYs, len(days))
	for i, d := range days {
		xys[i] = plotter.XY{X: float64(d.Day.Unix()), Y: d.Mean}
	}
	p := newPlot("Gross income over time", t.IndexName, s.Name+" (daily mean)")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())
	line, err := plotter.NewLine(xys)
	if err != nil {
		return "", fmt.Errorf("%s: %w", GrossIncomeTrend, err)
	}
	line.Color = blue
	line.Width = vg.Points(1.5)
	p.Add(line)
	return r.save(p, GrossIncomeTrend)
}

// ScatterMatrix draws every pair of numeric columns. The diagonal holds the
// histogram of each column.
func (r *Renderer) ScatterMatrix(t *dataset.Table) (string, error) {
	cols := t.NumericColumns()
	if len(cols) == 0 {
		return "", fmt.Errorf("%s: no numeric columns: %w", PairPlot, analysis.ErrInsufficientData)
	}
	n := len(cols)
	grid := make([][]*plot.Plot, n)
	for i := range grid {
		grid[i] = make([]*plot.Plot, n)
		for j := range grid[i] {
			p := plot.New()
			p.X.Tick.Label.Font.Size = vg.Points(6)
			p.Y.Tick.Label.Font.Size = vg.Points(6)
			if i == n-1 {
				p.X.Label.Text = cols[j].Name
			}
			if j == 0 {
				p.Y.Label.Text = cols[i].Name
			}
			if i == j {
				vals := cols[i].Floats()
				if len(vals) == 0 {
					continue
				}
				h, err := plotter.NewHist(plotter.Values(vals), r.Bins)
				if err != nil {
					return "", fmt.Errorf("%s: %s: %w", PairPlot, cols[i].Name, err)
				}
				h.FillColor = blue
				p.Add(h)
			} else {
				xs, ys := analysis.Paired(cols[j], cols[i])
				if len(xs) == 0 {
					continue
				}
				sc, err := plotter.NewScatter(toXYs(xs, ys))
				if err != nil {
					return "", fmt.Errorf("%s: %w", PairPlot, err)
				}
				sc.GlyphStyle.Color = blue
				sc.GlyphStyle.Radius = vg.Points(1)
				sc.GlyphStyle.Shape = draw.CircleGlyph{}
				p.Add(sc)
			}
			grid[i][j] = p
		}
	}
	side := vg.Length(n) * 1.5 * vg.Inch
	return r.saveGrid(grid, PairPlot, side, side)
}

func toXYs(xs, ys []float64) plotter.XYs {
	out := make(plotter.XYs, len(xs))
	for i := range xs {
		out[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return out
}

func minMax(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
