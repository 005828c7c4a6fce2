package charts

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/salesloom-cli/internal/utils"
)

// Formats lists the supported output formats.
var Formats = []string{"png", "svg", "pdf"}

// Chart file names, without extension.
const (
	RatingDistribution  = "rating_distribution"
	NumericHistograms   = "numeric_histograms"
	BranchCounts        = "branch_counts"
	PaymentCounts       = "payment_counts"
	RatingVsGrossIncome = "rating_vs_gross_income"
	GrossIncomeByBranch = "gross_income_by_branch"
	GrossIncomeTrend    = "gross_income_trend"
	PairPlot            = "pair_plot"
	MissingBefore       = "missing_before"
	MissingAfter        = "missing_after"
	CorrelationHeatmap  = "correlation_heatmap"
)

// Renderer writes charts as image files into Dir.
type Renderer struct {
	Dir    string
	Format string
	Width  vg.Length
	Height vg.Length
	// Bins is the histogram bin count; 0 picks a default from the data size.
	Bins int
}

// NewRenderer validates the format and converts inch sizes.
func NewRenderer(dir, format string, widthIn, heightIn float64, bins int) (*Renderer, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = "png"
	}
	ok := false
	for _, f := range Formats {
		if f == format {
			ok = true
		}
	}
	if !ok {
		return nil, fmt.Errorf("unsupported chart format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	if widthIn <= 0 {
		widthIn = 8
	}
	if heightIn <= 0 {
		heightIn = 5
	}
	return &Renderer{
		Dir:    dir,
		Format: format,
		Width:  vg.Length(widthIn) * vg.Inch,
		Height: vg.Length(heightIn) * vg.Inch,
		Bins:   bins,
	}, nil
}

// Path returns the output file for a chart name.
func (r *Renderer) Path(name string) string {
	return filepath.Join(r.Dir, name+"."+r.Format)
}

func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	return r.saveSized(p, name, r.Width, r.Height)
}

func (r *Renderer) saveSized(p *plot.Plot, name string, w, h vg.Length) (string, error) {
	wt, err := p.WriterTo(w, h, r.Format)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := r.Path(name)
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// saveGrid draws a matrix of plots on one canvas. Nil cells stay blank.
func (r *Renderer) saveGrid(plots [][]*plot.Plot, name string, w, h vg.Length) (string, error) {
	if len(plots) == 0 {
		return "", fmt.Errorf("render %s: empty grid", name)
	}
	c, err := draw.NewFormattedCanvas(w, h, r.Format)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := r.Path(name)
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}
