package ui

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// Console prints step lines and tables for the terminal.
type Console struct {
	out      io.Writer
	useColor bool
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer, useColor bool) *Console {
	return &Console{out: out, useColor: useColor}
}

// Success prints a ✓ line.
func (c *Console) Success(format string, a ...any) {
	c.line("✓", color.GreenString, format, a...)
}

// Warn prints a ⚠ line.
func (c *Console) Warn(format string, a ...any) {
	c.line("⚠", color.YellowString, format, a...)
}

// Fail prints a ✗ line.
func (c *Console) Fail(format string, a ...any) {
	c.line("✗", color.RedString, format, a...)
}

// Info prints an indented detail line.
func (c *Console) Info(format string, a ...any) {
	fmt.Fprintf(c.out, "  "+format+"\n", a...)
}

func (c *Console) line(mark string, paint func(string, ...interface{}) string, format string, a ...any) {
	if c.useColor {
		mark = paint(mark)
	}
	fmt.Fprintf(c.out, "%s %s\n", mark, fmt.Sprintf(format, a...))
}

// MissingTable renders per-column missing counts. Rows with missing cells
// are highlighted.
func (c *Console) MissingTable(counts []cleaning.ColumnMissing) {
	table := c.newTable([]string{"Column", "Kind", "Missing"})
	total := 0
	for _, m := range counts {
		n := strconv.Itoa(m.Count)
		if m.Count > 0 && c.useColor {
			n = color.YellowString(n)
		}
		table.Append([]string{m.Column, m.Kind.String(), n})
		total += m.Count
	}
	table.SetFooter([]string{"", "total", strconv.Itoa(total)})
	table.Render()
}

// FillTable renders the imputation fills.
func (c *Console) FillTable(rep cleaning.ImputeReport) {
	if len(rep.Fills) == 0 {
		c.Info("no missing values to fill")
		return
	}
	table := c.newTable([]string{"Column", "Strategy", "Value", "Filled"})
	for _, f := range rep.Fills {
		strategy := "mode"
		if f.Kind == dataset.KindNumeric {
			strategy = "mean"
		}
		table.Append([]string{f.Column, strategy, f.Value, strconv.Itoa(f.Filled)})
	}
	table.Render()
}

// CorrelationTable renders the matrix with 2-decimal cells. Strong positive
// values are red and strong negative values blue, as in the heatmap.
func (c *Console) CorrelationTable(m *analysis.CorrMatrix) {
	header := make([]string, 0, len(m.Columns)+1)
	header = append(header, "")
	for _, name := range m.Columns {
		header = append(header, Abbrev(name, 10))
	}
	table := c.newTable(header)
	for _, name := range m.Columns {
		row := make([]string, 0, len(m.Columns)+1)
		row = append(row, name)
		for _, other := range m.Columns {
			r, _ := m.At(name, other)
			row = append(row, c.corrCell(r))
		}
		table.Append(row)
	}
	table.Render()
}

func (c *Console) corrCell(r float64) string {
	if math.IsNaN(r) {
		return "NaN"
	}
	s := strconv.FormatFloat(r, 'f', 2, 64)
	if !c.useColor {
		return s
	}
	switch {
	case r >= 0.7:
		return color.RedString(s)
	case r <= -0.7:
		return color.BlueString(s)
	}
	return s
}

func (c *Console) newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// Abbrev shortens s to at most n runes, ending with "…" when cut.
func Abbrev(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
