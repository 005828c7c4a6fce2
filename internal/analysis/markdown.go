package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// Markdown renders a compact report suitable for a standalone summary file.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Cols)))
	if r.Rows > 0 {
		b.WriteString(fmt.Sprintf("Index: %s from %s to %s (%d distinct days)\n",
			r.Index.Name, r.Index.From.Format(dataset.IndexLayout), r.Index.To.Format(dataset.IndexLayout), r.Index.Days))
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case dataset.KindNumeric:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(": min %.4g, p25 %.4g, median %.4g, p75 %.4g, max %.4g, mean %.4g, std %.4g",
					c.Min, c.P25, c.Median, c.P75, c.Max, c.Mean, c.Std))
			}
			if c.OutliersCount > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f (max |z|≈%.2f)", c.OutliersCount, c.OutlierThreshold, c.OutliersMaxAbsZ))
			}
		case dataset.KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	if cl := r.Cleaning; cl != nil {
		b.WriteString("\n[CLEANING]\n")
		b.WriteString(fmt.Sprintf("- rows before: %d\n", cl.RowsBefore))
		b.WriteString(fmt.Sprintf("- duplicates dropped: %d\n", cl.DuplicatesDropped))
		b.WriteString(fmt.Sprintf("- missing cells: %d before, %d after\n", cl.MissingBefore, cl.MissingAfter))
		for _, f := range cl.Fills {
			b.WriteString(fmt.Sprintf("  • %s: filled %d with %s\n", f.Column, f.Filled, safeVal(f.Value)))
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range r.Corr.TopPairs(10) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.2f\n", p.A, p.B, p.R))
		}
		for i, a := range r.Corr.Columns {
			for j := i + 1; j < len(r.Corr.Columns); j++ {
				if math.IsNaN(r.Corr.Values[i][j]) {
					b.WriteString(fmt.Sprintf("- %s ~ %s: undefined (constant column)\n", a, r.Corr.Columns[j]))
				}
			}
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		header := append([]string{r.Index.Name}, columnNames(r.Cols)...)
		writeRow(&b, header)
		sep := make([]string, len(header))
		for i := range sep {
			sep[i] = "---"
		}
		writeRow(&b, sep)
		for _, row := range r.Samples {
			cells := make([]string, len(header))
			for i := range cells {
				if i < len(row) {
					cells[i] = row[i]
				}
				if len(cells[i]) > 80 {
					cells[i] = cells[i][:77] + "..."
				}
			}
			writeRow(&b, cells)
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func columnNames(cols []ColumnSummary) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = safeName(c.Name)
	}
	return out
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(c))
	}
	b.WriteString(" |\n")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
