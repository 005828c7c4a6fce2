package pipeline

import (
	"fmt"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/charts"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// CleanResult describes what cleaning changed.
type CleanResult struct {
	RowsBefore    int
	Duplicates    int
	MissingBefore []cleaning.ColumnMissing
	MissingAfter  int
	Imputed       cleaning.ImputeReport
	// Charts lists the missing-value heatmaps written, if any.
	Charts []string
}

// Clean drops duplicate rows, counts missing values and imputes them, in that
// order, mutating t. When renderer is non-nil the missing-value heatmap is
// drawn before and after imputation.
func Clean(t *dataset.Table, dedup cleaning.DedupOptions, renderer *charts.Renderer) (*CleanResult, error) {
	cr := &CleanResult{RowsBefore: t.Len()}
	cr.Duplicates = cleaning.DropDuplicates(t, dedup)
	cr.MissingBefore = cleaning.MissingCounts(t)

	if renderer != nil {
		p, err := renderer.MissingMap(cleaning.MissingMask(t), t.Names(), charts.MissingBefore)
		if err != nil {
			return cr, err
		}
		cr.Charts = append(cr.Charts, p)
	}

	rep, err := cleaning.Impute(t)
	if err != nil {
		return cr, err
	}
	cr.Imputed = rep
	cr.MissingAfter = cleaning.TotalMissing(t)
	if cr.MissingAfter != 0 {
		return cr, fmt.Errorf("%d cells still missing after imputation", cr.MissingAfter)
	}

	if renderer != nil {
		p, err := renderer.MissingMap(cleaning.MissingMask(t), t.Names(), charts.MissingAfter)
		if err != nil {
			return cr, err
		}
		cr.Charts = append(cr.Charts, p)
	}
	return cr, nil
}

// MissingBeforeTotal sums the pre-imputation missing counts.
func (c *CleanResult) MissingBeforeTotal() int {
	n := 0
	for _, m := range c.MissingBefore {
		n += m.Count
	}
	return n
}

// Notes converts the result for the Markdown summary.
func (c *CleanResult) Notes() *analysis.CleaningNotes {
	if c == nil {
		return nil
	}
	n := &analysis.CleaningNotes{
		RowsBefore:        c.RowsBefore,
		DuplicatesDropped: c.Duplicates,
		MissingBefore:     c.MissingBeforeTotal(),
		MissingAfter:      c.MissingAfter,
	}
	for _, f := range c.Imputed.Fills {
		n.Fills = append(n.Fills, analysis.FillNote{Column: f.Column, Value: f.Value, Filled: f.Filled})
	}
	return n
}
