package charts

import (
	"context"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// Descriptive renders the charts of the raw table in a fixed order:
// distributions, categorical counts, bivariate relationships, the time trend
// and the scatter matrix. It stops at the first failure and returns the
// files written so far.
func (r *Renderer) Descriptive(ctx context.Context, t *dataset.Table) ([]string, error) {
	steps := []func() (string, error){
		func() (string, error) { return r.RatingHistogram(t) },
		func() (string, error) { return r.NumericHistogramGrid(t) },
		func() (string, error) { return r.CategoryBars(t, dataset.ColBranch, BranchCounts) },
		func() (string, error) { return r.CategoryBars(t, dataset.ColPayment, PaymentCounts) },
		func() (string, error) { return r.RatingIncomeScatter(t) },
		func() (string, error) { return r.IncomeByBranchBoxes(t) },
		func() (string, error) { return r.IncomeTrend(t) },
		func() (string, error) { return r.ScatterMatrix(t) },
	}
	var paths []string
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		p, err := step()
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
