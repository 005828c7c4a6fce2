package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// SalesCorrelationColumns is the fixed column set of the correlation step.
var SalesCorrelationColumns = []string{
	dataset.ColUnitPrice,
	dataset.ColQuantity,
	dataset.ColTax,
	dataset.ColTotal,
	dataset.ColCogs,
	dataset.ColGrossMargin,
	dataset.ColGrossIncome,
	dataset.ColRating,
}

// CorrMatrix holds a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlate computes the Pearson matrix of the named numeric columns, rounded
// to 2 decimals. The diagonal is 1. A pair involving a constant column is NaN.
// Every column must be complete, so the table should be cleaned first.
func Correlate(t *dataset.Table, columns []string) (*CorrMatrix, error) {
	if t.Len() < 2 {
		return nil, fmt.Errorf("correlation: %d rows: %w", t.Len(), ErrInsufficientData)
	}
	data := make([][]float64, len(columns))
	for i, name := range columns {
		s, err := t.Col(name)
		if err != nil {
			return nil, err
		}
		if s.Kind != dataset.KindNumeric {
			return nil, fmt.Errorf("correlation: column %q is %s, not numeric", name, s.Kind)
		}
		if m := s.Missing(); m > 0 {
			return nil, fmt.Errorf("correlation: column %q has %d missing values: %w", name, m, ErrInsufficientData)
		}
		data[i] = s.Num
	}
	return pearson(columns, data), nil
}

func pearson(columns []string, data [][]float64) *CorrMatrix {
	n := len(columns)
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		vals[a][a] = 1
		for b := a + 1; b < n; b++ {
			r := roundTo(clampCorr(stat.Correlation(data[a], data[b], nil)), 2)
			vals[a][b] = r
			vals[b][a] = r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), columns...), Values: vals}
}

// At returns the coefficient for two column names.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// TopPairs lists the off-diagonal pairs by descending |r|, skipping NaN.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func clampCorr(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

func roundTo(x float64, places int) float64 {
	if math.IsNaN(x) {
		return x
	}
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Pairwise computes Pearson correlations using, for each pair, only the rows
// where both columns are present (NaN marks a missing cell). Values are not
// rounded. Pairs with fewer than 2 shared rows or no variance are NaN.
func Pairwise(columns []string, data [][]float64) *CorrMatrix {
	n := len(columns)
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, n)
		vals[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var xs, ys []float64
			for k := range data[a] {
				if math.IsNaN(data[a][k]) || math.IsNaN(data[b][k]) {
					continue
				}
				xs = append(xs, data[a][k])
				ys = append(ys, data[b][k])
			}
			r := math.NaN()
			if len(xs) >= 2 {
				r = clampCorr(stat.Correlation(xs, ys, nil))
			}
			vals[a][b] = r
			vals[b][a] = r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), columns...), Values: vals}
}
