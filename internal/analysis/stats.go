package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// ErrInsufficientData indicates a statistic is undefined for the available values.
var ErrInsufficientData = errors.New("insufficient data")

// Mean returns the arithmetic mean of vals.
func Mean(column string, vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, fmt.Errorf("mean of %q: no values: %w", column, ErrInsufficientData)
	}
	return stat.Mean(vals, nil), nil
}

// Percentile returns the p-th percentile (0..100) with linear interpolation
// between closest ranks.
func Percentile(vals []float64, p float64) float64 {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	return quantile(cp, p/100)
}

// Mode returns the most frequent value. Ties go to the smallest value in
// lexical order.
func Mode(column string, vals []string) (string, error) {
	if len(vals) == 0 {
		return "", fmt.Errorf("mode of %q: no values: %w", column, ErrInsufficientData)
	}
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	best, bestN := "", -1
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, nil
}

// CategoryCount is a category and its number of rows.
type CategoryCount struct {
	Value string
	Count int
}

// CountCategories counts values in order of first appearance.
func CountCategories(vals []string) []CategoryCount {
	idx := map[string]int{}
	var out []CategoryCount
	for _, v := range vals {
		i, ok := idx[v]
		if !ok {
			i = len(out)
			idx[v] = i
			out = append(out, CategoryCount{Value: v})
		}
		out[i].Count++
	}
	return out
}

// topCategories orders counts by frequency, then value, and truncates to n.
func topCategories(counts []CategoryCount, n int) []CategoryCount {
	tops := append([]CategoryCount(nil), counts...)
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if n > 0 && len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// LinearFit is a least-squares line y = Intercept + Slope*x.
type LinearFit struct {
	Intercept float64
	Slope     float64
}

// At evaluates the fitted line.
func (f LinearFit) At(x float64) float64 { return f.Intercept + f.Slope*x }

// Paired returns the rows where both series are present.
func Paired(x, y *dataset.Series) (xs, ys []float64) {
	for i := range x.Num {
		if x.Valid[i] && y.Valid[i] {
			xs = append(xs, x.Num[i])
			ys = append(ys, y.Num[i])
		}
	}
	return xs, ys
}

// FitLine regresses y on x over rows where both are present.
func FitLine(x, y *dataset.Series) (LinearFit, error) {
	xs, ys := Paired(x, y)
	if len(xs) < 2 {
		return LinearFit{}, fmt.Errorf("fit %s ~ %s: %d paired rows: %w", y.Name, x.Name, len(xs), ErrInsufficientData)
	}
	if stat.Variance(xs, nil) == 0 {
		return LinearFit{}, fmt.Errorf("fit %s ~ %s: constant predictor: %w", y.Name, x.Name, ErrInsufficientData)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return LinearFit{Intercept: alpha, Slope: beta}, nil
}

// DailyPoint is the mean of a series over one calendar day.
type DailyPoint struct {
	Day   time.Time
	Mean  float64
	Count int
}

// DailyMeans averages s per index day, sorted by day. Missing cells are skipped.
func DailyMeans(index []time.Time, s *dataset.Series) []DailyPoint {
	type acc struct {
		sum float64
		n   int
	}
	byDay := map[time.Time]*acc{}
	for i, ts := range index {
		if !s.Valid[i] {
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		a := byDay[day]
		if a == nil {
			a = &acc{}
			byDay[day] = a
		}
		a.sum += s.Num[i]
		a.n++
	}
	out := make([]DailyPoint, 0, len(byDay))
	for d, a := range byDay {
		out = append(out, DailyPoint{Day: d, Mean: a.sum / float64(a.n), Count: a.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// RobustOutliers counts values whose robust z-score 0.6745*(v-median)/MAD
// exceeds threshold. It returns zero counts when MAD is zero.
func RobustOutliers(vals []float64, threshold float64) (count int, maxAbsZ float64) {
	if threshold <= 0 {
		threshold = 3.5
	}
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > threshold {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
