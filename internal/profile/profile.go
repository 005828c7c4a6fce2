package profile

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// Alert thresholds.
const (
	HighCorrelation = 0.9
	SkewThreshold   = 20.0
	ZerosShare      = 0.10
	SampleRows      = 10
	TopValues       = 10
)

// Alert kinds.
const (
	AlertMissing         = "MISSING"
	AlertConstant        = "CONSTANT"
	AlertUnique          = "UNIQUE"
	AlertHighCorrelation = "HIGH_CORRELATION"
	AlertSkewed          = "SKEWED"
	AlertZeros           = "ZEROS"
	AlertDuplicates      = "DUPLICATES"
)

// AlertKinds lists every alert kind in display order.
var AlertKinds = []string{
	AlertDuplicates, AlertMissing, AlertConstant, AlertUnique,
	AlertSkewed, AlertZeros, AlertHighCorrelation,
}

// Profile is the full automated report of one data frame.
type Profile struct {
	Title       string
	Name        string
	Source      Source
	GeneratedAt time.Time

	Rows          int
	Columns       int
	MissingCells  int
	MissingPct    float64
	DuplicateRows int
	KindCounts    map[string]int

	Variables    []Variable
	Correlations *analysis.CorrMatrix
	Alerts       []Alert

	SampleHeader []string
	Sample       [][]string
}

// Variable is the per-column section of a profile.
type Variable struct {
	Name       string
	Kind       dataset.Kind
	Count      int
	Missing    int
	MissingPct float64
	Distinct   int
	Numeric    *NumericStats
	Top        []analysis.CategoryCount
	// Date range, for the index column.
	From, To time.Time
}

// NumericStats summarizes the present values of a numeric column.
type NumericStats struct {
	Mean, Std             float64
	Min, P25, Median, P75 float64
	Max                   float64
	Zeros                 int
	Skewness              float64
	Outliers              int
	OutlierThreshold      float64
}

// Alert flags a data quality issue. Column is empty for table-level alerts.
type Alert struct {
	Kind    string
	Column  string
	Message string
}

// Build computes the profile of f.
func Build(f *Frame) (*Profile, error) {
	df := f.DF
	names := df.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("profile %s: %w", f.Name, errNoColumns)
	}
	p := &Profile{
		Title:       "Supermarket Sales Profiling Report",
		Name:        f.Name,
		Source:      f.Source,
		GeneratedAt: time.Now().UTC(),
		Rows:        df.Nrow(),
		Columns:     len(names),
		KindCounts:  map[string]int{},
	}

	var numNames []string
	var numData [][]float64
	for _, name := range names {
		s := df.Col(name)
		kind := f.kindOf(name)
		missing := s.IsNaN()
		v := Variable{Name: name, Kind: kind}
		for _, m := range missing {
			if m {
				v.Missing++
			}
		}
		v.Count = s.Len() - v.Missing
		if s.Len() > 0 {
			v.MissingPct = float64(v.Missing) * 100 / float64(s.Len())
		}
		p.MissingCells += v.Missing
		p.KindCounts[kind.String()]++

		switch kind {
		case dataset.KindNumeric:
			raw := s.Float()
			var vals []float64
			for i, x := range raw {
				if !missing[i] {
					vals = append(vals, x)
				}
			}
			v.Distinct = distinctFloats(vals)
			v.Numeric = numericStats(vals)
			numNames = append(numNames, name)
			numData = append(numData, raw)
		default:
			var vals []string
			for i, x := range s.Records() {
				if !missing[i] {
					vals = append(vals, x)
				}
			}
			counts := analysis.CountCategories(vals)
			v.Distinct = len(counts)
			v.Top = topValues(counts, TopValues)
			if kind == dataset.KindDate {
				v.From, v.To = dateRange(vals, f.Layout)
			}
		}
		p.Variables = append(p.Variables, v)
	}
	if cells := p.Rows * p.Columns; cells > 0 {
		p.MissingPct = float64(p.MissingCells) * 100 / float64(cells)
	}

	records := df.Records()
	p.SampleHeader = records[0]
	p.DuplicateRows = duplicateRecords(records[1:])
	for i := 1; i < len(records) && i <= SampleRows; i++ {
		row := append([]string(nil), records[i]...)
		for j, v := range p.Variables {
			if v.Kind == dataset.KindNumeric && j < len(row) {
				row[j] = compactFloat(row[j])
			}
		}
		p.Sample = append(p.Sample, row)
	}
	if len(numNames) >= 2 {
		p.Correlations = analysis.Pairwise(numNames, numData)
	}
	p.Alerts = alerts(p)
	return p, nil
}

func numericStats(vals []float64) *NumericStats {
	ns := &NumericStats{OutlierThreshold: analysis.DefaultOutlierThreshold}
	if len(vals) == 0 {
		nan := math.NaN()
		ns.Mean, ns.Std, ns.Min, ns.P25, ns.Median, ns.P75, ns.Max, ns.Skewness = nan, nan, nan, nan, nan, nan, nan, nan
		return ns
	}
	ns.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		ns.Std = stat.StdDev(vals, nil)
	}
	ns.Min = analysis.Percentile(vals, 0)
	ns.P25 = analysis.Percentile(vals, 25)
	ns.Median = analysis.Percentile(vals, 50)
	ns.P75 = analysis.Percentile(vals, 75)
	ns.Max = analysis.Percentile(vals, 100)
	for _, x := range vals {
		if x == 0 {
			ns.Zeros++
		}
	}
	ns.Skewness = stat.Skew(vals, nil)
	ns.Outliers, _ = analysis.RobustOutliers(vals, ns.OutlierThreshold)
	return ns
}

func alerts(p *Profile) []Alert {
	var out []Alert
	if p.DuplicateRows > 0 {
		out = append(out, Alert{Kind: AlertDuplicates, Message: fmt.Sprintf("dataset has %d duplicate rows", p.DuplicateRows)})
	}
	for _, v := range p.Variables {
		if v.Missing > 0 {
			out = append(out, Alert{Kind: AlertMissing, Column: v.Name, Message: fmt.Sprintf("%s has %d (%.1f%%) missing values", v.Name, v.Missing, v.MissingPct)})
		}
		if v.Count > 0 && v.Distinct == 1 {
			out = append(out, Alert{Kind: AlertConstant, Column: v.Name, Message: fmt.Sprintf("%s has a constant value", v.Name)})
		}
		if p.Rows > 1 && v.Missing == 0 && v.Distinct == p.Rows {
			out = append(out, Alert{Kind: AlertUnique, Column: v.Name, Message: fmt.Sprintf("%s has unique values", v.Name)})
		}
		if ns := v.Numeric; ns != nil && v.Count > 0 {
			if !math.IsNaN(ns.Skewness) && math.Abs(ns.Skewness) > SkewThreshold {
				out = append(out, Alert{Kind: AlertSkewed, Column: v.Name, Message: fmt.Sprintf("%s is highly skewed (γ1 = %.2f)", v.Name, ns.Skewness)})
			}
			if share := float64(ns.Zeros) / float64(v.Count); share >= ZerosShare {
				out = append(out, Alert{Kind: AlertZeros, Column: v.Name, Message: fmt.Sprintf("%s has %d (%.1f%%) zeros", v.Name, ns.Zeros, share*100)})
			}
		}
	}
	if m := p.Correlations; m != nil {
		for i := range m.Columns {
			for j := i + 1; j < len(m.Columns); j++ {
				r := m.Values[i][j]
				if !math.IsNaN(r) && math.Abs(r) >= HighCorrelation {
					out = append(out, Alert{
						Kind:    AlertHighCorrelation,
						Column:  m.Columns[i],
						Message: fmt.Sprintf("%s is highly correlated with %s (r = %.2f)", m.Columns[i], m.Columns[j], r),
					})
				}
			}
		}
	}
	return out
}

// AlertsOf returns the alerts of one kind.
func (p *Profile) AlertsOf(kind string) []Alert {
	var out []Alert
	for _, a := range p.Alerts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func topValues(counts []analysis.CategoryCount, n int) []analysis.CategoryCount {
	out := append([]analysis.CategoryCount(nil), counts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// compactFloat drops the fixed six decimals of the frame's text form.
func compactFloat(s string) string {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func distinctFloats(vals []float64) int {
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func duplicateRecords(rows [][]string) int {
	seen := make(map[string]struct{}, len(rows))
	n := 0
	for _, r := range rows {
		k := strings.Join(r, "\x1f")
		if _, ok := seen[k]; ok {
			n++
			continue
		}
		seen[k] = struct{}{}
	}
	return n
}

func dateRange(vals []string, layout string) (from, to time.Time) {
	first := true
	for _, v := range vals {
		ts, err := dataset.ParseDate(strings.TrimSpace(v), layout)
		if err != nil {
			continue
		}
		if first || ts.Before(from) {
			from = ts
		}
		if first || ts.After(to) {
			to = ts
		}
		first = false
	}
	return from, to
}
