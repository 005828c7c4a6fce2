package analysis

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// DefaultOutlierThreshold is the robust |z| above which a value counts as an outlier.
const DefaultOutlierThreshold = 3.5

// Report is a markdown-friendly summary of a sales table.
type Report struct {
	Name     string
	Rows     int
	Index    IndexSummary
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	Cleaning *CleaningNotes
	Corr     *CorrMatrix
}

// IndexSummary describes the date index.
type IndexSummary struct {
	Name     string
	From, To time.Time
	Days     int
}

// ColumnSummary captures the declared kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    dataset.Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min, Max         float64
	Mean, Std        float64
	P25, Median, P75 float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

// CleaningNotes records what the cleaning step changed.
type CleaningNotes struct {
	RowsBefore        int
	DuplicatesDropped int
	MissingBefore     int
	MissingAfter      int
	Fills             []FillNote
}

// FillNote is one imputed column.
type FillNote struct {
	Column string
	Value  string
	Filled int
}

// Describe summarizes every column of t. Missing cells are excluded from
// the statistics and counted separately.
func Describe(t *dataset.Table, sampleRows int) *Report {
	if sampleRows <= 0 {
		sampleRows = 5
	}
	rep := &Report{Name: t.Name, Rows: t.Len(), Warnings: append([]string(nil), t.Warnings...)}
	rep.Index = describeIndex(t)
	for _, s := range t.Columns() {
		rep.Cols = append(rep.Cols, describeSeries(s))
	}
	recs := t.Records()
	for i := 1; i < len(recs) && i <= sampleRows; i++ {
		rep.Samples = append(rep.Samples, recs[i])
	}
	return rep
}

func describeIndex(t *dataset.Table) IndexSummary {
	is := IndexSummary{Name: t.IndexName}
	days := map[string]bool{}
	for i, ts := range t.Index {
		if i == 0 || ts.Before(is.From) {
			is.From = ts
		}
		if i == 0 || ts.After(is.To) {
			is.To = ts
		}
		days[ts.Format(dataset.IndexLayout)] = true
	}
	is.Days = len(days)
	return is
}

func describeSeries(s *dataset.Series) ColumnSummary {
	cs := ColumnSummary{Name: s.Name, Kind: s.Kind, Missing: s.Missing()}
	cs.NonNull = s.Len() - cs.Missing
	if s.Kind != dataset.KindNumeric {
		counts := CountCategories(s.Strings())
		cs.Unique = len(counts)
		cs.TopValues = topCategories(counts, 5)
		return cs
	}
	vals := s.Floats()
	distinct := map[float64]bool{}
	for _, v := range vals {
		distinct[v] = true
	}
	cs.Unique = len(distinct)
	if len(vals) == 0 {
		cs.Min, cs.Max, cs.Mean, cs.Std = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		cs.P25, cs.Median, cs.P75 = math.NaN(), math.NaN(), math.NaN()
		return cs
	}
	cs.Mean, cs.Std = stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		cs.Std = 0
	}
	cs.Min = Percentile(vals, 0)
	cs.P25 = Percentile(vals, 25)
	cs.Median = Percentile(vals, 50)
	cs.P75 = Percentile(vals, 75)
	cs.Max = Percentile(vals, 100)
	cs.OutlierThreshold = DefaultOutlierThreshold
	cs.OutliersCount, cs.OutliersMaxAbsZ = RobustOutliers(vals, cs.OutlierThreshold)
	return cs
}
