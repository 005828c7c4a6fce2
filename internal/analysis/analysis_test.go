package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

var salesRows = []string{
	"Invoice ID,Branch,City,Payment,Date,Unit price,Quantity,Tax 5%,Total,cogs,gross margin percentage,gross income,Rating",
	"750-67-8428,A,Yangon,Ewallet,1/5/2019,74.69,7,26.1415,548.9715,522.83,4.761904762,26.1415,9.1",
	"226-31-3081,C,Naypyitaw,Cash,3/8/2019,15.28,5,3.82,80.22,76.4,4.761904762,3.82,9.6",
	"631-41-3108,A,Yangon,Credit card,3/3/2019,46.33,7,16.2155,340.5255,324.31,4.761904762,16.2155,7.4",
	"123-19-1176,A,Yangon,Ewallet,1/27/2019,58.22,8,23.288,489.048,465.76,4.761904762,23.288,8.4",
	"373-73-7910,A,Yangon,Ewallet,2/8/2019,86.31,7,30.2085,634.3785,604.17,4.761904762,30.2085,5.3",
	"699-14-3026,C,Naypyitaw,Ewallet,3/25/2019,85.39,7,29.8865,627.6165,597.73,4.761904762,29.8865,4.1",
}

func loadRows(t *testing.T, rows []string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(strings.Join(rows, "\n")), "sales.csv", dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

func TestCorrelateSalesColumns(t *testing.T) {
	tbl := loadRows(t, salesRows)
	m, err := Correlate(tbl, SalesCorrelationColumns)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	n := len(SalesCorrelationColumns)
	if len(m.Columns) != n || len(m.Values) != n {
		t.Fatalf("matrix dims = %d/%d, want %d", len(m.Columns), len(m.Values), n)
	}
	for i := 0; i < n; i++ {
		if m.Values[i][i] != 1 {
			t.Fatalf("diagonal[%d] = %v, want 1", i, m.Values[i][i])
		}
		for j := 0; j < n; j++ {
			a, b := m.Values[i][j], m.Values[j][i]
			if math.IsNaN(a) != math.IsNaN(b) || (!math.IsNaN(a) && a != b) {
				t.Fatalf("not symmetric at %d,%d: %v vs %v", i, j, a, b)
			}
			if math.IsNaN(a) {
				continue
			}
			if a < -1 || a > 1 {
				t.Fatalf("value out of range at %d,%d: %v", i, j, a)
			}
			if scaled := a * 100; math.Abs(scaled-math.Round(scaled)) > 1e-9 {
				t.Fatalf("value not rounded to 2 decimals at %d,%d: %v", i, j, a)
			}
		}
	}
	if r, _ := m.At(dataset.ColTax, dataset.ColTotal); r != 1 {
		t.Fatalf("Tax ~ Total = %v, want 1", r)
	}
	if r, _ := m.At(dataset.ColGrossIncome, dataset.ColCogs); r != 1 {
		t.Fatalf("gross income ~ cogs = %v, want 1", r)
	}
	// gross margin percentage is constant.
	if r, _ := m.At(dataset.ColGrossMargin, dataset.ColRating); !math.IsNaN(r) {
		t.Fatalf("constant column correlation = %v, want NaN", r)
	}
	for _, p := range m.TopPairs(0) {
		if p.A == dataset.ColGrossMargin || p.B == dataset.ColGrossMargin {
			t.Fatalf("TopPairs should skip NaN pairs, got %+v", p)
		}
	}
}

func TestCorrelateRequiresCleanTable(t *testing.T) {
	rows := append([]string(nil), salesRows...)
	rows[2] = strings.TrimSuffix(rows[2], "9.6")
	tbl := loadRows(t, rows)
	if _, err := Correlate(tbl, SalesCorrelationColumns); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("missing values: want ErrInsufficientData, got %v", err)
	}

	single := loadRows(t, salesRows[:2])
	if _, err := Correlate(single, SalesCorrelationColumns); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("one row: want ErrInsufficientData, got %v", err)
	}

	full := loadRows(t, salesRows)
	if _, err := Correlate(full, []string{dataset.ColBranch, dataset.ColRating}); err == nil {
		t.Fatalf("categorical column should be rejected")
	}
}

func TestMeanModePercentile(t *testing.T) {
	mean, err := Mean("x", []float64{1, 2, 3, 6})
	if err != nil || mean != 3 {
		t.Fatalf("Mean = %v, %v", mean, err)
	}
	if _, err := Mean("x", nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("empty mean: %v", err)
	}

	mode, err := Mode("pay", []string{"Ewallet", "Cash", "Ewallet", "Cash", "Credit card"})
	if err != nil || mode != "Cash" {
		t.Fatalf("Mode tie = %q, %v; want Cash", mode, err)
	}
	if _, err := Mode("pay", nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("empty mode: %v", err)
	}

	cases := []struct {
		p    float64
		want float64
	}{{0, 1}, {25, 1.75}, {50, 2.5}, {75, 3.25}, {100, 4}}
	for _, c := range cases {
		if got := Percentile([]float64{4, 1, 3, 2}, c.p); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("Percentile(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestCountCategoriesFirstAppearance(t *testing.T) {
	got := CountCategories([]string{"C", "A", "C", "B", "A", "C"})
	want := []CategoryCount{{"C", 3}, {"A", 2}, {"B", 1}}
	if len(got) != len(want) {
		t.Fatalf("counts = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("counts[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFitLineAndDailyMeans(t *testing.T) {
	tbl := loadRows(t, salesRows)
	cogs, _ := tbl.Col(dataset.ColCogs)
	total, _ := tbl.Col(dataset.ColTotal)
	fit, err := FitLine(cogs, total)
	if err != nil {
		t.Fatalf("FitLine: %v", err)
	}
	if math.Abs(fit.Slope-1.05) > 1e-6 || math.Abs(fit.Intercept) > 1e-6 {
		t.Fatalf("fit = %+v, want slope 1.05", fit)
	}
	margin, _ := tbl.Col(dataset.ColGrossMargin)
	if _, err := FitLine(margin, total); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("constant predictor: %v", err)
	}

	gi, _ := tbl.Col(dataset.ColGrossIncome)
	days := DailyMeans(tbl.Index, gi)
	if len(days) != 6 {
		t.Fatalf("days = %d, want 6", len(days))
	}
	for i := 1; i < len(days); i++ {
		if !days[i-1].Day.Before(days[i].Day) {
			t.Fatalf("days not sorted at %d", i)
		}
	}
	if days[0].Day.Format(dataset.IndexLayout) != "2019-01-05" || days[0].Mean != 26.1415 {
		t.Fatalf("first day = %+v", days[0])
	}
}

func TestDescribeAndMarkdown(t *testing.T) {
	rows := append([]string(nil), salesRows...)
	rows[2] = strings.TrimSuffix(rows[2], "9.6")
	tbl := loadRows(t, rows)
	rep := Describe(tbl, 3)
	if rep.Rows != 6 || len(rep.Samples) != 3 {
		t.Fatalf("rows = %d samples = %d", rep.Rows, len(rep.Samples))
	}
	if rep.Index.Days != 6 || rep.Index.From.Format(dataset.IndexLayout) != "2019-01-05" {
		t.Fatalf("index = %+v", rep.Index)
	}
	var rating, branch *ColumnSummary
	for i := range rep.Cols {
		switch rep.Cols[i].Name {
		case dataset.ColRating:
			rating = &rep.Cols[i]
		case dataset.ColBranch:
			branch = &rep.Cols[i]
		}
	}
	if rating == nil || rating.Missing != 1 || rating.NonNull != 5 {
		t.Fatalf("rating summary = %+v", rating)
	}
	if math.Abs(rating.Mean-6.86) > 1e-9 || rating.Min != 4.1 || rating.Max != 9.1 {
		t.Fatalf("rating stats = %+v", rating)
	}
	if branch == nil || branch.Unique != 2 || branch.TopValues[0].Value != "A" {
		t.Fatalf("branch summary = %+v", branch)
	}

	rep.Cleaning = &CleaningNotes{RowsBefore: 6, MissingBefore: 1, Fills: []FillNote{{Column: dataset.ColRating, Value: "6.86", Filled: 1}}}
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: sales.csv",
		"Rows: 6",
		"Index: Date from 2019-01-05 to 2019-03-25",
		"- Rating: numeric (non-null 5, missing 16.7%)",
		"- Branch: categorical",
		"[CLEANING]",
		"Rating: filled 1 with 6.86",
		"[HEAD]",
		"| Date | Invoice ID |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}
