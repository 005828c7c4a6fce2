package charts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

var salesRows = []string{
	"Invoice ID,Branch,City,Payment,Date,Unit price,Quantity,Tax 5%,Total,cogs,gross margin percentage,gross income,Rating",
	"750-67-8428,A,Yangon,Ewallet,1/5/2019,74.69,7,26.1415,548.9715,522.83,4.761904762,26.1415,9.1",
	"226-31-3081,C,Naypyitaw,Cash,3/8/2019,15.28,5,3.82,80.22,76.4,4.761904762,3.82,9.6",
	"631-41-3108,A,Yangon,Credit card,3/3/2019,46.33,7,16.2155,340.5255,324.31,4.761904762,16.2155,",
	"123-19-1176,A,Yangon,Ewallet,1/27/2019,58.22,8,23.288,489.048,465.76,4.761904762,23.288,8.4",
	"373-73-7910,B,Mandalay,Ewallet,2/8/2019,86.31,7,30.2085,634.3785,604.17,4.761904762,30.2085,5.3",
	"699-14-3026,C,Naypyitaw,,3/25/2019,85.39,7,29.8865,627.6165,597.73,4.761904762,29.8865,4.1",
	"355-53-5943,B,Mandalay,Cash,2/25/2019,68.84,6,20.652,433.692,413.04,4.761904762,20.652,5.8",
}

func loadRows(t *testing.T, rows []string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(strings.Join(rows, "\n")), "sales.csv", dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

func nonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Fatalf("%s is empty", path)
	}
}

func TestDescriptiveWritesEveryChart(t *testing.T) {
	tbl := loadRows(t, salesRows)
	dir := filepath.Join(t.TempDir(), "charts")
	r, err := NewRenderer(dir, "png", 6, 4, 10)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	paths, err := r.Descriptive(context.Background(), tbl)
	if err != nil {
		t.Fatalf("Descriptive: %v", err)
	}
	want := []string{RatingDistribution, NumericHistograms, BranchCounts, PaymentCounts,
		RatingVsGrossIncome, GrossIncomeByBranch, GrossIncomeTrend, PairPlot}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, name := range want {
		if paths[i] != filepath.Join(dir, name+".png") {
			t.Fatalf("paths[%d] = %s, want %s", i, paths[i], name)
		}
		nonEmptyFile(t, paths[i])
	}
	// Charts read the table without changing it.
	if tbl.Len() != 7 || cleaning.TotalMissing(tbl) != 2 {
		t.Fatalf("table mutated: rows=%d missing=%d", tbl.Len(), cleaning.TotalMissing(tbl))
	}
}

func TestDescriptiveHonorsCancellation(t *testing.T) {
	tbl := loadRows(t, salesRows)
	r, _ := NewRenderer(t.TempDir(), "png", 4, 3, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	paths, err := r.Descriptive(ctx, tbl)
	if !errors.Is(err, context.Canceled) || len(paths) != 0 {
		t.Fatalf("want context.Canceled with no output, got %v %v", paths, err)
	}
}

func TestHeatmapsSVG(t *testing.T) {
	tbl := loadRows(t, salesRows)
	r, err := NewRenderer(t.TempDir(), "svg", 6, 4, 0)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	p, err := r.MissingMap(cleaning.MissingMask(tbl), tbl.Names(), MissingBefore)
	if err != nil {
		t.Fatalf("MissingMap: %v", err)
	}
	nonEmptyFile(t, p)
	if filepath.Ext(p) != ".svg" {
		t.Fatalf("ext = %s", filepath.Ext(p))
	}

	cleaning.DropDuplicates(tbl, cleaning.DedupOptions{})
	if _, err := cleaning.Impute(tbl); err != nil {
		t.Fatalf("Impute: %v", err)
	}
	m, err := analysis.Correlate(tbl, analysis.SalesCorrelationColumns)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	p, err = r.CorrelationMap(m)
	if err != nil {
		t.Fatalf("CorrelationMap: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(b), "<svg") || !strings.Contains(string(b), "1.00") {
		t.Fatalf("svg should contain annotated cells")
	}
}

func TestRendererErrors(t *testing.T) {
	if _, err := NewRenderer(t.TempDir(), "gif", 6, 4, 0); err == nil {
		t.Fatalf("gif should be rejected")
	}
	rows := []string{salesRows[0]}
	for _, row := range salesRows[1:3] {
		i := strings.LastIndex(row, ",")
		rows = append(rows, row[:i+1])
	}
	tbl := loadRows(t, rows)
	r, _ := NewRenderer(t.TempDir(), "png", 4, 3, 0)
	if _, err := r.RatingHistogram(tbl); !errors.Is(err, analysis.ErrInsufficientData) {
		t.Fatalf("all-missing Rating: want ErrInsufficientData, got %v", err)
	}
	if _, err := r.CategoryBars(tbl, dataset.ColRating, "bad"); err == nil {
		t.Fatalf("numeric column should be rejected for bars")
	}
}

func TestCategoryColor(t *testing.T) {
	if CategoryColor("A") != blue || CategoryColor("Cash") != silver || CategoryColor("Credit card") != gold {
		t.Fatalf("fixed colors changed")
	}
	if CategoryColor("Z") != grey {
		t.Fatalf("unknown category should be grey")
	}
}
