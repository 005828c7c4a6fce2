package cmd

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/salesloom-cli/internal/pipeline"
)

var salesRows = []string{
	"Invoice ID,Branch,City,Payment,Date,Unit price,Quantity,Tax 5%,Total,cogs,gross margin percentage,gross income,Rating",
	"750-67-8428,A,Yangon,Ewallet,1/5/2019,74.69,7,26.1415,548.9715,522.83,4.761904762,26.1415,9.1",
	"226-31-3081,C,Naypyitaw,Cash,3/8/2019,15.28,5,3.82,80.22,76.4,4.761904762,3.82,9.6",
	"631-41-3108,A,Yangon,Credit card,3/3/2019,46.33,7,16.2155,340.5255,324.31,4.761904762,16.2155,",
	"750-67-8428,A,Yangon,Ewallet,1/5/2019,74.69,7,26.1415,548.9715,522.83,4.761904762,26.1415,9.1",
	"373-73-7910,B,Mandalay,,2/8/2019,86.31,7,30.2085,634.3785,604.17,4.761904762,30.2085,5.3",
	"699-14-3026,C,Naypyitaw,Ewallet,3/25/2019,85.39,7,29.8865,627.6165,597.73,4.761904762,29.8865,4.1",
	"355-53-5943,B,Mandalay,Cash,2/25/2019,68.84,6,20.652,433.692,413.04,4.761904762,20.652,5.8",
}

// resetFlags restores every flag to its default so state does not leak
// between invocations of the shared root command.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// setup isolates HOME and writes the sample sales file.
func setup(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "supermarket_sales.csv")
	if err := os.WriteFile(data, []byte(strings.Join(salesRows, "\n")), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return home, data
}

func TestCLI_ConfigSetShow(t *testing.T) {
	setup(t)
	mustExecute(t, "config", "set", "chart_width_in", "4")
	mustExecute(t, "config", "set", "profile_source", "cleaned")
	out := mustExecute(t, "config", "show")
	for _, want := range []string{"chart_width_in: 4", "profile_source: cleaned", "date_layout: (auto)", "export_xlsx: false"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show missing %q:\n%s", want, out)
		}
	}
	if _, err := execute(t, "config", "set", "chart_format", "gif"); err == nil {
		t.Fatalf("expected invalid chart_format to fail")
	}
	if _, err := execute(t, "config", "set", "bogus", "1"); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestCLI_RunFullPipeline(t *testing.T) {
	home, data := setup(t)
	mustExecute(t, "config", "set", "chart_width_in", "4")
	mustExecute(t, "config", "set", "chart_height_in", "3")
	outDir := filepath.Join(home, "eda")
	out := mustExecute(t, "run", data, "--out", outDir, "--format", "svg", "--xlsx")
	if !strings.Contains(out, "complete") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	for _, f := range []string{"report.html", "summary.md", "cleaned.csv", "cleaned.xlsx", "run.json",
		filepath.Join("charts", "correlation_heatmap.svg"), filepath.Join("charts", "pair_plot.svg")} {
		if _, err := os.Stat(filepath.Join(outDir, f)); err != nil {
			t.Fatalf("missing artifact %s: %v", f, err)
		}
	}
	m, err := pipeline.LoadManifest(outDir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Status != pipeline.StatusOK || m.ProfileSource != "raw" || len(m.Steps) != 6 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestCLI_RunFailureWritesManifest(t *testing.T) {
	home, _ := setup(t)
	outDir := filepath.Join(home, "eda")
	if _, err := execute(t, "run", filepath.Join(home, "missing.csv"), "--out", outDir, "--skip-charts"); err == nil {
		t.Fatalf("expected missing input to fail")
	}
	m, err := pipeline.LoadManifest(outDir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Status != pipeline.StatusFailed || m.FailedStep != pipeline.StepLoad {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestCLI_CleanWritesCSV(t *testing.T) {
	home, data := setup(t)
	dst := filepath.Join(home, "out", "clean.csv")
	out := mustExecute(t, "clean", data, "-o", dst)
	if !strings.Contains(out, "Dropped 1 duplicate rows") || !strings.Contains(out, "Wrote 6 rows") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("open cleaned csv: %v", err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read cleaned csv: %v", err)
	}
	if len(recs) != 7 || recs[0][0] != "Date" {
		t.Fatalf("unexpected cleaned csv header/rows: %d %v", len(recs), recs[0])
	}
	for _, rec := range recs[1:] {
		for j, cell := range rec {
			if cell == "" {
				t.Fatalf("cell %s still empty in %v", recs[0][j], rec)
			}
		}
	}
}

func TestCLI_CorrAnalyzeProfile(t *testing.T) {
	home, data := setup(t)
	out := mustExecute(t, "corr", data, "--top", "1")
	if !strings.Contains(out, "1.00") || !strings.Contains(out, "NaN") {
		t.Fatalf("corr output:\n%s", out)
	}

	md := filepath.Join(home, "summary.md")
	mustExecute(t, "analyze", data, "--clean", "-o", md)
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(b), "[DATASET SUMMARY]") || !strings.Contains(string(b), "[CLEANING]") {
		t.Fatalf("summary:\n%s", b)
	}

	report := filepath.Join(home, "report.html")
	out = mustExecute(t, "profile", data, "--source", "cleaned", "-o", report)
	if !strings.Contains(out, "(cleaned)") {
		t.Fatalf("profile output:\n%s", out)
	}
	if _, err := os.Stat(report); err != nil {
		t.Fatalf("report not written: %v", err)
	}
	out = mustExecute(t, "profile", data, "-o", report)
	for _, want := range []string{"(raw)", "DUPLICATES (1)", "MISSING (2)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("raw profile output missing %q:\n%s", want, out)
		}
	}
	if _, err := execute(t, "profile", data, "--source", "both"); err == nil {
		t.Fatalf("expected invalid source to fail")
	}
}

func TestCLI_LocaleFlags(t *testing.T) {
	home, _ := setup(t)
	semi := strings.ReplaceAll(strings.Join(salesRows, "\n"), ",", ";")
	data := filepath.Join(home, "semi.csv")
	if err := os.WriteFile(data, []byte(semi), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	out := mustExecute(t, "analyze", data, "--delimiter", ";")
	if !strings.Contains(out, "Rows: 7") {
		t.Fatalf("analyze output:\n%s", out)
	}
	if _, err := execute(t, "analyze", data, "--delimiter", "#"); err == nil {
		t.Fatalf("expected unsupported delimiter to fail")
	}
}
