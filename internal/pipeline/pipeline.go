package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/charts"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/config"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
	"github.com/KaramelBytes/salesloom-cli/internal/export"
	"github.com/KaramelBytes/salesloom-cli/internal/profile"
	"github.com/KaramelBytes/salesloom-cli/internal/ui"
	"github.com/KaramelBytes/salesloom-cli/internal/utils"
)

// Stage names, in run order.
const (
	StepLoad        = "load"
	StepCharts      = "charts"
	StepClean       = "clean"
	StepProfile     = "profile"
	StepCorrelation = "correlation"
	StepSummary     = "summary"
)

// Output file names inside the output directory.
const (
	ChartsDir   = "charts"
	SummaryFile = "summary.md"
	CleanedCSV  = "cleaned.csv"
	CleanedXLSX = "cleaned.xlsx"
)

// Options configures a run.
type Options struct {
	DataPath      string
	OutputDir     string
	ReportFile    string
	ProfileSource profile.Source
	Load          dataset.Options
	Dedup         cleaning.DedupOptions

	ChartFormat   string
	ChartWidthIn  float64
	ChartHeightIn float64
	Bins          int

	SkipCharts  bool
	SkipProfile bool
	ExportXLSX  bool
}

// OptionsFromConfig maps the global configuration onto run options.
func OptionsFromConfig(c *config.Global) (Options, error) {
	src, err := profile.ParseSource(c.ProfileSource)
	if err != nil {
		return Options{}, err
	}
	return Options{
		DataPath:      c.DataPath,
		OutputDir:     c.OutputDir,
		ReportFile:    c.ReportFile,
		ProfileSource: src,
		Load:          c.DatasetOptions(),
		ChartFormat:   c.ChartFormat,
		ChartWidthIn:  c.ChartWidthIn,
		ChartHeightIn: c.ChartHeightIn,
		Bins:          c.HistogramBins,
		ExportXLSX:    c.ExportXLSX,
	}, nil
}

// Result is what a run produced. Table is the cleaned table.
type Result struct {
	Manifest *Manifest
	Table    *dataset.Table
	Clean    *CleanResult
	Profile  *profile.Profile
	Corr     *analysis.CorrMatrix
	Summary  *analysis.Report
}

// Runner executes the stages strictly in order on one table.
type Runner struct {
	opts    Options
	log     *slog.Logger
	console *ui.Console
}

// New creates a runner. A nil logger discards logs; a nil console prints nothing.
func New(opts Options, log *slog.Logger, console *ui.Console) *Runner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if console == nil {
		console = ui.NewConsole(io.Discard, false)
	}
	if opts.ReportFile == "" {
		opts.ReportFile = "report.html"
	}
	return &Runner{opts: opts, log: log, console: console}
}

// Run executes load, charts, clean, profile, correlation and summary. The
// first failure stops the run; run.json is written either way with the
// failing step. ctx is checked before each stage.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	o := r.opts
	m := newManifest(o.DataPath, o.OutputDir, string(o.ProfileSource))
	log := r.log.With("run_id", m.RunID)
	res := &Result{Manifest: m}

	err := r.stages(ctx, log, res)
	m.FinishedAt = time.Now().UTC()
	if err != nil {
		m.Status = StatusFailed
		m.Error = err.Error()
	} else {
		m.Status = StatusOK
	}
	if serr := m.Save(); serr != nil {
		log.Error("save manifest", "error", serr)
		if err == nil {
			err = serr
		}
	}
	if err != nil {
		return res, err
	}
	log.Info("run complete", "artifacts", len(m.Artifacts), "duration", m.FinishedAt.Sub(m.StartedAt))
	return res, nil
}

func (r *Runner) stages(ctx context.Context, log *slog.Logger, res *Result) error {
	o := r.opts
	m := res.Manifest

	var renderer *charts.Renderer
	if !o.SkipCharts {
		rr, err := charts.NewRenderer(filepath.Join(o.OutputDir, ChartsDir), o.ChartFormat, o.ChartWidthIn, o.ChartHeightIn, o.Bins)
		if err != nil {
			return r.fail(m, log, StepCharts, time.Now(), err)
		}
		renderer = rr
	}

	if err := r.step(ctx, m, log, StepLoad, func() (string, error) {
		t, err := dataset.Load(o.DataPath, o.Load)
		if err != nil {
			return "", err
		}
		res.Table = t
		for _, w := range t.Warnings {
			r.console.Warn("%s", w)
			log.Warn("load warning", "warning", w)
		}
		return fmt.Sprintf("%d rows, %d columns", t.Len(), len(t.Columns())), nil
	}); err != nil {
		return err
	}
	t := res.Table

	if renderer == nil {
		r.skip(m, StepCharts)
	} else if err := r.step(ctx, m, log, StepCharts, func() (string, error) {
		paths, err := renderer.Descriptive(ctx, t)
		m.addArtifacts(paths...)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d charts", len(paths)), nil
	}); err != nil {
		return err
	}

	if err := r.step(ctx, m, log, StepClean, func() (string, error) {
		cr, err := Clean(t, o.Dedup, renderer)
		res.Clean = cr
		if cr != nil {
			m.addArtifacts(cr.Charts...)
		}
		if err != nil {
			return "", err
		}
		r.console.MissingTable(cr.MissingBefore)
		r.console.FillTable(cr.Imputed)
		csvPath := filepath.Join(o.OutputDir, CleanedCSV)
		if err := dataset.WriteCSV(t, csvPath); err != nil {
			return "", err
		}
		m.addArtifacts(csvPath)
		return fmt.Sprintf("dropped %d duplicates, filled %d cells", cr.Duplicates, cr.Imputed.Total()), nil
	}); err != nil {
		return err
	}

	if o.SkipProfile {
		r.skip(m, StepProfile)
	} else if err := r.step(ctx, m, log, StepProfile, func() (string, error) {
		f, err := r.profileFrame(t)
		if err != nil {
			return "", err
		}
		p, err := profile.Build(f)
		if err != nil {
			return "", err
		}
		res.Profile = p
		path := o.ReportFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(o.OutputDir, path)
		}
		if err := p.WriteHTML(path); err != nil {
			return "", err
		}
		m.addArtifacts(path)
		return fmt.Sprintf("source %s, %d alerts", f.Source, len(p.Alerts)), nil
	}); err != nil {
		return err
	}

	if err := r.step(ctx, m, log, StepCorrelation, func() (string, error) {
		cm, err := analysis.Correlate(t, analysis.SalesCorrelationColumns)
		if err != nil {
			return "", err
		}
		res.Corr = cm
		r.console.CorrelationTable(cm)
		if renderer != nil {
			p, err := renderer.CorrelationMap(cm)
			if err != nil {
				return "", err
			}
			m.addArtifacts(p)
		}
		return fmt.Sprintf("%dx%d matrix", len(cm.Columns), len(cm.Columns)), nil
	}); err != nil {
		return err
	}

	return r.step(ctx, m, log, StepSummary, func() (string, error) {
		rep := analysis.Describe(t, 5)
		rep.Cleaning = res.Clean.Notes()
		rep.Corr = res.Corr
		res.Summary = rep
		path := filepath.Join(o.OutputDir, SummaryFile)
		if err := utils.SafeWriteFile(path, []byte(rep.Markdown())); err != nil {
			return "", &dataset.LoadError{Kind: dataset.ErrFileAccess, Op: "write summary", Path: path, Err: err}
		}
		m.addArtifacts(path)
		if o.ExportXLSX {
			xp := filepath.Join(o.OutputDir, CleanedXLSX)
			if err := export.WriteWorkbook(xp, export.Workbook{Table: t, Missing: res.Clean.MissingBefore, Corr: res.Corr}); err != nil {
				return "", err
			}
			m.addArtifacts(xp)
		}
		return path, nil
	})
}

func (r *Runner) profileFrame(cleaned *dataset.Table) (*profile.Frame, error) {
	if r.opts.ProfileSource == profile.SourceCleaned {
		return profile.FromTable(cleaned)
	}
	return profile.Load(r.opts.DataPath, r.opts.Load)
}

func (r *Runner) step(ctx context.Context, m *Manifest, log *slog.Logger, name string, fn func() (string, error)) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return r.fail(m, log, name, start, err)
	}
	log.Debug("step start", "step", name)
	detail, err := fn()
	if err != nil {
		return r.fail(m, log, name, start, err)
	}
	d := time.Since(start)
	m.Steps = append(m.Steps, Step{
		Name:       name,
		Status:     StatusOK,
		StartedAt:  start.UTC(),
		DurationMs: d.Milliseconds(),
		Detail:     detail,
	})
	log.Info("step done", "step", name, "duration", d, "detail", detail)
	r.console.Success("%s: %s", name, detail)
	return nil
}

func (r *Runner) fail(m *Manifest, log *slog.Logger, name string, start time.Time, err error) error {
	m.Steps = append(m.Steps, Step{
		Name:       name,
		Status:     StatusFailed,
		StartedAt:  start.UTC(),
		DurationMs: time.Since(start).Milliseconds(),
		Error:      err.Error(),
	})
	m.FailedStep = name
	log.Error("step failed", "step", name, "error", err)
	r.console.Fail("%s: %v", name, err)
	return fmt.Errorf("%s: %w", name, err)
}

func (r *Runner) skip(m *Manifest, name string) {
	m.Steps = append(m.Steps, Step{Name: name, Status: StatusSkipped, StartedAt: time.Now().UTC()})
	r.console.Warn("%s: skipped", name)
}
