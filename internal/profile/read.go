package profile

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// Source names the input a profile was built from.
type Source string

const (
	SourceRaw     Source = "raw"
	SourceCleaned Source = "cleaned"
)

// ParseSource validates a profile_source value.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceRaw:
		return SourceRaw, nil
	case SourceCleaned:
		return SourceCleaned, nil
	}
	return "", fmt.Errorf("invalid profile source %q (want raw or cleaned)", s)
}

// Frame is a loaded data frame together with what the profile needs to know
// about it.
type Frame struct {
	DF     dataframe.DataFrame
	Name   string
	Source Source
	Schema dataset.Schema
	Layout string
}

// ReadCSV reloads the raw file as it is on disk. Cells are read as text with
// the table loader's trimming and missing-value rules, then the declared
// numeric columns are parsed with the separators in opt. Nothing is
// deduplicated or imputed.
func ReadCSV(path string, opt dataset.Options) (*Frame, error) {
	schema := opt.Schema
	if len(schema.Columns) == 0 {
		schema = dataset.SalesSchema()
	}
	records, err := dataset.ReadRecords(path, opt)
	if err != nil {
		return nil, err
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{""}),
	)
	if df.Err != nil {
		return nil, &dataset.LoadError{Kind: dataset.ErrParse, Op: "read csv", Path: path, Err: df.Err}
	}

	for _, name := range df.Names() {
		col, ok := schema.Lookup(name)
		if !ok || col.Kind != dataset.KindNumeric {
			continue
		}
		raw := df.Col(name)
		missing := raw.IsNaN()
		vals := make([]float64, raw.Len())
		for i, rec := range raw.Records() {
			if missing[i] {
				vals[i] = math.NaN()
				continue
			}
			x, err := dataset.ParseNumeric(strings.TrimSpace(rec), opt)
			if err != nil {
				return nil, &dataset.LoadError{Kind: dataset.ErrParse, Op: "parse number", Path: path, Row: i + 1, Column: col.Name, Err: err}
			}
			vals[i] = x
		}
		df = df.Mutate(series.New(vals, series.Float, name))
		if df.Err != nil {
			return nil, &dataset.LoadError{Kind: dataset.ErrParse, Op: "convert column", Path: path, Column: col.Name, Err: df.Err}
		}
	}
	return &Frame{DF: df, Name: filepath.Base(path), Source: SourceRaw, Schema: schema, Layout: opt.DateLayout}, nil
}

// Load reloads the raw input file. CSV and TSV files go through ReadCSV;
// workbooks are read with the table loader and converted, still as raw.
func Load(path string, opt dataset.Options) (*Frame, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ReadCSV(path, opt)
	}
	t, err := dataset.LoadXLSX(path, "", opt)
	if err != nil {
		return nil, err
	}
	f, err := FromTable(t)
	if err != nil {
		return nil, err
	}
	f.Source = SourceRaw
	f.Name = filepath.Base(path)
	return f, nil
}

// FromTable converts a cleaned table into a frame, index first.
func FromTable(t *dataset.Table) (*Frame, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("profile %s: no rows: %w", t.Name, analysis.ErrInsufficientData)
	}
	types := map[string]series.Type{t.IndexName: series.String}
	for _, s := range t.Columns() {
		if s.Kind == dataset.KindNumeric {
			types[s.Name] = series.Float
		} else {
			types[s.Name] = series.String
		}
	}
	df := dataframe.LoadRecords(t.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.WithTypes(types),
		dataframe.NaNValues([]string{""}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("profile %s: %w", t.Name, df.Err)
	}
	return &Frame{DF: df, Name: t.Name, Source: SourceCleaned, Schema: dataset.SalesSchema(), Layout: dataset.IndexLayout}, nil
}

// kindOf resolves the declared kind of a frame column. Columns outside the
// schema are profiled as categorical.
func (f *Frame) kindOf(name string) dataset.Kind {
	col, ok := f.Schema.Lookup(name)
	if !ok {
		return dataset.KindCategorical
	}
	return col.Kind
}

var errNoColumns = errors.New("no columns")
