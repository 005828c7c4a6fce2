package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Options controls how a sales file is read into a Table.
type Options struct {
	// Schema declares the expected columns. Zero value means SalesSchema().
	Schema Schema
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// DateLayout is a Go time layout for the index column. Empty means auto-detect.
	DateLayout string
	// Numeric parsing locale. If DecimalSeparator is 0, '.' is assumed.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// NAValues lists the tokens read as missing, in addition to blank cells.
	NAValues []string
}

// DefaultNAValues mirrors the usual spreadsheet and pandas missing markers.
var DefaultNAValues = []string{"NA", "N/A", "n/a", "NaN", "nan", "-NaN", "null", "NULL", "None", "#N/A", "<NA>"}

// DefaultOptions returns options for the supermarket sales CSV.
func DefaultOptions() Options {
	return Options{
		Schema:   SalesSchema(),
		NAValues: DefaultNAValues,
	}
}

// Load reads a CSV, TSV or XLSX file by extension.
func Load(path string, opt Options) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, "", opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV opens path and reads it into a Table.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Kind: ErrFileAccess, Op: "open csv", Path: path, Err: err}
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, path, opt)
}

// ReadCSV reads CSV content from r. name is used in errors and as Table.Name.
func ReadCSV(r io.Reader, name string, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Kind: ErrParse, Op: "read header", Path: name, Err: errors.New("empty file")}
		}
		return nil, &LoadError{Kind: ErrParse, Op: "read header", Path: name, Err: err}
	}
	b, err := newBuilder(name, header, opt)
	if err != nil {
		return nil, err
	}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Kind: ErrParse, Op: "read", Path: name, Row: b.rows + 1, Err: err}
		}
		if err := b.add(rec); err != nil {
			return nil, err
		}
	}
	return b.table, nil
}

// ReadRecords reads a delimited file into header + rows with the same rules
// as LoadCSV: cells are trimmed, NA tokens become "", short rows are padded
// and long rows cut to the header width. No column is parsed.
func ReadRecords(path string, opt Options) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Kind: ErrFileAccess, Op: "open csv", Path: path, Err: err}
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	if opt.NAValues == nil {
		opt.NAValues = DefaultNAValues
	}
	na := make(map[string]bool, len(opt.NAValues))
	for _, v := range opt.NAValues {
		na[v] = true
	}

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = opt.Delimiter
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Kind: ErrParse, Op: "read header", Path: path, Err: errors.New("empty file")}
		}
		return nil, &LoadError{Kind: ErrParse, Op: "read header", Path: path, Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	out := [][]string{header}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Kind: ErrParse, Op: "read", Path: path, Row: len(out), Err: err}
		}
		row := make([]string, len(header))
		for i := range row {
			if i >= len(rec) {
				continue
			}
			if v := strings.TrimSpace(rec[i]); !na[v] {
				row[i] = v
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadXLSX reads the named sheet (first sheet when empty) of a workbook.
func LoadXLSX(path, sheet string, opt Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Kind: ErrFileAccess, Op: "open xlsx", Path: path, Err: err}
		}
		return nil, &LoadError{Kind: ErrParse, Op: "open xlsx", Path: path, Err: err}
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{
			Kind: ErrParse,
			Op:   "read sheet " + sheet,
			Path: path,
			Err:  fmt.Errorf("available sheets: %s: %w", strings.Join(f.GetSheetList(), ", "), err),
		}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Kind: ErrParse, Op: "read header", Path: path, Err: errors.New("empty sheet")}
	}
	b, err := newBuilder(path, rows[0], opt)
	if err != nil {
		return nil, err
	}
	for _, rec := range rows[1:] {
		if isBlankRow(rec) {
			continue
		}
		if err := b.add(rec); err != nil {
			return nil, err
		}
	}
	return b.table, nil
}

// builder turns raw records into a Table following the schema.
type builder struct {
	table *Table
	opt   Options
	name  string
	rows  int
	// position of each loaded series in the raw record
	pos      []int
	indexPos int
	na       map[string]bool
}

func newBuilder(name string, header []string, opt Options) (*builder, error) {
	schema := opt.Schema
	if len(schema.Columns) == 0 {
		schema = SalesSchema()
	}
	if opt.NAValues == nil {
		opt.NAValues = DefaultNAValues
	}
	b := &builder{opt: opt, name: name, indexPos: -1, na: make(map[string]bool, len(opt.NAValues))}
	for _, v := range opt.NAValues {
		b.na[v] = true
	}

	var loaded []Column
	var warnings []string
	seen := map[string]bool{}
	for i, h := range header {
		col, ok := schema.Lookup(h)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("ignored column %q: not in schema", strings.TrimSpace(h)))
			continue
		}
		if seen[col.Name] {
			return nil, &LoadError{Kind: ErrSchemaMismatch, Op: "read header", Path: name, Column: col.Name, Err: errors.New("duplicate column")}
		}
		seen[col.Name] = true
		if normalizeName(col.Name) == normalizeName(schema.Index) {
			b.indexPos = i
			continue
		}
		loaded = append(loaded, col)
		b.pos = append(b.pos, i)
	}
	for _, req := range schema.Required() {
		if !seen[req] {
			return nil, &LoadError{Kind: ErrSchemaMismatch, Op: "read header", Path: name, Column: req, Err: errors.New("required column missing")}
		}
	}
	if b.indexPos < 0 {
		return nil, &LoadError{Kind: ErrSchemaMismatch, Op: "read header", Path: name, Column: schema.Index, Err: errors.New("index column missing")}
	}
	b.table = NewTable(filepath.Base(name), schema.Index, loaded)
	b.table.Warnings = warnings
	return b, nil
}

func (b *builder) add(rec []string) error {
	row := b.rows + 1
	cell := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	raw := cell(b.indexPos)
	if b.isNA(raw) {
		return &LoadError{Kind: ErrParse, Op: "parse date", Path: b.name, Row: row, Column: b.table.IndexName, Err: errors.New("missing date")}
	}
	ts, err := ParseDate(raw, b.opt.DateLayout)
	if err != nil {
		return &LoadError{Kind: ErrParse, Op: "parse date", Path: b.name, Row: row, Column: b.table.IndexName, Err: err}
	}
	for j, s := range b.table.cols {
		v := cell(b.pos[j])
		if b.isNA(v) {
			s.appendMissing()
			continue
		}
		if s.Kind != KindNumeric {
			s.appendString(v)
			continue
		}
		x, err := ParseNumeric(v, b.opt)
		if err != nil {
			return &LoadError{Kind: ErrParse, Op: "parse number", Path: b.name, Row: row, Column: s.Name, Err: err}
		}
		s.appendFloat(x)
	}
	b.table.Index = append(b.table.Index, ts)
	b.rows++
	return nil
}

func (b *builder) isNA(v string) bool {
	return v == "" || b.na[v]
}

func isBlankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// dateLayouts are tried in order. Slash dates are month-first like the source export.
var dateLayouts = []string{
	"2006-01-02", "1/2/2006", "01/02/2006", time.RFC3339, "2006/01/02",
	"2006-01-02 15:04:05", "2006-01-02 15:04", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseDate parses s with layout, or with the auto layouts when layout is empty.
func ParseDate(s, layout string) (time.Time, error) {
	if layout != "" {
		return time.Parse(layout, s)
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseNumeric parses a number using the separators in opt.
func ParseNumeric(s string, opt Options) (float64, error) {
	raw := strings.ReplaceAll(s, "\u00a0", " ")
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}
