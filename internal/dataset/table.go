package dataset

import (
	"math"
	"strconv"
	"time"
)

// IndexLayout is the layout used when the date index is formatted back to text.
const IndexLayout = "2006-01-02"

// Series is one typed column. Valid[i] is false when row i is missing.
// Numeric columns use Num, categorical columns use Str.
type Series struct {
	Name  string
	Kind  Kind
	Num   []float64
	Str   []string
	Valid []bool
}

// Len returns the number of rows in the series.
func (s *Series) Len() int { return len(s.Valid) }

// Missing counts rows without a value.
func (s *Series) Missing() int {
	n := 0
	for _, ok := range s.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Floats returns the valid numeric values in row order.
func (s *Series) Floats() []float64 {
	out := make([]float64, 0, len(s.Num))
	for i, v := range s.Num {
		if s.Valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Strings returns the valid categorical values in row order.
func (s *Series) Strings() []string {
	out := make([]string, 0, len(s.Str))
	for i, v := range s.Str {
		if s.Valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Text formats row i; missing values format as the empty string.
func (s *Series) Text(i int) string {
	if !s.Valid[i] {
		return ""
	}
	if s.Kind == KindNumeric {
		return strconv.FormatFloat(s.Num[i], 'f', -1, 64)
	}
	return s.Str[i]
}

// SetFloat stores a numeric value and marks it present.
func (s *Series) SetFloat(i int, v float64) {
	s.Num[i] = v
	s.Valid[i] = true
}

// SetString stores a categorical value and marks it present.
func (s *Series) SetString(i int, v string) {
	s.Str[i] = v
	s.Valid[i] = true
}

func (s *Series) appendMissing() {
	if s.Kind == KindNumeric {
		s.Num = append(s.Num, math.NaN())
	} else {
		s.Str = append(s.Str, "")
	}
	s.Valid = append(s.Valid, false)
}

func (s *Series) appendString(v string) {
	s.Str = append(s.Str, v)
	s.Valid = append(s.Valid, true)
}

func (s *Series) appendFloat(v float64) {
	s.Num = append(s.Num, v)
	s.Valid = append(s.Valid, true)
}

func (s *Series) clone() *Series {
	c := &Series{Name: s.Name, Kind: s.Kind, Valid: append([]bool(nil), s.Valid...)}
	if s.Num != nil {
		c.Num = append([]float64(nil), s.Num...)
	}
	if s.Str != nil {
		c.Str = append([]string(nil), s.Str...)
	}
	return c
}

// Table is the in-memory sales table indexed by Date. It has a single owner;
// callers pass it explicitly from stage to stage.
type Table struct {
	Name      string
	IndexName string
	Index     []time.Time
	Warnings  []string

	cols   []*Series
	byName map[string]int
}

// NewTable creates an empty table with one series per non-date column.
func NewTable(name, index string, columns []Column) *Table {
	t := &Table{Name: name, IndexName: index, byName: make(map[string]int, len(columns))}
	for _, c := range columns {
		if c.Kind == KindDate {
			continue
		}
		t.byName[normalizeName(c.Name)] = len(t.cols)
		t.cols = append(t.cols, &Series{Name: c.Name, Kind: c.Kind})
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Index) }

// Columns returns the series in file order.
func (t *Table) Columns() []*Series { return t.cols }

// Names returns the column names in file order, index excluded.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether the named column was loaded.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[normalizeName(name)]
	return ok
}

// Col returns the named series or an ErrSchemaMismatch load error.
func (t *Table) Col(name string) (*Series, error) {
	idx, ok := t.byName[normalizeName(name)]
	if !ok {
		return nil, &LoadError{Kind: ErrSchemaMismatch, Op: "column lookup", Path: t.Name, Column: name}
	}
	return t.cols[idx], nil
}

// NumericColumns returns the numeric series in file order.
func (t *Table) NumericColumns() []*Series { return t.ofKind(KindNumeric) }

// CategoricalColumns returns the categorical series in file order.
func (t *Table) CategoricalColumns() []*Series { return t.ofKind(KindCategorical) }

func (t *Table) ofKind(k Kind) []*Series {
	var out []*Series
	for _, c := range t.cols {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Name:      t.Name,
		IndexName: t.IndexName,
		Index:     append([]time.Time(nil), t.Index...),
		Warnings:  append([]string(nil), t.Warnings...),
		cols:      make([]*Series, len(t.cols)),
		byName:    make(map[string]int, len(t.byName)),
	}
	for i, s := range t.cols {
		c.cols[i] = s.clone()
	}
	for k, v := range t.byName {
		c.byName[k] = v
	}
	return c
}

// Keep retains only the given rows, in the given order, mutating the table.
func (t *Table) Keep(rows []int) {
	idx := make([]time.Time, len(rows))
	for i, r := range rows {
		idx[i] = t.Index[r]
	}
	t.Index = idx
	for _, s := range t.cols {
		valid := make([]bool, len(rows))
		for i, r := range rows {
			valid[i] = s.Valid[r]
		}
		s.Valid = valid
		if s.Kind == KindNumeric {
			num := make([]float64, len(rows))
			for i, r := range rows {
				num[i] = s.Num[r]
			}
			s.Num = num
			continue
		}
		str := make([]string, len(rows))
		for i, r := range rows {
			str[i] = s.Str[r]
		}
		s.Str = str
	}
}

// Records renders the table as text rows with a header; the index comes first.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, t.Len()+1)
	header := append([]string{t.IndexName}, t.Names()...)
	out = append(out, header)
	for i := 0; i < t.Len(); i++ {
		row := make([]string, 0, len(header))
		row = append(row, t.Index[i].Format(IndexLayout))
		for _, s := range t.cols {
			row = append(row, s.Text(i))
		}
		out = append(out, row)
	}
	return out
}
