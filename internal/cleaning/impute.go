package cleaning

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// ErrInsufficientData is returned when a column has no present value to
// derive a fill from.
var ErrInsufficientData = analysis.ErrInsufficientData

// Fill records how one column was imputed.
type Fill struct {
	Column string
	Kind   dataset.Kind
	Value  string
	Filled int
}

// ImputeReport lists the fills applied, in column order. Columns with no
// missing cells are omitted.
type ImputeReport struct {
	Fills []Fill
}

// Total returns the number of cells filled.
func (r ImputeReport) Total() int {
	n := 0
	for _, f := range r.Fills {
		n += f.Filled
	}
	return n
}

// Impute fills missing numeric cells with the column mean and missing
// categorical cells with the column mode. Fill values are computed from the
// present cells before anything is written. If any column with missing
// cells has no present cell, the table is left untouched and an error
// wrapping ErrInsufficientData is returned.
func Impute(t *dataset.Table) (ImputeReport, error) {
	type plan struct {
		s   *dataset.Series
		num float64
		str string
	}
	var plans []plan
	for _, s := range t.Columns() {
		if s.Missing() == 0 {
			continue
		}
		p := plan{s: s}
		var err error
		switch s.Kind {
		case dataset.KindNumeric:
			p.num, err = analysis.Mean(s.Name, s.Floats())
		default:
			p.str, err = analysis.Mode(s.Name, s.Strings())
		}
		if err != nil {
			return ImputeReport{}, fmt.Errorf("impute: column %q is entirely missing: %w", s.Name, err)
		}
		plans = append(plans, p)
	}

	var rep ImputeReport
	for _, p := range plans {
		f := Fill{Column: p.s.Name, Kind: p.s.Kind}
		if p.s.Kind == dataset.KindNumeric {
			f.Value = strconv.FormatFloat(p.num, 'f', -1, 64)
		} else {
			f.Value = p.str
		}
		for i, ok := range p.s.Valid {
			if ok {
				continue
			}
			if p.s.Kind == dataset.KindNumeric {
				p.s.SetFloat(i, p.num)
			} else {
				p.s.SetString(i, p.str)
			}
			f.Filled++
		}
		rep.Fills = append(rep.Fills, f)
	}
	return rep, nil
}
