package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
	"github.com/KaramelBytes/salesloom-cli/internal/utils"
)

// Sheet names of the exported workbook.
const (
	SheetData        = "data"
	SheetMissing     = "missing"
	SheetCorrelation = "correlation"
)

// Workbook is what gets written to the xlsx export. Missing and Corr are
// optional; their sheets are still created, with a header only.
type Workbook struct {
	Table   *dataset.Table
	Missing []cleaning.ColumnMissing
	Corr    *analysis.CorrMatrix
}

// WriteWorkbook writes the cleaned table, the missing counts taken before
// imputation and the correlation matrix to an xlsx file at path.
func WriteWorkbook(path string, wb Workbook) error {
	if wb.Table == nil {
		return fmt.Errorf("export %s: no table", path)
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetData); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	for _, name := range []string{SheetMissing, SheetCorrelation} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: add sheet %s: %w", name, err)
		}
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	if err := writeData(f, wb.Table, header); err != nil {
		return err
	}
	if err := writeMissing(f, wb.Missing, header); err != nil {
		return err
	}
	if err := writeCorrelation(f, wb.Corr, header); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("export: encode xlsx: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return &dataset.LoadError{Kind: dataset.ErrFileAccess, Op: "write xlsx", Path: path, Err: err}
	}
	return nil
}

func writeData(f *excelize.File, t *dataset.Table, header int) error {
	cols := t.Columns()
	names := append([]string{t.IndexName}, t.Names()...)
	if err := writeHeader(f, SheetData, names, header); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		row := make([]interface{}, 0, len(cols)+1)
		row = append(row, t.Index[i].Format(dataset.IndexLayout))
		for _, s := range cols {
			switch {
			case !s.Valid[i]:
				row = append(row, nil)
			case s.Kind == dataset.KindNumeric:
				row = append(row, s.Num[i])
			default:
				row = append(row, s.Str[i])
			}
		}
		if err := setRow(f, SheetData, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetData, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("export: freeze panes: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(names), t.Len()+1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(SheetData, "A1:"+last, nil); err != nil {
		return fmt.Errorf("export: auto filter: %w", err)
	}
	return widen(f, SheetData, len(names), 14)
}

func writeMissing(f *excelize.File, missing []cleaning.ColumnMissing, header int) error {
	if err := writeHeader(f, SheetMissing, []string{"Column", "Kind", "Missing"}, header); err != nil {
		return err
	}
	for i, m := range missing {
		if err := setRow(f, SheetMissing, i+2, []interface{}{m.Column, m.Kind.String(), m.Count}); err != nil {
			return err
		}
	}
	return widen(f, SheetMissing, 3, 24)
}

// writeCorrelation lays the matrix out with column names along the first row
// and column. NaN cells are left empty.
func writeCorrelation(f *excelize.File, m *analysis.CorrMatrix, header int) error {
	if m == nil {
		return writeHeader(f, SheetCorrelation, []string{""}, header)
	}
	if err := writeHeader(f, SheetCorrelation, append([]string{""}, m.Columns...), header); err != nil {
		return err
	}
	for i, name := range m.Columns {
		row := make([]interface{}, 0, len(m.Columns)+1)
		row = append(row, name)
		for _, r := range m.Values[i] {
			if math.IsNaN(r) {
				row = append(row, nil)
				continue
			}
			row = append(row, r)
		}
		if err := setRow(f, SheetCorrelation, i+2, row); err != nil {
			return err
		}
	}
	n := len(m.Columns)
	if n == 0 {
		return nil
	}
	if err := f.SetCellStyle(SheetCorrelation, "A2", fmt.Sprintf("A%d", n+1), header); err != nil {
		return err
	}
	tl, _ := excelize.CoordinatesToCellName(2, 2)
	br, _ := excelize.CoordinatesToCellName(n+1, n+1)
	if err := f.SetConditionalFormat(SheetCorrelation, tl+":"+br, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MinValue: "-1",
		MidType:  "num",
		MidValue: "0",
		MaxType:  "num",
		MaxValue: "1",
		MinColor: "#3B4CC0",
		MidColor: "#DDDDDD",
		MaxColor: "#B40426",
	}}); err != nil {
		return fmt.Errorf("export: correlation colors: %w", err)
	}
	return widen(f, SheetCorrelation, n+1, 22)
}

func writeHeader(f *excelize.File, sheet string, names []string, style int) error {
	row := make([]interface{}, len(names))
	for i, n := range names {
		row[i] = n
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(names), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: %s row %d: %w", sheet, row, err)
	}
	return nil
}

func widen(f *excelize.File, sheet string, cols int, width float64) error {
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, width)
}
