package cleaning

import "github.com/KaramelBytes/salesloom-cli/internal/dataset"

// ColumnMissing is the missing-value count of one column.
type ColumnMissing struct {
	Column string
	Kind   dataset.Kind
	Count  int
}

// MissingCounts returns per-column missing counts in column order.
func MissingCounts(t *dataset.Table) []ColumnMissing {
	out := make([]ColumnMissing, 0, len(t.Columns()))
	for _, s := range t.Columns() {
		out = append(out, ColumnMissing{Column: s.Name, Kind: s.Kind, Count: s.Missing()})
	}
	return out
}

// TotalMissing sums the missing cells of the table.
func TotalMissing(t *dataset.Table) int {
	n := 0
	for _, s := range t.Columns() {
		n += s.Missing()
	}
	return n
}

// MissingMask returns mask[row][col] = true where the cell is missing.
func MissingMask(t *dataset.Table) [][]bool {
	cols := t.Columns()
	mask := make([][]bool, t.Len())
	for i := range mask {
		row := make([]bool, len(cols))
		for j, s := range cols {
			row[j] = !s.Valid[i]
		}
		mask[i] = row
	}
	return mask
}
