package cleaning

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// DedupOptions controls what makes two rows equal.
type DedupOptions struct {
	// IncludeIndex also compares the date index. Off by default: rows are
	// compared on their columns only, with the index set aside.
	IncludeIndex bool
}

// FindDuplicates marks every row that equals an earlier row on all compared
// columns. The first occurrence of each group is not marked.
func FindDuplicates(t *dataset.Table, opt DedupOptions) []bool {
	dup := make([]bool, t.Len())
	seen := make(map[string]struct{}, t.Len())
	for i := 0; i < t.Len(); i++ {
		k := rowKey(t, i, opt)
		if _, ok := seen[k]; ok {
			dup[i] = true
			continue
		}
		seen[k] = struct{}{}
	}
	return dup
}

// DuplicateCount returns how many rows FindDuplicates would mark.
func DuplicateCount(t *dataset.Table, opt DedupOptions) int {
	n := 0
	for _, d := range FindDuplicates(t, opt) {
		if d {
			n++
		}
	}
	return n
}

// DropDuplicates removes marked rows in place and returns how many were dropped.
func DropDuplicates(t *dataset.Table, opt DedupOptions) int {
	dup := FindDuplicates(t, opt)
	keep := make([]int, 0, len(dup))
	for i, d := range dup {
		if !d {
			keep = append(keep, i)
		}
	}
	dropped := len(dup) - len(keep)
	if dropped > 0 {
		t.Keep(keep)
	}
	return dropped
}

// rowKey encodes a row so that missing cells differ from any present value.
func rowKey(t *dataset.Table, i int, opt DedupOptions) string {
	var b strings.Builder
	if opt.IncludeIndex {
		b.WriteString(strconv.FormatInt(t.Index[i].UnixNano(), 10))
		b.WriteByte(0x1f)
	}
	for _, s := range t.Columns() {
		if !s.Valid[i] {
			b.WriteByte(0x00)
		} else if s.Kind == dataset.KindNumeric {
			b.WriteByte('n')
			b.WriteString(strconv.FormatFloat(s.Num[i], 'g', -1, 64))
		} else {
			b.WriteByte('s')
			b.WriteString(s.Str[i])
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}
