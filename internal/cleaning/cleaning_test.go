package cleaning

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

const header = "Branch,City,Payment,Date,Unit price,Quantity,Tax 5%,Total,cogs,gross margin percentage,gross income,Rating"

// Six rows: row 4 repeats row 1, row 3 has no Rating, row 5 has no Payment.
var sixRows = []string{
	header,
	"A,Yangon,Cash,1/5/2019,10,1,0.5,10.5,10,4.76,0.5,7.0",
	"B,Mandalay,Ewallet,1/6/2019,20,2,2,42,40,4.76,2,8.0",
	"C,Naypyitaw,Cash,1/7/2019,30,3,4.5,94.5,90,4.76,4.5,",
	"A,Yangon,Cash,1/5/2019,10,1,0.5,10.5,10,4.76,0.5,7.0",
	"A,Yangon,,1/8/2019,40,4,8,168,160,4.76,8,6.0",
	"B,Mandalay,Ewallet,1/9/2019,50,5,12.5,262.5,250,4.76,12.5,9.0",
}

func mustTable(t *testing.T, lines []string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(strings.Join(lines, "\n")), "test.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	return tbl
}

func TestCleanEndToEnd(t *testing.T) {
	tbl := mustTable(t, sixRows)
	require.Equal(t, 6, tbl.Len())
	require.Equal(t, 2, TotalMissing(tbl))

	assert.Equal(t, 1, DuplicateCount(tbl, DedupOptions{}))
	dropped := DropDuplicates(tbl, DedupOptions{})
	assert.Equal(t, 1, dropped)
	require.Equal(t, 5, tbl.Len())

	rep, err := Impute(tbl)
	require.NoError(t, err)
	assert.Equal(t, 0, TotalMissing(tbl))
	assert.Equal(t, 2, rep.Total())

	rating, err := tbl.Col(dataset.ColRating)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, rating.Num[2], 1e-12)

	pay, err := tbl.Col(dataset.ColPayment)
	require.NoError(t, err)
	// Cash and Ewallet both appear twice; the tie goes to the smaller value.
	assert.Equal(t, "Cash", pay.Str[3])

	require.Len(t, rep.Fills, 2)
	assert.Equal(t, dataset.ColPayment, rep.Fills[0].Column)
	assert.Equal(t, "Cash", rep.Fills[0].Value)
	assert.Equal(t, dataset.ColRating, rep.Fills[1].Column)
	assert.Equal(t, "7.5", rep.Fills[1].Value)
	assert.Equal(t, 1, rep.Fills[1].Filled)
}

func TestDropDuplicatesIdempotent(t *testing.T) {
	tbl := mustTable(t, sixRows)
	DropDuplicates(tbl, DedupOptions{})
	n := tbl.Len()
	assert.Equal(t, 0, DropDuplicates(tbl, DedupOptions{}))
	assert.Equal(t, n, tbl.Len())
}

func TestDropDuplicatesKeepsFirstOccurrence(t *testing.T) {
	tbl := mustTable(t, sixRows)
	dup := FindDuplicates(tbl, DedupOptions{})
	assert.Equal(t, []bool{false, false, false, true, false, false}, dup)
	DropDuplicates(tbl, DedupOptions{})
	assert.Equal(t, "2019-01-08", tbl.Index[3].Format(dataset.IndexLayout))
}

func TestDedupIndexOption(t *testing.T) {
	lines := []string{
		header,
		"A,Yangon,Cash,1/5/2019,10,1,0.5,10.5,10,4.76,0.5,7.0",
		"A,Yangon,Cash,2/5/2019,10,1,0.5,10.5,10,4.76,0.5,7.0",
	}
	tbl := mustTable(t, lines)
	assert.Equal(t, 1, DuplicateCount(tbl, DedupOptions{}))
	assert.Equal(t, 0, DuplicateCount(tbl, DedupOptions{IncludeIndex: true}))
}

func TestDedupTreatsMissingAsEqual(t *testing.T) {
	lines := []string{
		header,
		"A,Yangon,Cash,1/5/2019,10,1,0.5,10.5,10,4.76,0.5,",
		"A,Yangon,Cash,1/5/2019,10,1,0.5,10.5,10,4.76,0.5,",
		"A,Yangon,Cash,1/5/2019,10,1,0.5,10.5,10,4.76,0.5,0",
	}
	tbl := mustTable(t, lines)
	assert.Equal(t, []bool{false, true, false}, FindDuplicates(tbl, DedupOptions{}))
}

func TestImputeEntirelyMissingColumn(t *testing.T) {
	lines := []string{
		header,
		"A,Yangon,,1/5/2019,10,1,0.5,10.5,10,4.76,0.5,",
		"B,Mandalay,Cash,1/6/2019,20,2,2,42,40,4.76,2,",
	}
	tbl := mustTable(t, lines)
	_, err := Impute(tbl)
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Contains(t, err.Error(), dataset.ColRating)

	// Nothing is written when any column cannot be filled.
	pay, _ := tbl.Col(dataset.ColPayment)
	assert.Equal(t, 1, pay.Missing())
}

func TestImputeNoMissingIsNoop(t *testing.T) {
	tbl := mustTable(t, sixRows[:3])
	rep, err := Impute(tbl)
	require.NoError(t, err)
	assert.Empty(t, rep.Fills)
}

func TestMissingCountsAndMask(t *testing.T) {
	tbl := mustTable(t, sixRows)
	counts := map[string]int{}
	for _, c := range MissingCounts(tbl) {
		counts[c.Column] = c.Count
	}
	assert.Equal(t, 1, counts[dataset.ColRating])
	assert.Equal(t, 1, counts[dataset.ColPayment])
	assert.Equal(t, 0, counts[dataset.ColBranch])

	mask := MissingMask(tbl)
	require.Len(t, mask, 6)
	missingCells := 0
	for _, row := range mask {
		for _, m := range row {
			if m {
				missingCells++
			}
		}
	}
	assert.Equal(t, 2, missingCells)
}
