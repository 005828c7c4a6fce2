package export

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

var rows = []string{
	"Branch,Payment,Date,Unit price,Quantity,Tax 5%,Total,cogs,gross margin percentage,gross income,Rating",
	"A,Ewallet,1/5/2019,74.69,7,26.1415,548.9715,522.83,4.761904762,26.1415,9.1",
	"C,Cash,3/8/2019,15.28,5,3.82,80.22,76.4,4.761904762,3.82,9.6",
	"A,Credit card,3/3/2019,46.33,7,16.2155,340.5255,324.31,4.761904762,16.2155,",
	"B,Ewallet,2/8/2019,86.31,7,30.2085,634.3785,604.17,4.761904762,30.2085,5.3",
}

func cleanedTable(t *testing.T) (*dataset.Table, []cleaning.ColumnMissing) {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(strings.Join(rows, "\n")), "sales.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	missing := cleaning.MissingCounts(tbl)
	_, err = cleaning.Impute(tbl)
	require.NoError(t, err)
	return tbl, missing
}

func TestWriteWorkbookSheets(t *testing.T) {
	tbl, missing := cleanedTable(t)
	corr, err := analysis.Correlate(tbl, analysis.SalesCorrelationColumns)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "cleaned.xlsx")
	require.NoError(t, WriteWorkbook(path, Workbook{Table: tbl, Missing: missing, Corr: corr}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetData, SheetMissing, SheetCorrelation}, f.GetSheetList())

	data, err := f.GetRows(SheetData)
	require.NoError(t, err)
	require.Len(t, data, 5)
	assert.Equal(t, "Date", data[0][0])
	assert.Equal(t, "Branch", data[0][1])
	assert.Equal(t, "2019-01-05", data[1][0])
	assert.Equal(t, "74.69", data[1][3])
	// Rating of row 3 is the mean of the other three.
	rating, err := strconv.ParseFloat(data[3][len(data[3])-1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, rating, 1e-9)

	miss, err := f.GetRows(SheetMissing)
	require.NoError(t, err)
	require.Len(t, miss, 1+len(missing))
	assert.Equal(t, []string{"Column", "Kind", "Missing"}, miss[0])
	assert.Equal(t, []string{dataset.ColRating, "numeric", "1"}, miss[len(miss)-1])

	cm, err := f.GetRows(SheetCorrelation)
	require.NoError(t, err)
	require.Len(t, cm, 9)
	assert.Equal(t, dataset.ColUnitPrice, cm[0][1])
	assert.Equal(t, dataset.ColUnitPrice, cm[1][0])
	assert.Equal(t, "1", cm[1][1])
	// gross margin percentage is constant, so its row has no values.
	gm := cm[6]
	assert.Equal(t, dataset.ColGrossMargin, gm[0])
	for _, v := range gm[1:] {
		if v != "" {
			assert.Equal(t, "1", v, "only the diagonal may be set for a constant column")
		}
	}
}

func TestWriteWorkbookWithoutCorrelation(t *testing.T) {
	tbl, _ := cleanedTable(t)
	path := filepath.Join(t.TempDir(), "cleaned.xlsx")
	require.NoError(t, WriteWorkbook(path, Workbook{Table: tbl}))

	back, err := dataset.LoadXLSX(path, SheetData, dataset.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, tbl.Len(), back.Len())
	assert.Zero(t, cleaning.TotalMissing(back))
}

func TestWriteWorkbookErrors(t *testing.T) {
	assert.Error(t, WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), Workbook{}))

	tbl, _ := cleanedTable(t)
	dir := t.TempDir()
	err := WriteWorkbook(dir, Workbook{Table: tbl})
	assert.ErrorIs(t, err, dataset.ErrFileAccess)
}
