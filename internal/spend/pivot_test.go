package spend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

func fixed(t spend.Table) [][]string {
	out := make([][]string, len(t.Values))
	for i, row := range t.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = v.StringFixed(2)
		}
	}

	return out
}

func TestPivot_ZeroFill(t *testing.T) {
	ds := load(t, header+
		"A,P,Retail,2024-01-05,100\n"+
		"A,P,Fleet,2024-02-05,40\n"+
		"B,P,Retail,2024-02-10,10\n"+
		"B,P,Retail,2024-02-11,15\n")

	tbl := spend.Pivot(ds, spend.FieldMonth, spend.FieldPriceBook)

	assert.Equal(t, spend.FieldMonth, tbl.RowField)
	assert.Equal(t, spend.FieldPriceBook, tbl.ColField)
	assert.Equal(t, []string{"2024-01", "2024-02"}, tbl.Rows)
	assert.Equal(t, []string{"Fleet", "Retail"}, tbl.Cols)
	assert.Equal(t, [][]string{
		{"0.00", "100.00"},
		{"40.00", "25.00"},
	}, fixed(tbl))

	// Every cell is present and absent combinations are zero.
	for _, row := range tbl.Values {
		require.Len(t, row, len(tbl.Cols))
	}

	assert.True(t, tbl.At("2024-01", "Fleet").IsZero())
	assert.True(t, tbl.At("1999-01", "Fleet").IsZero())
	assert.Equal(t, "25.00", tbl.At("2024-02", "Retail").StringFixed(2))
}

func TestPivot_Totals(t *testing.T) {
	ds := load(t, fixture)

	tbl := spend.Pivot(ds, spend.FieldAccount, spend.FieldPriceBook)

	rowTotals := tbl.RowTotals()
	require.Len(t, rowTotals, 3)
	assert.Equal(t, "1500.00", rowTotals[0].StringFixed(2))
	assert.Equal(t, "250.50", rowTotals[1].StringFixed(2))
	assert.Equal(t, "75.00", rowTotals[2].StringFixed(2))

	colTotals := tbl.ColTotals()
	require.Len(t, colTotals, 2)
	assert.Equal(t, "250.50", colTotals[0].StringFixed(2))
	assert.Equal(t, "1575.00", colTotals[1].StringFixed(2))

	assert.Equal(t, []string{"0.00", "250.50", "0.00"}, func() []string {
		var out []string
		for _, v := range tbl.Column("Fleet") {
			out = append(out, v.StringFixed(2))
		}

		return out
	}())
}

func TestPivot_Empty(t *testing.T) {
	ds := load(t, header)

	tbl := spend.Pivot(ds, spend.FieldAccount, spend.FieldPriceBook)
	assert.True(t, tbl.Empty())
	assert.Empty(t, tbl.Cols)
	assert.Empty(t, tbl.Values)
}

func TestYearToDateSummary(t *testing.T) {
	ds := load(t, header+
		"A,P,Retail,2023-12-31,1000\n"+
		"A,P,Retail,2024-01-01,10.005\n"+
		"A,P,Fleet,2024-06-01,20\n"+
		"B,P,Fleet,2024-07-01,5.5\n"+
		"B,P,Retail,2023-05-01,300\n"+
		"C,P,Retail,undated,999\n")

	tbl := spend.YearToDateSummary(ds, 2024)

	assert.Equal(t, []string{"A", "B"}, tbl.Rows)
	assert.Equal(t, []string{"Fleet", "Retail"}, tbl.Cols)
	assert.Equal(t, [][]string{
		{"20.00", "10.01"},
		{"5.50", "0.00"},
	}, fixed(tbl))
	assert.Equal(t, "10.01", tbl.At("A", "Retail").String())
}

func TestYearToDateSummary_NoRecords(t *testing.T) {
	ds := load(t, fixture)

	tbl := spend.YearToDateSummary(ds, 1990)
	assert.True(t, tbl.Empty())
}
