package chart_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendviz/internal/chart"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

func table(rows, cols []string, values ...[]float64) spend.Table {
	t := spend.Table{
		RowField: spend.FieldMonth,
		ColField: spend.FieldPriceBook,
		Rows:     rows,
		Cols:     cols,
	}

	for _, row := range values {
		out := make([]decimal.Decimal, len(row))
		for j, v := range row {
			out[j] = decimal.NewFromFloat(v)
		}

		t.Values = append(t.Values, out)
	}

	return t
}

func TestBars(t *testing.T) {
	html, err := chart.Bars(640, 320, []float64{1500, 250.5, 75}, []string{"Dealer A", "Dealer B", "Dealer C"}, chart.Opts{
		Title: "Spend by Account",
	})
	require.NoError(t, err)

	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Contains(t, out, "Spend by Account")
	assert.Contains(t, out, "Dealer B")
	assert.Contains(t, out, `id="spend-by-account-bar-title"`)

	// Background plus one bar per value.
	assert.Equal(t, 4, strings.Count(out, "<rect"))
	assert.NotContains(t, out, `height="-`)
}

func TestBars_Errors(t *testing.T) {
	type testCase struct {
		name   string
		width  int
		height int
		values []float64
		labels []string
	}

	tests := []testCase{
		{name: "Empty", values: nil, labels: nil},
		{name: "Length Mismatch", values: []float64{1, 2}, labels: []string{"a"}},
		{name: "Viewport Too Small", width: 20, height: 20, values: []float64{1}, labels: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chart.Bars(tt.width, tt.height, tt.values, tt.labels, chart.Opts{})
			assert.Error(t, err)
		})
	}
}

func TestBars_EscapesLabels(t *testing.T) {
	html, err := chart.Bars(0, 0, []float64{1}, []string{"<Dealer & Co>"}, chart.Opts{Title: `"quoted"`})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "&lt;Dealer &amp; Co&gt;")
	assert.NotContains(t, out, "<Dealer")
	assert.Contains(t, out, "&#34;quoted&#34;")
}

func TestBars_NegativeAndZeroValues(t *testing.T) {
	html, err := chart.Bars(0, 0, []float64{-20, 0, 40}, []string{"refund", "none", "sale"}, chart.Opts{})
	require.NoError(t, err)
	assert.NotContains(t, string(html), `height="-`)

	html, err = chart.Bars(0, 0, []float64{0, 0}, []string{"a", "b"}, chart.Opts{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "<svg")
}

func TestBars_RotatesCrowdedLabels(t *testing.T) {
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}

	html, err := chart.Bars(0, 0, values, labels, chart.Opts{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "rotate(-45")

	html, err = chart.Bars(0, 0, values[:3], labels[:3], chart.Opts{})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "rotate(-45")
}

func TestBars_TruncatesLongLabels(t *testing.T) {
	html, err := chart.Bars(0, 0, []float64{1}, []string{"A very long dealership account name"}, chart.Opts{MaxLabel: 10})
	require.NoError(t, err)
	assert.Contains(t, string(html), "A very lo…")
}

func TestViewBars(t *testing.T) {
	v := spend.View{
		Fields: []spend.Field{spend.FieldAccount},
		Groups: []spend.Group{
			{Key: []string{"Dealer A"}, Sum: decimal.NewFromInt(10), Count: 1},
			{Key: []string{"Dealer B"}, Sum: decimal.NewFromInt(5), Count: 1},
		},
	}

	html, err := chart.ViewBars(0, 0, v, chart.Opts{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Dealer A: 10")

	_, err = chart.ViewBars(0, 0, spend.View{}, chart.Opts{})
	assert.Error(t, err)
}

func TestStacked(t *testing.T) {
	tbl := table(
		[]string{"2024-01", "2024-02"},
		[]string{"Fleet", "Retail"},
		[]float64{0, 100},
		[]float64{40, 25},
	)

	html, err := chart.Stacked(0, 0, tbl, chart.Opts{Title: "Dealer A"})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "2024-02 / Fleet: 40")
	assert.Contains(t, out, "2024-02 / Retail: 25")
	assert.NotContains(t, out, "2024-01 / Fleet")

	// Background, three non-zero segments and two legend swatches.
	assert.Equal(t, 6, strings.Count(out, "<rect"))
	assert.NotContains(t, out, `height="-`)
}

func TestStacked_NegativeSegments(t *testing.T) {
	tbl := table([]string{"2024-01"}, []string{"Fleet", "Retail"}, []float64{-10, 30})

	html, err := chart.Stacked(0, 0, tbl, chart.Opts{})
	require.NoError(t, err)
	assert.NotContains(t, string(html), `height="-`)
}

func TestGrouped(t *testing.T) {
	tbl := table(
		[]string{"Dealer A", "Dealer B"},
		[]string{"Fleet", "Retail"},
		[]float64{0, 1500},
		[]float64{250.5, 0},
	)

	html, err := chart.Grouped(0, 0, tbl, chart.Opts{Palette: []string{"#111111"}})
	require.NoError(t, err)

	out := string(html)
	// Background, one bar per cell and two legend swatches.
	assert.Equal(t, 7, strings.Count(out, "<rect"))
	assert.Contains(t, out, `fill="#111111"`)
	assert.Contains(t, out, "Dealer B / Fleet: 250.50")
}

func TestTableCharts_Errors(t *testing.T) {
	ragged := table([]string{"a", "b"}, []string{"x"}, []float64{1})

	for name, tbl := range map[string]spend.Table{
		"Empty":      {},
		"No Columns": {Rows: []string{"a"}, Values: [][]decimal.Decimal{{}}},
		"Ragged":     ragged,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := chart.Stacked(0, 0, tbl, chart.Opts{})
			assert.Error(t, err)

			_, err = chart.Grouped(0, 0, tbl, chart.Opts{})
			assert.Error(t, err)
		})
	}
}
