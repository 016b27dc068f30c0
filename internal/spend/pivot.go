package spend

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Table is a zero-filled grid of sums. Values[i][j] belongs to Rows[i] and
// Cols[j]; a combination absent from the data holds an explicit zero.
type Table struct {
	RowField Field
	ColField Field
	Rows     []string
	Cols     []string
	Values   [][]decimal.Decimal
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// At returns the cell for row and col, zero when either key is unknown.
func (t Table) At(row, col string) decimal.Decimal {
	i := slices.Index(t.Rows, row)
	j := slices.Index(t.Cols, col)

	if i < 0 || j < 0 {
		return decimal.Zero
	}

	return t.Values[i][j]
}

// RowTotals sums each row.
func (t Table) RowTotals() []decimal.Decimal {
	out := make([]decimal.Decimal, len(t.Rows))

	for i, row := range t.Values {
		sum := decimal.Zero
		for _, v := range row {
			sum = sum.Add(v)
		}

		out[i] = sum
	}

	return out
}

// ColTotals sums each column.
func (t Table) ColTotals() []decimal.Decimal {
	out := make([]decimal.Decimal, len(t.Cols))
	for j := range out {
		out[j] = decimal.Zero
	}

	for _, row := range t.Values {
		for j, v := range row {
			out[j] = out[j].Add(v)
		}
	}

	return out
}

// Round returns a copy with every value rounded to places.
func (t Table) Round(places int32) Table {
	out := t
	out.Rows = slices.Clone(t.Rows)
	out.Cols = slices.Clone(t.Cols)
	out.Values = make([][]decimal.Decimal, len(t.Values))

	for i, row := range t.Values {
		out.Values[i] = make([]decimal.Decimal, len(row))
		for j, v := range row {
			out.Values[i][j] = v.Round(places)
		}
	}

	return out
}

// Column returns the values of col in row order.
func (t Table) Column(col string) []decimal.Decimal {
	j := slices.Index(t.Cols, col)
	out := make([]decimal.Decimal, len(t.Rows))

	for i := range out {
		if j < 0 {
			out[i] = decimal.Zero
			continue
		}

		out[i] = t.Values[i][j]
	}

	return out
}

// Pivot sums totals into a rows x cols grid. Rows and columns are the sorted
// distinct keys present in the data; every cell is filled, absent
// combinations with zero.
func Pivot(ds *Dataset, row, col Field) Table {
	view := Aggregate(ds, row, col)

	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})

	for _, g := range view.Groups {
		rowSet[g.Key[0]] = struct{}{}
		colSet[g.Key[1]] = struct{}{}
	}

	t := Table{
		RowField: row,
		ColField: col,
		Rows:     sortedKeys(rowSet),
		Cols:     sortedKeys(colSet),
	}

	t.Values = make([][]decimal.Decimal, len(t.Rows))
	for i := range t.Values {
		t.Values[i] = make([]decimal.Decimal, len(t.Cols))
		for j := range t.Values[i] {
			t.Values[i][j] = decimal.Zero
		}
	}

	for _, g := range view.Groups {
		i, _ := slices.BinarySearch(t.Rows, g.Key[0])
		j, _ := slices.BinarySearch(t.Cols, g.Key[1])
		t.Values[i][j] = g.Sum
	}

	return t
}

// YearToDateSummary pivots the records invoiced in year by account and price
// book, rounded to cents. A year without records yields an empty table.
func YearToDateSummary(ds *Dataset, year int) Table {
	inYear := ds.Where(func(r Record) bool {
		return r.InvoiceDate != nil && r.InvoiceDate.Year() == year
	})

	return Pivot(inYear, FieldAccount, FieldPriceBook).Round(2)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	slices.Sort(out)

	return out
}
