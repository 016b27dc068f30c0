package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

const sheetName = "Summary"

// WriteTableXLSX writes t as a single-sheet workbook: a title row, a header
// row of column keys, one row per row key and a totals row and column.
func WriteTableXLSX(w io.Writer, t spend.Table, title string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("creating title style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#0EA5E9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("creating number style: %w", err)
	}

	header := append([]string{t.RowField.Label()}, t.Cols...)
	header = append(header, "Total")

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("resolving columns: %w", err)
	}

	rows := [][]any{{title}, toAny(header)}

	rowTotals := t.RowTotals()
	for i, key := range t.Rows {
		row := []any{key}
		for _, v := range t.Values[i] {
			row = append(row, v.InexactFloat64())
		}

		rows = append(rows, append(row, rowTotals[i].InexactFloat64()))
	}

	totals := []any{"Total"}
	grand := 0.0

	for _, v := range t.ColTotals() {
		totals = append(totals, v.InexactFloat64())
		grand += v.InexactFloat64()
	}

	rows = append(rows, append(totals, grand))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("resolving row %d: %w", i+1, err)
		}

		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	last := len(rows)

	for _, s := range []struct {
		from, to string
		style    int
	}{
		{"A1", "A1", titleStyle},
		{"A2", lastCol + "2", headerStyle},
		{"B3", fmt.Sprintf("%s%d", lastCol, last), numberStyle},
	} {
		if err := f.SetCellStyle(sheetName, s.from, s.to, s.style); err != nil {
			return fmt.Errorf("styling %s:%s: %w", s.from, s.to, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.SetColWidth(sheetName, "B", lastCol, 16); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

// WriteTableCSV writes t as CSV: a header of column keys followed by one
// row per row key, values with two decimals.
func WriteTableCSV(w io.Writer, t spend.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(append([]string{t.RowField.Label()}, t.Cols...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, key := range t.Rows {
		row := []string{key}
		for _, v := range t.Values[i] {
			row = append(row, v.StringFixed(2))
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %q: %w", key, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}

	return out
}
