package chart

import (
	"errors"
	"fmt"
	"html/template"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

var errEmptyTable = errors.New("chart: table has no rows or columns")

// Stacked renders one bar per table row with one segment per column. Positive
// values stack upward from zero and negative values downward.
func Stacked(width, height int, t spend.Table, opts Opts) (template.HTML, error) {
	values, err := tableValues(t)
	if err != nil {
		return "", err
	}

	minVal, maxVal := 0.0, 0.0

	for _, row := range values {
		pos, neg := 0.0, 0.0

		for _, v := range row {
			if v >= 0 {
				pos += v
			} else {
				neg += v
			}
		}

		minVal = min(minVal, neg)
		maxVal = max(maxVal, pos)
	}

	c, err := newCanvas(width, height, len(t.Rows), minVal, maxVal, t.Cols, opts)
	if err != nil {
		return "", err
	}

	c.open("stacked", "Stacked bar chart")

	slot := c.slot(len(t.Rows))

	for i, rowLabel := range t.Rows {
		x := c.left + float64(i)*slot
		pos, neg := 0.0, 0.0

		for j, v := range values[i] {
			if almostEqual(v, 0) {
				continue
			}

			label := fmt.Sprintf("%s / %s: %s", rowLabel, t.Cols[j], formatTick(v))
			h := v * c.scale

			if v > 0 {
				c.rect(x+slot*0.15, c.zeroY-(pos+v)*c.scale, slot*0.7, h, c.opts.color(j), label)
				pos += v
			} else {
				c.rect(x+slot*0.15, c.zeroY-neg*c.scale, slot*0.7, -h, c.opts.color(j), label)
				neg += v
			}
		}

		c.xLabel(x+slot/2, rowLabel)
	}

	c.legend()

	return c.close(), nil
}

// Grouped renders one group per table row with a bar per column side by side.
func Grouped(width, height int, t spend.Table, opts Opts) (template.HTML, error) {
	values, err := tableValues(t)
	if err != nil {
		return "", err
	}

	var flat []float64
	for _, row := range values {
		flat = append(flat, row...)
	}

	minVal, maxVal := bounds(flat)

	c, err := newCanvas(width, height, len(t.Rows), minVal, maxVal, t.Cols, opts)
	if err != nil {
		return "", err
	}

	c.open("grouped", "Grouped bar chart")

	slot := c.slot(len(t.Rows))
	barWidth := slot * 0.8 / float64(len(t.Cols))

	for i, rowLabel := range t.Rows {
		x := c.left + float64(i)*slot + slot*0.1

		for j, v := range values[i] {
			label := fmt.Sprintf("%s / %s: %s", rowLabel, t.Cols[j], formatTick(v))
			c.bar(x+float64(j)*barWidth, barWidth, v, c.opts.color(j), label)
		}

		c.xLabel(c.left+float64(i)*slot+slot/2, rowLabel)
	}

	c.legend()

	return c.close(), nil
}

func tableValues(t spend.Table) ([][]float64, error) {
	if t.Empty() || len(t.Cols) == 0 {
		return nil, errEmptyTable
	}

	if len(t.Values) != len(t.Rows) {
		return nil, fmt.Errorf("chart: %d value rows for %d row labels", len(t.Values), len(t.Rows))
	}

	out := make([][]float64, len(t.Values))

	for i, row := range t.Values {
		if len(row) != len(t.Cols) {
			return nil, fmt.Errorf("chart: row %q has %d values for %d columns", t.Rows[i], len(row), len(t.Cols))
		}

		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v.InexactFloat64()
		}
	}

	return out, nil
}
