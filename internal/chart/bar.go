package chart

import (
	"errors"
	"fmt"
	"html/template"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

// Bars renders a single-series bar chart, one bar per label in the given order.
func Bars(width, height int, values []float64, labels []string, opts Opts) (template.HTML, error) {
	if len(values) == 0 {
		return "", errors.New("chart: values required")
	}

	if len(values) != len(labels) {
		return "", fmt.Errorf("chart: %d values for %d labels", len(values), len(labels))
	}

	minVal, maxVal := bounds(values)

	c, err := newCanvas(width, height, len(labels), minVal, maxVal, nil, opts)
	if err != nil {
		return "", err
	}

	c.open("bar", "Bar chart")

	color := fallback(opts.Color, opts.color(0))
	slot := c.slot(len(labels))

	for i, label := range labels {
		x := c.left + float64(i)*slot
		c.bar(x+slot*0.15, slot*0.7, values[i], color, fmt.Sprintf("%s: %s", label, formatTick(values[i])))
		c.xLabel(x+slot/2, label)
	}

	return c.close(), nil
}

// ViewBars renders a spend view with Bars.
func ViewBars(width, height int, v spend.View, opts Opts) (template.HTML, error) {
	return Bars(width, height, v.Values(), v.Labels(), opts)
}
