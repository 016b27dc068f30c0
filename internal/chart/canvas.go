package chart

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
)

var errViewport = errors.New("chart: viewport too small")

const legendRowHeight = 14.0

type legendEntry struct {
	x     float64
	row   int
	label string
}

// canvas holds the plot geometry shared by the bar renderers.
type canvas struct {
	b      strings.Builder
	opts   Opts
	width  int
	height int
	left   float64
	top    float64
	plotW  float64
	plotH  float64
	minVal float64
	maxVal float64
	scale  float64
	zeroY  float64
	rotate bool
	axis   string
	grid   string
	keys   []legendEntry
}

// newCanvas lays out the plot area. The top padding grows by one legend row
// height for every row the series names wrap onto.
func newCanvas(width, height, slots int, minVal, maxVal float64, series []string, opts Opts) (*canvas, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	if height <= 0 {
		height = DefaultHeight
	}

	padding := opts.padding()
	rotate := slots > 8

	bottom := padding
	if rotate {
		bottom += 72
	}

	c := &canvas{
		opts:   opts,
		width:  width,
		height: height,
		left:   padding + 16,
		top:    padding,
		rotate: rotate,
		axis:   fallback(opts.AxisColor, "#475569"),
		grid:   fallback(opts.GridColor, "#cbd5e1"),
	}

	c.keys = layoutLegend(series, c.left, float64(width), opts.maxLabel())
	if rows := legendRows(c.keys); rows > 1 {
		c.top += float64(rows-1) * legendRowHeight
	}

	c.plotW = float64(width) - c.left - padding
	c.plotH = float64(height) - c.top - bottom

	if c.plotW <= 0 || c.plotH <= 0 {
		return nil, errViewport
	}

	minVal = min(minVal, 0)
	maxVal = max(maxVal, 0)

	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}

	c.minVal, c.maxVal = minVal, maxVal
	c.scale = c.plotH / (maxVal - minVal)
	c.zeroY = c.top + c.plotH - (0-minVal)*c.scale

	return c, nil
}

func (c *canvas) bottom() float64 { return c.top + c.plotH }

func (c *canvas) slot(n int) float64 { return c.plotW / float64(n) }

func (c *canvas) open(kind, desc string) {
	titleID := makeID(c.opts.Title, kind+"-title")
	descID := makeID(c.opts.Title, kind+"-desc")

	fmt.Fprintf(&c.b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" role="img" aria-labelledby="%s %s" font-family="sans-serif">`,
		c.width, c.height, c.width, c.height, titleID, descID)
	fmt.Fprintf(&c.b, `<title id="%s">%s</title>`, titleID, esc(fallback(c.opts.Title, "Bar chart")))
	fmt.Fprintf(&c.b, `<desc id="%s">%s</desc>`, descID, esc(fallback(c.opts.Description, desc)))
	fmt.Fprintf(&c.b, `<rect x="0" y="0" width="%d" height="%d" fill="#ffffff"></rect>`, c.width, c.height)

	if c.opts.Title != "" {
		fmt.Fprintf(&c.b, `<text x="%.2f" y="%.2f" fill="%s" font-size="14" font-weight="bold" text-anchor="middle">%s</text>`,
			float64(c.width)/2, 18.0, esc(c.axis), esc(c.opts.Title))
	}

	ticks := c.opts.ticks()
	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		value := c.minVal + (c.maxVal-c.minVal)*ratio
		y := c.bottom() - ratio*c.plotH

		fmt.Fprintf(&c.b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`,
			c.left, y, c.left+c.plotW, y, esc(c.grid))
		fmt.Fprintf(&c.b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`,
			c.left-6, y+4, esc(c.axis), esc(formatTick(value)))
	}

	fmt.Fprintf(&c.b, `<g stroke="%s" aria-label="Axes">`, esc(c.axis))
	fmt.Fprintf(&c.b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, c.left, c.top, c.left, c.bottom())
	fmt.Fprintf(&c.b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, c.left, c.zeroY, c.left+c.plotW, c.zeroY)
	c.b.WriteString("</g>")
}

func (c *canvas) rect(x, y, w, h float64, color, label string) {
	fmt.Fprintf(&c.b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s"><title>%s</title></rect>`,
		x, y, w, h, esc(color), esc(label), esc(label))
}

func (c *canvas) bar(x, w, value float64, color, label string) {
	y, h := barPosition(value, c.scale, c.zeroY, c.top, c.bottom())
	c.rect(x, y, w, h, color, label)
}

func (c *canvas) xLabel(center float64, label string) {
	text := esc(truncate(label, c.opts.maxLabel()))
	y := c.bottom() + 14

	if c.rotate {
		fmt.Fprintf(&c.b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end" transform="rotate(-45 %.2f %.2f)">%s</text>`,
			center, y, esc(c.axis), center, y, text)

		return
	}

	fmt.Fprintf(&c.b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`,
		center, y, esc(c.axis), text)
}

// layoutLegend places the series names left to right from left, wrapping
// onto a new row when the next name would pass width.
func layoutLegend(names []string, left, width float64, maxLabel int) []legendEntry {
	out := make([]legendEntry, 0, len(names))
	x, row := left, 0

	for _, name := range names {
		label := truncate(name, maxLabel)
		step := float64(len([]rune(label)))*6 + 28

		if x+step > width && x > left {
			x = left
			row++
		}

		out = append(out, legendEntry{x: x, row: row, label: label})
		x += step
	}

	return out
}

func legendRows(keys []legendEntry) int {
	if len(keys) == 0 {
		return 0
	}

	return keys[len(keys)-1].row + 1
}

// legendY is the text baseline of a legend row. The last row sits just above
// the plot.
func (c *canvas) legendY(row int) float64 {
	return c.top - 18 - float64(legendRows(c.keys)-1-row)*legendRowHeight
}

// legend draws the series names laid out by newCanvas above the plot.
func (c *canvas) legend() {
	for i, k := range c.keys {
		y := c.legendY(k.row)

		fmt.Fprintf(&c.b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, k.x, y-8, esc(c.opts.color(i)))
		fmt.Fprintf(&c.b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="start">%s</text>`, k.x+14, y+1, esc(c.axis), esc(k.label))
	}
}

func (c *canvas) close() template.HTML {
	c.b.WriteString("</svg>")

	return template.HTML(c.b.String())
}
