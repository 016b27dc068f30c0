// Package chart renders spend views and tables as standalone SVG documents.
package chart

// Opts customises the bar chart renderers.
type Opts struct {
	Title       string
	Description string
	Color       string   // single-series bar colour
	Palette     []string // one colour per stacked or grouped series
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	// MaxLabel truncates axis and legend labels to this many runes.
	MaxLabel int
}

// Defaults for the spend charts.
const (
	DefaultWidth    = 960
	DefaultHeight   = 360
	DefaultPadding  = 48.0
	DefaultTicks    = 5
	DefaultMaxLabel = 18
)

// DefaultPalette is cycled when a chart has more series than colours.
var DefaultPalette = []string{
	"#0ea5e9", "#f97316", "#22c55e", "#a855f7", "#ef4444",
	"#eab308", "#14b8a6", "#ec4899", "#6366f1", "#84cc16",
}

func (o Opts) color(i int) string {
	palette := o.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	return palette[i%len(palette)]
}

func (o Opts) padding() float64 {
	if o.Padding <= 0 {
		return DefaultPadding
	}

	return o.Padding
}

func (o Opts) ticks() int {
	if o.TickCount <= 0 {
		return DefaultTicks
	}

	return o.TickCount
}

func (o Opts) maxLabel() int {
	if o.MaxLabel <= 0 {
		return DefaultMaxLabel
	}

	return o.MaxLabel
}
