package chart

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Product %02d", i+1)
	}

	return out
}

func TestNewCanvas_LegendRows(t *testing.T) {
	type testCase struct {
		name     string
		series   []string
		wantRows int
		wantTop  float64
	}

	tests := []testCase{
		{name: "NoLegend", series: nil, wantRows: 0, wantTop: DefaultPadding},
		{name: "SingleRow", series: seriesNames(3), wantRows: 1, wantTop: DefaultPadding},
		{name: "Wrapped", series: seriesNames(20), wantRows: 4, wantTop: DefaultPadding + 3*legendRowHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCanvas(640, 360, 4, 0, 10, tt.series, Opts{})
			require.NoError(t, err)

			assert.Equal(t, tt.wantRows, legendRows(c.keys))
			assert.InDelta(t, tt.wantTop, c.top, 0.001)

			for _, k := range c.keys {
				y := c.legendY(k.row)
				assert.Less(t, y+1, c.top, k.label)
				assert.GreaterOrEqual(t, y-8, 18.0, k.label)
				assert.LessOrEqual(t, k.x, 640.0, k.label)
			}
		})
	}
}

func TestNewCanvas_LegendTooTall(t *testing.T) {
	_, err := newCanvas(200, 120, 4, 0, 10, seriesNames(20), Opts{})
	assert.ErrorIs(t, err, errViewport)
}
