package mapviz

import (
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorForPercent_Endpoints(t *testing.T) {
	stops := GradientStops()
	assert.Equal(t, stops[0].Color, ColorForPercent(0))
	assert.Equal(t, stops[len(stops)-1].Color, ColorForPercent(100))
}

func TestColorForPercent_ExactStops(t *testing.T) {
	assert.Equal(t, RGB{22, 163, 74}, ColorForPercent(8.75))
	assert.Equal(t, RGB{202, 160, 40}, ColorForPercent(31.25))
	assert.Equal(t, RGB{220, 38, 38}, ColorForPercent(72.5))
}

func TestColorForPercent_BandEdgesBelongToLowerBand(t *testing.T) {
	assert.Equal(t, RGB{74, 222, 128}, ColorForPercent(GreenBandEnd))
	assert.Equal(t, RGB{250, 204, 21}, ColorForPercent(GoldBandEnd))

	// just past the edge is the next band's first color
	assert.Equal(t, RGB{161, 128, 24}, ColorForPercent(GreenBandEnd+1e-9))
	assert.Equal(t, RGB{248, 113, 113}, ColorForPercent(GoldBandEnd+1e-9))
}

func TestColorForPercent_Interpolates(t *testing.T) {
	// halfway between {0: 21,128,61} and {8.75: 22,163,74}
	c := ColorForPercent(4.375)
	assert.Equal(t, RGB{22, 146, 68}, c)
}

func TestColorForPercent_OutOfRange(t *testing.T) {
	assert.Equal(t, LowestColor(), ColorForPercent(-10))
	assert.Equal(t, HighestColor(), ColorForPercent(250))
	assert.Equal(t, LowestColor(), ColorForPercent(math.NaN()))
}

func TestColorForPercent_MonotonicWithinBands(t *testing.T) {
	bands := []struct {
		name    string
		lo, hi  float64
		channel func(RGB) uint8
		rising  bool
	}{
		{"green", 0, GreenBandEnd, func(c RGB) uint8 { return c.G }, true},
		{"gold", GreenBandEnd + 1e-6, GoldBandEnd, func(c RGB) uint8 { return c.R }, true},
		{"red", GoldBandEnd + 1e-6, 100, func(c RGB) uint8 { return c.R }, false},
	}

	for _, b := range bands {
		t.Run(b.name, func(t *testing.T) {
			prev := b.channel(ColorForPercent(b.lo))
			for p := b.lo; p <= b.hi; p += 0.25 {
				cur := b.channel(ColorForPercent(p))
				if b.rising {
					require.GreaterOrEqual(t, cur, prev, "percent %.2f", p)
				} else {
					require.LessOrEqual(t, cur, prev, "percent %.2f", p)
				}
				prev = cur
			}
		})
	}
}

func TestRGBString(t *testing.T) {
	re := regexp.MustCompile(`^rgb\((\d{1,3}), (\d{1,3}), (\d{1,3})\)$`)
	for p := 0.0; p <= 100; p += 2.5 {
		assert.Regexp(t, re, ColorForPercent(p).String())
	}
	assert.Equal(t, "rgb(21, 128, 61)", LowestColor().String())
}

func TestGradientStops_Ordered(t *testing.T) {
	stops := GradientStops()
	require.NotEmpty(t, stops)
	assert.Equal(t, 0.0, stops[0].Position)
	assert.Equal(t, 100.0, stops[len(stops)-1].Position)
	for i := 1; i < len(stops); i++ {
		assert.GreaterOrEqual(t, stops[i].Position, stops[i-1].Position)
	}

	// the copy must not alias the table
	stops[0].Color = RGB{}
	assert.NotEqual(t, RGB{}, LowestColor())
}

func TestGradientCSS(t *testing.T) {
	css := GradientCSS()
	assert.Contains(t, css, "linear-gradient(to right, rgb(21, 128, 61) 0%")
	assert.Contains(t, css, "rgb(161, 128, 24) 17.5%")
	assert.Contains(t, css, "rgb(153, 27, 27) 100%)")
}
