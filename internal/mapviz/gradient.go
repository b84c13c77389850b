package mapviz

import (
	"fmt"
	"math"
	"strings"
)

// RGB is a display color with 8-bit channels
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String formats the color as a CSS rgb() value
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// MarshalText lets colors serialize as their CSS form
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// GradientStop anchors a color at a position on the 0-100 scale
type GradientStop struct {
	Position float64
	Color    RGB
}

// Band boundaries on the percent scale
const (
	GreenBandEnd = 17.5
	GoldBandEnd  = 45.0
)

// gradientStops is sorted by position. Each band boundary appears twice so
// the green/gold and gold/red transitions are hard edges.
var gradientStops = [...]GradientStop{
	// Green: low value / low risk
	{0, RGB{21, 128, 61}},
	{8.75, RGB{22, 163, 74}},
	{GreenBandEnd, RGB{74, 222, 128}},

	// Gold: medium
	{GreenBandEnd, RGB{161, 128, 24}},
	{31.25, RGB{202, 160, 40}},
	{GoldBandEnd, RGB{250, 204, 21}},

	// Red: high value / high risk
	{GoldBandEnd, RGB{248, 113, 113}},
	{72.5, RGB{220, 38, 38}},
	{100, RGB{153, 27, 27}},
}

// GradientStops returns a copy of the fixed stop table
func GradientStops() []GradientStop {
	out := make([]GradientStop, len(gradientStops))
	copy(out, gradientStops[:])
	return out
}

// LowestColor is the color of the first stop, used as the fallback color
func LowestColor() RGB {
	return gradientStops[0].Color
}

// HighestColor is the color of the last stop
func HighestColor() RGB {
	return gradientStops[len(gradientStops)-1].Color
}

// ColorForPercent interpolates the gradient at percent (0-100).
// Callers clamp; out-of-table input snaps to the nearest end stop.
func ColorForPercent(percent float64) RGB {
	first := gradientStops[0]
	last := gradientStops[len(gradientStops)-1]

	if math.IsNaN(percent) || percent < first.Position {
		return first.Color
	}
	if percent > last.Position {
		return last.Color
	}

	for i := 0; i < len(gradientStops)-1; i++ {
		lower := gradientStops[i]
		upper := gradientStops[i+1]
		if percent < lower.Position || percent > upper.Position {
			continue
		}

		f := 0.0
		if span := upper.Position - lower.Position; span > 0 {
			f = (percent - lower.Position) / span
		}
		return RGB{
			R: lerpChannel(lower.Color.R, upper.Color.R, f),
			G: lerpChannel(lower.Color.G, upper.Color.G, f),
			B: lerpChannel(lower.Color.B, upper.Color.B, f),
		}
	}

	return first.Color
}

func lerpChannel(a, b uint8, f float64) uint8 {
	v := math.Round(float64(a) + (float64(b)-float64(a))*f)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// GradientCSS renders the stop table as a CSS linear-gradient for legend bars
func GradientCSS() string {
	parts := make([]string, 0, len(gradientStops))
	for _, s := range gradientStops {
		parts = append(parts, fmt.Sprintf("%s %s%%", s.Color, formatPercent(s.Position)))
	}
	return "linear-gradient(to right, " + strings.Join(parts, ", ") + ")"
}

func formatPercent(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%d", int(p))
	}
	return fmt.Sprintf("%g", p)
}
