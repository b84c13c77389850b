package mapviz

import "math"

// ColorForEntityValue colors a marker by where its amount sits linearly
// between minValue and maxValue. Zero amounts and degenerate ranges get
// the lowest gradient color.
func ColorForEntityValue(raw Value, minValue, maxValue float64) RGB {
	return ColorForAmount(ParseValue(raw), minValue, maxValue)
}

// ColorForAmount is ColorForEntityValue for an already parsed amount
func ColorForAmount(value, minValue, maxValue float64) RGB {
	if value == 0 || maxValue == minValue {
		return LowestColor()
	}
	percent := (value - minValue) / (maxValue - minValue) * 100
	if math.IsNaN(percent) {
		return LowestColor()
	}
	return ColorForPercent(clamp(percent, 0, 100))
}

// ColorForRank colors by rank fraction (0-1) as produced by RankPositions.
// Legends and statistics use this path; markers use ColorForEntityValue.
func ColorForRank(fraction float64) RGB {
	if math.IsNaN(fraction) {
		return LowestColor()
	}
	return ColorForPercent(clamp(fraction, 0, 1) * 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
