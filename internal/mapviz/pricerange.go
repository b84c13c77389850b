package mapviz

// OpenEndedMax is the range slider's upper stop. A range whose Max equals it
// has no upper bound.
const OpenEndedMax = 2_000_000

// ValueRange is a selected amount window in currency units
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultRange selects everything
func DefaultRange() ValueRange {
	return ValueRange{Min: 0, Max: OpenEndedMax}
}

// IsOpenEnded reports whether the upper bound is the slider sentinel
func (r ValueRange) IsOpenEnded() bool {
	return r.Max == OpenEndedMax
}

// Contains tests a parsed amount against the range, inclusive on both ends
func (r ValueRange) Contains(value float64) bool {
	if r.IsOpenEnded() {
		return value >= r.Min
	}
	return value >= r.Min && value <= r.Max
}

// Priced is anything carrying a monetary amount
type Priced interface {
	PriceValue() Value
}

// MakeMatcher returns a predicate selecting entities whose amount falls in r
func MakeMatcher[E Priced](r ValueRange) func(E) bool {
	return func(e E) bool {
		return r.Contains(ParseValue(e.PriceValue()))
	}
}
