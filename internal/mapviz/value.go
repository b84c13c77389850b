package mapviz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	valueMissing valueKind = iota
	valueRaw
	valueNumber
)

// Value is a monetary amount as supplied by a caller: a formatted string
// such as "$1.2M", a plain number, or nothing at all.
type Value struct {
	kind valueKind
	raw  string
	num  float64
}

// RawValue wraps a formatted amount string
func RawValue(s string) Value {
	return Value{kind: valueRaw, raw: s}
}

// NumberValue wraps an already numeric amount
func NumberValue(f float64) Value {
	return Value{kind: valueNumber, num: f}
}

// NoValue is the missing amount
func NoValue() Value {
	return Value{}
}

// IsMissing reports whether no amount was supplied
func (v Value) IsMissing() bool {
	return v.kind == valueMissing
}

// Number returns the numeric variant, if that is what was supplied
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == valueNumber
}

// String returns the amount as it was supplied
func (v Value) String() string {
	switch v.kind {
	case valueRaw:
		return v.raw
	case valueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON keeps the original representation
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueRaw:
		return json.Marshal(v.raw)
	case valueNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, a number or null
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = NoValue()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid value string: %w", err)
		}
		*v = RawValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("value must be a string, number or null: %w", err)
	}
	*v = NumberValue(f)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for fixture files
func (v *Value) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var x interface{}
	if err := unmarshal(&x); err != nil {
		return err
	}
	switch t := x.(type) {
	case nil:
		*v = NoValue()
	case string:
		*v = RawValue(t)
	case int:
		*v = NumberValue(float64(t))
	case int64:
		*v = NumberValue(float64(t))
	case float64:
		*v = NumberValue(t)
	default:
		return fmt.Errorf("value must be a string, number or null, got %T", x)
	}
	return nil
}

var suffixMultipliers = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// ParseValue normalizes an amount to currency units. Anything that cannot
// be read as a finite number becomes 0.
func ParseValue(v Value) float64 {
	switch v.kind {
	case valueNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0
		}
		return v.num
	case valueRaw:
		return parseAmountString(v.raw)
	default:
		return 0
	}
}

// ParseAmount is ParseValue for a plain string
func ParseAmount(s string) float64 {
	return parseAmountString(s)
}

func parseAmountString(s string) float64 {
	// Keep digits, sign, decimal point and the scale letters
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == 'K' || r == 'M' || r == 'B':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	multiplier := 1.0
	if m, ok := suffixMultipliers[cleaned[len(cleaned)-1]]; ok {
		multiplier = m
		cleaned = cleaned[:len(cleaned)-1]
	}
	cleaned = strings.TrimRight(strings.Map(func(r rune) rune {
		if r == 'K' || r == 'M' || r == 'B' {
			return -1
		}
		return r
	}, cleaned), ".")

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n * multiplier
}

// RankResult maps each distinct positive value to its rank fraction in [0,1]
type RankResult struct {
	Min    float64
	Max    float64
	ranks  map[float64]float64
	sorted []float64
}

// Fraction returns the rank fraction for value, or 0 when it was not ranked
func (r RankResult) Fraction(value float64) float64 {
	return r.ranks[value]
}

// Values returns the distinct ranked values in ascending order
func (r RankResult) Values() []float64 {
	return append([]float64(nil), r.sorted...)
}

// Len is the number of distinct ranked values
func (r RankResult) Len() int {
	return len(r.ranks)
}

// RankPositions ranks the distinct positive values so that colors follow the
// distribution of the data rather than its raw magnitude.
func RankPositions(values []float64) RankResult {
	seen := make(map[float64]struct{}, len(values))
	unique := make([]float64, 0, len(values))
	for _, v := range values {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}

	result := RankResult{ranks: make(map[float64]float64, len(unique))}
	if len(unique) == 0 {
		return result
	}

	sort.Float64s(unique)
	result.sorted = unique
	result.Min = unique[0]
	result.Max = unique[len(unique)-1]

	if len(unique) == 1 {
		result.ranks[unique[0]] = 0
		return result
	}

	denom := float64(len(unique) - 1)
	for i, v := range unique {
		result.ranks[v] = float64(i) / denom
	}
	return result
}
