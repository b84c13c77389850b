package mapviz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	name     string
	lat, lng float64
	hasPos   bool
	value    Value
}

func (e testEntity) Location() (float64, float64, bool) { return e.lat, e.lng, e.hasPos }
func (e testEntity) PriceValue() Value                  { return e.value }

func at(name string, lat, lng float64, value Value) testEntity {
	return testEntity{name: name, lat: lat, lng: lng, hasPos: true, value: value}
}

func sameSpot(n int, lat, lng float64) []testEntity {
	out := make([]testEntity, n)
	for i := range out {
		out[i] = at("e", lat, lng, NumberValue(float64(i+1)*1000))
	}
	return out
}

func TestClusterAndSpread_SingleEntityPassthrough(t *testing.T) {
	entities := []testEntity{at("a", 51.5, -0.12, NoValue())}

	groups := ClusterAndSpread(entities, nil)

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Members, 1)
	m := groups[0].Members[0]
	assert.Equal(t, 0, m.Index)
	assert.False(t, m.Spread)
	assert.Equal(t, Point{Lat: 51.5, Lng: -0.12}, m.Position)
}

func TestClusterAndSpread_GroupsByRoundedLocation(t *testing.T) {
	entities := []testEntity{
		at("a", 40.7128, -74.0060, NoValue()),
		at("b", 40.71280004, -74.00600004, NoValue()), // same point after rounding
		at("c", 34.0522, -118.2437, NoValue()),
		at("d", 40.7128, -74.0060, NoValue()),
	}

	groups := ClusterAndSpread(entities, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, "40.712800,-74.006000", groups[0].Key)
	assert.Len(t, groups[0].Members, 3)
	assert.Equal(t, []int{0, 1, 3}, memberIndexes(groups[0]))
	assert.Equal(t, "34.052200,-118.243700", groups[1].Key)
	assert.Len(t, groups[1].Members, 1)
}

func TestClusterAndSpread_DropsFilteredAndUnlocated(t *testing.T) {
	entities := []testEntity{
		at("keep", 10, 10, NumberValue(600_000)),
		at("cheap", 10, 10, NumberValue(10)),
		{name: "nopos", value: NumberValue(700_000)},
		at("nan", math.NaN(), 10, NumberValue(700_000)),
		at("inf", 10, math.Inf(-1), NumberValue(700_000)),
	}

	match := MakeMatcher[testEntity](ValueRange{Min: 500_000, Max: OpenEndedMax})
	groups := ClusterAndSpread(entities, match)

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Members, 1)
	assert.Equal(t, 0, groups[0].Members[0].Index)
	assert.False(t, groups[0].Members[0].Spread)
}

func TestClusterAndSpread_Centered(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 7, 10, 16} {
		for _, lat := range []float64{0, 45, -60, 89.9} {
			entities := sameSpot(n, lat, 12.5)
			groups := ClusterAndSpread(entities, nil)
			require.Len(t, groups, 1)

			var sumLat, sumLng float64
			for _, m := range groups[0].Members {
				assert.True(t, m.Spread)
				sumLat += m.Position.Lat
				sumLng += m.Position.Lng
			}
			assert.InDelta(t, lat, sumLat/float64(n), 1e-9, "n=%d lat=%v", n, lat)
			assert.InDelta(t, 12.5, sumLng/float64(n), 1e-9, "n=%d lat=%v", n, lat)
		}
	}
}

func TestClusterAndSpread_GridLayout(t *testing.T) {
	groups := ClusterAndSpread(sameSpot(4, 0, 0), nil)
	require.Len(t, groups, 1)

	// 2x2 grid at the equator: offsets of half a step in each direction
	want := []Point{
		{Lat: 0.02, Lng: -0.02},
		{Lat: 0.02, Lng: 0.02},
		{Lat: -0.02, Lng: -0.02},
		{Lat: -0.02, Lng: 0.02},
	}
	for i, m := range groups[0].Members {
		assert.InDelta(t, want[i].Lat, m.Position.Lat, 1e-12)
		assert.InDelta(t, want[i].Lng, m.Position.Lng, 1e-12)
	}
}

func TestClusterAndSpread_LongitudeCorrection(t *testing.T) {
	equator := ClusterAndSpread(sameSpot(2, 0, 0), nil)[0]
	north := ClusterAndSpread(sameSpot(2, 60, 0), nil)[0]

	eqSpan := equator.Members[1].Position.Lng - equator.Members[0].Position.Lng
	northSpan := north.Members[1].Position.Lng - north.Members[0].Position.Lng

	assert.InDelta(t, DefaultSpacing, eqSpan, 1e-12)
	assert.InDelta(t, DefaultSpacing*2, northSpan, 1e-9) // cos(60°) = 0.5
}

func TestClusterAndSpread_PolesStayFinite(t *testing.T) {
	groups := ClusterAndSpread(sameSpot(3, 90, 0), nil)
	for _, m := range groups[0].Members {
		assert.False(t, math.IsInf(m.Position.Lng, 0))
		assert.False(t, math.IsNaN(m.Position.Lng))
	}
}

func TestClusterAndSpread_StaysOnGlobe(t *testing.T) {
	groups := ClusterAndSpread(sameSpot(9, 89.99, 179.99), nil)
	require.Len(t, groups, 1)

	var wrapped bool
	for _, m := range groups[0].Members {
		assert.True(t, m.Spread)
		assert.GreaterOrEqual(t, m.Position.Lat, -90.0)
		assert.LessOrEqual(t, m.Position.Lat, 90.0)
		assert.GreaterOrEqual(t, m.Position.Lng, -180.0)
		assert.LessOrEqual(t, m.Position.Lng, 180.0)
		if m.Position.Lng < 0 {
			wrapped = true
		}
	}
	// top row clamps to the pole, right column wraps to the western side
	assert.InDelta(t, 90.0, groups[0].Members[0].Position.Lat, 1e-9)
	assert.True(t, wrapped)
	assert.InDelta(t, -176.01, groups[0].Members[2].Position.Lng, 1e-9)
}

func TestOnGlobe_InRangeUntouched(t *testing.T) {
	p := Point{Lat: 12.345678901, Lng: -179.9}
	assert.Equal(t, p, onGlobe(p))

	assert.InDelta(t, -90.0, onGlobe(Point{Lat: -91, Lng: 0}).Lat, 1e-12)
	assert.InDelta(t, 170.0, onGlobe(Point{Lat: 0, Lng: -190}).Lng, 1e-9)
}

func TestClusterAndSpread_Deterministic(t *testing.T) {
	entities := append(sameSpot(9, -33.8688, 151.2093), sameSpot(3, 1.3521, 103.8198)...)

	first := ClusterAndSpread(entities, nil)
	second := ClusterAndSpread(entities, nil)

	assert.Equal(t, first, second)
}

func TestClusterAndSpread_WithSpacing(t *testing.T) {
	groups := ClusterAndSpread(sameSpot(2, 0, 0), nil, WithSpacing(1))
	m := groups[0].Members
	assert.InDelta(t, 1.0, m[1].Position.Lng-m[0].Position.Lng, 1e-12)

	// non-positive spacing is ignored
	groups = ClusterAndSpread(sameSpot(2, 0, 0), nil, WithSpacing(-1))
	m = groups[0].Members
	assert.InDelta(t, DefaultSpacing, m[1].Position.Lng-m[0].Position.Lng, 1e-12)
}

func TestClusterAndSpread_DoesNotMutateInput(t *testing.T) {
	entities := sameSpot(5, 10, 20)
	before := append([]testEntity(nil), entities...)

	ClusterAndSpread(entities, nil)

	assert.Equal(t, before, entities)
}

func TestClusterAndSpread_Empty(t *testing.T) {
	assert.Empty(t, ClusterAndSpread[testEntity](nil, nil))
}

func memberIndexes(g ClusterGroup) []int {
	out := make([]int, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m.Index)
	}
	return out
}
