package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// London to Paris is roughly 344 km
	d := HaversineDistance(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 343_500, d, 2_000)
	assert.Zero(t, HaversineDistance(10, 10, 10, 10))
}

func TestViewport(t *testing.T) {
	v := NewViewport(24, 26, 54, 56)
	assert.True(t, v.Contains(25.2, 55.3))
	assert.False(t, v.Contains(51.5, -0.1))

	// corners in either latitude order
	assert.True(t, NewViewport(26, 24, 54, 56).Contains(25, 55))
}

func TestViewport_Antimeridian(t *testing.T) {
	v := NewViewport(-30, 30, 170, -170)
	assert.True(t, v.Contains(0, 175))
	assert.True(t, v.Contains(0, -175))
	assert.False(t, v.Contains(0, 0))

	world := NewViewport(-80, 80, -170, 170)
	assert.True(t, world.Contains(0, 0))
	assert.False(t, world.Contains(0, 175))
}

func TestBounds(t *testing.T) {
	b := NewBounds()
	assert.True(t, b.IsEmpty())
	minLat, minLon, maxLat, maxLon := b.Box()
	assert.Zero(t, minLat+minLon+maxLat+maxLon)

	b.Add(25.2, 55.3)
	b.Add(51.5, -0.1)
	b.Add(40.7, 10)

	minLat, minLon, maxLat, maxLon = b.Box()
	assert.False(t, b.IsEmpty())
	assert.InDelta(t, 25.2, minLat, 1e-9)
	assert.InDelta(t, -0.1, minLon, 1e-9)
	assert.InDelta(t, 51.5, maxLat, 1e-9)
	assert.InDelta(t, 55.3, maxLon, 1e-9)
}
