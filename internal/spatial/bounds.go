package spatial

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Viewport is a lat/lng rectangle in degrees
type Viewport struct {
	rect s2.Rect
}

// NewViewport builds a viewport from its corners. Corners may be given in
// any order; a box crossing the antimeridian is written with minLon > maxLon.
func NewViewport(minLat, maxLat, minLon, maxLon float64) Viewport {
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	deg := float64(s1.Degree)
	return Viewport{rect: s2.Rect{
		Lat: r1.Interval{Lo: minLat * deg, Hi: maxLat * deg},
		Lng: s1.IntervalFromEndpoints(minLon*deg, maxLon*deg),
	}}
}

// Contains reports whether the point lies inside the viewport
func (v Viewport) Contains(lat, lon float64) bool {
	return v.rect.ContainsLatLng(s2.LatLngFromDegrees(lat, lon))
}

// Bounds accumulates the bounding box of a set of points
type Bounds struct {
	rect  s2.Rect
	empty bool
}

// NewBounds returns an empty accumulator
func NewBounds() *Bounds {
	return &Bounds{rect: s2.EmptyRect(), empty: true}
}

// Add extends the box to include the point
func (b *Bounds) Add(lat, lon float64) {
	b.rect = b.rect.AddPoint(s2.LatLngFromDegrees(lat, lon))
	b.empty = false
}

// IsEmpty reports whether no point has been added
func (b *Bounds) IsEmpty() bool {
	return b.empty
}

// Box returns (minLat, minLon, maxLat, maxLon) in degrees
func (b *Bounds) Box() (float64, float64, float64, float64) {
	if b.empty {
		return 0, 0, 0, 0
	}
	lo, hi := b.rect.Lo(), b.rect.Hi()
	return lo.Lat.Degrees(), lo.Lng.Degrees(), hi.Lat.Degrees(), hi.Lng.Degrees()
}
