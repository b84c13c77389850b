package mapviz

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// DefaultSpacing is the grid step between spread markers, in degrees
const DefaultSpacing = 0.04

// minCosLat keeps the longitude correction finite near the poles
const minCosLat = 0.01

// Locatable is anything with a map position. ok is false when the
// position is unknown.
type Locatable interface {
	Location() (lat, lng float64, ok bool)
}

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Placement is where one input entity is drawn. Index points into the
// slice passed to ClusterAndSpread; Spread marks a derived display
// position that differs from the entity's own coordinates.
type Placement struct {
	Index    int   `json:"index"`
	Position Point `json:"position"`
	Spread   bool  `json:"spread"`
}

// ClusterGroup is the set of entities sharing one rounded location
type ClusterGroup struct {
	Key     string      `json:"key"`
	Center  Point       `json:"center"`
	Members []Placement `json:"members"`
}

type clusterOptions struct {
	spacing float64
}

// Option configures ClusterAndSpread
type Option func(*clusterOptions)

// WithSpacing overrides the grid step in degrees
func WithSpacing(deg float64) Option {
	return func(o *clusterOptions) {
		if deg > 0 && !math.IsInf(deg, 0) {
			o.spacing = deg
		}
	}
}

// LocationKey rounds a coordinate to 6 decimals (~0.11m)
func LocationKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

// ClusterAndSpread buckets entities that share a location and lays each
// multi-entity bucket out on a grid centred on the shared point, so every
// marker stays individually clickable. match may be nil. Entities without
// a finite position are dropped. Output is deterministic: groups follow
// first appearance, members follow input order.
func ClusterAndSpread[E Locatable](entities []E, match func(E) bool, opts ...Option) []ClusterGroup {
	o := clusterOptions{spacing: DefaultSpacing}
	for _, opt := range opts {
		opt(&o)
	}

	index := make(map[string]int)
	var groups []ClusterGroup

	for i, e := range entities {
		if match != nil && !match(e) {
			continue
		}
		lat, lng, ok := e.Location()
		if !ok || !finite(lat) || !finite(lng) {
			continue
		}

		key := LocationKey(lat, lng)
		gi, seen := index[key]
		if !seen {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, ClusterGroup{Key: key, Center: Point{Lat: lat, Lng: lng}})
		}
		groups[gi].Members = append(groups[gi].Members, Placement{
			Index:    i,
			Position: Point{Lat: lat, Lng: lng},
		})
	}

	for gi := range groups {
		spreadGroup(&groups[gi], o.spacing)
	}
	return groups
}

// spreadGroup places N>1 members on a ceil(sqrt(N)) column grid. The mean
// of the occupied cells is subtracted so the group's mean position is the
// center, except where a cell lands past a pole or the antimeridian.
func spreadGroup(g *ClusterGroup, spacing float64) {
	n := len(g.Members)
	if n < 2 {
		return
	}

	gridSize := int(math.Ceil(math.Sqrt(float64(n))))

	var meanRow, meanCol float64
	for i := 0; i < n; i++ {
		meanRow += float64(i / gridSize)
		meanCol += float64(i % gridSize)
	}
	meanRow /= float64(n)
	meanCol /= float64(n)

	latRad := (s1.Angle(g.Center.Lat) * s1.Degree).Radians()
	cosLat := math.Max(math.Abs(math.Cos(latRad)), minCosLat)

	for i := range g.Members {
		row := float64(i / gridSize)
		col := float64(i % gridSize)

		latOffset := (meanRow - row) * spacing
		lngOffset := (col - meanCol) * spacing / cosLat

		g.Members[i].Position = onGlobe(Point{
			Lat: g.Center.Lat + latOffset,
			Lng: g.Center.Lng + lngOffset,
		})
		g.Members[i].Spread = true
	}
}

// onGlobe clamps latitude to the poles and wraps longitude across the
// antimeridian. Points already in range are returned untouched.
func onGlobe(p Point) Point {
	if p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 {
		return p
	}
	lat := math.Max(-90, math.Min(90, p.Lat))
	lng := p.Lng
	if lng < -180 || lng > 180 {
		lng = s2.LatLngFromDegrees(0, lng).Normalized().Lng.Degrees()
		lng = math.Max(-180, math.Min(180, lng))
	}
	return Point{Lat: lat, Lng: lng}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
