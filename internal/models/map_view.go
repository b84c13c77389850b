package models

import "github.com/jengzang/opportunity-map-go/internal/mapviz"

// MarkerView is one entity as it should be drawn
type MarkerView struct {
	Entity    MapEntity `json:"entity"`
	Latitude  float64   `json:"display_latitude"`
	Longitude float64   `json:"display_longitude"`
	Spread    bool      `json:"spread"` // Display position offset from the entity's own
	Color     string    `json:"color"`  // rgb(r, g, b)
}

// ClusterView is a group of markers sharing one rounded location
type ClusterView struct {
	Key     string       `json:"key"`
	Center  mapviz.Point `json:"center"`
	Count   int          `json:"count"`
	Markers []MarkerView `json:"markers"`

	// Farthest spread marker from the center, 0 for a single marker
	SpreadRadiusMeters float64 `json:"spread_radius_m"`
}

// BoundingBox is a lat/lng rectangle
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// ClusterResponse represents the cluster API response
type ClusterResponse struct {
	Clusters []ClusterView     `json:"clusters"`
	Markers  int               `json:"markers"`
	Range    mapviz.ValueRange `json:"range"`
	MinValue float64           `json:"min_value"` // Linear color scale bounds
	MaxValue float64           `json:"max_value"`
	Bounds   *BoundingBox      `json:"bounds,omitempty"`
}

// LegendEntry is one distinct amount and its rank color
type LegendEntry struct {
	Amount   float64 `json:"amount"`
	Fraction float64 `json:"fraction"`
	Color    string  `json:"color"`
}

// ValueSummary is the five-number summary of amounts
type ValueSummary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// LegendResponse represents the legend API response
type LegendResponse struct {
	Kind     string        `json:"kind,omitempty"`
	Entries  []LegendEntry `json:"entries"`
	Count    int           `json:"count"`
	Summary  ValueSummary  `json:"summary"`
	Gradient string        `json:"gradient"` // CSS linear-gradient for the legend bar
}

// GradientStopView is a stop of the fixed gradient
type GradientStopView struct {
	Position float64 `json:"position"`
	Color    string  `json:"color"`
}
