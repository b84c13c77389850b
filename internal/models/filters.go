package models

import "github.com/jengzang/opportunity-map-go/internal/mapviz"

// ClusterFilter represents query parameters for the cluster endpoint
type ClusterFilter struct {
	Kind     string   `form:"kind"`
	MinValue *float64 `form:"minValue"` // Currency units, default 0
	MaxValue *float64 `form:"maxValue"` // Default and sentinel: 2,000,000 (open-ended)
	MinLat   *float64 `form:"minLat"` // Viewport edges: all four or none
	MaxLat   *float64 `form:"maxLat"`
	MinLon   *float64 `form:"minLon"` // minLon > maxLon crosses the antimeridian
	MaxLon   *float64 `form:"maxLon"`
	Limit    int      `form:"limit"` // Max matching entities considered
}

// Range resolves the value window with defaults applied
func (f ClusterFilter) Range() mapviz.ValueRange {
	r := mapviz.DefaultRange()
	if f.MinValue != nil {
		r.Min = *f.MinValue
	}
	if f.MaxValue != nil {
		r.Max = *f.MaxValue
	}
	return r
}

// HasBounds reports whether any viewport edge was supplied
func (f ClusterFilter) HasBounds() bool {
	return f.MinLat != nil || f.MaxLat != nil || f.MinLon != nil || f.MaxLon != nil
}

// Bounds returns the viewport edges. ok is false unless all four are set.
func (f ClusterFilter) Bounds() (minLat, maxLat, minLon, maxLon float64, ok bool) {
	if f.MinLat == nil || f.MaxLat == nil || f.MinLon == nil || f.MaxLon == nil {
		return 0, 0, 0, 0, false
	}
	return *f.MinLat, *f.MaxLat, *f.MinLon, *f.MaxLon, true
}

// EntityFilter represents filter parameters for listing stored entities
type EntityFilter struct {
	Kind      string  `form:"kind"`
	MinAmount float64 `form:"minAmount"`
	MaxAmount float64 `form:"maxAmount"` // 0 means no upper bound
	MinLat    float64 `form:"minLat"`
	MaxLat    float64 `form:"maxLat"`
	MinLon    float64 `form:"minLon"`
	MaxLon    float64 `form:"maxLon"`
	Located   bool    `form:"-"` // Only entities with coordinates
	Page      int     `form:"page"`
	PageSize  int     `form:"pageSize"`
}

// ColorQuery represents query parameters for a single color lookup
type ColorQuery struct {
	Value string  `form:"value" binding:"required"`
	Min   float64 `form:"min"`
	Max   float64 `form:"max"`
}
