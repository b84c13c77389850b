package models

import (
	"time"

	"github.com/jengzang/opportunity-map-go/internal/mapviz"
)

// Entity kinds shown on the map
const (
	KindOpportunity = "opportunity" // Privé Exchange listing
	KindVaultAsset  = "vault_asset" // Crown Vault asset
	KindEvent       = "event"
)

// ValidKind reports whether kind is one of the known entity kinds
func ValidKind(kind string) bool {
	switch kind {
	case KindOpportunity, KindVaultAsset, KindEvent:
		return true
	}
	return false
}

// MapEntity is a priced point of interest
type MapEntity struct {
	ID       string `json:"id" db:"id" yaml:"id"`
	Kind     string `json:"kind" db:"kind" yaml:"kind"`
	Name     string `json:"name" db:"name" yaml:"name"`
	Category string `json:"category,omitempty" db:"category" yaml:"category"`
	Place    string `json:"location,omitempty" db:"location" yaml:"location"` // Free-text place name

	// Nil when the entity has no known position
	Latitude  *float64 `json:"latitude" db:"latitude" yaml:"latitude"`
	Longitude *float64 `json:"longitude" db:"longitude" yaml:"longitude"`

	Value  mapviz.Value `json:"value" db:"value_raw" yaml:"value"`  // As supplied, e.g. "$1.2M"
	Amount float64      `json:"amount" db:"amount" yaml:"amount"` // Parsed once at ingest

	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

// Location implements mapviz.Locatable
func (e MapEntity) Location() (float64, float64, bool) {
	if e.Latitude == nil || e.Longitude == nil {
		return 0, 0, false
	}
	return *e.Latitude, *e.Longitude, true
}

// PriceValue implements mapviz.Priced. The stored amount is used so the
// string is not re-parsed on every request.
func (e MapEntity) PriceValue() mapviz.Value {
	if e.Amount != 0 || e.Value.IsMissing() {
		return mapviz.NumberValue(e.Amount)
	}
	return e.Value
}

// Normalize fills Amount from Value
func (e *MapEntity) Normalize() {
	e.Amount = mapviz.ParseValue(e.Value)
}
