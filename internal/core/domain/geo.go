package domain

import "math"

// unsetTolerance is the distance from 0,0 under which a point counts as unset.
const unsetTolerance = 0.01

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsUnset reports whether both components are within 0.01 of zero.
// Such points are placeholders, never the Gulf of Guinea.
func (p GeoPoint) IsUnset() bool {
	return math.Abs(p.Lat) <= unsetTolerance && math.Abs(p.Lon) <= unsetTolerance
}

// Valid reports whether the point is finite, inside the geographic range,
// and not the unset placeholder.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	if math.Abs(p.Lat) > 90 || math.Abs(p.Lon) > 180 {
		return false
	}
	return !p.IsUnset()
}

// ProjectedPoint is a coordinate pair in the units of some (possibly unknown)
// projected coordinate system.
type ProjectedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether both components are finite numbers.
func (p ProjectedPoint) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the box (edges included).
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// CoordinateClass labels a raw coordinate pair.
type CoordinateClass string

const (
	ClassGeographic      CoordinateClass = "geographic"
	ClassProjectedLikely CoordinateClass = "projected_likely"
	ClassIndeterminate   CoordinateClass = "indeterminate"
)
