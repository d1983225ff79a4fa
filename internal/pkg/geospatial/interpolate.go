package geospatial

import (
	"math"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// Interpolator approximates geographic positions from projected coordinates
// using the nearest anchor of a fixed table. It is accurate to a few hundred
// meters near the anchors and must not be used for survey work.
type Interpolator struct {
	// CRS is the canonical code the anchors' projected coordinates are in.
	CRS               string
	Anchors           []Anchor
	Envelope          domain.Bounds
	MaxAnchorDistance float64
}

// NewInterpolator returns an interpolator over the Southern California table.
// Zero-valued arguments select the defaults.
func NewInterpolator(envelope domain.Bounds, maxAnchorDistance float64) *Interpolator {
	if envelope == (domain.Bounds{}) {
		envelope = SouthernCaliforniaEnvelope
	}
	if maxAnchorDistance <= 0 {
		maxAnchorDistance = DefaultMaxAnchorDistance
	}
	return &Interpolator{
		CRS:               SouthernCaliforniaCRS,
		Anchors:           SouthernCaliforniaAnchors,
		Envelope:          envelope,
		MaxAnchorDistance: maxAnchorDistance,
	}
}

// Nearest returns the anchor closest to (x, y) in projected space and its
// distance. Ties go to the earlier anchor.
func (ip *Interpolator) Nearest(x, y float64) (Anchor, float64, bool) {
	if len(ip.Anchors) == 0 {
		return Anchor{}, 0, false
	}
	best, bestDist := 0, math.Inf(1)
	for i, a := range ip.Anchors {
		d := math.Hypot(x-a.ProjectedX, y-a.ProjectedY)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return ip.Anchors[best], bestDist, true
}

// Interpolate converts (x, y) relative to the nearest anchor. It fails when
// the anchor is too far away or the result leaves the envelope.
func (ip *Interpolator) Interpolate(x, y float64) (domain.GeoPoint, bool) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return domain.GeoPoint{}, false
	}
	a, dist, ok := ip.Nearest(x, y)
	if !ok || dist > ip.MaxAnchorDistance {
		return domain.GeoPoint{}, false
	}

	dx := x - a.ProjectedX
	dy := y - a.ProjectedY
	p := domain.GeoPoint{
		Lat: a.Lat + dy/FeetPerDegreeLatitude,
		Lon: a.Lon + dx/(FeetPerDegreeLongitudeAtEquator*math.Cos(toRad(a.Lat))),
	}
	if !p.Valid() || !ip.Envelope.Contains(p) {
		return domain.GeoPoint{}, false
	}
	return p, true
}

// DriftMeters reports the great-circle distance between p and the anchor
// nearest to the projected point it was interpolated from.
func (ip *Interpolator) DriftMeters(x, y float64, p domain.GeoPoint) float64 {
	a, _, ok := ip.Nearest(x, y)
	if !ok {
		return 0
	}
	return Haversine(a.Lat, a.Lon, p.Lat, p.Lon)
}
