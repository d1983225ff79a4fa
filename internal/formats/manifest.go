package formats

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// ParseTileManifest reads a converter's sources manifest:
//
//	{ "bounds": {"min": [x,y,z], "max": [x,y,z]}, "projection": "...",
//	  "sources": [{"name": "...", "points": 123}, ...] }
//
// Bounds are required; projection and sources are optional.
func ParseTileManifest(data []byte) (domain.TileManifest, bool) {
	if !gjson.ValidBytes(data) {
		return domain.TileManifest{}, false
	}
	doc := gjson.ParseBytes(data)

	minV, ok := triple(doc.Get("bounds.min"))
	if !ok {
		return domain.TileManifest{}, false
	}
	maxV, ok := triple(doc.Get("bounds.max"))
	if !ok {
		return domain.TileManifest{}, false
	}

	var total int64
	for _, p := range doc.Get("sources.#.points").Array() {
		total += p.Int()
	}

	return domain.TileManifest{
		Bounds:          domain.Box3D{Min: minV, Max: maxV},
		ProjectionLabel: doc.Get("projection").String(),
		TotalPoints:     total,
	}, true
}

// BoxCenter returns the planimetric center of a box.
func BoxCenter(b domain.Box3D) domain.ProjectedPoint {
	bound := orb.Bound{
		Min: orb.Point{b.Min[0], b.Min[1]},
		Max: orb.Point{b.Max[0], b.Max[1]},
	}
	c := bound.Center()
	return domain.ProjectedPoint{X: c.X(), Y: c.Y()}
}

// triple reads a JSON array of exactly three numbers.
func triple(r gjson.Result) ([3]float64, bool) {
	var out [3]float64
	if !r.IsArray() {
		return out, false
	}
	items := r.Array()
	if len(items) != 3 {
		return out, false
	}
	for i, it := range items {
		if it.Type != gjson.Number {
			return out, false
		}
		out[i] = it.Float()
	}
	return out, true
}
