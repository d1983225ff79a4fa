package formats

import (
	"github.com/tidwall/gjson"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// ParsePointCloudMetadata detects which metadata encoding data is in and
// returns it as a domain.CloudJS or domain.OctreeMetadata value.
func ParsePointCloudMetadata(data []byte) (domain.PointCloudMetadata, bool) {
	if !gjson.ValidBytes(data) {
		return nil, false
	}
	doc := gjson.ParseBytes(data)
	bb := doc.Get("boundingBox")
	if !bb.IsObject() {
		return nil, false
	}

	projection := doc.Get("projection").String()
	points := doc.Get("points").Int()

	if bb.Get("lx").Exists() {
		keys := []string{"lx", "ly", "lz", "ux", "uy", "uz"}
		var v [6]float64
		for i, k := range keys {
			r := bb.Get(k)
			if r.Type != gjson.Number {
				return nil, false
			}
			v[i] = r.Float()
		}
		return domain.CloudJS{
			LX: v[0], LY: v[1], LZ: v[2],
			UX: v[3], UY: v[4], UZ: v[5],
			Projection: projection,
			Points:     points,
		}, true
	}

	minV, ok := triple(bb.Get("min"))
	if !ok {
		return nil, false
	}
	maxV, ok := triple(bb.Get("max"))
	if !ok {
		return nil, false
	}
	return domain.OctreeMetadata{
		Min:        minV,
		Max:        maxV,
		Projection: projection,
		Points:     points,
	}, true
}

// NormalizeMetadata converts either encoding into the canonical bounds shape.
// A nil value normalizes to the zero bounds.
func NormalizeMetadata(m domain.PointCloudMetadata) domain.PointCloudBounds {
	switch v := m.(type) {
	case domain.CloudJS:
		return domain.PointCloudBounds{
			Bounds: domain.Box3D{
				Min: [3]float64{v.LX, v.LY, v.LZ},
				Max: [3]float64{v.UX, v.UY, v.UZ},
			},
			Projection: v.Projection,
			Points:     v.Points,
			Encoding:   domain.Encoding(v),
		}
	case domain.OctreeMetadata:
		return domain.PointCloudBounds{
			Bounds:     domain.Box3D{Min: v.Min, Max: v.Max},
			Projection: v.Projection,
			Points:     v.Points,
			Encoding:   domain.Encoding(v),
		}
	}
	return domain.PointCloudBounds{}
}
