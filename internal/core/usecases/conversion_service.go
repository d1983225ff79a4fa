package usecases

import (
	"context"
	"log/slog"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/crs"
	"github.com/samirrijal/siteloc/internal/pkg/geospatial"
	"github.com/samirrijal/siteloc/internal/pkg/metrics"
)

// WGS84 is the code every conversion targets.
const WGS84 = 4326

// Conversion is the geographic reading of one raw point.
type Conversion struct {
	Point  domain.GeoPoint
	Method domain.Method
	Class  domain.CoordinateClass
	Raw    domain.ProjectedPoint
	// OK is false for non-finite input and for readings that land on the
	// unset 0,0 placeholder.
	OK bool
}

// Location turns the conversion into a resolved location from src. A
// passthrough reading is always graded low.
func (c Conversion) Location(src domain.Source, grade domain.Confidence) *domain.ResolvedLocation {
	if !c.OK {
		return nil
	}
	if c.Method == domain.MethodPassthrough {
		grade = domain.ConfidenceLow
	}
	loc := &domain.ResolvedLocation{
		Latitude:   c.Point.Lat,
		Longitude:  c.Point.Lon,
		Source:     src,
		Confidence: grade,
		Method:     c.Method,
	}
	if c.Method != domain.MethodDirect {
		raw := c.Raw
		loc.Raw = &raw
	}
	return loc
}

// ConversionService turns raw coordinate pairs into geographic points:
// remote projection first, anchor interpolation second, passthrough last.
type ConversionService struct {
	classifier   *geospatial.Classifier
	interpolator *geospatial.Interpolator
	projector    ports.Projector
}

// NewConversionService creates a ConversionService. projector may be nil.
func NewConversionService(classifier *geospatial.Classifier, interpolator *geospatial.Interpolator, projector ports.Projector) *ConversionService {
	if classifier == nil {
		classifier = geospatial.NewClassifier(geospatial.DefaultThresholds)
	}
	if interpolator == nil {
		interpolator = geospatial.NewInterpolator(domain.Bounds{}, 0)
	}
	return &ConversionService{classifier: classifier, interpolator: interpolator, projector: projector}
}

// Classifier returns the classifier shared by every consumer of raw pairs.
func (s *ConversionService) Classifier() *geospatial.Classifier { return s.classifier }

// ToGeographic converts pt, whose x is easting or longitude. decl names the
// source CRS when known; remote projection is only tried with a valid code.
func (s *ConversionService) ToGeographic(ctx context.Context, pt domain.ProjectedPoint, decl domain.CRSDeclaration) Conversion {
	conv := Conversion{Raw: pt, Class: s.classifier.Classify(pt.X, pt.Y)}
	if !pt.Finite() {
		return conv
	}
	conv.OK = true

	switch conv.Class {
	case domain.ClassGeographic:
		conv.Point = domain.GeoPoint{Lat: pt.Y, Lon: pt.X}
		conv.Method = domain.MethodDirect
	case domain.ClassProjectedLikely:
		s.convertProjected(ctx, &conv, decl)
	default:
		conv.Point = domain.GeoPoint{Lat: pt.Y, Lon: pt.X}
		conv.Method = domain.MethodPassthrough
	}
	if conv.Point.IsUnset() {
		conv.OK = false
		return conv
	}

	metrics.Conversions.WithLabelValues(string(conv.Method)).Inc()
	return conv
}

func (s *ConversionService) convertProjected(ctx context.Context, conv *Conversion, decl domain.CRSDeclaration) {
	if code, ok := crs.NormalizeCode(decl.Horizontal); ok && s.projector != nil {
		out, err := s.projector.Project(ctx, []domain.ProjectedPoint{conv.Raw}, code, WGS84)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "remote projection failed, falling back to interpolation",
				"code", code, "error", err)
		case len(out) == 1 && out[0].Valid():
			conv.Point = out[0]
			conv.Method = domain.MethodRemote
			return
		}
	}

	if !s.anchorsApply(decl) {
		slog.DebugContext(ctx, "declared CRS differs from the anchor table, skipping interpolation",
			"declared", decl.Horizontal, "anchors", s.interpolator.CRS)
	} else if p, ok := s.interpolator.Interpolate(conv.Raw.X, conv.Raw.Y); ok {
		conv.Point = p
		conv.Method = domain.MethodInterpolated
		slog.DebugContext(ctx, "interpolated from nearest anchor",
			"drift_m", s.interpolator.DriftMeters(conv.Raw.X, conv.Raw.Y, p))
		return
	}

	conv.Point = domain.GeoPoint{Lat: conv.Raw.Y, Lon: conv.Raw.X}
	conv.Method = domain.MethodPassthrough
}

// anchorsApply reports whether the anchor table may read a point declared
// in decl. An undeclared point is assumed to share the table's CRS.
func (s *ConversionService) anchorsApply(decl domain.CRSDeclaration) bool {
	if decl.Horizontal == "" || s.interpolator.CRS == "" {
		return true
	}
	code, ok := crs.Canonical(decl.Horizontal)
	return ok && code == s.interpolator.CRS
}

// ConvertBatch converts points declared in fromCode (0 when unknown). The
// projected points go to the remote service in one request; every point it
// could not convert falls back individually. The result is parallel to
// points.
func (s *ConversionService) ConvertBatch(ctx context.Context, points []domain.ProjectedPoint, fromCode int) []Conversion {
	decl := domain.CRSDeclaration{}
	if fromCode > 0 {
		decl.Horizontal = crs.FormatCode(crs.DefaultAuthority, fromCode)
	}

	out := make([]Conversion, len(points))
	done := make([]bool, len(points))

	if fromCode > 0 && s.projector != nil {
		var idx []int
		var batch []domain.ProjectedPoint
		for i, p := range points {
			if p.Finite() && s.classifier.Classify(p.X, p.Y) == domain.ClassProjectedLikely {
				idx = append(idx, i)
				batch = append(batch, p)
			}
		}
		if len(batch) > 0 {
			res, err := s.projector.Project(ctx, batch, fromCode, WGS84)
			switch {
			case err != nil:
				slog.WarnContext(ctx, "batch projection failed", "code", fromCode, "points", len(batch), "error", err)
			case len(res) != len(batch):
				slog.WarnContext(ctx, "batch projection misaligned, ignoring result",
					"code", fromCode, "sent", len(batch), "received", len(res))
			default:
				for j, i := range idx {
					if !res[j].Valid() {
						continue
					}
					out[i] = Conversion{
						Point:  res[j],
						Method: domain.MethodRemote,
						Class:  domain.ClassProjectedLikely,
						Raw:    points[i],
						OK:     true,
					}
					done[i] = true
					metrics.Conversions.WithLabelValues(string(domain.MethodRemote)).Inc()
				}
			}
		}
	}

	// Per-point fallback must not retry the remote service.
	local := &ConversionService{classifier: s.classifier, interpolator: s.interpolator}
	for i, p := range points {
		if !done[i] {
			out[i] = local.ToGeographic(ctx, p, decl)
		}
	}
	return out
}
