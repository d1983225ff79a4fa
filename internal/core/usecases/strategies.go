package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/crs"
	"github.com/samirrijal/siteloc/internal/formats"
)

// Evidence file names probed per job.
const (
	OrthoBase        = "ortho"
	ManifestFile     = "sources.json"
	OctreeMetaFile   = "metadata.json"
	CloudJSFile      = "cloud.js"
	projectionSuffix = ".prj"
)

// WorldFileCornerNote marks world-file attempts whose raw point is the
// raster's upper-left pixel.
const WorldFileCornerNote = "(upper-left pixel)"

// evidence carries what every strategy needs.
type evidence struct {
	store   ports.EvidenceStore
	conv    *ConversionService
	catalog *crs.Catalog
}

// fetchFirst returns the first candidate that exists. Malformed candidates
// (oversized, for instance) stop the search.
func (e evidence) fetchFirst(ctx context.Context, jobID string, names ...string) (string, []byte, error) {
	for _, name := range names {
		data, err := e.store.Fetch(ctx, jobID, name)
		if err == nil {
			return name, data, nil
		}
		if !errors.Is(err, domain.ErrAbsentSource) {
			return name, nil, err
		}
	}
	return "", nil, fmt.Errorf("none of %v: %w", names, domain.ErrAbsentSource)
}

func (e evidence) projectionFiles(jobID string) []string {
	return []string{OrthoBase + projectionSuffix, jobID + projectionSuffix}
}

// declaration picks the strategy's own CRS over the one declared earlier.
func declaration(own, known domain.CRSDeclaration) domain.CRSDeclaration {
	if own.Horizontal != "" {
		return own
	}
	return known
}

// NewDefaultStrategies returns the chain in priority order.
func NewDefaultStrategies(store ports.EvidenceStore, conv *ConversionService, catalog *crs.Catalog) []ports.Strategy {
	e := evidence{store: store, conv: conv, catalog: catalog}
	return []ports.Strategy{
		&WorldFileStrategy{e},
		&ProjectionFileStrategy{e},
		&ManifestStrategy{e},
		&MetadataStrategy{e},
	}
}

// WorldFileStrategy reads ortho.{tfw,jgw,pgw,wld}. Its CRS comes from a
// sibling projection file when one exists.
type WorldFileStrategy struct{ evidence }

func (s *WorldFileStrategy) Source() domain.Source { return domain.SourceWorldFile }

func (s *WorldFileStrategy) Attempt(ctx context.Context, jobID string, known domain.CRSDeclaration) (*domain.Attempt, error) {
	names := make([]string, len(formats.WorldFileExtensions))
	for i, ext := range formats.WorldFileExtensions {
		names[i] = OrthoBase + ext
	}
	name, data, err := s.fetchFirst(ctx, jobID, names...)
	if err != nil {
		return nil, err
	}
	wf, ok := formats.ParseWorldFile(string(data))
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrMalformedSource)
	}

	var own domain.CRSDeclaration
	if _, prj, err := s.fetchFirst(ctx, jobID, s.projectionFiles(jobID)...); err == nil {
		if pd, ok := formats.ParseProjectionDescription(string(prj)); ok {
			own, _ = s.catalog.DeclarationFromDescription(pd)
		}
	}

	// The raster size is unknown here, so the point read is the
	// upper-left pixel rather than the image center.
	conv := s.conv.ToGeographic(ctx, wf.Center(0, 0), declaration(own, known))
	return &domain.Attempt{
		Location: conv.Location(domain.SourceWorldFile, domain.ConfidenceHigh),
		CRS:      own,
		Detail:   name + " " + WorldFileCornerNote,
	}, nil
}

// ProjectionFileStrategy reads ortho.prj or <job>.prj for a CRS and, when
// the projection origin is a plausible geographic point, a location.
type ProjectionFileStrategy struct{ evidence }

func (s *ProjectionFileStrategy) Source() domain.Source { return domain.SourceProjFile }

func (s *ProjectionFileStrategy) Attempt(ctx context.Context, jobID string, known domain.CRSDeclaration) (*domain.Attempt, error) {
	name, data, err := s.fetchFirst(ctx, jobID, s.projectionFiles(jobID)...)
	if err != nil {
		return nil, err
	}
	pd, ok := formats.ParseProjectionDescription(string(data))
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrMalformedSource)
	}

	att := &domain.Attempt{Detail: name}
	att.CRS, _ = s.catalog.DeclarationFromDescription(pd)

	if origin, ok := pd.Origin(); ok && s.conv.Classifier().Classify(origin.Lon, origin.Lat) == domain.ClassGeographic {
		conv := s.conv.ToGeographic(ctx, domain.ProjectedPoint{X: origin.Lon, Y: origin.Lat}, declaration(att.CRS, known))
		att.Location = conv.Location(domain.SourceProjFile, domain.ConfidenceMedium)
	}
	return att, nil
}

// ManifestStrategy reads the converter's sources.json and converts the
// center of its bounds.
type ManifestStrategy struct{ evidence }

func (s *ManifestStrategy) Source() domain.Source { return domain.SourceSourcesManifest }

func (s *ManifestStrategy) Attempt(ctx context.Context, jobID string, known domain.CRSDeclaration) (*domain.Attempt, error) {
	data, err := s.store.Fetch(ctx, jobID, ManifestFile)
	if err != nil {
		return nil, err
	}
	m, ok := formats.ParseTileManifest(data)
	if !ok {
		return nil, fmt.Errorf("%s: %w", ManifestFile, domain.ErrMalformedSource)
	}

	own, _ := s.catalog.DeclarationFromLabel(m.ProjectionLabel)
	conv := s.conv.ToGeographic(ctx, formats.BoxCenter(m.Bounds), declaration(own, known))
	return &domain.Attempt{
		Location: conv.Location(domain.SourceSourcesManifest, domain.ConfidenceMedium),
		CRS:      own,
		Detail:   ManifestFile,
	}, nil
}

// MetadataStrategy reads point-cloud metadata in either encoding, newest
// first, and converts the center of its bounding box.
type MetadataStrategy struct{ evidence }

func (s *MetadataStrategy) Source() domain.Source { return domain.SourcePotreeBounds }

func (s *MetadataStrategy) Attempt(ctx context.Context, jobID string, known domain.CRSDeclaration) (*domain.Attempt, error) {
	var malformed error
	for _, name := range []string{OctreeMetaFile, CloudJSFile} {
		data, err := s.store.Fetch(ctx, jobID, name)
		if errors.Is(err, domain.ErrAbsentSource) {
			continue
		}
		if err != nil {
			malformed = err
			continue
		}
		meta, ok := formats.ParsePointCloudMetadata(data)
		if !ok {
			malformed = fmt.Errorf("%s: %w", name, domain.ErrMalformedSource)
			continue
		}

		b := formats.NormalizeMetadata(meta)
		own, _ := s.catalog.DeclarationFromLabel(b.Projection)
		conv := s.conv.ToGeographic(ctx, formats.BoxCenter(b.Bounds), declaration(own, known))
		return &domain.Attempt{
			Location: conv.Location(domain.SourcePotreeBounds, domain.ConfidenceMedium),
			CRS:      own,
			Detail:   name,
		}, nil
	}
	if malformed != nil {
		return nil, malformed
	}
	return nil, fmt.Errorf("point-cloud metadata: %w", domain.ErrAbsentSource)
}
