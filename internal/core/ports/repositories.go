package ports

import (
	"context"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// ResolutionRepository persists the latest resolution per job.
type ResolutionRepository interface {
	// Save upserts the resolution; a newer attempt replaces the stored one.
	Save(ctx context.Context, res *domain.Resolution) error
	// Get returns the stored resolution or ErrNotFound.
	Get(ctx context.Context, jobID string) (*domain.Resolution, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Resolution, error)
}

// EvidenceStore reads per-job evidence files (world files, .prj, manifests).
type EvidenceStore interface {
	// Fetch returns the named file for a job. A missing file yields an error
	// wrapping domain.ErrAbsentSource.
	Fetch(ctx context.Context, jobID, name string) ([]byte, error)
}
