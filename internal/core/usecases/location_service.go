package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
)

// ErrInvalidJobID is returned for job IDs that cannot be used as storage keys.
var ErrInvalidJobID = errors.New("invalid job id")

var jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidJobID reports whether id is safe to use as an evidence key prefix.
func ValidJobID(id string) bool {
	return jobIDPattern.MatchString(id) && id != "." && id != ".."
}

// LocationService owns the lifecycle of stored resolutions.
type LocationService struct {
	resolver  *ResolverService
	repo      ports.ResolutionRepository
	publisher ports.EventPublisher
}

// NewLocationService creates a LocationService. repo and publisher may be nil.
func NewLocationService(resolver *ResolverService, repo ports.ResolutionRepository, publisher ports.EventPublisher) *LocationService {
	return &LocationService{resolver: resolver, repo: repo, publisher: publisher}
}

// Get returns the stored resolution for jobID, resolving and storing a new
// one on a miss or when refresh is set. Storage and publishing failures are
// logged, never returned.
func (s *LocationService) Get(ctx context.Context, jobID string, refresh bool) (*domain.Resolution, error) {
	if !ValidJobID(jobID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidJobID, jobID)
	}

	if !refresh && s.repo != nil {
		stored, err := s.repo.Get(ctx, jobID)
		switch {
		case err == nil && stored != nil:
			return stored, nil
		case err != nil && !errors.Is(err, ports.ErrNotFound):
			slog.WarnContext(ctx, "load stored resolution failed", "job_id", jobID, "error", err)
		}
	}

	res := s.resolver.Resolve(ctx, jobID)

	if s.repo != nil {
		if err := s.repo.Save(ctx, &res); err != nil {
			slog.WarnContext(ctx, "store resolution failed", "job_id", jobID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishResolution(ctx, &res); err != nil {
			slog.WarnContext(ctx, "publish resolution failed", "job_id", jobID, "error", err)
		}
	}
	return &res, nil
}

// RequestResolve queues jobID for the resolver worker.
func (s *LocationService) RequestResolve(ctx context.Context, jobID string) error {
	if !ValidJobID(jobID) {
		return fmt.Errorf("%w: %q", ErrInvalidJobID, jobID)
	}
	if s.publisher == nil {
		return errors.New("no message broker configured")
	}
	return s.publisher.PublishResolveRequest(ctx, jobID)
}

// Recent lists the most recently stored resolutions.
func (s *LocationService) Recent(ctx context.Context, limit int) ([]domain.Resolution, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if s.repo == nil {
		return []domain.Resolution{}, nil
	}
	return s.repo.ListRecent(ctx, limit)
}

// ResolveBatch re-resolves every valid job in jobIDs. Invalid IDs are skipped.
func (s *LocationService) ResolveBatch(ctx context.Context, jobIDs []string) []domain.Resolution {
	out := make([]domain.Resolution, 0, len(jobIDs))
	for _, id := range jobIDs {
		if ctx.Err() != nil {
			break
		}
		res, err := s.Get(ctx, id, true)
		if err != nil {
			slog.WarnContext(ctx, "skipping job", "job_id", id, "error", err)
			continue
		}
		out = append(out, *res)
	}
	return out
}
