package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/usecases"
)

// BatchResult is what one ResolveBatch activity reports back.
type BatchResult struct {
	ByConfidence map[domain.Confidence]int
	Unresolved   []string
	Skipped      []string
}

// Resolver is the part of usecases.LocationService the activities need.
type Resolver interface {
	ResolveBatch(ctx context.Context, jobIDs []string) []domain.Resolution
}

var _ Resolver = (*usecases.LocationService)(nil)

// BackfillActivities re-resolves stored jobs, for example after the anchor
// table or catalog changed.
type BackfillActivities struct {
	Locations Resolver
}

// ResolveBatch re-resolves and stores every job in the batch. Invalid job
// IDs are reported as skipped rather than failing the batch.
func (a *BackfillActivities) ResolveBatch(ctx context.Context, jobIDs []string) (BatchResult, error) {
	logger := activity.GetLogger(ctx)
	out := BatchResult{ByConfidence: make(map[domain.Confidence]int)}

	valid := make([]string, 0, len(jobIDs))
	for _, id := range jobIDs {
		if usecases.ValidJobID(id) {
			valid = append(valid, id)
		} else {
			out.Skipped = append(out.Skipped, id)
		}
	}

	results := a.Locations.ResolveBatch(ctx, valid)
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("batch interrupted after %d of %d jobs: %w", len(results), len(valid), err)
	}

	for _, res := range results {
		if res.Location == nil {
			out.Unresolved = append(out.Unresolved, res.JobID)
			continue
		}
		out.ByConfidence[res.Location.Confidence]++
	}

	logger.Info("batch resolved", "jobs", len(valid), "unresolved", len(out.Unresolved), "skipped", len(out.Skipped))
	return out, nil
}
