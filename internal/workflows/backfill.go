package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// DefaultBatchSize is used when BackfillInput.BatchSize is not positive.
const DefaultBatchSize = 50

// BackfillInput is the input for the backfill workflow.
type BackfillInput struct {
	JobIDs    []string
	BatchSize int
}

// BackfillSummary totals the outcome of a backfill.
type BackfillSummary struct {
	Total        int
	Batches      int
	ByConfidence map[domain.Confidence]int
	Unresolved   []string
	Skipped      []string
	// FailedBatches lists the first job ID of each batch that exhausted its retries.
	FailedBatches []string
}

// BackfillWorkflow splits the job IDs into batches and resolves them in
// parallel. A batch that keeps failing is recorded and does not stop the
// others.
func BackfillWorkflow(ctx workflow.Context, input BackfillInput) (BackfillSummary, error) {
	logger := workflow.GetLogger(ctx)

	size := input.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := chunk(input.JobIDs, size)
	logger.Info("Starting backfill", "jobs", len(input.JobIDs), "batches", len(batches))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	})

	futures := make([]workflow.Future, len(batches))
	for i, b := range batches {
		futures[i] = workflow.ExecuteActivity(ctx, "ResolveBatch", b)
	}

	summary := BackfillSummary{
		Total:        len(input.JobIDs),
		Batches:      len(batches),
		ByConfidence: make(map[domain.Confidence]int),
	}
	for i, f := range futures {
		var res BatchResult
		if err := f.Get(ctx, &res); err != nil {
			logger.Warn("batch failed", "batch", i, "error", err)
			summary.FailedBatches = append(summary.FailedBatches, batches[i][0])
			continue
		}
		for c, n := range res.ByConfidence {
			summary.ByConfidence[c] += n
		}
		summary.Unresolved = append(summary.Unresolved, res.Unresolved...)
		summary.Skipped = append(summary.Skipped, res.Skipped...)
	}

	logger.Info("Backfill finished", "unresolved", len(summary.Unresolved), "failedBatches", len(summary.FailedBatches))
	return summary, nil
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > 0 {
		n := size
		if n > len(ids) {
			n = len(ids)
		}
		out = append(out, ids[:n:n])
		ids = ids[n:]
	}
	return out
}
