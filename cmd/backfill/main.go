package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/siteloc/internal/bootstrap"
	"github.com/samirrijal/siteloc/internal/pkg/config"
	"github.com/samirrijal/siteloc/internal/pkg/logging"
	"github.com/samirrijal/siteloc/internal/workflows"
)

const usage = `usage:
  backfill worker                 run the Temporal worker
  backfill start <job-id>...      re-resolve the given jobs`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load("siteloc-backfill")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	switch os.Args[1] {
	case "worker":
		runWorker(c, cfg)
	case "start":
		if len(os.Args) < 3 {
			log.Fatal(usage)
		}
		startBackfill(c, cfg, os.Args[2:])
	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}
}

func runWorker(c client.Client, cfg *config.Config) {
	ctx := context.Background()
	if err := cfg.ResolveSecrets(ctx); err != nil {
		slog.Warn("CRS search key unavailable", "error", err)
	}

	svc, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("wire services: %v", err)
	}
	defer svc.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.BackfillWorkflow)
	w.RegisterActivity(&workflows.BackfillActivities{Locations: svc.Locations})

	slog.Info("backfill worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func startBackfill(c client.Client, cfg *config.Config, jobIDs []string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "backfill-" + uuid.NewString(),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.BackfillWorkflow, workflows.BackfillInput{JobIDs: jobIDs})
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("backfill started", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "jobs", len(jobIDs))

	var summary workflows.BackfillSummary
	if err := run.Get(ctx, &summary); err != nil {
		log.Fatalf("backfill failed: %v", err)
	}

	fmt.Printf("jobs=%d batches=%d failed_batches=%d unresolved=%d skipped=%d\n",
		summary.Total, summary.Batches, len(summary.FailedBatches), len(summary.Unresolved), len(summary.Skipped))
	for grade, n := range summary.ByConfidence {
		fmt.Printf("  %-6s %d\n", grade, n)
	}
}
