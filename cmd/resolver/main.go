package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/siteloc/internal/adapters/nats"
	"github.com/samirrijal/siteloc/internal/bootstrap"
	"github.com/samirrijal/siteloc/internal/pkg/config"
	"github.com/samirrijal/siteloc/internal/pkg/logging"
	"github.com/samirrijal/siteloc/internal/pkg/telemetry"
)

// The resolver worker drains the resolve work queue filled by
// POST /v1/jobs/:job/resolve?async=true.
func main() {
	cfg, err := config.Load("siteloc-resolver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfg.ResolveSecrets(ctx); err != nil {
		slog.Warn("CRS search key unavailable", "error", err)
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	svc, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("wire services: %v", err)
	}
	defer svc.Close()
	if svc.Publisher == nil {
		log.Fatal("resolver needs NATS to publish results")
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeResolveRequests(ctx, func(ctx context.Context, jobID string) error {
		res, err := svc.Locations.Get(ctx, jobID, true)
		if err != nil {
			slog.Warn("resolve request rejected", "job_id", jobID, "error", err)
			// Invalid IDs never succeed; acknowledge them.
			return nil
		}
		slog.Info("job resolved", "job_id", jobID, "confidence", res.Confidence, "attempts", len(res.Attempts))
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("resolver worker started", "subject", natsadapter.SubjectResolveRequests)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down resolver worker", "signal", sig.String())
}
