package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/siteloc/internal/adapters/http"
	natsadapter "github.com/samirrijal/siteloc/internal/adapters/nats"
	"github.com/samirrijal/siteloc/internal/bootstrap"
	"github.com/samirrijal/siteloc/internal/pkg/config"
	"github.com/samirrijal/siteloc/internal/pkg/logging"
	"github.com/samirrijal/siteloc/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("siteloc-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfg.ResolveSecrets(ctx); err != nil {
		slog.Warn("CRS search key unavailable, remote search disabled", "error", err)
	}

	// Telemetry
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

	// Raw NATS connection for WebSocket relay
	var natsConn *nats.Conn
	if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		natsConn = nc
		defer nc.Close()
	}

	deps := &http.Dependencies{
		Locations:  svc.Locations,
		Catalog:    svc.Catalog,
		Conversion: svc.Conversion,
		Projector:  svc.Projector,
		Evidence:   svc.Evidence,
		NATS:       natsConn,
		DB:         svc.DB,
		Cache:      svc.Cache,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Siteloc API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
