package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Truncate(time.Second).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler checks the database, broker, cache, evidence store and
// projection service. The projection service is optional: when it is down
// conversions fall back to interpolation, so it degrades but does not fail
// readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		if deps.DB != nil {
			allOK = record(checks, "database", deps.DB.Ping(ctx)) && allOK
		} else {
			checks["database"] = "not configured"
			allOK = false
		}

		if deps.Evidence != nil {
			allOK = record(checks, "evidence", deps.Evidence.Ping(ctx)) && allOK
		} else {
			checks["evidence"] = "not configured"
			allOK = false
		}

		switch {
		case deps.NATS == nil:
			checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			checks["nats"] = "ok"
		default:
			checks["nats"] = "disconnected"
			allOK = false
		}

		if deps.Cache != nil {
			allOK = record(checks, "cache", deps.Cache.Ping(ctx)) && allOK
		} else {
			checks["cache"] = "not configured"
		}

		if deps.Projector != nil {
			if err := deps.Projector.Ping(ctx); err != nil {
				checks["projection"] = "degraded: " + err.Error()
			} else {
				checks["projection"] = "ok"
			}
		} else {
			checks["projection"] = "not configured"
		}

		status, code := "ready", fiber.StatusOK
		if !allOK {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}

func record(checks map[string]string, name string, err error) bool {
	if err != nil {
		checks[name] = "error: " + err.Error()
		return false
	}
	checks[name] = "ok"
	return true
}
