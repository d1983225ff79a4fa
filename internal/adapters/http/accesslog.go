package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs one structured line per request. Health probes
// and metrics scrapes are logged at debug.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method, path := c.Method(), c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			rid = c.Get(fiber.HeaderXRequestID)
		}

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.String("route", c.Route().Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if rid != "" {
			attrs = append(attrs, slog.String("request_id", rid))
		}
		if job := c.Params("job"); job != "" {
			attrs = append(attrs, slog.String("job_id", job))
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case path == "/v1/health" || path == "/v1/ready" || path == "/metrics":
			level = slog.LevelDebug
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		slog.LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}
