package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control on GET responses whose
// handler did not set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		path := c.Path()
		var ttl string
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"
		case path == "/metrics":
			ttl = "no-cache"
		case strings.HasPrefix(path, "/v1/jobs/") || path == "/v1/resolutions":
			// A resolution can be replaced at any time by a refresh.
			ttl = "no-cache"
		case strings.HasPrefix(path, "/v1/crs/search"):
			ttl = "public, max-age=300"
		case strings.HasPrefix(path, "/v1/crs"):
			ttl = "public, max-age=3600"
		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
