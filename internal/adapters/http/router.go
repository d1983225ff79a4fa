package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/siteloc/internal/pkg/metrics"
)

// requestTimeout bounds one resolution chain including remote projection.
const requestTimeout = 30 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/jobs/:job/location", timeout.NewWithContext(GetLocationHandler(deps), requestTimeout))
	v1.Post("/jobs/:job/resolve", timeout.NewWithContext(ResolveJobHandler(deps), requestTimeout))
	v1.Get("/resolutions", timeout.NewWithContext(RecentResolutionsHandler(deps), requestTimeout))
	v1.Post("/projections", timeout.NewWithContext(ProjectHandler(deps), requestTimeout))

	v1.Get("/crs", ListCRSHandler(deps))
	v1.Get("/crs/search", timeout.NewWithContext(SearchCRSHandler(deps), 15*time.Second))
	v1.Post("/crs/validate", timeout.NewWithContext(ValidateCRSHandler(deps), 15*time.Second))
	v1.Post("/crs/refresh", RefreshCRSHandler(deps))
	v1.Get("/crs/:code", timeout.NewWithContext(GetCRSHandler(deps), 15*time.Second))

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), requestTimeout))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
