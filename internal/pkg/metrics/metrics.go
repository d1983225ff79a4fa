package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siteloc",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "siteloc",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "siteloc",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Resolution metrics
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siteloc",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Total job resolutions by winning source and confidence",
	}, []string{"source", "confidence"})

	ResolutionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siteloc",
		Subsystem: "resolver",
		Name:      "attempts_total",
		Help:      "Total evidence source attempts by outcome",
	}, []string{"source", "outcome"})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "siteloc",
		Subsystem: "resolver",
		Name:      "resolve_duration_seconds",
		Help:      "Duration of a full resolution chain",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	Conversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siteloc",
		Subsystem: "resolver",
		Name:      "conversions_total",
		Help:      "Total coordinate conversions by method",
	}, []string{"method"})

	// Outbound services
	ProjectionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siteloc",
		Subsystem: "projection",
		Name:      "requests_total",
		Help:      "Total remote projection requests by outcome",
	}, []string{"outcome"})

	ProjectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "siteloc",
		Subsystem: "projection",
		Name:      "request_duration_seconds",
		Help:      "Duration of remote projection requests",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	CRSSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siteloc",
		Subsystem: "crs",
		Name:      "remote_searches_total",
		Help:      "Total remote CRS searches by outcome",
	}, []string{"outcome"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "siteloc",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siteloc",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siteloc",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "siteloc",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "siteloc",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "siteloc",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool gauges from a pgxpool.Stat.
// The stat is taken as an interface so this package does not import pgx.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
