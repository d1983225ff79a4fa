package telemetry

// Span names.
const (
	SpanResolve   = "resolver.Resolve"
	SpanAttempt   = "resolver.attempt"
	SpanProject   = "projection.Project"
	SpanCRSSearch = "crs.Search"
)

// Span attribute keys.
const (
	AttrJobID      = "siteloc.job_id"
	AttrSource     = "siteloc.source"
	AttrOutcome    = "siteloc.outcome"
	AttrConfidence = "siteloc.confidence"
	AttrMethod     = "siteloc.method"
	AttrPoints     = "siteloc.points"
)

// TracerName identifies this service's instrumentation scope.
const TracerName = "github.com/samirrijal/siteloc"
