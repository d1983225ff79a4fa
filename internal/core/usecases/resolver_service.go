package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/pkg/metrics"
	"github.com/samirrijal/siteloc/internal/pkg/telemetry"
)

// ResolverService walks the evidence strategies in priority order and
// settles on one location and CRS per job.
type ResolverService struct {
	strategies []ports.Strategy
	prefetch   bool
}

// NewResolverService creates a ResolverService. With prefetch, all strategies
// start concurrently; results are still consumed in priority order.
func NewResolverService(strategies []ports.Strategy, prefetch bool) *ResolverService {
	return &ResolverService{strategies: strategies, prefetch: prefetch}
}

// DisplayName is the name shown for a job before anyone edits it.
func DisplayName(jobID string) string {
	return "Project " + jobID
}

type attemptResult struct {
	att *domain.Attempt
	err error
	// known is the declaration the attempt ran with.
	known domain.CRSDeclaration
}

// Resolve never fails: a job without usable evidence yields a placeholder
// with no location and no CRS.
func (s *ResolverService) Resolve(ctx context.Context, jobID string) domain.Resolution {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanResolve,
		trace.WithAttributes(attribute.String(telemetry.AttrJobID, jobID)))
	defer span.End()
	start := time.Now()
	defer func() { metrics.ResolveDuration.Observe(time.Since(start).Seconds()) }()

	var prefetched []chan attemptResult
	if s.prefetch {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		prefetched = s.startAll(ctx, jobID)
	}

	var (
		known     domain.CRSDeclaration
		winner    *domain.ResolvedLocation
		candidate *domain.ResolvedLocation
		logs      = make([]domain.AttemptLog, 0, len(s.strategies))
	)

	for i, st := range s.strategies {
		if winner != nil {
			logs = append(logs, domain.AttemptLog{Source: st.Source(), Outcome: domain.OutcomeSkipped})
			metrics.ResolutionAttempts.WithLabelValues(string(st.Source()), string(domain.OutcomeSkipped)).Inc()
			continue
		}

		var r attemptResult
		if prefetched != nil {
			r = <-prefetched[i]
			// A prefetched attempt ran without the CRS found since; redo it
			// when it had no declaration of its own to fall back on.
			if r.err == nil && r.att.CRS.Horizontal == "" && r.known.Horizontal != known.Horizontal {
				r = s.attempt(ctx, st, jobID, known)
			}
		} else {
			r = s.attempt(ctx, st, jobID, known)
		}

		entry := domain.AttemptLog{Source: st.Source()}
		switch {
		case r.err != nil:
			entry.Outcome, entry.Detail = classifyFailure(ctx, jobID, st.Source(), r.err)
		default:
			known = mergeDeclaration(known, r.att.CRS)
			entry.Detail = r.att.Detail
			loc := r.att.Location
			switch {
			case loc == nil:
				entry.Outcome = domain.OutcomeNoLocation
			case loc.Confidence == domain.ConfidenceLow:
				entry.Outcome = domain.OutcomeLow
				if candidate == nil {
					candidate = loc
				}
			default:
				entry.Outcome = domain.OutcomeResolved
				winner = loc
			}
		}
		logs = append(logs, entry)
		metrics.ResolutionAttempts.WithLabelValues(string(st.Source()), string(entry.Outcome)).Inc()
	}

	if winner == nil {
		winner = candidate
	}

	res := domain.Resolution{
		ID:          uuid.NewString(),
		JobID:       jobID,
		DisplayName: DisplayName(jobID),
		Location:    winner,
		Attempts:    logs,
		ResolvedAt:  time.Now().UTC(),
	}
	if !known.Empty() {
		decl := known
		res.CRS = &decl
	}

	source, confidence := "none", "none"
	if winner != nil {
		res.Confidence = winner.Confidence
		source, confidence = string(winner.Source), string(winner.Confidence)
		span.SetAttributes(
			attribute.String(telemetry.AttrSource, source),
			attribute.String(telemetry.AttrConfidence, confidence),
			attribute.String(telemetry.AttrMethod, string(winner.Method)),
		)
	} else if res.CRS == nil {
		slog.InfoContext(ctx, "no usable evidence, returning placeholder", "job_id", jobID)
	}
	metrics.Resolutions.WithLabelValues(source, confidence).Inc()

	return res
}

func (s *ResolverService) startAll(ctx context.Context, jobID string) []chan attemptResult {
	out := make([]chan attemptResult, len(s.strategies))
	for i, st := range s.strategies {
		ch := make(chan attemptResult, 1)
		out[i] = ch
		go func(st ports.Strategy) {
			ch <- s.attempt(ctx, st, jobID, domain.CRSDeclaration{})
		}(st)
	}
	return out
}

func (s *ResolverService) attempt(ctx context.Context, st ports.Strategy, jobID string, known domain.CRSDeclaration) attemptResult {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanAttempt,
		trace.WithAttributes(attribute.String(telemetry.AttrSource, string(st.Source()))))
	defer span.End()

	att, err := st.Attempt(ctx, jobID, known)
	if err == nil && att == nil {
		err = domain.ErrAbsentSource
	}
	if err != nil {
		span.RecordError(err)
	}
	return attemptResult{att: att, err: err, known: known}
}

// mergeDeclaration fills fields still empty in known from found.
func mergeDeclaration(known, found domain.CRSDeclaration) domain.CRSDeclaration {
	if known.Horizontal == "" {
		known.Horizontal = found.Horizontal
	}
	if known.Vertical == "" {
		known.Vertical = found.Vertical
	}
	if known.GeoidModel == "" {
		known.GeoidModel = found.GeoidModel
	}
	return known
}

func classifyFailure(ctx context.Context, jobID string, src domain.Source, err error) (domain.AttemptOutcome, string) {
	switch {
	case errors.Is(err, domain.ErrMalformedSource):
		slog.WarnContext(ctx, "malformed evidence", "job_id", jobID, "source", src, "error", err)
		return domain.OutcomeMalformed, err.Error()
	case errors.Is(err, domain.ErrAbsentSource):
		slog.DebugContext(ctx, "evidence absent", "job_id", jobID, "source", src)
		return domain.OutcomeAbsent, ""
	default:
		slog.WarnContext(ctx, "evidence unavailable", "job_id", jobID, "source", src, "error", err)
		return domain.OutcomeAbsent, err.Error()
	}
}
