package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// ErrNotFound is returned by repositories and caches for missing keys.
var ErrNotFound = errors.New("not found")

// Strategy is one evidence source in the resolution chain.
type Strategy interface {
	Source() domain.Source
	// Attempt tries to derive a location and/or CRS for the job. known
	// carries the CRS declared by higher-priority sources, if any.
	Attempt(ctx context.Context, jobID string, known domain.CRSDeclaration) (*domain.Attempt, error)
}

// Projector converts projected coordinates through an external service.
type Projector interface {
	// Project returns the converted points parallel to the input. Slots
	// that could not be converted hold a point that is not Valid.
	Project(ctx context.Context, points []domain.ProjectedPoint, fromCode, toCode int) ([]domain.GeoPoint, error)
	Ping(ctx context.Context) error
}

// CRSSearcher queries a remote coordinate-system registry.
type CRSSearcher interface {
	Search(ctx context.Context, query string) ([]domain.RemoteCRS, error)
	// LookupCode returns nil, nil when the registry has no such code.
	LookupCode(ctx context.Context, code int) (*domain.RemoteCRS, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishResolution(ctx context.Context, res *domain.Resolution) error
	PublishResolveRequest(ctx context.Context, jobID string) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeResolveRequests(ctx context.Context, handler func(ctx context.Context, jobID string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
