package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/core/usecases"
	"github.com/samirrijal/siteloc/internal/pkg/geospatial"
)

// --- Mock Strategy ---

type mockStrategy struct {
	src       domain.Source
	attemptFn func(ctx context.Context, jobID string, known domain.CRSDeclaration) (*domain.Attempt, error)

	mu    sync.Mutex
	calls []domain.CRSDeclaration
}

func (m *mockStrategy) Source() domain.Source { return m.src }

func (m *mockStrategy) Attempt(ctx context.Context, jobID string, known domain.CRSDeclaration) (*domain.Attempt, error) {
	m.mu.Lock()
	m.calls = append(m.calls, known)
	m.mu.Unlock()
	if m.attemptFn != nil {
		return m.attemptFn(ctx, jobID, known)
	}
	return nil, domain.ErrAbsentSource
}

func (m *mockStrategy) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// --- Mock EvidenceStore ---

type mockEvidence struct {
	files map[string]string // "<job>/<name>" -> content
}

func (m *mockEvidence) Fetch(ctx context.Context, jobID, name string) ([]byte, error) {
	if data, ok := m.files[jobID+"/"+name]; ok {
		return []byte(data), nil
	}
	return nil, domain.ErrAbsentSource
}

// --- Mock Projector ---

type mockProjector struct {
	projectFn func(ctx context.Context, pts []domain.ProjectedPoint, from, to int) ([]domain.GeoPoint, error)

	mu    sync.Mutex
	calls [][]domain.ProjectedPoint
}

func (m *mockProjector) Project(ctx context.Context, pts []domain.ProjectedPoint, from, to int) ([]domain.GeoPoint, error) {
	m.mu.Lock()
	m.calls = append(m.calls, pts)
	m.mu.Unlock()
	if m.projectFn != nil {
		return m.projectFn(ctx, pts, from, to)
	}
	return nil, errors.New("projection unavailable")
}

func (m *mockProjector) Ping(ctx context.Context) error { return nil }

// --- Mock ResolutionRepository ---

type mockRepo struct {
	getFn   func(ctx context.Context, jobID string) (*domain.Resolution, error)
	saveErr error
	saved   []domain.Resolution
}

func (m *mockRepo) Save(ctx context.Context, res *domain.Resolution) error {
	m.saved = append(m.saved, *res)
	return m.saveErr
}

func (m *mockRepo) Get(ctx context.Context, jobID string) (*domain.Resolution, error) {
	if m.getFn != nil {
		return m.getFn(ctx, jobID)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepo) ListRecent(ctx context.Context, limit int) ([]domain.Resolution, error) {
	out := make([]domain.Resolution, 0, limit)
	for i := len(m.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.saved[i])
	}
	return out, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	published []string
	requested []string
	err       error
}

func (m *mockPublisher) PublishResolution(ctx context.Context, res *domain.Resolution) error {
	m.published = append(m.published, res.JobID)
	return m.err
}

func (m *mockPublisher) PublishResolveRequest(ctx context.Context, jobID string) error {
	m.requested = append(m.requested, jobID)
	return m.err
}

// --- Mock CRSSearcher ---

type mockSearcher struct {
	searchFn func(ctx context.Context, query string) ([]domain.RemoteCRS, error)
	lookupFn func(ctx context.Context, code int) (*domain.RemoteCRS, error)
	searches int
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]domain.RemoteCRS, error) {
	m.searches++
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

func (m *mockSearcher) LookupCode(ctx context.Context, code int) (*domain.RemoteCRS, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, code)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, ports.ErrNotFound
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Helpers ---

// Downtown Los Angeles in California zone 5 feet, one of the anchors.
var downtownLA = domain.ProjectedPoint{X: 6487847.00, Y: 1841468.25}

func newConversion(p ports.Projector) *usecases.ConversionService {
	return usecases.NewConversionService(
		geospatial.NewClassifier(geospatial.DefaultThresholds),
		geospatial.NewInterpolator(domain.Bounds{}, 0),
		p,
	)
}

func loc(src domain.Source, grade domain.Confidence) *domain.ResolvedLocation {
	return &domain.ResolvedLocation{Latitude: 34.05, Longitude: -118.24, Source: src, Confidence: grade, Method: domain.MethodDirect}
}
