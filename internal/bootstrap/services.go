// Package bootstrap wires adapters and use cases from configuration. Every
// binary builds the same graph; only what it serves differs.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/siteloc/internal/adapters/arcgis"
	"github.com/samirrijal/siteloc/internal/adapters/blobstore"
	"github.com/samirrijal/siteloc/internal/adapters/maptiler"
	natsadapter "github.com/samirrijal/siteloc/internal/adapters/nats"
	"github.com/samirrijal/siteloc/internal/adapters/postgres"
	"github.com/samirrijal/siteloc/internal/adapters/valkey"
	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/core/usecases"
	"github.com/samirrijal/siteloc/internal/crs"
	"github.com/samirrijal/siteloc/internal/pkg/config"
	"github.com/samirrijal/siteloc/internal/pkg/geospatial"
)

// Services is the wired application graph. Optional adapters are nil when
// unavailable.
type Services struct {
	DB        *postgres.DB
	Cache     *valkey.Cache
	Publisher *natsadapter.Publisher
	Evidence  *blobstore.Store
	Projector ports.Projector

	Conversion *usecases.ConversionService
	Locations  *usecases.LocationService
	Catalog    *usecases.CatalogService

	closers []func()
}

// Build connects to storage and messaging and wires the use cases. The
// database and evidence bucket are required; the cache, the broker and the
// remote services degrade to nil with a warning.
func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{}

	db, err := postgres.New(ctx, cfg.Database.DSN(), postgres.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	s.DB = db
	s.closers = append(s.closers, db.Close)

	store, err := blobstore.Open(ctx, cfg.Evidence.BucketURL, cfg.Evidence.FetchTimeout, cfg.Evidence.MaxBytes)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("evidence bucket: %w", err)
	}
	s.Evidence = store
	s.closers = append(s.closers, func() { _ = store.Close() })

	if cache, err := valkey.New(cfg.Valkey.Addr, "siteloc:"); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		s.Cache = cache
		s.closers = append(s.closers, cache.Close)
	}

	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		s.Publisher = pub
		s.closers = append(s.closers, pub.Close)
	}

	if cfg.Projection.Enabled {
		s.Projector = arcgis.New(cfg.Projection.URL, cfg.Projection.Timeout)
	}

	var searcher ports.CRSSearcher
	if cfg.CRSSearch.Enabled() {
		searcher = maptiler.New(cfg.CRSSearch.URL, cfg.CRSSearch.APIKey, cfg.CRSSearch.Timeout)
	}

	classifier := geospatial.NewClassifier(geospatial.Thresholds{
		MinProjected: cfg.Classifier.MinProjected,
		MaxProjected: cfg.Classifier.MaxProjected,
	})
	interpolator := geospatial.NewInterpolator(domain.Bounds{
		MinLat: cfg.Interpolator.MinLat,
		MinLon: cfg.Interpolator.MinLon,
		MaxLat: cfg.Interpolator.MaxLat,
		MaxLon: cfg.Interpolator.MaxLon,
	}, cfg.Interpolator.MaxAnchorDistance)

	s.Conversion = usecases.NewConversionService(classifier, interpolator, s.Projector)
	strategies := usecases.NewDefaultStrategies(store, s.Conversion, crs.Bundled())
	resolver := usecases.NewResolverService(strategies, cfg.Resolver.Prefetch)

	var publisher ports.EventPublisher
	if s.Publisher != nil {
		publisher = s.Publisher
	}
	s.Locations = usecases.NewLocationService(resolver, postgres.NewResolutionRepo(db), publisher)

	var shared ports.CacheService
	if s.Cache != nil {
		shared = s.Cache
	}
	s.Catalog = usecases.NewCatalogService(
		usecases.NewCatalogCache(crs.Bundled()),
		searcher, shared,
		cfg.CRSSearch.RegionKeywords, cfg.CRSSearch.CacheTTL,
	)

	slog.Info("services wired",
		"evidence", cfg.Evidence.BucketURL,
		"projection", cfg.Projection.Enabled,
		"crs_search", cfg.CRSSearch.Enabled(),
		"prefetch", cfg.Resolver.Prefetch,
	)
	return s, nil
}

// Close releases connections in reverse order of creation.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
