package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/siteloc/internal/adapters/blobstore"
	"github.com/samirrijal/siteloc/internal/adapters/postgres"
	"github.com/samirrijal/siteloc/internal/adapters/valkey"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Infrastructure
// fields may be nil; readiness reports them as not configured.
type Dependencies struct {
	Locations  *usecases.LocationService
	Catalog    *usecases.CatalogService
	Conversion *usecases.ConversionService
	Projector  ports.Projector
	Evidence   *blobstore.Store
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
