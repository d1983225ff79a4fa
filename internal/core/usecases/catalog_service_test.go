package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/core/usecases"
	"github.com/samirrijal/siteloc/internal/crs"
)

func newCatalog(s *mockSearcher, shared *mockCache) *usecases.CatalogService {
	var searcher ports.CRSSearcher
	if s != nil {
		searcher = s
	}
	var cache ports.CacheService
	if shared != nil {
		cache = shared
	}
	return usecases.NewCatalogService(usecases.NewCatalogCache(crs.Bundled()), searcher, cache, []string{"California", "usa"}, 60)
}

func TestCatalogSearch_EmptyQueryListsHorizontalRecommendedFirst(t *testing.T) {
	entries := newCatalog(nil, nil).Search(context.Background(), "  ")

	if len(entries) != len(crs.Bundled().Horizontal()) {
		t.Fatalf("expected every horizontal system, got %d", len(entries))
	}
	if entries[0].Code != "EPSG:2228" {
		t.Errorf("expected zone 4 first by name among recommended, got %s", entries[0].Code)
	}
	seenPlain := false
	for _, e := range entries {
		if e.Type != domain.CRSHorizontal {
			t.Errorf("%s is not horizontal", e.Code)
		}
		if !e.Recommended {
			seenPlain = true
		} else if seenPlain {
			t.Errorf("recommended %s listed after a non-recommended entry", e.Code)
		}
	}
}

func TestCatalogSearch_StaticMatchSkipsRemote(t *testing.T) {
	s := &mockSearcher{}
	entries := newCatalog(s, nil).Search(context.Background(), "NAVD88")

	// Both NAVD88 datums plus GEOID18, whose description names NAVD88.
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries mentioning NAVD88, got %d", len(entries))
	}
	if s.searches != 0 {
		t.Error("remote registry should not be asked when the static catalog matches")
	}
}

func remoteHits(ctx context.Context, query string) ([]domain.RemoteCRS, error) {
	return []domain.RemoteCRS{
		{Authority: "EPSG", Code: 3310, Name: "NAD83 / California Albers", Kind: "CRS-PROJCRS", Area: "USA - California", Unit: "metre"},
		{Authority: "EPSG", Code: 8228, Name: "NAVD88 height (ft)", Kind: "CRS-VERTCRS", Area: "USA - CONUS"},
		{Authority: "EPSG", Code: 3309, Name: "NAD27 / California Albers", Kind: "CRS-PROJCRS", Area: "USA - California", Deprecated: true},
		{Authority: "EPSG", Code: 27700, Name: "OSGB36 / British National Grid", Kind: "CRS-PROJCRS", Area: "UK"},
	}, nil
}

func TestCatalogSearch_RemoteFallbackFiltersAndCaches(t *testing.T) {
	s := &mockSearcher{searchFn: remoteHits}
	shared := newMockCache()
	svc := newCatalog(s, shared)

	entries := svc.Search(context.Background(), "albers")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after filtering, got %d: %+v", len(entries), entries)
	}
	byCode := map[string]domain.CRSEntry{}
	for _, e := range entries {
		byCode[e.Code] = e
	}
	if byCode["EPSG:3310"].Type != domain.CRSHorizontal {
		t.Errorf("expected EPSG:3310 horizontal, got %+v", byCode["EPSG:3310"])
	}
	if byCode["EPSG:8228"].Type != domain.CRSVertical {
		t.Errorf("expected EPSG:8228 vertical, got %+v", byCode["EPSG:8228"])
	}
	if !svc.Cache().Populated() || svc.Cache().Len() != 2 {
		t.Errorf("expected 2 remote entries cached, got %d", svc.Cache().Len())
	}
	if _, ok := shared.data["crs:search:albers"]; !ok {
		t.Error("expected the result in the shared cache")
	}

	// A second instance reads the shared cache instead of the registry.
	other := newCatalog(s, shared)
	if got := other.Search(context.Background(), "Albers"); len(got) != 2 {
		t.Errorf("expected 2 cached entries, got %d", len(got))
	}
	if s.searches != 1 {
		t.Errorf("expected one remote search, got %d", s.searches)
	}
}

func TestCatalogSearch_RemoteFailureIsEmpty(t *testing.T) {
	s := &mockSearcher{searchFn: func(ctx context.Context, query string) ([]domain.RemoteCRS, error) {
		return nil, &domain.RemoteServiceError{Op: "crs search", Status: 500}
	}}
	entries := newCatalog(s, nil).Search(context.Background(), "no such system")
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected an empty non-nil result, got %v", entries)
	}
}

func TestCatalogLookup(t *testing.T) {
	lookups := 0
	s := &mockSearcher{lookupFn: func(ctx context.Context, code int) (*domain.RemoteCRS, error) {
		lookups++
		switch code {
		case 3310:
			return &domain.RemoteCRS{Authority: "EPSG", Code: 3310, Name: "NAD83 / California Albers", Kind: "CRS-PROJCRS"}, nil
		case 1:
			return nil, errors.New("registry down")
		}
		return nil, nil
	}}
	svc := newCatalog(s, nil)
	ctx := context.Background()

	if e, ok := svc.Lookup(ctx, "2229"); !ok || e.Code != "EPSG:2229" || !e.Recommended {
		t.Errorf("expected recommended EPSG:2229 from the static catalog, got %+v %v", e, ok)
	}
	if e, ok := svc.Lookup(ctx, "epsg:3310"); !ok || e.Name != "NAD83 / California Albers" {
		t.Errorf("expected remote EPSG:3310, got %+v %v", e, ok)
	}
	if _, ok := svc.Lookup(ctx, "EPSG:3310"); !ok || lookups != 1 {
		t.Errorf("expected the second lookup served from cache, got %d remote lookups", lookups)
	}
	if _, ok := svc.Lookup(ctx, "EPSG:99999"); ok {
		t.Error("expected unknown code not found")
	}
	if _, ok := svc.Lookup(ctx, "EPSG:1"); ok {
		t.Error("registry failure must read as not found")
	}
	before := lookups
	if _, ok := svc.Lookup(ctx, "ESRI:102645"); ok || lookups != before {
		t.Error("non-EPSG codes must not reach the registry")
	}
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name     string
		decl     domain.CRSDeclaration
		problems int
	}{
		{"complete", domain.CRSDeclaration{Horizontal: "EPSG:2229", Vertical: "EPSG:5703", GeoidModel: "GEOID18"}, 0},
		{"bare code", domain.CRSDeclaration{Horizontal: "2229"}, 0},
		{"missing horizontal", domain.CRSDeclaration{}, 1},
		{"not a code", domain.CRSDeclaration{Horizontal: "State Plane"}, 1},
		{"unknown code", domain.CRSDeclaration{Horizontal: "EPSG:99999"}, 1},
		{"vertical as horizontal", domain.CRSDeclaration{Horizontal: "EPSG:5703"}, 1},
		{"horizontal as vertical", domain.CRSDeclaration{Horizontal: "EPSG:2229", Vertical: "EPSG:2229"}, 1},
		{"unknown geoid", domain.CRSDeclaration{Horizontal: "EPSG:2229", GeoidModel: "GEOID99"}, 1},
		{"everything wrong", domain.CRSDeclaration{Vertical: "x", GeoidModel: "y"}, 3},
	}
	svc := newCatalog(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := svc.Validate(context.Background(), tt.decl)
			if len(problems) != tt.problems {
				t.Errorf("expected %d problems, got %v", tt.problems, problems)
			}
		})
	}
}

func TestCatalog_GetAllAndRecommended(t *testing.T) {
	svc := newCatalog(nil, nil)
	all := svc.GetAll()
	if len(all.Vertical) != 3 || len(all.Geoid) != 3 {
		t.Errorf("expected 3 vertical and 3 geoid entries, got %d/%d", len(all.Vertical), len(all.Geoid))
	}
	if !all.Horizontal[0].Recommended {
		t.Error("expected recommended horizontal systems first")
	}
	if !svc.IsRecommended("EPSG", "2229") || !svc.IsRecommended("", "GEOID18") {
		t.Error("expected EPSG:2229 and GEOID18 recommended")
	}
	if svc.IsRecommended("EPSG", "2227") {
		t.Error("EPSG:2227 is not recommended")
	}
}

func TestCatalog_RefreshDropsRemoteEntries(t *testing.T) {
	s := &mockSearcher{searchFn: remoteHits}
	svc := newCatalog(s, nil)
	svc.Search(context.Background(), "albers")
	if svc.Cache().Len() == 0 {
		t.Fatal("expected remote entries before refresh")
	}

	svc.Refresh(crs.Bundled())

	if svc.Cache().Len() != 0 || svc.Cache().Populated() {
		t.Error("expected refresh to forget remote entries")
	}
	if svc.Cache().Static() != crs.Bundled() {
		t.Error("expected the new static catalog in place")
	}
}

func TestCatalogCache_RefreshReplacesWholeState(t *testing.T) {
	svc := newCatalog(nil, nil)
	remoteOnly := domain.CRSEntry{Code: "EPSG:990001", Name: "Remote grid", Type: domain.CRSHorizontal}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				svc.Cache().Add(remoteOnly)
				svc.Refresh(crs.Bundled())
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				svc.Lookup(context.Background(), "EPSG:990001")
				svc.Search(context.Background(), "zone 5")
			}
		}()
	}
	wg.Wait()

	svc.Cache().Add(remoteOnly)
	if _, ok := svc.Lookup(context.Background(), "990001"); !ok {
		t.Fatal("expected the remote entry before refresh")
	}
	svc.Refresh(crs.Bundled())
	if _, ok := svc.Lookup(context.Background(), "EPSG:990001"); ok {
		t.Error("remote entry survived refresh")
	}
}
