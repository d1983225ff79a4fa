package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/crs"
	"github.com/samirrijal/siteloc/internal/pkg/metrics"
)

// catalogState is one immutable view of the catalog: the static snapshot
// together with the remote entries fetched against it.
type catalogState struct {
	static *crs.Catalog
	remote map[string]domain.CRSEntry
}

// CatalogCache holds the static catalog snapshot and the entries fetched
// from the remote registry during the process lifetime. Readers always see
// both halves from the same state; Refresh replaces them together.
type CatalogCache struct {
	state atomic.Pointer[catalogState]
	// mu serializes writers; readers only load state.
	mu sync.Mutex
}

// NewCatalogCache creates a cache over the given static catalog.
func NewCatalogCache(static *crs.Catalog) *CatalogCache {
	c := &CatalogCache{}
	c.state.Store(&catalogState{static: static, remote: map[string]domain.CRSEntry{}})
	return c
}

// Static returns the current static catalog.
func (c *CatalogCache) Static() *crs.Catalog { return c.state.Load().static }

// Add records remote entries. Codes already present keep their first entry.
func (c *CatalogCache) Add(entries ...domain.CRSEntry) {
	if len(entries) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.state.Load()
	remote := make(map[string]domain.CRSEntry, len(cur.remote)+len(entries))
	for k, v := range cur.remote {
		remote[k] = v
	}
	for _, e := range entries {
		if _, ok := remote[e.Code]; !ok {
			remote[e.Code] = e
		}
	}
	c.state.Store(&catalogState{static: cur.static, remote: remote})
}

// Get returns a remote entry by canonical code.
func (c *CatalogCache) Get(code string) (domain.CRSEntry, bool) {
	e, ok := c.state.Load().remote[code]
	return e, ok
}

// Populated reports whether any remote entry has been recorded.
func (c *CatalogCache) Populated() bool { return c.Len() > 0 }

// Len returns the number of remote entries.
func (c *CatalogCache) Len() int { return len(c.state.Load().remote) }

// Refresh swaps in a new static catalog and drops all remote entries.
func (c *CatalogCache) Refresh(static *crs.Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Store(&catalogState{static: static, remote: map[string]domain.CRSEntry{}})
}

// CatalogService offers, searches and validates coordinate systems for
// project editors.
type CatalogService struct {
	cache          *CatalogCache
	searcher       ports.CRSSearcher
	shared         ports.CacheService
	regionKeywords []string
	ttlSeconds     int
}

// NewCatalogService creates a CatalogService. searcher and shared may be nil;
// without a searcher only the static catalog is consulted.
func NewCatalogService(cache *CatalogCache, searcher ports.CRSSearcher, shared ports.CacheService, regionKeywords []string, ttlSeconds int) *CatalogService {
	kw := make([]string, 0, len(regionKeywords))
	for _, k := range regionKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	if ttlSeconds <= 0 {
		ttlSeconds = 86400
	}
	return &CatalogService{cache: cache, searcher: searcher, shared: shared, regionKeywords: kw, ttlSeconds: ttlSeconds}
}

// Cache exposes the catalog cache.
func (s *CatalogService) Cache() *CatalogCache { return s.cache }

// Search matches query against code, name and description of the static
// catalog. An empty query lists every horizontal system. When the static
// catalog has no match the remote registry is asked; its failures yield an
// empty result. Results are sorted recommended first, then by name.
func (s *CatalogService) Search(ctx context.Context, query string) []domain.CRSEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	cat := s.cache.Static()

	if q == "" {
		return sortEntries(cat.Horizontal())
	}

	var out []domain.CRSEntry
	for _, section := range [][]domain.CRSEntry{cat.Horizontal(), cat.Vertical(), cat.Geoid()} {
		for _, e := range section {
			if matches(e, q) {
				out = append(out, e)
			}
		}
	}
	if len(out) > 0 || s.searcher == nil {
		if out == nil {
			out = []domain.CRSEntry{}
		}
		return sortEntries(out)
	}

	return sortEntries(s.searchRemote(ctx, q))
}

func (s *CatalogService) searchRemote(ctx context.Context, q string) []domain.CRSEntry {
	key := "crs:search:" + q
	if s.shared != nil {
		if data, err := s.shared.Get(ctx, key); err == nil {
			var entries []domain.CRSEntry
			if err := json.Unmarshal(data, &entries); err == nil {
				metrics.CacheHits.WithLabelValues("crs_search").Inc()
				s.cache.Add(entries...)
				return entries
			}
		}
		metrics.CacheMisses.WithLabelValues("crs_search").Inc()
	}

	hits, err := s.searcher.Search(ctx, q)
	if err != nil {
		metrics.CRSSearches.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "remote CRS search failed, using static catalog", "query", q, "error", err)
		return []domain.CRSEntry{}
	}
	metrics.CRSSearches.WithLabelValues("ok").Inc()

	cat := s.cache.Static()
	entries := make([]domain.CRSEntry, 0, len(hits))
	for _, h := range hits {
		if h.Deprecated || !s.inRegion(h) {
			continue
		}
		entries = append(entries, remoteEntry(h, cat))
	}
	s.cache.Add(entries...)

	if s.shared != nil {
		if data, err := json.Marshal(entries); err == nil {
			_ = s.shared.Set(ctx, key, data, s.ttlSeconds)
		}
	}
	return entries
}

func (s *CatalogService) inRegion(h domain.RemoteCRS) bool {
	if len(s.regionKeywords) == 0 {
		return true
	}
	text := strings.ToLower(h.Name + " " + h.Area)
	for _, k := range s.regionKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// GetAll lists the static catalog by section, horizontal systems sorted
// recommended first.
func (s *CatalogService) GetAll() domain.CatalogListing {
	cat := s.cache.Static()
	return domain.CatalogListing{
		Horizontal: sortEntries(cat.Horizontal()),
		Vertical:   cat.Vertical(),
		Geoid:      cat.Geoid(),
	}
}

// IsRecommended reports whether authority:code is on the curated list.
// An empty authority means code is already qualified or bare.
func (s *CatalogService) IsRecommended(authority, code string) bool {
	if authority != "" {
		code = authority + ":" + code
	}
	return s.cache.Static().IsRecommended(code)
}

// Lookup finds a system by code: static catalog, then previously fetched
// remote entries, then the remote registry.
func (s *CatalogService) Lookup(ctx context.Context, code string) (domain.CRSEntry, bool) {
	st := s.cache.state.Load()
	cat := st.static
	if e, ok := cat.Lookup(code); ok {
		return e, true
	}

	authority, n, ok := crs.SplitCode(code)
	if !ok {
		return domain.CRSEntry{}, false
	}
	canon := crs.FormatCode(authority, n)
	if e, ok := st.remote[canon]; ok {
		return e, true
	}
	if s.searcher == nil || authority != crs.DefaultAuthority {
		return domain.CRSEntry{}, false
	}

	hit, err := s.searcher.LookupCode(ctx, n)
	if err != nil {
		slog.WarnContext(ctx, "remote CRS lookup failed", "code", canon, "error", err)
		return domain.CRSEntry{}, false
	}
	if hit == nil {
		return domain.CRSEntry{}, false
	}
	e := remoteEntry(*hit, cat)
	s.cache.Add(e)
	return e, true
}

// Validate lists the problems with a declaration; an empty list means valid.
func (s *CatalogService) Validate(ctx context.Context, decl domain.CRSDeclaration) []string {
	problems := []string{}
	cat := s.cache.Static()

	switch h := strings.TrimSpace(decl.Horizontal); {
	case h == "":
		problems = append(problems, "horizontal CRS is required")
	default:
		if _, ok := crs.Canonical(h); !ok {
			problems = append(problems, fmt.Sprintf("horizontal CRS %q is not a valid code", h))
			break
		}
		e, ok := s.Lookup(ctx, h)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("horizontal CRS %q is unknown", h))
		case e.Type != domain.CRSHorizontal:
			problems = append(problems, fmt.Sprintf("%s is a %s system, not horizontal", e.Code, e.Type))
		}
	}

	if v := strings.TrimSpace(decl.Vertical); v != "" {
		if e, ok := cat.Lookup(v); !ok || e.Type != domain.CRSVertical {
			problems = append(problems, fmt.Sprintf("vertical datum %q is not in the catalog", v))
		}
	}
	if g := strings.TrimSpace(decl.GeoidModel); g != "" {
		if e, ok := cat.Lookup(g); !ok || e.Type != domain.CRSGeoid {
			problems = append(problems, fmt.Sprintf("geoid model %q is not in the catalog", g))
		}
	}
	return problems
}

// Refresh replaces the static catalog and forgets remote entries.
func (s *CatalogService) Refresh(static *crs.Catalog) {
	s.cache.Refresh(static)
	slog.Info("CRS catalog refreshed", "horizontal", len(static.Horizontal()))
}

func remoteEntry(h domain.RemoteCRS, cat *crs.Catalog) domain.CRSEntry {
	code := crs.FormatCode(h.Authority, h.Code)
	typ := domain.CRSHorizontal
	if strings.Contains(strings.ToUpper(h.Kind), "VERT") {
		typ = domain.CRSVertical
	}
	return domain.CRSEntry{
		Code:        code,
		Name:        h.Name,
		Type:        typ,
		Recommended: cat.IsRecommended(code),
		Description: h.Area,
		BoundingBox: h.BBox,
		Unit:        h.Unit,
	}
}

func matches(e domain.CRSEntry, q string) bool {
	return strings.Contains(strings.ToLower(e.Code), q) ||
		strings.Contains(strings.ToLower(e.Name), q) ||
		strings.Contains(strings.ToLower(e.Description), q)
}

func sortEntries(entries []domain.CRSEntry) []domain.CRSEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Recommended != b.Recommended {
			return a.Recommended
		}
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.Code < b.Code
	})
	return entries
}
