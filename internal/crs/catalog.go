package crs

import (
	"strings"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// Catalog is an immutable set of coordinate systems indexed by code and name.
type Catalog struct {
	horizontal  []domain.CRSEntry
	vertical    []domain.CRSEntry
	geoid       []domain.CRSEntry
	byCode      map[string]domain.CRSEntry
	byName      map[string]string
	recommended map[string]bool
}

// NewCatalog indexes entries. aliases maps alternative names (ESRI spellings,
// for instance) to codes; recommended lists codes to flag.
func NewCatalog(entries []domain.CRSEntry, aliases map[string]string, recommended []string) *Catalog {
	c := &Catalog{
		byCode:      make(map[string]domain.CRSEntry, len(entries)),
		byName:      make(map[string]string, len(entries)+len(aliases)),
		recommended: make(map[string]bool, len(recommended)),
	}
	for _, code := range recommended {
		c.recommended[codeKey(code)] = true
	}
	for _, e := range entries {
		e.Recommended = c.recommended[codeKey(e.Code)]
		switch e.Type {
		case domain.CRSVertical:
			c.vertical = append(c.vertical, e)
		case domain.CRSGeoid:
			c.geoid = append(c.geoid, e)
		default:
			e.Type = domain.CRSHorizontal
			c.horizontal = append(c.horizontal, e)
		}
		c.byCode[codeKey(e.Code)] = e
		c.byName[nameKey(e.Name)] = e.Code
	}
	for name, code := range aliases {
		c.byName[nameKey(name)] = code
	}
	return c
}

// Horizontal returns a copy of the horizontal entries in table order.
func (c *Catalog) Horizontal() []domain.CRSEntry { return clone(c.horizontal) }

// Vertical returns a copy of the vertical datum entries.
func (c *Catalog) Vertical() []domain.CRSEntry { return clone(c.vertical) }

// Geoid returns a copy of the geoid model entries.
func (c *Catalog) Geoid() []domain.CRSEntry { return clone(c.geoid) }

// Lookup finds an entry by code in any accepted spelling.
func (c *Catalog) Lookup(code string) (domain.CRSEntry, bool) {
	e, ok := c.byCode[codeKey(code)]
	return e, ok
}

// LookupByName finds an entry by its name or a registered alias, ignoring
// case and treating underscores as spaces.
func (c *Catalog) LookupByName(name string) (domain.CRSEntry, bool) {
	code, ok := c.byName[nameKey(name)]
	if !ok {
		return domain.CRSEntry{}, false
	}
	return c.Lookup(code)
}

// IsRecommended reports whether code is on the curated list.
func (c *Catalog) IsRecommended(code string) bool {
	return c.recommended[codeKey(code)]
}

// codeKey canonicalizes numeric codes and upper-cases everything else so
// geoid names like "geoid18" match.
func codeKey(code string) string {
	if canon, ok := Canonical(code); ok {
		return canon
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

func nameKey(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "_", " "))
	return strings.Join(strings.Fields(name), " ")
}

func clone(entries []domain.CRSEntry) []domain.CRSEntry {
	out := make([]domain.CRSEntry, len(entries))
	copy(out, entries)
	return out
}
