package crs

import (
	"regexp"
	"strings"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/formats"
)

var reProjInit = regexp.MustCompile(`(?i)\+init=([a-z]+):(\d+)`)

// DeclarationFromLabel interprets the free-form projection label found in
// manifests and point-cloud metadata: an authority code, a proj string with
// +init, a WKT description, or a catalog name.
func (c *Catalog) DeclarationFromLabel(label string) (domain.CRSDeclaration, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.CRSDeclaration{}, false
	}

	if canon, ok := Canonical(label); ok {
		return domain.CRSDeclaration{Horizontal: canon}, true
	}
	if m := reProjInit.FindStringSubmatch(label); m != nil {
		if canon, ok := Canonical(m[1] + ":" + m[2]); ok {
			return domain.CRSDeclaration{Horizontal: canon}, true
		}
	}
	if strings.Contains(label, "[") {
		if pd, ok := formats.ParseProjectionDescription(label); ok {
			return c.DeclarationFromDescription(pd)
		}
	}
	if e, ok := c.LookupByName(label); ok && e.Type == domain.CRSHorizontal {
		return domain.CRSDeclaration{Horizontal: e.Code}, true
	}
	return domain.CRSDeclaration{}, false
}

// DeclarationFromDescription prefers the description's authority code and
// falls back to resolving its name.
func (c *Catalog) DeclarationFromDescription(pd domain.ProjectionDescription) (domain.CRSDeclaration, bool) {
	if d := pd.Declaration(); d.Horizontal != "" {
		return d, true
	}
	// An unknown projected name must not fall back to its base geographic CRS.
	name := pd.ProjectedCRS
	if name == "" {
		name = pd.GeographicCRS
	}
	if e, ok := c.LookupByName(name); ok && e.Type == domain.CRSHorizontal {
		return domain.CRSDeclaration{Horizontal: e.Code}, true
	}
	return domain.CRSDeclaration{}, false
}
