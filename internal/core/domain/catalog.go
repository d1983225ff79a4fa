package domain

// CRSType distinguishes catalog sections.
type CRSType string

const (
	CRSHorizontal CRSType = "horizontal"
	CRSVertical   CRSType = "vertical"
	CRSGeoid      CRSType = "geoid"
)

// CRSEntry is an immutable catalog record.
type CRSEntry struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Type        CRSType   `json:"type"`
	Recommended bool      `json:"recommended"`
	Description string    `json:"description,omitempty"`
	BoundingBox []float64 `json:"bounding_box,omitempty"` // west, south, east, north
	Unit        string    `json:"unit,omitempty"`
}

// CatalogListing groups catalog entries by type.
type CatalogListing struct {
	Horizontal []CRSEntry `json:"horizontal"`
	Vertical   []CRSEntry `json:"vertical"`
	Geoid      []CRSEntry `json:"geoid"`
}

// RemoteCRS is a search hit returned by a remote CRS search endpoint.
type RemoteCRS struct {
	Authority  string    `json:"authority"`
	Code       int       `json:"code"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind,omitempty"` // "CRS-PROJCRS", "CRS-VERTCRS", ...
	Area       string    `json:"area,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	Deprecated bool      `json:"deprecated"`
	BBox       []float64 `json:"bbox,omitempty"`
}
