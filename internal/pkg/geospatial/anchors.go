package geospatial

import "github.com/samirrijal/siteloc/internal/core/domain"

// Approximate ground distance per degree in US survey feet.
const (
	FeetPerDegreeLatitude           = 364000.0
	FeetPerDegreeLongitudeAtEquator = 365221.0
)

// Anchor ties a projected coordinate to its known geographic position.
type Anchor struct {
	Name       string
	ProjectedX float64
	ProjectedY float64
	Lat        float64
	Lon        float64
}

// SouthernCaliforniaCRS is the coordinate system of SouthernCaliforniaAnchors.
const SouthernCaliforniaCRS = "EPSG:2229"

// SouthernCaliforniaAnchors are reference points in NAD83 / California
// zone 5 (US survey feet, EPSG:2229).
var SouthernCaliforniaAnchors = []Anchor{
	{Name: "Zone 5 origin", ProjectedX: 6561666.67, ProjectedY: 1640416.67, Lat: 33.5, Lon: -118.0},
	{Name: "Downtown Los Angeles", ProjectedX: 6487847.00, ProjectedY: 1841468.25, Lat: 34.0522, Lon: -118.2437},
	{Name: "Santa Monica", ProjectedX: 6412818.57, ProjectedY: 1829842.28, Lat: 34.0195, Lon: -118.4912},
	{Name: "Pasadena", ProjectedX: 6517945.86, ProjectedY: 1876200.83, Lat: 34.1478, Lon: -118.1445},
	{Name: "Long Beach", ProjectedX: 6502794.75, ProjectedY: 1738772.69, Lat: 33.7701, Lon: -118.1937},
	{Name: "Santa Clarita", ProjectedX: 6397974.17, ProjectedY: 1965370.96, Lat: 34.3917, Lon: -118.5426},
	{Name: "Lancaster", ProjectedX: 6515311.89, ProjectedY: 2072358.81, Lat: 34.6868, Lon: -118.1542},
	{Name: "Pomona", ProjectedX: 6637392.05, ProjectedY: 1842528.30, Lat: 34.0551, Lon: -117.75},
	{Name: "Ventura", ProjectedX: 6190386.24, ProjectedY: 1924584.04, Lat: 34.2746, Lon: -119.229},
	{Name: "Santa Barbara", ProjectedX: 6049551.56, ProjectedY: 1979845.34, Lat: 34.4208, Lon: -119.6982},
	{Name: "Thousand Oaks", ProjectedX: 6308309.28, ProjectedY: 1885522.35, Lat: 34.1706, Lon: -118.8376},
	{Name: "Avalon", ProjectedX: 6461408.04, ProjectedY: 1583367.01, Lat: 33.3428, Lon: -118.3282},
}

// SouthernCaliforniaEnvelope bounds results interpolated from the table.
var SouthernCaliforniaEnvelope = domain.Bounds{MinLat: 32.5, MaxLat: 35.8, MinLon: -121.0, MaxLon: -116.0}

// DefaultMaxAnchorDistance is the farthest, in projected units, a point may
// lie from its nearest anchor.
const DefaultMaxAnchorDistance = 200000.0
