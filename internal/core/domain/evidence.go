package domain

// WorldFile holds the six affine parameters of a georeferencing world file.
//
// Line 1: pixel size in x
// Line 2: rotation about the y-axis
// Line 3: rotation about the x-axis
// Line 4: pixel size in y (negative for north-up rasters)
// Line 5: x of the center of the upper-left pixel
// Line 6: y of the center of the upper-left pixel
type WorldFile struct {
	PixelSizeX float64 `json:"pixel_size_x"`
	RotationY  float64 `json:"rotation_y"`
	RotationX  float64 `json:"rotation_x"`
	PixelSizeY float64 `json:"pixel_size_y"`
	UpperLeftX float64 `json:"upper_left_x"`
	UpperLeftY float64 `json:"upper_left_y"`
}

// Lines returns the parameters in file order.
func (w WorldFile) Lines() [6]float64 {
	return [6]float64{w.PixelSizeX, w.RotationY, w.RotationX, w.PixelSizeY, w.UpperLeftX, w.UpperLeftY}
}

// PixelToWorld maps raster pixel (col, row) into world coordinates.
func (w WorldFile) PixelToWorld(col, row float64) ProjectedPoint {
	return ProjectedPoint{
		X: w.PixelSizeX*col + w.RotationX*row + w.UpperLeftX,
		Y: w.RotationY*col + w.PixelSizeY*row + w.UpperLeftY,
	}
}

// Center returns the world coordinate at the middle of a width x height raster.
// With unknown dimensions it returns the upper-left pixel's coordinate.
func (w WorldFile) Center(width, height int) ProjectedPoint {
	if width <= 0 || height <= 0 {
		return ProjectedPoint{X: w.UpperLeftX, Y: w.UpperLeftY}
	}
	return w.PixelToWorld(float64(width-1)/2, float64(height-1)/2)
}

// ProjectionDescription is the structured content of a projection (.prj) file.
// Absent fields are empty strings.
type ProjectionDescription struct {
	ProjectedCRS  string             `json:"projected_crs"`
	GeographicCRS string             `json:"geographic_crs"`
	Datum         string             `json:"datum"`
	Spheroid      string             `json:"spheroid"`
	Projection    string             `json:"projection"`
	Parameters    map[string]float64 `json:"parameters"`
	LinearUnit    string             `json:"linear_unit"`
	Authority     string             `json:"authority"` // "EPSG:2229"
}

// Parameter names as they appear (lower-cased) in projection descriptions.
const (
	ParamCentralMeridian  = "central_meridian"
	ParamLatitudeOfOrigin = "latitude_of_origin"
	ParamFalseEasting     = "false_easting"
	ParamFalseNorthing    = "false_northing"
)

// Origin returns the geographic origin described by the projection
// parameters, if both central meridian and latitude of origin are present.
func (p ProjectionDescription) Origin() (GeoPoint, bool) {
	lon, okLon := p.Parameters[ParamCentralMeridian]
	lat, okLat := p.Parameters[ParamLatitudeOfOrigin]
	if !okLon || !okLat {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: lat, Lon: lon}, true
}

// Declaration returns the horizontal CRS named by the description's
// authority code. Descriptions without one yield an empty declaration.
func (p ProjectionDescription) Declaration() CRSDeclaration {
	return CRSDeclaration{Horizontal: p.Authority}
}

// TileManifest is the summary a point-cloud converter writes next to its tiles.
type TileManifest struct {
	Bounds          Box3D  `json:"bounds"`
	ProjectionLabel string `json:"projection"`
	TotalPoints     int64  `json:"total_points"`
}

// Box3D is an axis-aligned box in source units.
type Box3D struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// PointCloudMetadata is one of the two metadata encodings a point-cloud
// octree can ship with: CloudJS or OctreeMetadata.
type PointCloudMetadata interface {
	metadataEncoding() string
}

// CloudJS is the legacy encoding with lx/ly/lz/ux/uy/uz bounding box fields.
type CloudJS struct {
	LX, LY, LZ float64
	UX, UY, UZ float64
	Projection string
	Points     int64
}

func (CloudJS) metadataEncoding() string { return "cloud.js" }

// OctreeMetadata is the newer encoding with min/max arrays.
type OctreeMetadata struct {
	Min        [3]float64
	Max        [3]float64
	Projection string
	Points     int64
}

func (OctreeMetadata) metadataEncoding() string { return "metadata.json" }

// Encoding names the encoding a metadata value was read from.
func Encoding(m PointCloudMetadata) string {
	if m == nil {
		return ""
	}
	return m.metadataEncoding()
}

// PointCloudBounds is the canonical shape both metadata encodings normalize to.
type PointCloudBounds struct {
	Bounds     Box3D  `json:"bounds"`
	Projection string `json:"projection"`
	Points     int64  `json:"points"`
	Encoding   string `json:"encoding"`
}
