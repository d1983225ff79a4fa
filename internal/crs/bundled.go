package crs

import "github.com/samirrijal/siteloc/internal/core/domain"

// RecommendedCodes are the systems suggested first to Southern California
// project editors.
var RecommendedCodes = []string{
	"EPSG:2229",
	"EPSG:2230",
	"EPSG:2228",
	"EPSG:4326",
	"EPSG:26911",
	"EPSG:6360",
	"GEOID18",
}

// West, south, east, north.
var (
	bboxCAZone1 = []float64{-124.45, 39.59, -119.99, 42.01}
	bboxCAZone2 = []float64{-124.06, 38.02, -119.54, 40.16}
	bboxCAZone3 = []float64{-123.54, 36.73, -117.83, 38.71}
	bboxCAZone4 = []float64{-122.01, 35.78, -115.62, 37.58}
	bboxCAZone5 = []float64{-121.42, 32.76, -114.12, 35.81}
	bboxCAZone6 = []float64{-118.15, 32.53, -114.42, 34.08}
	bboxWorld   = []float64{-180, -90, 180, 90}
	bboxNA      = []float64{-172.54, 14.92, -47.74, 86.46}
	bboxUTM10N  = []float64{-126, 30.5, -119.99, 81.0}
	bboxUTM11N  = []float64{-120, 30.88, -114, 84.0}
)

var bundledEntries = []domain.CRSEntry{
	{Code: "EPSG:2229", Name: "NAD83 / California zone 5 (ftUS)", Type: domain.CRSHorizontal, Unit: "US survey foot",
		Description: "Los Angeles, Ventura, Santa Barbara, San Luis Obispo and southern Kern counties", BoundingBox: bboxCAZone5},
	{Code: "EPSG:2230", Name: "NAD83 / California zone 6 (ftUS)", Type: domain.CRSHorizontal, Unit: "US survey foot",
		Description: "Orange, Riverside, San Diego and Imperial counties", BoundingBox: bboxCAZone6},
	{Code: "EPSG:2228", Name: "NAD83 / California zone 4 (ftUS)", Type: domain.CRSHorizontal, Unit: "US survey foot",
		Description: "Central California including Fresno, Kings, Monterey and Tulare counties", BoundingBox: bboxCAZone4},
	{Code: "EPSG:2227", Name: "NAD83 / California zone 3 (ftUS)", Type: domain.CRSHorizontal, Unit: "US survey foot",
		Description: "San Francisco Bay Area and central valley counties", BoundingBox: bboxCAZone3},
	{Code: "EPSG:2226", Name: "NAD83 / California zone 2 (ftUS)", Type: domain.CRSHorizontal, Unit: "US survey foot",
		Description: "Northern California including Sacramento and Sonoma counties", BoundingBox: bboxCAZone2},
	{Code: "EPSG:2225", Name: "NAD83 / California zone 1 (ftUS)", Type: domain.CRSHorizontal, Unit: "US survey foot",
		Description: "Far northern California counties", BoundingBox: bboxCAZone1},
	{Code: "EPSG:26911", Name: "NAD83 / UTM zone 11N", Type: domain.CRSHorizontal, Unit: "metre",
		Description: "North America between 120°W and 114°W", BoundingBox: bboxUTM11N},
	{Code: "EPSG:26910", Name: "NAD83 / UTM zone 10N", Type: domain.CRSHorizontal, Unit: "metre",
		Description: "North America between 126°W and 120°W", BoundingBox: bboxUTM10N},
	{Code: "EPSG:32611", Name: "WGS 84 / UTM zone 11N", Type: domain.CRSHorizontal, Unit: "metre",
		Description: "Between 120°W and 114°W, northern hemisphere", BoundingBox: bboxUTM11N},
	{Code: "EPSG:32610", Name: "WGS 84 / UTM zone 10N", Type: domain.CRSHorizontal, Unit: "metre",
		Description: "Between 126°W and 120°W, northern hemisphere", BoundingBox: bboxUTM10N},
	{Code: "EPSG:4326", Name: "WGS 84", Type: domain.CRSHorizontal, Unit: "degree",
		Description: "World geodetic system, latitude/longitude", BoundingBox: bboxWorld},
	{Code: "EPSG:4269", Name: "NAD83", Type: domain.CRSHorizontal, Unit: "degree",
		Description: "North American Datum 1983, latitude/longitude", BoundingBox: bboxNA},
	{Code: "EPSG:6318", Name: "NAD83(2011)", Type: domain.CRSHorizontal, Unit: "degree",
		Description: "NAD83 national realization 2011, latitude/longitude", BoundingBox: bboxNA},
	{Code: "EPSG:3857", Name: "WGS 84 / Pseudo-Mercator", Type: domain.CRSHorizontal, Unit: "metre",
		Description: "Web map tiles", BoundingBox: []float64{-180, -85.06, 180, 85.06}},

	{Code: "EPSG:6360", Name: "NAVD88 height (ftUS)", Type: domain.CRSVertical, Unit: "US survey foot",
		Description: "North American Vertical Datum 1988 in US survey feet"},
	{Code: "EPSG:5703", Name: "NAVD88 height", Type: domain.CRSVertical, Unit: "metre",
		Description: "North American Vertical Datum 1988"},
	{Code: "EPSG:5702", Name: "NGVD29 height (ftUS)", Type: domain.CRSVertical, Unit: "US survey foot",
		Description: "National Geodetic Vertical Datum 1929"},

	{Code: "GEOID18", Name: "GEOID18", Type: domain.CRSGeoid,
		Description: "NGS hybrid geoid for NAD83(2011) to NAVD88"},
	{Code: "GEOID12B", Name: "GEOID12B", Type: domain.CRSGeoid,
		Description: "NGS hybrid geoid, superseded by GEOID18"},
	{Code: "GEOID09", Name: "GEOID09", Type: domain.CRSGeoid,
		Description: "NGS hybrid geoid, superseded by GEOID12B"},
}

// esriAliases maps the names ESRI tools write into .prj files.
var esriAliases = map[string]string{
	"NAD_1983_StatePlane_California_I_FIPS_0401_Feet":   "EPSG:2225",
	"NAD_1983_StatePlane_California_II_FIPS_0402_Feet":  "EPSG:2226",
	"NAD_1983_StatePlane_California_III_FIPS_0403_Feet": "EPSG:2227",
	"NAD_1983_StatePlane_California_IV_FIPS_0404_Feet":  "EPSG:2228",
	"NAD_1983_StatePlane_California_V_FIPS_0405_Feet":   "EPSG:2229",
	"NAD_1983_StatePlane_California_VI_FIPS_0406_Feet":  "EPSG:2230",
	"NAD_1983_UTM_Zone_10N":                             "EPSG:26910",
	"NAD_1983_UTM_Zone_11N":                             "EPSG:26911",
	"WGS_1984_UTM_Zone_10N":                             "EPSG:32610",
	"WGS_1984_UTM_Zone_11N":                             "EPSG:32611",
	"GCS_WGS_1984":                                      "EPSG:4326",
	"GCS_North_American_1983":                           "EPSG:4269",
	"GCS_NAD_1983_2011":                                 "EPSG:6318",
	"WGS_1984_Web_Mercator_Auxiliary_Sphere":            "EPSG:3857",
	"NAVD_1988":                                         "EPSG:5703",
}

var bundled = NewCatalog(bundledEntries, esriAliases, RecommendedCodes)

// Bundled returns the static regional catalog.
func Bundled() *Catalog { return bundled }
