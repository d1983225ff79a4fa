package formats_test

import (
	"math"
	"testing"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/formats"
)

func TestParseWorldFile(t *testing.T) {
	text := "0.5\r\n0\r\n\r\n0\n-0.5\n6487847.00\n1841468.25\n"
	w, ok := formats.ParseWorldFile(text)
	if !ok {
		t.Fatal("expected world file to parse")
	}
	want := domain.WorldFile{
		PixelSizeX: 0.5, PixelSizeY: -0.5,
		UpperLeftX: 6487847.00, UpperLeftY: 1841468.25,
	}
	if w != want {
		t.Errorf("got %+v, want %+v", w, want)
	}
}

func TestParseWorldFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"five lines", "1\n0\n0\n-1\n100"},
		{"non-numeric", "1\n0\n0\n-1\nabc\n200"},
		{"nan", "1\n0\n0\n-1\nNaN\n200"},
		{"inf", "1\n0\n0\n-1\n100\n+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := formats.ParseWorldFile(tt.text); ok {
				t.Errorf("expected %q to be rejected", tt.text)
			}
		})
	}
}

func TestParseWorldFile_ExtraLinesIgnored(t *testing.T) {
	w, ok := formats.ParseWorldFile("1\n0\n0\n-1\n100\n200\n7\n")
	if !ok {
		t.Fatal("expected parse with trailing extra value")
	}
	if w.UpperLeftY != 200 {
		t.Errorf("expected upper-left y 200, got %v", w.UpperLeftY)
	}
}

func TestWorldFile_RoundTrip(t *testing.T) {
	orig := domain.WorldFile{
		PixelSizeX: 0.25, RotationY: 0.001, RotationX: -0.002,
		PixelSizeY: -0.25, UpperLeftX: 6412818.57, UpperLeftY: 1829842.28,
	}
	got, ok := formats.ParseWorldFile(formats.FormatWorldFile(orig))
	if !ok {
		t.Fatal("expected formatted world file to parse")
	}
	if got != orig {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, orig)
	}
}

func TestWorldFile_PixelToWorld(t *testing.T) {
	w := domain.WorldFile{PixelSizeX: 2, PixelSizeY: -2, UpperLeftX: 1000, UpperLeftY: 5000}
	p := w.PixelToWorld(10, 20)
	if p.X != 1020 || p.Y != 4960 {
		t.Errorf("got %+v, want {1020 4960}", p)
	}
	c := w.Center(101, 51)
	if c.X != 1100 || c.Y != 4950 {
		t.Errorf("center got %+v, want {1100 4950}", c)
	}
	if ul := w.Center(0, 0); ul.X != 1000 || ul.Y != 5000 {
		t.Errorf("unknown dims should return upper-left, got %+v", ul)
	}
}

const ca5PRJ = `PROJCS["NAD_1983_StatePlane_California_V_FIPS_0405_Feet",
  GEOGCS["GCS_North_American_1983",
    DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],
    PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],
  PROJECTION["Lambert_Conformal_Conic"],
  PARAMETER["False_Easting",6561666.666666666],
  PARAMETER["False_Northing",1640416.666666667],
  PARAMETER["Central_Meridian",-118.0],
  PARAMETER["Standard_Parallel_1",34.03333333333333],
  PARAMETER["Standard_Parallel_2",35.46666666666667],
  PARAMETER["Latitude_Of_Origin",33.5],
  PARAMETER["Scale_Factor",bogus],
  UNIT["Foot_US",0.3048006096012192],
  AUTHORITY["EPSG",2229]]`

func TestParseProjectionDescription(t *testing.T) {
	pd, ok := formats.ParseProjectionDescription(ca5PRJ)
	if !ok {
		t.Fatal("expected projection description to parse")
	}

	checks := map[string][2]string{
		"projected":  {pd.ProjectedCRS, "NAD_1983_StatePlane_California_V_FIPS_0405_Feet"},
		"geographic": {pd.GeographicCRS, "GCS_North_American_1983"},
		"datum":      {pd.Datum, "D_North_American_1983"},
		"spheroid":   {pd.Spheroid, "GRS_1980"},
		"projection": {pd.Projection, "Lambert_Conformal_Conic"},
		"unit":       {pd.LinearUnit, "Foot_US"},
		"authority":  {pd.Authority, "EPSG:2229"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s: got %q, want %q", name, c[0], c[1])
		}
	}

	if got := pd.Parameters["central_meridian"]; got != -118.0 {
		t.Errorf("central_meridian: got %v", got)
	}
	if got := pd.Parameters["false_easting"]; math.Abs(got-6561666.666666666) > 1e-6 {
		t.Errorf("false_easting: got %v", got)
	}
	if _, ok := pd.Parameters["scale_factor"]; ok {
		t.Error("unparseable parameter should be dropped")
	}

	origin, ok := pd.Origin()
	if !ok || origin.Lat != 33.5 || origin.Lon != -118.0 {
		t.Errorf("origin: got %+v ok=%v", origin, ok)
	}
	if d := pd.Declaration(); d.Horizontal != "EPSG:2229" {
		t.Errorf("declaration: got %+v", d)
	}
}

func TestParseProjectionDescription_Partial(t *testing.T) {
	pd, ok := formats.ParseProjectionDescription(`GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],UNIT["degree",0.0174532925199433]]`)
	if !ok {
		t.Fatal("expected geographic-only description to parse")
	}
	if pd.ProjectedCRS != "" {
		t.Errorf("expected empty projected CRS, got %q", pd.ProjectedCRS)
	}
	if pd.GeographicCRS != "WGS 84" || pd.LinearUnit != "degree" {
		t.Errorf("got %+v", pd)
	}
	if len(pd.Parameters) != 0 {
		t.Errorf("expected no parameters, got %v", pd.Parameters)
	}

	// Authorities of the unit and the base geographic CRS do not name the
	// projected system.
	custom := `PROJCS["Site grid",
	  GEOGCS["NAD83",DATUM["North_American_Datum_1983",SPHEROID["GRS 1980",6378137,298.257222101,AUTHORITY["EPSG","7019"]],AUTHORITY["EPSG","6269"]],
	    PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4269"]],
	  PROJECTION["Lambert_Conformal_Conic_2SP"],
	  PARAMETER["central_meridian",-118.2],
	  PARAMETER["latitude_of_origin",33.9],
	  UNIT["US survey foot",0.3048006096012192,AUTHORITY["EPSG","9003"]],
	  AXIS["Easting",EAST],AXIS["Northing",NORTH]]`
	pd, ok = formats.ParseProjectionDescription(custom)
	if !ok {
		t.Fatal("expected custom projection to parse")
	}
	if pd.Authority != "" {
		t.Errorf("expected no authority for the projected CRS, got %q", pd.Authority)
	}
	if d := pd.Declaration(); d.Horizontal != "" {
		t.Errorf("expected no declaration, got %+v", d)
	}
	if pd.LinearUnit != "US survey foot" {
		t.Errorf("expected the projected unit, got %q", pd.LinearUnit)
	}

	pd, _ = formats.ParseProjectionDescription(`GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`)
	if pd.Authority != "EPSG:4326" {
		t.Errorf("expected the closing authority, got %q", pd.Authority)
	}
}

func TestParseProjectionDescription_Rejects(t *testing.T) {
	if _, ok := formats.ParseProjectionDescription("   \n\t "); ok {
		t.Error("blank text should be rejected")
	}
	if _, ok := formats.ParseProjectionDescription("PROJCS[\"\xff\xfe\"]"); ok {
		t.Error("invalid UTF-8 should be rejected")
	}
	pd, ok := formats.ParseProjectionDescription("not a projection at all")
	if !ok {
		t.Fatal("garbage text still yields an empty description")
	}
	if pd.ProjectedCRS != "" || pd.Authority != "" {
		t.Errorf("expected empty fields, got %+v", pd)
	}
}

func TestParseTileManifest(t *testing.T) {
	data := []byte(`{
		"bounds": {"min": [6480000, 1830000, 10.5], "max": [6490000, 1850000, 120]},
		"projection": "EPSG:2229",
		"sources": [{"name": "a.laz", "points": 1000}, {"name": "b.laz", "points": 2500}]
	}`)
	m, ok := formats.ParseTileManifest(data)
	if !ok {
		t.Fatal("expected manifest to parse")
	}
	if m.ProjectionLabel != "EPSG:2229" {
		t.Errorf("projection: got %q", m.ProjectionLabel)
	}
	if m.TotalPoints != 3500 {
		t.Errorf("total points: got %d", m.TotalPoints)
	}
	c := formats.BoxCenter(m.Bounds)
	if c.X != 6485000 || c.Y != 1840000 {
		t.Errorf("center: got %+v", c)
	}
}

func TestParseTileManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{bounds:`},
		{"missing bounds", `{"projection": "EPSG:2229"}`},
		{"short min", `{"bounds": {"min": [1, 2], "max": [3, 4, 5]}}`},
		{"string coordinate", `{"bounds": {"min": [1, "2", 3], "max": [3, 4, 5]}}`},
		{"missing max", `{"bounds": {"min": [1, 2, 3]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := formats.ParseTileManifest([]byte(tt.data)); ok {
				t.Error("expected manifest to be rejected")
			}
		})
	}
}

func TestParsePointCloudMetadata_BothEncodings(t *testing.T) {
	legacy := []byte(`{"version": "1.7", "points": 42,
		"projection": "+proj=lcc +units=us-ft",
		"boundingBox": {"lx": 10, "ly": 20, "lz": 0, "ux": 30, "uy": 60, "uz": 5}}`)
	octree := []byte(`{"version": "2.0", "points": 42,
		"projection": "+proj=lcc +units=us-ft",
		"boundingBox": {"min": [10, 20, 0], "max": [30, 60, 5]}}`)

	m1, ok := formats.ParsePointCloudMetadata(legacy)
	if !ok {
		t.Fatal("expected legacy metadata to parse")
	}
	if _, isLegacy := m1.(domain.CloudJS); !isLegacy {
		t.Fatalf("expected CloudJS, got %T", m1)
	}
	m2, ok := formats.ParsePointCloudMetadata(octree)
	if !ok {
		t.Fatal("expected octree metadata to parse")
	}
	if _, isOctree := m2.(domain.OctreeMetadata); !isOctree {
		t.Fatalf("expected OctreeMetadata, got %T", m2)
	}

	b1 := formats.NormalizeMetadata(m1)
	b2 := formats.NormalizeMetadata(m2)
	if b1.Bounds != b2.Bounds || b1.Points != b2.Points || b1.Projection != b2.Projection {
		t.Errorf("normalized shapes differ: %+v vs %+v", b1, b2)
	}
	if b1.Encoding != "cloud.js" || b2.Encoding != "metadata.json" {
		t.Errorf("encodings: %q, %q", b1.Encoding, b2.Encoding)
	}
	if c := formats.BoxCenter(b1.Bounds); c.X != 20 || c.Y != 40 {
		t.Errorf("center: got %+v", c)
	}
}

func TestParsePointCloudMetadata_Invalid(t *testing.T) {
	for _, data := range []string{
		`[]`,
		`{"points": 1}`,
		`{"boundingBox": {"lx": 1, "ly": 2}}`,
		`{"boundingBox": {"min": [1, 2, 3]}}`,
	} {
		if _, ok := formats.ParsePointCloudMetadata([]byte(data)); ok {
			t.Errorf("expected %s to be rejected", data)
		}
	}
	if b := formats.NormalizeMetadata(nil); b.Encoding != "" {
		t.Errorf("nil metadata should normalize to zero bounds, got %+v", b)
	}
}
