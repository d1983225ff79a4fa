package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
	"github.com/samirrijal/siteloc/internal/core/usecases"
	"github.com/samirrijal/siteloc/internal/crs"
)

const ca5PRJ = `PROJCS["NAD_1983_StatePlane_California_V_FIPS_0405_Feet",GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Lambert_Conformal_Conic"],PARAMETER["False_Easting",6561666.666666666],PARAMETER["Central_Meridian",-118.0],PARAMETER["Latitude_Of_Origin",33.5],UNIT["Foot_US",0.3048006096012192]]`

func strategy(ev *mockEvidence, src domain.Source) ports.Strategy {
	for _, st := range usecases.NewDefaultStrategies(ev, newConversion(nil), crs.Bundled()) {
		if st.Source() == src {
			return st
		}
	}
	return nil
}

func TestDefaultStrategies_Order(t *testing.T) {
	want := []domain.Source{domain.SourceWorldFile, domain.SourceProjFile, domain.SourceSourcesManifest, domain.SourcePotreeBounds}
	got := usecases.NewDefaultStrategies(&mockEvidence{}, newConversion(nil), crs.Bundled())
	for i, st := range got {
		if st.Source() != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], st.Source())
		}
	}
}

func TestWorldFileStrategy_WithSiblingPRJ(t *testing.T) {
	ev := &mockEvidence{files: map[string]string{
		"job-1/ortho.jgw": "0.5\n0\n0\n-0.5\n6487847.00\n1841468.25\n",
		"job-1/ortho.prj": ca5PRJ,
	}}

	att, err := strategy(ev, domain.SourceWorldFile).Attempt(context.Background(), "job-1", domain.CRSDeclaration{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.Detail != "ortho.jgw "+usecases.WorldFileCornerNote {
		t.Errorf("expected ortho.jgw with the corner note, got %s", att.Detail)
	}
	if att.CRS.Horizontal != "EPSG:2229" {
		t.Errorf("expected CRS from the ESRI name, got %q", att.CRS.Horizontal)
	}
	if att.Location == nil || att.Location.Confidence != domain.ConfidenceHigh || att.Location.Method != domain.MethodInterpolated {
		t.Errorf("expected high interpolated location, got %+v", att.Location)
	}
}

func TestWorldFileStrategy_Malformed(t *testing.T) {
	ev := &mockEvidence{files: map[string]string{"job-1/ortho.tfw": "0.5\n0\nnot-a-number\n"}}

	_, err := strategy(ev, domain.SourceWorldFile).Attempt(context.Background(), "job-1", domain.CRSDeclaration{})
	if !errors.Is(err, domain.ErrMalformedSource) {
		t.Errorf("expected malformed, got %v", err)
	}
}

func TestProjectionFileStrategy_LocationFromOrigin(t *testing.T) {
	ev := &mockEvidence{files: map[string]string{"job-1/job-1.prj": ca5PRJ}}

	att, err := strategy(ev, domain.SourceProjFile).Attempt(context.Background(), "job-1", domain.CRSDeclaration{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.Detail != "job-1.prj" || att.CRS.Horizontal != "EPSG:2229" {
		t.Errorf("unexpected attempt %+v", att)
	}
	if att.Location == nil {
		t.Fatal("expected a location from the projection origin")
	}
	if att.Location.Latitude != 33.5 || att.Location.Longitude != -118.0 || att.Location.Confidence != domain.ConfidenceMedium {
		t.Errorf("unexpected location %+v", att.Location)
	}
}

func TestMetadataStrategy_FallsBackToLegacyEncoding(t *testing.T) {
	ev := &mockEvidence{files: map[string]string{
		"job-1/metadata.json": `{"boundingBox": "broken"}`,
		"job-1/cloud.js":      `{"boundingBox":{"lx":-118.3,"ly":34.0,"lz":0,"ux":-118.1,"uy":34.2,"uz":5},"points":42}`,
	}}

	att, err := strategy(ev, domain.SourcePotreeBounds).Attempt(context.Background(), "job-1", domain.CRSDeclaration{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.Detail != "cloud.js" {
		t.Errorf("expected cloud.js, got %s", att.Detail)
	}
	if att.Location == nil || att.Location.Method != domain.MethodDirect {
		t.Errorf("expected a direct location, got %+v", att.Location)
	}
}

func TestMetadataStrategy_Failures(t *testing.T) {
	st := strategy(&mockEvidence{files: map[string]string{"job-1/metadata.json": "{"}}, domain.SourcePotreeBounds)
	if _, err := st.Attempt(context.Background(), "job-1", domain.CRSDeclaration{}); !errors.Is(err, domain.ErrMalformedSource) {
		t.Errorf("expected malformed, got %v", err)
	}

	st = strategy(&mockEvidence{}, domain.SourcePotreeBounds)
	if _, err := st.Attempt(context.Background(), "job-1", domain.CRSDeclaration{}); !errors.Is(err, domain.ErrAbsentSource) {
		t.Errorf("expected absent, got %v", err)
	}
}

func TestManifestStrategy_UsesKnownCRS(t *testing.T) {
	ev := &mockEvidence{files: map[string]string{
		"job-1/sources.json": `{"bounds":{"min":[6487000,1841000,0],"max":[6488694,1841936.5,50]}}`,
	}}
	var gotFrom int
	proj := &mockProjector{projectFn: func(ctx context.Context, pts []domain.ProjectedPoint, from, to int) ([]domain.GeoPoint, error) {
		gotFrom = from
		return []domain.GeoPoint{{Lat: 34.05, Lon: -118.24}}, nil
	}}
	var st ports.Strategy
	for _, s := range usecases.NewDefaultStrategies(ev, newConversion(proj), crs.Bundled()) {
		if s.Source() == domain.SourceSourcesManifest {
			st = s
		}
	}

	att, err := st.Attempt(context.Background(), "job-1", domain.CRSDeclaration{Horizontal: "EPSG:2230"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFrom != 2230 {
		t.Errorf("expected the known CRS to drive projection, got %d", gotFrom)
	}
	if att.Location.Method != domain.MethodRemote || !att.CRS.Empty() {
		t.Errorf("expected remote location and no own CRS, got %+v / %+v", att.Location, att.CRS)
	}
}

func TestStrategies_ZeroedBoundsGiveNoLocation(t *testing.T) {
	tests := []struct {
		name string
		src  domain.Source
		file string
		body string
	}{
		{"manifest", domain.SourceSourcesManifest, "job-1/sources.json", `{"bounds":{"min":[0,0,0],"max":[0,0,0]}}`},
		{"octree metadata", domain.SourcePotreeBounds, "job-1/metadata.json", `{"boundingBox":{"min":[-0.004,-0.004,0],"max":[0.004,0.004,1]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &mockEvidence{files: map[string]string{tt.file: tt.body}}

			att, err := strategy(ev, tt.src).Attempt(context.Background(), "job-1", domain.CRSDeclaration{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if att.Location != nil {
				t.Errorf("0,0 is unset, got %+v", att.Location)
			}

			res := usecases.NewResolverService(usecases.NewDefaultStrategies(ev, newConversion(nil), crs.Bundled()), false).
				Resolve(context.Background(), "job-1")
			if res.Location != nil {
				t.Errorf("expected the placeholder, got %+v", res.Location)
			}
		})
	}
}
