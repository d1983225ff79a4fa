package maptiler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/siteloc/internal/adapters/maptiler"
	"github.com/samirrijal/siteloc/internal/core/domain"
)

const searchBody = `{
  "results": [
    {"id": {"authority": "EPSG", "code": 2229}, "name": "NAD83 / California zone 5 (ftUS)", "kind": "CRS-PROJCRS",
     "area": "United States (USA) - California", "unit": "US survey foot", "deprecated": false,
     "bbox": [-121.42, 32.76, -114.12, 35.81]},
    {"id": {"authority": "EPSG", "code": 26945}, "name": "NAD83 / California zone 5",
     "area": "United States (USA) - California", "unit": "metre", "deprecated": false},
    {"id": {"authority": "EPSG", "code": "bad"}, "name": "broken"}
  ],
  "total": 3
}`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coordinates/search/california zone 5.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("missing api key")
		}
		fmt.Fprint(w, searchBody)
	}))
	defer srv.Close()

	client := maptiler.New(srv.URL, "secret", time.Second)
	hits, err := client.Search(context.Background(), " california zone 5 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Code != 2229 || hits[0].Authority != "EPSG" || len(hits[0].BBox) != 4 {
		t.Errorf("unexpected first hit %+v", hits[0])
	}
	if hits[0].Kind != "CRS-PROJCRS" {
		t.Errorf("kind: got %q", hits[0].Kind)
	}
	if hits[1].BBox != nil {
		t.Errorf("expected no bbox, got %v", hits[1].BBox)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := maptiler.New("http://127.0.0.1:1", "secret", time.Second)
	hits, err := client.Search(context.Background(), "   ")
	if err != nil || hits != nil {
		t.Errorf("expected nil, nil; got %v, %v", hits, err)
	}
}

func TestSearch_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"Invalid key"}`)
	}))
	defer srv.Close()

	client := maptiler.New(srv.URL, "bad", time.Second)
	_, err := client.Search(context.Background(), "california")
	var rse *domain.RemoteServiceError
	if !errors.As(err, &rse) || rse.Status != http.StatusForbidden || rse.Message != "Invalid key" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestLookupCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coordinates/search/code:26945.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, searchBody)
	}))
	defer srv.Close()

	client := maptiler.New(srv.URL, "secret", time.Second)
	hit, err := client.LookupCode(context.Background(), 26945)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit == nil || hit.Name != "NAD83 / California zone 5" {
		t.Errorf("unexpected hit %+v", hit)
	}
}
