package blobstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gocloud.dev/blob/memblob"

	"github.com/samirrijal/siteloc/internal/adapters/blobstore"
	"github.com/samirrijal/siteloc/internal/core/domain"
)

func newStore(t *testing.T, maxBytes int64) *blobstore.Store {
	t.Helper()
	s := blobstore.New(memblob.OpenBucket(nil), time.Second, maxBytes)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, 1024)
	if err := s.Put(ctx, "24-117", "ortho.tfw", []byte("1\n0\n0\n-1\n6487847\n1841468\n")); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := s.Fetch(ctx, "24-117", "ortho.tfw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(data), "1\n0") {
		t.Errorf("unexpected content %q", data)
	}
}

func TestFetch_Missing(t *testing.T) {
	s := newStore(t, 1024)
	_, err := s.Fetch(context.Background(), "24-117", "ortho.prj")
	if !errors.Is(err, domain.ErrAbsentSource) {
		t.Errorf("expected ErrAbsentSource, got %v", err)
	}
}

func TestFetch_TooLarge(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, 8)
	if err := s.Put(ctx, "24-117", "sources.json", []byte(`{"bounds": {}}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, err := s.Fetch(ctx, "24-117", "sources.json")
	if !errors.Is(err, domain.ErrMalformedSource) {
		t.Errorf("expected ErrMalformedSource, got %v", err)
	}
}

func TestFetch_Cancelled(t *testing.T) {
	s := newStore(t, 1024)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Fetch(ctx, "24-117", "ortho.tfw")
	if !errors.Is(err, domain.ErrAbsentSource) {
		t.Errorf("expected ErrAbsentSource, got %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := blobstore.Key("24-117", "cloud.js"); got != "24-117/cloud.js" {
		t.Errorf("got %q", got)
	}
}
