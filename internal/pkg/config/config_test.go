package config_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/siteloc/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("siteloc-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telemetry.ServiceName != "siteloc-test" {
		t.Errorf("service name: got %q", cfg.Telemetry.ServiceName)
	}
	if cfg.Classifier.MinProjected != 1e3 || cfg.Classifier.MaxProjected != 1e7 {
		t.Errorf("classifier thresholds: got %+v", cfg.Classifier)
	}
	if cfg.Evidence.FetchTimeout != 5*time.Second {
		t.Errorf("fetch timeout: got %v", cfg.Evidence.FetchTimeout)
	}
	if cfg.Database.MaxConns != 20 || cfg.Database.MinConns != 2 || cfg.Database.MaxConnLifetime != time.Hour {
		t.Errorf("database pool: got %+v", cfg.Database)
	}
	if cfg.Temporal.TaskQueue != "siteloc-backfill" {
		t.Errorf("task queue: got %q", cfg.Temporal.TaskQueue)
	}
	if cfg.CRSSearch.Enabled() {
		t.Error("remote CRS search should be disabled without an API key")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SITELOC_RESOLVER_PREFETCH", "true")
	t.Setenv("SITELOC_EVIDENCE_BUCKET_URL", "mem://")
	t.Setenv("SITELOC_PROJECTION_TIMEOUT", "3s")
	t.Setenv("SITELOC_DATABASE_MAX_CONNS", "5")

	cfg, err := config.Load("siteloc-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Resolver.Prefetch {
		t.Error("expected prefetch enabled from env")
	}
	if cfg.Evidence.BucketURL != "mem://" {
		t.Errorf("bucket url: got %q", cfg.Evidence.BucketURL)
	}
	if cfg.Projection.Timeout != 3*time.Second {
		t.Errorf("projection timeout: got %v", cfg.Projection.Timeout)
	}
	if cfg.Database.MaxConns != 5 {
		t.Errorf("database max conns: got %d", cfg.Database.MaxConns)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg, err := config.Load("siteloc-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Server.Port = 0
	cfg.Log.Level = "loud"
	cfg.Classifier.MinProjected = 5e7
	cfg.Interpolator.MinLat = 40
	cfg.Database.MinConns = 50

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "log.level", "classifier thresholds", "interpolator envelope", "database pool"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got:\n%v", want, err)
		}
	}
}

func TestResolveSecrets_FromURI(t *testing.T) {
	cfg, err := config.Load("siteloc-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.CRSSearch.APIKeyURI = "constant://?val=abc123&decoder=string"

	if err := cfg.ResolveSecrets(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CRSSearch.APIKey != "abc123" {
		t.Errorf("api key: got %q", cfg.CRSSearch.APIKey)
	}
	if !cfg.CRSSearch.Enabled() {
		t.Error("expected remote CRS search enabled once the key is resolved")
	}
}

func TestResolveSecrets_ExplicitKeyWins(t *testing.T) {
	cfg, err := config.Load("siteloc-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.CRSSearch.APIKey = "inline"
	cfg.CRSSearch.APIKeyURI = "file:///does/not/exist"

	if err := cfg.ResolveSecrets(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CRSSearch.APIKey != "inline" {
		t.Errorf("api key: got %q", cfg.CRSSearch.APIKey)
	}
}

func TestResolveSecrets_BadURI(t *testing.T) {
	cfg, err := config.Load("siteloc-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.CRSSearch.APIKeyURI = "nosuchscheme://x"

	if err := cfg.ResolveSecrets(context.Background()); err == nil {
		t.Fatal("expected error for unknown scheme")
	}
}
