package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestApplyPoolOptions(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://siteloc@localhost:5432/siteloc?sslmode=disable")
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	applyPoolOptions(cfg, PoolOptions{MaxConns: 8, MinConns: 2, MaxConnLifetime: time.Hour, MaxConnIdleTime: 5 * time.Minute})

	if cfg.MaxConns != 8 || cfg.MinConns != 2 {
		t.Errorf("conns: got max %d min %d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.MaxConnLifetime != time.Hour || cfg.MaxConnIdleTime != 5*time.Minute {
		t.Errorf("lifetimes: got %v / %v", cfg.MaxConnLifetime, cfg.MaxConnIdleTime)
	}
}

func TestApplyPoolOptions_ZeroKeepsDefaults(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://siteloc@localhost:5432/siteloc?pool_max_conns=7")
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	applyPoolOptions(cfg, PoolOptions{MinConns: 9})

	if cfg.MaxConns != 7 {
		t.Errorf("expected max conns from the DSN, got %d", cfg.MaxConns)
	}
	if cfg.MinConns != 0 {
		t.Errorf("min conns above max must be ignored, got %d", cfg.MinConns)
	}
}
