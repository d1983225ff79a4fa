package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/ports"
)

// ResolutionRepo implements ports.ResolutionRepository with pgx.
type ResolutionRepo struct {
	db *DB
}

// NewResolutionRepo creates a new ResolutionRepo.
func NewResolutionRepo(db *DB) *ResolutionRepo {
	return &ResolutionRepo{db: db}
}

// Save upserts the latest resolution for its job. Indexed columns are
// denormalized from the payload.
func (r *ResolutionRepo) Save(ctx context.Context, res *domain.Resolution) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}

	var (
		source, confidence, method *string
		lat, lon                   *float64
		horizontal, vertical, geoid *string
	)
	if loc := res.Location; loc != nil {
		s, c, m := string(loc.Source), string(loc.Confidence), string(loc.Method)
		source, confidence, method = &s, &c, &m
		lat, lon = &loc.Latitude, &loc.Longitude
	}
	if d := res.CRS; d != nil {
		horizontal, vertical, geoid = nullable(d.Horizontal), nullable(d.Vertical), nullable(d.GeoidModel)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO job_resolutions (job_id, resolution_id, display_name, source, confidence, method,
		                             latitude, longitude, horizontal_crs, vertical_crs, geoid_model,
		                             payload, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (job_id) DO UPDATE
		SET resolution_id = EXCLUDED.resolution_id, display_name = EXCLUDED.display_name,
		    source = EXCLUDED.source, confidence = EXCLUDED.confidence, method = EXCLUDED.method,
		    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
		    horizontal_crs = EXCLUDED.horizontal_crs, vertical_crs = EXCLUDED.vertical_crs,
		    geoid_model = EXCLUDED.geoid_model, payload = EXCLUDED.payload,
		    resolved_at = EXCLUDED.resolved_at
	`, res.JobID, res.ID, res.DisplayName, source, confidence, method,
		lat, lon, horizontal, vertical, geoid, payload, res.ResolvedAt)
	return err
}

// Get returns the stored resolution for jobID or ports.ErrNotFound.
func (r *ResolutionRepo) Get(ctx context.Context, jobID string) (*domain.Resolution, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT payload FROM job_resolutions WHERE job_id = $1`, jobID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var res domain.Resolution
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode resolution %s: %w", jobID, err)
	}
	return &res, nil
}

// ListRecent returns the latest resolutions, newest first.
func (r *ResolutionRepo) ListRecent(ctx context.Context, limit int) ([]domain.Resolution, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT payload FROM job_resolutions ORDER BY resolved_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Resolution{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var res domain.Resolution
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("decode resolution: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
