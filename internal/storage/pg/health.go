package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *Store) MergeHealth(ctx context.Context, rec domain.HealthRecord) error {
	var metricsJSON []byte
	if rec.SourceMetrics != nil {
		var err error
		metricsJSON, err = json.Marshal(rec.SourceMetrics)
		if err != nil {
			return fmt.Errorf("failed to marshal source metrics: %w", err)
		}
	}

	// Merge write: each job only owns its slice of the record, so absent
	// fields keep their stored value.
	_, err := s.db.Exec(ctx, `
		INSERT INTO region_health (region_id, status, error,
			last_ingest_at, last_ingest_count, count_today, source_metrics,
			last_rotation_at, last_digest_at, last_digest_size, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (region_id) DO UPDATE SET
			status = CASE WHEN EXCLUDED.status <> '' THEN EXCLUDED.status ELSE region_health.status END,
			error  = CASE WHEN EXCLUDED.status <> '' THEN EXCLUDED.error ELSE region_health.error END,
			last_ingest_at    = COALESCE(EXCLUDED.last_ingest_at, region_health.last_ingest_at),
			last_ingest_count = CASE WHEN EXCLUDED.last_ingest_at IS NOT NULL
				THEN EXCLUDED.last_ingest_count ELSE region_health.last_ingest_count END,
			count_today       = CASE WHEN EXCLUDED.last_ingest_at IS NOT NULL
				THEN EXCLUDED.count_today ELSE region_health.count_today END,
			source_metrics    = COALESCE(EXCLUDED.source_metrics, region_health.source_metrics),
			last_rotation_at  = COALESCE(EXCLUDED.last_rotation_at, region_health.last_rotation_at),
			last_digest_at    = COALESCE(EXCLUDED.last_digest_at, region_health.last_digest_at),
			last_digest_size  = CASE WHEN EXCLUDED.last_digest_at IS NOT NULL
				THEN EXCLUDED.last_digest_size ELSE region_health.last_digest_size END,
			updated_at = EXCLUDED.updated_at`,
		rec.RegionID, rec.Status, rec.Error,
		rec.LastIngestAt, rec.LastIngestCount, rec.CountToday, metricsJSON,
		rec.LastRotationAt, rec.LastDigestAt, rec.LastDigestSize, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to merge health record: %w", err)
	}
	return nil
}

func (s *Store) GetHealth(ctx context.Context, regionID string) (domain.HealthRecord, error) {
	var rec domain.HealthRecord
	var metricsJSON []byte

	err := s.db.QueryRow(ctx, `
		SELECT region_id, status, error,
			last_ingest_at, last_ingest_count, count_today, source_metrics,
			last_rotation_at, last_digest_at, last_digest_size, updated_at
		FROM region_health WHERE region_id = $1`,
		regionID,
	).Scan(
		&rec.RegionID, &rec.Status, &rec.Error,
		&rec.LastIngestAt, &rec.LastIngestCount, &rec.CountToday, &metricsJSON,
		&rec.LastRotationAt, &rec.LastDigestAt, &rec.LastDigestSize, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.HealthRecord{}, apperr.NewNotFound("no health record for region " + regionID)
	}
	if err != nil {
		return domain.HealthRecord{}, fmt.Errorf("failed to get health record: %w", err)
	}

	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &rec.SourceMetrics); err != nil {
			return domain.HealthRecord{}, fmt.Errorf("failed to unmarshal source metrics: %w", err)
		}
	}
	return rec, nil
}
