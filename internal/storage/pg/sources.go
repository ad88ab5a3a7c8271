package pg

import (
	"context"
	"fmt"

	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *Store) ListActiveSources(ctx context.Context, regionID string) ([]domain.Source, error) {
	rows, err := s.db.Query(ctx, `
		SELECT region_id, feed_url, name, weight, active
		FROM sources
		WHERE region_id = $1 AND active
		ORDER BY name`,
		regionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var out []domain.Source
	for rows.Next() {
		var src domain.Source
		if err := rows.Scan(&src.RegionID, &src.FeedURL, &src.Name, &src.Weight, &src.Active); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *Store) UpsertSources(ctx context.Context, sources []domain.Source) error {
	if len(sources) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, src := range sources {
		batch.Queue(`
			INSERT INTO sources (region_id, feed_url, name, weight, active)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (region_id, feed_url) DO UPDATE SET
				name = EXCLUDED.name,
				weight = EXCLUDED.weight,
				active = EXCLUDED.active`,
			src.RegionID, src.FeedURL, src.Name, src.Weight, src.Active,
		)
	}

	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert sources: %w", err)
	}
	return nil
}
