package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const articleColumns = `id, region_id, title, summary, source_name, source_url, image_url, status,
	publish_time, is_featured, featured_start, featured_end,
	like_count_total, like_count_24h, hot_score, created_at, updated_at`

func scanArticle(row pgx.Row) (domain.Article, error) {
	var a domain.Article
	err := row.Scan(
		&a.ID, &a.RegionID, &a.Title, &a.Summary, &a.SourceName, &a.SourceURL, &a.ImageURL, &a.Status,
		&a.PublishTime, &a.IsFeatured, &a.FeaturedStart, &a.FeaturedEnd,
		&a.LikeCountTotal, &a.LikeCount24h, &a.HotScore, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func collectArticles(rows pgx.Rows) ([]domain.Article, error) {
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	q := fmt.Sprintf(`SELECT %s FROM articles WHERE id = $1`, articleColumns)

	a, err := scanArticle(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Article{}, apperr.NewNotFound("article " + id + " not found")
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

func (s *Store) InsertArticles(ctx context.Context, articles []domain.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	// Conditional insert keyed by the dedup hash: a repeat write refreshes
	// metadata only and never touches counters or featured state. xmax = 0
	// distinguishes a fresh row from a conflict update.
	const q = `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			source_name = EXCLUDED.source_name,
			image_url = EXCLUDED.image_url,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted`

	created := 0
	for _, a := range articles {
		var inserted bool
		err := tx.QueryRow(ctx, q,
			a.ID, a.RegionID, a.Title, a.Summary, a.SourceName, a.SourceURL, a.ImageURL, a.Status,
			a.PublishTime, a.IsFeatured, a.FeaturedStart, a.FeaturedEnd,
			a.LikeCountTotal, a.LikeCount24h, a.HotScore, a.CreatedAt, a.UpdatedAt,
		).Scan(&inserted)
		if err != nil {
			return 0, fmt.Errorf("failed to insert article %s: %w", a.ID, err)
		}
		if inserted {
			created++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit insert batch: %w", err)
	}
	return created, nil
}

func (s *Store) SourceURLSeen(ctx context.Context, sourceURL string, since time.Time) (bool, error) {
	if sourceURL == "" {
		return false, nil
	}

	q := `SELECT EXISTS (SELECT 1 FROM articles WHERE source_url = $1)`
	args := []any{sourceURL}
	if !since.IsZero() {
		q = `SELECT EXISTS (SELECT 1 FROM articles WHERE source_url = $1 AND created_at >= $2)`
		args = append(args, since)
	}

	var seen bool
	if err := s.db.QueryRow(ctx, q, args...).Scan(&seen); err != nil {
		return false, fmt.Errorf("failed to check source url: %w", err)
	}
	return seen, nil
}

func (s *Store) CountCreatedSince(ctx context.Context, regionID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM articles WHERE region_id = $1 AND created_at >= $2`,
		regionID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (s *Store) ListPublishedBetween(ctx context.Context, regionID string, from, to time.Time, limit int) ([]domain.Article, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM articles
		WHERE region_id = $1 AND status = $2 AND publish_time >= $3 AND publish_time < $4
		ORDER BY publish_time DESC`, articleColumns)
	args := []any{regionID, domain.StatusPublished, from, to}
	if limit > 0 {
		q += ` LIMIT $5`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}
	return collectArticles(rows)
}

func (s *Store) ListFeatured(ctx context.Context, regionID string) ([]domain.Article, error) {
	q := fmt.Sprintf(`SELECT %s FROM articles WHERE region_id = $1 AND is_featured`, articleColumns)

	rows, err := s.db.Query(ctx, q, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured articles: %w", err)
	}
	return collectArticles(rows)
}

func (s *Store) ExpireFeatured(ctx context.Context, regionID string, now time.Time) (int, error) {
	// featured_end IS NOT NULL excludes manual pins.
	tag, err := s.db.Exec(ctx, `
		UPDATE articles
		SET is_featured = FALSE, updated_at = $2
		WHERE region_id = $1 AND is_featured AND featured_end IS NOT NULL AND featured_end <= $2`,
		regionID, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire featured articles: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) ListRotationCandidates(ctx context.Context, regionID string, since time.Time, limit int) ([]domain.Article, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM articles
		WHERE region_id = $1 AND status = $2 AND NOT is_featured AND publish_time >= $3
		ORDER BY publish_time DESC, like_count_total DESC
		LIMIT $4`, articleColumns)

	rows, err := s.db.Query(ctx, q, regionID, domain.StatusPublished, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rotation candidates: %w", err)
	}
	return collectArticles(rows)
}

func (s *Store) FeatureArticles(ctx context.Context, ids []string, start, end time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin feature batch: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`
			UPDATE articles
			SET is_featured = TRUE, featured_start = $2, featured_end = $3, updated_at = $2
			WHERE id = $1`,
			id, start, end,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to feature articles: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) SetFeatured(ctx context.Context, id string, feature bool, endAt *time.Time, now time.Time) error {
	var tag pgconn.CommandTag
	var err error
	if feature {
		tag, err = s.db.Exec(ctx, `
			UPDATE articles
			SET is_featured = TRUE, featured_start = $2, featured_end = $3, updated_at = $2
			WHERE id = $1`,
			id, now, endAt,
		)
	} else {
		tag, err = s.db.Exec(ctx, `
			UPDATE articles
			SET is_featured = FALSE, featured_end = $2, updated_at = $2
			WHERE id = $1`,
			id, now,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update featured state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NewNotFound("article " + id + " not found")
	}
	return nil
}
