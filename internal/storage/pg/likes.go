package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/jackc/pgx/v5"
)

func (s *Store) ToggleLike(ctx context.Context, userID, articleID string, now time.Time) (bool, int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin like toggle: %w", err)
	}
	defer tx.Rollback(ctx)

	var regionID string
	err = tx.QueryRow(ctx, `SELECT region_id FROM articles WHERE id = $1 FOR UPDATE`, articleID).Scan(&regionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, 0, apperr.NewNotFound("article " + articleID + " not found")
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to lock article: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM article_likes WHERE user_id = $1 AND article_id = $2`,
		userID, articleID,
	)
	if err != nil {
		return false, 0, fmt.Errorf("failed to delete like: %w", err)
	}

	liked := tag.RowsAffected() == 0
	var total int
	if liked {
		_, err = tx.Exec(ctx,
			`INSERT INTO article_likes (user_id, article_id, region_id, created_at) VALUES ($1, $2, $3, $4)`,
			userID, articleID, regionID, now,
		)
		if err != nil {
			return false, 0, fmt.Errorf("failed to insert like: %w", err)
		}
		err = tx.QueryRow(ctx, `
			UPDATE articles
			SET like_count_total = like_count_total + 1,
			    like_count_24h = like_count_24h + 1,
			    updated_at = $2
			WHERE id = $1
			RETURNING like_count_total`,
			articleID, now,
		).Scan(&total)
	} else {
		// Clamp at zero so out-of-order deliveries cannot drive counts
		// negative.
		err = tx.QueryRow(ctx, `
			UPDATE articles
			SET like_count_total = GREATEST(0, like_count_total - 1),
			    like_count_24h = GREATEST(0, like_count_24h - 1),
			    updated_at = $2
			WHERE id = $1
			RETURNING like_count_total`,
			articleID, now,
		).Scan(&total)
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to update like counts: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to commit like toggle: %w", err)
	}
	return liked, total, nil
}

func (s *Store) RecountRecentLikes(ctx context.Context, since time.Time) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin like recount: %w", err)
	}
	defer tx.Rollback(ctx)

	zeroed, err := tx.Exec(ctx, `
		UPDATE articles SET like_count_24h = 0
		WHERE like_count_24h <> 0
		  AND id NOT IN (SELECT article_id FROM article_likes WHERE created_at >= $1)`,
		since,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to zero stale 24h counts: %w", err)
	}

	recounted, err := tx.Exec(ctx, `
		UPDATE articles a
		SET like_count_24h = c.cnt
		FROM (
			SELECT article_id, count(*) AS cnt
			FROM article_likes
			WHERE created_at >= $1
			GROUP BY article_id
		) c
		WHERE a.id = c.article_id AND a.like_count_24h <> c.cnt`,
		since,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to recount 24h likes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit like recount: %w", err)
	}
	return int(zeroed.RowsAffected() + recounted.RowsAffected()), nil
}
