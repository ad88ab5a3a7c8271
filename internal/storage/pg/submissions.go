package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/jackc/pgx/v5"
)

const submissionColumns = `id, user_id, title, description, city, state, photo_url, status,
	moderator_id, moderator_note, article_id, moderated_at, created_at, updated_at`

func (s *Store) GetSubmission(ctx context.Context, id string) (domain.Submission, error) {
	q := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1`, submissionColumns)

	var sub domain.Submission
	err := s.db.QueryRow(ctx, q, id).Scan(
		&sub.ID, &sub.UserID, &sub.Title, &sub.Description, &sub.City, &sub.State, &sub.PhotoURL, &sub.Status,
		&sub.ModeratorID, &sub.ModeratorNote, &sub.ArticleID, &sub.ModeratedAt, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, apperr.NewNotFound("submission " + id + " not found")
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

func (s *Store) ResolveSubmission(ctx context.Context, sub domain.Submission, article *domain.Article) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin submission resolve: %w", err)
	}
	defer tx.Rollback(ctx)

	if article != nil {
		a := article
		_, err = tx.Exec(ctx, `
			INSERT INTO articles (`+articleColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			a.ID, a.RegionID, a.Title, a.Summary, a.SourceName, a.SourceURL, a.ImageURL, a.Status,
			a.PublishTime, a.IsFeatured, a.FeaturedStart, a.FeaturedEnd,
			a.LikeCountTotal, a.LikeCount24h, a.HotScore, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert promoted article: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE submissions
		SET status = $2, moderator_id = $3, moderator_note = $4, article_id = $5,
		    moderated_at = $6, updated_at = $7
		WHERE id = $1`,
		sub.ID, sub.Status, sub.ModeratorID, sub.ModeratorNote, sub.ArticleID, sub.ModeratedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NewNotFound("submission " + sub.ID + " not found")
	}

	return tx.Commit(ctx)
}
