package likes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/storage"
)

// Result reports the outcome of a like toggle.
type Result struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// Service toggles likes and keeps the rolling engagement counter honest.
type Service struct {
	store storage.Store
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Toggle flips the like state of one user on one article and returns the
// new state with the updated total. The storage layer makes the flip
// atomic, so two rapid taps settle to a consistent count.
func (s *Service) Toggle(ctx context.Context, userID, articleID string) (Result, error) {
	if userID == "" {
		return Result{}, apperr.NewValidation("userId is required")
	}
	if articleID == "" {
		return Result{}, apperr.NewValidation("articleId is required")
	}

	liked, total, err := s.store.ToggleLike(ctx, userID, articleID, s.now())
	if err != nil {
		return Result{}, fmt.Errorf("toggle like: %w", err)
	}

	slog.Debug("Like toggled", "user", userID, "article", articleID, "liked", liked, "total", total)
	return Result{Liked: liked, LikeCount: total}, nil
}

// Recount24h rebuilds every article's rolling 24h like counter from the
// like records themselves. The counter is incremented on the hot path but
// never decremented as likes age out, so this nightly pass is what makes
// it converge.
func (s *Service) Recount24h(ctx context.Context) (int, error) {
	since := s.now().Add(-24 * time.Hour)
	updated, err := s.store.RecountRecentLikes(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("recount likes: %w", err)
	}
	slog.Info("Recounted rolling like counters", "articles", updated)
	return updated, nil
}
