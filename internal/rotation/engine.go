package rotation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/storage"
)

// Config carries the featured rotation tunables.
type Config struct {
	// Slots is the size of the featured carousel.
	Slots int
	// Lookback bounds how old a candidate's publish time may be.
	Lookback time.Duration
	// TTL is how long an automatic selection stays featured.
	TTL time.Duration
	// OverFetch multiplies Slots when pulling candidates, so the engagement
	// re-sort has room to differ from the recency order.
	OverFetch int
}

func DefaultConfig() Config {
	return Config{
		Slots:     3,
		Lookback:  7 * 24 * time.Hour,
		TTL:       24 * time.Hour,
		OverFetch: 3,
	}
}

// Engine fills the featured carousel. Manual pins (featured with no end
// time) survive every rotation; only expired automatic selections are
// swept and replaced. A swept article competes for the freed slots again
// while it stays recent and well-liked.
type Engine struct {
	store storage.Store
	cfg   Config
	now   func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(store storage.Store, cfg Config, opts ...Option) *Engine {
	e := &Engine{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rotate sweeps expired featured articles and fills the free slots with the
// most-liked recent candidates. It returns how many articles were newly
// featured.
func (e *Engine) Rotate(ctx context.Context, regionID string) (int, error) {
	now := e.now()

	expired, err := e.store.ExpireFeatured(ctx, regionID, now)
	if err != nil {
		return 0, fmt.Errorf("rotate %s: expire: %w", regionID, err)
	}
	if expired > 0 {
		slog.Info("Expired featured articles", "region", regionID, "count", expired)
	}

	current, err := e.store.ListFeatured(ctx, regionID)
	if err != nil {
		return 0, fmt.Errorf("rotate %s: list featured: %w", regionID, err)
	}
	free := e.cfg.Slots - len(current)
	if free <= 0 {
		slog.Info("Featured slots full", "region", regionID, "occupied", len(current))
		return 0, e.recordRotation(ctx, regionID, now)
	}

	candidates, err := e.store.ListRotationCandidates(ctx, regionID, now.Add(-e.cfg.Lookback), free*e.cfg.OverFetch)
	if err != nil {
		return 0, fmt.Errorf("rotate %s: candidates: %w", regionID, err)
	}
	if len(candidates) == 0 {
		slog.Warn("No rotation candidates", "region", regionID)
		return 0, e.recordRotation(ctx, regionID, now)
	}

	// Candidates arrive newest-first; promote engagement to the primary key
	// while recency breaks ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].LikeCountTotal > candidates[j].LikeCountTotal
	})
	if len(candidates) > free {
		candidates = candidates[:free]
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	if err := e.store.FeatureArticles(ctx, ids, now, now.Add(e.cfg.TTL)); err != nil {
		return 0, fmt.Errorf("rotate %s: feature: %w", regionID, err)
	}

	slog.Info("Rotation complete", "region", regionID, "featured", len(ids), "occupied", len(current)+len(ids))
	return len(ids), e.recordRotation(ctx, regionID, now)
}

// SetFeatured pins or unpins one article by hand. Pinning never sets an end
// time, so the article holds its slot until explicitly unpinned.
func (e *Engine) SetFeatured(ctx context.Context, articleID string, featured bool) error {
	if articleID == "" {
		return apperr.NewValidation("articleId is required")
	}
	now := e.now()
	if err := e.store.SetFeatured(ctx, articleID, featured, nil, now); err != nil {
		return err
	}
	slog.Info("Featured flag updated", "article", articleID, "featured", featured)
	return nil
}

func (e *Engine) recordRotation(ctx context.Context, regionID string, now time.Time) error {
	return e.store.MergeHealth(ctx, domain.HealthRecord{
		RegionID:       regionID,
		LastRotationAt: &now,
		UpdatedAt:      now,
	})
}
