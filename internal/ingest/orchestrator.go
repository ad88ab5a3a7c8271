package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/classify"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/feed"
	"github.com/brightside-news/brightside-server/internal/normalize"
	"github.com/brightside-news/brightside-server/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves all items for one feed URL. Implementations absorb
// fetch/parse failures and return an empty list.
type Fetcher interface {
	Fetch(ctx context.Context, url string) []feed.Item
}

// Config carries the ingestion tunables. Ceilings and floors are
// configuration, not constants, so regions and deployments can be tuned
// independently.
type Config struct {
	// DailyMaxArticles caps articles created per region per editorial day.
	DailyMaxArticles int
	// MinDailyArticles is the content floor the backfill guardrail defends.
	MinDailyArticles int
	// TopCandidates is how many classifier-ranked items enter dedup.
	TopCandidates int
	// BackfillWindow is how far back re-publishable articles are searched.
	BackfillWindow time.Duration
	// FetchConcurrency bounds parallel source fetches.
	FetchConcurrency int
}

func DefaultConfig() Config {
	return Config{
		DailyMaxArticles: 8,
		MinDailyArticles: 3,
		TopCandidates:    10,
		BackfillWindow:   48 * time.Hour,
		FetchConcurrency: 4,
	}
}

// Orchestrator runs the per-region ingestion pipeline: sources -> fetch ->
// classify -> dedup -> normalize -> quota -> backfill -> atomic batch write.
type Orchestrator struct {
	store      storage.Store
	fetcher    Fetcher
	classifier *classify.Classifier
	normalizer *normalize.Normalizer
	regions    *domain.Registry
	cfg        Config
	now        func() time.Time
}

type Option func(*Orchestrator)

// WithClock pins the orchestrator clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(
	store storage.Store,
	fetcher Fetcher,
	classifier *classify.Classifier,
	normalizer *normalize.Normalizer,
	regions *domain.Registry,
	cfg Config,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		fetcher:    fetcher,
		classifier: classifier,
		normalizer: normalizer,
		regions:    regions,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunIngest ingests fresh articles for one region and returns the number
// written. Per-source failures degrade that source to zero items; a failure
// past that point records an error health status and propagates so the
// scheduler's next run retries. The batch commit is the only persistence
// boundary, so a failed run leaves no partial articles behind.
func (o *Orchestrator) RunIngest(ctx context.Context, regionID string) (int, error) {
	region, ok := o.regions.Get(regionID)
	if !ok {
		return 0, apperr.NewValidation("unknown region: " + regionID)
	}

	written, err := o.run(ctx, region)
	if err != nil {
		now := o.now()
		healthErr := o.store.MergeHealth(ctx, domain.HealthRecord{
			RegionID:     regionID,
			Status:       domain.HealthError,
			Error:        err.Error(),
			LastIngestAt: &now,
			UpdatedAt:    now,
		})
		if healthErr != nil {
			slog.Error("Failed to record ingest error health", "region", regionID, "error", healthErr)
		}
		return 0, fmt.Errorf("ingest %s: %w", regionID, err)
	}
	return written, nil
}

func (o *Orchestrator) run(ctx context.Context, region domain.Region) (int, error) {
	now := o.now()
	slog.Info("Starting ingestion", "region", region.ID)

	sources, err := o.store.ListActiveSources(ctx, region.ID)
	if err != nil {
		return 0, err
	}
	if len(sources) == 0 {
		slog.Warn("No active sources", "region", region.ID)
		existing, err := o.store.CountCreatedSince(ctx, region.ID, region.DayWindowStart(now))
		if err != nil {
			return 0, err
		}
		return 0, o.recordOK(ctx, region.ID, now, 0, existing, nil)
	}

	pool, metrics := o.fetchAll(ctx, sources)
	slog.Info("Fetched candidates", "region", region.ID, "sources", len(sources), "items", len(pool))

	kept := o.classifier.Keep(pool)
	for _, item := range kept {
		m := metrics[item.SourceName]
		m.Positive++
		metrics[item.SourceName] = m
	}
	slog.Info("Classifier result", "region", region.ID, "kept", len(kept), "of", len(pool))

	// A day with no positive items still runs the quota and backfill
	// checks, so quiet feeds cannot starve the floor or the health stamp.
	if len(kept) == 0 {
		slog.Warn("No positive items", "region", region.ID)
	}

	top := o.classifier.TopPositive(kept, o.cfg.TopCandidates)

	// Live existence check per candidate rather than a set lookup, to stay
	// correct against concurrent writers.
	var articles []domain.Article
	for _, item := range top {
		seen, err := o.store.SourceURLSeen(ctx, item.Link, time.Time{})
		if err != nil {
			return 0, err
		}
		if seen {
			slog.Debug("Skipping duplicate", "url", item.Link)
			continue
		}
		articles = append(articles, o.normalizer.Normalize(item, item.SourceName, region.ID))
		m := metrics[item.SourceName]
		m.Final++
		metrics[item.SourceName] = m
	}

	windowStart := region.DayWindowStart(now)
	existing, err := o.store.CountCreatedSince(ctx, region.ID, windowStart)
	if err != nil {
		return 0, err
	}

	remaining := o.cfg.DailyMaxArticles - existing
	if remaining <= 0 {
		slog.Info("Daily quota reached", "region", region.ID, "existing", existing)
		return existing, o.recordOK(ctx, region.ID, now, 0, existing, metrics)
	}
	if len(articles) > remaining {
		articles = articles[:remaining]
	}

	articles, err = o.backfill(ctx, region, windowStart, now, existing, articles)
	if err != nil {
		return 0, err
	}

	written, err := o.store.InsertArticles(ctx, articles)
	if err != nil {
		return 0, err
	}

	finalCount := existing + written
	slog.Info("Ingestion complete", "region", region.ID, "written", written, "countToday", finalCount)
	return written, o.recordOK(ctx, region.ID, now, written, finalCount, metrics)
}

// fetchAll pulls every source concurrently and returns the pooled, tagged
// items plus per-source funnel metrics.
func (o *Orchestrator) fetchAll(ctx context.Context, sources []domain.Source) ([]feed.Item, map[string]domain.SourceMetrics) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.FetchConcurrency)

	results := make([][]feed.Item, len(sources))
	for i, src := range sources {
		g.Go(func() error {
			items := o.fetcher.Fetch(gctx, src.FeedURL)
			for j := range items {
				items[j].SourceName = src.Name
				items[j].Weight = src.Weight
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	metrics := make(map[string]domain.SourceMetrics, len(sources))
	var pool []feed.Item
	for i, src := range sources {
		metrics[src.Name] = domain.SourceMetrics{Fetched: len(results[i])}
		pool = append(pool, results[i]...)
	}
	return pool, metrics
}

// backfill re-publishes articles from the trailing window when the day's
// total would fall under the floor, bounded by the floor and the remaining
// quota slots.
func (o *Orchestrator) backfill(
	ctx context.Context,
	region domain.Region,
	windowStart, now time.Time,
	existing int,
	articles []domain.Article,
) ([]domain.Article, error) {
	total := existing + len(articles)
	if total >= o.cfg.MinDailyArticles {
		return articles, nil
	}
	slog.Warn("Below daily floor, attempting backfill", "region", region.ID, "total", total)

	candidates, err := o.store.ListPublishedBetween(ctx, region.ID, now.Add(-o.cfg.BackfillWindow), windowStart, o.cfg.DailyMaxArticles)
	if err != nil {
		return nil, err
	}

	pendingURLs := make(map[string]bool, len(articles))
	for _, a := range articles {
		pendingURLs[a.SourceURL] = true
	}

	need := o.cfg.MinDailyArticles - total
	slots := o.cfg.DailyMaxArticles - total
	if need > slots {
		need = slots
	}

	backfilled := 0
	for _, candidate := range candidates {
		if backfilled >= need {
			break
		}
		if candidate.SourceURL == "" || pendingURLs[candidate.SourceURL] {
			continue
		}
		seen, err := o.store.SourceURLSeen(ctx, candidate.SourceURL, windowStart)
		if err != nil {
			return nil, err
		}
		if seen {
			continue
		}

		// Re-publish under a fresh identity with engagement reset; the
		// original keeps its history.
		articles = append(articles, domain.Article{
			ID:          uuid.NewString(),
			RegionID:    region.ID,
			Title:       candidate.Title,
			Summary:     candidate.Summary,
			SourceName:  candidate.SourceName,
			SourceURL:   candidate.SourceURL,
			ImageURL:    candidate.ImageURL,
			Status:      domain.StatusPublished,
			PublishTime: candidate.PublishTime,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		pendingURLs[candidate.SourceURL] = true
		backfilled++
	}

	if backfilled > 0 {
		slog.Info("Backfilled articles", "region", region.ID, "count", backfilled)
	} else {
		slog.Warn("No suitable backfill articles", "region", region.ID)
	}
	return articles, nil
}

func (o *Orchestrator) recordOK(
	ctx context.Context,
	regionID string,
	now time.Time,
	written, countToday int,
	metrics map[string]domain.SourceMetrics,
) error {
	return o.store.MergeHealth(ctx, domain.HealthRecord{
		RegionID:        regionID,
		Status:          domain.HealthOK,
		LastIngestAt:    &now,
		LastIngestCount: written,
		CountToday:      countToday,
		SourceMetrics:   metrics,
		UpdatedAt:       now,
	})
}
