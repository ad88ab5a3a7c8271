package storage

import (
	"context"
	"time"

	"github.com/brightside-news/brightside-server/internal/domain"
)

type Type string

const (
	PG     Type = "pg"
	Memory Type = "memory"
)

// ArticleStore is the persistence contract for the article aggregate.
// Batch mutations (InsertArticles, FeatureArticles, ExpireFeatured) are
// atomic: they either apply fully or leave prior state intact.
type ArticleStore interface {
	GetArticle(ctx context.Context, id string) (domain.Article, error)

	// InsertArticles conditionally inserts keyed by the article ID (the
	// dedup hash for ingested articles). On conflict only metadata is
	// refreshed; engagement counters and featured state are preserved.
	// Returns the number of newly created articles.
	InsertArticles(ctx context.Context, articles []domain.Article) (int, error)

	// SourceURLSeen reports whether any article carries the source URL,
	// restricted to articles created at or after since when since is
	// non-zero.
	SourceURLSeen(ctx context.Context, sourceURL string, since time.Time) (bool, error)

	CountCreatedSince(ctx context.Context, regionID string, since time.Time) (int, error)

	// ListPublishedBetween returns published articles for the region with
	// publish time in [from, to), newest first.
	ListPublishedBetween(ctx context.Context, regionID string, from, to time.Time, limit int) ([]domain.Article, error)

	ListFeatured(ctx context.Context, regionID string) ([]domain.Article, error)

	// ExpireFeatured clears the featured flag on articles whose featured_end
	// has passed. Manual pins carry a nil featured_end and are never touched.
	ExpireFeatured(ctx context.Context, regionID string, now time.Time) (int, error)

	// ListRotationCandidates returns published, not-currently-featured
	// articles published at or after since, ordered by publish recency then
	// total like count.
	ListRotationCandidates(ctx context.Context, regionID string, since time.Time, limit int) ([]domain.Article, error)

	FeatureArticles(ctx context.Context, ids []string, start, end time.Time) error

	// SetFeatured applies the admin feature/unfeature action. A nil endAt on
	// feature creates a manual pin; unfeature stamps featured_end with now.
	SetFeatured(ctx context.Context, id string, feature bool, endAt *time.Time, now time.Time) error
}

// LikeStore owns like records and the article counters they drive. The
// record mutation and counter update happen in one transaction.
type LikeStore interface {
	// ToggleLike creates the (user, article) like if absent and deletes it
	// if present, adjusting both counters in the same transaction. Counters
	// clamp at zero. Returns whether the like now exists and the updated
	// total.
	ToggleLike(ctx context.Context, userID, articleID string, now time.Time) (liked bool, total int, err error)

	// RecountRecentLikes recomputes every article's 24h counter from like
	// records created at or after since. Returns the number of articles
	// whose counter changed.
	RecountRecentLikes(ctx context.Context, since time.Time) (int, error)
}

type SubmissionStore interface {
	GetSubmission(ctx context.Context, id string) (domain.Submission, error)

	// ResolveSubmission atomically persists the resolved submission and, for
	// approvals, the article created from it.
	ResolveSubmission(ctx context.Context, sub domain.Submission, article *domain.Article) error
}

type SourceStore interface {
	ListActiveSources(ctx context.Context, regionID string) ([]domain.Source, error)
	UpsertSources(ctx context.Context, sources []domain.Source) error
}

type HealthStore interface {
	// MergeHealth merge-writes the per-region status blob: zero-valued
	// fields of rec leave the stored record untouched.
	MergeHealth(ctx context.Context, rec domain.HealthRecord) error
	GetHealth(ctx context.Context, regionID string) (domain.HealthRecord, error)
}

// Store is the full persistence surface consumed by the pipeline jobs.
type Store interface {
	ArticleStore
	LikeStore
	SubmissionStore
	SourceStore
	HealthStore
}
