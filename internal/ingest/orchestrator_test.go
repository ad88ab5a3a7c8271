package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/classify"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/feed"
	"github.com/brightside-news/brightside-server/internal/normalize"
	"github.com/brightside-news/brightside-server/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

// Noon UTC is 6 a.m. in Denver, one hour past the cutover.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubFetcher struct {
	items map[string][]feed.Item
}

func (f *stubFetcher) Fetch(_ context.Context, url string) []feed.Item {
	return f.items[url]
}

func positiveItem(n int) feed.Item {
	published := testNow.Add(-time.Hour)
	return feed.Item{
		Title:     fmt.Sprintf("Volunteer story %d", n),
		Link:      fmt.Sprintf("https://example.com/story-%d", n),
		Summary:   "A community volunteer effort.",
		Published: &published,
	}
}

func testOrchestrator(t *testing.T, store *memory.Store, fetcher Fetcher, cfg Config) *Orchestrator {
	t.Helper()

	regions, err := domain.NewRegistry("slc", []domain.Region{
		{ID: "slc", Name: "Salt Lake City", TZ: "America/Denver"},
	})
	require.NoError(t, err)

	clock := func() time.Time { return testNow }
	return NewOrchestrator(
		store,
		fetcher,
		classify.NewClassifier(classify.DefaultPolicy()),
		normalize.NewNormalizerAt(clock),
		regions,
		cfg,
		WithClock(clock),
	)
}

func seedSource(t *testing.T, store *memory.Store, name, url string) {
	t.Helper()
	require.NoError(t, store.UpsertSources(ctx, []domain.Source{
		{RegionID: "slc", FeedURL: url, Name: name, Weight: 1, Active: true},
	}))
}

func TestRunIngest(t *testing.T) {
	store := memory.NewStore()
	seedSource(t, store, "Test Source", "https://example.com/rss")

	fetcher := &stubFetcher{items: map[string][]feed.Item{
		"https://example.com/rss": {
			positiveItem(1),
			positiveItem(2),
			{Title: "Car crash on I-80", Link: "https://example.com/crash"},
		},
	}}

	o := testOrchestrator(t, store, fetcher, DefaultConfig())
	written, err := o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	rec, err := store.GetHealth(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthOK, rec.Status)
	assert.Equal(t, 2, rec.LastIngestCount)
	assert.Equal(t, 2, rec.CountToday)

	m := rec.SourceMetrics["Test Source"]
	assert.Equal(t, 3, m.Fetched)
	assert.Equal(t, 2, m.Positive)
	assert.Equal(t, 2, m.Final)
}

func TestRunIngest_RerunIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	seedSource(t, store, "Test Source", "https://example.com/rss")

	fetcher := &stubFetcher{items: map[string][]feed.Item{
		"https://example.com/rss": {positiveItem(1), positiveItem(2)},
	}}

	o := testOrchestrator(t, store, fetcher, DefaultConfig())

	written, err := o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	require.Equal(t, 2, written)

	written, err = o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 0, written, "second run must skip every already-seen URL")

	count, err := store.CountCreatedSince(ctx, "slc", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunIngest_DailyQuota(t *testing.T) {
	store := memory.NewStore()
	seedSource(t, store, "Test Source", "https://example.com/rss")

	var items []feed.Item
	for i := 0; i < 12; i++ {
		items = append(items, positiveItem(i))
	}
	fetcher := &stubFetcher{items: map[string][]feed.Item{"https://example.com/rss": items}}

	cfg := DefaultConfig()
	cfg.TopCandidates = 12
	o := testOrchestrator(t, store, fetcher, cfg)

	written, err := o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 8, written, "writes must stop at the daily ceiling")
}

func TestRunIngest_QuotaAlreadyExhausted(t *testing.T) {
	store := memory.NewStore()
	seedSource(t, store, "Test Source", "https://example.com/rss")

	// The day already holds a full quota of articles.
	for i := 0; i < 8; i++ {
		store.SeedArticles(domain.Article{
			ID:          fmt.Sprintf("existing-%d", i),
			RegionID:    "slc",
			Status:      domain.StatusPublished,
			SourceURL:   fmt.Sprintf("https://example.com/existing-%d", i),
			PublishTime: testNow.Add(-time.Hour),
			CreatedAt:   testNow.Add(-time.Hour),
		})
	}

	fetcher := &stubFetcher{items: map[string][]feed.Item{
		"https://example.com/rss": {positiveItem(1)},
	}}

	o := testOrchestrator(t, store, fetcher, DefaultConfig())
	count, err := o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 8, count)

	seen, err := store.SourceURLSeen(ctx, "https://example.com/story-1", time.Time{})
	require.NoError(t, err)
	assert.False(t, seen, "nothing may be written past the quota")
}

func TestRunIngest_BackfillDefendsFloor(t *testing.T) {
	store := memory.NewStore()
	seedSource(t, store, "Test Source", "https://example.com/rss")

	// Two re-publishable articles from yesterday, outside today's window.
	yesterday := testNow.Add(-20 * time.Hour)
	store.SeedArticles(
		domain.Article{
			ID: "y1", RegionID: "slc", Title: "Yesterday story one",
			SourceURL: "https://example.com/y1", SourceName: "Test Source",
			Status: domain.StatusPublished, PublishTime: yesterday, CreatedAt: yesterday,
		},
		domain.Article{
			ID: "y2", RegionID: "slc", Title: "Yesterday story two",
			SourceURL: "https://example.com/y2", SourceName: "Test Source",
			Status: domain.StatusPublished, PublishTime: yesterday, CreatedAt: yesterday,
		},
	)

	// Today's feed yields a single fresh story.
	fetcher := &stubFetcher{items: map[string][]feed.Item{
		"https://example.com/rss": {positiveItem(1)},
	}}

	o := testOrchestrator(t, store, fetcher, DefaultConfig())
	written, err := o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 3, written, "one fresh write plus two backfills reach the floor")

	// Backfill copies are fresh rows with reset engagement.
	windowStart := testNow.Add(-7 * time.Hour)
	count, err := store.CountCreatedSince(ctx, "slc", windowStart)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRunIngest_BackfillRunsWithoutPositives(t *testing.T) {
	store := memory.NewStore()
	seedSource(t, store, "Test Source", "https://example.com/rss")

	// Three re-publishable articles from yesterday.
	yesterday := testNow.Add(-20 * time.Hour)
	for i := 1; i <= 3; i++ {
		store.SeedArticles(domain.Article{
			ID: fmt.Sprintf("y%d", i), RegionID: "slc", Title: fmt.Sprintf("Yesterday story %d", i),
			SourceURL: fmt.Sprintf("https://example.com/y%d", i), SourceName: "Test Source",
			Status: domain.StatusPublished, PublishTime: yesterday, CreatedAt: yesterday,
		})
	}

	// Every fresh item trips the veto list, so the classifier keeps nothing.
	fetcher := &stubFetcher{items: map[string][]feed.Item{
		"https://example.com/rss": {
			{Title: "Fatal crash closes I-15", Link: "https://example.com/crash"},
			{Title: "Election fight heats up", Link: "https://example.com/election"},
		},
	}}

	o := testOrchestrator(t, store, fetcher, DefaultConfig())
	written, err := o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 3, written, "an all-vetoed day still backfills up to the floor")

	windowStart := testNow.Add(-7 * time.Hour)
	count, err := store.CountCreatedSince(ctx, "slc", windowStart)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	rec, err := store.GetHealth(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthOK, rec.Status)
	assert.Equal(t, 3, rec.LastIngestCount)
	assert.Equal(t, 0, rec.SourceMetrics["Test Source"].Positive)
}

func TestRunIngest_NoBackfillWhenFloorMet(t *testing.T) {
	store := memory.NewStore()
	seedSource(t, store, "Test Source", "https://example.com/rss")

	yesterday := testNow.Add(-20 * time.Hour)
	store.SeedArticles(domain.Article{
		ID: "y1", RegionID: "slc", Title: "Yesterday story",
		SourceURL: "https://example.com/y1", SourceName: "Test Source",
		Status: domain.StatusPublished, PublishTime: yesterday, CreatedAt: yesterday,
	})

	fetcher := &stubFetcher{items: map[string][]feed.Item{
		"https://example.com/rss": {positiveItem(1), positiveItem(2), positiveItem(3)},
	}}

	o := testOrchestrator(t, store, fetcher, DefaultConfig())
	written, err := o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 3, written, "floor met by fresh items, no backfill")
}

func TestRunIngest_UnknownRegion(t *testing.T) {
	o := testOrchestrator(t, memory.NewStore(), &stubFetcher{}, DefaultConfig())

	_, err := o.RunIngest(ctx, "nowhere")
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRunIngest_NoSources(t *testing.T) {
	store := memory.NewStore()
	o := testOrchestrator(t, store, &stubFetcher{}, DefaultConfig())

	written, err := o.RunIngest(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 0, written)

	// A no-op run still stamps the health record, so monitoring can tell a
	// quiet region from a dead one.
	rec, err := store.GetHealth(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthOK, rec.Status)
	require.NotNil(t, rec.LastIngestAt)
	assert.True(t, rec.LastIngestAt.Equal(testNow))
}

type failingStore struct {
	*memory.Store
}

func (s *failingStore) CountCreatedSince(context.Context, string, time.Time) (int, error) {
	return 0, errors.New("connection lost")
}

func TestRunIngest_FailureRecordsErrorHealth(t *testing.T) {
	mem := memory.NewStore()
	seedSource(t, mem, "Test Source", "https://example.com/rss")

	fetcher := &stubFetcher{items: map[string][]feed.Item{
		"https://example.com/rss": {positiveItem(1)},
	}}

	regions, err := domain.NewRegistry("slc", []domain.Region{
		{ID: "slc", TZ: "America/Denver"},
	})
	require.NoError(t, err)

	clock := func() time.Time { return testNow }
	o := NewOrchestrator(
		&failingStore{Store: mem},
		fetcher,
		classify.NewClassifier(classify.DefaultPolicy()),
		normalize.NewNormalizerAt(clock),
		regions,
		DefaultConfig(),
		WithClock(clock),
	)

	_, err = o.RunIngest(ctx, "slc")
	require.Error(t, err)

	rec, err := mem.GetHealth(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthError, rec.Status)
	assert.Contains(t, rec.Error, "connection lost")
}
