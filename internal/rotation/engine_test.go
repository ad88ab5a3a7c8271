package rotation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ctx     = context.Background()
	testNow = time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
)

func testEngine(store *memory.Store) *Engine {
	return NewEngine(store, DefaultConfig(), WithClock(func() time.Time { return testNow }))
}

func candidate(id string, likes int, age time.Duration) domain.Article {
	publish := testNow.Add(-age)
	return domain.Article{
		ID:             id,
		RegionID:       "slc",
		Title:          "Candidate " + id,
		SourceURL:      "https://example.com/" + id,
		Status:         domain.StatusPublished,
		PublishTime:    publish,
		CreatedAt:      publish,
		LikeCountTotal: likes,
	}
}

func TestRotate_FillsSlotsByEngagement(t *testing.T) {
	store := memory.NewStore()
	store.SeedArticles(
		candidate("low", 1, time.Hour),
		candidate("high", 9, 3*time.Hour),
		candidate("mid", 5, 2*time.Hour),
		candidate("zero", 0, 30*time.Minute),
	)

	n, err := testEngine(store).Rotate(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	featured, err := store.ListFeatured(ctx, "slc")
	require.NoError(t, err)
	require.Len(t, featured, 3)

	ids := make(map[string]bool)
	for _, a := range featured {
		ids[a.ID] = true
		require.NotNil(t, a.FeaturedEnd, "rotation selections must carry an expiry")
		assert.True(t, a.FeaturedEnd.Equal(testNow.Add(24*time.Hour)))
	}
	assert.True(t, ids["high"] && ids["mid"] && ids["low"])
	assert.False(t, ids["zero"])
}

func TestRotate_PinHoldsItsSlot(t *testing.T) {
	store := memory.NewStore()

	pinned := candidate("pinned", 0, time.Hour)
	pinned.IsFeatured = true
	store.SeedArticles(pinned, candidate("c1", 3, time.Hour), candidate("c2", 2, time.Hour), candidate("c3", 1, time.Hour))

	n, err := testEngine(store).Rotate(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "a pin leaves only two free slots")

	featured, err := store.ListFeatured(ctx, "slc")
	require.NoError(t, err)
	require.Len(t, featured, 3)

	for _, a := range featured {
		if a.ID == "pinned" {
			assert.Nil(t, a.FeaturedEnd, "the pin must keep its open-ended window")
		}
	}
}

func TestRotate_SweepsExpiredThenRefills(t *testing.T) {
	store := memory.NewStore()

	past := testNow.Add(-time.Hour)
	expired := candidate("expired", 0, 24*time.Hour)
	expired.IsFeatured = true
	expired.FeaturedEnd = &past

	store.SeedArticles(expired, candidate("fresh", 4, time.Hour))

	n, err := testEngine(store).Rotate(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "a swept article re-enters the candidate pool")

	featured, err := store.ListFeatured(ctx, "slc")
	require.NoError(t, err)
	require.Len(t, featured, 2)

	byID := make(map[string]domain.Article, len(featured))
	for _, a := range featured {
		byID[a.ID] = a
	}
	require.Contains(t, byID, "fresh")
	require.Contains(t, byID, "expired")
	require.NotNil(t, byID["expired"].FeaturedEnd)
	assert.True(t, byID["expired"].FeaturedEnd.Equal(testNow.Add(24*time.Hour)),
		"re-selection restarts the expiry window")
}

func TestRotate_FullCarouselWritesNothing(t *testing.T) {
	store := memory.NewStore()

	future := testNow.Add(12 * time.Hour)
	for i := 0; i < 3; i++ {
		a := candidate(fmt.Sprintf("f%d", i), 0, time.Hour)
		a.IsFeatured = true
		a.FeaturedEnd = &future
		store.SeedArticles(a)
	}
	store.SeedArticles(candidate("waiting", 10, time.Hour))

	n, err := testEngine(store).Rotate(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	waiting, err := store.GetArticle(ctx, "waiting")
	require.NoError(t, err)
	assert.False(t, waiting.IsFeatured)
}

func TestRotate_IgnoresStaleCandidates(t *testing.T) {
	store := memory.NewStore()
	store.SeedArticles(candidate("stale", 50, 8*24*time.Hour))

	n, err := testEngine(store).Rotate(ctx, "slc")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRotate_StampsHealth(t *testing.T) {
	store := memory.NewStore()
	store.SeedArticles(candidate("c1", 1, time.Hour))

	_, err := testEngine(store).Rotate(ctx, "slc")
	require.NoError(t, err)

	rec, err := store.GetHealth(ctx, "slc")
	require.NoError(t, err)
	require.NotNil(t, rec.LastRotationAt)
	assert.True(t, rec.LastRotationAt.Equal(testNow))
}

func TestSetFeatured(t *testing.T) {
	store := memory.NewStore()
	store.SeedArticles(candidate("a1", 0, time.Hour))
	e := testEngine(store)

	require.NoError(t, e.SetFeatured(ctx, "a1", true))
	a, err := store.GetArticle(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, a.IsFeatured)
	assert.True(t, a.ManuallyPinned())

	require.NoError(t, e.SetFeatured(ctx, "a1", false))
	a, err = store.GetArticle(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, a.IsFeatured)

	err = e.SetFeatured(ctx, "", true)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)

	err = e.SetFeatured(ctx, "missing", true)
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
}
