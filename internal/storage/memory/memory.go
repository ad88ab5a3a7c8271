package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/storage"
)

// Store is an in-memory implementation of the full storage surface. It backs
// unit tests and local development runs without a database.
type Store struct {
	mu          sync.RWMutex
	articles    map[string]domain.Article
	likes       map[string]domain.Like
	submissions map[string]domain.Submission
	sources     map[string]domain.Source
	health      map[string]domain.HealthRecord
}

func NewStore() *Store {
	return &Store{
		articles:    make(map[string]domain.Article),
		likes:       make(map[string]domain.Like),
		submissions: make(map[string]domain.Submission),
		sources:     make(map[string]domain.Source),
		health:      make(map[string]domain.HealthRecord),
	}
}

func likeKey(userID, articleID string) string {
	return userID + "|" + articleID
}

func sourceKey(regionID, feedURL string) string {
	return regionID + "|" + feedURL
}

func (s *Store) GetArticle(_ context.Context, id string) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return domain.Article{}, apperr.NewNotFound("article " + id + " not found")
	}
	return a, nil
}

func (s *Store) InsertArticles(_ context.Context, articles []domain.Article) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, a := range articles {
		if existing, ok := s.articles[a.ID]; ok {
			// Repeat write: refresh metadata only, engagement and featured
			// state survive.
			existing.Title = a.Title
			existing.Summary = a.Summary
			existing.SourceName = a.SourceName
			existing.ImageURL = a.ImageURL
			existing.UpdatedAt = a.UpdatedAt
			s.articles[a.ID] = existing
			continue
		}
		s.articles[a.ID] = a
		created++
	}
	return created, nil
}

func (s *Store) SourceURLSeen(_ context.Context, sourceURL string, since time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sourceURL == "" {
		return false, nil
	}
	for _, a := range s.articles {
		if a.SourceURL != sourceURL {
			continue
		}
		if since.IsZero() || !a.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CountCreatedSince(_ context.Context, regionID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, a := range s.articles {
		if a.RegionID == regionID && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListPublishedBetween(_ context.Context, regionID string, from, to time.Time, limit int) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Article
	for _, a := range s.articles {
		if a.RegionID != regionID || a.Status != domain.StatusPublished {
			continue
		}
		if a.PublishTime.Before(from) || !a.PublishTime.Before(to) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishTime.After(out[j].PublishTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListFeatured(_ context.Context, regionID string) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Article
	for _, a := range s.articles {
		if a.RegionID == regionID && a.IsFeatured {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) ExpireFeatured(_ context.Context, regionID string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, a := range s.articles {
		if a.RegionID != regionID {
			continue
		}
		if a.FeaturedExpired(now) {
			a.IsFeatured = false
			a.UpdatedAt = now
			s.articles[id] = a
			expired++
		}
	}
	return expired, nil
}

func (s *Store) ListRotationCandidates(_ context.Context, regionID string, since time.Time, limit int) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Article
	for _, a := range s.articles {
		if a.RegionID != regionID || a.Status != domain.StatusPublished || a.IsFeatured {
			continue
		}
		if a.PublishTime.Before(since) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishTime.Equal(out[j].PublishTime) {
			return out[i].PublishTime.After(out[j].PublishTime)
		}
		return out[i].LikeCountTotal > out[j].LikeCountTotal
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FeatureArticles(_ context.Context, ids []string, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	endCopy := end
	for _, id := range ids {
		a, ok := s.articles[id]
		if !ok {
			continue
		}
		a.IsFeatured = true
		a.FeaturedStart = &start
		a.FeaturedEnd = &endCopy
		a.UpdatedAt = start
		s.articles[id] = a
	}
	return nil
}

func (s *Store) SetFeatured(_ context.Context, id string, feature bool, endAt *time.Time, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[id]
	if !ok {
		return apperr.NewNotFound("article " + id + " not found")
	}
	if feature {
		a.IsFeatured = true
		a.FeaturedStart = &now
		a.FeaturedEnd = endAt
	} else {
		a.IsFeatured = false
		a.FeaturedEnd = &now
	}
	a.UpdatedAt = now
	s.articles[id] = a
	return nil
}

func (s *Store) ToggleLike(_ context.Context, userID, articleID string, now time.Time) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[articleID]
	if !ok {
		return false, 0, apperr.NewNotFound("article " + articleID + " not found")
	}

	key := likeKey(userID, articleID)
	if _, exists := s.likes[key]; exists {
		delete(s.likes, key)
		a.LikeCountTotal = max(0, a.LikeCountTotal-1)
		a.LikeCount24h = max(0, a.LikeCount24h-1)
		a.UpdatedAt = now
		s.articles[articleID] = a
		return false, a.LikeCountTotal, nil
	}

	s.likes[key] = domain.Like{
		UserID:    userID,
		ArticleID: articleID,
		RegionID:  a.RegionID,
		CreatedAt: now,
	}
	a.LikeCountTotal++
	a.LikeCount24h++
	a.UpdatedAt = now
	s.articles[articleID] = a
	return true, a.LikeCountTotal, nil
}

func (s *Store) RecountRecentLikes(_ context.Context, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := make(map[string]int)
	for _, l := range s.likes {
		if !l.CreatedAt.Before(since) {
			recent[l.ArticleID]++
		}
	}

	changed := 0
	for id, a := range s.articles {
		want := recent[id]
		if a.LikeCount24h != want {
			a.LikeCount24h = want
			s.articles[id] = a
			changed++
		}
	}
	return changed, nil
}

func (s *Store) GetSubmission(_ context.Context, id string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[id]
	if !ok {
		return domain.Submission{}, apperr.NewNotFound("submission " + id + " not found")
	}
	return sub, nil
}

func (s *Store) ResolveSubmission(_ context.Context, sub domain.Submission, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.submissions[sub.ID]; !ok {
		return apperr.NewNotFound("submission " + sub.ID + " not found")
	}
	s.submissions[sub.ID] = sub
	if article != nil {
		s.articles[article.ID] = *article
	}
	return nil
}

func (s *Store) ListActiveSources(_ context.Context, regionID string) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Source
	for _, src := range s.sources {
		if src.RegionID == regionID && src.Active {
			out = append(out, src)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpsertSources(_ context.Context, sources []domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, src := range sources {
		s.sources[sourceKey(src.RegionID, src.FeedURL)] = src
	}
	return nil
}

func (s *Store) MergeHealth(_ context.Context, rec domain.HealthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.health[rec.RegionID]
	cur.RegionID = rec.RegionID
	if rec.Status != "" {
		cur.Status = rec.Status
		cur.Error = rec.Error
	}
	if rec.LastIngestAt != nil {
		cur.LastIngestAt = rec.LastIngestAt
		cur.LastIngestCount = rec.LastIngestCount
		cur.CountToday = rec.CountToday
		cur.SourceMetrics = rec.SourceMetrics
	}
	if rec.LastRotationAt != nil {
		cur.LastRotationAt = rec.LastRotationAt
	}
	if rec.LastDigestAt != nil {
		cur.LastDigestAt = rec.LastDigestAt
		cur.LastDigestSize = rec.LastDigestSize
	}
	cur.UpdatedAt = rec.UpdatedAt
	s.health[rec.RegionID] = cur
	return nil
}

func (s *Store) GetHealth(_ context.Context, regionID string) (domain.HealthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.health[regionID]
	if !ok {
		return domain.HealthRecord{}, apperr.NewNotFound("no health record for region " + regionID)
	}
	return rec, nil
}

// SeedArticles loads articles verbatim, bypassing the metadata-refresh
// conflict handling. Test and local-dev helper.
func (s *Store) SeedArticles(articles ...domain.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range articles {
		s.articles[a.ID] = a
	}
}

// SeedSubmissions loads submissions verbatim. Test and local-dev helper.
func (s *Store) SeedSubmissions(subs ...domain.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range subs {
		s.submissions[sub.ID] = sub
	}
}

var _ storage.Store = (*Store)(nil)
