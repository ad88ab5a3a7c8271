package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/normalize"
	"github.com/brightside-news/brightside-server/internal/storage"
	"github.com/google/uuid"
)

// submissionSourceName labels articles promoted from user submissions.
const submissionSourceName = "Community Submission"

// ApproveRequest carries the moderator's approval decision. RegionID
// overrides the region inferred from the submission's city and state.
// PublishNow publishes immediately instead of at the region's next
// editorial day start.
type ApproveRequest struct {
	SubmissionID string
	ModeratorID  string
	Note         string
	RegionID     string
	PublishNow   bool
}

type RejectRequest struct {
	SubmissionID string
	ModeratorID  string
	Note         string
}

// Service resolves pending submissions. Resolution is terminal: a second
// decision on the same submission fails with a precondition error rather
// than silently rewriting history.
type Service struct {
	store   storage.Store
	regions *domain.Registry
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store storage.Store, regions *domain.Registry, opts ...Option) *Service {
	s := &Service{store: store, regions: regions, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve promotes a pending submission into a published article. The
// submission update and the article insert land in one transaction.
func (s *Service) Approve(ctx context.Context, req ApproveRequest) (domain.Submission, error) {
	sub, err := s.pending(ctx, req.SubmissionID)
	if err != nil {
		return domain.Submission{}, err
	}

	regionID := req.RegionID
	if regionID == "" {
		regionID = s.regions.Infer(sub.City, sub.State).ID
	} else if _, ok := s.regions.Get(regionID); !ok {
		return domain.Submission{}, apperr.NewValidation("unknown region: " + regionID)
	}

	now := s.now()
	publishTime := now
	if !req.PublishNow {
		region, _ := s.regions.Get(regionID)
		publishTime = region.NextWindowStart(now)
	}

	article := domain.Article{
		ID:          uuid.NewString(),
		RegionID:    regionID,
		Title:       normalize.CleanText(sub.Title),
		Summary:     normalize.Truncate(normalize.CleanText(sub.Description), 300),
		SourceName:  submissionSourceName,
		ImageURL:    sub.PhotoURL,
		Status:      domain.StatusPublished,
		PublishTime: publishTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sub.Status = domain.SubmissionApproved
	sub.ModeratorID = req.ModeratorID
	sub.ModeratorNote = req.Note
	sub.ArticleID = article.ID
	sub.ModeratedAt = &now
	sub.UpdatedAt = now

	if err := s.store.ResolveSubmission(ctx, sub, &article); err != nil {
		return domain.Submission{}, fmt.Errorf("approve submission %s: %w", sub.ID, err)
	}

	slog.Info("Submission approved",
		"submission", sub.ID, "article", article.ID,
		"region", regionID, "publishTime", publishTime)
	return sub, nil
}

// Reject marks a pending submission rejected without creating an article.
func (s *Service) Reject(ctx context.Context, req RejectRequest) (domain.Submission, error) {
	sub, err := s.pending(ctx, req.SubmissionID)
	if err != nil {
		return domain.Submission{}, err
	}

	now := s.now()
	sub.Status = domain.SubmissionRejected
	sub.ModeratorID = req.ModeratorID
	sub.ModeratorNote = req.Note
	sub.ModeratedAt = &now
	sub.UpdatedAt = now

	if err := s.store.ResolveSubmission(ctx, sub, nil); err != nil {
		return domain.Submission{}, fmt.Errorf("reject submission %s: %w", sub.ID, err)
	}

	slog.Info("Submission rejected", "submission", sub.ID, "moderator", req.ModeratorID)
	return sub, nil
}

func (s *Service) pending(ctx context.Context, id string) (domain.Submission, error) {
	if id == "" {
		return domain.Submission{}, apperr.NewValidation("submissionId is required")
	}
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}
	if sub.Resolved() {
		return domain.Submission{}, apperr.NewPrecondition("submission already " + string(sub.Status))
	}
	return sub, nil
}
