package domain

import "time"

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission is a user-proposed story awaiting review. Status only moves
// pending -> approved or pending -> rejected and is terminal once resolved.
type Submission struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	City        string           `json:"city"`
	State       string           `json:"state"`
	PhotoURL    string           `json:"photoUrl,omitempty"`
	Status      SubmissionStatus `json:"status"`

	ModeratorID   string     `json:"moderatorId,omitempty"`
	ModeratorNote string     `json:"moderatorNote,omitempty"`
	ArticleID     string     `json:"articleId,omitempty"`
	ModeratedAt   *time.Time `json:"moderatedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Submission) Resolved() bool {
	return s.Status != SubmissionPending
}
