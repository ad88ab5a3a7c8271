package domain

import (
	"time"
)

type ArticleStatus string

const (
	StatusPublished ArticleStatus = "published"
	StatusDraft     ArticleStatus = "draft"
	StatusArchived  ArticleStatus = "archived"
)

// Article is the central entity of the content pipeline. Articles created by
// ingestion use the content-derived dedup hash as their ID, which makes
// re-ingestion of the same story an idempotent no-op. Articles created by
// moderation get an opaque generated id.
type Article struct {
	ID         string        `json:"id"`
	RegionID   string        `json:"regionId"`
	Title      string        `json:"title"`
	Summary    string        `json:"summary"`
	SourceName string        `json:"sourceName"`
	SourceURL  string        `json:"sourceUrl"`
	ImageURL   string        `json:"imageUrl,omitempty"`
	Status     ArticleStatus `json:"status"`

	PublishTime time.Time `json:"publishTime"`

	// is_featured with a nil FeaturedEnd is a manual pin: it persists until
	// an explicit unfeature. A non-nil FeaturedEnd is an auto-featured
	// article with a hard expiry.
	IsFeatured    bool       `json:"isFeatured"`
	FeaturedStart *time.Time `json:"featuredStart,omitempty"`
	FeaturedEnd   *time.Time `json:"featuredEnd,omitempty"`

	LikeCountTotal int     `json:"likeCountTotal"`
	LikeCount24h   int     `json:"likeCount24h"`
	HotScore       float64 `json:"hotScore"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ManuallyPinned reports whether the article is pinned by an admin: featured
// with no expiry. The rotation engine never evicts pinned articles.
func (a *Article) ManuallyPinned() bool {
	return a.IsFeatured && a.FeaturedEnd == nil
}

// FeaturedExpired reports whether an auto-featured window has passed.
func (a *Article) FeaturedExpired(now time.Time) bool {
	return a.IsFeatured && a.FeaturedEnd != nil && !a.FeaturedEnd.After(now)
}
