package domain

import "time"

// Like records that one user liked one article. The key is the deterministic
// (user, article) pair, so a user can hold at most one like per article.
// Creating and deleting likes is the only path that mutates article like
// counts.
type Like struct {
	UserID    string    `json:"userId"`
	ArticleID string    `json:"articleId"`
	RegionID  string    `json:"regionId"`
	CreatedAt time.Time `json:"createdAt"`
}
