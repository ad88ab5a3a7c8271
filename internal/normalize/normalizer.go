package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/feed"
)

const (
	maxTitleLen   = 200
	maxSummaryLen = 300
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	htmlEntityPattern = regexp.MustCompile(`&[^;\s]+;`)
)

// Normalizer maps raw feed items onto canonical article records. It never
// fails: unparseable publish dates fall back to the current time and an
// empty summary falls back to the title.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerAt pins the normalizer clock, for tests.
func NewNormalizerAt(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

func (n *Normalizer) Normalize(item feed.Item, sourceName, regionID string) domain.Article {
	now := n.now()

	publishTime := now
	if item.Published != nil {
		publishTime = *item.Published
	}

	summary := item.Summary
	if summary == "" {
		summary = item.Title
	}
	summary = Truncate(CleanText(summary), maxSummaryLen)

	title := CleanText(item.Title)
	if r := []rune(title); len(r) > maxTitleLen {
		title = string(r[:maxTitleLen])
	}

	return domain.Article{
		ID:          DedupHash(item.Link, item.Title, sourceName, publishTime),
		RegionID:    regionID,
		Title:       title,
		Summary:     summary,
		SourceName:  sourceName,
		SourceURL:   item.Link,
		ImageURL:    item.ImageURL,
		Status:      domain.StatusPublished,
		PublishTime: publishTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CleanText strips HTML tags and entities via pattern substitution and trims
// the result.
func CleanText(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = htmlEntityPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate caps s at limit runes, replacing the tail with "..." when it was
// cut. Counting runes keeps multi-byte characters intact at the boundary.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

// DedupHash derives the stable article identity used for idempotent
// re-ingestion. It keys on the canonical source URL, falling back to a
// title|source|date composite when the URL is absent.
func DedupHash(sourceURL, title, sourceName string, published time.Time) string {
	key := sourceURL
	if key == "" {
		key = title + "|" + sourceName + "|" + published.UTC().Format(time.RFC3339)
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}
