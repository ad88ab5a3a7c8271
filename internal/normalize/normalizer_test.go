package normalize

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/brightside-news/brightside-server/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	return NewNormalizerAt(func() time.Time { return testNow })
}

func TestNormalize(t *testing.T) {
	n := testNormalizer()
	published := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

	article := n.Normalize(feed.Item{
		Title:     "Volunteers plant <b>1,000</b> trees",
		Link:      "https://example.com/trees",
		Summary:   "<p>A record turnout &amp; a great day.</p>",
		ImageURL:  "https://example.com/trees.jpg",
		Published: &published,
	}, "Example News", "slc")

	assert.Equal(t, "Volunteers plant 1,000 trees", article.Title)
	assert.Equal(t, "A record turnout  a great day.", article.Summary)
	assert.Equal(t, "Example News", article.SourceName)
	assert.Equal(t, "https://example.com/trees", article.SourceURL)
	assert.Equal(t, "slc", article.RegionID)
	assert.True(t, article.PublishTime.Equal(published))
	assert.True(t, article.CreatedAt.Equal(testNow))
	assert.Len(t, article.ID, 16)
}

func TestNormalize_Fallbacks(t *testing.T) {
	n := testNormalizer()

	article := n.Normalize(feed.Item{
		Title: "Short and sweet",
		Link:  "https://example.com/short",
	}, "Example News", "slc")

	// Missing publish date falls back to now, missing summary to the title.
	assert.True(t, article.PublishTime.Equal(testNow))
	assert.Equal(t, "Short and sweet", article.Summary)
}

func TestNormalize_Truncation(t *testing.T) {
	n := testNormalizer()

	article := n.Normalize(feed.Item{
		Title:   strings.Repeat("t", 250),
		Link:    "https://example.com/long",
		Summary: strings.Repeat("s", 400),
	}, "Example News", "slc")

	assert.Len(t, article.Title, 200)
	assert.Len(t, article.Summary, 300)
	assert.True(t, strings.HasSuffix(article.Summary, "..."))
}

func TestNormalize_TruncationKeepsRunesIntact(t *testing.T) {
	n := testNormalizer()

	// A multi-byte character straddles the summary cut point.
	article := n.Normalize(feed.Item{
		Title:   strings.Repeat("é", 250),
		Link:    "https://example.com/wide",
		Summary: strings.Repeat("a", 296) + "élan!",
	}, "Example News", "slc")

	assert.True(t, utf8.ValidString(article.Title))
	assert.True(t, utf8.ValidString(article.Summary))
	assert.Equal(t, 200, utf8.RuneCountInString(article.Title))
	assert.Equal(t, 300, utf8.RuneCountInString(article.Summary))
	assert.True(t, strings.HasSuffix(article.Summary, "..."))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"under limit untouched", "short", 10, "short"},
		{"at limit untouched", "exact", 5, "exact"},
		{"over limit gets ellipsis", "abcdefghij", 8, "abcde..."},
		{"cuts on rune boundaries", "ααααααααα", 8, "ααααα..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestDedupHash(t *testing.T) {
	published := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

	withURL := DedupHash("https://example.com/a", "ignored", "ignored", published)
	require.Len(t, withURL, 16)

	// URL dominates: title and source do not change the hash.
	same := DedupHash("https://example.com/a", "other title", "other source", published.Add(time.Hour))
	assert.Equal(t, withURL, same)

	other := DedupHash("https://example.com/b", "ignored", "ignored", published)
	assert.NotEqual(t, withURL, other)
}

func TestDedupHash_Fallback(t *testing.T) {
	published := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

	a := DedupHash("", "Title", "Source", published)
	b := DedupHash("", "Title", "Source", published)
	assert.Equal(t, a, b)

	c := DedupHash("", "Title", "Source", published.Add(time.Minute))
	assert.NotEqual(t, a, c)

	d := DedupHash("", "Title", "Other Source", published)
	assert.NotEqual(t, a, d)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tags stripped", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities replaced", "fish &amp; chips", "fish  chips"},
		{"whitespace trimmed", "  padded  ", "padded"},
		{"plain text untouched", "no markup here", "no markup here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}
