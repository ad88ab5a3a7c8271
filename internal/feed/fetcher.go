package feed

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "BrightSide-Bot/1.0"
)

// Item is one normalized raw feed entry. Source tagging (name, weight) is
// applied by the orchestrator before classification.
type Item struct {
	Title      string
	Link       string
	Summary    string
	ImageURL   string
	Published  *time.Time
	SourceName string
	Weight     int
}

// Fetcher retrieves and parses RSS/Atom feeds. A failing feed never fails
// the caller: errors are logged and an empty list is returned so one broken
// source cannot abort a whole region's batch.
type Fetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	return &Fetcher{parser: p, timeout: timeout}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) []Item {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parsed, err := f.parser.ParseURLWithContext(url, fetchCtx)
	if err != nil {
		slog.Error("Feed fetch failed", "url", url, "error", err)
		return nil
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, raw := range parsed.Items {
		title := strings.TrimSpace(raw.Title)
		link := strings.TrimSpace(raw.Link)
		if title == "" || link == "" {
			continue
		}

		items = append(items, Item{
			Title:     title,
			Link:      link,
			Summary:   itemSummary(raw),
			ImageURL:  ExtractImageURL(raw),
			Published: raw.PublishedParsed,
		})
	}

	slog.Info("Parsed feed", "url", url, "items", len(items))
	return items
}

func itemSummary(item *gofeed.Item) string {
	if s := strings.TrimSpace(item.Description); s != "" {
		return s
	}
	return strings.TrimSpace(item.Content)
}

// imageStrategy tries to pull an image URL out of a raw item, returning ""
// when it has nothing.
type imageStrategy func(*gofeed.Item) string

// Strategies are tried left to right; the first hit wins.
var imageStrategies = []imageStrategy{
	fromEnclosure,
	fromMediaContent,
	fromMediaThumbnail,
	fromEmbeddedImg,
}

// ExtractImageURL resolves an item's image by trying each extraction
// strategy in order: enclosure, media:content, media:thumbnail, then an
// <img> embedded in the encoded content.
func ExtractImageURL(item *gofeed.Item) string {
	for _, strategy := range imageStrategies {
		if url := strategy(item); url != "" {
			return url
		}
	}
	return ""
}

func fromEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func fromMediaExtension(item *gofeed.Item, name string) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, ext := range media[name] {
		if url := ext.Attrs["url"]; url != "" {
			return url
		}
	}
	return ""
}

func fromMediaContent(item *gofeed.Item) string {
	return fromMediaExtension(item, "content")
}

func fromMediaThumbnail(item *gofeed.Item) string {
	return fromMediaExtension(item, "thumbnail")
}

func fromEmbeddedImg(item *gofeed.Item) string {
	html := item.Content
	if html == "" {
		html = item.Description
	}
	if !strings.Contains(html, "<img") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}
