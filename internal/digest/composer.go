package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/notify"
	"github.com/brightside-news/brightside-server/internal/storage"
)

// digestSize is how many of the day's stories headline the digest.
const digestSize = 3

// Composer assembles and sends the daily digest notification for a region.
// The digest always goes out, even on empty days, so subscribers get a
// consistent morning touchpoint.
type Composer struct {
	store    storage.Store
	notifier notify.Notifier
	regions  *domain.Registry
	now      func() time.Time
}

type Option func(*Composer)

func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		c.now = now
	}
}

func NewComposer(store storage.Store, notifier notify.Notifier, regions *domain.Registry, opts ...Option) *Composer {
	c := &Composer{store: store, notifier: notifier, regions: regions, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Topic returns the push topic all subscribers of a region listen on.
func Topic(regionID string) string {
	return "region_" + regionID + "_daily"
}

// Run selects the day's top stories for the region, composes the message
// and sends it, then stamps the health record.
func (c *Composer) Run(ctx context.Context, regionID string) (int, error) {
	region, ok := c.regions.Get(regionID)
	if !ok {
		return 0, apperr.NewValidation("unknown region: " + regionID)
	}

	now := c.now()
	articles, err := c.store.ListPublishedBetween(ctx, regionID, region.DayWindowStart(now), now.Add(time.Second), digestSize)
	if err != nil {
		return 0, fmt.Errorf("digest %s: select: %w", regionID, err)
	}

	msg := ComposeMessage(regionID, articles)
	if err := c.notifier.Send(ctx, msg); err != nil {
		return 0, fmt.Errorf("digest %s: %w", regionID, err)
	}

	slog.Info("Digest sent", "region", regionID, "articles", len(articles), "topic", msg.Topic)
	return len(articles), c.store.MergeHealth(ctx, domain.HealthRecord{
		RegionID:       regionID,
		LastDigestAt:   &now,
		LastDigestSize: len(articles),
		UpdatedAt:      now,
	})
}

// ComposeMessage builds the digest payload. The shape depends on how many
// stories the day produced: an empty day still greets, a single story
// deep-links straight to the article, and multiple stories route to the
// day's feed.
func ComposeMessage(regionID string, articles []domain.Article) notify.Message {
	msg := notify.Message{
		Topic: Topic(regionID),
		Data:  map[string]string{"route": "/today"},
	}

	switch len(articles) {
	case 0:
		msg.Title = "Your BrightSide digest"
		msg.Body = "Good news is on the way. Check back later today!"
	case 1:
		msg.Title = "Today's bright spot"
		msg.Body = articles[0].Title
		msg.Data["route"] = "/article"
		msg.Data["articleId"] = articles[0].ID
	default:
		msg.Title = "Your BrightSide digest"
		msg.Body = fmt.Sprintf("%d uplifting stories from your area today", len(articles))
	}
	return msg
}
