package classify

import (
	"sort"
	"strings"

	"github.com/brightside-news/brightside-server/internal/feed"
)

// Result is the classifier verdict for one item.
type Result struct {
	Keep  bool
	Score int
}

// Classifier filters and scores feed items against a keyword policy. The
// keyword lists are the whole model: transparent, fast and tunable by
// editors without retraining anything.
type Classifier struct {
	policy Policy
}

func NewClassifier(policy Policy) *Classifier {
	return &Classifier{policy: policy}
}

// Classify applies the policy to one item. Any block-list hit is a hard
// veto regardless of positive matches. Items that are merely neutral are
// kept: local news without an allow-keyword is still worth showing.
func (c *Classifier) Classify(item feed.Item) Result {
	text := strings.ToLower(item.Title + " " + item.Summary)

	for _, kw := range c.policy.Block {
		if strings.Contains(text, kw) {
			return Result{Keep: false, Score: 0}
		}
	}

	return Result{Keep: true, Score: c.score(text)}
}

// score awards 2 points per distinct allow keyword and subtracts 1 per
// distinct soft-negative keyword, floored at zero.
func (c *Classifier) score(text string) int {
	score := 0
	for _, kw := range c.policy.Allow {
		if strings.Contains(text, kw) {
			score += 2
		}
	}
	for _, kw := range c.policy.SoftNegative {
		if strings.Contains(text, kw) {
			score--
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

// Keep returns the non-vetoed subset of items in feed order.
func (c *Classifier) Keep(items []feed.Item) []feed.Item {
	kept := make([]feed.Item, 0, len(items))
	for _, item := range items {
		if c.Classify(item).Keep {
			kept = append(kept, item)
		}
	}
	return kept
}

// TopPositive returns up to limit items ordered by score descending. The
// sort is stable so ties keep their original feed order.
func (c *Classifier) TopPositive(items []feed.Item, limit int) []feed.Item {
	type scored struct {
		item  feed.Item
		score int
	}

	ranked := make([]scored, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, scored{item: item, score: c.score(strings.ToLower(item.Title + " " + item.Summary))})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]feed.Item, 0, limit)
	for _, r := range ranked[:limit] {
		out = append(out, r.item)
	}
	return out
}
