package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/metrics"
)

// Aggregator collects and merges feed items from multiple sources.
type Aggregator struct {
	sources  []Source
	limit    int
	caps     map[feed.Kind]int
	fallback Fallback
	logger   *slog.Logger
}

// New creates an Aggregator over sources. Source order decides tie-breaks
// between items published at the same instant.
func New(sources []Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		sources: sources,
		limit:   DefaultLimit,
		caps:    map[feed.Kind]int{feed.KindPodcast: DefaultPodcastCap},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type outcome struct {
	items []feed.Item
	err   error
}

// GetFeed fetches every source for the first interest and merges the results.
// A failing source contributes nothing. When all sources fail the fallback
// feed is returned, or feed.ErrAggregationFailed if there is none.
func (a *Aggregator) GetFeed(ctx context.Context, interests []string) (feed.Result, error) {
	topic := primaryTopic(interests)

	outcomes := make([]outcome, len(a.sources))
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			items, err := src.Fetch(ctx, topic)
			outcomes[i] = outcome{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var merged []feed.Item
	succeeded := 0
	for i, o := range outcomes {
		if o.err != nil {
			a.logger.Warn("feed source failed",
				"provider", a.sources[i].Kind().String(),
				"topic", topic,
				"error", o.err)
			continue
		}
		succeeded++
		merged = append(merged, o.items...)
	}

	if succeeded == 0 {
		return a.useFallback(ctx, topic)
	}

	result := a.merge(merged)
	metrics.FeedItems.Observe(float64(result.TotalBeforeTruncation))
	return result, nil
}

func (a *Aggregator) useFallback(ctx context.Context, topic string) (feed.Result, error) {
	if a.fallback == nil {
		return feed.Result{}, fmt.Errorf("feed for %q: %w", topic, feed.ErrAggregationFailed)
	}

	a.logger.Warn("all feed sources failed, serving fallback feed", "topic", topic, "sources", len(a.sources))
	items, err := a.fallback.Feed(ctx)
	if err != nil {
		return feed.Result{}, fmt.Errorf("fallback feed: %w: %w", feed.ErrAggregationFailed, err)
	}
	metrics.FeedFallbacks.Inc()

	result := a.merge(items)
	metrics.FeedItems.Observe(float64(result.TotalBeforeTruncation))
	return result, nil
}

// merge applies caps and de-duplication in input order, then sorts newest
// first and truncates.
func (a *Aggregator) merge(items []feed.Item) feed.Result {
	seen := make(map[string]struct{}, len(items))
	perKind := make(map[feed.Kind]int, len(feed.Kinds))
	out := make([]feed.Item, 0, len(items))

	for _, it := range items {
		if _, dup := seen[it.ID()]; dup {
			continue
		}
		if limit, capped := a.caps[it.Kind()]; capped && perKind[it.Kind()] >= limit {
			continue
		}
		seen[it.ID()] = struct{}{}
		perKind[it.Kind()]++
		out = append(out, it)
	}

	slices.SortStableFunc(out, func(x, y feed.Item) int {
		return y.PublishedAt().Compare(x.PublishedAt())
	})

	total := len(out)
	if len(out) > a.limit {
		out = out[:a.limit]
	}
	return feed.Result{Items: out, TotalBeforeTruncation: total}
}

func primaryTopic(interests []string) string {
	if len(interests) == 0 {
		return DefaultTopic
	}
	if t := strings.TrimSpace(interests[0]); t != "" {
		return t
	}
	return DefaultTopic
}
