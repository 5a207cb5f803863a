// Package aggregator combines feeds from multiple sources into a unified view.
//
// This package enables datinsight to:
// - Fetch news, social and podcast sources concurrently
// - Merge results newest first with per-kind caps
// - Degrade to a fallback feed when every source fails
package aggregator

import (
	"context"
	"log/slog"

	"github.com/gauthierbraillon/datinsight/internal/feed"
)

const (
	// DefaultLimit is the maximum number of items in one feed.
	DefaultLimit = 30

	// DefaultPodcastCap bounds podcasts so long episode lists cannot crowd out news.
	DefaultPodcastCap = 5

	// DefaultTopic is used when no interest is given.
	DefaultTopic = "technology"
)

// Source is a provider that produces items of a single kind.
type Source interface {
	Kind() feed.Kind
	Fetch(ctx context.Context, topic string) ([]feed.Item, error)
}

// Fallback supplies a feed when no source could.
type Fallback interface {
	Feed(ctx context.Context) ([]feed.Item, error)
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithLimit lowers the maximum number of items returned. Values outside
// 1..DefaultLimit are clamped.
func WithLimit(n int) Option {
	return func(a *Aggregator) {
		a.limit = min(max(n, 1), DefaultLimit)
	}
}

// WithKindCap limits how many items of one kind reach the feed. The
// podcast cap never exceeds DefaultPodcastCap and non-positive values
// leave the current cap in place.
func WithKindCap(kind feed.Kind, n int) Option {
	return func(a *Aggregator) {
		if n <= 0 {
			return
		}
		if kind == feed.KindPodcast {
			n = min(n, DefaultPodcastCap)
		}
		a.caps[kind] = n
	}
}

// WithFallback sets the supplier used when every source fails.
func WithFallback(f Fallback) Option {
	return func(a *Aggregator) {
		a.fallback = f
	}
}

// WithLogger sets the logger used to report failing sources.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
