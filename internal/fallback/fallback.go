// Package fallback supplies deterministic demo data with the same shape and
// invariants as live provider data.
package fallback

import (
	"context"
	"slices"
	"time"

	"github.com/gauthierbraillon/datinsight/internal/aggregator"
	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/feed"
)

// Delays simulate provider latency per operation.
type Delays struct {
	Feed     time.Duration
	Provider time.Duration
	Analysis time.Duration
}

// DemoDelays match the loading times of the live demo.
var DemoDelays = Delays{
	Feed:     800 * time.Millisecond,
	Provider: 500 * time.Millisecond,
	Analysis: 2 * time.Second,
}

// Option configures a Supplier.
type Option func(*Supplier)

// WithDelays sets the simulated latency.
func WithDelays(d Delays) Option {
	return func(s *Supplier) {
		s.delays = d
	}
}

// WithClock sets the time source that item ages are measured from.
func WithClock(now func() time.Time) Option {
	return func(s *Supplier) {
		if now != nil {
			s.now = now
		}
	}
}

// Supplier serves the embedded dataset.
type Supplier struct {
	delays Delays
	now    func() time.Time
}

// New creates a Supplier without delays.
func New(opts ...Option) *Supplier {
	s := &Supplier{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed returns every demo item, satisfying aggregator.Fallback.
func (s *Supplier) Feed(ctx context.Context) ([]feed.Item, error) {
	if err := sleep(ctx, s.delays.Feed); err != nil {
		return nil, err
	}
	ds, err := loadData()
	if err != nil {
		return nil, err
	}
	now := s.now()

	items := make([]feed.Item, 0, len(ds.News)+len(ds.Social)+len(ds.Podcasts))
	items = append(items, feed.Items(newsAt(ds, now))...)
	items = append(items, feed.Items(socialAt(ds, now))...)
	items = append(items, feed.Items(podcastsAt(ds, now))...)
	return items, nil
}

// News returns the demo articles. The category is ignored.
func (s *Supplier) News(ctx context.Context, _ string) ([]feed.NewsArticle, error) {
	return load(ctx, s, s.delays.Provider, newsAt)
}

// Social returns the demo posts. The topic is ignored.
func (s *Supplier) Social(ctx context.Context, _ string) ([]feed.SocialPost, error) {
	return load(ctx, s, s.delays.Provider, socialAt)
}

// Podcasts returns the demo episodes. The genre is ignored.
func (s *Supplier) Podcasts(ctx context.Context, _ string) ([]feed.PodcastEpisode, error) {
	return load(ctx, s, s.delays.Provider, podcastsAt)
}

func load[P feed.Payload](ctx context.Context, s *Supplier, delay time.Duration, build func(*dataset, time.Time) []P) ([]P, error) {
	if err := sleep(ctx, delay); err != nil {
		return nil, err
	}
	ds, err := loadData()
	if err != nil {
		return nil, err
	}
	return build(ds, s.now()), nil
}

// Analyze returns the demo analysis regardless of the request.
func (s *Supplier) Analyze(ctx context.Context, _ analysis.Request) (analysis.Result, error) {
	if err := sleep(ctx, s.delays.Analysis); err != nil {
		return analysis.Result{}, err
	}
	ds, err := loadData()
	if err != nil {
		return analysis.Result{}, &analysis.ContentAnalysisError{Stage: analysis.StageParse, Err: err}
	}
	res := ds.analysis
	res.ActionableInsights = slices.Clone(res.ActionableInsights)
	res.RelatedTrends = slices.Clone(res.RelatedTrends)
	return res, nil
}

// UserContext returns the demo reader profile.
func (s *Supplier) UserContext() analysis.UserContext {
	ds, err := loadData()
	if err != nil {
		return analysis.UserContext{}
	}
	return ds.UserContext
}

// Sources exposes the dataset as one aggregator source per kind so that demo
// mode runs through the real merge path. Each source waits the feed delay.
func (s *Supplier) Sources() []aggregator.Source {
	return []aggregator.Source{
		source[feed.NewsArticle]{kind: feed.KindNews, s: s, build: newsAt},
		source[feed.SocialPost]{kind: feed.KindSocial, s: s, build: socialAt},
		source[feed.PodcastEpisode]{kind: feed.KindPodcast, s: s, build: podcastsAt},
	}
}

type source[P feed.Payload] struct {
	kind  feed.Kind
	s     *Supplier
	build func(*dataset, time.Time) []P
}

func (src source[P]) Kind() feed.Kind { return src.kind }

func (src source[P]) Fetch(ctx context.Context, _ string) ([]feed.Item, error) {
	payloads, err := load(ctx, src.s, src.s.delays.Feed, src.build)
	if err != nil {
		return nil, err
	}
	return feed.Items(payloads), nil
}

func newsAt(ds *dataset, now time.Time) []feed.NewsArticle {
	out := make([]feed.NewsArticle, len(ds.News))
	for i, r := range ds.News {
		out[i] = r.at(now)
	}
	return out
}

func socialAt(ds *dataset, now time.Time) []feed.SocialPost {
	out := make([]feed.SocialPost, len(ds.Social))
	for i, r := range ds.Social {
		out[i] = r.at(now)
	}
	return out
}

func podcastsAt(ds *dataset, now time.Time) []feed.PodcastEpisode {
	out := make([]feed.PodcastEpisode, len(ds.Podcasts))
	for i, r := range ds.Podcasts {
		out[i] = r.at(now)
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
