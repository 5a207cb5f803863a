// Package service exposes datinsight's operations behind one interface and
// wires live providers or demo data from configuration.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/datinsight/internal/aggregator"
	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/config"
	"github.com/gauthierbraillon/datinsight/internal/fallback"
	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/itunes"
	"github.com/gauthierbraillon/datinsight/internal/llm"
	"github.com/gauthierbraillon/datinsight/internal/newsapi"
	"github.com/gauthierbraillon/datinsight/internal/profile"
	"github.com/gauthierbraillon/datinsight/internal/reddit"
	"github.com/gauthierbraillon/datinsight/internal/transport"
)

// API is the external interface of datinsight. It is implemented locally by
// Service and over HTTP by remote.Client.
type API interface {
	GetFeed(ctx context.Context, interests []string) (feed.Result, error)
	GetNews(ctx context.Context, category string) ([]feed.NewsArticle, error)
	GetSocialPosts(ctx context.Context, topic string) ([]feed.SocialPost, error)
	GetPodcasts(ctx context.Context, genre string) ([]feed.PodcastEpisode, error)
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
	GetUserContext(ctx context.Context) (*analysis.UserContext, error)
}

// ContextProvider supplies the reader profile. A nil context means none.
type ContextProvider interface {
	UserContext(ctx context.Context) (*analysis.UserContext, error)
}

// Analyzer produces an analysis for one item.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

var (
	_ API = (*Service)(nil)

	_ Analyzer = (*analysis.Requestor)(nil)
	_ Analyzer = (*fallback.Supplier)(nil)

	_ ContextProvider = (*profile.FileStore)(nil)

	_ aggregator.Source = (*newsapi.Client)(nil)
	_ aggregator.Source = (*reddit.Client)(nil)
	_ aggregator.Source = (*itunes.Client)(nil)
)

// RegionalNews is implemented by APIs that can pick the headline country per
// call.
type RegionalNews interface {
	GetNewsIn(ctx context.Context, category, country string) ([]feed.NewsArticle, error)
}

var _ RegionalNews = (*Service)(nil)

type (
	newsFunc    func(ctx context.Context, category, country string) ([]feed.NewsArticle, error)
	socialFunc  func(ctx context.Context, topic string) ([]feed.SocialPost, error)
	podcastFunc func(ctx context.Context, genre string) ([]feed.PodcastEpisode, error)
)

// Option configures a Service.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	ctxp       ContextProvider
	httpClient transport.HTTPClient
	demoDelays *fallback.Delays
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithContextProvider replaces the file-backed profile store.
func WithContextProvider(p ContextProvider) Option {
	return func(o *options) { o.ctxp = p }
}

// WithHTTPClient replaces the outbound HTTP client for every provider.
func WithHTTPClient(c transport.HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithDemoDelays overrides the simulated latency used in mock mode.
func WithDemoDelays(d fallback.Delays) Option {
	return func(o *options) { o.demoDelays = &d }
}

// Service implements API in-process.
type Service struct {
	news        newsFunc
	newsErr     error
	social      socialFunc
	podcasts    podcastFunc
	agg         *aggregator.Aggregator
	analyzer    Analyzer
	analysisErr error
	ctxp        ContextProvider
	logger      *slog.Logger
}

// New builds a Service from cfg. With cfg.UseMock every operation is served
// by the fallback supplier; otherwise live adapters are created. A missing
// credential disables only the operations that need it.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if cfg.UseMock {
		return newMock(cfg, o), nil
	}
	return newLive(cfg, o)
}

func newMock(cfg *config.Config, o options) *Service {
	delays := fallback.DemoDelays
	if o.demoDelays != nil {
		delays = *o.demoDelays
	}
	supplier := fallback.New(fallback.WithDelays(delays))

	ctxp := o.ctxp
	if ctxp == nil {
		ctxp = demoContext{supplier}
	}

	o.logger.Info("serving demo data", "feed_delay", delays.Feed, "analysis_delay", delays.Analysis)
	return &Service{
		news: func(ctx context.Context, category, _ string) ([]feed.NewsArticle, error) {
			return supplier.News(ctx, category)
		},
		social:   supplier.Social,
		podcasts: supplier.Podcasts,
		agg: aggregator.New(supplier.Sources(),
			aggregator.WithLimit(cfg.Feed.Limit),
			aggregator.WithKindCap(feed.KindPodcast, cfg.Feed.PodcastCap),
			aggregator.WithLogger(o.logger)),
		analyzer: supplier,
		ctxp:     ctxp,
		logger:   o.logger,
	}
}

func newLive(cfg *config.Config, o options) (*Service, error) {
	feedHTTP := o.httpClient
	if feedHTTP == nil {
		feedHTTP = transport.New(cfg.Feed.Timeout)
	}

	s := &Service{logger: o.logger, ctxp: o.ctxp}
	if s.ctxp == nil {
		s.ctxp = profile.NewFileStore(cfg.Profile.Dir)
	}

	var sources []aggregator.Source

	newsClient, err := newsapi.NewClient(cfg.News.APIKey,
		newsapi.WithHTTPClient(transport.Instrumented(feedHTTP, "news")),
		newsapi.WithBaseURL(cfg.News.BaseURL),
		newsapi.WithCountry(cfg.News.Country),
		newsapi.WithPageSize(cfg.News.PageSize),
	)
	switch {
	case err == nil:
		s.news = newsClient.FetchArticlesIn
		sources = append(sources, newsClient)
	case errors.Is(err, feed.ErrConfiguration):
		s.newsErr = err
		o.logger.Warn("news provider disabled", "error", err)
	default:
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Reddit.RatePerSecond), cfg.Reddit.Burst)
	redditClient := reddit.NewClient(
		reddit.WithHTTPClient(transport.Instrumented(transport.RateLimited(feedHTTP, limiter), "social")),
		reddit.WithBaseURL(cfg.Reddit.BaseURL),
		reddit.WithUserAgent(cfg.Reddit.UserAgent),
		reddit.WithLimit(cfg.Reddit.Limit),
	)
	s.social = redditClient.FetchPosts
	sources = append(sources, redditClient)

	itunesClient := itunes.NewClient(
		itunes.WithHTTPClient(transport.Instrumented(feedHTTP, "podcast")),
		itunes.WithBaseURL(cfg.Podcasts.BaseURL),
		itunes.WithLimit(cfg.Podcasts.Limit),
	)
	s.podcasts = itunesClient.FetchEpisodes
	sources = append(sources, itunesClient)

	aggOpts := []aggregator.Option{
		aggregator.WithLimit(cfg.Feed.Limit),
		aggregator.WithKindCap(feed.KindPodcast, cfg.Feed.PodcastCap),
		aggregator.WithLogger(o.logger),
	}
	if cfg.Feed.Fallback {
		aggOpts = append(aggOpts, aggregator.WithFallback(fallback.New()))
	}
	s.agg = aggregator.New(sources, aggOpts...)

	analysisHTTP := o.httpClient
	if analysisHTTP == nil {
		analysisHTTP = &http.Client{Timeout: transport.ClampTimeout(cfg.Analysis.Timeout)}
	}
	gen, err := llm.NewOpenAI(cfg.Analysis.APIKey,
		llm.WithHTTPClient(transport.Instrumented(analysisHTTP, "analysis")),
		llm.WithBaseURL(cfg.Analysis.BaseURL),
		llm.WithModel(cfg.Analysis.Model),
	)
	switch {
	case err == nil:
		s.analyzer = analysis.NewRequestor(gen,
			analysis.WithTemperature(cfg.Analysis.Temperature),
			analysis.WithMaxTokens(cfg.Analysis.MaxTokens),
			analysis.WithLogger(o.logger))
	case errors.Is(err, feed.ErrConfiguration):
		s.analysisErr = err
		o.logger.Warn("analysis disabled", "error", err)
	default:
		return nil, err
	}

	return s, nil
}

// GetFeed returns the merged feed for the first interest.
func (s *Service) GetFeed(ctx context.Context, interests []string) (feed.Result, error) {
	return s.agg.GetFeed(ctx, interests)
}

// GetNews returns headlines. Upstream failures yield an empty list; a missing
// API key is an error.
func (s *Service) GetNews(ctx context.Context, category string) ([]feed.NewsArticle, error) {
	return s.GetNewsIn(ctx, category, "")
}

// GetNewsIn is GetNews for a specific country; empty means the configured
// default.
func (s *Service) GetNewsIn(ctx context.Context, category, country string) ([]feed.NewsArticle, error) {
	if s.newsErr != nil {
		return nil, s.newsErr
	}
	return soft(ctx, s, "news", category, func(ctx context.Context, category string) ([]feed.NewsArticle, error) {
		return s.news(ctx, category, country)
	})
}

// GetSocialPosts returns hot posts. Upstream failures yield an empty list.
func (s *Service) GetSocialPosts(ctx context.Context, topic string) ([]feed.SocialPost, error) {
	return soft(ctx, s, "social", topic, s.social)
}

// GetPodcasts returns episodes. Upstream failures yield an empty list.
func (s *Service) GetPodcasts(ctx context.Context, genre string) ([]feed.PodcastEpisode, error) {
	return soft(ctx, s, "podcast", genre, s.podcasts)
}

func soft[T any](ctx context.Context, s *Service, provider, query string, fetch func(context.Context, string) ([]T, error)) ([]T, error) {
	items, err := fetch(ctx, query)
	if err != nil {
		s.logger.Warn("provider request failed", "provider", provider, "query", query, "error", err)
		return []T{}, nil
	}
	return items, nil
}

// Analyze runs a deep-insight analysis. When the request carries no user
// context the stored profile is used. Failures are returned to the caller.
func (s *Service) Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	if s.analysisErr != nil {
		return analysis.Result{}, s.analysisErr
	}
	if req.UserContext == nil {
		uc, err := s.ctxp.UserContext(ctx)
		if err != nil {
			s.logger.Warn("user context unavailable, analyzing without it", "error", err)
		} else {
			req.UserContext = uc
		}
	}
	return s.analyzer.Analyze(ctx, req)
}

// GetUserContext returns the stored reader profile, nil when none exists.
func (s *Service) GetUserContext(ctx context.Context) (*analysis.UserContext, error) {
	return s.ctxp.UserContext(ctx)
}

type demoContext struct {
	supplier *fallback.Supplier
}

func (d demoContext) UserContext(context.Context) (*analysis.UserContext, error) {
	uc := d.supplier.UserContext()
	return &uc, nil
}
