// Package server exposes datinsight over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /api/news?category=&country=
//	GET  /api/social?topic=
//	GET  /api/podcasts?genre=
//	GET  /api/feed?interests=a,b
//	POST /api/analyze
//	GET  /api/context
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/datinsight/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCORSOrigins sets the allowed browser origins. Empty keeps "*".
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithAnalyzeLimit sets the per-client rate for POST /api/analyze.
// A non-positive rate disables the limit.
func WithAnalyzeLimit(r rate.Limit, burst int) Option {
	return func(s *Server) {
		s.analyzeRate = r
		s.analyzeBurst = burst
	}
}

// WithClock replaces time.Now for the health timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server is the HTTP front of a service.API.
type Server struct {
	api          service.API
	echo         *echo.Echo
	logger       *slog.Logger
	corsOrigins  []string
	analyzeRate  rate.Limit
	analyzeBurst int
	now          func() time.Time
}

// New builds the echo application for api.
func New(api service.API, opts ...Option) *Server {
	s := &Server{
		api:          api,
		logger:       slog.Default(),
		corsOrigins:  []string{"*"},
		analyzeRate:  0.5,
		analyzeBurst: 3,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				s.logger.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				s.logger.ErrorContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))

	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	routes := e.Group("/api")
	routes.GET("/news", s.news)
	routes.GET("/social", s.social)
	routes.GET("/podcasts", s.podcasts)
	routes.GET("/feed", s.feed)
	routes.GET("/context", s.userContext)

	var analyzeMW []echo.MiddlewareFunc
	if s.analyzeRate > 0 {
		analyzeMW = append(analyzeMW, NewRateLimiter(s.analyzeRate, s.analyzeBurst).Middleware())
	}
	routes.POST("/analyze", s.analyze, analyzeMW...)

	s.echo = e
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting datinsight server", "address", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server exited properly")
	return nil
}
