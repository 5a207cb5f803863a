package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/service"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type newsResponse struct {
	Articles []feed.NewsArticle `json:"articles"`
	Count    int                `json:"count"`
}

type socialResponse struct {
	Posts []feed.SocialPost `json:"posts"`
	Count int               `json:"count"`
}

type podcastsResponse struct {
	Episodes []feed.PodcastEpisode `json:"episodes"`
	Count    int                   `json:"count"`
}

// feedResponse.Count is the merged size before truncation.
type feedResponse struct {
	Items []feed.Item `json:"items"`
	Count int         `json:"count"`
}

type contextResponse struct {
	UserContext *analysis.UserContext `json:"userContext"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Timestamp: s.now().UTC()})
}

func (s *Server) news(c echo.Context) error {
	ctx := c.Request().Context()
	category := c.QueryParam("category")
	country := c.QueryParam("country")

	var (
		articles []feed.NewsArticle
		err      error
	)
	if regional, ok := s.api.(service.RegionalNews); ok {
		articles, err = regional.GetNewsIn(ctx, category, country)
	} else {
		articles, err = s.api.GetNews(ctx, category)
	}
	if err != nil {
		return mapError(err, "fetch news")
	}
	return c.JSON(http.StatusOK, newsResponse{Articles: nonNil(articles), Count: len(articles)})
}

func (s *Server) social(c echo.Context) error {
	posts, err := s.api.GetSocialPosts(c.Request().Context(), c.QueryParam("topic"))
	if err != nil {
		return mapError(err, "fetch social posts")
	}
	return c.JSON(http.StatusOK, socialResponse{Posts: nonNil(posts), Count: len(posts)})
}

func (s *Server) podcasts(c echo.Context) error {
	episodes, err := s.api.GetPodcasts(c.Request().Context(), c.QueryParam("genre"))
	if err != nil {
		return mapError(err, "fetch podcasts")
	}
	return c.JSON(http.StatusOK, podcastsResponse{Episodes: nonNil(episodes), Count: len(episodes)})
}

func (s *Server) feed(c echo.Context) error {
	result, err := s.api.GetFeed(c.Request().Context(), splitInterests(c.QueryParam("interests")))
	if err != nil {
		return mapError(err, "fetch feed")
	}
	return c.JSON(http.StatusOK, feedResponse{Items: nonNil(result.Items), Count: result.TotalBeforeTruncation})
}

func (s *Server) analyze(c echo.Context) error {
	var req analysis.Request
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", err.Error())
	}
	if strings.TrimSpace(req.Title) == "" {
		return badRequest("title is required", "")
	}

	result, err := s.api.Analyze(c.Request().Context(), req)
	if err != nil {
		return mapError(err, "analyze content")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) userContext(c echo.Context) error {
	uc, err := s.api.GetUserContext(c.Request().Context())
	if err != nil {
		return mapError(err, "load user context")
	}
	return c.JSON(http.StatusOK, contextResponse{UserContext: uc})
}

// splitInterests parses a comma-separated list, dropping blanks.
func splitInterests(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
