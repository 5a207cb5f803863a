// Package remote implements service.API against a running datinsight server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/service"
	"github.com/gauthierbraillon/datinsight/internal/transport"
)

// DefaultTimeout bounds one call to the server.
const DefaultTimeout = 30 * time.Second

var (
	_ service.API          = (*Client)(nil)
	_ service.RegionalNews = (*Client)(nil)
)

// ClientOption configures the remote client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient transport.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client talks to a datinsight server.
type Client struct {
	baseURL    string
	httpClient transport.HTTPClient
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &feed.ConfigError{Provider: "remote", Setting: "valid base URL"}
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetFeed fetches the merged feed.
func (c *Client) GetFeed(ctx context.Context, interests []string) (feed.Result, error) {
	params := url.Values{}
	if len(interests) > 0 {
		params.Set("interests", strings.Join(interests, ","))
	}
	var resp struct {
		Items []feed.Item `json:"items"`
		Count int         `json:"count"`
	}
	if err := c.get(ctx, "feed", params, &resp); err != nil {
		return feed.Result{}, err
	}
	return feed.Result{Items: resp.Items, TotalBeforeTruncation: resp.Count}, nil
}

// GetNews fetches headlines in the server's default country.
func (c *Client) GetNews(ctx context.Context, category string) ([]feed.NewsArticle, error) {
	return c.GetNewsIn(ctx, category, "")
}

// GetNewsIn fetches headlines for country.
func (c *Client) GetNewsIn(ctx context.Context, category, country string) ([]feed.NewsArticle, error) {
	params := url.Values{}
	setIf(params, "category", category)
	setIf(params, "country", country)
	var resp struct {
		Articles []feed.NewsArticle `json:"articles"`
	}
	if err := c.get(ctx, "news", params, &resp); err != nil {
		return nil, err
	}
	return orEmpty(resp.Articles), nil
}

// GetSocialPosts fetches social posts for topic.
func (c *Client) GetSocialPosts(ctx context.Context, topic string) ([]feed.SocialPost, error) {
	params := url.Values{}
	setIf(params, "topic", topic)
	var resp struct {
		Posts []feed.SocialPost `json:"posts"`
	}
	if err := c.get(ctx, "social", params, &resp); err != nil {
		return nil, err
	}
	return orEmpty(resp.Posts), nil
}

// GetPodcasts fetches podcast episodes for genre.
func (c *Client) GetPodcasts(ctx context.Context, genre string) ([]feed.PodcastEpisode, error) {
	params := url.Values{}
	setIf(params, "genre", genre)
	var resp struct {
		Episodes []feed.PodcastEpisode `json:"episodes"`
	}
	if err := c.get(ctx, "podcasts", params, &resp); err != nil {
		return nil, err
	}
	return orEmpty(resp.Episodes), nil
}

// Analyze requests an analysis.
func (c *Client) Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("encode analysis request: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, "analyze", nil, bytes.NewReader(body))
	if err != nil {
		return analysis.Result{}, err
	}
	var result analysis.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return analysis.Result{}, &Error{Op: "analyze", Status: http.StatusOK, Message: "malformed response", Err: err}
	}
	return result, nil
}

// GetUserContext fetches the server's stored reader profile.
func (c *Client) GetUserContext(ctx context.Context) (*analysis.UserContext, error) {
	var resp struct {
		UserContext *analysis.UserContext `json:"userContext"`
	}
	if err := c.get(ctx, "context", nil, &resp); err != nil {
		return nil, err
	}
	return resp.UserContext, nil
}

func (c *Client) get(ctx context.Context, op string, params url.Values, out any) error {
	raw, err := c.do(ctx, http.MethodGet, op, params, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Status: http.StatusOK, Message: "malformed response", Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, op string, params url.Values, body io.Reader) ([]byte, error) {
	endpoint := c.baseURL + "/api/" + op
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Message: "server unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(op, resp.StatusCode, raw)
	}
	return raw, nil
}

func setIf(params url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		params.Set(key, value)
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
