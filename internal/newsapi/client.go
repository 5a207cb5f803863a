package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/sanitize"
	"github.com/gauthierbraillon/datinsight/internal/transport"
)

const (
	defaultBaseURL  = "https://newsapi.org"
	defaultCountry  = "us"
	defaultCategory = "general"
	providerName    = "news"

	// maxPageSize bounds every request regardless of configuration.
	maxPageSize = 20
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient transport.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithCountry sets the ISO country code sent with every request.
func WithCountry(country string) ClientOption {
	return func(c *Client) {
		if country != "" {
			c.country = strings.ToLower(country)
		}
	}
}

// WithPageSize sets the number of articles requested, capped at 20.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 && n <= maxPageSize {
			c.pageSize = n
		}
	}
}

// Client is a NewsAPI client.
type Client struct {
	apiKey     string
	baseURL    string
	country    string
	pageSize   int
	httpClient transport.HTTPClient
	now        func() time.Time
}

// NewClient creates a NewsAPI client. The API key is mandatory; without it the
// provider is unusable and a *feed.ConfigError is returned.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &feed.ConfigError{Provider: providerName, Setting: "api key (NEWS_API_KEY)"}
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		country:    defaultCountry,
		pageSize:   maxPageSize,
		httpClient: transport.New(transport.DefaultTimeout),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Kind reports that this source produces news items.
func (c *Client) Kind() feed.Kind { return feed.KindNews }

// Fetch implements aggregator.Source.
func (c *Client) Fetch(ctx context.Context, topic string) ([]feed.Item, error) {
	articles, err := c.FetchArticles(ctx, topic)
	if err != nil {
		return nil, err
	}
	return feed.Items(articles), nil
}

// FetchArticles retrieves top headlines for category in the client's country.
func (c *Client) FetchArticles(ctx context.Context, category string) ([]feed.NewsArticle, error) {
	return c.FetchArticlesIn(ctx, category, c.country)
}

// FetchArticlesIn retrieves top headlines for category in country. An empty
// country means the client's default.
func (c *Client) FetchArticlesIn(ctx context.Context, category, country string) ([]feed.NewsArticle, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = defaultCategory
	}
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = c.country
	}

	params := url.Values{}
	params.Set("category", category)
	params.Set("country", country)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	endpoint := fmt.Sprintf("%s/v2/top-headlines?%s", c.baseURL, params.Encode())

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, &feed.ProviderError{Provider: providerName, Query: category, Status: statusOf(err), Err: err}
	}

	var response headlinesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &feed.ProviderError{Provider: providerName, Query: category, Err: fmt.Errorf("failed to parse headlines response: %w", err)}
	}
	if response.Status == "error" {
		return nil, &feed.ProviderError{Provider: providerName, Query: category, Err: fmt.Errorf("%s: %s", response.Code, response.Message)}
	}

	fetchedAt := c.now()
	articles := make([]feed.NewsArticle, 0, len(response.Articles))
	for _, a := range response.Articles {
		if a.Title == removedMarker || a.URL == "" {
			continue
		}
		articles = append(articles, feed.NewsArticle{
			ID:          newID(fetchedAt),
			Title:       a.Title,
			Description: sanitize.Text(deref(a.Description)),
			URL:         a.URL,
			SourceName:  a.Source.Name,
			Author:      deref(a.Author),
			PublishedAt: parseTime(a.PublishedAt, fetchedAt),
			ImageURL:    deref(a.URLToImage),
			Category:    category,
		})
		if len(articles) == c.pageSize {
			break
		}
	}

	return articles, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	return body, nil
}

// newID has no upstream identifier to derive from, so ids differ on every fetch
// of the same article.
func newID(fetchedAt time.Time) string {
	return fmt.Sprintf("news-%d-%s", fetchedAt.UnixMilli(), uuid.NewString())
}

func parseTime(s string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type statusError struct{ code int }

func (e *statusError) Error() string {
	switch e.code {
	case http.StatusUnauthorized:
		return "NewsAPI rejected the API key"
	case http.StatusTooManyRequests:
		return "NewsAPI rate limit exceeded"
	default:
		return fmt.Sprintf("NewsAPI error (status %d)", e.code)
	}
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}
