package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/transport"
)

const (
	defaultBaseURL   = "https://www.reddit.com"
	defaultUserAgent = "Datinsight/1.0"
	defaultTopic     = "technology"
	defaultLimit     = 15
	maxLimit         = 20
	providerName     = "social"
	platform         = "reddit"
)

var subredditName = regexp.MustCompile(`^[A-Za-z0-9_]{2,21}$`)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient transport.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets the base URL for API requests (used for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithUserAgent overrides the User-Agent header Reddit requires.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLimit sets how many posts are requested, capped at 20.
func WithLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 && n <= maxLimit {
			c.limit = n
		}
	}
}

// Client is a Reddit listing client. It needs no credentials.
type Client struct {
	baseURL    string
	userAgent  string
	limit      int
	httpClient transport.HTTPClient
	now        func() time.Time
}

// NewClient creates a new Reddit client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		limit:      defaultLimit,
		httpClient: transport.New(transport.DefaultTimeout),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind reports that this source produces social items.
func (c *Client) Kind() feed.Kind { return feed.KindSocial }

// Fetch implements aggregator.Source.
func (c *Client) Fetch(ctx context.Context, topic string) ([]feed.Item, error) {
	posts, err := c.FetchPosts(ctx, topic)
	if err != nil {
		return nil, err
	}
	return feed.Items(posts), nil
}

// FetchPosts retrieves hot posts from the subreddit named by topic.
func (c *Client) FetchPosts(ctx context.Context, topic string) ([]feed.SocialPost, error) {
	subreddit := strings.ToLower(strings.TrimSpace(topic))
	if subreddit == "" {
		subreddit = defaultTopic
	}
	if !subredditName.MatchString(subreddit) {
		return nil, &feed.ProviderError{Provider: providerName, Query: topic, Err: fmt.Errorf("invalid subreddit name")}
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.limit))
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?%s", c.baseURL, subreddit, params.Encode())

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, &feed.ProviderError{Provider: providerName, Query: subreddit, Status: statusOf(err), Err: err}
	}

	var response listingResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &feed.ProviderError{Provider: providerName, Query: subreddit, Err: fmt.Errorf("failed to parse listing response: %w", err)}
	}

	fetchedAt := c.now()
	posts := make([]feed.SocialPost, 0, len(response.Data.Children))
	for _, child := range response.Data.Children {
		p := child.Data
		if p.Stickied || p.ID == "" {
			continue
		}
		posts = append(posts, feed.SocialPost{
			ID:          "reddit-" + p.ID,
			Platform:    platform,
			Content:     p.Title,
			Author:      p.Author,
			URL:         c.permalinkURL(p.Permalink),
			PublishedAt: unixSeconds(p.CreatedUTC, fetchedAt),
			Metrics: feed.Metrics{
				Likes:    p.Ups,
				Comments: p.NumComments,
			},
		})
	}

	return posts, nil
}

func (c *Client) permalinkURL(permalink string) string {
	if permalink == "" {
		return ""
	}
	return "https://reddit.com" + permalink
}

// doRequest performs an unauthenticated HTTP request.
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
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

func unixSeconds(secs float64, fallback time.Time) time.Time {
	if secs <= 0 {
		return fallback
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

type statusError struct{ code int }

func (e *statusError) Error() string {
	switch e.code {
	case http.StatusNotFound, http.StatusForbidden:
		return fmt.Sprintf("Reddit API error: subreddit unavailable (status %d)", e.code)
	case http.StatusTooManyRequests:
		return "Reddit API rate limit exceeded"
	default:
		return fmt.Sprintf("Reddit API error (status %d)", e.code)
	}
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}
