package itunes

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

	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/sanitize"
	"github.com/gauthierbraillon/datinsight/internal/transport"
)

const (
	defaultBaseURL = "https://itunes.apple.com"
	defaultGenre   = "technology"
	defaultLimit   = 15
	maxLimit       = 20
	providerName   = "podcast"

	untitledEpisode = "Untitled Episode"
	unknownPodcast  = "Unknown Podcast"

	// maxDescription keeps show notes to card size.
	maxDescription = 500
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient transport.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL overrides the search host (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithLimit sets how many episodes are requested, capped at 20.
func WithLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 && n <= maxLimit {
			c.limit = n
		}
	}
}

// Client searches podcast episodes.
type Client struct {
	httpClient transport.HTTPClient
	baseURL    string
	limit      int
	now        func() time.Time
}

// NewClient creates a new iTunes Search client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: transport.New(transport.DefaultTimeout),
		baseURL:    defaultBaseURL,
		limit:      defaultLimit,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind reports that this source produces podcast items.
func (c *Client) Kind() feed.Kind { return feed.KindPodcast }

// Fetch implements aggregator.Source.
func (c *Client) Fetch(ctx context.Context, topic string) ([]feed.Item, error) {
	episodes, err := c.FetchEpisodes(ctx, topic)
	if err != nil {
		return nil, err
	}
	return feed.Items(episodes), nil
}

// FetchEpisodes searches podcast episodes matching genre.
func (c *Client) FetchEpisodes(ctx context.Context, genre string) ([]feed.PodcastEpisode, error) {
	term := strings.TrimSpace(genre)
	if term == "" {
		term = defaultGenre
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "podcast")
	params.Set("entity", "podcastEpisode")
	params.Set("limit", strconv.Itoa(c.limit))
	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, &feed.ProviderError{Provider: providerName, Query: term, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &feed.ProviderError{Provider: providerName, Query: term, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &feed.ProviderError{
			Provider: providerName,
			Query:    term,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("iTunes search returned HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &feed.ProviderError{Provider: providerName, Query: term, Err: fmt.Errorf("failed to read search response: %w", err)}
	}

	episodes, err := parseEpisodes(body, c.now())
	if err != nil {
		return nil, &feed.ProviderError{Provider: providerName, Query: term, Err: err}
	}
	return episodes, nil
}

func parseEpisodes(data []byte, fetchedAt time.Time) ([]feed.PodcastEpisode, error) {
	var doc searchResponse
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if doc.Results == nil && doc.ResultCount != 0 {
		return nil, errors.New("search response missing results")
	}

	episodes := make([]feed.PodcastEpisode, 0, len(doc.Results))
	for _, r := range doc.Results {
		if r.TrackID == 0 {
			continue
		}
		episodes = append(episodes, feed.PodcastEpisode{
			ID:              fmt.Sprintf("podcast-%d", r.TrackID),
			Title:           orDefault(r.TrackName, untitledEpisode),
			PodcastName:     orDefault(r.CollectionName, unknownPodcast),
			Description:     sanitize.Truncate(sanitize.Text(orDefault(r.Description, r.ShortDescription)), maxDescription),
			URL:             r.TrackViewURL,
			AudioURL:        r.EpisodeURL,
			PublishedAt:     parseReleaseDate(r.ReleaseDate, fetchedAt),
			DurationSeconds: int(r.TrackTimeMillis / 1000),
			ImageURL:        firstNonEmpty(r.ArtworkURL600, r.ArtworkURL160, r.ArtworkURL100, r.ArtworkURL60),
		})
	}
	return episodes, nil
}

func parseReleaseDate(s string, fallback time.Time) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
