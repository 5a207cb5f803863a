package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/datinsight/internal/feed"
)

const hotListing = `{
  "kind": "Listing",
  "data": {
    "children": [
      {"kind": "t3", "data": {"id": "mod1", "title": "Weekly discussion thread", "author": "AutoModerator",
        "permalink": "/r/technology/comments/mod1/weekly/", "created_utc": 1704067200.0, "ups": 5, "num_comments": 2, "stickied": true}},
      {"kind": "t3", "data": {"id": "abc123", "title": "Chip makers shift strategy", "author": "tech_insider",
        "permalink": "/r/technology/comments/abc123/chip/", "created_utc": 1704070800.5, "ups": 12400, "num_comments": 856, "stickied": false}},
      {"kind": "t3", "data": {"id": "def456", "title": "Open source wins again", "author": "oss_fan",
        "permalink": "/r/technology/comments/def456/oss/", "created_utc": 1704074400, "stickied": false}}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(append([]ClientOption{WithBaseURL(server.URL)}, opts...)...)
}

func TestFetchPosts_FiltersStickiedAndMapsFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, hotListing)
	})

	posts, err := client.FetchPosts(context.Background(), "technology")

	require.NoError(t, err)
	require.Len(t, posts, 2, "user should not see pinned moderator posts")

	p := posts[0]
	assert.Equal(t, "reddit-abc123", p.ID)
	assert.Equal(t, "reddit", p.Platform)
	assert.Equal(t, "Chip makers shift strategy", p.Content)
	assert.Equal(t, "tech_insider", p.Author)
	assert.Equal(t, "https://reddit.com/r/technology/comments/abc123/chip/", p.URL)
	assert.True(t, p.PublishedAt.Equal(time.Unix(1704070800, 500_000_000)))
	require.NotNil(t, p.Metrics.Likes)
	assert.Equal(t, 12400, *p.Metrics.Likes)
	require.NotNil(t, p.Metrics.Comments)
	assert.Equal(t, 856, *p.Metrics.Comments)
	assert.Nil(t, p.Metrics.Shares, "reddit does not report shares")
}

func TestFetchPosts_MissingMetricsStayUnset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, hotListing)
	})

	posts, err := client.FetchPosts(context.Background(), "technology")

	require.NoError(t, err)
	assert.Nil(t, posts[1].Metrics.Likes)
	assert.Nil(t, posts[1].Metrics.Comments)
}

func TestFetchPosts_SendsUserAgentAndLimit(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `{"kind":"Listing","data":{"children":[]}}`)
	}, WithUserAgent("datinsight-test/2.0"), WithLimit(10))

	posts, err := client.FetchPosts(context.Background(), "  GoLang ")

	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.Equal(t, "/r/golang/hot.json", got.URL.Path)
	assert.Equal(t, "10", got.URL.Query().Get("limit"))
	assert.Equal(t, "datinsight-test/2.0", got.Header.Get("User-Agent"))
}

func TestFetchPosts_RejectsInvalidTopicWithoutCallingUpstream(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.FetchPosts(context.Background(), "../../admin")

	assert.ErrorIs(t, err, feed.ErrProviderUnavailable)
	assert.False(t, called)
}

func TestFetchPosts_ZeroTimestampFallsBackToFetchTime(t *testing.T) {
	fixed := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"children":[{"data":{"id":"x1","title":"t","author":"a","permalink":"/r/x/1"}}]}}`)
	})
	client.now = func() time.Time { return fixed }

	posts, err := client.FetchPosts(context.Background(), "science")

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].PublishedAt.Equal(fixed))
}

func TestFetchPosts_UpstreamFailures(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusTooManyRequests, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			})

			posts, err := client.FetchPosts(context.Background(), "technology")

			assert.Nil(t, posts)
			require.ErrorIs(t, err, feed.ErrProviderUnavailable)
			assert.Contains(t, err.Error(), "Reddit")
		})
	}
}

func TestFetchPosts_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>blocked</html>`)
	})

	_, err := client.FetchPosts(context.Background(), "technology")

	assert.ErrorIs(t, err, feed.ErrProviderUnavailable)
}
