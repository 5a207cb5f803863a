package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gauthierbraillon/datinsight/internal/feed"
)

// isolate keeps the developer's real config and env out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATINSIGHT_CONFIG_DIR", dir)
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PORT", "")
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "datinsight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, used, err := Load("")

	require.NoError(t, err)
	assert.Empty(t, used, "no config file should be reported when none exists")
	assert.False(t, cfg.UseMock)
	assert.Equal(t, "us", cfg.News.Country)
	assert.Equal(t, 20, cfg.News.PageSize)
	assert.Equal(t, 15, cfg.Reddit.Limit)
	assert.Equal(t, 15, cfg.Podcasts.Limit)
	assert.Equal(t, 30, cfg.Feed.Limit)
	assert.Equal(t, 5, cfg.Feed.PodcastCap)
	assert.Equal(t, 15*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, "gpt-3.5-turbo-1106", cfg.Analysis.Model)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ReadsFileFromSearchPath(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
use_mock: true
feed:
  limit: 10
  timeout: 20s
reddit:
  user_agent: my-agent/0.1
log:
  level: debug
  format: json
`)

	cfg, used, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "datinsight.yaml"), used)
	assert.True(t, cfg.UseMock)
	assert.Equal(t, 10, cfg.Feed.Limit)
	assert.Equal(t, 20*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "my-agent/0.1", cfg.Reddit.UserAgent)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "news:\n  country: de\n")
	t.Setenv("NEWS_API_KEY", "news-secret")
	t.Setenv("OPENAI_API_KEY", "sk-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("DATINSIGHT_NEWS_COUNTRY", "fr")
	t.Setenv("DATINSIGHT_FEED_LIMIT", "12")

	cfg, _, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "news-secret", cfg.News.APIKey)
	assert.Equal(t, "sk-secret", cfg.Analysis.APIKey)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "fr", cfg.News.Country, "environment should beat the config file")
	assert.Equal(t, 12, cfg.Feed.Limit)
}

func TestLoad_MissingExplicitFileIsAnError(t *testing.T) {
	dir := isolate(t)

	_, _, err := Load(filepath.Join(dir, "nope.yaml"))

	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
feed:
  timeout: 2m
news:
  page_size: 50
log:
  level: loud
`)

	_, _, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed.timeout")
	assert.Contains(t, err.Error(), "news.page_size")
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoad_FeedBoundsAreEnforced(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"limit above maximum", map[string]string{"DATINSIGHT_FEED_LIMIT": "100"}, "feed.limit"},
		{"zero limit", map[string]string{"DATINSIGHT_FEED_LIMIT": "0"}, "feed.limit"},
		{"zero podcast cap", map[string]string{"DATINSIGHT_FEED_PODCAST_CAP": "0"}, "feed.podcast_cap"},
		{"podcast cap above maximum", map[string]string{"DATINSIGHT_FEED_PODCAST_CAP": "6"}, "feed.podcast_cap"},
		{"zero reddit burst", map[string]string{"DATINSIGHT_REDDIT_BURST": "0"}, "reddit.burst"},
		{"upper bounds accepted", map[string]string{"DATINSIGHT_FEED_LIMIT": "30", "DATINSIGHT_FEED_PODCAST_CAP": "5"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, _, err := Load("")

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireKeys(t *testing.T) {
	cfg := Config{}

	assert.ErrorIs(t, cfg.RequireNewsKey(), feed.ErrConfiguration)
	assert.ErrorIs(t, cfg.RequireAnalysisKey(), feed.ErrConfiguration)

	cfg.UseMock = true
	assert.NoError(t, cfg.RequireNewsKey(), "demo mode needs no keys")
	assert.NoError(t, cfg.RequireAnalysisKey())

	cfg = Config{News: NewsConfig{APIKey: "k"}, Analysis: AnalysisConfig{APIKey: "k"}}
	assert.NoError(t, cfg.RequireNewsKey())
	assert.NoError(t, cfg.RequireAnalysisKey())
}

func TestRedacted_MasksSecrets(t *testing.T) {
	cfg := Config{
		News:     NewsConfig{APIKey: "0123456789abcdef"},
		Analysis: AnalysisConfig{APIKey: "short", Timeout: 30 * time.Second},
	}

	out, err := yaml.Marshal(cfg.Redacted())
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, "0123456789abcdef")
	assert.Contains(t, text, "0123****")
	assert.NotContains(t, text, "short")
	assert.Contains(t, text, "timeout: 30s")
	assert.Equal(t, "0123456789abcdef", cfg.News.APIKey, "original config must stay untouched")
}
