// Package config provides Viper-based configuration management for datinsight
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/transport"
)

// EnvPrefix prefixes every environment override, e.g. DATINSIGHT_FEED_LIMIT.
const EnvPrefix = "DATINSIGHT"

// Config represents the complete datinsight configuration
type Config struct {
	UseMock  bool           `mapstructure:"use_mock" yaml:"use_mock"`
	News     NewsConfig     `mapstructure:"news" yaml:"news"`
	Reddit   RedditConfig   `mapstructure:"reddit" yaml:"reddit"`
	Podcasts PodcastsConfig `mapstructure:"podcasts" yaml:"podcasts"`
	Feed     FeedConfig     `mapstructure:"feed" yaml:"feed"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Remote   RemoteConfig   `mapstructure:"remote" yaml:"remote"`
	Profile  ProfileConfig  `mapstructure:"profile" yaml:"profile"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// NewsConfig configures the NewsAPI adapter
type NewsConfig struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Country  string `mapstructure:"country" yaml:"country"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`
}

// RedditConfig configures the social adapter and its outbound rate limit
type RedditConfig struct {
	BaseURL       string  `mapstructure:"base_url" yaml:"base_url"`
	UserAgent     string  `mapstructure:"user_agent" yaml:"user_agent"`
	Limit         int     `mapstructure:"limit" yaml:"limit"`
	RatePerSecond float64 `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	Burst         int     `mapstructure:"burst" yaml:"burst"`
}

// PodcastsConfig configures the iTunes Search adapter
type PodcastsConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Limit   int    `mapstructure:"limit" yaml:"limit"`
}

// FeedConfig contains aggregation settings
type FeedConfig struct {
	Limit      int           `mapstructure:"limit" yaml:"limit"`
	PodcastCap int           `mapstructure:"podcast_cap" yaml:"podcast_cap"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Fallback serves demo data when every live source fails.
	Fallback bool `mapstructure:"fallback" yaml:"fallback"`
}

// AnalysisConfig configures the language model
type AnalysisConfig struct {
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Model       string        `mapstructure:"model" yaml:"model"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Port         int      `mapstructure:"port" yaml:"port"`
	AnalyzeRate  float64  `mapstructure:"analyze_rate" yaml:"analyze_rate"`
	AnalyzeBurst int      `mapstructure:"analyze_burst" yaml:"analyze_burst"`
	CORSOrigins  []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// RemoteConfig points the CLI at a running datinsight server
type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// ProfileConfig locates the stored user context
type ProfileConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultDir returns the configuration directory. DATINSIGHT_CONFIG_DIR wins
// over the user config dir.
func DefaultDir() string {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "datinsight")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "datinsight")
}

// Load reads configuration from file and environment variables. It returns
// the config and the file used, empty when none was found.
func Load(cfgFile string) (*Config, string, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("datinsight")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Plain names used by existing deployments.
	_ = v.BindEnv("news.api_key", EnvPrefix+"_NEWS_API_KEY", "NEWS_API_KEY")
	_ = v.BindEnv("analysis.api_key", EnvPrefix+"_ANALYSIS_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("validating config: %w", err)
	}

	return &cfg, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("use_mock", false)

	v.SetDefault("news.api_key", "")
	v.SetDefault("news.base_url", "https://newsapi.org")
	v.SetDefault("news.country", "us")
	v.SetDefault("news.page_size", 20)

	v.SetDefault("reddit.base_url", "https://www.reddit.com")
	v.SetDefault("reddit.user_agent", "Datinsight/1.0")
	v.SetDefault("reddit.limit", 15)
	v.SetDefault("reddit.rate_per_second", 1.0)
	v.SetDefault("reddit.burst", 2)

	v.SetDefault("podcasts.base_url", "https://itunes.apple.com")
	v.SetDefault("podcasts.limit", 15)

	v.SetDefault("feed.limit", 30)
	v.SetDefault("feed.podcast_cap", 5)
	v.SetDefault("feed.timeout", transport.DefaultTimeout)
	v.SetDefault("feed.fallback", true)

	v.SetDefault("analysis.api_key", "")
	v.SetDefault("analysis.base_url", "https://api.openai.com/v1")
	v.SetDefault("analysis.model", "gpt-3.5-turbo-1106")
	v.SetDefault("analysis.temperature", 0.8)
	v.SetDefault("analysis.max_tokens", 1500)
	v.SetDefault("analysis.timeout", 30*time.Second)

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.analyze_rate", 0.5)
	v.SetDefault("server.analyze_burst", 3)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("remote.base_url", "")
	v.SetDefault("profile.dir", DefaultDir())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	checkTimeout := func(name string, d time.Duration) {
		if d < transport.MinTimeout || d > transport.MaxTimeout {
			errs = append(errs, fmt.Errorf("%s must be between %s and %s, got %s", name, transport.MinTimeout, transport.MaxTimeout, d))
		}
	}
	checkTimeout("feed.timeout", c.Feed.Timeout)
	checkTimeout("analysis.timeout", c.Analysis.Timeout)

	checkRange := func(name string, v, lo, hi int) {
		if v < lo || v > hi {
			errs = append(errs, fmt.Errorf("%s must be between %d and %d, got %d", name, lo, hi, v))
		}
	}
	checkRange("news.page_size", c.News.PageSize, 1, 20)
	checkRange("reddit.limit", c.Reddit.Limit, 1, 20)
	checkRange("podcasts.limit", c.Podcasts.Limit, 1, 20)
	checkRange("feed.limit", c.Feed.Limit, 1, 30)
	checkRange("feed.podcast_cap", c.Feed.PodcastCap, 1, 5)
	checkRange("reddit.burst", c.Reddit.Burst, 1, 100)
	checkRange("server.port", c.Server.Port, 1, 65535)

	if c.Reddit.RatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("reddit.rate_per_second must be positive, got %v", c.Reddit.RatePerSecond))
	}
	if c.Analysis.Temperature < 0 || c.Analysis.Temperature > 2 {
		errs = append(errs, fmt.Errorf("analysis.temperature must be between 0 and 2, got %v", c.Analysis.Temperature))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	return errors.Join(errs...)
}

// RequireNewsKey fails fast when live news cannot be served.
func (c *Config) RequireNewsKey() error {
	if c.UseMock || strings.TrimSpace(c.News.APIKey) != "" {
		return nil
	}
	return &feed.ConfigError{Provider: "news", Setting: "NEWS_API_KEY"}
}

// RequireAnalysisKey fails fast when live analysis cannot be served.
func (c *Config) RequireAnalysisKey() error {
	if c.UseMock || strings.TrimSpace(c.Analysis.APIKey) != "" {
		return nil
	}
	return &feed.ConfigError{Provider: "analysis", Setting: "OPENAI_API_KEY"}
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	c.News.APIKey = mask(c.News.APIKey)
	c.Analysis.APIKey = mask(c.Analysis.APIKey)
	c.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return c
}

func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "****"
	}
}
