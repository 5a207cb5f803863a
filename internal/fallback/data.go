package fallback

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/feed"
)

//go:embed data.yaml
var rawData []byte

type dataset struct {
	News        []newsRecord         `yaml:"news"`
	Social      []socialRecord       `yaml:"social"`
	Podcasts    []podcastRecord      `yaml:"podcasts"`
	Analysis    map[string]any       `yaml:"analysis"`
	UserContext analysis.UserContext `yaml:"userContext"`

	analysis analysis.Result
}

type newsRecord struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	URL         string        `yaml:"url"`
	Source      string        `yaml:"source"`
	Author      string        `yaml:"author"`
	Age         time.Duration `yaml:"age"`
	ImageURL    string        `yaml:"imageUrl"`
	Category    string        `yaml:"category"`
}

type socialRecord struct {
	ID       string        `yaml:"id"`
	Platform string        `yaml:"platform"`
	Content  string        `yaml:"content"`
	Author   string        `yaml:"author"`
	URL      string        `yaml:"url"`
	Age      time.Duration `yaml:"age"`
	Likes    *int          `yaml:"likes"`
	Shares   *int          `yaml:"shares"`
	Comments *int          `yaml:"comments"`
}

type podcastRecord struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Podcast     string        `yaml:"podcast"`
	Description string        `yaml:"description"`
	URL         string        `yaml:"url"`
	AudioURL    string        `yaml:"audioUrl"`
	Age         time.Duration `yaml:"age"`
	Duration    int           `yaml:"duration"`
	ImageURL    string        `yaml:"imageUrl"`
}

// loadData parses the embedded dataset once. The analysis goes through the
// same validation as live answers.
var loadData = sync.OnceValues(func() (*dataset, error) {
	var ds dataset
	if err := yaml.Unmarshal(rawData, &ds); err != nil {
		return nil, fmt.Errorf("parse fallback data: %w", err)
	}
	raw, err := json.Marshal(ds.Analysis)
	if err != nil {
		return nil, fmt.Errorf("encode fallback analysis: %w", err)
	}
	result, err := analysis.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("fallback analysis: %w", err)
	}
	ds.analysis = result
	return &ds, nil
})

func (r newsRecord) at(now time.Time) feed.NewsArticle {
	return feed.NewsArticle{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		SourceName:  r.Source,
		Author:      r.Author,
		PublishedAt: now.Add(-r.Age),
		ImageURL:    r.ImageURL,
		Category:    r.Category,
	}
}

func (r socialRecord) at(now time.Time) feed.SocialPost {
	return feed.SocialPost{
		ID:          r.ID,
		Platform:    r.Platform,
		Content:     r.Content,
		Author:      r.Author,
		URL:         r.URL,
		PublishedAt: now.Add(-r.Age),
		Metrics:     feed.Metrics{Likes: r.Likes, Shares: r.Shares, Comments: r.Comments},
	}
}

func (r podcastRecord) at(now time.Time) feed.PodcastEpisode {
	return feed.PodcastEpisode{
		ID:              r.ID,
		Title:           r.Title,
		PodcastName:     r.Podcast,
		Description:     r.Description,
		URL:             r.URL,
		AudioURL:        r.AudioURL,
		PublishedAt:     now.Add(-r.Age),
		DurationSeconds: r.Duration,
		ImageURL:        r.ImageURL,
	}
}
