package display

import (
	"strings"
	"testing"
	"time"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/feed"
)

var now = time.Date(2025, 5, 20, 18, 0, 0, 0, time.UTC)

func newFormatter() *TerminalFormatter {
	return NewTerminalFormatter(WithColor(false), WithClock(func() time.Time { return now }))
}

func intPtr(n int) *int { return &n }

func TestAC300_TerminalFeed_ShowsNewsHeadline(t *testing.T) {
	item := feed.NewItem(feed.NewsArticle{
		ID:          "news-1",
		Title:       "AI Revolution",
		SourceName:  "Tech Daily",
		Author:      "Sarah Chen",
		URL:         "https://example.com/ai",
		PublishedAt: now.Add(-2 * time.Hour),
	})

	output := newFormatter().FormatItem(item)

	for _, want := range []string{"[NEWS]", "AI Revolution", "by Sarah Chen", "Tech Daily", "2 hours ago", "https://example.com/ai"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q in terminal output, got:\n%s", want, output)
		}
	}
}

func TestAC300_TerminalFeed_OmitsMissingAuthor(t *testing.T) {
	item := feed.NewItem(feed.NewsArticle{ID: "news-1", Title: "T", SourceName: "Wire", PublishedAt: now})

	output := newFormatter().FormatItem(item)

	if strings.Contains(output, "by ") {
		t.Errorf("user should not see an empty byline, got:\n%s", output)
	}
}

func TestAC300_TerminalFeed_ShowsSocialEngagement(t *testing.T) {
	item := feed.NewItem(feed.SocialPost{
		ID:          "reddit-1",
		Platform:    "reddit",
		Content:     "Open source wins again",
		Author:      "oss_fan",
		PublishedAt: now.Add(-30 * time.Minute),
		Metrics:     feed.Metrics{Likes: intPtr(1200), Comments: intPtr(45)},
	})

	output := newFormatter().FormatItem(item)

	for _, want := range []string{"[SOCIAL]", "Open source wins again", "1200 upvotes", "45 comments", "30 minutes ago"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "shares") {
		t.Error("unreported shares should not be shown")
	}
}

func TestAC300_TerminalFeed_ShowsPodcastDuration(t *testing.T) {
	item := feed.NewItem(feed.PodcastEpisode{
		ID:              "podcast-1",
		Title:           "Scaling Databases",
		PodcastName:     "SE Daily",
		PublishedAt:     now.Add(-72 * time.Hour),
		DurationSeconds: 2847,
	})

	output := newFormatter().FormatItem(item)

	for _, want := range []string{"[PODCAST]", "Scaling Databases", "SE Daily", "3 days ago", "47 min"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q, got:\n%s", want, output)
		}
	}
}

func TestAC301_TerminalFeed_ShowsRelativeTimestamps(t *testing.T) {
	formatter := newFormatter()
	testCases := []struct {
		name      string
		timestamp time.Time
		contains  string
	}{
		{"just published", now.Add(-10 * time.Second), "just now"},
		{"recent minutes", now.Add(-30 * time.Minute), "min"},
		{"recent hours", now.Add(-3 * time.Hour), "hour"},
		{"recent days", now.Add(-48 * time.Hour), "day"},
		{"old content", now.Add(-30 * 24 * time.Hour), "Apr 20, 2025"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := formatter.FormatTimestamp(tc.timestamp)
			if !strings.Contains(output, tc.contains) {
				t.Errorf("user should see %q for %s content, got %q", tc.contains, tc.name, output)
			}
		})
	}
}

func TestAC303_TerminalFeed_TruncatesLongDescriptions(t *testing.T) {
	item := feed.NewItem(feed.NewsArticle{ID: "news-1", Title: "T", Description: strings.Repeat("word ", 100), PublishedAt: now})

	output := newFormatter().FormatItem(item)

	if !strings.Contains(output, "...") {
		t.Error("user should see ellipsis indicating text was truncated")
	}
}

func TestAC304_TerminalFeed_ShowsMultipleItemsAndCount(t *testing.T) {
	result := feed.Result{
		Items: []feed.Item{
			feed.NewItem(feed.NewsArticle{ID: "news-1", Title: "First Story", PublishedAt: now}),
			feed.NewItem(feed.PodcastEpisode{ID: "podcast-1", Title: "Second Episode", PublishedAt: now}),
		},
		TotalBeforeTruncation: 42,
	}

	output := newFormatter().FormatResult(result)

	for _, want := range []string{"First Story", "Second Episode", "Showing 2 of 42 items"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q, got:\n%s", want, output)
		}
	}
}

func TestAC305_TerminalFeed_ShowsEmptyFeedMessage(t *testing.T) {
	output := newFormatter().FormatResult(feed.Result{})

	if !strings.Contains(strings.ToLower(output), "no items") {
		t.Error("user should see message indicating no content available")
	}
}

func TestAC306_Analysis_ShowsEverySection(t *testing.T) {
	r := analysis.Result{
		Summary:      "Rates stay on hold.",
		DeepInsights: analysis.DeepInsights{Motive: "inflation risk"},
		Predictions:  [5]string{"p1", "p2", "p3", "p4", "p5"},
		WhatHappensNext: analysis.Outlook{
			MostLikely: "gradual cuts",
		},
		ActionableInsights: []string{"refinance later"},
		BiasAnalysis:       analysis.BiasAnalysis{Overall: analysis.BiasCenter, Confidence: 0.8, Reasoning: "neutral wire copy"},
		RelatedTrends:      []string{"housing"},
	}

	output := newFormatter().FormatAnalysis(r)

	for _, want := range []string{
		"Rates stay on hold.", "Motive: inflation risk",
		"Immediate: p1", "Wild card: p5",
		"Most likely: gradual cuts", "- refinance later",
		"center (confidence 80%)", "- housing",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q in analysis, got:\n%s", want, output)
		}
	}
}

func TestAC307_UserContext_Display(t *testing.T) {
	f := newFormatter()

	if out := f.FormatUserContext(nil); !strings.Contains(out, "No user context") {
		t.Errorf("expected empty message, got %q", out)
	}

	out := f.FormatUserContext(&analysis.UserContext{Goals: []string{"business", "career"}, Background: "founder"})
	if !strings.Contains(out, "Goals: business, career") || !strings.Contains(out, "Background: founder") {
		t.Errorf("user should see saved profile, got:\n%s", out)
	}
}

func TestColorOutput_CanBeEnabled(t *testing.T) {
	item := feed.NewItem(feed.NewsArticle{ID: "news-1", Title: "T", PublishedAt: now})

	colored := NewTerminalFormatter(WithColor(true), WithClock(func() time.Time { return now })).FormatItem(item)
	plain := newFormatter().FormatItem(item)

	if !strings.Contains(colored, "\x1b[") {
		t.Error("colored output should contain ANSI escapes")
	}
	if strings.Contains(plain, "\x1b[") {
		t.Error("plain output should not contain ANSI escapes")
	}
}
