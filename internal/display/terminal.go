// Package display provides terminal output formatting for datinsight.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/sanitize"
)

const (
	separator      = " • "
	maxDescription = 200
)

// predictionLabels name the fixed prediction horizons.
var predictionLabels = [analysis.PredictionCount]string{
	"Immediate", "Short-term", "Medium-term", "Long-term", "Wild card",
}

// Option configures the TerminalFormatter.
type Option func(*TerminalFormatter)

// WithColor turns ANSI colors on or off.
func WithColor(enabled bool) Option {
	return func(f *TerminalFormatter) {
		f.colors = enabled
	}
}

// WithClock sets the reference time for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *TerminalFormatter) {
		if now != nil {
			f.now = now
		}
	}
}

// TerminalFormatter formats feed items and analyses for terminal display.
type TerminalFormatter struct {
	colors bool
	now    func() time.Time
}

// NewTerminalFormatter creates a new terminal formatter. Colors follow the
// terminal detection of fatih/color unless overridden.
func NewTerminalFormatter(opts ...Option) *TerminalFormatter {
	f := &TerminalFormatter{colors: !color.NoColor, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *TerminalFormatter) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if f.colors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func kindColor(k feed.Kind) color.Attribute {
	switch k {
	case feed.KindNews:
		return color.FgCyan
	case feed.KindSocial:
		return color.FgYellow
	default:
		return color.FgMagenta
	}
}

// FormatItem formats a single feed item for display.
func (f *TerminalFormatter) FormatItem(item feed.Item) string {
	label := f.paint("["+strings.ToUpper(item.Kind().String())+"]", kindColor(item.Kind()), color.Bold)

	lines := feed.Match(item,
		func(a feed.NewsArticle) []string {
			return []string{
				label + " " + a.Title,
				"  " + f.byline(a.Author, a.SourceName, a.PublishedAt),
				f.indent(a.Description),
				"  " + a.URL,
			}
		},
		func(p feed.SocialPost) []string {
			return []string{
				label + " " + sanitize.Truncate(p.Content, maxDescription),
				"  " + f.byline(p.Author, p.Platform, p.PublishedAt),
				"  " + formatMetrics(p.Metrics),
				"  " + p.URL,
			}
		},
		func(e feed.PodcastEpisode) []string {
			return []string{
				label + " " + e.Title,
				"  " + f.byline("", e.PodcastName, e.PublishedAt) + formatDuration(e.DurationSeconds),
				f.indent(e.Description),
				"  " + e.URL,
			}
		},
	)

	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n") + "\n"
}

func (f *TerminalFormatter) byline(author, source string, at time.Time) string {
	var parts []string
	if author != "" {
		parts = append(parts, "by "+author)
	}
	if source != "" {
		parts = append(parts, source)
	}
	parts = append(parts, f.FormatTimestamp(at))
	return strings.Join(parts, separator)
}

func (f *TerminalFormatter) indent(text string) string {
	if text == "" {
		return ""
	}
	return "  " + sanitize.Truncate(text, maxDescription)
}

// formatMetrics formats engagement stats into a single line.
func formatMetrics(m feed.Metrics) string {
	var parts []string
	if m.Likes != nil {
		parts = append(parts, fmt.Sprintf("%d upvotes", *m.Likes))
	}
	if m.Comments != nil {
		parts = append(parts, fmt.Sprintf("%d comments", *m.Comments))
	}
	if m.Shares != nil {
		parts = append(parts, fmt.Sprintf("%d shares", *m.Shares))
	}
	return strings.Join(parts, separator)
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%s%dh%02dm", separator, int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%s%d min", separator, int(d.Minutes()))
}

// FormatFeed formats multiple feed items for display.
func (f *TerminalFormatter) FormatFeed(items []feed.Item) string {
	if len(items) == 0 {
		return "No items to display.\n"
	}

	var formatted []string
	for _, item := range items {
		formatted = append(formatted, f.FormatItem(item))
	}

	return strings.Join(formatted, "\n---\n\n")
}

// FormatResult formats an aggregated feed with a count footer.
func (f *TerminalFormatter) FormatResult(r feed.Result) string {
	out := f.FormatFeed(r.Items)
	if len(r.Items) == 0 {
		return out
	}
	return out + "\n" + f.paint(fmt.Sprintf("Showing %d of %d items", len(r.Items), r.TotalBeforeTruncation), color.Faint) + "\n"
}

// FormatAnalysis formats a deep-insight analysis.
func (f *TerminalFormatter) FormatAnalysis(r analysis.Result) string {
	var b strings.Builder
	heading := func(s string) {
		b.WriteString("\n" + f.paint(s, color.Bold, color.Underline) + "\n")
	}
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %s: %s\n", f.paint(name, color.Bold), value)
		}
	}
	list := func(items []string) {
		for _, it := range items {
			b.WriteString("  - " + it + "\n")
		}
	}

	heading("Summary")
	b.WriteString("  " + r.Summary + "\n")

	heading("Deep insights")
	field("Motive", r.DeepInsights.Motive)
	field("Patterns", r.DeepInsights.Patterns)
	field("Why now", r.DeepInsights.WhyNow)
	field("Stakeholders", r.DeepInsights.Stakeholders)
	field("Hidden factors", r.DeepInsights.HiddenFactors)

	heading("Predictions")
	for i, p := range r.Predictions {
		field(predictionLabels[i], p)
	}

	heading("What happens next")
	field("Most likely", r.WhatHappensNext.MostLikely)
	field("Best case", r.WhatHappensNext.BestCase)
	field("Worst case", r.WhatHappensNext.WorstCase)
	field("Black swan", r.WhatHappensNext.BlackSwan)

	if len(r.ActionableInsights) > 0 {
		heading("Actionable insights")
		list(r.ActionableInsights)
	}

	heading("Bias")
	fmt.Fprintf(&b, "  %s (confidence %.0f%%)\n", r.BiasAnalysis.Overall, r.BiasAnalysis.Confidence*100)
	if r.BiasAnalysis.Reasoning != "" {
		b.WriteString("  " + r.BiasAnalysis.Reasoning + "\n")
	}

	if len(r.RelatedTrends) > 0 {
		heading("Related trends")
		list(r.RelatedTrends)
	}

	return strings.TrimPrefix(b.String(), "\n")
}

// FormatUserContext formats the stored reader profile.
func (f *TerminalFormatter) FormatUserContext(uc *analysis.UserContext) string {
	if uc == nil || uc.IsZero() {
		return "No user context saved.\n"
	}
	var b strings.Builder
	row := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.paint(name, color.Bold), value)
		}
	}
	row("Goals", strings.Join(uc.Goals, ", "))
	row("Background", uc.Background)
	row("Interests", strings.Join(uc.Interests, ", "))
	row("Additional info", uc.AdditionalInfo)
	return b.String()
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := f.now().Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
