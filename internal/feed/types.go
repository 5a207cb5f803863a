// Package feed defines the unified item shape shared by every provider.
//
// This package enables datinsight to:
// - Represent news, social and podcast content as one tagged variant
// - Guarantee items are immutable once constructed
// - Classify upstream and aggregation failures
package feed

import (
	"fmt"
	"time"
)

// Kind identifies which provider family produced an item.
type Kind int

const (
	KindNews Kind = iota + 1
	KindSocial
	KindPodcast
)

// Kinds lists every kind in merge order.
var Kinds = []Kind{KindNews, KindSocial, KindPodcast}

// String returns the wire label used in JSON ("news", "social", "podcast").
func (k Kind) String() string {
	switch k {
	case KindNews:
		return "news"
	case KindSocial:
		return "social"
	case KindPodcast:
		return "podcast"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a wire label back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "news":
		return KindNews, nil
	case "social":
		return KindSocial, nil
	case "podcast":
		return KindPodcast, nil
	default:
		return 0, fmt.Errorf("unknown item type %q", s)
	}
}

// Payload is implemented by NewsArticle, SocialPost and PodcastEpisode only.
type Payload interface {
	Kind() Kind
	itemID() string
	publishedAt() time.Time
}

// NewsArticle is a normalized article from the news provider.
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	SourceName  string    `json:"source"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"publishedAt"`
	ImageURL    string    `json:"imageUrl"`
	Category    string    `json:"category"`
}

// Kind implements Payload.
func (NewsArticle) Kind() Kind               { return KindNews }
func (a NewsArticle) itemID() string         { return a.ID }
func (a NewsArticle) publishedAt() time.Time { return a.PublishedAt }

// SocialPost is a normalized post from the social provider.
type SocialPost struct {
	ID          string    `json:"id"`
	Platform    string    `json:"platform"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"timestamp"`
	Metrics     Metrics   `json:"metrics"`
}

// Metrics holds engagement counters. Nil means the platform did not report it.
type Metrics struct {
	Likes    *int `json:"likes,omitempty"`
	Shares   *int `json:"shares,omitempty"`
	Comments *int `json:"comments,omitempty"`
}

// Kind implements Payload.
func (SocialPost) Kind() Kind               { return KindSocial }
func (p SocialPost) itemID() string         { return p.ID }
func (p SocialPost) publishedAt() time.Time { return p.PublishedAt }

// PodcastEpisode is a normalized episode from the podcast provider.
type PodcastEpisode struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	PodcastName     string    `json:"podcast"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	AudioURL        string    `json:"audioUrl,omitempty"`
	PublishedAt     time.Time `json:"publishedAt"`
	DurationSeconds int       `json:"duration,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty"`
}

// Kind implements Payload.
func (PodcastEpisode) Kind() Kind               { return KindPodcast }
func (e PodcastEpisode) itemID() string         { return e.ID }
func (e PodcastEpisode) publishedAt() time.Time { return e.PublishedAt }

// Item is one entry of the unified feed. Build it with NewItem.
type Item struct {
	id          string
	kind        Kind
	payload     Payload
	publishedAt time.Time
}

// NewItem wraps a payload, taking id and timestamp from it.
func NewItem(p Payload) Item {
	return Item{
		id:          p.itemID(),
		kind:        p.Kind(),
		payload:     p,
		publishedAt: p.publishedAt(),
	}
}

func (it Item) ID() string             { return it.id }
func (it Item) Kind() Kind             { return it.kind }
func (it Item) Payload() Payload       { return it.payload }
func (it Item) PublishedAt() time.Time { return it.publishedAt }

// Match dispatches on the item's payload. Every variant needs a handler, so
// adding a kind breaks every call site at compile time.
func Match[T any](it Item, news func(NewsArticle) T, social func(SocialPost) T, podcast func(PodcastEpisode) T) T {
	switch p := it.payload.(type) {
	case NewsArticle:
		return news(p)
	case SocialPost:
		return social(p)
	case PodcastEpisode:
		return podcast(p)
	default:
		panic(fmt.Sprintf("feed: unexpected payload %T", it.payload))
	}
}

// Result is the output of one aggregation call.
type Result struct {
	Items                 []Item
	TotalBeforeTruncation int
}

// Items wraps a homogeneous payload slice.
func Items[P Payload](payloads []P) []Item {
	items := make([]Item, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, NewItem(p))
	}
	return items
}
