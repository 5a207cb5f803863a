package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// itemJSON is the wire shape consumed by the mobile client.
type itemJSON struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarshalJSON encodes the item as {id, type, data, timestamp}.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.payload == nil {
		return nil, fmt.Errorf("feed: marshal of empty item")
	}
	data, err := json.Marshal(it.payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(itemJSON{
		ID:        it.id,
		Type:      it.kind.String(),
		Data:      data,
		Timestamp: it.publishedAt.UTC(),
	})
}

// UnmarshalJSON decodes the wire shape, choosing the payload type from "type".
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	kind, err := ParseKind(raw.Type)
	if err != nil {
		return err
	}

	var p Payload
	switch kind {
	case KindNews:
		var a NewsArticle
		err = json.Unmarshal(raw.Data, &a)
		p = a
	case KindSocial:
		var s SocialPost
		err = json.Unmarshal(raw.Data, &s)
		p = s
	case KindPodcast:
		var e PodcastEpisode
		err = json.Unmarshal(raw.Data, &e)
		p = e
	}
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", kind, err)
	}

	*it = NewItem(p)
	return nil
}
