// Package reddit provides a client for Reddit's public subreddit listings.
//
// This package enables datinsight to:
// - Fetch hot posts for a topic (subreddit)
// - Drop stickied moderator posts
// - Normalize posts into feed.SocialPost
package reddit

// API response types

type listingResponse struct {
	Kind string `json:"kind"`
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data post   `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Ups         *int    `json:"ups"`
	NumComments *int    `json:"num_comments"`
	Stickied    bool    `json:"stickied"`
}
