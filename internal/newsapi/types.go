// Package newsapi provides a client for the NewsAPI top-headlines endpoint.
//
// This package enables datinsight to:
// - Fetch headlines for a category and country
// - Normalize articles into feed.NewsArticle
// - Act as the news source of the feed aggregator
package newsapi

// API response types (private - implementation detail)

type headlinesResponse struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []article `json:"articles"`
}

type article struct {
	Source struct {
		ID   *string `json:"id"`
		Name string  `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
}

// removedMarker is what NewsAPI puts in every field of a withdrawn article.
const removedMarker = "[Removed]"
