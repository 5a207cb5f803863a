// Package itunes provides a client for the iTunes Search API, used to find
// podcast episodes by genre or search term.
package itunes

type searchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []result `json:"results"`
}

type result struct {
	WrapperType      string `json:"wrapperType"`
	Kind             string `json:"kind"`
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	CollectionName   string `json:"collectionName"`
	Description      string `json:"description"`
	ShortDescription string `json:"shortDescription"`
	TrackViewURL     string `json:"trackViewUrl"`
	EpisodeURL       string `json:"episodeUrl"`
	ReleaseDate      string `json:"releaseDate"`
	TrackTimeMillis  int64  `json:"trackTimeMillis"`
	ArtworkURL600    string `json:"artworkUrl600"`
	ArtworkURL160    string `json:"artworkUrl160"`
	ArtworkURL100    string `json:"artworkUrl100"`
	ArtworkURL60     string `json:"artworkUrl60"`
}
