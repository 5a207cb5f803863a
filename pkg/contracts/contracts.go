// Package contracts holds recorded upstream response shapes. Adapters are
// tested against them so a provider schema change shows up as a failing
// test rather than an empty feed.
package contracts

// NewsAPITopHeadlinesContract is a NewsAPI v2 /top-headlines response. The
// second article is a withdrawn one, which NewsAPI reports as "[Removed]".
const NewsAPITopHeadlinesContract = `{
  "status": "ok",
  "totalResults": 2,
  "articles": [
    {
      "source": {"id": "the-verge", "name": "The Verge"},
      "author": "Sam Writer",
      "title": "Regulators open inquiry into cloud pricing",
      "description": "The review covers <b>egress fees</b> and bundled discounts.",
      "url": "https://example.com/cloud-pricing",
      "urlToImage": "https://example.com/cloud.jpg",
      "publishedAt": "2024-05-02T14:05:00Z",
      "content": "The review covers egress fees... [+2100 chars]"
    },
    {
      "source": {"id": null, "name": "[Removed]"},
      "author": null,
      "title": "[Removed]",
      "description": "[Removed]",
      "url": "https://removed.com",
      "urlToImage": null,
      "publishedAt": "1970-01-01T00:00:00Z",
      "content": "[Removed]"
    }
  ]
}`

// RedditHotListingContract is a /r/<sub>/hot.json Listing.
const RedditHotListingContract = `{
  "kind": "Listing",
  "data": {
    "after": "t3_x2",
    "dist": 2,
    "children": [
      {
        "kind": "t3",
        "data": {
          "id": "x1",
          "subreddit": "technology",
          "title": "Community megathread",
          "author": "AutoModerator",
          "permalink": "/r/technology/comments/x1/community_megathread/",
          "created_utc": 1714651200.0,
          "ups": 12,
          "num_comments": 40,
          "stickied": true
        }
      },
      {
        "kind": "t3",
        "data": {
          "id": "x2",
          "subreddit": "technology",
          "title": "Battery startup claims 1,000-cycle solid-state cell",
          "author": "cell_chemist",
          "permalink": "/r/technology/comments/x2/battery_startup/",
          "created_utc": 1714654800.0,
          "ups": 5321,
          "num_comments": 611,
          "stickied": false
        }
      }
    ]
  }
}`

// ITunesPodcastSearchContract is an iTunes Search API response for
// media=podcast&entity=podcastEpisode.
const ITunesPodcastSearchContract = `{
  "resultCount": 1,
  "results": [
    {
      "wrapperType": "podcastEpisode",
      "kind": "podcast-episode",
      "trackId": 1000654321,
      "trackName": "Inside the chip supply chain",
      "collectionName": "Signals Weekly",
      "description": "<p>How fabs plan capacity years ahead.</p>",
      "trackViewUrl": "https://podcasts.apple.com/us/podcast/signals/id1?i=1000654321",
      "artworkUrl600": "https://example.com/art600.jpg",
      "artworkUrl160": "https://example.com/art160.jpg",
      "releaseDate": "2024-05-01T09:00:00Z",
      "trackTimeMillis": 2712000
    }
  ]
}`

// OpenAIChatCompletionContract is a /chat/completions response whose message
// content is a complete analysis.
const OpenAIChatCompletionContract = `{
  "id": "chatcmpl-abc",
  "object": "chat.completion",
  "created": 1714654800,
  "model": "gpt-3.5-turbo-1106",
  "choices": [
    {
      "index": 0,
      "message": {
        "role": "assistant",
        "content": "{\"summary\":\"Regulators are examining cloud pricing.\",\"deepInsights\":{\"motive\":\"Competition concerns\",\"patterns\":\"Follows telecom precedent\",\"whyNow\":\"Rising AI workloads\",\"stakeholders\":\"Hyperscalers and customers\",\"hiddenFactors\":\"Data sovereignty\"},\"predictions\":[\"Formal hearings\",\"Fee cuts\",\"New pricing rules\",\"Portable workloads\",\"Forced unbundling\"],\"whatHappensNext\":{\"mostLikely\":\"Voluntary fee reductions\",\"bestCase\":\"Clear portability rules\",\"worstCase\":\"Years of litigation\",\"blackSwan\":\"Provider exits a market\"},\"actionableInsights\":[\"Audit egress costs\"],\"biasAnalysis\":{\"overall\":\"center\",\"confidence\":0.7,\"reasoning\":\"Quotes both sides\"},\"relatedTrends\":[\"Multi-cloud\"]}"
      },
      "finish_reason": "stop"
    }
  ],
  "usage": {"prompt_tokens": 512, "completion_tokens": 300, "total_tokens": 812}
}`
