package domain

import "context"

// Feed is the personalized event feed returned by the recommendation engine.
// Interests is the ordered list of top interest tokens and is empty when the
// caller has too little interaction history for personalization (cold
// start); Bookmarks carries the caller's bookmarked event ids for
// client-side membership checks.
// swagger:model Feed
type Feed struct {
	Events    []*Event `json:"events"`
	Interests []string `json:"interests"`
	Bookmarks []string `json:"bookmarks"`
}

// FeedService derives a ranked personalized event list from a user's
// interaction history, with a popularity fallback when signal is thin.
type FeedService interface {
	RecommendedEvents(ctx context.Context, userID string) (*Feed, error)
}
