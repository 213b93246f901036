package feedclient

import (
	"context"

	"resonance/internal/flatten"
)

// FetchAll pulls pages of a feed until a short page or maxPages, merging
// the records into a single envelope document with the feed's list key.
// Any page failure aborts the whole feed.
func FetchAll(ctx context.Context, c FeedClient, feed Feed, pageSize, maxPages int) (flatten.Document, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	if maxPages <= 0 {
		maxPages = 1
	}
	key := EnvelopeKey(feed)
	var merged []any
	for page := 1; page <= maxPages; page++ {
		doc, err := c.FetchFeed(ctx, feed, page, pageSize)
		if err != nil {
			return nil, err
		}
		items, _ := doc[key].([]any)
		merged = append(merged, items...)
		if len(items) < pageSize {
			break
		}
	}
	if merged == nil {
		merged = []any{}
	}
	return flatten.Document{key: merged}, nil
}
