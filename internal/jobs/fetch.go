package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"resonance/internal/config"
	"resonance/internal/feedclient"
	"resonance/internal/flatten"
	"resonance/internal/logging"
	"resonance/internal/metrics"
	"resonance/internal/model"
	"resonance/internal/store/snapshot"
)

// RunFetchOnce pulls all five feeds, flattens them, and replaces the
// snapshot tables. Any transport failure aborts the whole run; a partial
// snapshot is never committed over feeds that were not refreshed.
func RunFetchOnce(ctx context.Context, db *snapshot.DB, client feedclient.FeedClient, cfg config.Config) error {
	start := time.Now()
	runID := uuid.NewString()
	metrics.FetchRuns.Inc()

	feeds := []struct {
		feed     feedclient.Feed
		pageSize int
	}{
		{feedclient.FeedViewedPosts, cfg.API.PageSizes.Viewed},
		{feedclient.FeedLikedPosts, cfg.API.PageSizes.Liked},
		{feedclient.FeedRatings, cfg.API.PageSizes.Ratings},
		{feedclient.FeedPosts, cfg.API.PageSizes.Posts},
		{feedclient.FeedUsers, cfg.API.PageSizes.Users},
	}
	// Fetch and flatten everything before touching the store: a transport
	// failure on any feed aborts the run with the previous snapshot intact.
	flats := make(map[feedclient.Feed]flatten.Table, len(feeds))
	for _, f := range feeds {
		doc, err := feedclient.FetchAll(ctx, client, f.feed, f.pageSize, cfg.API.MaxPages)
		if err != nil {
			metrics.FetchErrors.Inc()
			return err
		}
		flats[f.feed] = flattenFeed(f.feed, flatten.Normalize(doc))
	}

	for _, f := range feeds {
		flat := flats[f.feed]
		if err := storeFeed(ctx, db, f.feed, flat); err != nil {
			metrics.FetchErrors.Inc()
			return err
		}
		if err := db.RecordFetchRun(ctx, runID, string(f.feed), len(flat.Rows), time.Now().UTC()); err != nil {
			return err
		}
		if cfg.Export.Dir != "" {
			if err := flat.ExportCSV(cfg.Export.Dir, string(f.feed)); err != nil {
				return err
			}
		}
		logging.Info("feed_fetched", map[string]any{"run_id": runID, "feed": f.feed, "rows": len(flat.Rows)})
	}
	metrics.ObserveFetchDuration(start)
	logging.Info("fetch_once", map[string]any{"run_id": runID, "duration": time.Since(start).String()})
	return nil
}

func flattenFeed(feed feedclient.Feed, tbl flatten.Table) flatten.Table {
	switch feed {
	case feedclient.FeedViewedPosts:
		return flatten.ViewedPosts(tbl)
	case feedclient.FeedLikedPosts:
		return flatten.LikedPosts(tbl)
	case feedclient.FeedRatings:
		return flatten.Ratings(tbl)
	case feedclient.FeedPosts:
		return flatten.Posts(tbl)
	case feedclient.FeedUsers:
		return flatten.Users(tbl)
	}
	return tbl
}

func storeFeed(ctx context.Context, db *snapshot.DB, feed feedclient.Feed, flat flatten.Table) error {
	switch feed {
	case feedclient.FeedViewedPosts:
		return db.ReplaceViewedPosts(ctx, model.ViewedPostsFromTable(flat))
	case feedclient.FeedLikedPosts:
		return db.ReplaceLikedPosts(ctx, model.LikedPostsFromTable(flat))
	case feedclient.FeedRatings:
		return db.ReplaceRatings(ctx, model.RatingsFromTable(flat))
	case feedclient.FeedPosts:
		return db.ReplacePosts(ctx, model.PostsFromTable(flat))
	case feedclient.FeedUsers:
		return db.ReplaceUsers(ctx, model.UsersFromTable(flat))
	}
	return nil
}
