package jobs

import (
	"context"
	"time"

	"resonance/internal/config"
	"resonance/internal/feedclient"
	"resonance/internal/logging"
	"resonance/internal/store/snapshot"
)

// RunFetchLoop refreshes the snapshot on a ticker until ctx is cancelled.
func RunFetchLoop(ctx context.Context, db *snapshot.DB, client feedclient.FeedClient, cfg config.Config, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	// run immediately
	if err := RunFetchOnce(ctx, db, client, cfg); err != nil {
		logging.Error("fetch_once_error", map[string]any{"error": err.Error()})
	}
	for {
		select {
		case <-ctx.Done():
			logging.Info("fetch_loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			if err := RunFetchOnce(ctx, db, client, cfg); err != nil {
				logging.Error("fetch_once_error", map[string]any{"error": err.Error()})
			}
		}
	}
}
