package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"resonance/internal/config"
	"resonance/internal/feedclient"
	"resonance/internal/flatten"
	"resonance/internal/store/snapshot"
)

type fakeFeeds struct{}

func (fakeFeeds) FetchFeed(ctx context.Context, feed feedclient.Feed, page, pageSize int) (flatten.Document, error) {
	if page > 1 {
		return flatten.Document{feedclient.EnvelopeKey(feed): []any{}}, nil
	}
	switch feed {
	case feedclient.FeedUsers:
		return flatten.Document{"users": []any{
			map[string]any{"id": float64(9), "username": "maya", "follower_count": float64(3)},
		}}, nil
	case feedclient.FeedPosts:
		return flatten.Document{"posts": []any{
			map[string]any{"id": float64(1), "slug": "p1", "title": "space adventure", "view_count": float64(100),
				"post_summary": map[string]any{"emotions": map[string]any{"overall_sentiment": "excited"}}},
			map[string]any{"id": float64(2), "slug": "p2", "title": "cooking", "view_count": float64(10)},
		}}, nil
	case feedclient.FeedLikedPosts:
		return flatten.Document{"posts": []any{
			map[string]any{"id": float64(1), "post_id": float64(1), "user_id": float64(9), "liked_at": "2024-03-01"},
			map[string]any{"id": float64(2), "post_id": float64(2), "user_id": float64(9)},
		}}, nil
	default:
		return flatten.Document{"posts": []any{}}, nil
	}
}

type brokenFeeds struct{}

func (brokenFeeds) FetchFeed(ctx context.Context, feed feedclient.Feed, page, pageSize int) (flatten.Document, error) {
	return nil, fmt.Errorf("content api status 503 for feed %s", feed)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	return cfg
}

func TestRunFetchOncePopulatesSnapshot(t *testing.T) {
	db, err := snapshot.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	cfg := testConfig(t)
	if err := RunFetchOnce(context.Background(), db, fakeFeeds{}, cfg); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["users"] != 1 || counts["posts"] != 2 || counts["liked_posts"] != 2 {
		t.Fatalf("snapshot counts mismatch: %v", counts)
	}
	likes, err := db.LoadLikedPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if likes[1].LikedAt != flatten.NoData {
		t.Fatalf("missing liked_at must carry the sentinel, got %q", likes[1].LikedAt)
	}
	for _, name := range []string{"users.csv", "posts.csv", "liked_posts.csv"} {
		if _, err := os.Stat(filepath.Join(cfg.Export.Dir, name)); err != nil {
			t.Fatalf("expected CSV export %s: %v", name, err)
		}
	}
}

func TestRunFetchOnceAbortsOnTransportError(t *testing.T) {
	db, err := snapshot.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	cfg := testConfig(t)
	if err := RunFetchOnce(context.Background(), db, brokenFeeds{}, cfg); err == nil {
		t.Fatal("transport failure must abort the batch")
	}
	counts, err := db.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for table, n := range counts {
		if n != 0 {
			t.Fatalf("no partial snapshot allowed, %s has %d rows", table, n)
		}
	}
}
