package snapshot

import (
	"context"
	"testing"
	"time"

	"resonance/internal/model"
)

func TestUsersRoundTrip(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	users := []model.User{
		{ID: 1, Username: "maya", FirstName: "Maya", FollowerCount: 10, Verified: true, Latitude: 1.5},
		{ID: 2, Username: "kai", HasWallet: true},
	}
	if err := db.ReplaceUsers(ctx, users); err != nil {
		t.Fatal(err)
	}
	got, err := db.LoadUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Username != "maya" || !got[0].Verified || got[1].HasWallet != true {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestPostsPreserveCatalogOrder(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	// Feed order deliberately not id order; ranking ties depend on it.
	posts := []model.Post{
		{ID: 9, Title: "first", ViewCount: 1},
		{ID: 2, Title: "second", OverallSentiment: "calm"},
		{ID: 5, Title: "third"},
	}
	if err := db.ReplacePosts(ctx, posts); err != nil {
		t.Fatal(err)
	}
	got, err := db.LoadPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID != 9 || got[1].ID != 2 || got[2].ID != 5 {
		t.Fatalf("catalog order lost: %+v", got)
	}
	if got[1].OverallSentiment != "calm" {
		t.Fatalf("summary field lost: %+v", got[1])
	}
}

func TestReplaceOverwritesPreviousSnapshot(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	if err := db.ReplaceLikedPosts(ctx, []model.LikedPost{{ID: 1, PostID: 2, UserID: 3, LikedAt: "No Data"}}); err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceLikedPosts(ctx, []model.LikedPost{{ID: 4, PostID: 5, UserID: 6, LikedAt: "2024-01-01"}}); err != nil {
		t.Fatal(err)
	}
	got, err := db.LoadLikedPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 4 {
		t.Fatalf("snapshot must be replaced wholesale: %+v", got)
	}
}

func TestFetchRunsAndCounts(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	if err := db.RecordFetchRun(ctx, "run-1", "posts", 42, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceRatings(ctx, []model.Rating{{ID: 1, PostID: 2, UserID: 3, RatingPercent: 80, RatedAt: "2024-02-02"}}); err != nil {
		t.Fatal(err)
	}
	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["ratings"] != 1 || counts["users"] != 0 {
		t.Fatalf("counts mismatch: %v", counts)
	}
}
