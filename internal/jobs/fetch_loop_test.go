package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"resonance/internal/store/snapshot"
)

func TestRunFetchLoopStopsOnCancel(t *testing.T) {
	db, err := snapshot.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunFetchLoop(ctx, db, fakeFeeds{}, cfg, time.Hour) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}
	counts, err := db.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts["posts"] == 0 {
		t.Fatal("initial run should have populated the snapshot")
	}
}
