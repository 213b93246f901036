package feedclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resonance/internal/flatten"
)

func newTestClient(baseURL string) *HTTPClient {
	c := NewHTTPClient(baseURL, "test-token", "test-algo")
	c.maxAttempts = 3
	c.baseBackoff = 10 * time.Millisecond
	return c
}

func TestFetchFeedSendsFlicToken(t *testing.T) {
	var gotToken, gotAlgo, gotPage string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Flic-Token")
		gotAlgo = r.URL.Query().Get("resonance_algorithm")
		gotPage = r.URL.Query().Get("page")
		_, _ = w.Write([]byte(`{"posts":[{"id":1}]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	c.httpClient = ts.Client()
	doc, err := c.FetchFeed(context.Background(), FeedLikedPosts, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if gotToken != "test-token" {
		t.Fatalf("Flic-Token header missing, got %q", gotToken)
	}
	if gotAlgo != "test-algo" {
		t.Fatalf("interaction feed must carry the algorithm key, got %q", gotAlgo)
	}
	if gotPage != "1" {
		t.Fatalf("page param mismatch: %q", gotPage)
	}
	if _, ok := doc["posts"]; !ok {
		t.Fatalf("decoded document missing envelope: %v", doc)
	}
}

func TestFetchFeedOmitsAlgorithmForCatalogFeeds(t *testing.T) {
	var gotAlgo string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAlgo = r.URL.Query().Get("resonance_algorithm")
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	c.httpClient = ts.Client()
	if _, err := c.FetchFeed(context.Background(), FeedUsers, 1, 10); err != nil {
		t.Fatal(err)
	}
	if gotAlgo != "" {
		t.Fatalf("catalog feed must not carry the algorithm key, got %q", gotAlgo)
	}
}

func TestFetchFeedFailsOnErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	c.httpClient = ts.Client()
	if _, err := c.FetchFeed(context.Background(), FeedPosts, 1, 10); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestDoWithRetryHandles429(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"posts":[]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	c.httpClient = ts.Client()
	if _, err := c.FetchFeed(context.Background(), FeedPosts, 1, 10); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", attempts)
	}
}

type pagedFake struct {
	pages map[int][]any
}

func (f pagedFake) FetchFeed(ctx context.Context, feed Feed, page, pageSize int) (flatten.Document, error) {
	return flatten.Document{EnvelopeKey(feed): f.pages[page]}, nil
}

func records(n, offset int) []any {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]any{"id": float64(offset + i)})
	}
	return out
}

type failingFake struct{}

func (failingFake) FetchFeed(ctx context.Context, feed Feed, page, pageSize int) (flatten.Document, error) {
	return nil, fmt.Errorf("transport down")
}

func TestFetchAllMergesPagesUntilShortPage(t *testing.T) {
	fake := pagedFake{pages: map[int][]any{1: records(3, 0), 2: records(1, 3), 3: records(3, 4)}}
	doc, err := FetchAll(context.Background(), fake, FeedPosts, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	items := doc["posts"].([]any)
	if len(items) != 4 {
		t.Fatalf("expected 3+1 merged records stopping at the short page, got %d", len(items))
	}
}

func TestFetchAllPropagatesTransportError(t *testing.T) {
	if _, err := FetchAll(context.Background(), failingFake{}, FeedPosts, 10, 2); err == nil {
		t.Fatal("expected transport error to abort the feed")
	}
}
