package feedclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"resonance/internal/flatten"
	"resonance/internal/metrics"
)

// Feed names the five activity feeds exposed by the content service.
type Feed string

const (
	FeedViewedPosts Feed = "viewed_posts"
	FeedLikedPosts  Feed = "liked_posts"
	FeedRatings     Feed = "user_ratings"
	FeedPosts       Feed = "posts"
	FeedUsers       Feed = "users"
)

// feedPaths maps feeds to API paths. The interaction feeds additionally
// carry the resonance algorithm key as a query parameter.
var feedPaths = map[Feed]string{
	FeedViewedPosts: "/posts/view",
	FeedLikedPosts:  "/posts/like",
	FeedRatings:     "/posts/rating",
	FeedPosts:       "/posts/summary/get",
	FeedUsers:       "/users/get_all",
}

// algorithmFeeds lists feeds whose endpoint requires the algorithm key.
var algorithmFeeds = map[Feed]bool{
	FeedViewedPosts: true,
	FeedLikedPosts:  true,
	FeedRatings:     true,
}

// EnvelopeKey returns the JSON key the feed's records live under.
func EnvelopeKey(f Feed) string {
	if f == FeedUsers {
		return "users"
	}
	return "posts"
}

// FeedClient fetches one page of a feed as a decoded JSON document.
type FeedClient interface {
	FetchFeed(ctx context.Context, feed Feed, page, pageSize int) (flatten.Document, error)
}

// HTTPClient is a Flic-Token client for the content service API.
type HTTPClient struct {
	baseURL     string
	flicToken   string
	algorithm   string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(baseURL, flicToken, algorithm string) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		flicToken:   flicToken,
		algorithm:   algorithm,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(),
		maxAttempts: getEnvInt("RESONANCE_API_MAX_ATTEMPTS", 5),
		baseBackoff: time.Duration(getEnvInt("RESONANCE_API_BASE_BACKOFF_MS", 500)) * time.Millisecond,
	}
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.flicToken != "" {
		req.Header.Set("Flic-Token", c.flicToken)
	}
	req.Header.Set("Accept", "application/json")
}

// FetchFeed fetches a single page. Any non-2xx response is an error; the
// caller aborts the whole batch, no partial snapshot is accepted.
func (c *HTTPClient) FetchFeed(ctx context.Context, feed Feed, page, pageSize int) (flatten.Document, error) {
	path, ok := feedPaths[feed]
	if !ok {
		return nil, fmt.Errorf("unknown feed %q", feed)
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	if algorithmFeeds[feed] && c.algorithm != "" {
		q.Set("resonance_algorithm", c.algorithm)
	}
	u := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req, string(feed))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("content api status %d for feed %s", resp.StatusCode, feed)
	}
	var doc flatten.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request, feed string) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				lastErr = fmt.Errorf("status %d", resp.StatusCode)
				metrics.IncAPIRetry(feed)
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}
