// Package recommend turns a loaded snapshot into a ranked list of posts
// for one user: content similarity against their liked posts when that
// signal exists, popularity otherwise.
package recommend

import (
	"errors"
	"fmt"
	"sort"

	"resonance/internal/model"
)

// ErrUserNotFound means the username has no identity record. This is a
// harder failure than "found but no likes": no recommendation of any kind
// is produced.
var ErrUserNotFound = errors.New("user not found")

// Reasons echoed on each recommendation so callers can tell which branch
// produced it.
const (
	ReasonSimilar = "similar content or sentiment"
	ReasonPopular = "popular with viewers"
)

// Recommender ranks catalog posts for users over one immutable snapshot.
type Recommender struct {
	users []model.User
	posts []model.Post
	likes []model.LikedPost
}

// NewRecommender builds a recommender over the snapshot tables. Catalog
// rows with a duplicate post id keep only their first occurrence.
func NewRecommender(users []model.User, posts []model.Post, likes []model.LikedPost) *Recommender {
	seen := make(map[int64]bool, len(posts))
	dedup := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		dedup = append(dedup, p)
	}
	return &Recommender{users: users, posts: dedup, likes: likes}
}

// For computes the top-n recommendations for username. Branches:
//   - username has no user record: ErrUserNotFound, no output;
//   - user has no liked post present in the catalog: popularity fallback;
//   - otherwise: mean cosine similarity of each catalog post to the
//     user's liked posts, descending, ties kept in catalog order.
func (r *Recommender) For(username string, n int) ([]model.Recommendation, error) {
	if n <= 0 {
		n = 5
	}
	var user *model.User
	for i := range r.users {
		if r.users[i].Username == username {
			user = &r.users[i]
			break
		}
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}

	likedIDs := make(map[int64]bool)
	for _, l := range r.likes {
		if l.UserID == user.ID {
			likedIDs[l.PostID] = true
		}
	}
	var prefs []model.Post
	for _, p := range r.posts {
		if likedIDs[p.ID] {
			prefs = append(prefs, p)
		}
	}
	if len(prefs) == 0 {
		return r.Popular(n), nil
	}

	catalogDocs := make([]string, len(r.posts))
	for i, p := range r.posts {
		catalogDocs[i] = CombinedFeatures(p)
	}
	vec, err := Fit(catalogDocs)
	if err != nil {
		// Degenerate feature space: fail closed, no ranking on nothing.
		return nil, err
	}
	likedDocs := make([]string, len(prefs))
	for i, p := range prefs {
		likedDocs[i] = CombinedFeatures(p)
	}
	scores := MeanSimilarities(vec.Transform(likedDocs), vec.Transform(catalogDocs))

	idx := make([]int, len(r.posts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]model.Recommendation, 0, len(idx))
	for _, i := range idx {
		p := r.posts[i]
		out = append(out, model.Recommendation{
			PostID:      p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Sentiment:   p.OverallSentiment,
			Action:      p.ActionDescriptor,
			ViewCount:   p.ViewCount,
			RatingCount: p.RatingCount,
			Score:       scores[i],
			Reason:      ReasonSimilar,
		})
	}
	return out, nil
}

// Popular ranks the catalog by engagement: view count first, rating count
// second, both descending, ties kept in catalog order.
func (r *Recommender) Popular(n int) []model.Recommendation {
	if n <= 0 {
		n = 5
	}
	idx := make([]int, len(r.posts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		pa, pb := r.posts[idx[a]], r.posts[idx[b]]
		if pa.ViewCount != pb.ViewCount {
			return pa.ViewCount > pb.ViewCount
		}
		return pa.RatingCount > pb.RatingCount
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]model.Recommendation, 0, len(idx))
	for _, i := range idx {
		p := r.posts[i]
		out = append(out, model.Recommendation{
			PostID:      p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Sentiment:   p.OverallSentiment,
			Action:      p.ActionDescriptor,
			ViewCount:   p.ViewCount,
			RatingCount: p.RatingCount,
			Reason:      ReasonPopular,
		})
	}
	return out
}
