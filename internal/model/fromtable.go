package model

import "resonance/internal/flatten"

// Converters from flattened tables to typed records. Cells absent from a
// table come back as zero values; the flattener already decided which
// tables carry the "No Data" sentinel instead.

func UsersFromTable(t flatten.Table) []User {
	out := make([]User, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, User{
			ID:             r.Int("id"),
			FirstName:      r.Str("first_name"),
			LastName:       r.Str("last_name"),
			Username:       r.Str("username"),
			Email:          r.Str("email"),
			Role:           r.Str("role"),
			ProfileURL:     r.Str("profile_url"),
			Bio:            r.Str("bio"),
			WebsiteURL:     r.Str("website_url"),
			InstagramURL:   r.Str("instagram-url"),
			YoutubeURL:     r.Str("youtube_url"),
			TiktokURL:      r.Str("tictok_url"),
			VerifiedLegacy: r.Bool("isVerified"),
			ReferralCode:   r.Str("referral_code"),
			HasWallet:      r.Bool("has_wallet"),
			LastLogin:      r.Str("last_login"),
			ShareCount:     r.Int("share_count"),
			PostCount:      r.Int("post_count"),
			FollowingCount: r.Int("following_count"),
			FollowerCount:  r.Int("follower_count"),
			Verified:       r.Bool("is_verified"),
			IsOnline:       r.Bool("is_online"),
			Latitude:       r.Float("latitude"),
			Longitude:      r.Float("longitude"),
		})
	}
	return out
}

func PostsFromTable(t flatten.Table) []Post {
	out := make([]Post, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, Post{
			ID:               r.Int("id"),
			Slug:             r.Str("slug"),
			Title:            r.Str("title"),
			Identifier:       r.Str("identifier"),
			CommentCount:     r.Int("comment_count"),
			UpvoteCount:      r.Int("upvote_count"),
			ViewCount:        r.Int("view_count"),
			RatingCount:      r.Int("rating_count"),
			AverageRating:    r.Float("average_rating"),
			OverallSentiment: r.Str("post_summary.emotions.overall_sentiment"),
			ActionDescriptor: r.Str("post_summary.actions.coin_rotation"),
			Transcription:    r.Str("post_summary.audio_elements.auditory_transcription"),
			TraitOne:         r.Str("post_summary.psycological_view_of_video.trait_one"),
			TraitTwo:         r.Str("post_summary.psycological_view_of_video.trait_two"),
			TraitThree:       r.Str("post_summary.psycological_view_of_video.trait_three"),
		})
	}
	return out
}

func ViewedPostsFromTable(t flatten.Table) []ViewedPost {
	out := make([]ViewedPost, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, ViewedPost{
			ID:       r.Int("id"),
			PostID:   r.Int("post_id"),
			UserID:   r.Int("user_id"),
			ViewedAt: r.Str("viewed_at"),
		})
	}
	return out
}

func LikedPostsFromTable(t flatten.Table) []LikedPost {
	out := make([]LikedPost, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, LikedPost{
			ID:      r.Int("id"),
			PostID:  r.Int("post_id"),
			UserID:  r.Int("user_id"),
			LikedAt: r.Str("liked_at"),
		})
	}
	return out
}

func RatingsFromTable(t flatten.Table) []Rating {
	out := make([]Rating, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, Rating{
			ID:            r.Int("id"),
			PostID:        r.Int("post_id"),
			UserID:        r.Int("user_id"),
			RatingPercent: r.Int("rating_percent"),
			RatedAt:       r.Str("rated_at"),
		})
	}
	return out
}
