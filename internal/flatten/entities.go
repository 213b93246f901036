package flatten

// NoData fills missing cells in the interaction tables so downstream
// consumers never handle nulls. The feature pipeline deliberately uses ""
// instead; the two conventions must not be mixed.
const NoData = "No Data"

// Allow-listed fields per entity. Names mirror the upstream API exactly,
// misspellings included ("tictok_url", "psycological_view_of_video").
var (
	UserFields = []string{
		"id", "first_name", "last_name", "username", "email", "role", "profile_url",
		"bio", "website_url", "instagram-url", "youtube_url", "tictok_url", "isVerified",
		"referral_code", "has_wallet", "last_login", "share_count", "post_count",
		"following_count", "follower_count", "is_verified", "is_online", "latitude", "longitude",
	}

	ViewedPostFields = []string{"id", "post_id", "user_id", "viewed_at"}

	LikedPostFields = []string{"id", "post_id", "user_id", "liked_at"}

	RatingFields = []string{"id", "post_id", "user_id", "rating_percent", "rated_at"}

	PostFields = []string{
		"id", "slug", "title", "identifier", "comment_count", "upvote_count", "view_count",
		"rating_count", "average_rating",
		"post_summary.emotions.overall_sentiment",
		"post_summary.actions.coin_rotation",
		"post_summary.audio_elements.auditory_transcription",
		"post_summary.psycological_view_of_video.trait_one",
		"post_summary.psycological_view_of_video.trait_two",
		"post_summary.psycological_view_of_video.trait_three",
	}
)

// Users flattens the "users" envelope column into one row per profile.
func Users(t Table) Table {
	return Explode(t, "users", UserFields)
}

// ViewedPosts flattens the "posts" envelope of the view feed.
func ViewedPosts(t Table) Table {
	return Explode(t, "posts", ViewedPostFields)
}

// LikedPosts flattens the "posts" envelope of the like feed, filling
// missing cells with the NoData sentinel.
func LikedPosts(t Table) Table {
	out := Explode(t, "posts", LikedPostFields)
	return FillMissing(out, NoData)
}

// Ratings flattens the "posts" envelope of the rating feed, filling
// missing cells with the NoData sentinel.
func Ratings(t Table) Table {
	out := Explode(t, "posts", RatingFields)
	return FillMissing(out, NoData)
}

// Posts flattens the "posts" envelope of the summary feed. Summary fields
// stay absent when the upstream record lacks them; the feature builder
// substitutes "" at concatenation time.
func Posts(t Table) Table {
	return Explode(t, "posts", PostFields)
}
