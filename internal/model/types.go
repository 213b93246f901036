package model

// User is a flattened profile record from the users feed.
type User struct {
	ID             int64
	FirstName      string
	LastName       string
	Username       string
	Email          string
	Role           string
	ProfileURL     string
	Bio            string
	WebsiteURL     string
	InstagramURL   string
	YoutubeURL     string
	TiktokURL      string
	VerifiedLegacy bool // upstream "isVerified"
	ReferralCode   string
	HasWallet      bool
	LastLogin      string
	ShareCount     int64
	PostCount      int64
	FollowingCount int64
	FollowerCount  int64
	Verified       bool // upstream "is_verified"
	IsOnline       bool
	Latitude       float64
	Longitude      float64
}

// Post is a flattened catalog record from the summary feed. The summary
// fields are optional upstream and stay "" when absent.
type Post struct {
	ID            int64
	Slug          string
	Title         string
	Identifier    string
	CommentCount  int64
	UpvoteCount   int64
	ViewCount     int64
	RatingCount   int64
	AverageRating float64

	OverallSentiment string
	ActionDescriptor string // upstream "post_summary.actions.coin_rotation"
	Transcription    string
	TraitOne         string
	TraitTwo         string
	TraitThree       string
}

// ViewedPost relates a user to a post they viewed.
// Timestamps stay strings end to end so the "No Data" sentinel survives.
type ViewedPost struct {
	ID       int64
	PostID   int64
	UserID   int64
	ViewedAt string
}

// LikedPost relates a user to a post they liked.
type LikedPost struct {
	ID      int64
	PostID  int64
	UserID  int64
	LikedAt string
}

// Rating relates a user to a post with a percentage score.
type Rating struct {
	ID            int64
	PostID        int64
	UserID        int64
	RatingPercent int64
	RatedAt       string
}

// Recommendation is one ranked output record with the fields that justify
// its selection echoed for explainability.
type Recommendation struct {
	PostID      int64
	Title       string
	Slug        string
	Sentiment   string
	Action      string
	ViewCount   int64
	RatingCount int64
	Score       float64
	Reason      string
}
