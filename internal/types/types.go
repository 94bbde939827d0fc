package types

import "time"

type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Password   string    `json:"-"`
	Provider   *string   `json:"provider"`
	ProviderID *string   `json:"providerId"`
	AvatarURL  *string   `json:"avatarUrl"`
	Bio        *string   `json:"bio"`
	Gender     *string   `json:"gender"`
	Created    time.Time `json:"createdAt"`
}

// MovieEntry is one row in the likes, watched or watchlist table. The three
// tables share the same shape: a per-(user, movie) presence fact plus a
// snapshot of the movie metadata at the time it was recorded.
type MovieEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	MovieID     string    `json:"movieId"`
	Title       string    `json:"title"`
	PosterPath  *string   `json:"posterPath"`
	VoteAverage float64   `json:"voteAverage"`
	ReleaseDate *string   `json:"releaseDate"`
	Created     time.Time `json:"createdAt"`
}

type Review struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	MovieID         string    `json:"movieId"`
	MovieTitle      string    `json:"movieTitle"`
	MovieYear       *string   `json:"movieYear"`
	MoviePosterURL  *string   `json:"moviePosterUrl"`
	Content         string    `json:"content"`
	Rating          float64   `json:"rating"`
	IsRewatch       bool      `json:"isRewatch"`
	ContainsSpoiler bool      `json:"containsSpoiler"`
	WatchedDate     *string   `json:"watchedDate"` // ISO date (yyyy-mm-dd)
	Tags            []string  `json:"tags"`
	Created         time.Time `json:"createdAt"`
}

type ReviewLike struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"userId"`
	ReviewID int64     `json:"reviewId"`
	Created  time.Time `json:"createdAt"`
}

// MovieEntryRequest carries the metadata snapshot for a toggle-on action.
type MovieEntryRequest struct {
	MovieID     string   `json:"movieId"`
	Title       string   `json:"title"`
	PosterPath  *string  `json:"posterPath"`
	VoteAverage *float64 `json:"voteAverage"`
	ReleaseDate *string  `json:"releaseDate"`
}

// ReviewRequest is the review upsert payload. IsLiked is the write-side
// movie-like reconciliation flag: nil leaves the like table alone, true/false
// creates or deletes the like for the same (user, movie).
type ReviewRequest struct {
	MovieID         string   `json:"movieId"`
	MovieTitle      string   `json:"movieTitle"`
	MovieYear       *string  `json:"movieYear"`
	MoviePosterURL  *string  `json:"moviePosterUrl"`
	Content         string   `json:"review"`
	Rating          *float64 `json:"rating"`
	IsRewatch       bool     `json:"isRewatch"`
	ContainsSpoiler bool     `json:"containsSpoiler"`
	WatchedDate     *string  `json:"watchedDate"`
	Tags            []string `json:"tags"`
	IsLiked         *bool    `json:"isLiked"`
	VoteAverage     *float64 `json:"voteAverage"`
	ReleaseDate     *string  `json:"releaseDate"`
}

// MovieStatus is the composite per-(user, movie) view: like state, review
// state and the review's like aggregate in one response.
type MovieStatus struct {
	IsLiked           bool     `json:"isLiked"`
	LikeDate          *string  `json:"likeDate,omitempty"`
	HasReview         bool     `json:"hasReview"`
	Rating            *float64 `json:"rating,omitempty"`
	ReviewID          *int64   `json:"reviewId,omitempty"`
	Review            *Review  `json:"review,omitempty"`
	ViewerLikedReview bool     `json:"viewerLikedReview"`
	ReviewLikeCount   int64    `json:"reviewLikeCount"`
}

// FriendActivity is one followed user's standing toward a movie, reduced via
// the Like > Watched > Watchlist precedence rule.
type FriendActivity struct {
	UserID    int64  `json:"userId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Status    string `json:"status"`
}

// FeedReview is a review enriched for feed and profile listings.
// ReviewerLikedMovie and ViewerLikedReview are deliberately distinct: the
// first is about the review's author and the movie, the second about the
// caller and the review itself.
type FeedReview struct {
	Review
	User               *PublicUser `json:"user,omitempty"`
	ReviewerLikedMovie bool        `json:"reviewerLikedMovie"`
	ViewerLikedReview  bool        `json:"viewerLikedReview"`
	LikesCount         *int64      `json:"likesCount,omitempty"`
}

// PublicUser is the serializable subset of User exposed on feeds and
// profiles.
type PublicUser struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
	Bio       *string `json:"bio"`
}

// Friend activity status values in precedence order.
const (
	StatusLiked     = "LIKED"
	StatusWatched   = "WATCHED"
	StatusWatchlist = "WATCHLIST"
)
