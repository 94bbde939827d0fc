package engine

import (
	"database/sql"
	"errors"

	"filmlog/internal/database"
	"filmlog/internal/types"
)

// FriendActivity reports each followed user's standing toward a movie,
// checking Like, then Watched, then Watchlist; the first match wins.
// Friends with none of the three are omitted. An absent or unknown viewer
// yields an empty list rather than an error: the feature is not worth
// failing a page for.
func (e *Engine) FriendActivity(viewerID int64, movieID string) ([]types.FriendActivity, error) {
	if viewerID == 0 {
		return []types.FriendActivity{}, nil
	}
	if _, err := database.GetUserByID(e.db, viewerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []types.FriendActivity{}, nil
		}
		return nil, e.fault("friend activity", viewerID, movieID, err)
	}

	following, err := database.GetFollowing(e.db, viewerID)
	if err != nil {
		return nil, e.fault("friend activity", viewerID, movieID, err)
	}

	activity := make([]types.FriendActivity, 0, len(following))
	for _, friend := range following {
		status, err := e.friendStatus(friend.ID, movieID)
		if err != nil {
			return nil, e.fault("friend activity", viewerID, movieID, err)
		}
		if status == "" {
			continue
		}

		entry := types.FriendActivity{
			UserID: friend.ID,
			Name:   friend.Name,
			Status: status,
		}
		if friend.AvatarURL != nil {
			entry.AvatarURL = *friend.AvatarURL
		}
		activity = append(activity, entry)
	}

	return activity, nil
}

// friendStatus resolves one user's status via the Like > Watched >
// Watchlist precedence order. Empty string means no record at all.
func (e *Engine) friendStatus(userID int64, movieID string) (string, error) {
	for _, check := range []struct {
		table  database.EntryTable
		status string
	}{
		{database.TableLikes, types.StatusLiked},
		{database.TableWatched, types.StatusWatched},
		{database.TableWatchlist, types.StatusWatchlist},
	} {
		exists, err := database.EntryExists(e.db, check.table, userID, movieID)
		if err != nil {
			return "", err
		}
		if exists {
			return check.status, nil
		}
	}
	return "", nil
}

// FriendReviews returns reviews authored by users the viewer follows,
// newest first, enriched with whether the reviewer liked the movie and
// whether the viewer liked the review. A viewer following nobody gets an
// empty list without a review query.
func (e *Engine) FriendReviews(viewerID int64) ([]types.FeedReview, error) {
	if viewerID == 0 {
		return nil, ErrUnauthenticated
	}

	following, err := database.GetFollowing(e.db, viewerID)
	if err != nil {
		return nil, e.fault("friend reviews", viewerID, nil, err)
	}
	if len(following) == 0 {
		return []types.FeedReview{}, nil
	}

	ids := make([]int64, len(following))
	byID := make(map[int64]*types.User, len(following))
	for i, friend := range following {
		ids[i] = friend.ID
		byID[friend.ID] = friend
	}

	reviews, err := database.ListReviewsByUsers(e.db, ids)
	if err != nil {
		return nil, e.fault("friend reviews", viewerID, nil, err)
	}

	feed := make([]types.FeedReview, 0, len(reviews))
	for _, review := range reviews {
		enriched, err := e.enrich(review, byID[review.UserID], viewerID, false)
		if err != nil {
			return nil, e.fault("friend reviews", viewerID, nil, err)
		}
		feed = append(feed, *enriched)
	}
	return feed, nil
}

// UserReviews lists one user's reviews, newest first, with the like-count
// aggregate included. viewerID may be 0 for anonymous callers.
func (e *Engine) UserReviews(userID, viewerID int64) ([]types.FeedReview, error) {
	author, err := database.GetUserByID(e.db, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, e.fault("user reviews", userID, nil, err)
	}

	reviews, err := database.ListReviewsByUser(e.db, userID)
	if err != nil {
		return nil, e.fault("user reviews", userID, nil, err)
	}

	feed := make([]types.FeedReview, 0, len(reviews))
	for _, review := range reviews {
		enriched, err := e.enrich(review, author, viewerID, true)
		if err != nil {
			return nil, e.fault("user reviews", userID, nil, err)
		}
		feed = append(feed, *enriched)
	}
	return feed, nil
}

func (e *Engine) enrich(review *types.Review, author *types.User, viewerID int64, withCount bool) (*types.FeedReview, error) {
	out := &types.FeedReview{Review: *review}
	if author != nil {
		out.User = &types.PublicUser{
			ID:        author.ID,
			Name:      author.Name,
			AvatarURL: author.AvatarURL,
			Bio:       author.Bio,
		}
	}

	reviewerLiked, err := database.EntryExists(e.db, database.TableLikes, review.UserID, review.MovieID)
	if err != nil {
		return nil, err
	}
	out.ReviewerLikedMovie = reviewerLiked

	if viewerID != 0 {
		viewerLiked, err := database.ReviewLikeExists(e.db, viewerID, review.ID)
		if err != nil {
			return nil, err
		}
		out.ViewerLikedReview = viewerLiked
	}

	if withCount {
		count, err := database.CountReviewLikes(e.db, review.ID)
		if err != nil {
			return nil, err
		}
		out.LikesCount = &count
	}

	return out, nil
}
