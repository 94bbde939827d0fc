package engine

import (
	"fmt"
	"time"

	"filmlog/internal/database"
	"filmlog/internal/types"
)

// UpsertReview creates or overwrites the user's review for a movie. If
// duplicate rows exist from before the uniqueness constraint, the first is
// kept and the rest deleted. When the payload carries an isLiked flag the
// movie-like table is reconciled against it in the same transaction.
func (e *Engine) UpsertReview(userID int64, req *types.ReviewRequest) (*types.Review, error) {
	if req.WatchedDate != nil {
		if _, err := time.Parse("2006-01-02", *req.WatchedDate); err != nil {
			return nil, fmt.Errorf("%w: watched date %q is not an ISO date", ErrInvalidInput, *req.WatchedDate)
		}
	}

	tx, err := e.db.Begin()
	if err != nil {
		return nil, e.fault("upsert review", userID, req.MovieID, err)
	}
	defer tx.Rollback()

	existing, err := database.FindReviewsForMovie(tx, userID, req.MovieID)
	if err != nil {
		return nil, e.fault("upsert review", userID, req.MovieID, err)
	}

	var review *types.Review
	if len(existing) > 0 {
		review = existing[0]
		for _, dup := range existing[1:] {
			if err := database.DeleteReview(tx, dup.ID); err != nil {
				return nil, e.fault("upsert review", userID, req.MovieID, err)
			}
		}
	} else {
		review = &types.Review{UserID: userID, MovieID: req.MovieID}
	}

	review.MovieTitle = req.MovieTitle
	review.MovieYear = req.MovieYear
	review.MoviePosterURL = req.MoviePosterURL
	review.Content = req.Content
	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	review.IsRewatch = req.IsRewatch
	review.ContainsSpoiler = req.ContainsSpoiler
	review.WatchedDate = req.WatchedDate
	review.Tags = req.Tags

	if review.ID == 0 {
		review, err = database.InsertReview(tx, review)
	} else {
		err = database.UpdateReview(tx, review)
	}
	if err != nil {
		return nil, e.fault("upsert review", userID, req.MovieID, err)
	}

	if req.IsLiked != nil {
		if err := e.reconcileLike(tx, userID, review, req); err != nil {
			return nil, e.fault("upsert review", userID, req.MovieID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, e.fault("upsert review", userID, req.MovieID, err)
	}
	return review, nil
}

// reconcileLike brings the movie-like table in line with the review
// payload's isLiked flag: create when set and absent, delete when cleared
// and present, otherwise leave alone.
func (e *Engine) reconcileLike(tx database.DBTX, userID int64, review *types.Review, req *types.ReviewRequest) error {
	currentlyLiked, err := database.EntryExists(tx, database.TableLikes, userID, review.MovieID)
	if err != nil {
		return err
	}

	switch {
	case *req.IsLiked && !currentlyLiked:
		entry := &types.MovieEntry{
			UserID:      userID,
			MovieID:     review.MovieID,
			Title:       review.MovieTitle,
			PosterPath:  review.MoviePosterURL,
			ReleaseDate: req.ReleaseDate,
		}
		if req.VoteAverage != nil {
			entry.VoteAverage = *req.VoteAverage
		}
		if entry.ReleaseDate == nil {
			entry.ReleaseDate = review.MovieYear
		}
		_, err = database.InsertEntry(tx, database.TableLikes, entry)
		return err
	case !*req.IsLiked && currentlyLiked:
		return database.DeleteEntry(tx, database.TableLikes, userID, review.MovieID)
	default:
		return nil
	}
}

// CheckStatus composes the like state, review state and review-like
// aggregate for (userID, movieID). viewerID is the caller asking; pass 0
// for an anonymous viewer, in which case ViewerLikedReview stays false.
// Used both for "my status" (viewerID == userID) and for viewing another
// user's standing.
func (e *Engine) CheckStatus(userID int64, movieID string, viewerID int64) (*types.MovieStatus, error) {
	status := &types.MovieStatus{}

	like, err := database.FindEntry(e.db, database.TableLikes, userID, movieID)
	if err != nil {
		return nil, e.fault("check status", userID, movieID, err)
	}
	if like != nil {
		status.IsLiked = true
		likeDate := like.Created.Format(time.RFC3339)
		status.LikeDate = &likeDate
	}

	reviews, err := database.FindReviewsForMovie(e.db, userID, movieID)
	if err != nil {
		return nil, e.fault("check status", userID, movieID, err)
	}
	if len(reviews) == 0 {
		return status, nil
	}

	review := reviews[0]
	status.HasReview = true
	status.Rating = &review.Rating
	status.ReviewID = &review.ID
	status.Review = review

	if viewerID != 0 {
		liked, err := database.ReviewLikeExists(e.db, viewerID, review.ID)
		if err != nil {
			return nil, e.fault("check status", userID, movieID, err)
		}
		status.ViewerLikedReview = liked
	}

	count, err := database.CountReviewLikes(e.db, review.ID)
	if err != nil {
		return nil, e.fault("check status", userID, movieID, err)
	}
	status.ReviewLikeCount = count

	return status, nil
}

// ReviewsByTag returns reviews whose tag list contains the given tag.
func (e *Engine) ReviewsByTag(tag string) ([]*types.Review, error) {
	reviews, err := database.SearchReviewsByTag(e.db, tag)
	if err != nil {
		return nil, e.fault("search reviews by tag", 0, tag, err)
	}
	return reviews, nil
}
