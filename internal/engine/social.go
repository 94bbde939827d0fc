package engine

import (
	"errors"

	"filmlog/internal/database"
)

// LikeReview records that the user liked someone's review. Returns
// ErrNotFound when the review does not exist and ErrAlreadyExists on a
// duplicate like.
func (e *Engine) LikeReview(userID, reviewID int64) error {
	tx, err := e.db.Begin()
	if err != nil {
		return e.fault("like review", userID, reviewID, err)
	}
	defer tx.Rollback()

	review, err := database.FindReviewByID(tx, reviewID)
	if err != nil {
		return e.fault("like review", userID, reviewID, err)
	}
	if review == nil {
		return ErrNotFound
	}

	exists, err := database.ReviewLikeExists(tx, userID, reviewID)
	if err != nil {
		return e.fault("like review", userID, reviewID, err)
	}
	if exists {
		return ErrAlreadyExists
	}

	if err := database.InsertReviewLike(tx, userID, reviewID); err != nil {
		return e.fault("like review", userID, reviewID, err)
	}
	return tx.Commit()
}

// UnlikeReview removes the like if present. Idempotent.
func (e *Engine) UnlikeReview(userID, reviewID int64) error {
	if err := database.DeleteReviewLike(e.db, userID, reviewID); err != nil {
		return e.fault("unlike review", userID, reviewID, err)
	}
	return nil
}

// ReviewLikeCount returns the aggregate like count for a review.
func (e *Engine) ReviewLikeCount(reviewID int64) (int64, error) {
	count, err := database.CountReviewLikes(e.db, reviewID)
	if err != nil {
		return 0, e.fault("count review likes", 0, reviewID, err)
	}
	return count, nil
}

// IsBenign reports whether the error is a client-level condition rather
// than an internal fault.
func IsBenign(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidInput)
}
