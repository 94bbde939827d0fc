package engine

import (
	"errors"
	"testing"

	"filmlog/internal/database"
)

func TestLikeReview(t *testing.T) {
	eng, db := setupEngine(t)
	author := createUser(t, db, "author@example.com")
	fan := createUser(t, db, "fan@example.com")

	review, err := eng.UpsertReview(author.ID, reviewRequest("27205", "Layers", 8.0))
	if err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}

	if err := eng.LikeReview(fan.ID, review.ID); err != nil {
		t.Fatalf("LikeReview failed: %v", err)
	}
	count, err := eng.ReviewLikeCount(review.ID)
	if err != nil {
		t.Fatalf("ReviewLikeCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Duplicate like rejected.
	if err := eng.LikeReview(fan.ID, review.ID); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	count, _ = eng.ReviewLikeCount(review.ID)
	if count != 1 {
		t.Errorf("expected count unchanged, got %d", count)
	}

	// A second fan raises the count.
	other := createUser(t, db, "other@example.com")
	if err := eng.LikeReview(other.ID, review.ID); err != nil {
		t.Fatalf("LikeReview by second fan failed: %v", err)
	}
	count, _ = eng.ReviewLikeCount(review.ID)
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}

func TestReviewLikesIndependentOfMovieLikes(t *testing.T) {
	eng, db := setupEngine(t)
	author := createUser(t, db, "author@example.com")
	fan := createUser(t, db, "fan@example.com")

	if _, err := eng.ToggleLike(author.ID, entryRequest("27205", "Inception")); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	review, err := eng.UpsertReview(author.ID, reviewRequest("27205", "Layers", 8.0))
	if err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}

	// Liking and unliking the review never touches the author's movie like.
	if err := eng.LikeReview(fan.ID, review.ID); err != nil {
		t.Fatalf("LikeReview failed: %v", err)
	}
	if err := eng.UnlikeReview(fan.ID, review.ID); err != nil {
		t.Fatalf("UnlikeReview failed: %v", err)
	}
	liked, _ := eng.EntryExists(database.TableLikes, author.ID, "27205")
	if !liked {
		t.Error("expected movie like untouched by review like churn")
	}

	// Removing the movie like leaves an existing review like alone.
	if err := eng.LikeReview(fan.ID, review.ID); err != nil {
		t.Fatalf("LikeReview failed: %v", err)
	}
	if err := eng.RemoveLike(author.ID, "27205"); err != nil {
		t.Fatalf("RemoveLike failed: %v", err)
	}
	count, _ := eng.ReviewLikeCount(review.ID)
	if count != 1 {
		t.Errorf("expected review like to survive, got count %d", count)
	}
}

func TestLikeReview_NotFound(t *testing.T) {
	eng, db := setupEngine(t)
	fan := createUser(t, db, "fan@example.com")

	if err := eng.LikeReview(fan.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnlikeReview_Idempotent(t *testing.T) {
	eng, db := setupEngine(t)
	author := createUser(t, db, "author@example.com")
	fan := createUser(t, db, "fan@example.com")

	review, err := eng.UpsertReview(author.ID, reviewRequest("27205", "Layers", 8.0))
	if err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}
	if err := eng.LikeReview(fan.ID, review.ID); err != nil {
		t.Fatalf("LikeReview failed: %v", err)
	}

	if err := eng.UnlikeReview(fan.ID, review.ID); err != nil {
		t.Fatalf("UnlikeReview failed: %v", err)
	}
	count, _ := eng.ReviewLikeCount(review.ID)
	if count != 0 {
		t.Errorf("expected count 0 after unlike, got %d", count)
	}

	// Unliking again stays quiet.
	if err := eng.UnlikeReview(fan.ID, review.ID); err != nil {
		t.Errorf("second UnlikeReview failed: %v", err)
	}
}

func TestIsBenign(t *testing.T) {
	for _, err := range []error{ErrNotFound, ErrAlreadyExists, ErrUnauthenticated, ErrInvalidInput} {
		if !IsBenign(err) {
			t.Errorf("expected %v to be benign", err)
		}
	}
	if IsBenign(errors.New("disk on fire")) {
		t.Error("expected internal error to not be benign")
	}
}
