package engine

import (
	"errors"
	"testing"

	"filmlog/internal/database"
	"filmlog/internal/types"
)

func ptr[T any](v T) *T { return &v }

func reviewRequest(movieID, content string, rating float64) *types.ReviewRequest {
	return &types.ReviewRequest{
		MovieID:    movieID,
		MovieTitle: "Inception",
		Content:    content,
		Rating:     &rating,
	}
}

func TestUpsertReview_CreateThenOverwrite(t *testing.T) {
	eng, db := setupEngine(t)
	user := createUser(t, db, "anna@example.com")

	first, err := eng.UpsertReview(user.ID, reviewRequest("27205", "Goat", 5.0))
	if err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}
	if first.ID == 0 || first.Rating != 5.0 {
		t.Fatalf("unexpected review: %+v", first)
	}

	second, err := eng.UpsertReview(user.ID, reviewRequest("27205", "Goat", 8.0))
	if err != nil {
		t.Fatalf("second UpsertReview failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the same review row, got ids %d and %d", first.ID, second.ID)
	}
	if second.Rating != 8.0 {
		t.Errorf("expected rating overwritten to 8.0, got %v", second.Rating)
	}

	reviews, err := database.FindReviewsForMovie(db, user.ID, "27205")
	if err != nil {
		t.Fatalf("FindReviewsForMovie failed: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected exactly one review, got %d", len(reviews))
	}
	if reviews[0].Rating != 8.0 {
		t.Errorf("expected persisted rating 8.0, got %v", reviews[0].Rating)
	}
}

func TestUpsertReview_OverwritesAllFields(t *testing.T) {
	eng, db := setupEngine(t)
	user := createUser(t, db, "anna@example.com")

	full := &types.ReviewRequest{
		MovieID:         "27205",
		MovieTitle:      "Inception",
		MovieYear:       ptr("2010"),
		Content:         "Layers on layers",
		Rating:          ptr(9.0),
		IsRewatch:       true,
		ContainsSpoiler: true,
		WatchedDate:     ptr("2026-08-30"),
		Tags:            []string{"mindbender"},
	}
	if _, err := eng.UpsertReview(user.ID, full); err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}

	// A sparse follow-up payload clears what it omits.
	sparse := reviewRequest("27205", "Short take", 7.0)
	updated, err := eng.UpsertReview(user.ID, sparse)
	if err != nil {
		t.Fatalf("second UpsertReview failed: %v", err)
	}
	if updated.IsRewatch || updated.ContainsSpoiler {
		t.Error("expected flags cleared by sparse payload")
	}
	if updated.WatchedDate != nil {
		t.Errorf("expected watched date cleared, got %v", *updated.WatchedDate)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("expected tags cleared, got %v", updated.Tags)
	}
	if updated.Content != "Short take" {
		t.Errorf("expected content overwritten, got %q", updated.Content)
	}
}

func TestUpsertReview_InvalidWatchedDate(t *testing.T) {
	eng, db := setupEngine(t)
	user := createUser(t, db, "anna@example.com")

	req := reviewRequest("27205", "Goat", 8.0)
	req.WatchedDate = ptr("30/08/2026")
	if _, err := eng.UpsertReview(user.ID, req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpsertReview_LikeReconciliation(t *testing.T) {
	eng, db := setupEngine(t)
	user := createUser(t, db, "anna@example.com")

	// isLiked true creates the movie like alongside the review.
	req := reviewRequest("27205", "Goat", 8.0)
	req.IsLiked = ptr(true)
	req.VoteAverage = ptr(8.4)
	if _, err := eng.UpsertReview(user.ID, req); err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}
	liked, _ := eng.EntryExists(database.TableLikes, user.ID, "27205")
	if !liked {
		t.Fatal("expected movie like created from review payload")
	}

	// Upserting again with isLiked true must not duplicate the like.
	if _, err := eng.UpsertReview(user.ID, req); err != nil {
		t.Fatalf("repeat UpsertReview failed: %v", err)
	}
	likes, _ := eng.ListEntries(database.TableLikes, user.ID)
	if len(likes) != 1 {
		t.Fatalf("expected one like, got %d", len(likes))
	}

	// isLiked false removes it.
	req.IsLiked = ptr(false)
	if _, err := eng.UpsertReview(user.ID, req); err != nil {
		t.Fatalf("UpsertReview with isLiked=false failed: %v", err)
	}
	liked, _ = eng.EntryExists(database.TableLikes, user.ID, "27205")
	if liked {
		t.Fatal("expected movie like removed")
	}

	// Omitting the flag leaves the like table alone.
	if _, err := eng.ToggleLike(user.ID, entryRequest("27205", "Inception")); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	req.IsLiked = nil
	if _, err := eng.UpsertReview(user.ID, req); err != nil {
		t.Fatalf("UpsertReview without flag failed: %v", err)
	}
	liked, _ = eng.EntryExists(database.TableLikes, user.ID, "27205")
	if !liked {
		t.Fatal("expected like untouched when flag omitted")
	}
}

func TestCheckStatus(t *testing.T) {
	eng, db := setupEngine(t)
	anna := createUser(t, db, "anna@example.com")
	ben := createUser(t, db, "ben@example.com")

	// Empty status before anything happened.
	status, err := eng.CheckStatus(anna.ID, "27205", anna.ID)
	if err != nil {
		t.Fatalf("CheckStatus failed: %v", err)
	}
	if status.IsLiked || status.HasReview || status.ReviewLikeCount != 0 {
		t.Fatalf("expected empty status, got %+v", status)
	}

	if _, err := eng.ToggleLike(anna.ID, entryRequest("27205", "Inception")); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	review, err := eng.UpsertReview(anna.ID, reviewRequest("27205", "Goat", 8.0))
	if err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}
	if err := eng.LikeReview(ben.ID, review.ID); err != nil {
		t.Fatalf("LikeReview failed: %v", err)
	}

	status, err = eng.CheckStatus(anna.ID, "27205", anna.ID)
	if err != nil {
		t.Fatalf("CheckStatus failed: %v", err)
	}
	if !status.IsLiked || status.LikeDate == nil {
		t.Error("expected like state with a timestamp")
	}
	if !status.HasReview || status.ReviewID == nil || *status.ReviewID != review.ID {
		t.Error("expected review state")
	}
	if status.Rating == nil || *status.Rating != 8.0 {
		t.Errorf("expected rating 8.0, got %v", status.Rating)
	}
	if status.ReviewLikeCount != 1 {
		t.Errorf("expected one review like, got %d", status.ReviewLikeCount)
	}
	// Anna herself did not like the review.
	if status.ViewerLikedReview {
		t.Error("expected ViewerLikedReview false for the author")
	}

	// Ben, as the viewer, sees his own review like.
	status, err = eng.CheckStatus(anna.ID, "27205", ben.ID)
	if err != nil {
		t.Fatalf("CheckStatus for viewer failed: %v", err)
	}
	if !status.ViewerLikedReview {
		t.Error("expected ViewerLikedReview true for the liker")
	}

	// An anonymous viewer never sees a viewer flag.
	status, err = eng.CheckStatus(anna.ID, "27205", 0)
	if err != nil {
		t.Fatalf("CheckStatus for anonymous failed: %v", err)
	}
	if status.ViewerLikedReview {
		t.Error("expected ViewerLikedReview false for anonymous viewer")
	}
}

func TestReviewsByTag(t *testing.T) {
	eng, db := setupEngine(t)
	user := createUser(t, db, "anna@example.com")

	req := reviewRequest("27205", "Layers", 8.0)
	req.Tags = []string{"mindbender"}
	if _, err := eng.UpsertReview(user.ID, req); err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}

	matches, err := eng.ReviewsByTag("mindbender")
	if err != nil {
		t.Fatalf("ReviewsByTag failed: %v", err)
	}
	if len(matches) != 1 || matches[0].MovieID != "27205" {
		t.Fatalf("expected the tagged review, got %v", matches)
	}
}
