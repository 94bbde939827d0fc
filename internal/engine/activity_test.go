package engine

import (
	"testing"

	"filmlog/internal/database"
	"filmlog/internal/types"
)

func TestFriendActivity_Precedence(t *testing.T) {
	eng, db := setupEngine(t)
	viewer := createUser(t, db, "viewer@example.com")
	friend := createUser(t, db, "friend@example.com")

	if err := database.Follow(db, friend.ID, viewer.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	// Watchlist only.
	if _, err := eng.ToggleWatchlist(friend.ID, entryRequest("27205", "Inception")); err != nil {
		t.Fatalf("ToggleWatchlist failed: %v", err)
	}
	activity, err := eng.FriendActivity(viewer.ID, "27205")
	if err != nil {
		t.Fatalf("FriendActivity failed: %v", err)
	}
	if len(activity) != 1 || activity[0].Status != types.StatusWatchlist {
		t.Fatalf("expected WATCHLIST, got %v", activity)
	}

	// Watched outranks watchlist; it also clears it.
	if _, err := eng.ToggleWatched(friend.ID, entryRequest("27205", "Inception")); err != nil {
		t.Fatalf("ToggleWatched failed: %v", err)
	}
	activity, _ = eng.FriendActivity(viewer.ID, "27205")
	if len(activity) != 1 || activity[0].Status != types.StatusWatched {
		t.Fatalf("expected WATCHED, got %v", activity)
	}

	// A like outranks everything.
	if _, err := eng.ToggleLike(friend.ID, entryRequest("27205", "Inception")); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	activity, _ = eng.FriendActivity(viewer.ID, "27205")
	if len(activity) != 1 || activity[0].Status != types.StatusLiked {
		t.Fatalf("expected LIKED, got %v", activity)
	}
	if activity[0].UserID != friend.ID || activity[0].Name != friend.Name {
		t.Errorf("unexpected friend identity: %+v", activity[0])
	}
}

func TestFriendActivity_OmitsInactiveFriends(t *testing.T) {
	eng, db := setupEngine(t)
	viewer := createUser(t, db, "viewer@example.com")
	active := createUser(t, db, "active@example.com")
	idle := createUser(t, db, "idle@example.com")

	database.Follow(db, active.ID, viewer.ID)
	database.Follow(db, idle.ID, viewer.ID)

	if _, err := eng.ToggleWatched(active.ID, entryRequest("27205", "Inception")); err != nil {
		t.Fatalf("ToggleWatched failed: %v", err)
	}

	activity, err := eng.FriendActivity(viewer.ID, "27205")
	if err != nil {
		t.Fatalf("FriendActivity failed: %v", err)
	}
	if len(activity) != 1 || activity[0].UserID != active.ID {
		t.Fatalf("expected only the active friend, got %v", activity)
	}
}

func TestFriendActivity_SoftFailures(t *testing.T) {
	eng, _ := setupEngine(t)

	// Anonymous viewer: empty list, no error.
	activity, err := eng.FriendActivity(0, "27205")
	if err != nil {
		t.Fatalf("FriendActivity for anonymous failed: %v", err)
	}
	if len(activity) != 0 {
		t.Errorf("expected empty activity for anonymous viewer, got %v", activity)
	}

	// Unknown viewer id: same.
	activity, err = eng.FriendActivity(999, "27205")
	if err != nil {
		t.Fatalf("FriendActivity for unknown viewer failed: %v", err)
	}
	if len(activity) != 0 {
		t.Errorf("expected empty activity for unknown viewer, got %v", activity)
	}
}

func TestFriendReviews(t *testing.T) {
	eng, db := setupEngine(t)
	viewer := createUser(t, db, "viewer@example.com")
	friend := createUser(t, db, "friend@example.com")
	stranger := createUser(t, db, "stranger@example.com")

	database.Follow(db, friend.ID, viewer.ID)

	older, err := eng.UpsertReview(friend.ID, reviewRequest("27205", "Layers", 8.0))
	if err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}
	newer, err := eng.UpsertReview(friend.ID, reviewRequest("155", "Still holds up", 9.0))
	if err != nil {
		t.Fatalf("second UpsertReview failed: %v", err)
	}
	// The stranger's review stays out of the feed.
	if _, err := eng.UpsertReview(stranger.ID, reviewRequest("27205", "Meh", 4.0)); err != nil {
		t.Fatalf("stranger UpsertReview failed: %v", err)
	}

	if _, err := eng.ToggleLike(friend.ID, entryRequest("27205", "Inception")); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if err := eng.LikeReview(viewer.ID, older.ID); err != nil {
		t.Fatalf("LikeReview failed: %v", err)
	}

	feed, err := eng.FriendReviews(viewer.ID)
	if err != nil {
		t.Fatalf("FriendReviews failed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 feed entries, got %d", len(feed))
	}
	if feed[0].ID != newer.ID || feed[1].ID != older.ID {
		t.Errorf("expected newest first, got %d then %d", feed[0].ID, feed[1].ID)
	}

	inception := feed[1]
	if inception.User == nil || inception.User.ID != friend.ID {
		t.Fatal("expected author attached to feed entry")
	}
	if !inception.ReviewerLikedMovie {
		t.Error("expected ReviewerLikedMovie for the liked movie")
	}
	if !inception.ViewerLikedReview {
		t.Error("expected ViewerLikedReview for the review the viewer liked")
	}
	if feed[0].ReviewerLikedMovie {
		t.Error("friend never liked the second movie")
	}
	if feed[0].ViewerLikedReview {
		t.Error("viewer never liked the second review")
	}
}

func TestFriendReviews_EmptyAndUnauthenticated(t *testing.T) {
	eng, db := setupEngine(t)
	viewer := createUser(t, db, "viewer@example.com")

	if _, err := eng.FriendReviews(0); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	feed, err := eng.FriendReviews(viewer.ID)
	if err != nil {
		t.Fatalf("FriendReviews failed: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("expected empty feed when following nobody, got %v", feed)
	}
}

func TestUserReviews(t *testing.T) {
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

	feed, err := eng.UserReviews(author.ID, fan.ID)
	if err != nil {
		t.Fatalf("UserReviews failed: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected 1 review, got %d", len(feed))
	}
	if feed[0].LikesCount == nil || *feed[0].LikesCount != 1 {
		t.Errorf("expected like count 1, got %v", feed[0].LikesCount)
	}
	if !feed[0].ViewerLikedReview {
		t.Error("expected ViewerLikedReview for the fan")
	}

	if _, err := eng.UserReviews(999, 0); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown author, got %v", err)
	}
}
