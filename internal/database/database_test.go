package database

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB opens an isolated in-memory database with the full schema
// applied. A single connection keeps every statement on the same in-memory
// instance.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	// Running again must be a no-op, not a re-apply.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		t.Fatalf("getAppliedMigrations failed: %v", err)
	}
	for _, m := range migrations {
		if !applied[m.Version] {
			t.Errorf("migration %d not recorded as applied", m.Version)
		}
	}
}

func TestGetOrCreateUser(t *testing.T) {
	db := setupTestDB(t)

	user, err := GetOrCreateUser(db, "anna@example.com", "Anna", "")
	if err != nil {
		t.Fatalf("GetOrCreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected a persisted user id")
	}

	// Same email must resolve to the same row, with profile fields updated.
	again, err := GetOrCreateUser(db, "anna@example.com", "Anna B", "https://img/a.png")
	if err != nil {
		t.Fatalf("GetOrCreateUser (second call) failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected same user id, got %d and %d", user.ID, again.ID)
	}
	if again.Name != "Anna B" {
		t.Errorf("expected updated name, got %q", again.Name)
	}
	if again.AvatarURL == nil || *again.AvatarURL != "https://img/a.png" {
		t.Errorf("expected updated avatar url, got %v", again.AvatarURL)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetUserByID(db, 999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestFollowUnfollow(t *testing.T) {
	db := setupTestDB(t)

	anna, _ := GetOrCreateUser(db, "anna@example.com", "Anna", "")
	ben, _ := GetOrCreateUser(db, "ben@example.com", "Ben", "")

	if err := Follow(db, ben.ID, anna.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	// Symmetry: the same edge appears in both directional views.
	following, err := GetFollowing(db, anna.ID)
	if err != nil {
		t.Fatalf("GetFollowing failed: %v", err)
	}
	if len(following) != 1 || following[0].ID != ben.ID {
		t.Fatalf("expected anna to follow ben, got %v", following)
	}

	followers, err := GetFollowers(db, ben.ID)
	if err != nil {
		t.Fatalf("GetFollowers failed: %v", err)
	}
	if len(followers) != 1 || followers[0].ID != anna.ID {
		t.Fatalf("expected ben to be followed by anna, got %v", followers)
	}

	isFollowing, err := IsFollowing(db, ben.ID, anna.ID)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if !isFollowing {
		t.Error("expected IsFollowing to report the edge")
	}

	// Duplicate follow is a no-op, not a second edge.
	if err := Follow(db, ben.ID, anna.ID); err != nil {
		t.Fatalf("duplicate Follow failed: %v", err)
	}
	following, _ = GetFollowing(db, anna.ID)
	if len(following) != 1 {
		t.Errorf("expected one edge after duplicate follow, got %d", len(following))
	}

	if err := Unfollow(db, ben.ID, anna.ID); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}
	following, _ = GetFollowing(db, anna.ID)
	if len(following) != 0 {
		t.Errorf("expected no edges after unfollow, got %d", len(following))
	}

	// Unfollowing again stays quiet.
	if err := Unfollow(db, ben.ID, anna.ID); err != nil {
		t.Errorf("second Unfollow failed: %v", err)
	}
}

func TestFollow_Self(t *testing.T) {
	db := setupTestDB(t)

	anna, _ := GetOrCreateUser(db, "anna@example.com", "Anna", "")
	if err := Follow(db, anna.ID, anna.ID); err == nil {
		t.Fatal("expected self-follow to be rejected")
	}
}
