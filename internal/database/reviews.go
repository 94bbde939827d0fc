package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"filmlog/internal/types"
)

const reviewColumns = `id, user_id, movie_id, movie_title, movie_year, movie_poster_url,
	content, rating, is_rewatch, contains_spoiler, watched_date, tags, created_at`

func scanReview(row interface{ Scan(...any) error }) (*types.Review, error) {
	var r types.Review
	var tagsJSON string
	err := row.Scan(&r.ID, &r.UserID, &r.MovieID, &r.MovieTitle, &r.MovieYear,
		&r.MoviePosterURL, &r.Content, &r.Rating, &r.IsRewatch, &r.ContainsSpoiler,
		&r.WatchedDate, &tagsJSON, &r.Created)
	if err != nil {
		return nil, err
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode review tags: %w", err)
		}
	}
	return &r, nil
}

func FindReviewByID(q DBTX, reviewID int64) (*types.Review, error) {
	review, err := scanReview(q.QueryRow(
		"SELECT "+reviewColumns+" FROM reviews WHERE id = ?", reviewID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return review, nil
}

// FindReviewsForMovie returns every review row a user has for a movie,
// oldest first. The schema allows at most one, but historical rows from
// before the uniqueness constraint may still have duplicates; the upsert
// keeps the first and deletes the rest.
func FindReviewsForMovie(q DBTX, userID int64, movieID string) ([]*types.Review, error) {
	return queryReviews(q,
		"SELECT "+reviewColumns+" FROM reviews WHERE user_id = ? AND movie_id = ? ORDER BY id",
		userID, movieID)
}

func ListReviewsByUser(q DBTX, userID int64) ([]*types.Review, error) {
	return queryReviews(q,
		"SELECT "+reviewColumns+" FROM reviews WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID)
}

// ListReviewsByUsers returns reviews authored by any of the given users,
// newest first.
func ListReviewsByUsers(q DBTX, userIDs []int64) ([]*types.Review, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(userIDs)), ",")
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}
	return queryReviews(q,
		"SELECT "+reviewColumns+" FROM reviews WHERE user_id IN ("+placeholders+") ORDER BY created_at DESC, id DESC",
		args...)
}

// SearchReviewsByTag returns reviews whose tag list contains the given tag.
func SearchReviewsByTag(q DBTX, tag string) ([]*types.Review, error) {
	// Tags are stored as a JSON array; match the quoted element.
	encoded, err := json.Marshal(tag)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tag: %w", err)
	}
	return queryReviews(q,
		"SELECT "+reviewColumns+" FROM reviews WHERE instr(tags, ?) > 0 ORDER BY created_at DESC, id DESC",
		string(encoded))
}

func InsertReview(q DBTX, review *types.Review) (*types.Review, error) {
	tagsJSON, err := encodeTags(review.Tags)
	if err != nil {
		return nil, err
	}
	review.Created = time.Now().UTC()
	result, err := q.Exec(`
		INSERT INTO reviews (user_id, movie_id, movie_title, movie_year, movie_poster_url,
			content, rating, is_rewatch, contains_spoiler, watched_date, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, review.UserID, review.MovieID, review.MovieTitle, review.MovieYear, review.MoviePosterURL,
		review.Content, review.Rating, review.IsRewatch, review.ContainsSpoiler,
		review.WatchedDate, tagsJSON, review.Created)
	if err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}
	review.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get review ID: %w", err)
	}
	return review, nil
}

func UpdateReview(q DBTX, review *types.Review) error {
	tagsJSON, err := encodeTags(review.Tags)
	if err != nil {
		return err
	}
	_, err = q.Exec(`
		UPDATE reviews
		SET movie_title = ?, movie_year = ?, movie_poster_url = ?, content = ?,
			rating = ?, is_rewatch = ?, contains_spoiler = ?, watched_date = ?, tags = ?
		WHERE id = ?
	`, review.MovieTitle, review.MovieYear, review.MoviePosterURL, review.Content,
		review.Rating, review.IsRewatch, review.ContainsSpoiler, review.WatchedDate,
		tagsJSON, review.ID)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func DeleteReview(q DBTX, reviewID int64) error {
	if _, err := q.Exec("DELETE FROM review_likes WHERE review_id = ?", reviewID); err != nil {
		return fmt.Errorf("failed to delete review likes: %w", err)
	}
	if _, err := q.Exec("DELETE FROM reviews WHERE id = ?", reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func ReviewLikeExists(q DBTX, userID, reviewID int64) (bool, error) {
	var one int
	err := q.QueryRow(
		"SELECT 1 FROM review_likes WHERE user_id = ? AND review_id = ?",
		userID, reviewID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check review like: %w", err)
	}
	return true, nil
}

func InsertReviewLike(q DBTX, userID, reviewID int64) error {
	_, err := q.Exec(`
		INSERT INTO review_likes (user_id, review_id, created_at) VALUES (?, ?, ?)
	`, userID, reviewID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert review like: %w", err)
	}
	return nil
}

func DeleteReviewLike(q DBTX, userID, reviewID int64) error {
	_, err := q.Exec(
		"DELETE FROM review_likes WHERE user_id = ? AND review_id = ?",
		userID, reviewID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete review like: %w", err)
	}
	return nil
}

func CountReviewLikes(q DBTX, reviewID int64) (int64, error) {
	var count int64
	err := q.QueryRow(
		"SELECT COUNT(*) FROM review_likes WHERE review_id = ?", reviewID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count review likes: %w", err)
	}
	return count, nil
}

func queryReviews(q DBTX, query string, args ...any) ([]*types.Review, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*types.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode review tags: %w", err)
	}
	return string(data), nil
}
