package database

import (
	"database/sql"
	"fmt"
	"time"

	"filmlog/internal/types"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the entry store can run
// inside or outside a transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// EntryTable selects one of the three per-(user, movie) presence tables.
type EntryTable string

const (
	TableLikes     EntryTable = "movie_likes"
	TableWatched   EntryTable = "movie_watched"
	TableWatchlist EntryTable = "movie_watchlist"
)

const entryColumns = "id, user_id, movie_id, title, poster_path, vote_average, release_date, created_at"

func scanEntry(row interface{ Scan(...any) error }) (*types.MovieEntry, error) {
	var e types.MovieEntry
	err := row.Scan(&e.ID, &e.UserID, &e.MovieID, &e.Title, &e.PosterPath,
		&e.VoteAverage, &e.ReleaseDate, &e.Created)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func EntryExists(q DBTX, table EntryTable, userID int64, movieID string) (bool, error) {
	var one int
	err := q.QueryRow(
		fmt.Sprintf("SELECT 1 FROM %s WHERE user_id = ? AND movie_id = ?", table),
		userID, movieID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return true, nil
}

func FindEntry(q DBTX, table EntryTable, userID int64, movieID string) (*types.MovieEntry, error) {
	entry, err := scanEntry(q.QueryRow(
		fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ? AND movie_id = ?", entryColumns, table),
		userID, movieID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s entry: %w", table, err)
	}
	return entry, nil
}

func InsertEntry(q DBTX, table EntryTable, entry *types.MovieEntry) (*types.MovieEntry, error) {
	entry.Created = time.Now().UTC()
	result, err := q.Exec(
		fmt.Sprintf(`
			INSERT INTO %s (user_id, movie_id, title, poster_path, vote_average, release_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, table),
		entry.UserID, entry.MovieID, entry.Title, entry.PosterPath,
		entry.VoteAverage, entry.ReleaseDate, entry.Created,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s entry: %w", table, err)
	}
	entry.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s entry ID: %w", table, err)
	}
	return entry, nil
}

// DeleteEntry removes the row if present. Deleting an absent row is not an
// error.
func DeleteEntry(q DBTX, table EntryTable, userID int64, movieID string) error {
	_, err := q.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND movie_id = ?", table),
		userID, movieID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s entry: %w", table, err)
	}
	return nil
}

// ListEntries returns a user's rows newest first.
func ListEntries(q DBTX, table EntryTable, userID int64) ([]*types.MovieEntry, error) {
	rows, err := q.Query(
		fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ? ORDER BY created_at DESC, id DESC", entryColumns, table),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var entries []*types.MovieEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
