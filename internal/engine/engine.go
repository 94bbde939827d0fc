// Package engine owns the consistency rules between a user's like, watched,
// watchlist and review records for a single movie, and the social reads
// composed from them. Every write path runs inside one transaction so the
// existence check and the write cannot be interleaved by a concurrent toggle
// on the same (user, movie) key.
package engine

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"filmlog/internal/database"
	"filmlog/internal/types"
)

var (
	// ErrNotFound means the referenced user, review or movie record does not
	// exist. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists signals a duplicate toggle-on. Callers treat it as a
	// benign no-op.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthenticated means no caller identity was supplied for an
	// operation that requires one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidInput means the payload could not be interpreted, e.g. a
	// malformed watched date.
	ErrInvalidInput = errors.New("invalid input")
)

type Engine struct {
	db  *sql.DB
	log zerolog.Logger
}

func New(db *sql.DB, log zerolog.Logger) *Engine {
	return &Engine{db: db, log: log}
}

// ToggleLike records that the user liked the movie. Returns
// ErrAlreadyExists if a like is already present.
func (e *Engine) ToggleLike(userID int64, req *types.MovieEntryRequest) (*types.MovieEntry, error) {
	return e.toggleOn(database.TableLikes, userID, req)
}

// RemoveLike deletes the like if present. Idempotent.
func (e *Engine) RemoveLike(userID int64, movieID string) error {
	return e.toggleOff(database.TableLikes, userID, movieID)
}

// ToggleWatched records that the user watched the movie, and removes any
// watchlist entry for the same pair in the same transaction: watched
// supersedes intent-to-watch.
func (e *Engine) ToggleWatched(userID int64, req *types.MovieEntryRequest) (*types.MovieEntry, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return nil, e.fault("toggle watched", userID, req.MovieID, err)
	}
	defer tx.Rollback()

	entry, err := insertIfAbsent(tx, database.TableWatched, userID, req)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
		return nil, e.fault("toggle watched", userID, req.MovieID, err)
	}

	if err := database.DeleteEntry(tx, database.TableWatchlist, userID, req.MovieID); err != nil {
		return nil, e.fault("toggle watched", userID, req.MovieID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, e.fault("toggle watched", userID, req.MovieID, err)
	}
	return entry, nil
}

// RemoveWatched deletes the watched entry if present. Idempotent.
func (e *Engine) RemoveWatched(userID int64, movieID string) error {
	return e.toggleOff(database.TableWatched, userID, movieID)
}

// ToggleWatchlist records intent to watch. Returns ErrAlreadyExists on a
// duplicate toggle. No cross-entity side effects.
func (e *Engine) ToggleWatchlist(userID int64, req *types.MovieEntryRequest) (*types.MovieEntry, error) {
	return e.toggleOn(database.TableWatchlist, userID, req)
}

// RemoveWatchlist deletes the watchlist entry if present. Idempotent.
func (e *Engine) RemoveWatchlist(userID int64, movieID string) error {
	return e.toggleOff(database.TableWatchlist, userID, movieID)
}

// EntryExists reports whether the user has a row in the given table for the
// movie.
func (e *Engine) EntryExists(table database.EntryTable, userID int64, movieID string) (bool, error) {
	return database.EntryExists(e.db, table, userID, movieID)
}

// ListEntries returns the user's rows for one table, newest first.
func (e *Engine) ListEntries(table database.EntryTable, userID int64) ([]*types.MovieEntry, error) {
	return database.ListEntries(e.db, table, userID)
}

func (e *Engine) toggleOn(table database.EntryTable, userID int64, req *types.MovieEntryRequest) (*types.MovieEntry, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return nil, e.fault(string(table), userID, req.MovieID, err)
	}
	defer tx.Rollback()

	entry, err := insertIfAbsent(tx, table, userID, req)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
		return nil, e.fault(string(table), userID, req.MovieID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, e.fault(string(table), userID, req.MovieID, err)
	}
	return entry, nil
}

func (e *Engine) toggleOff(table database.EntryTable, userID int64, movieID string) error {
	if err := database.DeleteEntry(e.db, table, userID, movieID); err != nil {
		return e.fault(string(table), userID, movieID, err)
	}
	return nil
}

func insertIfAbsent(tx *sql.Tx, table database.EntryTable, userID int64, req *types.MovieEntryRequest) (*types.MovieEntry, error) {
	exists, err := database.EntryExists(tx, table, userID, req.MovieID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	entry := &types.MovieEntry{
		UserID:      userID,
		MovieID:     req.MovieID,
		Title:       req.Title,
		PosterPath:  req.PosterPath,
		ReleaseDate: req.ReleaseDate,
	}
	if req.VoteAverage != nil {
		entry.VoteAverage = *req.VoteAverage
	}
	return database.InsertEntry(tx, table, entry)
}

// fault logs an unexpected internal error with its operation and keys, and
// returns a generic error so internals do not leak to the caller.
func (e *Engine) fault(op string, userID int64, key any, err error) error {
	e.log.Error().Err(err).Str("op", op).Int64("user_id", userID).
		Interface("key", key).Msg("engine operation failed")
	return fmt.Errorf("%s failed", op)
}
