package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"filmlog/internal/engine"
	"filmlog/internal/types"
)

// PlexImporter walks a user's Plex movie libraries and marks their contents
// watched through the reconciliation engine, so the watchlist-superseding
// rule and uniqueness checks apply the same as for manual toggles. Items
// that cannot be matched against TMDB are skipped and logged.
type PlexImporter struct {
	db     *sql.DB
	plex   *PlexClient
	tmdb   *TMDBClient
	engine *engine.Engine
	log    zerolog.Logger
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Scanned  int `json:"scanned"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func NewPlexImporter(db *sql.DB, plex *PlexClient, tmdb *TMDBClient, eng *engine.Engine, log zerolog.Logger) *PlexImporter {
	return &PlexImporter{db: db, plex: plex, tmdb: tmdb, engine: eng, log: log}
}

// ConnectAccount stores the user's Plex token.
func (p *PlexImporter) ConnectAccount(userID int64, token string) error {
	_, err := p.db.Exec(`
		INSERT INTO plex_accounts (user_id, plex_token, connected_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET plex_token = excluded.plex_token
	`, userID, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store plex token: %w", err)
	}
	return nil
}

// DisconnectAccount removes the stored token. Idempotent.
func (p *PlexImporter) DisconnectAccount(userID int64) error {
	if _, err := p.db.Exec("DELETE FROM plex_accounts WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to remove plex token: %w", err)
	}
	return nil
}

// ImportWatched runs one import for the user. Returns engine.ErrNotFound
// when no Plex account is connected.
func (p *PlexImporter) ImportWatched(ctx context.Context, userID int64) (*ImportResult, error) {
	var token string
	err := p.db.QueryRow("SELECT plex_token FROM plex_accounts WHERE user_id = ?", userID).Scan(&token)
	if err == sql.ErrNoRows {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plex token: %w", err)
	}

	servers, err := p.plex.GetServers(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to reach plex: %w", err)
	}

	result := &ImportResult{}
	for _, server := range servers {
		conn := p.plex.BestConnection(server)
		if conn == nil {
			p.log.Warn().Str("server", server.Name).Msg("plex server has no usable connection")
			continue
		}
		serverURL := p.plex.ServerURL(*conn)

		libraries, err := p.plex.GetMovieLibraries(ctx, server.AccessToken, serverURL)
		if err != nil {
			p.log.Warn().Err(err).Str("server", server.Name).Msg("failed to list plex libraries")
			continue
		}

		for _, library := range libraries {
			movies, err := p.plex.GetMoviesInLibrary(ctx, server.AccessToken, serverURL, library.Key)
			if err != nil {
				p.log.Warn().Err(err).Str("library", library.Title).Msg("failed to list plex library items")
				continue
			}

			for _, movie := range movies {
				result.Scanned++
				if p.importMovie(ctx, userID, movie) {
					result.Imported++
				} else {
					result.Skipped++
				}
			}
		}
	}

	_, err = p.db.Exec("UPDATE plex_accounts SET last_import_at = ? WHERE user_id = ?", time.Now().UTC(), userID)
	if err != nil {
		p.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to record plex import time")
	}

	return result, nil
}

// tmdbMatch is the subset of a TMDB search result the import needs.
type tmdbMatch struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

func (p *PlexImporter) importMovie(ctx context.Context, userID int64, movie PlexMovie) bool {
	match, err := p.matchTMDB(ctx, movie)
	if err != nil {
		p.log.Debug().Err(err).Str("title", movie.Title).Msg("tmdb match failed for plex item")
		return false
	}
	if match == nil {
		return false
	}

	req := &types.MovieEntryRequest{
		MovieID:     strconv.FormatInt(match.ID, 10),
		Title:       match.Title,
		PosterPath:  match.PosterPath,
		VoteAverage: &match.VoteAverage,
	}
	if match.ReleaseDate != "" {
		req.ReleaseDate = &match.ReleaseDate
	}

	if _, err := p.engine.ToggleWatched(userID, req); err != nil {
		if errors.Is(err, engine.ErrAlreadyExists) {
			return false
		}
		p.log.Warn().Err(err).Str("title", movie.Title).Msg("failed to mark plex item watched")
		return false
	}
	return true
}

// matchTMDB searches TMDB for the Plex title and accepts the first result
// whose release year agrees, or the first result when Plex has no year.
func (p *PlexImporter) matchTMDB(ctx context.Context, movie PlexMovie) (*tmdbMatch, error) {
	page, err := p.tmdb.SearchMovies(ctx, movie.Title, 1)
	if err != nil {
		return nil, err
	}

	for _, raw := range page.Results {
		var match tmdbMatch
		if err := json.Unmarshal(raw, &match); err != nil {
			continue
		}
		if movie.Year == nil {
			return &match, nil
		}
		if len(match.ReleaseDate) >= 4 {
			if year, err := strconv.Atoi(match.ReleaseDate[:4]); err == nil && year == *movie.Year {
				return &match, nil
			}
		}
	}
	return nil, nil
}
